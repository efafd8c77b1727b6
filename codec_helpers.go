package avro

import "reflect"

// asBool checks a value presented to a boolean-typed writer field: only a
// bool is accepted. The permissive boolean-as-numeric convention
// (SPEC_FULL.md §12) does not apply in reverse; numbers are rejected here.
func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, newValueTypeError("boolean", "expected bool, got %T", v)
	}
	return b, nil
}

func asInt32(v interface{}) (int32, error) {
	switch n := v.(type) {
	case int32:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, newValueTypeError("int", "expected int32, got %T", v)
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, newValueTypeError("long", "expected int64, got %T", v)
	}
}

func asFloat32(v interface{}) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case int32:
		return float32(n), nil
	case int64:
		return float32(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, newValueTypeError("float", "expected float32, got %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, newValueTypeError("double", "expected float64, got %T", v)
	}
}

// asSlice normalizes any slice-kinded value to []interface{} so array codecs
// don't need a type switch per possible concrete element type.
func asSlice(v interface{}) ([]interface{}, error) {
	if s, ok := v.([]interface{}); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, newValueTypeError("array", "expected a slice, got %T", v)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// reflectValueOf is a small wrapper kept for symmetry with the Validate
// call sites, which all operate on reflect.Value.
func reflectValueOf(v interface{}) reflect.Value {
	return reflect.ValueOf(v)
}
