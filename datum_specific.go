package avro

import (
	"reflect"
	"sync"

	"github.com/ettle/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/modern-go/reflect2"
)

// This file binds the generic value domain (datum_generic.go, codec.go) to
// caller-supplied Go structs — the "specific" datum path referenced
// throughout _examples/go-avro-avro/*_test.go
// (NewSpecificDatumWriter/NewSpecificDatumReader). Field names are matched
// Avro-name → Go-exported-name via github.com/ettle/strcase's PascalCase
// conversion (the same casing convention
// _examples/other_examples/manifests/hamba-avro's go.mod pulls strcase in
// for), replacing the teacher's deprecated strings.Title-based matching in
// _examples/go-avro-avro/datum_projector.go. Struct-type field layouts are
// cached by github.com/modern-go/reflect2's RType identity, mirroring the
// cache key _examples/other_examples/015d9405_hamba-avro__codec.go.go uses
// for its decoder/encoder cache.

// structFieldIndex maps an Avro field name to the struct field index that
// should hold it.
type structFieldIndex map[string]int

var structFieldCache sync.Map // reflect2.RType -> structFieldIndex

func structFieldsOf(t reflect.Type) structFieldIndex {
	rtype := reflect2.Type2(t).RType()
	if cached, ok := structFieldCache.Load(rtype); ok {
		return cached.(structFieldIndex)
	}
	idx := make(structFieldIndex, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		idx[strcase.ToPascal(f.Name)] = i
	}
	structFieldCache.Store(rtype, idx)
	return idx
}

// fieldValue returns the reflect.Value of the struct field matching avroName
// on rv (a struct value), and whether a matching field was found.
func fieldValue(rv reflect.Value, avroName string) (reflect.Value, bool) {
	idx := structFieldsOf(rv.Type())
	i, ok := idx[strcase.ToPascal(avroName)]
	if !ok {
		return reflect.Value{}, false
	}
	return rv.Field(i), true
}

// structToGeneric converts a struct (or pointer to struct) conforming to
// schema into the map[string]interface{} representation the codec compiler
// consumes, recursing into nested records via their own RecordSchema.
func structToGeneric(v interface{}, schema *RecordSchema) (map[string]interface{}, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, newValueTypeError(GetFullName(schema), "nil pointer passed as record value")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, newValueTypeError(GetFullName(schema), "expected a struct, got %T", v)
	}

	out := make(map[string]interface{}, len(schema.Fields))
	for _, f := range schema.Fields {
		fv, ok := fieldValue(rv, f.Name)
		if !ok {
			if f.HasDefault {
				out[f.Name] = f.Default
				continue
			}
			return nil, newValueTypeError(GetFullName(schema), "no struct field for Avro field %q", f.Name)
		}
		converted, err := specificFieldToGeneric(fv, f.Type)
		if err != nil {
			return nil, err
		}
		out[f.Name] = converted
	}
	return out, nil
}

// specificFieldToGeneric converts one struct field's value into the generic
// value domain, recursing for nested records (directly, through an array, or
// through a map) and pointer-wrapped union branches (the ["null", T]
// optional idiom uses a *T/nil Go field).
func specificFieldToGeneric(fv reflect.Value, schema Schema) (interface{}, error) {
	if !fv.IsValid() {
		return nil, nil
	}
	switch actual := actualSchema(schema).(type) {
	case *UnionSchema:
		if _, nullable := actual.nullableOf(); nullable && fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				return nil, nil
			}
			return specificFieldToGeneric(fv.Elem(), nonNullBranch(actual))
		}
		return fv.Interface(), nil
	case *RecordSchema:
		return structToGeneric(fv.Interface(), actual)
	case *ArraySchema:
		if fv.Kind() != reflect.Slice && fv.Kind() != reflect.Array {
			return fv.Interface(), nil
		}
		out := make([]interface{}, fv.Len())
		for i := range out {
			v, err := specificFieldToGeneric(fv.Index(i), actual.Items)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *MapSchema:
		if fv.Kind() != reflect.Map {
			return fv.Interface(), nil
		}
		out := make(map[string]interface{}, fv.Len())
		iter := fv.MapRange()
		for iter.Next() {
			v, err := specificFieldToGeneric(iter.Value(), actual.Values)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = v
		}
		return out, nil
	default:
		return fv.Interface(), nil
	}
}

func nonNullBranch(us *UnionSchema) Schema {
	idx, _ := us.nullableOf()
	return us.Types[idx]
}

// genericToStruct binds a decoded generic value (map[string]interface{} or
// *GenericRecord) into target, a pointer to a Go struct conforming to
// schema.
func genericToStruct(target interface{}, schema *RecordSchema, v interface{}) error {
	m, err := asFieldMap(v)
	if err != nil {
		return err
	}
	renamed := make(map[string]interface{}, len(m))
	for _, f := range schema.Fields {
		fv, ok := m[f.Name]
		if !ok {
			continue
		}
		renamed[strcase.ToPascal(f.Name)] = unwrapForStruct(fv, f.Type)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "avro",
	})
	if err != nil {
		return newValueTypeError(GetFullName(schema), "building decoder: %v", err)
	}
	if err := dec.Decode(renamed); err != nil {
		return newValueTypeError(GetFullName(schema), "binding struct: %v", err)
	}
	return nil
}

// unwrapForStruct undoes the generic union tagging convention for fields
// whose schema is a plain (non-nullable) union, and recurses into nested
// records — directly, through an array, or through a map — so mapstructure
// receives struct-shaped maps rather than *GenericRecord values.
func unwrapForStruct(v interface{}, schema Schema) interface{} {
	switch actual := actualSchema(schema).(type) {
	case *RecordSchema:
		if gr, ok := v.(*GenericRecord); ok {
			nested := make(map[string]interface{}, len(actual.Fields))
			for _, f := range actual.Fields {
				nested[strcase.ToPascal(f.Name)] = unwrapForStruct(gr.fields[f.Name], f.Type)
			}
			return nested
		}
		return v
	case *UnionSchema:
		if _, nullable := actual.nullableOf(); nullable {
			if v == nil {
				return nil
			}
			return unwrapForStruct(v, nonNullBranch(actual))
		}
		if m, ok := v.(map[string]interface{}); ok && len(m) == 1 {
			for branchName, val := range m {
				for _, t := range actual.Types {
					if t.GetName() == branchName || GetFullName(t) == branchName {
						return unwrapForStruct(val, t)
					}
				}
			}
		}
		return v
	case *ArraySchema:
		s, ok := v.([]interface{})
		if !ok {
			return v
		}
		out := make([]interface{}, len(s))
		for i, item := range s {
			out[i] = unwrapForStruct(item, actual.Items)
		}
		return out
	case *MapSchema:
		m, ok := v.(map[string]interface{})
		if !ok {
			return v
		}
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = unwrapForStruct(val, actual.Values)
		}
		return out
	default:
		return v
	}
}

func asFieldMap(v interface{}) (map[string]interface{}, error) {
	switch x := v.(type) {
	case map[string]interface{}:
		return x, nil
	case *GenericRecord:
		return x.fields, nil
	default:
		return nil, newValueTypeError("record", "expected a record value, got %T", v)
	}
}
