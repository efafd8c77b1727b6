package avro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// ArraySchema represents an Avro "array" parameterized type.
type ArraySchema struct {
	hashable
	Items      Schema
	Properties map[string]interface{}
}

func (as *ArraySchema) Fingerprint() uint64          { return as.getFingerprint(as) }
func (*ArraySchema) Type() int                       { return Array }
func (*ArraySchema) GetName() string                 { return typeArray }
func (as *ArraySchema) Prop(key string) (interface{}, bool) {
	v, ok := as.Properties[key]
	return v, ok
}

func (as *ArraySchema) String() string {
	jb, _ := json.MarshalIndent(as, "", "    ")
	return string(jb)
}

func (as *ArraySchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "type", typeArray, false)
	writeFieldName(&buf, "items", true)
	ic, err := as.Items.Canonical()
	if err != nil {
		return nil, fmt.Errorf("avro: array items: %w", err)
	}
	buf.Write(ic)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (as *ArraySchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Items Schema `json:"items"`
	}{Type: typeArray, Items: as.Items})
}

func (as *ArraySchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}

// MapSchema represents an Avro "map" parameterized type. Avro maps always
// have string keys; Values describes the value schema.
type MapSchema struct {
	hashable
	Values     Schema
	Properties map[string]interface{}
}

func (ms *MapSchema) Fingerprint() uint64 { return ms.getFingerprint(ms) }
func (*MapSchema) Type() int              { return Map }
func (*MapSchema) GetName() string        { return typeMap }

func (ms *MapSchema) Prop(key string) (interface{}, bool) {
	v, ok := ms.Properties[key]
	return v, ok
}

func (ms *MapSchema) String() string {
	jb, _ := json.MarshalIndent(ms, "", "    ")
	return string(jb)
}

func (ms *MapSchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "type", typeMap, false)
	writeFieldName(&buf, "values", true)
	vc, err := ms.Values.Canonical()
	if err != nil {
		return nil, fmt.Errorf("avro: map values: %w", err)
	}
	buf.Write(vc)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (ms *MapSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Values Schema `json:"values"`
	}{Type: typeMap, Values: ms.Values})
}

func (ms *MapSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	return v.IsValid() && v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String
}

// UnionSchema represents an Avro "union" parameterized type: a value
// conforming to exactly one of Types, selected either by first-matching
// Validate or by an explicit Union{Index, Value} wrapper on write.
type UnionSchema struct {
	hashable
	Types []Schema
}

func (us *UnionSchema) Fingerprint() uint64 { return us.getFingerprint(us) }
func (*UnionSchema) Type() int              { return Union }
func (*UnionSchema) GetName() string        { return typeUnion }
func (*UnionSchema) Prop(string) (interface{}, bool) { return nil, false }

func (us *UnionSchema) String() string {
	jb, _ := json.MarshalIndent(us.Types, "", "    ")
	return fmt.Sprintf(`{"type": %s}`, string(jb))
}

func (us *UnionSchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('[')
	for i, t := range us.Types {
		if i > 0 {
			buf.WriteRune(',')
		}
		tc, err := t.Canonical()
		if err != nil {
			return nil, fmt.Errorf("avro: union branch #%d (%s): %w", i, GetFullName(t), err)
		}
		buf.Write(tc)
	}
	buf.WriteRune(']')
	return buf.Bytes(), nil
}

func (us *UnionSchema) MarshalJSON() ([]byte, error) { return json.Marshal(us.Types) }

// GetType returns the index of the first branch that validates v, or -1.
func (us *UnionSchema) GetType(v reflect.Value) int {
	for i, t := range us.Types {
		if t.Validate(v) {
			return i
		}
	}
	return -1
}

// nullIndex returns the index of the "null" branch, or -1 if this union has
// none.
func (us *UnionSchema) nullIndex() int {
	for i, t := range us.Types {
		if t.Type() == Null {
			return i
		}
	}
	return -1
}

// nullableOf reports whether this union is the common "optional" idiom
// (exactly one null branch plus exactly one other branch), returning the
// index of that other branch. Such unions decode/encode to a bare value
// instead of the {typeName: value} tagging used for larger unions, since the
// single non-null branch already disambiguates the type unaided.
func (us *UnionSchema) nullableOf() (int, bool) {
	if len(us.Types) != 2 {
		return 0, false
	}
	switch {
	case us.Types[0].Type() == Null && us.Types[1].Type() != Null:
		return 1, true
	case us.Types[1].Type() == Null && us.Types[0].Type() != Null:
		return 0, true
	default:
		return 0, false
	}
}

func (us *UnionSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		for _, t := range us.Types {
			if t.Type() == Null {
				return true
			}
		}
		return false
	}
	if u, ok := v.Interface().(Union); ok {
		if u.Index < 0 || u.Index >= len(us.Types) {
			return false
		}
		return us.Types[u.Index].Validate(reflect.ValueOf(u.Value))
	}
	return us.GetType(v) >= 0
}

// Union is an explicit branch selector for writing a value through a union
// schema without relying on Validate-based dispatch (spec.md §9): Index
// names the branch in schema declaration order and Value is the branch
// payload.
type Union struct {
	Index int
	Value interface{}
}
