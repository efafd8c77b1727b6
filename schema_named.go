package avro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SchemaField is a single field of a RecordSchema.
type SchemaField struct {
	Name       string
	Doc        string
	Default    interface{}
	HasDefault bool
	Aliases    []string
	Type       Schema
	Properties map[string]interface{}
}

func (f *SchemaField) Prop(key string) (interface{}, bool) {
	v, ok := f.Properties[key]
	return v, ok
}

// Canonical implements the Parsing Canonical Form for a single record field:
// only name and type survive; doc, aliases, default, and properties are
// stripped.
func (f *SchemaField) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "name", f.Name, false)
	writeFieldName(&buf, "type", true)
	typeCanon, err := f.Type.Canonical()
	if err != nil {
		return nil, fmt.Errorf("avro: field %q: %w", f.Name, err)
	}
	buf.Write(typeCanon)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (f *SchemaField) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string      `json:"name"`
		Doc     string      `json:"doc,omitempty"`
		Default interface{} `json:"default,omitempty"`
		Aliases []string    `json:"aliases,omitempty"`
		Type    Schema      `json:"type"`
	}{
		Name:    f.Name,
		Doc:     f.Doc,
		Default: f.Default,
		Aliases: f.Aliases,
		Type:    f.Type,
	})
}

func (f *SchemaField) String() string {
	return fmt.Sprintf("[SchemaField: Name: %s, Doc: %s, Default: %v, Type: %s]", f.Name, f.Doc, f.Default, f.Type)
}

// hasAlias reports whether name matches this field's name or one of its
// declared aliases — used when resolving a reader field against writer
// fields that were renamed (spec.md §5.5).
func (f *SchemaField) hasAlias(name string) bool {
	if f.Name == name {
		return true
	}
	for _, a := range f.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// RecordSchema represents an Avro "record" named type: an ordered list of
// fields, each with its own schema.
type RecordSchema struct {
	hashable
	Name       string
	Namespace  string
	Doc        string
	Aliases    []string
	Properties map[string]interface{}
	Fields     []*SchemaField
}

func (rs *RecordSchema) Fingerprint() uint64         { return rs.getFingerprint(rs) }
func (*RecordSchema) Type() int                      { return Record }
func (rs *RecordSchema) GetName() string             { return getFullName(rs.Name, rs.Namespace) }

func (rs *RecordSchema) Prop(key string) (interface{}, bool) {
	v, ok := rs.Properties[key]
	return v, ok
}

func (rs *RecordSchema) String() string {
	jb, _ := json.MarshalIndent(rs, "", "    ")
	return string(jb)
}

// Canonical implements the Parsing Canonical Form: only name, type and
// fields survive, in that order; doc, aliases and properties are stripped.
func (rs *RecordSchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "name", getFullName(rs.Name, rs.Namespace), false)
	writeString(&buf, "type", typeRecord, true)
	writeFieldName(&buf, "fields", true)
	buf.WriteRune('[')
	for i, f := range rs.Fields {
		if i > 0 {
			buf.WriteRune(',')
		}
		fc, err := f.Canonical()
		if err != nil {
			return nil, fmt.Errorf("avro: record %q: %w", GetFullName(rs), err)
		}
		buf.Write(fc)
	}
	buf.WriteRune(']')
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (rs *RecordSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string         `json:"type"`
		Namespace string         `json:"namespace,omitempty"`
		Name      string         `json:"name"`
		Doc       string         `json:"doc,omitempty"`
		Aliases   []string       `json:"aliases,omitempty"`
		Fields    []*SchemaField `json:"fields"`
	}{
		Type:      typeRecord,
		Namespace: rs.Namespace,
		Name:      rs.Name,
		Doc:       rs.Doc,
		Aliases:   rs.Aliases,
		Fields:    rs.Fields,
	})
}

// fieldByName returns the field named name, or nil.
func (rs *RecordSchema) fieldByName(name string) *SchemaField {
	for _, f := range rs.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// fieldByAlias returns a field whose name or alias set contains name, or nil
// — the fallback lookup used during resolution when a writer and reader
// disagree on a field's exact name.
func (rs *RecordSchema) fieldByAlias(name string) *SchemaField {
	for _, f := range rs.Fields {
		if f.hasAlias(name) {
			return f
		}
	}
	return nil
}

func (rs *RecordSchema) Validate(v reflect.Value) bool {
	if v.IsValid() {
		if gr, ok := v.Interface().(*GenericRecord); ok {
			if gr == nil {
				return false
			}
			return strings.HasSuffix(GetFullName(rs), gr.schemaFullName())
		}
	}
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return false
		}
		for _, f := range rs.Fields {
			fv := v.MapIndex(reflect.ValueOf(f.Name))
			if !fv.IsValid() {
				// A missing field validates as null unless it has a default.
				if f.HasDefault || f.Type.Validate(reflect.Value{}) {
					continue
				}
				return false
			}
			if !f.Type.Validate(fv.Elem()) {
				return false
			}
		}
		return true
	case reflect.Struct:
		// Struct targets are bound through the specific datum path
		// (datum_specific.go) which already enforces field conformance via
		// reflect2/mapstructure; accept any struct here.
		return true
	default:
		return false
	}
}

// RecursiveSchema is a placeholder Schema used while parsing a record whose
// definition references itself (directly or through a cycle) by name. It
// proxies every method to the RecordSchema it wraps, once that parse
// completes, except Type which reports Recursive. The resolver and the
// codec compiler unwrap it to the wrapped RecordSchema via actualSchema.
type RecursiveSchema struct {
	Actual *RecordSchema
}

func newRecursiveSchema(actual *RecordSchema) *RecursiveSchema {
	return &RecursiveSchema{Actual: actual}
}

func (rs *RecursiveSchema) Canonical() ([]byte, error)  { return rs.Actual.Canonical() }
func (rs *RecursiveSchema) Fingerprint() uint64         { return rs.Actual.Fingerprint() }
func (*RecursiveSchema) Type() int                      { return Recursive }
func (rs *RecursiveSchema) GetName() string             { return rs.Actual.GetName() }
func (rs *RecursiveSchema) Prop(key string) (interface{}, bool) { return rs.Actual.Prop(key) }
func (rs *RecursiveSchema) String() string              { return rs.Actual.String() }
func (rs *RecursiveSchema) Validate(v reflect.Value) bool { return rs.Actual.Validate(v) }

// EnumSchema represents an Avro "enum" named type: a closed, ordered set of
// symbol strings.
type EnumSchema struct {
	hashable
	Name       string
	Namespace  string
	Aliases    []string
	Doc        string
	Symbols    []string
	Properties map[string]interface{}
}

func (es *EnumSchema) Fingerprint() uint64 { return es.getFingerprint(es) }
func (*EnumSchema) Type() int              { return Enum }
func (es *EnumSchema) GetName() string     { return getFullName(es.Name, es.Namespace) }

func (es *EnumSchema) Prop(key string) (interface{}, bool) {
	v, ok := es.Properties[key]
	return v, ok
}

func (es *EnumSchema) String() string {
	jb, _ := json.MarshalIndent(es, "", "    ")
	return string(jb)
}

func (es *EnumSchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "name", getFullName(es.Name, es.Namespace), false)
	writeString(&buf, "type", typeEnum, true)
	writeFieldName(&buf, "symbols", true)
	buf.WriteRune('[')
	for i, sym := range es.Symbols {
		if i > 0 {
			buf.WriteRune(',')
		}
		sb, _ := json.Marshal(sym)
		buf.Write(sb)
	}
	buf.WriteRune(']')
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (es *EnumSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string   `json:"type"`
		Namespace string   `json:"namespace,omitempty"`
		Name      string   `json:"name"`
		Doc       string   `json:"doc,omitempty"`
		Aliases   []string `json:"aliases,omitempty"`
		Symbols   []string `json:"symbols"`
	}{
		Type:      typeEnum,
		Namespace: es.Namespace,
		Name:      es.Name,
		Doc:       es.Doc,
		Aliases:   es.Aliases,
		Symbols:   es.Symbols,
	})
}

// symbolIndex returns the index of symbol in this enum's declared order, or
// -1 if it is not a member.
func (es *EnumSchema) symbolIndex(symbol string) int {
	for i, s := range es.Symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

func (es *EnumSchema) Validate(v reflect.Value) bool {
	if v.IsValid() {
		if x, ok := v.Interface().(*GenericEnum); ok {
			if x == nil {
				return false
			}
			return strings.HasSuffix(GetFullName(es), x.schemaFullName()) && x.Index >= 0 && x.Index < len(es.Symbols)
		}
	}
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch x := v.Interface().(type) {
	case string:
		return es.symbolIndex(x) >= 0
	default:
		return false
	}
}

// FixedSchema represents an Avro "fixed" named type: a byte array of a
// declared, immutable length.
type FixedSchema struct {
	hashable
	Name       string
	Namespace  string
	Aliases    []string
	Size       int
	Properties map[string]interface{}
}

func (fs *FixedSchema) Fingerprint() uint64 { return fs.getFingerprint(fs) }
func (*FixedSchema) Type() int              { return Fixed }
func (fs *FixedSchema) GetName() string     { return getFullName(fs.Name, fs.Namespace) }

func (fs *FixedSchema) Prop(key string) (interface{}, bool) {
	v, ok := fs.Properties[key]
	return v, ok
}

func (fs *FixedSchema) String() string {
	jb, _ := json.MarshalIndent(fs, "", "    ")
	return string(jb)
}

func (fs *FixedSchema) Canonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "name", getFullName(fs.Name, fs.Namespace), false)
	writeString(&buf, "type", typeFixed, true)
	writeInt(&buf, "size", fs.Size, true)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (fs *FixedSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string   `json:"type"`
		Namespace string   `json:"namespace,omitempty"`
		Name      string   `json:"name"`
		Size      int      `json:"size"`
		Aliases   []string `json:"aliases,omitempty"`
	}{
		Type:      typeFixed,
		Namespace: fs.Namespace,
		Name:      fs.Name,
		Size:      fs.Size,
		Aliases:   fs.Aliases,
	})
}

func (fs *FixedSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Uint8 {
		return false
	}
	return v.Len() == fs.Size
}
