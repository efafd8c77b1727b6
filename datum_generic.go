package avro

import "fmt"

// GenericRecord is the default, schema-driven representation of an Avro
// "record" value: an unordered bag of named fields with no compile-time Go
// struct behind it. Grounded on go-avro's GenericRecord (referenced
// throughout _examples/go-avro-avro/*_test.go) but re-expressed as a plain
// map rather than a bespoke field-storage type.
type GenericRecord struct {
	schema Schema
	fields map[string]interface{}
}

// NewGenericRecord creates an empty GenericRecord bound to schema. Fields
// are populated with Set before writing, or read into with a
// GenericDatumReader.
func NewGenericRecord(schema Schema) *GenericRecord {
	return &GenericRecord{schema: schema, fields: make(map[string]interface{})}
}

func newGenericRecord(schema *RecordSchema) *GenericRecord {
	return &GenericRecord{schema: schema, fields: make(map[string]interface{})}
}

// Schema returns the schema this record was created against.
func (r *GenericRecord) Schema() Schema { return r.schema }

// Set assigns value to the named field.
func (r *GenericRecord) Set(name string, value interface{}) { r.fields[name] = value }

// Get returns the named field's value, or nil if it was never set.
func (r *GenericRecord) Get(name string) interface{} { return r.fields[name] }

func (r *GenericRecord) schemaFullName() string { return GetFullName(r.schema) }

// MarshalJSON renders the record's fields, recursing into any nested
// GenericRecord/GenericEnum values through their own MarshalJSON.
func (r *GenericRecord) MarshalJSON() ([]byte, error) { return jsonAPI.Marshal(r.fields) }

func (r *GenericRecord) String() string {
	jb, err := jsonAPI.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Sprintf("<GenericRecord %s: %v>", GetFullName(r.schema), err)
	}
	return string(jb)
}

// GenericEnum is the default representation of an Avro "enum" value when the
// caller needs to pin down the exact writer index rather than relying on
// symbol-string lookup (e.g. an enum with duplicate-looking symbols across
// aliases, or writing before a reader schema is known).
type GenericEnum struct {
	schema  *EnumSchema
	Index   int
	Symbols []string
}

// NewGenericEnum creates a GenericEnum over the given symbol set, index 0.
func NewGenericEnum(symbols []string) *GenericEnum {
	return &GenericEnum{Symbols: symbols}
}

// SetIndex selects the active symbol by index.
func (e *GenericEnum) SetIndex(index int) { e.Index = index }

// Get returns the active symbol string.
func (e *GenericEnum) Get() string {
	if e.Index < 0 || e.Index >= len(e.Symbols) {
		return ""
	}
	return e.Symbols[e.Index]
}

func (e *GenericEnum) schemaFullName() string {
	if e.schema == nil {
		return ""
	}
	return GetFullName(e.schema)
}

func (e *GenericEnum) MarshalJSON() ([]byte, error) { return jsonAPI.Marshal(e.Get()) }

func (e *GenericEnum) String() string { return e.Get() }
