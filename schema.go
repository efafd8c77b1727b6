// Package avro implements an Avro binary serialization engine: a schema
// model and parser, writer/reader schema resolution, and a codec compiler
// that specializes a (resolved) schema into a pair of closures that walk
// bytes with no further schema dispatch.
package avro

import (
	"fmt"
	"hash/crc64"
	"math"
	"reflect"
	"strings"
)

// Type constants identify the variant of a parsed Schema.
const (
	Record int = iota
	Enum
	Array
	Map
	Union
	Fixed
	String
	Bytes
	Int
	Long
	Float
	Double
	Boolean
	Null

	// Recursive is an artificial type meaning a Record schema referenced by
	// name without its definition inline — the definition is looked up in
	// the names registry active during parsing.
	Recursive
)

const (
	typeRecord  = "record"
	typeUnion   = "union"
	typeEnum    = "enum"
	typeArray   = "array"
	typeMap     = "map"
	typeFixed   = "fixed"
	typeString  = "string"
	typeBytes   = "bytes"
	typeInt     = "int"
	typeLong    = "long"
	typeFloat   = "float"
	typeDouble  = "double"
	typeBoolean = "boolean"
	typeNull    = "null"

	// logical type markers: parsed and round-tripped as schema metadata
	// only (see SPEC_FULL.md §11) — no wire-format effect.
	logicalTypeDate            = "date"
	logicalTypeDecimal         = "decimal"
	logicalTypeDuration        = "duration"
	logicalTypeTimeOfDayMillis = "time-millis"
	logicalTypeTimeOfDayMicros = "time-micros"
	logicalTypeTimeMillis      = "timestamp-millis"
	logicalTypeTimeMicros      = "timestamp-micros"
)

const (
	schemaAliasesField   = "aliases"
	schemaDefaultField   = "default"
	schemaDocField       = "doc"
	schemaFieldsField    = "fields"
	schemaItemsField     = "items"
	schemaNameField      = "name"
	schemaNamespaceField = "namespace"
	schemaSizeField      = "size"
	schemaSymbolsField   = "symbols"
	schemaTypeField      = "type"
	schemaValuesField    = "values"

	schemaLogicalTypeField = "logicalType"
	schemaScaleField       = "scale"
	schemaPrecisionField   = "precision"
)

// Schema is an interface representing a single Avro schema, primitive or
// complex.
type Schema interface {
	// Canonical returns the encoded schema JSON after the Avro "Transforming
	// into Parsing Canonical Form" algorithm.
	Canonical() ([]byte, error)

	// Fingerprint returns a CRC64 of the canonical form, cached on first use.
	Fingerprint() uint64

	// Type returns an integer constant identifying this schema's variant.
	Type() int

	// GetName returns the fullname for a record/enum/fixed schema, or the
	// type name for everything else.
	GetName() string

	// Prop gets a custom non-reserved property and whether it was present.
	Prop(key string) (interface{}, bool)

	// String returns this schema's JSON representation.
	String() string

	// Validate reports whether v conforms to this schema (spec.md §4.3).
	Validate(v reflect.Value) bool
}

type hashable struct {
	hash  uint64
	valid bool
}

// polynomialTable is the CRC64 polynomial called out by the Avro
// specification's fingerprinting algorithm.
var polynomialTable = crc64.MakeTable(0xc15d213aa4d7a795)

func (h *hashable) getFingerprint(schema Schema) uint64 {
	if h.valid {
		return h.hash
	}
	data, err := schema.Canonical()
	if err != nil {
		panic(fmt.Sprintf("avro: failed to compute canonical form for %s: %v", GetFullName(schema), err))
	}
	sum := crc64.New(polynomialTable)
	if _, err := sum.Write(data); err != nil {
		panic(fmt.Sprintf("avro: crc64 write failed: %v", err))
	}
	h.hash = sum.Sum64()
	h.valid = true
	return h.hash
}

// dereference unwraps a pointer down to the value it points to, leaving
// everything else untouched. A nil pointer dereferences to itself so callers
// can treat it uniformly as "absent" rather than panicking on Elem().
func dereference(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// StringSchema represents the Avro "string" type.
type StringSchema struct{ hashable }

func (ss *StringSchema) Canonical() ([]byte, error)  { return ss.MarshalJSON() }
func (ss *StringSchema) Fingerprint() uint64         { return ss.getFingerprint(ss) }
func (*StringSchema) String() string                 { return `{"type": "string"}` }
func (*StringSchema) Type() int                      { return String }
func (*StringSchema) GetName() string                { return typeString }
func (*StringSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*StringSchema) MarshalJSON() ([]byte, error)   { return []byte(`"string"`), nil }

func (*StringSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	_, ok := v.Interface().(string)
	return ok
}

// BytesSchema represents the Avro "bytes" type, optionally decorated with a
// "decimal" logical type.
type BytesSchema struct {
	hashable
	LogicalType string
	Scale       int
	Precision   int
}

func (bs *BytesSchema) Fingerprint() uint64          { return bs.getFingerprint(bs) }
func (*BytesSchema) Type() int                       { return Bytes }
func (*BytesSchema) GetName() string                 { return typeBytes }
func (*BytesSchema) Prop(string) (interface{}, bool) { return nil, false }

func (bs *BytesSchema) Canonical() ([]byte, error) { return []byte(`"bytes"`), nil }

func (bs *BytesSchema) String() string {
	jb, _ := bs.MarshalJSON()
	return string(jb)
}

func (bs *BytesSchema) MarshalJSON() ([]byte, error) {
	if bs.LogicalType == "" {
		return []byte(`"bytes"`), nil
	}
	return marshalLogical(typeBytes, bs.LogicalType, bs.Scale, bs.Precision)
}

func (*BytesSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

// IntSchema represents the Avro "int" (32-bit signed) type.
type IntSchema struct{ hashable }

func (is *IntSchema) Canonical() ([]byte, error)  { return is.MarshalJSON() }
func (is *IntSchema) Fingerprint() uint64         { return is.getFingerprint(is) }
func (*IntSchema) String() string                 { return `{"type": "int"}` }
func (*IntSchema) Type() int                      { return Int }
func (*IntSchema) GetName() string                { return typeInt }
func (*IntSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*IntSchema) MarshalJSON() ([]byte, error)   { return []byte(`"int"`), nil }

func (*IntSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Int32:
		return true
	case reflect.Bool:
		return true // permissive boolean-as-numeric, see SPEC_FULL.md §12
	default:
		return false
	}
}

// LongSchema represents the Avro "long" (64-bit signed) type, optionally
// decorated with a timestamp/time logical type.
type LongSchema struct {
	hashable
	LogicalType string
}

func (ls *LongSchema) Fingerprint() uint64         { return ls.getFingerprint(ls) }
func (*LongSchema) Type() int                      { return Long }
func (*LongSchema) GetName() string                { return typeLong }
func (*LongSchema) Prop(string) (interface{}, bool) { return nil, false }

func (ls *LongSchema) Canonical() ([]byte, error) { return []byte(`"long"`), nil }

func (ls *LongSchema) String() string {
	jb, _ := ls.MarshalJSON()
	return string(jb)
}

func (ls *LongSchema) MarshalJSON() ([]byte, error) {
	if ls.LogicalType == "" {
		return []byte(`"long"`), nil
	}
	return marshalLogical(typeLong, ls.LogicalType, 0, 0)
}

func (*LongSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Int64:
		return true
	case reflect.Bool:
		return true // permissive boolean-as-numeric, see SPEC_FULL.md §12
	default:
		return false
	}
}

// FloatSchema represents the Avro "float" (32-bit IEEE-754) type.
type FloatSchema struct{ hashable }

func (fs *FloatSchema) Canonical() ([]byte, error)   { return fs.MarshalJSON() }
func (fs *FloatSchema) Fingerprint() uint64          { return fs.getFingerprint(fs) }
func (*FloatSchema) String() string                  { return `{"type": "float"}` }
func (*FloatSchema) Type() int                       { return Float }
func (*FloatSchema) GetName() string                 { return typeFloat }
func (*FloatSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*FloatSchema) MarshalJSON() ([]byte, error)    { return []byte(`"float"`), nil }

func (*FloatSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int32, reflect.Int64, reflect.Bool:
		return true
	default:
		return false
	}
}

// DoubleSchema represents the Avro "double" (64-bit IEEE-754) type.
type DoubleSchema struct{ hashable }

func (ds *DoubleSchema) Canonical() ([]byte, error)   { return ds.MarshalJSON() }
func (ds *DoubleSchema) Fingerprint() uint64          { return ds.getFingerprint(ds) }
func (*DoubleSchema) String() string                  { return `{"type": "double"}` }
func (*DoubleSchema) Type() int                       { return Double }
func (*DoubleSchema) GetName() string                 { return typeDouble }
func (*DoubleSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*DoubleSchema) MarshalJSON() ([]byte, error)    { return []byte(`"double"`), nil }

func (*DoubleSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int32, reflect.Int64, reflect.Bool:
		return true
	default:
		return false
	}
}

// BooleanSchema represents the Avro "boolean" type.
type BooleanSchema struct{ hashable }

func (bs *BooleanSchema) Canonical() ([]byte, error)   { return bs.MarshalJSON() }
func (bs *BooleanSchema) Fingerprint() uint64          { return bs.getFingerprint(bs) }
func (*BooleanSchema) String() string                  { return `{"type": "boolean"}` }
func (*BooleanSchema) Type() int                       { return Boolean }
func (*BooleanSchema) GetName() string                 { return typeBoolean }
func (*BooleanSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*BooleanSchema) MarshalJSON() ([]byte, error)    { return []byte(`"boolean"`), nil }

func (*BooleanSchema) Validate(v reflect.Value) bool {
	v = dereference(v)
	return v.IsValid() && v.Kind() == reflect.Bool
}

// NullSchema represents the Avro "null" type.
type NullSchema struct{ hashable }

func (ns *NullSchema) Canonical() ([]byte, error)   { return ns.MarshalJSON() }
func (ns *NullSchema) Fingerprint() uint64          { return ns.getFingerprint(ns) }
func (*NullSchema) String() string                  { return `{"type": "null"}` }
func (*NullSchema) Type() int                       { return Null }
func (*NullSchema) GetName() string                 { return typeNull }
func (*NullSchema) Prop(string) (interface{}, bool) { return nil, false }
func (*NullSchema) MarshalJSON() ([]byte, error)    { return []byte(`"null"`), nil }

func (*NullSchema) Validate(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map:
		return v.IsNil()
	case reflect.Invalid:
		return true
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(v.Float())
	default:
		return false
	}
}

// GetFullName returns a fully-qualified name for a schema when possible
// (namespace.name), or its plain type name otherwise.
func GetFullName(schema Schema) string {
	switch sch := schema.(type) {
	case *RecordSchema:
		return getFullName(sch.Name, sch.Namespace)
	case *RecursiveSchema:
		return getFullName(sch.Actual.Name, sch.Actual.Namespace)
	case *EnumSchema:
		return getFullName(sch.Name, sch.Namespace)
	case *FixedSchema:
		return getFullName(sch.Name, sch.Namespace)
	default:
		return schema.GetName()
	}
}

func getFullName(name, namespace string) string {
	if len(namespace) > 0 && !strings.ContainsRune(name, '.') {
		return namespace + "." + name
	}
	return name
}
