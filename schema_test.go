package avro

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveSchema(t *testing.T) {
	cases := []struct {
		raw      string
		expected int
	}{
		{"string", String},
		{"int", Int},
		{"long", Long},
		{"boolean", Boolean},
		{"float", Float},
		{"double", Double},
		{"bytes", Bytes},
		{"null", Null},
	}
	for _, c := range cases {
		s, err := ParseSchema(c.raw)
		require.NoError(t, err)
		assert.Equal(t, c.expected, s.Type())
	}
}

func TestArraySchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"array", "items": "string"}`)
	require.NoError(t, err)
	require.Equal(t, Array, s.Type())
	assert.Equal(t, String, s.(*ArraySchema).Items.Type())

	s, err = ParseSchema(`{"type":"array", "items": "long"}`)
	require.NoError(t, err)
	assert.Equal(t, Long, s.(*ArraySchema).Items.Type())

	s, err = ParseSchema(`{"type":"array", "items": {"type":"array", "items": "string"}}`)
	require.NoError(t, err)
	require.Equal(t, Array, s.(*ArraySchema).Items.Type())
	assert.Equal(t, String, s.(*ArraySchema).Items.(*ArraySchema).Items.Type())

	s, err = ParseSchema(`{"type":"array", "items": {"type": "record", "name": "TestRecord", "fields": [
		{"name": "longRecordField", "type": "long"},
		{"name": "floatRecordField", "type": "float"}
	]}}`)
	require.NoError(t, err)
	require.Equal(t, Record, s.(*ArraySchema).Items.Type())
	fields := s.(*ArraySchema).Items.(*RecordSchema).Fields
	assert.Equal(t, Long, fields[0].Type.Type())
	assert.Equal(t, Float, fields[1].Type.Type())
}

func TestMapSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"map", "values": "int"}`)
	require.NoError(t, err)
	require.Equal(t, Map, s.Type())
	assert.Equal(t, Int, s.(*MapSchema).Values.Type())

	s, err = ParseSchema(`{"type":"map", "values": {"type":"array", "items": "string"}}`)
	require.NoError(t, err)
	require.Equal(t, Array, s.(*MapSchema).Values.Type())
	assert.Equal(t, String, s.(*MapSchema).Values.(*ArraySchema).Items.Type())

	s, err = ParseSchema(`{"type":"map", "values": ["int", "string"]}`)
	require.NoError(t, err)
	require.Equal(t, Union, s.(*MapSchema).Values.Type())
	union := s.(*MapSchema).Values.(*UnionSchema)
	assert.Equal(t, Int, union.Types[0].Type())
	assert.Equal(t, String, union.Types[1].Type())

	s, err = ParseSchema(`{"type":"map", "values": {"type": "record", "name": "TestRecord2", "fields": [
		{"name": "doubleRecordField", "type": "double"},
		{"name": "fixedRecordField", "type": {"type": "fixed", "size": 4, "name": "bytez"}}
	]}}`)
	require.NoError(t, err)
	require.Equal(t, Record, s.(*MapSchema).Values.Type())
	fields := s.(*MapSchema).Values.(*RecordSchema).Fields
	assert.Equal(t, Double, fields[0].Type.Type())
	assert.Equal(t, Fixed, fields[1].Type.Type())
}

func TestRecordSchema(t *testing.T) {
	s, err := ParseSchema(`{"type": "record", "name": "TestRecord", "fields": [
		{"name": "longRecordField", "type": "long"},
		{"name": "stringRecordField", "type": "string"},
		{"name": "intRecordField", "type": "int"},
		{"name": "floatRecordField", "type": "float"}
	]}`)
	require.NoError(t, err)
	require.Equal(t, Record, s.Type())
	fields := s.(*RecordSchema).Fields
	assert.Equal(t, Long, fields[0].Type.Type())
	assert.Equal(t, String, fields[1].Type.Type())
	assert.Equal(t, Int, fields[2].Type.Type())
	assert.Equal(t, Float, fields[3].Type.Type())

	s, err = ParseSchema(`{"namespace": "scalago",
	"type": "record",
	"name": "PingPong",
	"fields": [
	{"name": "counter", "type": "long"},
	{"name": "name", "type": "string"}
	]}`)
	require.NoError(t, err)
	require.Equal(t, Record, s.Type())
	assert.Equal(t, "PingPong", s.(*RecordSchema).Name)
	f0 := s.(*RecordSchema).Fields[0]
	assert.Equal(t, "counter", f0.Name)
	assert.Equal(t, Long, f0.Type.Type())
	f1 := s.(*RecordSchema).Fields[1]
	assert.Equal(t, "name", f1.Name)
	assert.Equal(t, String, f1.Type.Type())
}

func TestEnumSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"enum", "name":"foo", "symbols":["A", "B", "C", "D"]}`)
	require.NoError(t, err)
	require.Equal(t, Enum, s.Type())
	assert.Equal(t, "foo", s.(*EnumSchema).Name)
	assert.Equal(t, []string{"A", "B", "C", "D"}, s.(*EnumSchema).Symbols)
}

func TestUnionSchema(t *testing.T) {
	s, err := ParseSchema(`["null", "string"]`)
	require.NoError(t, err)
	require.Equal(t, Union, s.Type())
	assert.Equal(t, Null, s.(*UnionSchema).Types[0].Type())
	assert.Equal(t, String, s.(*UnionSchema).Types[1].Type())

	s, err = ParseSchema(`["string", "null"]`)
	require.NoError(t, err)
	assert.Equal(t, String, s.(*UnionSchema).Types[0].Type())
	assert.Equal(t, Null, s.(*UnionSchema).Types[1].Type())
}

func TestFixedSchema(t *testing.T) {
	s, err := ParseSchema(`{"type": "fixed", "size": 16, "name": "md5"}`)
	require.NoError(t, err)
	require.Equal(t, Fixed, s.Type())
	assert.Equal(t, 16, s.(*FixedSchema).Size)
	assert.Equal(t, "md5", s.(*FixedSchema).Name)
}

func TestSchemaRegistryMap(t *testing.T) {
	rawSchema1 := `{"type": "record", "name": "TestRecord", "namespace": "com.github.elodina", "fields": [
		{"name": "longRecordField", "type": "long"}
	]}`
	rawSchema2 := `{"type": "record", "name": "TestRecord2", "namespace": "com.github.elodina", "fields": [
		{"name": "record", "type": ["null", "TestRecord"]}
	]}`
	rawSchema3 := `{"type": "record", "name": "TestRecord3", "namespace": "com.github.other", "fields": [
		{"name": "record", "type": ["null", "com.github.elodina.TestRecord2"]}
	]}`
	rawSchema4 := `{"type": "record", "name": "TestRecord3", "namespace": "com.github.elodina", "fields": [
		{"name": "record", "type": ["null", {"type": "TestRecord2"}, "com.github.other.TestRecord3"]}
	]}`

	registry := make(map[string]Schema)

	s1, err := ParseSchemaWithRegistry(rawSchema1, registry)
	require.NoError(t, err)
	assert.Equal(t, Record, s1.Type())
	assert.Len(t, registry, 1)

	s2, err := ParseSchemaWithRegistry(rawSchema2, registry)
	require.NoError(t, err)
	assert.Equal(t, Record, s2.Type())
	assert.Len(t, registry, 2)

	s3, err := ParseSchemaWithRegistry(rawSchema3, registry)
	require.NoError(t, err)
	assert.Equal(t, Record, s3.Type())
	assert.Len(t, registry, 3)

	s4, err := ParseSchemaWithRegistry(rawSchema4, registry)
	require.NoError(t, err)
	assert.Equal(t, Record, s4.Type())
	assert.Len(t, registry, 4)
}

func TestRecordCustomProps(t *testing.T) {
	s, err := ParseSchema(`{"type": "record", "name": "TestRecord", "hello": "world", "fields": [
		{"name": "longRecordField", "type": "long"},
		{"name": "stringRecordField", "type": "string"},
		{"name": "intRecordField", "type": "int"},
		{"name": "floatRecordField", "type": "float"}
	]}`)
	require.NoError(t, err)
	assert.Len(t, s.(*RecordSchema).Properties, 1)

	value, exists := s.Prop("hello")
	assert.True(t, exists)
	assert.Equal(t, "world", value)
}

func TestLoadSchemas(t *testing.T) {
	schemas := LoadSchemas("test/schemas/")
	assert.Len(t, schemas, 4)

	_, exists := schemas["example.avro.Complex"]
	assert.True(t, exists)
	_, exists = schemas["example.avro.foo"]
	assert.True(t, exists)
}

func TestSchemaEquality(t *testing.T) {
	s0, err := ParseSchema(`{"type": "record", "name": "TestRecord", "namespace": "xyz", "hello": "world", "fields": [
		{"name": "field1", "type": "long"},
		{"name": "field2", "type": "string", "doc": "hello world"}
	]}`)
	require.NoError(t, err)

	s1, err := ParseSchema(`{"type": "record", "name": "TestRecord", "namespace": "xyz", "hello": "world", "fields": [
		{"name": "field1", "type": "long"},
		{"name": "field2", "type": "string", "doc": "hello"}
	]}`)
	require.NoError(t, err)

	s2, err := ParseSchema(`{"type": "record", "name": "TestRecord", "hello": "world", "fields": [
		{"name": "field1", "type": "long", "aliases": ["f1"] },
		{"name": "field2", "type": "string", "doc": "hello"}
	]}`)
	require.NoError(t, err)

	sEnum1, err := ParseSchema(`{"type":"enum", "name":"foo", "symbols":["A", "B", "C", "D"], "doc": "hello"}`)
	require.NoError(t, err)
	sEnum2, err := ParseSchema(`{"type":"enum", "name":"foo", "symbols":["D", "C", "B", "A"]}`)
	require.NoError(t, err)
	sFixed1, err := ParseSchema(`{"type": "fixed", "size": 16, "name": "md5"}`)
	require.NoError(t, err)
	sFixed2, err := ParseSchema(`{"type": "fixed", "size": 32, "name": "md5"}`)
	require.NoError(t, err)
	sFixedSame, err := ParseSchema(`{"type": "fixed", "size": 16, "name": "md5", "doc": "xyz"}`)
	require.NoError(t, err)
	sArray1, err := ParseSchema(`{"type":"array", "items": "string"}`)
	require.NoError(t, err)
	sArray2, err := ParseSchema(`{"type":"array", "items": "long"}`)
	require.NoError(t, err)
	sMap1, err := ParseSchema(`{"type":"map", "values": "float"}`)
	require.NoError(t, err)
	sMap2, err := ParseSchema(`{"type":"map", "values": "double"}`)
	require.NoError(t, err)
	sUnion1, err := ParseSchema(`["null", "string"]`)
	require.NoError(t, err)
	sUnion2, err := ParseSchema(`["string", "null"]`)
	require.NoError(t, err)
	sUnion3, err := ParseSchema(`["string", "int", "float"]`)
	require.NoError(t, err)

	// Doc and aliases are stripped from Parsing Canonical Form, so schemas
	// differing only in those fields fingerprint identically.
	assert.Equal(t, sFixed1.Fingerprint(), sFixedSame.Fingerprint())
	assert.Equal(t, s0.Fingerprint(), s1.Fingerprint())

	normal, err := json.Marshal(sEnum1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"enum","name":"foo","doc":"hello","symbols":["A","B","C","D"]}`, string(normal))

	canonical, err := sEnum1.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"foo","type":"enum","symbols":["A","B","C","D"]}`, string(canonical))

	schemas := []Schema{
		s1, s2,
		sEnum1, sEnum2,
		sFixed1, sFixed2,
		sArray1, sArray2,
		sMap1, sMap2,
		sUnion1, sUnion2, sUnion3,
		new(StringSchema),
		new(BytesSchema),
		new(IntSchema),
		new(LongSchema),
		new(FloatSchema),
		new(DoubleSchema),
		new(BooleanSchema),
		new(NullSchema),
	}
	for i := range schemas {
		for y := range schemas {
			f1 := schemas[i].Fingerprint()
			f2 := schemas[y].Fingerprint()
			if y == i {
				assert.Equal(t, f1, f2)
			} else {
				assert.NotEqualf(t, f1, f2, "different schemas %q and %q have the same fingerprint",
					schemas[i].GetName(), schemas[y].GetName())
			}
		}
	}
}
