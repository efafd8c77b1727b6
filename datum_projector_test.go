package avro

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func testGeneric(t *testing.T, record *GenericRecord) {
	t.Helper()
	var buf bytes.Buffer
	w := NewGenericDatumWriter().SetSchema(record.Schema())
	require.NoError(t, w.Write(record, NewBinaryEncoder(&buf)))

	r := NewGenericDatumReader().SetSchema(record.Schema())
	decodedRecord := NewGenericRecord(record.Schema())
	require.NoError(t, r.Read(decodedRecord, NewBinaryDecoder(buf.Bytes())))

	require.Equal(t, record.String(), decodedRecord.String())
}

func testSpecific(t *testing.T, record interface{}, schema Schema) {
	t.Helper()
	var buf bytes.Buffer
	w := NewSpecificDatumWriter().SetSchema(schema)
	require.NoError(t, w.Write(record, NewBinaryEncoder(&buf)))

	r := NewSpecificDatumReader().SetSchema(schema)
	decodedRecord := reflect.New(reflect.TypeOf(record).Elem()).Interface()
	require.NoError(t, r.Read(decodedRecord, NewBinaryDecoder(buf.Bytes())))

	require.Equal(t, record, decodedRecord)
}

func TestUnionAsOption(t *testing.T) {
	schema := MustParseSchema(`{
	    "type": "record",
	    "name": "Rec",
	    "fields": [
	        { "name": "opt_bool", "type": ["null", "boolean"] },
	        { "name": "opt_int", "type": ["null", "int"] },
	        { "name": "opt_long", "type": ["null", "long"] },
	        { "name": "opt_float", "type": ["null", "float"] },
			{ "name": "opt_double", "type": ["null", "double"] },
	        { "name": "opt_bytes", "type": ["null", "bytes"] },
	        { "name": "opt_string", "type": ["null", "string"] },
			{ "name": "opt_fixed", "type": ["null", { "name": "fixed6", "type": "fixed", "size": 5 } ] },
			{ "name": "opt_array", "type": ["null", { "type": "array", "items": "string"}] },
			{ "name": "opt_map", "type": ["null", { "type": "map", "values": "string"}] },
			{ "name": "opt_record", "type": [ "null", {
					"name": "Nest",
					"type": "record",
					"fields": [
						{ "name": "id", "type": "int" }
					]
				}
			] }
	    ]
	}`)
	nestedSchema := MustParseSchema(`{
					"name": "Nest",
					"type": "record",
					"fields": [
						{ "name": "id", "type": "int" }
					]
				}`)

	emptyGenericRecord := NewGenericRecord(schema)
	emptyGenericRecord.Set("opt_bool", nil)
	emptyGenericRecord.Set("opt_int", nil)
	emptyGenericRecord.Set("opt_long", nil)
	emptyGenericRecord.Set("opt_float", nil)
	emptyGenericRecord.Set("opt_double", nil)
	emptyGenericRecord.Set("opt_bytes", nil)
	emptyGenericRecord.Set("opt_string", nil)
	emptyGenericRecord.Set("opt_fixed", nil)
	emptyGenericRecord.Set("opt_array", nil)
	emptyGenericRecord.Set("opt_map", nil)
	emptyGenericRecord.Set("opt_record", nil)
	testGeneric(t, emptyGenericRecord)

	genericRecord := NewGenericRecord(schema)
	optBool := true
	genericRecord.Set("opt_bool", &optBool)
	optInt := int32(1)
	genericRecord.Set("opt_int", &optInt)
	optLong := int64(1)
	genericRecord.Set("opt_long", &optLong)
	optFloat := float32(1)
	genericRecord.Set("opt_float", &optFloat)
	optDouble := float64(1)
	genericRecord.Set("opt_double", &optDouble)
	optBytes := []byte("hello")
	genericRecord.Set("opt_bytes", &optBytes)
	optString := "hello"
	genericRecord.Set("opt_string", &optString)
	optFixed := []byte("12345")
	genericRecord.Set("opt_fixed", &optFixed)
	optArray := []string{"hello", "world"}
	genericRecord.Set("opt_array", &optArray)
	optMap := map[string]string{"hello": "world"}
	genericRecord.Set("opt_map", &optMap)
	optNested := NewGenericRecord(nestedSchema)
	optNested.Set("id", int32(1))
	genericRecord.Set("opt_record", optNested)

	testGeneric(t, genericRecord)

	type Nest struct {
		Id int32
	}

	type Rec struct {
		OptBool   *bool
		OptInt    *int32
		OptLong   *int64
		OptFloat  *float32
		OptDouble *float64
		OptBytes  *[]byte
		OptString *string
		OptFixed  *[]byte
		OptArray  *[]string
		OptMap    *map[string]string
		OptRecord *Nest
	}

	emptySpecificRecord := &Rec{}
	testSpecific(t, emptySpecificRecord, schema)

	specificRecord := &Rec{
		OptBool:   &optBool,
		OptInt:    &optInt,
		OptLong:   &optLong,
		OptFloat:  &optFloat,
		OptDouble: &optDouble,
		OptBytes:  &optBytes,
		OptString: &optString,
		OptFixed:  &optFixed,
		OptArray:  &optArray,
		OptMap:    &optMap,
		OptRecord: &Nest{Id: 1},
	}
	testSpecific(t, specificRecord, schema)
}

func TestProjections(t *testing.T) {
	schemaV1 := MustParseSchema(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "deleted", "type": "int" },
						{ "name": "sum", "type": "int" },
						{ "name": "longToDouble", "type": "long" },
						{ "name": "id", "type": "bytes" }
					]
				}`)

	// Fields are reordered; "id" is renamed to "key" (matched by alias);
	// "sum" is promoted from int to long and "longToDouble" from long to
	// double; "added" is a reader-only field filled from its default.
	schemaV2 := MustParseSchema(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "key", "type": "bytes", "aliases": ["id"] },
						{ "name": "sum", "type": "long" },
						{ "name": "longToDouble", "type": "double" },
						{ "name": "added", "type": { "type": "array", "items": "long" }, "default": [1,2,3] }
					]
				}`)

	genRecV1 := NewGenericRecord(schemaV1)
	genRecV1.Set("deleted", int32(5))
	genRecV1.Set("sum", int32(99))
	genRecV1.Set("id", []byte("key1"))
	genRecV1.Set("longToDouble", int64(12345))

	var buf bytes.Buffer
	w := NewGenericDatumWriter().SetSchema(genRecV1.Schema())
	require.NoError(t, w.Write(genRecV1, NewBinaryEncoder(&buf)))

	r := NewDatumProjector(schemaV2, schemaV1)
	decodedRecord := NewGenericRecord(schemaV2)
	require.NoError(t, r.Read(decodedRecord, NewBinaryDecoder(buf.Bytes())))

	require.Equal(t, []byte("key1"), decodedRecord.Get("key"))
	require.Equal(t, int64(99), decodedRecord.Get("sum"))
	require.Len(t, decodedRecord.Get("added"), 3)

	type RecV1 struct {
		Deleted      int32
		Id           []byte
		Sum          int32
		LongToDouble int64
	}
	type RecV2 struct {
		Key          []byte
		Sum          int64
		LongToDouble float64
		Added        []int64
	}

	recV1 := &RecV1{Deleted: 500, Id: []byte("key1"), Sum: 1000, LongToDouble: 12345}
	var buf2 bytes.Buffer
	w2 := NewSpecificDatumWriter().SetSchema(schemaV1)
	require.NoError(t, w2.Write(recV1, NewBinaryEncoder(&buf2)))

	r2 := NewDatumProjector(schemaV2, schemaV1)
	recV2 := new(RecV2)
	require.NoError(t, r2.Read(recV2, NewBinaryDecoder(buf2.Bytes())))

	require.Equal(t, recV1.Id, recV2.Key)
	require.Equal(t, int64(recV1.Sum), recV2.Sum)
	require.Equal(t, float64(recV1.LongToDouble), recV2.LongToDouble)
	require.Len(t, recV2.Added, 3)
}
