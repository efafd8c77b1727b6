package genericreader

import (
	"bytes"
	"testing"

	avro "github.com/pluralsight/spavro-go"
	"github.com/pluralsight/spavro-go/fuzzes"
)

// FuzzGenericRead feeds arbitrary bytes into the generic datum reader against
// fuzzes.ComplexSchema — a record exercising arrays, maps, a union, a fixed,
// an enum, and a nested (possibly map-of) record. The only contract under
// fuzzing is that malformed input returns an error rather than panicking.
func FuzzGenericRead(f *testing.F) {
	reader := avro.NewGenericDatumReader().SetSchema(fuzzes.ComplexSchema)

	record := avro.NewGenericRecord(fuzzes.ComplexSchema)
	record.Set("stringArray", []string{"abc", "def"})
	record.Set("longArray", []int64{1, 2, 3})
	record.Set("enumField", fuzzes.NewComplexEnumField())
	record.Set("mapOfInts", map[string]int32{"a": 1})
	record.Set("unionField", "hello")
	record.Set("fixedField", []byte("0123456789abcdef"))
	record.Set("recordField", nil)
	record.Set("mapOfRecord", map[string]interface{}{})

	writer := avro.NewGenericDatumWriter().SetSchema(fuzzes.ComplexSchema)
	var buf bytes.Buffer
	if err := writer.Write(record, avro.NewBinaryEncoder(&buf)); err == nil {
		f.Add(buf.Bytes())
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		var dest *avro.GenericRecord
		_ = reader.Read(&dest, avro.NewBinaryDecoder(input))
	})
}
