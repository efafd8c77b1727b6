package specificreadercomplex

import (
	"bytes"
	"math"
	"testing"

	avro "github.com/pluralsight/spavro-go"
	"github.com/pluralsight/spavro-go/fuzzes"
)

// FuzzSpecificRead seeds the corpus with encodings of hand-built
// fuzzes.Complex values — one per parameterized type the schema exercises —
// then fuzzes the struct-binding reader path (genericToStruct/unwrapForStruct
// in datum_specific.go) with arbitrary bytes.
func FuzzSpecificRead(f *testing.F) {
	writer := avro.NewSpecificDatumWriter().SetSchema(fuzzes.ComplexSchema)
	fixed16 := []byte("0123456789abcdef")

	seed := func(v *fuzzes.Complex) {
		if v.FixedField == nil {
			v.FixedField = fixed16
		}
		if v.EnumField == nil {
			v.EnumField = fuzzes.NewComplexEnumField()
			v.EnumField.SetIndex(3)
		}
		var buf bytes.Buffer
		if err := writer.Write(v, avro.NewBinaryEncoder(&buf)); err != nil {
			return
		}
		f.Add(buf.Bytes())
	}

	seed(&fuzzes.Complex{StringArray: []string{"abc", "def", "ghi", "jkl"}, FixedField: fixed16})
	seed(&fuzzes.Complex{LongArray: []int64{978, -1, math.MaxInt64, math.MinInt64}})
	seed(&fuzzes.Complex{MapOfInts: map[string]int32{"aaa": 485, "bbb": math.MaxInt32, "ccc": math.MinInt32}})
	seed(&fuzzes.Complex{UnionField: "AAAAAAAAAABCDEF"})
	seed(&fuzzes.Complex{UnionField: true})
	seed(&fuzzes.Complex{RecordField: &fuzzes.TestRecord{LongRecordField: 1, StringRecordField: "x", IntRecordField: 2, FloatRecordField: 1.5}})
	seed(&fuzzes.Complex{MapOfRecord: map[string]*fuzzes.TestRecord{
		"k": {LongRecordField: 1, StringRecordField: "x", IntRecordField: 2, FloatRecordField: 1.5},
	}})

	reader := avro.NewSpecificDatumReader().SetSchema(fuzzes.ComplexSchema)
	f.Fuzz(func(t *testing.T, input []byte) {
		var dest fuzzes.Complex
		_ = reader.Read(&dest, avro.NewBinaryDecoder(input))
	})
}
