package fuzzes

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	avro "github.com/pluralsight/spavro-go"
)

// TestSpecificComplexRoundTrip writes then reads back each shape the fuzz
// seed corpora (fuzzes/genericreader, fuzzes/specificreadercomplex) exercise,
// checking the specific (struct-bound) path round-trips correctly end to end
// before those bytes are ever handed to a fuzzer.
func TestSpecificComplexRoundTrip(t *testing.T) {
	w := avro.NewSpecificDatumWriter().SetSchema(ComplexSchema)
	r := avro.NewSpecificDatumReader().SetSchema(ComplexSchema)
	fixed16 := []byte("0123456789abcdef")

	roundTrip := func(t *testing.T, v *Complex) *Complex {
		if v.FixedField == nil {
			v.FixedField = fixed16
		}
		if v.EnumField == nil {
			v.EnumField = NewComplexEnumField()
			v.EnumField.SetIndex(3)
		}
		var buf bytes.Buffer
		require.NoError(t, w.Write(v, avro.NewBinaryEncoder(&buf)))

		var dest Complex
		require.NoError(t, r.Read(&dest, avro.NewBinaryDecoder(buf.Bytes())))
		return &dest
	}

	t.Run("strings and fixed", func(t *testing.T) {
		in := &Complex{StringArray: []string{"abc", "def", "ghi", "jkl"}, FixedField: fixed16}
		out := roundTrip(t, in)
		require.Equal(t, in.StringArray, out.StringArray)
		require.Equal(t, in.FixedField, out.FixedField)
	})

	t.Run("longs", func(t *testing.T) {
		in := &Complex{LongArray: []int64{978, -1, math.MaxInt64, math.MinInt64}}
		out := roundTrip(t, in)
		require.Equal(t, in.LongArray, out.LongArray)
	})

	t.Run("map of ints", func(t *testing.T) {
		in := &Complex{MapOfInts: map[string]int32{"aaa": 485, "bbb": math.MaxInt32, "ccc": math.MinInt32}}
		out := roundTrip(t, in)
		require.Equal(t, in.MapOfInts, out.MapOfInts)
	})

	t.Run("union string", func(t *testing.T) {
		in := &Complex{UnionField: "AAAAAAAAAABCDEF"}
		out := roundTrip(t, in)
		require.Equal(t, in.UnionField, out.UnionField)
	})

	t.Run("union bool", func(t *testing.T) {
		in := &Complex{UnionField: true}
		out := roundTrip(t, in)
		require.Equal(t, in.UnionField, out.UnionField)
	})

	t.Run("nested record", func(t *testing.T) {
		in := &Complex{RecordField: &TestRecord{LongRecordField: 1, StringRecordField: "x", IntRecordField: 2, FloatRecordField: 1.5}}
		out := roundTrip(t, in)
		require.Equal(t, in.RecordField, out.RecordField)
	})

	t.Run("map of records", func(t *testing.T) {
		in := &Complex{MapOfRecord: map[string]*TestRecord{
			"k": {LongRecordField: 1, StringRecordField: "x", IntRecordField: 2, FloatRecordField: 1.5},
		}}
		out := roundTrip(t, in)
		require.Equal(t, in.MapOfRecord, out.MapOfRecord)
	})
}
