package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePromotion(t *testing.T) {
	cases := []struct {
		writer, reader Schema
		ok             bool
	}{
		{&IntSchema{}, &LongSchema{}, true},
		{&IntSchema{}, &FloatSchema{}, true},
		{&IntSchema{}, &DoubleSchema{}, true},
		{&LongSchema{}, &FloatSchema{}, true},
		{&LongSchema{}, &DoubleSchema{}, true},
		{&FloatSchema{}, &DoubleSchema{}, true},
		{&IntSchema{}, &IntSchema{}, true},
		{&LongSchema{}, &IntSchema{}, false},
		{&DoubleSchema{}, &FloatSchema{}, false},
		{&StringSchema{}, &IntSchema{}, false},
	}
	for _, c := range cases {
		_, err := Resolve(c.writer, c.reader)
		if c.ok {
			assert.NoErrorf(t, err, "%s -> %s should resolve", c.writer.GetName(), c.reader.GetName())
		} else {
			assert.Errorf(t, err, "%s -> %s should not resolve", c.writer.GetName(), c.reader.GetName())
		}
	}
}

func TestResolveRecordFieldByAlias(t *testing.T) {
	writer := MustParseSchema(`{"type":"record","name":"Rec","fields":[
		{"name":"id","type":"string"},
		{"name":"count","type":"int"}
	]}`)
	reader := MustParseSchema(`{"type":"record","name":"Rec","fields":[
		{"name":"key","type":"string","aliases":["id"]},
		{"name":"count","type":"long"}
	]}`)

	res, err := Resolve(writer, reader)
	require.NoError(t, err)

	rr, ok := res.(*recordResolution)
	require.True(t, ok)
	require.Len(t, rr.WriterSteps, 2)
	assert.True(t, rr.WriterSteps[0].Match)
	assert.Equal(t, "key", rr.WriterSteps[0].ReaderField.Name)
	assert.True(t, rr.WriterSteps[1].Match)
	assert.Equal(t, "count", rr.WriterSteps[1].ReaderField.Name)
}

func TestResolveRecordMissingFieldNeedsDefault(t *testing.T) {
	writer := MustParseSchema(`{"type":"record","name":"Rec","fields":[
		{"name":"id","type":"string"}
	]}`)

	readerNoDefault := MustParseSchema(`{"type":"record","name":"Rec","fields":[
		{"name":"id","type":"string"},
		{"name":"count","type":"int"}
	]}`)
	_, err := Resolve(writer, readerNoDefault)
	assert.Error(t, err)

	readerWithDefault := MustParseSchema(`{"type":"record","name":"Rec","fields":[
		{"name":"id","type":"string"},
		{"name":"count","type":"int","default":0}
	]}`)
	res, err := Resolve(writer, readerWithDefault)
	require.NoError(t, err)
	rr := res.(*recordResolution)
	require.Len(t, rr.DefaultFields, 1)
	assert.Equal(t, "count", rr.DefaultFields[0].Name)
}

func TestResolveEnumTranslation(t *testing.T) {
	writer := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["CLUBS","HEARTS"]}`)
	reader := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["HEARTS","CLUBS","SPADES"]}`)

	res, err := Resolve(writer, reader)
	require.NoError(t, err)
	er := res.(*enumResolution)
	// CLUBS (writer index 0) is reader index 1; HEARTS (writer index 1) is reader index 0
	assert.Equal(t, []int{1, 0}, er.Translate)

	badReader := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["HEARTS"]}`)
	_, err = Resolve(writer, badReader)
	assert.Error(t, err)
}

func TestResolveArrayAndMap(t *testing.T) {
	arrWriter := MustParseSchema(`{"type":"array","items":"int"}`)
	arrReader := MustParseSchema(`{"type":"array","items":"long"}`)
	res, err := Resolve(arrWriter, arrReader)
	require.NoError(t, err)
	_, ok := res.(*arrayResolution)
	assert.True(t, ok)

	mapWriter := MustParseSchema(`{"type":"map","values":"int"}`)
	mapReader := MustParseSchema(`{"type":"map","values":"double"}`)
	res, err = Resolve(mapWriter, mapReader)
	require.NoError(t, err)
	_, ok = res.(*mapResolution)
	assert.True(t, ok)
}

func TestResolveUnionWriterAndReader(t *testing.T) {
	writer := MustParseSchema(`["null", "int"]`)
	reader := &IntSchema{}
	res, err := Resolve(writer, reader)
	require.NoError(t, err)
	_, ok := res.(*unionWriterResolution)
	assert.True(t, ok)

	writer2 := &IntSchema{}
	reader2 := MustParseSchema(`["null", "long"]`)
	res, err = Resolve(writer2, reader2)
	require.NoError(t, err)
	_, ok = res.(*unionReaderResolution)
	assert.True(t, ok)
}

func TestResolveSelfReferentialRecord(t *testing.T) {
	schema := MustParseSchema(`{
		"type":"record",
		"name":"LongList",
		"fields":[
			{"name":"value","type":"long"},
			{"name":"next","type":["null","LongList"]}
		]
	}`)

	res, err := Resolve(schema, schema)
	require.NoError(t, err)

	rr, ok := res.(*recordResolution)
	require.True(t, ok)
	require.Len(t, rr.WriterSteps, 2)

	nextStep := rr.WriterSteps[1]
	require.True(t, nextStep.Match)
	uw, ok := nextStep.Resolved.(*unionWriterResolution)
	require.True(t, ok)
	require.Len(t, uw.BranchResolutions, 2)

	// The non-null branch resolves the record against the reader union's
	// record branch; the inner resolution must be the very same
	// *recordResolution node as the top-level result, or the compiled codec
	// (codec.go's Resolution-identity cache) could not stop recursing when it
	// reaches this field.
	ur, ok := uw.BranchResolutions[1].(*unionReaderResolution)
	require.True(t, ok)
	assert.Same(t, rr, ur.Inner)
}

func TestResolveSelfReferentialRecordThroughArray(t *testing.T) {
	schema := MustParseSchema(`{
		"type":"record",
		"name":"Tree",
		"fields":[
			{"name":"label","type":"string"},
			{"name":"children","type":{"type":"array","items":"Tree"}}
		]
	}`)

	res, err := Resolve(schema, schema)
	require.NoError(t, err)
	rr := res.(*recordResolution)

	childrenStep := rr.WriterSteps[1]
	require.True(t, childrenStep.Match)
	ar, ok := childrenStep.Resolved.(*arrayResolution)
	require.True(t, ok)
	assert.Same(t, rr, ar.Items)
}

func TestResolveRecordFullnameMismatch(t *testing.T) {
	writer := MustParseSchema(`{"type":"record","name":"A","fields":[{"name":"id","type":"string"}]}`)
	reader := MustParseSchema(`{"type":"record","name":"B","fields":[{"name":"id","type":"string"}]}`)
	_, err := Resolve(writer, reader)
	assert.Error(t, err)
}

func TestResolveEnumFullnameMismatch(t *testing.T) {
	writer := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["CLUBS","HEARTS"]}`)
	reader := MustParseSchema(`{"type":"enum","name":"Color","symbols":["CLUBS","HEARTS"]}`)
	_, err := Resolve(writer, reader)
	assert.Error(t, err)
}

func TestResolveFixedFullnameMismatch(t *testing.T) {
	writer := MustParseSchema(`{"type":"fixed","name":"MD5","size":16}`)
	reader := MustParseSchema(`{"type":"fixed","name":"Hash16","size":16}`)
	_, err := Resolve(writer, reader)
	assert.Error(t, err)
}
