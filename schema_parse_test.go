package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldDefaultValidated(t *testing.T) {
	s, err := ParseSchema(`{
		"type":"record",
		"name":"Rec",
		"fields":[
			{"name":"count","type":"int","default":0}
		]
	}`)
	require.NoError(t, err)
	rec := s.(*RecordSchema)
	assert.Equal(t, int32(0), rec.Fields[0].Default)
}

func TestParseFieldDefaultMismatchRejected(t *testing.T) {
	_, err := ParseSchema(`{
		"type":"record",
		"name":"Rec",
		"fields":[
			{"name":"count","type":"int","default":"not-a-number"}
		]
	}`)
	assert.ErrorIs(t, err, ErrSchemaParse)
}

func TestParseFieldDefaultArrayMismatchRejected(t *testing.T) {
	_, err := ParseSchema(`{
		"type":"record",
		"name":"Rec",
		"fields":[
			{"name":"tags","type":{"type":"array","items":"string"},"default":"oops"}
		]
	}`)
	assert.ErrorIs(t, err, ErrSchemaParse)
}

func TestParseFieldDefaultNullableUnionAccepted(t *testing.T) {
	s, err := ParseSchema(`{
		"type":"record",
		"name":"Rec",
		"fields":[
			{"name":"nickname","type":["null","string"],"default":null}
		]
	}`)
	require.NoError(t, err)
	rec := s.(*RecordSchema)
	assert.True(t, rec.Fields[0].HasDefault)
	assert.Nil(t, rec.Fields[0].Default)
}
