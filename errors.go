package avro

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the four error kinds this engine distinguishes.
// Use errors.Is(err, avro.ErrCorruptData) etc. to classify a failure.
var (
	// ErrSchemaParse marks a schema text/tree that is ill-formed or violates
	// a structural rule (unknown type name, empty union, duplicate enum
	// symbol, missing required attribute, and so on).
	ErrSchemaParse = errors.New("avro: schema parse error")

	// ErrSchemaResolution marks a writer/reader schema pair that cannot be
	// reconciled. Raised only at resolver/construction time, never while
	// decoding bytes.
	ErrSchemaResolution = errors.New("avro: schema resolution error")

	// ErrValueType marks a value presented to a writer that does not conform
	// to the writer schema.
	ErrValueType = errors.New("avro: value type error")

	// ErrCorruptData marks a byte stream that violates the wire format.
	ErrCorruptData = errors.New("avro: corrupt data error")
)

// SchemaParseError wraps ErrSchemaParse with context about what failed.
type SchemaParseError struct {
	Msg string
	Err error
}

func (e *SchemaParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("avro: schema parse error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("avro: schema parse error: %s", e.Msg)
}

func (e *SchemaParseError) Unwrap() error { return ErrSchemaParse }

func newSchemaParseError(format string, args ...interface{}) error {
	return &SchemaParseError{Msg: fmt.Sprintf(format, args...)}
}

// SchemaResolutionError wraps ErrSchemaResolution with context about which
// writer/reader schemas could not be reconciled.
type SchemaResolutionError struct {
	Msg string
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("avro: schema resolution error: %s", e.Msg)
}

func (e *SchemaResolutionError) Unwrap() error { return ErrSchemaResolution }

func newSchemaResolutionError(format string, args ...interface{}) error {
	return &SchemaResolutionError{Msg: fmt.Sprintf(format, args...)}
}

// ValueTypeError wraps ErrValueType with the schema and value that did not
// conform.
type ValueTypeError struct {
	SchemaName string
	Msg        string
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf("avro: value type error: %s does not conform to schema %q", e.Msg, e.SchemaName)
}

func (e *ValueTypeError) Unwrap() error { return ErrValueType }

func newValueTypeError(schemaName, format string, args ...interface{}) error {
	return &ValueTypeError{SchemaName: schemaName, Msg: fmt.Sprintf(format, args...)}
}

// CorruptDataError wraps ErrCorruptData with context about the wire-format
// violation that was detected.
type CorruptDataError struct {
	Msg string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("avro: corrupt data error: %s", e.Msg)
}

func (e *CorruptDataError) Unwrap() error { return ErrCorruptData }

func newCorruptDataError(format string, args ...interface{}) error {
	return &CorruptDataError{Msg: fmt.Sprintf(format, args...)}
}
