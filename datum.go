package avro

import "reflect"

// GenericDatumWriter writes values through the generic representation
// (map[string]interface{} / *GenericRecord / *GenericEnum), matching the
// API surface _examples/go-avro-avro/*_test.go exercises via
// NewGenericDatumWriter().SetSchema(...).Write(...).
type GenericDatumWriter struct {
	schema Schema
	codec  *Codec
	err    error
}

// NewGenericDatumWriter creates a GenericDatumWriter with no schema set.
// SetSchema must be called before Write.
func NewGenericDatumWriter() *GenericDatumWriter {
	return &GenericDatumWriter{}
}

// SetSchema binds the writer to schema, compiling a no-resolution codec
// (the writer and reader schema are identical), and returns the writer for
// chaining.
func (w *GenericDatumWriter) SetSchema(schema Schema) *GenericDatumWriter {
	w.schema = schema
	res, err := Resolve(schema, schema)
	if err != nil {
		w.err = err
		return w
	}
	w.codec = Compile(res)
	return w
}

// Write encodes datum — a *GenericRecord, *GenericEnum, map[string]interface{},
// or primitive Go value matching w's schema — to enc, flushing enc's
// buffered output afterward.
func (w *GenericDatumWriter) Write(datum interface{}, enc Encoder) error {
	if w.err != nil {
		return w.err
	}
	if w.codec == nil {
		return newSchemaResolutionError("GenericDatumWriter: SetSchema was never called")
	}
	if err := w.codec.Encode(enc, datum); err != nil {
		return err
	}
	return enc.Flush()
}

// GenericDatumReader reads values into the generic representation.
type GenericDatumReader struct {
	schema Schema
	codec  *Codec
	err    error
}

// NewGenericDatumReader creates a GenericDatumReader with no schema set.
func NewGenericDatumReader() *GenericDatumReader {
	return &GenericDatumReader{}
}

// SetSchema binds the reader to schema (used as both writer and reader
// schema — for cross-schema resolution use NewDatumProjector instead).
func (r *GenericDatumReader) SetSchema(schema Schema) *GenericDatumReader {
	r.schema = schema
	res, err := Resolve(schema, schema)
	if err != nil {
		r.err = err
		return r
	}
	r.codec = Compile(res)
	return r
}

// Read decodes one value from dec into target, which must be a
// *GenericRecord, *GenericEnum, or pointer to a Go value matching r's
// schema.
func (r *GenericDatumReader) Read(target interface{}, dec Decoder) error {
	if r.err != nil {
		return r.err
	}
	if r.codec == nil {
		return newSchemaResolutionError("GenericDatumReader: SetSchema was never called")
	}
	v, err := r.codec.Decode(dec)
	if err != nil {
		return err
	}
	return assignGeneric(target, v)
}

// assignGeneric copies a decoded generic value into target.
func assignGeneric(target interface{}, v interface{}) error {
	switch t := target.(type) {
	case *GenericRecord:
		gr, ok := v.(*GenericRecord)
		if !ok {
			return newValueTypeError("record", "decoded value is %T, not a record", v)
		}
		t.fields = gr.fields
		if t.schema == nil {
			t.schema = gr.schema
		}
		return nil
	case *GenericEnum:
		switch ge := v.(type) {
		case *GenericEnum:
			t.Index = ge.Index
			if len(t.Symbols) == 0 {
				t.Symbols = ge.Symbols
			}
			return nil
		case string:
			// The enum codec decodes to the symbol string; its index is
			// looked up in the target's own symbol list.
			for i, s := range t.Symbols {
				if s == ge {
					t.Index = i
					return nil
				}
			}
			return newValueTypeError("enum", "decoded symbol %q is not among the target's symbols", ge)
		}
		return newValueTypeError("enum", "decoded value is %T, not an enum", v)
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newValueTypeError("generic", "Read target must be a non-nil pointer, got %T", target)
	}
	elem := rv.Elem()
	if v == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	vv := reflect.ValueOf(v)
	if !vv.Type().AssignableTo(elem.Type()) {
		return newValueTypeError("generic", "cannot assign decoded %T into %s", v, elem.Type())
	}
	elem.Set(vv)
	return nil
}

// SpecificDatumWriter writes values bound to a caller-supplied Go struct
// type through the generic codec, converting struct fields to the generic
// domain via structToGeneric (datum_specific.go).
type SpecificDatumWriter struct {
	schema Schema
	record *RecordSchema
	codec  *Codec
	err    error
}

// NewSpecificDatumWriter creates a SpecificDatumWriter with no schema set.
func NewSpecificDatumWriter() *SpecificDatumWriter {
	return &SpecificDatumWriter{}
}

// SetSchema binds the writer to schema, which must be a record schema.
func (w *SpecificDatumWriter) SetSchema(schema Schema) *SpecificDatumWriter {
	w.schema = schema
	rs, ok := actualSchema(schema).(*RecordSchema)
	if !ok {
		w.err = newValueTypeError(GetFullName(schema), "SpecificDatumWriter requires a record schema")
		return w
	}
	w.record = rs
	res, err := Resolve(schema, schema)
	if err != nil {
		w.err = err
		return w
	}
	w.codec = Compile(res)
	return w
}

// Write converts datum (a struct or pointer to struct) to the generic
// representation and encodes it to enc.
func (w *SpecificDatumWriter) Write(datum interface{}, enc Encoder) error {
	if w.err != nil {
		return w.err
	}
	if w.codec == nil {
		return newSchemaResolutionError("SpecificDatumWriter: SetSchema was never called")
	}
	m, err := structToGeneric(datum, w.record)
	if err != nil {
		return err
	}
	if err := w.codec.Encode(enc, m); err != nil {
		return err
	}
	return enc.Flush()
}

// SpecificDatumReader reads values into a caller-supplied Go struct type.
type SpecificDatumReader struct {
	schema Schema
	record *RecordSchema
	codec  *Codec
	err    error
}

// NewSpecificDatumReader creates a SpecificDatumReader with no schema set.
func NewSpecificDatumReader() *SpecificDatumReader {
	return &SpecificDatumReader{}
}

// SetSchema binds the reader to schema, which must be a record schema.
func (r *SpecificDatumReader) SetSchema(schema Schema) *SpecificDatumReader {
	r.schema = schema
	rs, ok := actualSchema(schema).(*RecordSchema)
	if !ok {
		r.err = newValueTypeError(GetFullName(schema), "SpecificDatumReader requires a record schema")
		return r
	}
	r.record = rs
	res, err := Resolve(schema, schema)
	if err != nil {
		r.err = err
		return r
	}
	r.codec = Compile(res)
	return r
}

// Read decodes one record from dec into target, a pointer to a Go struct.
func (r *SpecificDatumReader) Read(target interface{}, dec Decoder) error {
	if r.err != nil {
		return r.err
	}
	if r.codec == nil {
		return newSchemaResolutionError("SpecificDatumReader: SetSchema was never called")
	}
	v, err := r.codec.Decode(dec)
	if err != nil {
		return err
	}
	return genericToStruct(target, r.record, v)
}

// DatumProjector reads data written under writerSchema into a value bound
// to readerSchema, applying full Avro schema resolution (promotion, field
// matching by name/alias, default-fill, enum translation). Named after
// _examples/go-avro-avro/datum_projector.go, whose
// NewDatumProjector(readerSchema, writerSchema) signature this mirrors.
type DatumProjector struct {
	reader Schema
	record *RecordSchema
	codec  *Codec
	err    error
}

// NewDatumProjector builds a projector resolving writerSchema against
// readerSchema.
func NewDatumProjector(readerSchema, writerSchema Schema) *DatumProjector {
	p := &DatumProjector{reader: readerSchema}
	if rs, ok := actualSchema(readerSchema).(*RecordSchema); ok {
		p.record = rs
	}
	res, err := Resolve(writerSchema, readerSchema)
	if err != nil {
		p.err = err
		return p
	}
	p.codec = Compile(res)
	return p
}

// Read decodes one resolved value from dec into target: a *GenericRecord,
// *GenericEnum, pointer to a Go struct, or pointer to a primitive Go value,
// depending on target's runtime type.
func (p *DatumProjector) Read(target interface{}, dec Decoder) error {
	if p.err != nil {
		return p.err
	}
	if p.codec == nil {
		return newSchemaResolutionError("DatumProjector: schema was never resolved")
	}
	v, err := p.codec.Decode(dec)
	if err != nil {
		return err
	}
	switch target.(type) {
	case *GenericRecord, *GenericEnum:
		return assignGeneric(target, v)
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct && p.record != nil {
		return genericToStruct(target, p.record, v)
	}
	return assignGeneric(target, v)
}

// DatumWriter is the common Write method of GenericDatumWriter and
// SpecificDatumWriter. Each implementation handles one value model; neither
// switches between them by the runtime type of the value.
type DatumWriter interface {
	Write(datum interface{}, enc Encoder) error
}

// DatumReader is the common Read method of GenericDatumReader,
// SpecificDatumReader and DatumProjector.
type DatumReader interface {
	Read(target interface{}, dec Decoder) error
}

// NewDatumWriter returns a GenericDatumWriter bound to schema. It does not
// choose the specific (struct-bound) path for struct values; callers writing
// Go structs should use NewSpecificDatumWriter directly.
func NewDatumWriter(schema Schema) DatumWriter {
	return NewGenericDatumWriter().SetSchema(schema)
}

// NewDatumReader returns a GenericDatumReader bound to schema; callers
// reading into Go structs should use NewSpecificDatumReader directly.
func NewDatumReader(schema Schema) DatumReader {
	return NewGenericDatumReader().SetSchema(schema)
}
