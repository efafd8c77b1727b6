package avro

import (
	"fmt"
	"reflect"
)

// This file compiles a Resolution tree (resolve.go) into a pair of closures
// — one that reads bytes off a Decoder into the generic value domain
// (spec.md §9), one that writes generic values to an Encoder — with no
// further schema or resolution dispatch once compilation is done. The
// architecture is grounded on the ValDecoder/ValEncoder compiler in
// _examples/other_examples/015d9405_hamba-avro__codec.go.go, adapted from
// unsafe.Pointer-based native structs to interface{}-based closures over the
// generic record/enum/union representation this engine exposes.

// Codec is a compiled reader/writer pair specialized for one Resolution.
type Codec struct {
	decode func(dec Decoder) (interface{}, error)
	encode func(enc Encoder, v interface{}) error
}

// Decode reads one value off dec according to this codec's resolution.
func (c *Codec) Decode(dec Decoder) (interface{}, error) { return c.decode(dec) }

// Encode writes v to enc according to this codec's resolution.
func (c *Codec) Encode(enc Encoder, v interface{}) error { return c.encode(enc, v) }

// Compile specializes res into a Codec. Compilation is memoized internally
// by Resolution identity so a self-referential (recursive) record resolves
// to a codec that calls back into itself rather than recursing forever at
// compile time.
func Compile(res Resolution) *Codec {
	c := newCompiler()
	return c.compile(res)
}

type compiler struct {
	cache map[Resolution]*Codec
}

func newCompiler() *compiler {
	return &compiler{cache: make(map[Resolution]*Codec)}
}

func (c *compiler) compile(res Resolution) *Codec {
	if cd, ok := c.cache[res]; ok {
		return cd
	}
	// Register a placeholder before recursing so a record field that refers
	// back to an ancestor record finds this entry instead of looping.
	cd := &Codec{}
	c.cache[res] = cd

	switch r := res.(type) {
	case *matchResolution:
		c.compileMatch(cd, r)
	case *recordResolution:
		c.compileRecord(cd, r)
	case *arrayResolution:
		c.compileArray(cd, r)
	case *mapResolution:
		c.compileMap(cd, r)
	case *enumResolution:
		c.compileEnum(cd, r)
	case *fixedResolution:
		c.compileFixed(cd, r)
	case *unionWriterResolution:
		c.compileUnionWriter(cd, r)
	case *unionReaderResolution:
		c.compileUnionReader(cd, r)
	default:
		panic(fmt.Sprintf("avro: codec compiler: unhandled resolution type %T", res))
	}
	return cd
}

func (c *compiler) compileMatch(cd *Codec, r *matchResolution) {
	switch r.Writer.Type() {
	case Null:
		cd.decode = func(dec Decoder) (interface{}, error) { return nil, dec.ReadNull() }
		cd.encode = func(enc Encoder, v interface{}) error { return enc.WriteNull() }

	case Boolean:
		cd.decode = func(dec Decoder) (interface{}, error) { return dec.ReadBoolean() }
		cd.encode = func(enc Encoder, v interface{}) error {
			b, err := asBool(v)
			if err != nil {
				return err
			}
			return enc.WriteBoolean(b)
		}

	case Int:
		cd.decode = func(dec Decoder) (interface{}, error) { return decodePromoted(dec, Int, r.Reader.Type()) }
		cd.encode = func(enc Encoder, v interface{}) error {
			n, err := asInt32(v)
			if err != nil {
				return err
			}
			return enc.WriteInt(n)
		}

	case Long:
		cd.decode = func(dec Decoder) (interface{}, error) { return decodePromoted(dec, Long, r.Reader.Type()) }
		cd.encode = func(enc Encoder, v interface{}) error {
			n, err := asInt64(v)
			if err != nil {
				return err
			}
			return enc.WriteLong(n)
		}

	case Float:
		cd.decode = func(dec Decoder) (interface{}, error) { return decodePromoted(dec, Float, r.Reader.Type()) }
		cd.encode = func(enc Encoder, v interface{}) error {
			f, err := asFloat32(v)
			if err != nil {
				return err
			}
			return enc.WriteFloat(f)
		}

	case Double:
		cd.decode = func(dec Decoder) (interface{}, error) { return dec.ReadDouble() }
		cd.encode = func(enc Encoder, v interface{}) error {
			f, err := asFloat64(v)
			if err != nil {
				return err
			}
			return enc.WriteDouble(f)
		}

	case Bytes:
		cd.decode = func(dec Decoder) (interface{}, error) { return dec.ReadBytes() }
		cd.encode = func(enc Encoder, v interface{}) error {
			b, ok := v.([]byte)
			if !ok {
				return newValueTypeError(GetFullName(r.Writer), "expected []byte, got %T", v)
			}
			return enc.WriteBytes(b)
		}

	case String:
		cd.decode = func(dec Decoder) (interface{}, error) { return dec.ReadString() }
		cd.encode = func(enc Encoder, v interface{}) error {
			s, ok := v.(string)
			if !ok {
				return newValueTypeError(GetFullName(r.Writer), "expected string, got %T", v)
			}
			return enc.WriteString(s)
		}

	default:
		panic(fmt.Sprintf("avro: codec compiler: unhandled primitive type for %s", GetFullName(r.Writer)))
	}
}

// decodePromoted reads a writer-typed numeric value off the wire and widens
// it to the reader's promoted type (spec.md §5.4).
func decodePromoted(dec Decoder, writerType, readerType int) (interface{}, error) {
	switch writerType {
	case Int:
		n, err := dec.ReadInt()
		if err != nil {
			return nil, err
		}
		return promoteInt(n, readerType), nil
	case Long:
		n, err := dec.ReadLong()
		if err != nil {
			return nil, err
		}
		return promoteLong(n, readerType), nil
	case Float:
		f, err := dec.ReadFloat()
		if err != nil {
			return nil, err
		}
		if readerType == Double {
			return float64(f), nil
		}
		return f, nil
	default:
		panic("avro: decodePromoted: unreachable writer type")
	}
}

func promoteInt(n int32, readerType int) interface{} {
	switch readerType {
	case Long:
		return int64(n)
	case Float:
		return float32(n)
	case Double:
		return float64(n)
	default:
		return n
	}
}

func promoteLong(n int64, readerType int) interface{} {
	switch readerType {
	case Float:
		return float32(n)
	case Double:
		return float64(n)
	default:
		return n
	}
}

func (c *compiler) compileRecord(cd *Codec, r *recordResolution) {
	steps := make([]struct {
		match     bool
		fieldName string
		codec     *Codec
		skip      func(dec Decoder) error
	}, len(r.WriterSteps))

	for i, step := range r.WriterSteps {
		if step.Match {
			steps[i].match = true
			steps[i].fieldName = step.ReaderField.Name
			steps[i].codec = c.compile(step.Resolved)
		} else {
			steps[i].skip = compileSkip(step.WriterField.Type)
		}
	}

	defaults := r.DefaultFields

	cd.decode = func(dec Decoder) (interface{}, error) {
		rec := newGenericRecord(r.Reader)
		for _, s := range steps {
			if !s.match {
				if err := s.skip(dec); err != nil {
					return nil, err
				}
				continue
			}
			v, err := s.codec.Decode(dec)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", s.fieldName, err)
			}
			rec.fields[s.fieldName] = v
		}
		for _, f := range defaults {
			rec.fields[f.Name] = f.Default
		}
		return rec, nil
	}

	writerFieldCodecs := make(map[string]*Codec, len(r.Writer.Fields))
	for _, step := range r.WriterSteps {
		if step.Match {
			writerFieldCodecs[step.WriterField.Name] = c.compile(step.Resolved)
		}
	}

	cd.encode = func(enc Encoder, v interface{}) error {
		getField, err := recordFieldGetter(v)
		if err != nil {
			return err
		}
		for _, step := range r.WriterSteps {
			if !step.Match {
				continue
			}
			fv, ok := getField(step.ReaderField.Name)
			if !ok {
				return newValueTypeError(GetFullName(r.Writer), "missing field %q", step.ReaderField.Name)
			}
			if err := writerFieldCodecs[step.WriterField.Name].Encode(enc, fv); err != nil {
				return fmt.Errorf("field %q: %w", step.WriterField.Name, err)
			}
		}
		return nil
	}
}

// recordFieldGetter returns a lookup function over v's fields, accepting
// either a *GenericRecord or a plain map[string]interface{}.
func recordFieldGetter(v interface{}) (func(name string) (interface{}, bool), error) {
	switch rec := v.(type) {
	case *GenericRecord:
		return func(name string) (interface{}, bool) {
			fv, ok := rec.fields[name]
			return fv, ok
		}, nil
	case map[string]interface{}:
		return func(name string) (interface{}, bool) {
			fv, ok := rec[name]
			return fv, ok
		}, nil
	default:
		return nil, newValueTypeError("record", "expected *GenericRecord or map[string]interface{}, got %T", v)
	}
}

func (c *compiler) compileArray(cd *Codec, r *arrayResolution) {
	items := c.compile(r.Items)
	cd.decode = func(dec Decoder) (interface{}, error) {
		var out []interface{}
		for {
			count, _, err := dec.ReadBlockHeader()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			for i := int64(0); i < count; i++ {
				v, err := items.Decode(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
		return out, nil
	}
	cd.encode = func(enc Encoder, v interface{}) error {
		s, err := asSlice(v)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			if err := enc.WriteBlockHeader(int64(len(s))); err != nil {
				return err
			}
			for _, item := range s {
				if err := items.Encode(enc, item); err != nil {
					return err
				}
			}
		}
		return enc.WriteBlockHeader(0)
	}
}

func (c *compiler) compileMap(cd *Codec, r *mapResolution) {
	values := c.compile(r.Values)
	cd.decode = func(dec Decoder) (interface{}, error) {
		out := make(map[string]interface{})
		for {
			count, _, err := dec.ReadBlockHeader()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			for i := int64(0); i < count; i++ {
				key, err := dec.ReadString()
				if err != nil {
					return nil, err
				}
				v, err := values.Decode(dec)
				if err != nil {
					return nil, err
				}
				out[key] = v
			}
		}
		return out, nil
	}
	cd.encode = func(enc Encoder, v interface{}) error {
		m, ok := v.(map[string]interface{})
		if !ok {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
				return newValueTypeError(GetFullName(r.Writer), "expected a map with string keys, got %T", v)
			}
			m = make(map[string]interface{}, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
		}
		if len(m) > 0 {
			if err := enc.WriteBlockHeader(int64(len(m))); err != nil {
				return err
			}
			for k, val := range m {
				if err := enc.WriteString(k); err != nil {
					return err
				}
				if err := values.Encode(enc, val); err != nil {
					return err
				}
			}
		}
		return enc.WriteBlockHeader(0)
	}
}

func (c *compiler) compileEnum(cd *Codec, r *enumResolution) {
	reader := r.Reader
	translate := r.Translate
	cd.decode = func(dec Decoder) (interface{}, error) {
		idx, err := dec.ReadInt()
		if err != nil {
			return nil, err
		}
		if int(idx) < 0 || int(idx) >= len(translate) {
			return nil, newCorruptDataError("enum symbol index %d out of range for writer %s", idx, GetFullName(r.Writer))
		}
		return reader.Symbols[translate[idx]], nil
	}
	cd.encode = func(enc Encoder, v interface{}) error {
		idx, err := enumIndex(v, r.Writer)
		if err != nil {
			return err
		}
		return enc.WriteInt(int32(idx))
	}
}

func enumIndex(v interface{}, schema *EnumSchema) (int, error) {
	switch x := v.(type) {
	case string:
		idx := schema.symbolIndex(x)
		if idx < 0 {
			return 0, newValueTypeError(GetFullName(schema), "symbol %q is not declared", x)
		}
		return idx, nil
	case *GenericEnum:
		return x.Index, nil
	default:
		return 0, newValueTypeError(GetFullName(schema), "expected string or *GenericEnum, got %T", v)
	}
}

func (c *compiler) compileFixed(cd *Codec, r *fixedResolution) {
	size := r.Writer.Size
	cd.decode = func(dec Decoder) (interface{}, error) { return dec.ReadBytesRaw(size) }
	cd.encode = func(enc Encoder, v interface{}) error {
		b, ok := v.([]byte)
		if !ok {
			return newValueTypeError(GetFullName(r.Writer), "expected []byte, got %T", v)
		}
		if len(b) != size {
			return newValueTypeError(GetFullName(r.Writer), "fixed value is %d bytes, schema declares %d", len(b), size)
		}
		return enc.WriteBytesRaw(b)
	}
}

func (c *compiler) compileUnionWriter(cd *Codec, r *unionWriterResolution) {
	branches := make([]*Codec, len(r.BranchResolutions))
	for i, res := range r.BranchResolutions {
		branches[i] = c.compile(res)
	}
	writer := r.Writer
	cd.decode = func(dec Decoder) (interface{}, error) {
		idx, err := dec.ReadLong()
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(branches) {
			return nil, newCorruptDataError("union branch index %d out of range", idx)
		}
		return branches[idx].Decode(dec)
	}
	cd.encode = func(enc Encoder, v interface{}) error {
		idx, payload, err := selectUnionBranch(v, writer)
		if err != nil {
			return err
		}
		if err := enc.WriteLong(int64(idx)); err != nil {
			return err
		}
		return branches[idx].Encode(enc, payload)
	}
}

func (c *compiler) compileUnionReader(cd *Codec, r *unionReaderResolution) {
	inner := c.compile(r.Inner)
	readerIndex := r.ReaderIndex
	reader := r.Reader
	cd.decode = func(dec Decoder) (interface{}, error) {
		v, err := inner.Decode(dec)
		if err != nil {
			return nil, err
		}
		return tagUnionValue(reader, readerIndex, v), nil
	}
	cd.encode = func(enc Encoder, v interface{}) error {
		return inner.Encode(enc, untagUnionValue(v))
	}
}

// selectUnionBranch picks which writer-union branch v belongs to, either
// from an explicit Union{Index, Value} wrapper or by first-match Validate.
func selectUnionBranch(v interface{}, schema *UnionSchema) (int, interface{}, error) {
	if u, ok := v.(Union); ok {
		if u.Index < 0 || u.Index >= len(schema.Types) {
			return 0, nil, newValueTypeError(GetFullName(schema), "union index %d out of range", u.Index)
		}
		return u.Index, u.Value, nil
	}
	if m, ok := v.(map[string]interface{}); ok && len(m) == 1 {
		for branchName, val := range m {
			for i, t := range schema.Types {
				if t.GetName() == branchName || GetFullName(t) == branchName {
					return i, val, nil
				}
			}
		}
	}
	if v == nil {
		if idx := schema.nullIndex(); idx >= 0 {
			return idx, nil, nil
		}
	}
	rv := reflectValueOf(v)
	idx := schema.GetType(rv)
	if idx < 0 {
		return 0, nil, newValueTypeError(GetFullName(schema), "no union branch accepts value of type %T", v)
	}
	return idx, derefInterface(rv), nil
}

// derefInterface collapses the common ["null", T] optional idiom's *T
// wrapper (*bool, *int32, *string, *[]byte, *[]string, ...) down to a plain
// T, and a nil pointer down to untyped nil, so downstream primitive/array/map
// codecs never see a typed pointer. *GenericRecord and *GenericEnum are left
// as-is: those are already the generic value domain's native record/enum
// representation (recordFieldGetter, enumIndex), not a caller convenience
// wrapper to be unwrapped.
func derefInterface(rv reflect.Value) interface{} {
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() != reflect.Ptr {
		return rv.Interface()
	}
	if rv.IsNil() {
		return nil
	}
	switch rv.Interface().(type) {
	case *GenericRecord, *GenericEnum:
		return rv.Interface()
	}
	return derefInterface(rv.Elem())
}

// tagUnionValue wraps a decoded branch value per the generic union
// convention (spec.md §9): the null branch decodes to a bare nil, the
// non-null branch of a two-branch ["null", T] union decodes to the bare
// value, and every other branch decodes to
// map[string]interface{}{branchName: value}, mirroring
// _examples/other_examples/1589cf1a_hamba-avro__reader_generic.go.go.
func tagUnionValue(schema *UnionSchema, idx int, v interface{}) interface{} {
	branch := schema.Types[idx]
	if branch.Type() == Null {
		return nil
	}
	if _, ok := schema.nullableOf(); ok {
		return v
	}
	return map[string]interface{}{branch.GetName(): v}
}

// untagUnionValue unwraps the generic union tagging convention when the
// caller supplied an untagged writer value directly.
func untagUnionValue(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok && len(m) == 1 {
		for _, val := range m {
			return val
		}
	}
	return v
}
