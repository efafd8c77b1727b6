package avro

import "fmt"

// compileSkip builds a skip-only decoder for schema: used for writer record
// fields the reader schema dropped, where no value is ever materialized.
// Grounded on the per-type skip-decoder switch in
// _examples/other_examples/f3fc6787_hamba-avro__codec_skip.go.go.
func compileSkip(schema Schema) func(dec Decoder) error {
	switch s := actualSchema(schema).(type) {
	case *NullSchema:
		return func(dec Decoder) error { return dec.SkipNull() }
	case *BooleanSchema:
		return func(dec Decoder) error { return dec.SkipBoolean() }
	case *IntSchema:
		return func(dec Decoder) error { return dec.SkipInt() }
	case *LongSchema:
		return func(dec Decoder) error { return dec.SkipLong() }
	case *FloatSchema:
		return func(dec Decoder) error { return dec.SkipFloat() }
	case *DoubleSchema:
		return func(dec Decoder) error { return dec.SkipDouble() }
	case *BytesSchema:
		return func(dec Decoder) error { return dec.SkipBytes() }
	case *StringSchema:
		return func(dec Decoder) error { return dec.SkipString() }
	case *FixedSchema:
		size := s.Size
		return func(dec Decoder) error {
			_, err := dec.ReadBytesRaw(size)
			return err
		}
	case *EnumSchema:
		return func(dec Decoder) error { return dec.SkipInt() }
	case *ArraySchema:
		itemSkip := compileSkip(s.Items)
		return func(dec Decoder) error {
			for {
				count, size, err := dec.ReadBlockHeader()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				if size > 0 {
					if err := dec.(interface{ skipRaw(int64) error }).skipRaw(size); err != nil {
						return err
					}
					continue
				}
				for i := int64(0); i < count; i++ {
					if err := itemSkip(dec); err != nil {
						return err
					}
				}
			}
		}
	case *MapSchema:
		valueSkip := compileSkip(s.Values)
		return func(dec Decoder) error {
			for {
				count, size, err := dec.ReadBlockHeader()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				if size > 0 {
					if err := dec.(interface{ skipRaw(int64) error }).skipRaw(size); err != nil {
						return err
					}
					continue
				}
				for i := int64(0); i < count; i++ {
					if err := dec.SkipString(); err != nil {
						return err
					}
					if err := valueSkip(dec); err != nil {
						return err
					}
				}
			}
		}
	case *RecordSchema:
		fieldSkips := make([]func(Decoder) error, len(s.Fields))
		for i, f := range s.Fields {
			fieldSkips[i] = compileSkip(f.Type)
		}
		return func(dec Decoder) error {
			for _, skip := range fieldSkips {
				if err := skip(dec); err != nil {
					return err
				}
			}
			return nil
		}
	case *UnionSchema:
		branchSkips := make([]func(Decoder) error, len(s.Types))
		for i, t := range s.Types {
			branchSkips[i] = compileSkip(t)
		}
		return func(dec Decoder) error {
			idx, err := dec.ReadLong()
			if err != nil {
				return err
			}
			if idx < 0 || int(idx) >= len(branchSkips) {
				return newCorruptDataError("union branch index %d out of range while skipping", idx)
			}
			return branchSkips[idx](dec)
		}
	default:
		panic(fmt.Sprintf("avro: codec compiler: unhandled schema type for skip: %T", s))
	}
}
