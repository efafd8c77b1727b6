package avro

// This file implements writer/reader schema resolution (spec.md §5),
// grounded on the reference resolver at
// _examples/original_source/src/spavro/schema_resolve.py and the
// field-projection sketch in _examples/go-avro-avro/datum_projector.go.
//
// Resolve walks a writer schema and a reader schema together and produces a
// Resolution tree: a plan the codec compiler (codec.go) turns into a pair of
// closures that can decode bytes written under Writer directly into values
// shaped by Reader, with no schema dispatch left at codec-run time.

// promotionRank orders Avro's numeric promotion chain: a writer value may be
// promoted to any reader type at the same or higher rank.
var promotionRank = map[int]int{
	Int:    0,
	Long:   1,
	Float:  2,
	Double: 3,
}

// Resolution is the result of reconciling one writer schema node against one
// reader schema node.
type Resolution interface {
	WriterSchema() Schema
	ReaderSchema() Schema
}

// matchResolution covers primitive-to-primitive resolution: either an exact
// type match, or a numeric promotion (writer rank <= reader rank).
type matchResolution struct {
	Writer, Reader Schema
	Promoted       bool
}

func (m *matchResolution) WriterSchema() Schema { return m.Writer }
func (m *matchResolution) ReaderSchema() Schema { return m.Reader }

// recordResolution resolves a writer record against a reader record.
// WriterSteps is in WRITER field order — the order fields actually appear on
// the wire — and each step is either a Match (decode into the named reader
// field) or a pure Skip (writer wrote a field the reader schema dropped).
// DefaultFields lists reader fields with no writer counterpart; every one of
// them is guaranteed (at resolve time) to carry a default value.
type recordResolution struct {
	Writer, Reader *RecordSchema
	WriterSteps    []*recordFieldStep
	DefaultFields  []*SchemaField
}

func (r *recordResolution) WriterSchema() Schema { return r.Writer }
func (r *recordResolution) ReaderSchema() Schema { return r.Reader }

type recordFieldStep struct {
	WriterField *SchemaField
	// Match is false when this writer field has no corresponding reader
	// field and must merely be skipped on the wire.
	Match       bool
	ReaderField *SchemaField
	ReaderIndex int
	Resolved    Resolution
}

// arrayResolution resolves a writer array against a reader array.
type arrayResolution struct {
	Writer, Reader *ArraySchema
	Items          Resolution
}

func (a *arrayResolution) WriterSchema() Schema { return a.Writer }
func (a *arrayResolution) ReaderSchema() Schema { return a.Reader }

// mapResolution resolves a writer map against a reader map.
type mapResolution struct {
	Writer, Reader *MapSchema
	Values         Resolution
}

func (m *mapResolution) WriterSchema() Schema { return m.Writer }
func (m *mapResolution) ReaderSchema() Schema { return m.Reader }

// enumResolution resolves a writer enum against a reader enum. Translate
// maps a writer symbol index to the corresponding reader symbol index; it is
// built once at resolve time so decoding never does a string comparison.
type enumResolution struct {
	Writer, Reader *EnumSchema
	Translate      []int
}

func (e *enumResolution) WriterSchema() Schema { return e.Writer }
func (e *enumResolution) ReaderSchema() Schema { return e.Reader }

// fixedResolution resolves a writer fixed against a reader fixed of the same
// declared size.
type fixedResolution struct {
	Writer, Reader *FixedSchema
}

func (f *fixedResolution) WriterSchema() Schema { return f.Writer }
func (f *fixedResolution) ReaderSchema() Schema { return f.Reader }

// unionWriterResolution covers a union writer schema: the wire tells us
// which branch was written (an index into Writer.Types), and
// BranchResolutions[index] resolves that branch against Reader (which may or
// may not itself be a union).
type unionWriterResolution struct {
	Writer            *UnionSchema
	Reader            Schema
	BranchResolutions []Resolution
}

func (u *unionWriterResolution) WriterSchema() Schema { return u.Writer }
func (u *unionWriterResolution) ReaderSchema() Schema { return u.Reader }

// unionReaderResolution covers a non-union writer schema resolved against a
// union reader schema: Inner resolves Writer against the matching reader
// branch, and ReaderIndex names that branch so the decoded value can be
// tagged on the way into the reader's union representation.
type unionReaderResolution struct {
	Writer      Schema
	Reader      *UnionSchema
	ReaderIndex int
	Inner       Resolution
}

func (u *unionReaderResolution) WriterSchema() Schema { return u.Writer }
func (u *unionReaderResolution) ReaderSchema() Schema { return u.Reader }

// recordResolveKey identifies one writer/reader record pair by schema
// identity, so a self- or mutually-referential record (spec.md §3's
// cons-list example: {"name":"next","type":["null","LongList"]}) can be
// detected as a cycle instead of driving Resolve into unbounded recursion.
type recordResolveKey struct {
	writer, reader *RecordSchema
}

// resolveContext carries the set of record pairs currently being resolved
// on the active call stack of one top-level Resolve call.
type resolveContext struct {
	inProgress map[recordResolveKey]*recordResolution
}

func newResolveContext() *resolveContext {
	return &resolveContext{inProgress: make(map[recordResolveKey]*recordResolution)}
}

// Resolve reconciles writer against reader and returns a Resolution tree, or
// a *SchemaResolutionError (via errors.Is(err, avro.ErrSchemaResolution)) if
// the two schemas cannot be reconciled.
func Resolve(writer, reader Schema) (Resolution, error) {
	return resolve(newResolveContext(), writer, reader)
}

func resolve(ctx *resolveContext, writer, reader Schema) (Resolution, error) {
	writer = actualSchema(writer)
	reader = actualSchema(reader)

	if writer.Type() == Union {
		us := writer.(*UnionSchema)
		branches := make([]Resolution, len(us.Types))
		for i, wt := range us.Types {
			res, err := resolve(ctx, wt, reader)
			if err != nil {
				return nil, newSchemaResolutionError("union writer branch #%d (%s): %v", i, GetFullName(wt), err)
			}
			branches[i] = res
		}
		return &unionWriterResolution{Writer: us, Reader: reader, BranchResolutions: branches}, nil
	}

	if reader.Type() == Union {
		rs := reader.(*UnionSchema)
		for i, rt := range rs.Types {
			if inner, err := resolve(ctx, writer, rt); err == nil {
				return &unionReaderResolution{Writer: writer, Reader: rs, ReaderIndex: i, Inner: inner}, nil
			}
		}
		return nil, newSchemaResolutionError("writer type %s has no compatible branch in reader union", GetFullName(writer))
	}

	switch writer.Type() {
	case Null, Boolean, String:
		if writer.Type() != reader.Type() {
			return nil, newSchemaResolutionError("cannot resolve writer %s against reader %s", GetFullName(writer), GetFullName(reader))
		}
		return &matchResolution{Writer: writer, Reader: reader}, nil

	case Bytes:
		if reader.Type() != Bytes {
			return nil, newSchemaResolutionError("cannot resolve writer bytes against reader %s", GetFullName(reader))
		}
		return &matchResolution{Writer: writer, Reader: reader}, nil

	case Int, Long, Float, Double:
		return resolvePrimitiveNumeric(writer, reader)

	case Record:
		wr, ok1 := writer.(*RecordSchema)
		rr, ok2 := reader.(*RecordSchema)
		if !ok1 || !ok2 {
			return nil, newSchemaResolutionError("cannot resolve record writer against non-record reader %s", GetFullName(reader))
		}
		return resolveRecord(ctx, wr, rr)

	case Enum:
		we, ok1 := writer.(*EnumSchema)
		re, ok2 := reader.(*EnumSchema)
		if !ok1 || !ok2 {
			return nil, newSchemaResolutionError("cannot resolve enum writer against non-enum reader %s", GetFullName(reader))
		}
		return resolveEnum(we, re)

	case Array:
		wa, ok1 := writer.(*ArraySchema)
		ra, ok2 := reader.(*ArraySchema)
		if !ok1 || !ok2 {
			return nil, newSchemaResolutionError("cannot resolve array writer against non-array reader %s", GetFullName(reader))
		}
		items, err := resolve(ctx, wa.Items, ra.Items)
		if err != nil {
			return nil, newSchemaResolutionError("array items: %v", err)
		}
		return &arrayResolution{Writer: wa, Reader: ra, Items: items}, nil

	case Map:
		wm, ok1 := writer.(*MapSchema)
		rm, ok2 := reader.(*MapSchema)
		if !ok1 || !ok2 {
			return nil, newSchemaResolutionError("cannot resolve map writer against non-map reader %s", GetFullName(reader))
		}
		values, err := resolve(ctx, wm.Values, rm.Values)
		if err != nil {
			return nil, newSchemaResolutionError("map values: %v", err)
		}
		return &mapResolution{Writer: wm, Reader: rm, Values: values}, nil

	case Fixed:
		wf, ok1 := writer.(*FixedSchema)
		rf, ok2 := reader.(*FixedSchema)
		if !ok1 || !ok2 {
			return nil, newSchemaResolutionError("cannot resolve fixed writer against non-fixed reader %s", GetFullName(reader))
		}
		if GetFullName(wf) != GetFullName(rf) {
			return nil, newSchemaResolutionError("fixed fullname mismatch: writer %s, reader %s", GetFullName(wf), GetFullName(rf))
		}
		if wf.Size != rf.Size {
			return nil, newSchemaResolutionError("fixed size mismatch: writer %s is %d bytes, reader %s is %d bytes",
				GetFullName(wf), wf.Size, GetFullName(rf), rf.Size)
		}
		return &fixedResolution{Writer: wf, Reader: rf}, nil

	default:
		return nil, newSchemaResolutionError("unresolvable writer schema type for %s", GetFullName(writer))
	}
}

// actualSchema unwraps a RecursiveSchema placeholder to the RecordSchema it
// ultimately names, so resolution never has to special-case Recursive.
func actualSchema(s Schema) Schema {
	if rs, ok := s.(*RecursiveSchema); ok {
		return rs.Actual
	}
	return s
}

func resolvePrimitiveNumeric(writer, reader Schema) (Resolution, error) {
	wr, wok := promotionRank[writer.Type()]
	rr, rok := promotionRank[reader.Type()]
	if !wok || !rok || wr > rr {
		return nil, newSchemaResolutionError("cannot promote writer %s to reader %s", GetFullName(writer), GetFullName(reader))
	}
	return &matchResolution{Writer: writer, Reader: reader, Promoted: writer.Type() != reader.Type()}, nil
}

// resolveRecord implements the field-matching algorithm from
// schema_resolve.py's resolve_record: fullnames must match (raise
// SchemaResolutionException otherwise, per resolve_record/resolve_enum),
// then each writer field is matched to a reader field of the same name (or,
// failing that, the same alias); any writer field without a match is a pure
// skip, and any reader field without a writer match must declare a default.
//
// A record pair already in ctx.inProgress means this call is resolving a
// self- or mutually-referential schema (spec.md §3's cons-list example):
// the in-progress *recordResolution is returned as-is, finite and
// self-pointing, instead of recursing into resolveRecord again. The codec
// compiler's own cache (codec.go, keyed by Resolution identity) then treats
// the repeated pointer exactly like any other already-compiled node.
func resolveRecord(ctx *resolveContext, writer, reader *RecordSchema) (Resolution, error) {
	key := recordResolveKey{writer: writer, reader: reader}
	if existing, ok := ctx.inProgress[key]; ok {
		return existing, nil
	}

	if GetFullName(writer) != GetFullName(reader) {
		return nil, newSchemaResolutionError("record fullname mismatch: writer %s, reader %s", GetFullName(writer), GetFullName(reader))
	}

	placeholder := &recordResolution{Writer: writer, Reader: reader}
	ctx.inProgress[key] = placeholder
	defer delete(ctx.inProgress, key)

	matchedReader := make(map[int]bool, len(reader.Fields))
	steps := make([]*recordFieldStep, len(writer.Fields))

	for i, wf := range writer.Fields {
		rf := reader.fieldByName(wf.Name)
		idx := -1
		if rf != nil {
			idx = readerFieldIndex(reader, rf)
		} else if rf = reader.fieldByAlias(wf.Name); rf != nil {
			idx = readerFieldIndex(reader, rf)
		}
		if rf == nil {
			steps[i] = &recordFieldStep{WriterField: wf, Match: false}
			continue
		}
		resolved, err := resolve(ctx, wf.Type, rf.Type)
		if err != nil {
			return nil, newSchemaResolutionError("record %s field %q: %v", GetFullName(reader), wf.Name, err)
		}
		steps[i] = &recordFieldStep{WriterField: wf, Match: true, ReaderField: rf, ReaderIndex: idx, Resolved: resolved}
		matchedReader[idx] = true
	}

	var defaults []*SchemaField
	for i, rf := range reader.Fields {
		if matchedReader[i] {
			continue
		}
		if !rf.HasDefault {
			return nil, newSchemaResolutionError("reader %s field %q has no writer counterpart and no default", GetFullName(reader), rf.Name)
		}
		defaults = append(defaults, rf)
	}

	placeholder.WriterSteps = steps
	placeholder.DefaultFields = defaults
	return placeholder, nil
}

func readerFieldIndex(reader *RecordSchema, field *SchemaField) int {
	for i, f := range reader.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// resolveEnum implements resolve_enum from schema_resolve.py: fullnames must
// match, and every writer symbol must be a member of the reader's symbol
// set.
func resolveEnum(writer, reader *EnumSchema) (Resolution, error) {
	if GetFullName(writer) != GetFullName(reader) {
		return nil, newSchemaResolutionError("enum fullname mismatch: writer %s, reader %s", GetFullName(writer), GetFullName(reader))
	}
	translate := make([]int, len(writer.Symbols))
	for i, sym := range writer.Symbols {
		idx := reader.symbolIndex(sym)
		if idx < 0 {
			return nil, newSchemaResolutionError("writer enum %s symbol %q is not declared in reader enum %s",
				GetFullName(writer), sym, GetFullName(reader))
		}
		translate[i] = idx
	}
	return &enumResolution{Writer: writer, Reader: reader, Translate: translate}, nil
}
