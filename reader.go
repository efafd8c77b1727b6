package avro

import (
	"io"
	"math"
	"unicode/utf8"
)

// Source supplies bytes to a Decoder. Read returns exactly n bytes or an
// error; Skip advances n bytes without materializing them, letting a Decoder
// skip over fields the reader schema dropped without allocating.
type Source interface {
	Read(n int) ([]byte, error)
	Skip(n int) error
}

// NewBinaryDecoder builds a Decoder that reads the Avro binary encoding
// (spec.md §3) directly out of an in-memory byte slice.
func NewBinaryDecoder(buf []byte) *BinaryDecoder {
	return &BinaryDecoder{src: &sliceSource{buf: buf}}
}

// NewBinaryDecoderReader builds a Decoder that reads the Avro binary
// encoding from an arbitrary io.Reader, for callers who already have a
// stream rather than a fully-buffered payload.
func NewBinaryDecoderReader(r io.Reader) *BinaryDecoder {
	return &BinaryDecoder{src: &readerSource{r: r}}
}

// Decoder reads Avro primitive and block-framed values (spec.md §3) off a
// Source, returning a *CorruptDataError (errors.Is ErrCorruptData) whenever
// the bytes violate the wire format.
type Decoder interface {
	ReadNull() error
	ReadBoolean() (bool, error)
	ReadInt() (int32, error)
	ReadLong() (int64, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	ReadBytes() ([]byte, error)
	ReadString() (string, error)

	// ReadBytesRaw reads exactly n bytes with no length prefix — used for
	// Avro "fixed" values, which declare their length in the schema rather
	// than on the wire.
	ReadBytesRaw(n int) ([]byte, error)

	// ReadBlockHeader reads one array/map block header: count is the number
	// of items in the block (0 terminates the sequence), and byteSize is the
	// optional block byte-length present when count is encoded negative
	// (spec.md §3.4) — byteSize is 0 when no size was present.
	ReadBlockHeader() (count int64, byteSize int64, err error)

	SkipNull() error
	SkipBoolean() error
	SkipInt() error
	SkipLong() error
	SkipFloat() error
	SkipDouble() error
	SkipBytes() error
	SkipString() error
}

// BinaryDecoder is the Decoder implementation for Avro's standard binary
// encoding, grounded on
// _examples/original_source/src/spavro/binary.py's BinaryDecoder.
type BinaryDecoder struct {
	src Source
}

func (d *BinaryDecoder) ReadNull() error { return nil }

func (d *BinaryDecoder) ReadBoolean() (bool, error) {
	b, err := d.src.Read(1)
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, newCorruptDataError("invalid boolean byte 0x%02x", b[0])
	}
}

func (d *BinaryDecoder) ReadInt() (int32, error) {
	n, err := d.ReadLong()
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, newCorruptDataError("int value %d out of 32-bit range", n)
	}
	return int32(n), nil
}

// ReadLong decodes a zig-zag, variable-length (LEB128-style) encoded long.
func (d *BinaryDecoder) ReadLong() (int64, error) {
	var n uint64
	var shift uint
	for {
		if shift >= 70 {
			return 0, newCorruptDataError("varint is too long (more than 10 bytes)")
		}
		b, err := d.src.Read(1)
		if err != nil {
			return 0, err
		}
		n |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
	}
	return int64(n>>1) ^ -int64(n&1), nil
}

func (d *BinaryDecoder) ReadFloat() (float32, error) {
	b, err := d.src.Read(4)
	if err != nil {
		return 0, err
	}
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits), nil
}

func (d *BinaryDecoder) ReadDouble() (float64, error) {
	b, err := d.src.Read(8)
	if err != nil {
		return 0, err
	}
	bits := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return math.Float64frombits(bits), nil
}

func (d *BinaryDecoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadLong()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, newCorruptDataError("negative byte length %d", n)
	}
	b, err := d.src.Read(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (d *BinaryDecoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newCorruptDataError("string is not valid UTF-8")
	}
	return string(b), nil
}

func (d *BinaryDecoder) ReadBytesRaw(n int) ([]byte, error) {
	b, err := d.src.Read(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// skipRaw skips exactly n bytes, used by the array/map block-skip fast path
// when a block declares its byte size up front.
func (d *BinaryDecoder) skipRaw(n int64) error { return d.src.Skip(int(n)) }

func (d *BinaryDecoder) ReadBlockHeader() (int64, int64, error) {
	count, err := d.ReadLong()
	if err != nil {
		return 0, 0, err
	}
	if count >= 0 {
		return count, 0, nil
	}
	size, err := d.ReadLong()
	if err != nil {
		return 0, 0, err
	}
	if size < 0 {
		return 0, 0, newCorruptDataError("negative block byte size %d", size)
	}
	return -count, size, nil
}

func (d *BinaryDecoder) SkipNull() error { return nil }

func (d *BinaryDecoder) SkipBoolean() error { return d.src.Skip(1) }

func (d *BinaryDecoder) SkipInt() error { return d.SkipLong() }

func (d *BinaryDecoder) SkipLong() error {
	for i := 0; ; i++ {
		if i >= 10 {
			return newCorruptDataError("varint is too long (more than 10 bytes)")
		}
		b, err := d.src.Read(1)
		if err != nil {
			return err
		}
		if b[0]&0x80 == 0 {
			return nil
		}
	}
}

func (d *BinaryDecoder) SkipFloat() error { return d.src.Skip(4) }

func (d *BinaryDecoder) SkipDouble() error { return d.src.Skip(8) }

func (d *BinaryDecoder) SkipBytes() error {
	n, err := d.ReadLong()
	if err != nil {
		return err
	}
	if n < 0 {
		return newCorruptDataError("negative byte length %d", n)
	}
	return d.src.Skip(int(n))
}

func (d *BinaryDecoder) SkipString() error { return d.SkipBytes() }

// sliceSource is a Source backed by an in-memory byte slice.
type sliceSource struct {
	buf []byte
	pos int
}

func (s *sliceSource) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, newCorruptDataError("negative read length %d", n)
	}
	if s.pos+n > len(s.buf) {
		return nil, newCorruptDataError("unexpected end of buffer: need %d bytes, have %d", n, len(s.buf)-s.pos)
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *sliceSource) Skip(n int) error {
	if n < 0 {
		return newCorruptDataError("negative skip length %d", n)
	}
	if s.pos+n > len(s.buf) {
		return newCorruptDataError("cannot skip %d bytes: only %d remain", n, len(s.buf)-s.pos)
	}
	s.pos += n
	return nil
}

// readerSource is a Source backed by an arbitrary io.Reader, for streaming
// input that was not pre-buffered into a slice.
type readerSource struct {
	r   io.Reader
	buf []byte
}

func (s *readerSource) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, newCorruptDataError("negative read length %d", n)
	}
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	b := s.buf[:n]
	if _, err := io.ReadFull(s.r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, newCorruptDataError("unexpected end of stream: %v", err)
		}
		return nil, err
	}
	return b, nil
}

func (s *readerSource) Skip(n int) error {
	if n < 0 {
		return newCorruptDataError("negative skip length %d", n)
	}
	if _, err := io.CopyN(io.Discard, s.r, int64(n)); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return newCorruptDataError("unexpected end of stream while skipping: %v", err)
		}
		return err
	}
	return nil
}
