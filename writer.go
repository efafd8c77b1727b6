package avro

import (
	"bufio"
	"io"
	"math"
)

// Sink accepts the bytes an Encoder produces. Implementations typically wrap
// a bytes.Buffer or a bufio.Writer over a socket/file.
type Sink interface {
	Write(p []byte) error
}

// NewBinaryEncoder builds an Encoder that writes the Avro binary encoding
// (spec.md §3) to w.
func NewBinaryEncoder(w io.Writer) *BinaryEncoder {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &BinaryEncoder{sink: &writerSink{w: bw}, flush: bw}
}

type flusher interface{ Flush() error }

// Encoder writes Avro primitive and block-framed values (spec.md §3) to a
// Sink.
type Encoder interface {
	WriteNull() error
	WriteBoolean(v bool) error
	WriteInt(v int32) error
	WriteLong(v int64) error
	WriteFloat(v float32) error
	WriteDouble(v float64) error
	WriteBytes(v []byte) error
	WriteString(v string) error

	// WriteBytesRaw writes v with no length prefix — used for Avro "fixed"
	// values, whose length is declared in the schema rather than on the wire.
	WriteBytesRaw(v []byte) error

	// WriteBlockHeader writes one array/map block header of count items; a
	// zero count terminates the sequence and needs no further call.
	WriteBlockHeader(count int64) error

	// Flush pushes any buffered bytes to the underlying writer. Callers must
	// call Flush after the last write to guarantee the bytes are delivered.
	Flush() error
}

// BinaryEncoder is the Encoder implementation for Avro's standard binary
// encoding, grounded on
// _examples/original_source/src/spavro/binary.py's BinaryEncoder.
type BinaryEncoder struct {
	sink  Sink
	flush flusher
}

func (e *BinaryEncoder) WriteNull() error { return nil }

func (e *BinaryEncoder) WriteBoolean(v bool) error {
	if v {
		return e.sink.Write([]byte{1})
	}
	return e.sink.Write([]byte{0})
}

func (e *BinaryEncoder) WriteInt(v int32) error { return e.WriteLong(int64(v)) }

// WriteLong encodes a long using zig-zag, variable-length (LEB128-style)
// coding.
func (e *BinaryEncoder) WriteLong(v int64) error {
	n := uint64(v<<1) ^ uint64(v>>63)
	var buf [10]byte
	i := 0
	for n&^0x7f != 0 {
		buf[i] = byte(n&0x7f) | 0x80
		n >>= 7
		i++
	}
	buf[i] = byte(n)
	i++
	return e.sink.Write(buf[:i])
}

func (e *BinaryEncoder) WriteFloat(v float32) error {
	bits := math.Float32bits(v)
	return e.sink.Write([]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)})
}

func (e *BinaryEncoder) WriteDouble(v float64) error {
	bits := math.Float64bits(v)
	return e.sink.Write([]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56),
	})
}

func (e *BinaryEncoder) WriteBytes(v []byte) error {
	if err := e.WriteLong(int64(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return e.sink.Write(v)
}

func (e *BinaryEncoder) WriteString(v string) error {
	return e.WriteBytes([]byte(v))
}

func (e *BinaryEncoder) WriteBytesRaw(v []byte) error {
	return e.sink.Write(v)
}

func (e *BinaryEncoder) WriteBlockHeader(count int64) error {
	return e.WriteLong(count)
}

func (e *BinaryEncoder) Flush() error {
	if e.flush == nil {
		return nil
	}
	return e.flush.Flush()
}

// writerSink adapts a *bufio.Writer to the Sink interface.
type writerSink struct {
	w *bufio.Writer
}

func (s *writerSink) Write(p []byte) error {
	_, err := s.w.Write(p)
	return err
}
