// Package sink provides byte-sink polymorphism for the streams utf8pack and
// edgecode write into: an in-memory buffer, a file, a discard target, or a
// byte-frequency histogram wrapped around another sink.
package sink

import (
	"io"

	"github.com/arloliu/webglmesh/errs"
	"github.com/arloliu/webglmesh/internal/pool"
)

// Sink accepts bytes one at a time or in bulk. NullSink and an open
// BufferSink never fail; FileSink returns its underlying writer's error;
// a closed BufferSink or FileSink returns errs.ErrSinkClosed.
type Sink interface {
	PutByte(c byte) error
	PutSlice(data []byte) (int, error)
}

// NullSink discards every byte written to it. Useful for dry-run size
// estimation passes.
type NullSink struct{}

func NewNullSink() *NullSink { return &NullSink{} }

func (NullSink) PutByte(byte) error { return nil }

func (NullSink) PutSlice(data []byte) (int, error) { return len(data), nil }

// BufferSink accumulates bytes into a pooled, growable buffer.
type BufferSink struct {
	buf    *pool.ByteBuffer
	pooled bool
	closed bool
}

// NewBufferSink returns a BufferSink backed by a freshly pooled buffer.
// Call Close to release the buffer back to the pool once the caller is
// done with Bytes.
func NewBufferSink() *BufferSink {
	return &BufferSink{buf: pool.GetStreamBuffer(), pooled: true}
}

// NewBufferSinkSize returns a BufferSink backed by a buffer of the given
// initial capacity, not drawn from the shared pool.
func NewBufferSinkSize(capacity int) *BufferSink {
	return &BufferSink{buf: pool.NewByteBuffer(capacity)}
}

func (s *BufferSink) PutByte(c byte) error {
	if s.closed {
		return errs.ErrSinkClosed
	}
	s.buf.ExtendOrGrow(1)
	s.buf.B[s.buf.Len()-1] = c

	return nil
}

func (s *BufferSink) PutSlice(data []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrSinkClosed
	}
	s.buf.MustWrite(data)

	return len(data), nil
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// sink's internal buffer and is only valid until Close is called.
func (s *BufferSink) Bytes() []byte { return s.buf.Bytes() }

// Len returns the number of bytes written so far.
func (s *BufferSink) Len() int { return s.buf.Len() }

// Close releases the underlying buffer back to the shared pool, if it came
// from one. After Close, PutByte and PutSlice return errs.ErrSinkClosed.
func (s *BufferSink) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.pooled {
		pool.PutStreamBuffer(s.buf)
	}
}

// FileSink writes bytes through to an io.Writer, typically an *os.File.
// It does not own or close the underlying writer.
type FileSink struct {
	w      io.Writer
	closed bool
}

func NewFileSink(w io.Writer) *FileSink { return &FileSink{w: w} }

func (s *FileSink) PutByte(c byte) error {
	if s.closed {
		return errs.ErrSinkClosed
	}
	_, err := s.w.Write([]byte{c})

	return err
}

func (s *FileSink) PutSlice(data []byte) (int, error) {
	if s.closed {
		return 0, errs.ErrSinkClosed
	}

	return s.w.Write(data)
}

func (s *FileSink) Close() { s.closed = true }

// HistogramSink wraps another Sink and tallies the frequency of each byte
// value passed through it, useful for measuring the UTF-8 packer's
// alphabet usage.
type HistogramSink struct {
	sink  Sink
	histo [256]uint64
}

func NewHistogramSink(sink Sink) *HistogramSink {
	return &HistogramSink{sink: sink}
}

func (s *HistogramSink) PutByte(c byte) error {
	s.histo[c]++
	return s.sink.PutByte(c)
}

func (s *HistogramSink) PutSlice(data []byte) (int, error) {
	for _, c := range data {
		s.histo[c]++
	}

	return s.sink.PutSlice(data)
}

// Histogram returns the byte-frequency table accumulated so far.
func (s *HistogramSink) Histogram() [256]uint64 { return s.histo }
