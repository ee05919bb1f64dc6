package sink

import (
	"io"

	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/memory"
)

// Sink accumulates serialized bytes in memory.
type Sink struct {
	alloc   memory.Allocator
	buf     []byte
	n       int
	initCap int
	closed  bool
}

type options struct {
	alloc   memory.Allocator
	initCap int
}

// Option configures a Sink.
type Option func(*options)

// WithAllocator sets the allocator the buffer grows through.
func WithAllocator(a memory.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithInitialCapacity reserves n bytes on the first Append.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initCap = n
		}
	}
}

// Open creates an empty sink. No buffer is allocated until the first Append.
func Open(opts ...Option) (*Sink, error) {
	o := options{alloc: memory.Heap}
	for _, opt := range opts {
		opt(&o)
	}
	return &Sink{alloc: o.alloc, initCap: o.initCap}, nil
}

// Append copies p to the end of the sink, growing capacity by doubling.
// On allocation failure the sink is unchanged.
func (s *Sink) Append(p []byte) error {
	if s.closed {
		return errors.InvalidHandle(errors.PhaseSink, "sink", nil)
	}
	if len(p) == 0 {
		return nil
	}

	need := s.n + len(p)
	if need > len(s.buf) {
		if err := s.grow(need); err != nil {
			return err
		}
	}
	copy(s.buf[s.n:], p)
	s.n = need
	return nil
}

// Write implements io.Writer on top of Append.
func (s *Sink) Write(p []byte) (int, error) {
	if err := s.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Sink) grow(need int) error {
	newCap := len(s.buf)
	if newCap == 0 {
		newCap = s.initCap
		if newCap == 0 {
			newCap = need
		}
	}
	for newCap < need {
		newCap *= 2
	}

	// Near a limit, take whatever still fits instead of refusing the
	// doubled size.
	if b, ok := s.alloc.(memory.Budget); ok {
		if avail := b.Available(); avail >= 0 {
			if most := len(s.buf) + avail; newCap > most && need <= most {
				newCap = most
			}
		}
	}

	if r, ok := s.alloc.(memory.Reallocator); ok && s.buf != nil {
		buf, err := r.Realloc(s.buf, newCap)
		if err != nil {
			return allocError(newCap, err)
		}
		s.buf = buf
		return nil
	}

	buf, err := s.alloc.Alloc(newCap)
	if err != nil {
		return allocError(newCap, err)
	}

	copy(buf, s.buf[:s.n])
	if s.buf != nil {
		s.alloc.Free(s.buf)
	}
	s.buf = buf
	return nil
}

func allocError(size int, err error) error {
	if errors.KindOf(err) == errors.KindAllocation {
		return err
	}
	return errors.AllocationFailed(errors.PhaseSink, size, err)
}

// Size returns the number of bytes written. A fresh sink has size 0.
func (s *Sink) Size() int {
	return s.n
}

// Cap returns the current buffer capacity.
func (s *Sink) Cap() int {
	return len(s.buf)
}

// Read copies min(len(dst), Size()) bytes from the start of the sink into
// dst and returns the count. It never writes past len(dst).
func (s *Sink) Read(dst []byte) (int, error) {
	if s.closed {
		return 0, errors.InvalidHandle(errors.PhaseSink, "sink", nil)
	}
	return copy(dst, s.buf[:s.n]), nil
}

// Bytes returns a copy of the sink content.
func (s *Sink) Bytes() ([]byte, error) {
	if s.closed {
		return nil, errors.InvalidHandle(errors.PhaseSink, "sink", nil)
	}
	out := make([]byte, s.n)
	copy(out, s.buf[:s.n])
	return out, nil
}

// WriteTo writes the sink content to w.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	if s.closed {
		return 0, errors.InvalidHandle(errors.PhaseSink, "sink", nil)
	}
	n, err := w.Write(s.buf[:s.n])
	return int64(n), err
}

// Closed reports whether Close has been called.
func (s *Sink) Closed() bool {
	return s.closed
}

// Close releases the buffer. A second Close fails.
func (s *Sink) Close() error {
	if s.closed {
		return errors.InvalidHandle(errors.PhaseSink, "sink", nil)
	}
	if s.buf != nil {
		s.alloc.Free(s.buf)
	}
	s.buf = nil
	s.n = 0
	s.closed = true
	return nil
}
