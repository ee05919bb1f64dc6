package bridge

import (
	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/handle"
	"github.com/wippyai/pdfium-bridge/sink"
)

// OpenSink creates an empty write sink.
func (b *Bridge) OpenSink() (Sink, error) {
	if err := b.check(errors.PhaseSink); err != nil {
		return 0, err
	}
	s, err := sink.Open(sink.WithAllocator(b.tracker), sink.WithInitialCapacity(b.sinkCap))
	if err != nil {
		return 0, err
	}
	h, err := b.sinks.Insert(s)
	if err != nil {
		s.Close()
		return 0, errors.Wrap(errors.PhaseSink, errors.KindAllocation, err, "register sink")
	}
	return Sink(h), nil
}

func (b *Bridge) sink(phase errors.Phase, h Sink) (*sink.Sink, error) {
	if err := b.check(phase); err != nil {
		return nil, err
	}
	s, ok := b.sinks.Get(handle.Handle(h))
	if !ok {
		return nil, errors.InvalidHandle(phase, "sink", h)
	}
	return s, nil
}

// CloseSink releases the sink buffer. A second close fails with an invalid
// handle error.
func (b *Bridge) CloseSink(h Sink) error {
	s, err := b.sink(errors.PhaseSink, h)
	if err != nil {
		return err
	}
	b.sinks.Remove(handle.Handle(h))
	return s.Close()
}

// SinkSize returns the number of bytes written to h.
func (b *Bridge) SinkSize(h Sink) (int, error) {
	s, err := b.sink(errors.PhaseSink, h)
	if err != nil {
		return 0, err
	}
	return s.Size(), nil
}

// ReadSink copies min(len(dst), size) bytes from the start of h into dst.
func (b *Bridge) ReadSink(h Sink, dst []byte) (int, error) {
	s, err := b.sink(errors.PhaseSink, h)
	if err != nil {
		return 0, err
	}
	return s.Read(dst)
}

// SinkBytes returns a copy of the content of h.
func (b *Bridge) SinkBytes(h Sink) ([]byte, error) {
	s, err := b.sink(errors.PhaseSink, h)
	if err != nil {
		return nil, err
	}
	return s.Bytes()
}
