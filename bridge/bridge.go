package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/engine"
	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/formfill"
	"github.com/wippyai/pdfium-bridge/handle"
	"github.com/wippyai/pdfium-bridge/memory"
	"github.com/wippyai/pdfium-bridge/sink"
)

// Bridge owns an engine and the objects created through it.
type Bridge struct {
	eng         engine.Engine
	logger      *zap.Logger
	tracker     *memory.Tracker
	docs        *handle.Table[*document]
	sinks       *handle.Table[*sink.Sink]
	infos       *handle.Table[*formfill.Info]
	envs        *handle.Table[*formEnv]
	pages       *handle.Table[*formPage]
	sinkCap     int
	formVersion formfill.Version
	closed      bool
}

type document struct {
	id   engine.DocumentID
	envs int
}

type formEnv struct {
	env *formfill.Environment
	doc Document
}

type formPage struct {
	page *formfill.Page
	env  FormEnv
}

type options struct {
	logger      *zap.Logger
	tracker     *memory.Tracker
	parent      memory.Allocator
	memLimit    int
	sinkCap     int
	formVersion formfill.Version
}

// Option configures a Bridge.
type Option func(*options)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracker shares an existing tracker for sink allocations.
// WithAllocator and WithMemoryLimit are ignored when set.
func WithTracker(t *memory.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithAllocator sets the allocator sink buffers come from.
func WithAllocator(a memory.Allocator) Option {
	return func(o *options) {
		o.parent = a
	}
}

// WithMemoryLimit caps the total bytes held by all sinks. 0 means unlimited.
func WithMemoryLimit(n int) Option {
	return func(o *options) {
		o.memLimit = n
	}
}

// WithSinkCapacity sets the initial capacity of new sinks.
func WithSinkCapacity(n int) Option {
	return func(o *options) {
		o.sinkCap = n
	}
}

// WithFormVersion sets the default form-fill structure version.
func WithFormVersion(v formfill.Version) Option {
	return func(o *options) {
		o.formVersion = v
	}
}

// New initializes eng and returns a Bridge that owns it.
func New(ctx context.Context, eng engine.Engine, opts ...Option) (*Bridge, error) {
	if eng == nil {
		return nil, errors.InvalidInput(errors.PhaseInit, "nil engine")
	}

	o := options{formVersion: formfill.Version1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.formVersion != formfill.Version1 && o.formVersion != formfill.Version2 {
		return nil, errors.InvalidInput(errors.PhaseInit, "unsupported form-fill version")
	}
	if o.tracker == nil {
		o.tracker = memory.NewTracker(
			memory.WithParent(o.parent),
			memory.WithLimit(o.memLimit),
			memory.WithLogger(o.logger),
		)
	}

	if err := eng.Init(ctx); err != nil {
		return nil, err
	}

	b := &Bridge{
		eng:         eng,
		logger:      o.logger,
		tracker:     o.tracker,
		docs:        handle.NewTable[*document]("document"),
		sinks:       handle.NewTable[*sink.Sink]("sink"),
		infos:       handle.NewTable[*formfill.Info]("form-info"),
		envs:        handle.NewTable[*formEnv]("form-env"),
		pages:       handle.NewTable[*formPage]("form-page"),
		sinkCap:     o.sinkCap,
		formVersion: o.formVersion,
	}

	trace := handle.ObserverFunc(func(e handle.Event) {
		b.logger.Debug("handle "+e.Type.String(),
			zap.String("kind", e.Kind),
			zap.Stringer("handle", e.Handle))
	})
	b.docs.Subscribe(trace)
	b.sinks.Subscribe(trace)
	b.infos.Subscribe(trace)
	b.envs.Subscribe(trace)
	b.pages.Subscribe(trace)

	b.logger.Debug("bridge initialized")
	return b, nil
}

// Engine returns the owned engine.
func (b *Bridge) Engine() engine.Engine {
	return b.eng
}

// Tracker returns the tracker sink buffers are allocated through.
func (b *Bridge) Tracker() *memory.Tracker {
	return b.tracker
}

func (b *Bridge) check(phase errors.Phase) error {
	if b.closed {
		return errors.LifecycleViolation(phase, "bridge closed")
	}
	return nil
}

// Stats is a snapshot of live objects.
type Stats struct {
	Memory           memory.Stats
	Documents        int
	Sinks            int
	SinkBytes        int
	FormInfos        int
	FormEnvironments int
	FormPages        int
}

// Stats returns live object counts and sink memory usage.
func (b *Bridge) Stats() Stats {
	st := Stats{
		Memory:           b.tracker.Stats(),
		Documents:        b.docs.Len(),
		Sinks:            b.sinks.Len(),
		FormInfos:        b.infos.Len(),
		FormEnvironments: b.envs.Len(),
		FormPages:        b.pages.Len(),
	}
	b.sinks.Each(func(_ handle.Handle, s *sink.Sink) bool {
		st.SinkBytes += s.Size()
		return true
	})
	return st
}

// Close tears down every live object in dependency order, then closes the
// engine. Objects still open are logged as leaks. The first error is
// returned. Closing a closed bridge is a no-op.
func (b *Bridge) Close(ctx context.Context) error {
	if b.closed {
		return nil
	}

	st := b.Stats()
	if st.Documents+st.Sinks+st.FormInfos+st.FormEnvironments > 0 {
		b.logger.Warn("closing bridge with live handles",
			zap.Int("documents", st.Documents),
			zap.Int("sinks", st.Sinks),
			zap.Int("form_infos", st.FormInfos),
			zap.Int("form_environments", st.FormEnvironments),
			zap.Int("form_pages", st.FormPages))
	}

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	for _, h := range b.envs.Handles() {
		keep(b.ExitFormFillEnvironment(ctx, FormEnv(h)))
	}
	for _, h := range b.infos.Handles() {
		keep(b.CloseFormFillInfo(FormInfo(h)))
	}
	for _, h := range b.sinks.Handles() {
		keep(b.CloseSink(Sink(h)))
	}
	for _, h := range b.docs.Handles() {
		keep(b.CloseDocument(ctx, Document(h)))
	}

	b.tracker.CheckLeaks()

	b.closed = true
	b.pages.Close()
	b.envs.Close()
	b.infos.Close()
	b.sinks.Close()
	b.docs.Close()

	keep(b.eng.Close(ctx))
	return first
}
