package memory

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/pdfium-bridge/errors"
)

// ErrLimitExceeded is the cause of allocations refused by a Tracker limit.
var ErrLimitExceeded = errors.New(errors.PhaseSink, errors.KindAllocation).
	Detail("tracked allocation limit exceeded").
	Build()

// Stats is a snapshot of a Tracker.
type Stats struct {
	TotalAllocated  int // bytes currently live
	AllocationCount int // blocks currently live
	Peak            int // highest TotalAllocated seen
	Limit           int // 0 means unlimited
}

// Tracker is an Allocator that records live blocks and enforces a total limit.
type Tracker struct {
	parent Allocator
	logger *zap.Logger
	live   map[*byte]int
	total  int
	peak   int
	limit  int
	mu     sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLimit caps the total live bytes. Zero or negative means unlimited.
func WithLimit(n int) Option {
	return func(t *Tracker) {
		if n < 0 {
			n = 0
		}
		t.limit = n
	}
}

// WithParent sets the allocator blocks are actually taken from. Default Heap.
func WithParent(a Allocator) Option {
	return func(t *Tracker) {
		if a != nil {
			t.parent = a
		}
	}
}

// WithLogger sets the logger used for leak and double-free reports.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker creates a Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		parent: Heap,
		live:   make(map[*byte]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = Logger()
	}
	return t
}

// Alloc reserves size bytes. Zero-size requests return nil and are not tracked.
func (t *Tracker) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidInput(errors.PhaseSink, "negative allocation size")
	}
	if size == 0 {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.limit > 0 && t.total+size > t.limit {
		return nil, errors.New(errors.PhaseSink, errors.KindAllocation).
			Value(size).
			Cause(ErrLimitExceeded).
			Detail("requested %d bytes, %d live, limit %d", size, t.total, t.limit).
			Build()
	}

	buf, err := t.parent.Alloc(size)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseSink, size, err)
	}
	if cap(buf) == 0 {
		return nil, errors.AllocationFailed(errors.PhaseSink, size, nil)
	}

	t.live[key(buf)] = len(buf)
	t.total += len(buf)
	if t.total > t.peak {
		t.peak = t.total
	}
	return buf, nil
}

// Realloc replaces old with a block of size bytes holding old's contents.
// The limit is checked against the live total with old already released,
// so growing a block never counts it twice. A nil old behaves like Alloc.
// On failure old stays live and unchanged.
func (t *Tracker) Realloc(old []byte, size int) ([]byte, error) {
	if cap(old) == 0 {
		return t.Alloc(size)
	}
	if size < len(old) {
		return nil, errors.InvalidInput(errors.PhaseSink, "realloc cannot shrink a block")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(old)
	oldSize, ok := t.live[k]
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseSink, "realloc of untracked block")
	}
	if t.limit > 0 && t.total-oldSize+size > t.limit {
		return nil, errors.New(errors.PhaseSink, errors.KindAllocation).
			Value(size).
			Cause(ErrLimitExceeded).
			Detail("requested %d bytes replacing %d, %d live, limit %d", size, oldSize, t.total, t.limit).
			Build()
	}

	buf, err := t.parent.Alloc(size)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseSink, size, err)
	}
	if cap(buf) == 0 {
		return nil, errors.AllocationFailed(errors.PhaseSink, size, nil)
	}
	copy(buf, old)
	t.parent.Free(old)

	delete(t.live, k)
	t.live[key(buf)] = len(buf)
	t.total += len(buf) - oldSize
	if t.total > t.peak {
		t.peak = t.total
	}
	return buf, nil
}

// Available returns the bytes left under the limit, or -1 when unlimited.
func (t *Tracker) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == 0 {
		return -1
	}
	if t.total >= t.limit {
		return 0
	}
	return t.limit - t.total
}

// Free releases a block returned by Alloc. Unknown or already freed blocks
// are ignored.
func (t *Tracker) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}

	t.mu.Lock()
	k := key(buf)
	size, ok := t.live[k]
	if ok {
		delete(t.live, k)
		t.total -= size
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("free of untracked block", zap.Int("cap", cap(buf)))
		return
	}
	t.parent.Free(buf)
}

// Stats returns a snapshot of the live allocations.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		TotalAllocated:  t.total,
		AllocationCount: len(t.live),
		Peak:            t.peak,
		Limit:           t.limit,
	}
}

// CheckLeaks logs and returns the number of blocks still live.
func (t *Tracker) CheckLeaks() int {
	s := t.Stats()
	if s.AllocationCount > 0 {
		t.logger.Warn("outstanding sink allocations",
			zap.Int("count", s.AllocationCount),
			zap.Int("bytes", s.TotalAllocated))
	}
	return s.AllocationCount
}

func key(buf []byte) *byte {
	return &buf[:1][0]
}
