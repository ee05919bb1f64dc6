package handle

import (
	"errors"
	"math"
)

var (
	ErrClosed    = errors.New("handle table closed")
	ErrExhausted = errors.New("handle table exhausted")
)

// Table is a generational arena mapping handles to values of type T.
type Table[T any] struct {
	kind      string
	slots     []slot[T]
	freeList  []uint32
	observers []Observer
	live      int
	closed    bool
}

type slot[T any] struct {
	value      T
	generation uint32
	valid      bool
}

// NewTable creates an empty table. kind names the stored objects in events.
func NewTable[T any](kind string) *Table[T] {
	return &Table[T]{
		kind:     kind,
		slots:    make([]slot[T], 0, 16),
		freeList: make([]uint32, 0, 8),
	}
}

// Kind returns the name given to NewTable.
func (t *Table[T]) Kind() string {
	return t.kind
}

// Insert stores a value and returns a fresh handle for it.
func (t *Table[T]) Insert(value T) (Handle, error) {
	if t.closed {
		return 0, ErrClosed
	}

	var idx uint32
	if n := len(t.freeList); n > 0 {
		idx = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		if len(t.slots) == math.MaxUint32 {
			return 0, ErrExhausted
		}
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{})
	}

	s := &t.slots[idx]
	s.generation++
	s.value = value
	s.valid = true
	t.live++

	h := Make(idx, s.generation)
	t.notify(Event{Type: EventCreated, Handle: h, Kind: t.kind, Value: value})
	return h, nil
}

// Get retrieves the value for a live handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	s := t.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Contains reports whether h refers to a live slot.
func (t *Table[T]) Contains(h Handle) bool {
	return t.lookup(h) != nil
}

// Remove releases a live handle and returns its value.
// The slot generation is bumped so h and all copies of it become stale.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	var zero T
	s := t.lookup(h)
	if s == nil {
		return zero, false
	}

	value := s.value
	s.value = zero
	s.valid = false
	t.live--

	// A slot whose generation would wrap to zero is retired for good.
	if s.generation < math.MaxUint32 {
		t.freeList = append(t.freeList, h.Index())
	}

	t.notify(Event{Type: EventDropped, Handle: h, Kind: t.kind, Value: value})
	return value, true
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	return t.live
}

// Each iterates over live handles in index order until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.valid {
			continue
		}
		if !fn(Make(uint32(i), s.generation), s.value) {
			return
		}
	}
}

// Handles returns a snapshot of the live handles in index order.
func (t *Table[T]) Handles() []Handle {
	out := make([]Handle, 0, t.live)
	t.Each(func(h Handle, _ T) bool {
		out = append(out, h)
		return true
	})
	return out
}

// Clear removes every live handle, notifying observers for each.
func (t *Table[T]) Clear() {
	for _, h := range t.Handles() {
		t.Remove(h)
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Close drops every live handle and stops accepting inserts.
// Closing a closed table is a no-op.
func (t *Table[T]) Close() error {
	if t.closed {
		return nil
	}
	t.Clear()
	t.closed = true
	t.slots = nil
	t.freeList = nil
	return nil
}

func (t *Table[T]) lookup(h Handle) *slot[T] {
	if h.IsZero() {
		return nil
	}
	idx := h.Index()
	if int(idx) >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	if !s.valid || s.generation != h.Generation() {
		return nil
	}
	return s
}

func (t *Table[T]) notify(e Event) {
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
