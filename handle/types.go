package handle

import "fmt"

// Handle is an opaque (index, generation) reference to a slot in a Table.
// Handle 0 is reserved and always invalid.
type Handle uint64

// Make packs an index and a generation into a Handle.
func Make(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (h Handle) Index() uint32 {
	return uint32(h)
}

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// IsZero reports whether h is the reserved invalid handle.
func (h Handle) IsZero() bool {
	return h.Generation() == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", h.Index(), h.Generation())
}

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Kind   string
	Handle Handle
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnHandleEvent calls f(e).
func (f ObserverFunc) OnHandleEvent(e Event) {
	f(e)
}
