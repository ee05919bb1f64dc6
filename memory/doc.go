// Package memory provides the allocators behind write sink buffers.
//
// Allocator is the narrow interface a sink grows through. Heap is the plain
// Go-heap implementation; Tracker wraps another allocator and records every
// live block so a host can enforce a total budget and detect leaks:
//
//	t := memory.NewTracker(memory.WithLimit(64<<20))
//	s, _ := sink.Open(sink.WithAllocator(t))
//	...
//	s.Close()
//	if n := t.CheckLeaks(); n > 0 { ... }
//
// Tracker is safe for concurrent use. It is the only synchronized type in
// the bridge, since several sinks may share one tracker.
package memory
