// Package handle provides generational handle tables for bridge-owned objects.
//
// Every object that crosses the bridge surface (documents, sinks, form-fill
// infos, environments, form pages) is stored in a Table and referred to by
// a Handle. A Handle packs a slot index and a generation into one uint64:
//
//	generation (high 32 bits) | index (low 32 bits)
//
// The zero Handle is always invalid. When a slot is released its generation
// is bumped, so any copy of the old handle is rejected instead of resolving
// to whatever value reuses the slot:
//
//	table := handle.NewTable[*sink.Sink]("sink")
//
//	h, _ := table.Insert(s)
//	v, ok := table.Get(h)      // ok
//	table.Remove(h)
//	v, ok = table.Get(h)       // !ok, stale generation
//
// # Observers
//
// Register observers to track lifecycle events, for example to log leaks:
//
//	table.Subscribe(handle.ObserverFunc(func(e handle.Event) {
//	    if e.Type == handle.EventCreated { ... }
//	}))
//
// # Thread Safety
//
// Tables are NOT thread-safe. The bridge is single-threaded by contract and
// callers that share a table across goroutines must synchronize externally.
package handle
