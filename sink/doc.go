// Package sink implements the in-memory write target a document engine
// serializes into.
//
// A Sink is one growable buffer plus a byte count. The engine's serializer
// pushes blocks through Append; the caller then sizes a buffer with Size and
// copies the result out with Read:
//
//	s, _ := sink.Open()
//	defer s.Close()
//
//	saver.SaveAsCopy(ctx, eng, doc, s, engine.SaveNoIncremental)
//	buf := make([]byte, s.Size())
//	s.Read(buf)
//
// Capacity grows by doubling so that many small blocks cost amortized
// constant time each. Size never reports capacity.
//
// Buffers are taken from a memory.Allocator, the Go heap by default. Close
// returns the buffer to that allocator; any use of a closed sink fails with
// an invalid handle error.
package sink
