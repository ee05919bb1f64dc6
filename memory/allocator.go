package memory

import (
	"github.com/wippyai/pdfium-bridge/errors"
)

// Allocator hands out byte blocks for sink buffers.
// Free must be called with the exact slice returned by Alloc.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// Reallocator is implemented by allocators that can replace a block with
// a larger one in a single step. The old block's contents are copied and
// the old block is released only on success.
type Reallocator interface {
	Realloc(old []byte, size int) ([]byte, error)
}

// Budget is implemented by allocators with a byte limit. Available returns
// the bytes that can still be allocated, or -1 when unlimited.
type Budget interface {
	Available() int
}

// Heap allocates from the Go heap. Free is a no-op.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.InvalidInput(errors.PhaseSink, "negative allocation size")
	}
	if size == 0 {
		return nil, nil
	}
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) {}
