package sink

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/pdfium-bridge/errors"
	"github.com/wippyai/pdfium-bridge/memory"
)

func TestSink_FreshIsEmpty(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Size() != 0 {
		t.Fatalf("Size = %d, want 0", s.Size())
	}
	buf := make([]byte, 8)
	n, err := s.Read(buf)
	if err != nil || n != 0 {
		t.Fatalf("Read = %d, %v", n, err)
	}
}

func TestSink_AppendAndRead(t *testing.T) {
	s, _ := Open()
	defer s.Close()

	chunks := [][]byte{
		[]byte("%PDF-1.7\n"),
		[]byte("1 0 obj\n"),
		{},
		[]byte("%%EOF\n"),
	}
	var want []byte
	for _, c := range chunks {
		if err := s.Append(c); err != nil {
			t.Fatalf("Append: %v", err)
		}
		want = append(want, c...)
	}

	if s.Size() != len(want) {
		t.Fatalf("Size = %d, want %d", s.Size(), len(want))
	}

	got := make([]byte, s.Size())
	n, err := s.Read(got)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != len(want) || !bytes.Equal(got, want) {
		t.Fatalf("Read = %q, want %q", got[:n], want)
	}
}

func TestSink_ReadPrefix(t *testing.T) {
	s, _ := Open()
	defer s.Close()
	s.Append([]byte("0123456789"))

	tests := []struct {
		name string
		dst  int
		want string
	}{
		{"empty", 0, ""},
		{"prefix", 4, "0123"},
		{"exact", 10, "0123456789"},
		{"larger", 16, "0123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.dst)
			n, err := s.Read(dst)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(dst[:n]) != tt.want {
				t.Fatalf("Read = %q, want %q", dst[:n], tt.want)
			}
		})
	}
}

func TestSink_ReadNeverPastDst(t *testing.T) {
	s, _ := Open()
	defer s.Close()
	s.Append(bytes.Repeat([]byte{'x'}, 64))

	backing := bytes.Repeat([]byte{'-'}, 16)
	n, err := s.Read(backing[:8])
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 8 {
		t.Fatalf("n = %d, want 8", n)
	}
	if string(backing[8:]) != "--------" {
		t.Fatalf("Read wrote past dst: %q", backing)
	}
}

func TestSink_GrowthDoubles(t *testing.T) {
	s, _ := Open(WithInitialCapacity(4))
	defer s.Close()

	s.Append([]byte("ab"))
	if s.Cap() != 4 {
		t.Fatalf("Cap = %d, want 4", s.Cap())
	}
	s.Append([]byte("cde"))
	if s.Cap() != 8 {
		t.Fatalf("Cap = %d, want 8", s.Cap())
	}
	s.Append(bytes.Repeat([]byte{'z'}, 20))
	if s.Cap() != 32 {
		t.Fatalf("Cap = %d, want 32", s.Cap())
	}
	if s.Size() != 25 {
		t.Fatalf("Size = %d, want 25", s.Size())
	}
}

func TestSink_ManySmallAppends(t *testing.T) {
	s, _ := Open()
	defer s.Close()

	for i := 0; i < 10000; i++ {
		if err := s.Append([]byte{byte(i)}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	if s.Size() != 10000 {
		t.Fatalf("Size = %d", s.Size())
	}
	got, _ := s.Bytes()
	for i, b := range got {
		if b != byte(i) {
			t.Fatalf("byte %d = %d", i, b)
		}
	}
}

func TestSink_AllocationFailureLeavesContent(t *testing.T) {
	tr := memory.NewTracker(memory.WithLimit(16))
	s, _ := Open(WithAllocator(tr), WithInitialCapacity(8))
	defer s.Close()

	if err := s.Append([]byte("12345678")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append([]byte("9abcdefg")); err != nil {
		t.Fatalf("Append up to the limit: %v", err)
	}
	err := s.Append([]byte("h"))
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if !stderrors.Is(err, errors.ErrAllocation) {
		t.Fatalf("err = %v", err)
	}
	got, _ := s.Bytes()
	if string(got) != "123456789abcdefg" {
		t.Fatalf("content = %q", got)
	}
	if st := tr.Stats(); st.TotalAllocated != 16 || st.AllocationCount != 1 {
		t.Fatalf("tracker = %+v", st)
	}
}

func TestSink_GrowthClampedToBudget(t *testing.T) {
	tr := memory.NewTracker(memory.WithLimit(20))
	s, _ := Open(WithAllocator(tr), WithInitialCapacity(8))
	defer s.Close()

	s.Append([]byte("12345678"))
	if err := s.Append([]byte("9abcdefghi")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if s.Cap() != 20 {
		t.Fatalf("Cap = %d, want 20", s.Cap())
	}
	if err := s.Append([]byte("jk")); err != nil {
		t.Fatalf("Append to exactly the limit: %v", err)
	}
	if err := s.Append([]byte("l")); !stderrors.Is(err, memory.ErrLimitExceeded) {
		t.Fatalf("err = %v", err)
	}
	if s.Size() != 20 {
		t.Fatalf("Size = %d", s.Size())
	}
}

func TestSink_GrowthWithoutRealloc(t *testing.T) {
	alloc := &countingAllocator{}
	s, _ := Open(WithAllocator(alloc), WithInitialCapacity(2))

	s.Append([]byte("ab"))
	s.Append([]byte("cd"))
	s.Append([]byte("efgh"))
	got, _ := s.Bytes()
	if string(got) != "abcdefgh" {
		t.Fatalf("content = %q", got)
	}
	s.Close()
	if alloc.allocs != 3 || alloc.frees != 3 {
		t.Fatalf("allocs=%d frees=%d", alloc.allocs, alloc.frees)
	}
}

type countingAllocator struct {
	allocs int
	frees  int
}

func (a *countingAllocator) Alloc(size int) ([]byte, error) {
	a.allocs++
	return make([]byte, size), nil
}

func (a *countingAllocator) Free([]byte) { a.frees++ }

func TestSink_CloseReleasesTracked(t *testing.T) {
	tr := memory.NewTracker()
	s, _ := Open(WithAllocator(tr))

	for i := 0; i < 100; i++ {
		s.Append([]byte("block of serialized output\n"))
	}
	if tr.Stats().AllocationCount != 1 {
		t.Fatalf("expected exactly the live buffer tracked, got %+v", tr.Stats())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := tr.CheckLeaks(); n != 0 {
		t.Fatalf("outstanding allocations after Close: %d", n)
	}
	if tr.Stats().TotalAllocated != 0 {
		t.Fatalf("bytes outstanding: %d", tr.Stats().TotalAllocated)
	}
}

func TestSink_UseAfterClose(t *testing.T) {
	s, _ := Open()
	s.Append([]byte("data"))
	s.Close()

	if !s.Closed() {
		t.Fatal("Closed = false")
	}
	if err := s.Append([]byte("x")); !stderrors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("Append err = %v", err)
	}
	if _, err := s.Read(make([]byte, 4)); !stderrors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("Read err = %v", err)
	}
	if _, err := s.Bytes(); !stderrors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("Bytes err = %v", err)
	}
	if err := s.Close(); !stderrors.Is(err, errors.ErrInvalidHandle) {
		t.Errorf("second Close err = %v", err)
	}
}

func TestSink_WriteTo(t *testing.T) {
	s, _ := Open()
	defer s.Close()
	if _, err := s.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s.Append([]byte("world"))

	var out bytes.Buffer
	n, err := s.WriteTo(&out)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 11 || out.String() != "hello world" {
		t.Fatalf("WriteTo = %d %q", n, out.String())
	}
}
