package once

import (
	"unsafe"

	"go.uber.org/atomic"
)

// emptySlot is the address published for zero-length sets, so that an empty
// slice is still observable as set. Never dereferenced; uint64 keeps the
// address aligned for any element type under checkptr.
var emptySlot uint64

// Slice is a write-once cell for a []T.
//
// The cell publishes in two steps, pointer then length. The length field
// holds len+1, so a reader that observes the pointer before the winning Set
// stored the length sees 0 and reports the cell as unset; a set empty slice
// is encoded as 1 and stays observable.
//
// Must not be copied after first use.
type Slice[T any] struct {
	ptr atomic.Pointer[T] // first element, nil until a Set wins
	n   atomic.Uint64     // len+1, 0 until published
}

// NewSlice returns an unset cell. Equivalent to new(Slice[T]).
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{}
}

func sliceHead[T any](values []T) *T {
	if len(values) == 0 {
		return (*T)(unsafe.Pointer(&emptySlot))
	}
	return unsafe.SliceData(values)
}

// Set attempts to publish values, transferring ownership of the backing
// array to the cell.
//
// Exactly one call per cell returns true, no matter how many goroutines
// race. After a true return the caller must not retain or mutate values.
// On false the caller keeps full ownership of values, untouched; losing
// the race is an expected outcome, not an error. A nil slice counts as an
// empty one and can win the race like any other.
func (s *Slice[T]) Set(values []T) bool {
	if !s.ptr.CompareAndSwap(nil, sliceHead(values)) {
		return false
	}
	s.n.Store(uint64(len(values)) + 1)
	return true
}

// Get returns the published slice.
//
// Reports false while the cell is unset or a winning Set has not finished
// publishing; both read the same. Never blocks and never allocates. The
// returned slice aliases the cell's storage and stays valid for the
// lifetime of the cell; mutating it requires the caller to rule out
// concurrent readers, same as any shared slice.
func (s *Slice[T]) Get() ([]T, bool) {
	head := s.ptr.Load()
	if head == nil {
		return nil, false
	}
	n := s.n.Load()
	if n == 0 {
		// Pointer race is won, length not yet stored.
		return nil, false
	}
	return unsafe.Slice(head, n-1), true
}

// Len returns the published length under the same readiness rules as Get.
func (s *Slice[T]) Len() (int, bool) {
	if s.ptr.Load() == nil {
		return 0, false
	}
	n := s.n.Load()
	if n == 0 {
		return 0, false
	}
	return int(n - 1), true
}
