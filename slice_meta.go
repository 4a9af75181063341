package once

import (
	"unsafe"

	"go.uber.org/atomic"
)

// SliceMeta is a write-once cell for a []T plus one out-of-band metadata
// value of type M, published by the same winning Set.
//
// The slice and the metadata share one winner but expose independent
// readiness signals: Get gates on the pointer/length pair, Meta gates on
// its own flag. A reader may observe either side first.
//
// Must not be copied after first use.
type SliceMeta[T, M any] struct {
	ptr    atomic.Pointer[T] // first element, nil until a Set wins
	n      atomic.Uint64     // len+1, 0 until published
	metaOK atomic.Bool
	meta   M
}

// NewSliceMeta returns an unset cell. Equivalent to new(SliceMeta[T, M]).
func NewSliceMeta[T, M any]() *SliceMeta[T, M] {
	return &SliceMeta[T, M]{}
}

// Set attempts to publish values and meta together, transferring ownership
// of both to the cell.
//
// Same contract as Slice.Set: exactly one call per cell returns true, and
// a loser keeps both of its inputs untouched. The metadata write itself is
// a plain store, sound because winning the pointer race makes the winner
// the only goroutine that ever touches the storage before the readiness
// flag is raised.
func (s *SliceMeta[T, M]) Set(values []T, meta M) bool {
	if !s.ptr.CompareAndSwap(nil, sliceHead(values)) {
		return false
	}
	s.meta = meta
	s.metaOK.Store(true)
	s.n.Store(uint64(len(values)) + 1)
	return true
}

// Get returns the published slice, see Slice.Get.
func (s *SliceMeta[T, M]) Get() ([]T, bool) {
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
func (s *SliceMeta[T, M]) Len() (int, bool) {
	if s.ptr.Load() == nil {
		return 0, false
	}
	n := s.n.Load()
	if n == 0 {
		return 0, false
	}
	return int(n - 1), true
}

// Meta returns a pointer to the published metadata.
//
// Reports false until the winning Set has stored the value. Never blocks.
// The pointer stays valid for the lifetime of the cell; writing through it
// requires the caller to rule out concurrent readers.
func (s *SliceMeta[T, M]) Meta() (*M, bool) {
	if !s.metaOK.Load() {
		return nil, false
	}
	return &s.meta, true
}
