package marshal

import (
	"sync"

	"github.com/wippyai/nvapi"
)

// AllocEvent records one allocation or free seen by a TrackingAllocator.
type AllocEvent struct {
	Addr uintptr
	Size uint32
	Free bool
}

// TrackingAllocator wraps an Allocator and records every allocation and free.
// It is used to verify that buffers are released on every exit path.
type TrackingAllocator struct {
	inner  nvapi.Allocator
	live   map[uintptr]uint32
	events []AllocEvent
	mu     sync.Mutex
}

// NewTrackingAllocator wraps inner. A nil inner uses a HeapAllocator.
func NewTrackingAllocator(inner nvapi.Allocator) *TrackingAllocator {
	if inner == nil {
		inner = NewHeapAllocator()
	}
	return &TrackingAllocator{
		inner: inner,
		live:  make(map[uintptr]uint32),
	}
}

func (t *TrackingAllocator) Alloc(size, align uint32) (nvapi.Block, error) {
	b, err := t.inner.Alloc(size, align)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.live[b.Addr()] = size
	t.events = append(t.events, AllocEvent{Addr: b.Addr(), Size: size})
	t.mu.Unlock()
	return b, nil
}

func (t *TrackingAllocator) Free(b nvapi.Block) {
	addr, size := b.Addr(), b.Len()
	t.mu.Lock()
	if _, ok := t.live[addr]; ok {
		delete(t.live, addr)
		t.events = append(t.events, AllocEvent{Addr: addr, Size: size, Free: true})
	}
	t.mu.Unlock()
	t.inner.Free(b)
}

// Live returns the number of blocks allocated and not yet freed.
func (t *TrackingAllocator) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Events returns a copy of the allocation log in order.
func (t *TrackingAllocator) Events() []AllocEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]AllocEvent(nil), t.events...)
}

// Reset clears the event log. Live blocks stay tracked.
func (t *TrackingAllocator) Reset() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}
