package marshal

import (
	"sync"

	"github.com/wippyai/nvapi"
)

// Allocation is one block owned by a buffer tree, with the layout and slot
// count it was allocated for. Raw blocks have a nil Layout.
type Allocation struct {
	Block  nvapi.Block
	Layout *Layout
	Count  uint32
}

// AllocationList tracks every block of one buffer tree so the whole tree is
// freed together.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns to pool. Must call after Free(); list invalid after Release.
func (al *AllocationList) Release() {
	// Only pool small lists to prevent memory bloat
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator nvapi.Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(a Allocation) {
	al.allocations = append(al.allocations, a)
}

// Find returns the allocation whose block starts at addr.
func (al *AllocationList) Find(addr uintptr) (Allocation, bool) {
	if addr == 0 {
		return Allocation{}, false
	}
	for _, a := range al.allocations {
		if a.Block.Addr() == addr {
			return a, true
		}
	}
	return Allocation{}, false
}

// Free releases blocks in reverse allocation order, children before parents.
func (al *AllocationList) Free(allocator nvapi.Allocator) {
	if allocator == nil {
		return
	}
	for i := len(al.allocations) - 1; i >= 0; i-- {
		if b := al.allocations[i].Block; b != nil {
			allocator.Free(b)
		}
	}
}

func (al *AllocationList) Reset() {
	clear(al.allocations)
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}
