package marshal

import (
	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal/internal/abi"
)

// owner holds every block of one buffer tree. Child buffers share it with
// the root so releasing the root frees the whole tree.
type owner struct {
	alloc    nvapi.Allocator
	allocs   *AllocationList
	released bool
}

func (o *owner) allocate(l *Layout, count, size, align uint32) (*Buffer, error) {
	if o.released {
		return nil, errors.Released("buffer")
	}
	block, err := o.alloc.Alloc(size, align)
	if err != nil {
		return nil, err
	}
	o.allocs.Add(Allocation{Block: block, Layout: l, Count: count})
	return &Buffer{own: o, block: block, layout: l, count: count}, nil
}

// Buffer is a native memory block sized for a layout, or for an array of
// count layout slots, together with the child blocks its pointer fields
// refer to. A Buffer is owned by one call path and is not safe for
// concurrent use.
type Buffer struct {
	own    *owner
	block  nvapi.Block
	layout *Layout
	count  uint32
	root   bool
}

func newOwner(alloc nvapi.Allocator) *owner {
	return &owner{alloc: alloc, allocs: NewAllocationList()}
}

// Alloc returns a raw buffer of size bytes with no layout.
func Alloc(alloc nvapi.Allocator, size, align uint32) (*Buffer, error) {
	if alloc == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "allocator is nil")
	}
	own := newOwner(alloc)
	b, err := own.allocate(nil, 0, size, align)
	if err != nil {
		own.allocs.FreeAndRelease(alloc)
		return nil, err
	}
	b.root = true
	return b, nil
}

// NewArray allocates count zeroed slots of l and writes the version tag into
// every slot. It is the receive buffer for count-then-fetch calls.
func NewArray(alloc nvapi.Allocator, l *Layout, count uint32) (*Buffer, error) {
	if alloc == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "allocator is nil")
	}
	if l == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "layout is nil")
	}
	own := newOwner(alloc)
	b, err := own.newArray(l, count)
	if err != nil {
		own.allocs.FreeAndRelease(alloc)
		return nil, err
	}
	b.root = true
	return b, nil
}

func (o *owner) newArray(l *Layout, count uint32) (*Buffer, error) {
	if count == 0 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Layout(l.Name).Detail("array needs at least one slot").Build()
	}
	if count > abi.MaxArrayLength {
		return nil, errors.Overflow(errors.PhaseEncode, []string{l.Name}, count, "array length")
	}
	size, ok := abi.SafeMulU32(l.Size, count)
	if !ok {
		return nil, errors.Overflow(errors.PhaseEncode, []string{l.Name}, count, "array size")
	}
	b, err := o.allocate(l, count, size, l.Align)
	if err != nil {
		return nil, err
	}
	tag := l.Tag()
	for i := uint32(0); i < count; i++ {
		if err := b.block.WriteU32(i*l.Size, tag); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Addr is the address handed to the driver.
func (b *Buffer) Addr() uintptr {
	if b == nil || b.own.released {
		return 0
	}
	return b.block.Addr()
}

// Len is the size of the buffer in bytes.
func (b *Buffer) Len() uint32 { return b.block.Len() }

// Count is the number of layout slots. Raw buffers report 0.
func (b *Buffer) Count() uint32 { return b.count }

// Layout is the slot layout, nil for raw buffers.
func (b *Buffer) Layout() *Layout { return b.layout }

// Released reports whether the buffer tree has been released.
func (b *Buffer) Released() bool { return b.own.released }

// Memory gives byte-level access to the block.
func (b *Buffer) Memory() (nvapi.Memory, error) {
	if b.own.released {
		return nil, errors.Released("buffer")
	}
	return b.block, nil
}

// Release frees the buffer and every child block. It is idempotent and a
// no-op on child views returned by Deref.
func (b *Buffer) Release() {
	if b == nil || !b.root || b.own.released {
		return
	}
	b.own.released = true
	b.own.allocs.FreeAndRelease(b.own.alloc)
	b.own.allocs = nil
}

// Deref returns the child buffer a pointer field refers to. A zero address
// yields nil. Addresses not owned by this buffer tree are rejected, so
// foreign pointers are never dereferenced.
func (b *Buffer) Deref(addr uintptr) (*Buffer, error) {
	if b.own.released {
		return nil, errors.Released("buffer")
	}
	if addr == 0 {
		return nil, nil
	}
	a, ok := b.own.allocs.Find(addr)
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(addr).Detail("pointer %#x does not refer to a block owned by this buffer", addr).Build()
	}
	return &Buffer{own: b.own, block: a.Block, layout: a.Layout, count: a.Count}, nil
}

// Tag reads the version tag of slot i.
func (b *Buffer) Tag(i uint32) (uint32, error) {
	off, err := b.slot(i)
	if err != nil {
		return 0, err
	}
	return b.block.ReadU32(off)
}

func (b *Buffer) slot(i uint32) (uint32, error) {
	if b.own.released {
		return 0, errors.Released("buffer")
	}
	if b.layout == nil {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Detail("raw buffer has no slots").Build()
	}
	if i >= b.count {
		return 0, errors.OutOfBounds(errors.PhaseDecode, []string{b.layout.Name}, int(i), int(b.count))
	}
	return i * b.layout.Size, nil
}

func (b *Buffer) zeroSlot(i uint32) (uint32, error) {
	off, err := b.slot(i)
	if err != nil {
		return 0, err
	}
	if err := b.block.Write(off, make([]byte, b.layout.Size)); err != nil {
		return 0, err
	}
	return off, b.block.WriteU32(off, b.layout.Tag())
}
