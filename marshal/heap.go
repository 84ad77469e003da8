package marshal

import (
	"runtime"
	"unsafe"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal/internal/abi"
)

// HeapAllocator allocates blocks from the Go heap and pins them so their
// addresses can be handed to the driver and embedded in other blocks.
type HeapAllocator struct{}

// NewHeapAllocator returns the default allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{}
}

// Alloc returns a zeroed, pinned block of size bytes aligned to align.
func (a *HeapAllocator) Alloc(size, align uint32) (nvapi.Block, error) {
	if align == 0 {
		align = 1
	}
	if !abi.IsPowerOfTwo(align) {
		return nil, errors.InvalidInput(errors.PhaseNative, "alignment must be a power of two")
	}
	if size > abi.MaxAlloc {
		return nil, errors.AllocationFailed(errors.PhaseNative, size, align)
	}

	n := size
	if n == 0 {
		n = 1
	}
	raw := make([]byte, int(n)+int(align)-1)
	base := uintptr(unsafe.Pointer(&raw[0]))
	off := abi.AlignPtr(base, align) - base

	b := &heapBlock{raw: raw, off: off, size: size}
	b.pinner.Pin(&raw[0])
	return b, nil
}

// Free unpins and clears a block. Freeing a block twice is a no-op.
func (a *HeapAllocator) Free(b nvapi.Block) {
	if hb, ok := b.(*heapBlock); ok {
		hb.free()
	}
}

type heapBlock struct {
	pinner runtime.Pinner
	raw    []byte
	off    uintptr
	size   uint32
}

func (b *heapBlock) free() {
	if b.raw == nil {
		return
	}
	clear(b.raw)
	b.pinner.Unpin()
	b.raw = nil
}

func (b *heapBlock) Addr() uintptr {
	if b.raw == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.raw[b.off]))
}

func (b *heapBlock) Len() uint32 { return b.size }

func (b *heapBlock) span(offset, length uint32) ([]byte, error) {
	if b.raw == nil {
		return nil, errors.Released("heap block")
	}
	end, ok := abi.SafeAddU32(offset, length)
	if !ok || end > b.size {
		return nil, errors.OutOfBounds(errors.PhaseNative, nil, int(offset)+int(length), int(b.size))
	}
	start := b.off + uintptr(offset)
	return b.raw[start : start+uintptr(length)], nil
}

func (b *heapBlock) Read(offset, length uint32) ([]byte, error) {
	s, err := b.span(offset, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, s)
	return out, nil
}

func (b *heapBlock) Write(offset uint32, data []byte) error {
	s, err := b.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(s, data)
	return nil
}

func (b *heapBlock) ReadU8(offset uint32) (uint8, error) {
	s, err := b.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (b *heapBlock) ReadU16(offset uint32) (uint16, error) {
	s, err := b.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return abi.ByteOrder.Uint16(s), nil
}

func (b *heapBlock) ReadU32(offset uint32) (uint32, error) {
	s, err := b.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return abi.ByteOrder.Uint32(s), nil
}

func (b *heapBlock) ReadU64(offset uint32) (uint64, error) {
	s, err := b.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return abi.ByteOrder.Uint64(s), nil
}

func (b *heapBlock) WriteU8(offset uint32, value uint8) error {
	s, err := b.span(offset, 1)
	if err != nil {
		return err
	}
	s[0] = value
	return nil
}

func (b *heapBlock) WriteU16(offset uint32, value uint16) error {
	s, err := b.span(offset, 2)
	if err != nil {
		return err
	}
	abi.ByteOrder.PutUint16(s, value)
	return nil
}

func (b *heapBlock) WriteU32(offset uint32, value uint32) error {
	s, err := b.span(offset, 4)
	if err != nil {
		return err
	}
	abi.ByteOrder.PutUint32(s, value)
	return nil
}

func (b *heapBlock) WriteU64(offset uint32, value uint64) error {
	s, err := b.span(offset, 8)
	if err != nil {
		return err
	}
	abi.ByteOrder.PutUint64(s, value)
	return nil
}
