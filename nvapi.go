package nvapi

// Memory represents a native memory block addressed by byte offset.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Block is one allocation handed out by an Allocator. Its address stays
// valid and fixed until it is freed.
type Block interface {
	Memory
	Addr() uintptr
	Len() uint32
}

// Allocator allocates native memory blocks for marshaled structures.
type Allocator interface {
	Alloc(size, align uint32) (Block, error)
	Free(b Block)
}
