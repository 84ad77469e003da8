// Package marshal converts Go values to and from versioned native driver
// structures.
//
// A Layout describes one concrete version of a structure: its fields, their
// offsets under natural alignment and the version tag written at offset 0.
// The tag packs the structure size and version as Size | Version<<16, which
// is how the driver tells versions apart.
//
// Types implementing Struct bind one Layout and marshal their fields by
// name through an Encoder and Decoder:
//
//	func (m *MemoryInfoV1) MarshalNative(e *marshal.Encoder) error {
//		e.U32("dedicatedVideoMemory", m.DedicatedVideoMemory)
//		return e.Err()
//	}
//
// Encode returns a Buffer, a pinned memory block that owns every child block
// its pointer fields refer to. Release frees the whole tree and is
// idempotent; any access after release fails with KindReleased. Decoding
// never follows pointers that do not refer to blocks of the same buffer.
//
// Allocation goes through nvapi.Allocator. HeapAllocator is the default and
// TrackingAllocator records allocations so tests can check that every
// buffer is released.
package marshal
