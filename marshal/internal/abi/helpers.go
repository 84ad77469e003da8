package abi

import (
	"encoding/binary"
	"math"
	"reflect"
	"strconv"
)

// PtrSize is the width in bytes of a native pointer or handle.
const PtrSize = strconv.IntSize / 8

// ByteOrder is the byte order of every supported driver platform.
var ByteOrder = binary.LittleEndian

const (
	MaxAlloc       = 1 << 28 // 256 MB max single allocation
	MaxArrayLength = 1 << 16 // driver arrays never approach this
)

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// AlignPtr rounds an address up to align.
func AlignPtr(addr uintptr, align uint32) uintptr {
	if align == 0 {
		return addr
	}
	a := uintptr(align)
	return (addr + a - 1) &^ (a - 1)
}

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
