package marshal

import (
	"bytes"
	"math"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal/internal/abi"
)

// ShortStringLen is the size of the driver's fixed short string buffers.
const ShortStringLen = 64

// NewU32 allocates a 4-byte in/out parameter holding v.
func NewU32(alloc nvapi.Allocator, v uint32) (*Buffer, error) {
	b, err := Alloc(alloc, 4, 4)
	if err != nil {
		return nil, err
	}
	if err := b.SetU32(v); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewF32 allocates a 4-byte float in/out parameter holding v.
func NewF32(alloc nvapi.Allocator, v float32) (*Buffer, error) {
	b, err := Alloc(alloc, 4, 4)
	if err != nil {
		return nil, err
	}
	if err := b.SetF32(v); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewWord allocates a pointer-sized out parameter holding v, used for
// handles returned by the driver.
func NewWord(alloc nvapi.Allocator, v uintptr) (*Buffer, error) {
	b, err := NewWords(alloc, 1)
	if err != nil {
		return nil, err
	}
	if err := b.SetWord(v); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// NewWords allocates a zeroed array of n pointer-sized slots.
func NewWords(alloc nvapi.Allocator, n uint32) (*Buffer, error) {
	if n == 0 || n > abi.MaxArrayLength {
		return nil, errors.OutOfBounds(errors.PhaseEncode, []string{"words"}, int(n), abi.MaxArrayLength)
	}
	return Alloc(alloc, n*PtrSize, PtrSize)
}

// NewShortString allocates an empty short string out parameter.
func NewShortString(alloc nvapi.Allocator) (*Buffer, error) {
	return Alloc(alloc, ShortStringLen, 1)
}

// NewCString allocates s as a NUL terminated string.
func NewCString(alloc nvapi.Allocator, s string) (*Buffer, error) {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Value(s).Detail("string contains NUL").Build()
	}
	b, err := Alloc(alloc, uint32(len(s))+1, 1)
	if err != nil {
		return nil, err
	}
	if err := b.SetCString(s); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *Buffer) raw() (nvapi.Memory, error) {
	return b.Memory()
}

func (b *Buffer) U32() (uint32, error) {
	m, err := b.raw()
	if err != nil {
		return 0, err
	}
	return m.ReadU32(0)
}

func (b *Buffer) SetU32(v uint32) error {
	m, err := b.raw()
	if err != nil {
		return err
	}
	return m.WriteU32(0, v)
}

func (b *Buffer) F32() (float32, error) {
	v, err := b.U32()
	return math.Float32frombits(v), err
}

func (b *Buffer) SetF32(v float32) error {
	return b.SetU32(math.Float32bits(v))
}

func (b *Buffer) Word() (uintptr, error) {
	return b.WordAt(0)
}

func (b *Buffer) SetWord(v uintptr) error {
	return b.SetWordAt(0, v)
}

// WordAt reads pointer-sized slot i.
func (b *Buffer) WordAt(i uint32) (uintptr, error) {
	m, err := b.raw()
	if err != nil {
		return 0, err
	}
	return readWord(m, i*PtrSize)
}

func (b *Buffer) SetWordAt(i uint32, v uintptr) error {
	m, err := b.raw()
	if err != nil {
		return err
	}
	return writeWord(m, i*PtrSize, v)
}

// CString reads the buffer up to the first NUL.
func (b *Buffer) CString() (string, error) {
	m, err := b.raw()
	if err != nil {
		return "", err
	}
	data, err := m.Read(0, b.Len())
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

// SetCString writes s and a terminator, truncating to fit.
func (b *Buffer) SetCString(s string) error {
	m, err := b.raw()
	if err != nil {
		return err
	}
	out := make([]byte, b.Len())
	if n := len(out) - 1; len(s) > n {
		s = s[:n]
	}
	copy(out, s)
	return m.Write(0, out)
}
