package native

import "github.com/wippyai/nvapi/marshal"

// Arg is one argument of a native call: either a plain word or a buffer
// passed by address.
type Arg struct {
	buf  *marshal.Buffer
	word uintptr
}

// Word passes v by value. Handles and ids go through Word.
func Word(v uintptr) Arg { return Arg{word: v} }

// U32 passes a 32-bit value.
func U32(v uint32) Arg { return Arg{word: uintptr(v)} }

// I32 passes a signed 32-bit value, sign extended like the C ABI does.
func I32(v int32) Arg { return Arg{word: uintptr(int(v))} }

// Ptr passes the address of b. A nil buffer passes a null pointer.
func Ptr(b *marshal.Buffer) Arg { return Arg{buf: b} }

// Null passes a null pointer.
func Null() Arg { return Arg{} }

// Buffer returns the buffer passed by address, or nil.
func (a Arg) Buffer() *marshal.Buffer { return a.buf }

// Value returns the machine word passed to the native function.
func (a Arg) Value() uintptr {
	if a.buf != nil {
		return a.buf.Addr()
	}
	return a.word
}

// IsNull reports whether the argument is a null pointer or zero word.
func (a Arg) IsNull() bool { return a.Value() == 0 }
