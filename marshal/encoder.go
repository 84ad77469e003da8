package marshal

import (
	"math"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
)

// Encoder writes the fields of one layout slot. Errors are sticky: after the
// first failure every call is a no-op and Err reports that failure.
type Encoder struct {
	buf    *Buffer
	layout *Layout
	err    error
	base   uint32
}

func newEncoder(buf *Buffer, base uint32) *Encoder {
	return &Encoder{buf: buf, layout: buf.layout, base: base}
}

// Err returns the first error recorded by the encoder.
func (e *Encoder) Err() error { return e.err }

// Layout is the layout of the slot being written.
func (e *Encoder) Layout() *Layout { return e.layout }

// Fail records err unless an earlier error is already recorded.
func (e *Encoder) Fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *Encoder) field(name string, kinds ...FieldKind) (Field, bool) {
	if e.err != nil {
		return Field{}, false
	}
	if name == TagField {
		e.err = errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Layout(e.layout.Name).Path(name).Detail("version tag is written by the buffer").Build()
		return Field{}, false
	}
	f, ok := e.layout.Field(name)
	if !ok {
		e.err = errors.FieldUnknown(errors.PhaseEncode, e.layout.Name, name)
		return Field{}, false
	}
	for _, k := range kinds {
		if f.Kind == k {
			return f, true
		}
	}
	e.err = errors.TypeMismatch(errors.PhaseEncode, []string{name}, kinds[0].String(), e.layout.Name)
	return Field{}, false
}

func (e *Encoder) mem() nvapi.Memory { return e.buf.block }

func (e *Encoder) U8(name string, v uint8) {
	if f, ok := e.field(name, FieldU8); ok {
		e.Fail(e.mem().WriteU8(e.base+f.Offset, v))
	}
}

func (e *Encoder) U16(name string, v uint16) {
	if f, ok := e.field(name, FieldU16); ok {
		e.Fail(e.mem().WriteU16(e.base+f.Offset, v))
	}
}

func (e *Encoder) U32(name string, v uint32) {
	if f, ok := e.field(name, FieldU32); ok {
		e.Fail(e.mem().WriteU32(e.base+f.Offset, v))
	}
}

func (e *Encoder) I32(name string, v int32) {
	if f, ok := e.field(name, FieldI32); ok {
		e.Fail(e.mem().WriteU32(e.base+f.Offset, uint32(v)))
	}
}

func (e *Encoder) U64(name string, v uint64) {
	if f, ok := e.field(name, FieldU64); ok {
		e.Fail(e.mem().WriteU64(e.base+f.Offset, v))
	}
}

func (e *Encoder) F32(name string, v float32) {
	if f, ok := e.field(name, FieldF32); ok {
		e.Fail(e.mem().WriteU32(e.base+f.Offset, math.Float32bits(v)))
	}
}

func (e *Encoder) Bool32(name string, v bool) {
	if f, ok := e.field(name, FieldBool32); ok {
		var u uint32
		if v {
			u = 1
		}
		e.Fail(e.mem().WriteU32(e.base+f.Offset, u))
	}
}

// Bytes copies v into a fixed byte array, zero padding the rest.
func (e *Encoder) Bytes(name string, v []byte) {
	f, ok := e.field(name, FieldBytes)
	if !ok {
		return
	}
	if uint32(len(v)) > f.Len {
		e.err = errors.Overflow(errors.PhaseEncode, []string{name}, len(v), e.layout.Name)
		return
	}
	out := make([]byte, f.Len)
	copy(out, v)
	e.Fail(e.mem().Write(e.base+f.Offset, out))
}

// String writes s as a NUL terminated string into a fixed byte array.
func (e *Encoder) String(name string, s string) {
	f, ok := e.field(name, FieldBytes)
	if !ok {
		return
	}
	if uint32(len(s)) >= f.Len {
		e.err = errors.New(errors.PhaseEncode, errors.KindOverflow).
			Layout(e.layout.Name).Path(name).Value(s).
			Detail("string of %d bytes does not fit %d byte array with terminator", len(s), f.Len).Build()
		return
	}
	e.Bytes(name, []byte(s))
}

// Handle writes an opaque driver handle into a pointer-sized field.
func (e *Encoder) Handle(name string, v uintptr) {
	if f, ok := e.field(name, FieldPtr); ok {
		e.Fail(writeWord(e.mem(), e.base+f.Offset, v))
	}
}

// Null writes a zero pointer.
func (e *Encoder) Null(name string) {
	e.Handle(name, 0)
}

// EncodeChild encodes v into a child block owned by the encoder's buffer and
// stores its address in the named pointer field.
func EncodeChild[T Struct](e *Encoder, name string, v T) {
	EncodeChildren(e, name, []T{v})
}

// EncodeChildren encodes vs as a contiguous child array and stores its
// address in the named pointer field. An empty slice writes a null pointer.
func EncodeChildren[T Struct](e *Encoder, name string, vs []T) {
	f, ok := e.field(name, FieldPtr)
	if !ok {
		return
	}
	if len(vs) == 0 {
		e.Fail(writeWord(e.mem(), e.base+f.Offset, 0))
		return
	}
	l, err := arrayLayout(vs)
	if err != nil {
		e.err = err
		return
	}
	child, err := e.buf.own.newArray(l, uint32(len(vs)))
	if err != nil {
		e.err = err
		return
	}
	for i, v := range vs {
		if err := encodeSlot(child, uint32(i), v); err != nil {
			e.err = errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Layout(e.layout.Name).Path(name).Cause(err).Detail("child %d", i).Build()
			return
		}
	}
	e.Fail(writeWord(e.mem(), e.base+f.Offset, child.block.Addr()))
}

// Reserve allocates count empty tagged slots of l as a child array, for
// fields the driver fills in, and stores the address in the named field.
func (e *Encoder) Reserve(name string, l *Layout, count uint32) {
	f, ok := e.field(name, FieldPtr)
	if !ok {
		return
	}
	if count == 0 {
		e.Fail(writeWord(e.mem(), e.base+f.Offset, 0))
		return
	}
	child, err := e.buf.own.newArray(l, count)
	if err != nil {
		e.err = err
		return
	}
	e.Fail(writeWord(e.mem(), e.base+f.Offset, child.block.Addr()))
}

func arrayLayout[T Struct](vs []T) (*Layout, error) {
	l := vs[0].Layout()
	if l == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "value has no layout")
	}
	for i := 1; i < len(vs); i++ {
		if vs[i].Layout() != l {
			return nil, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Layout(l.Name).Detail("element %d uses layout %s", i, vs[i].Layout().Name).Build()
		}
	}
	return l, nil
}

func encodeSlot(buf *Buffer, i uint32, v Struct) error {
	if v.Layout() == nil {
		return errors.InvalidInput(errors.PhaseEncode, "value has no layout")
	}
	if v.Layout() != buf.layout {
		return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
			Layout(buf.layout.Name).GoType(v.Layout().Name).Detail("value layout does not match buffer").Build()
	}
	off, err := buf.zeroSlot(i)
	if err != nil {
		return err
	}
	enc := newEncoder(buf, off)
	if err := v.MarshalNative(enc); err != nil {
		return err
	}
	return enc.err
}

// Encode allocates a buffer for v and writes it. On failure nothing stays
// allocated.
func Encode(alloc nvapi.Allocator, v Struct) (*Buffer, error) {
	if v == nil || v.Layout() == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "value has no layout")
	}
	buf, err := NewArray(alloc, v.Layout(), 1)
	if err != nil {
		return nil, err
	}
	if err := encodeSlot(buf, 0, v); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

// EncodeArray writes vs into one contiguous buffer. All elements must share
// a layout.
func EncodeArray[T Struct](alloc nvapi.Allocator, vs []T) (*Buffer, error) {
	if len(vs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseEncode, "cannot encode an empty array")
	}
	l, err := arrayLayout(vs)
	if err != nil {
		return nil, err
	}
	buf, err := NewArray(alloc, l, uint32(len(vs)))
	if err != nil {
		return nil, err
	}
	for i, v := range vs {
		if err := encodeSlot(buf, uint32(i), v); err != nil {
			buf.Release()
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Layout(l.Name).Cause(err).Detail("element %d", i).Build()
		}
	}
	return buf, nil
}

// EncodeInto overwrites slot i of buf with v.
func EncodeInto(buf *Buffer, i uint32, v Struct) error {
	return encodeSlot(buf, i, v)
}

func writeWord(m nvapi.Memory, off uint32, v uintptr) error {
	if PtrSize == 8 {
		return m.WriteU64(off, uint64(v))
	}
	return m.WriteU32(off, uint32(v))
}

func readWord(m nvapi.Memory, off uint32) (uintptr, error) {
	if PtrSize == 8 {
		v, err := m.ReadU64(off)
		return uintptr(v), err
	}
	v, err := m.ReadU32(off)
	return uintptr(v), err
}
