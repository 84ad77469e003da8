package marshal

import (
	"bytes"
	"math"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
)

// Decoder reads the fields of one layout slot. Like Encoder, errors are
// sticky and reads after a failure return zero values.
type Decoder struct {
	buf    *Buffer
	layout *Layout
	err    error
	base   uint32
}

func newDecoder(buf *Buffer, base uint32) *Decoder {
	return &Decoder{buf: buf, layout: buf.layout, base: base}
}

// Err returns the first error recorded by the decoder.
func (d *Decoder) Err() error { return d.err }

// Layout is the layout of the slot being read.
func (d *Decoder) Layout() *Layout { return d.layout }

// Fail records err unless an earlier error is already recorded.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) field(name string, kind FieldKind) (Field, bool) {
	if d.err != nil {
		return Field{}, false
	}
	f, ok := d.layout.Field(name)
	if !ok {
		d.err = errors.FieldUnknown(errors.PhaseDecode, d.layout.Name, name)
		return Field{}, false
	}
	if f.Kind != kind {
		d.err = errors.TypeMismatch(errors.PhaseDecode, []string{name}, kind.String(), d.layout.Name)
		return Field{}, false
	}
	return f, true
}

func (d *Decoder) mem() nvapi.Memory { return d.buf.block }

func (d *Decoder) U8(name string) uint8 {
	f, ok := d.field(name, FieldU8)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU8(d.base + f.Offset)
	d.Fail(err)
	return v
}

func (d *Decoder) U16(name string) uint16 {
	f, ok := d.field(name, FieldU16)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU16(d.base + f.Offset)
	d.Fail(err)
	return v
}

func (d *Decoder) U32(name string) uint32 {
	f, ok := d.field(name, FieldU32)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU32(d.base + f.Offset)
	d.Fail(err)
	return v
}

func (d *Decoder) I32(name string) int32 {
	f, ok := d.field(name, FieldI32)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU32(d.base + f.Offset)
	d.Fail(err)
	return int32(v)
}

func (d *Decoder) U64(name string) uint64 {
	f, ok := d.field(name, FieldU64)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU64(d.base + f.Offset)
	d.Fail(err)
	return v
}

func (d *Decoder) F32(name string) float32 {
	f, ok := d.field(name, FieldF32)
	if !ok {
		return 0
	}
	v, err := d.mem().ReadU32(d.base + f.Offset)
	d.Fail(err)
	return math.Float32frombits(v)
}

func (d *Decoder) Bool32(name string) bool {
	f, ok := d.field(name, FieldBool32)
	if !ok {
		return false
	}
	v, err := d.mem().ReadU32(d.base + f.Offset)
	d.Fail(err)
	return v != 0
}

// Bytes returns a copy of a fixed byte array.
func (d *Decoder) Bytes(name string) []byte {
	f, ok := d.field(name, FieldBytes)
	if !ok {
		return nil
	}
	v, err := d.mem().Read(d.base+f.Offset, f.Len)
	d.Fail(err)
	return v
}

// String reads a NUL terminated string from a fixed byte array. An array
// with no terminator yields its full contents.
func (d *Decoder) String(name string) string {
	b := d.Bytes(name)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Handle reads an opaque handle from a pointer-sized field.
func (d *Decoder) Handle(name string) uintptr {
	f, ok := d.field(name, FieldPtr)
	if !ok {
		return 0
	}
	v, err := readWord(d.mem(), d.base+f.Offset)
	d.Fail(err)
	return v
}

// Ptr reads a pointer field. Use DecodeChild to follow it.
func (d *Decoder) Ptr(name string) uintptr {
	return d.Handle(name)
}

// DecodeChild follows the named pointer field and decodes the child it
// refers to. ok is false for a null pointer.
func DecodeChild[T Struct](d *Decoder, name string, ctor func() T) (v T, ok bool) {
	vs := DecodeChildren(d, name, 1, ctor)
	if len(vs) == 0 {
		return v, false
	}
	return vs[0], true
}

// DecodeChildren follows the named pointer field and decodes count slots of
// the child array. A null pointer yields nil.
func DecodeChildren[T Struct](d *Decoder, name string, count uint32, ctor func() T) []T {
	addr := d.Ptr(name)
	if d.err != nil || addr == 0 || count == 0 {
		return nil
	}
	child, err := d.buf.Deref(addr)
	if err != nil {
		d.err = errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Layout(d.layout.Name).Path(name).Cause(err).Build()
		return nil
	}
	vs, err := DecodeArray(child, count, ctor)
	if err != nil {
		d.err = errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Layout(d.layout.Name).Path(name).Cause(err).Build()
		return nil
	}
	return vs
}

// Decode reads slot 0 of buf into a new value built by ctor.
func Decode[T Struct](buf *Buffer, ctor func() T) (T, error) {
	return DecodeAt(buf, 0, ctor)
}

// DecodeAt reads slot i of buf. The slot's version tag must match the
// layout of the constructed value. The caller only sees the value when the
// whole decode succeeded.
func DecodeAt[T Struct](buf *Buffer, i uint32, ctor func() T) (T, error) {
	var zero T
	v := ctor()
	l := v.Layout()
	if l == nil {
		return zero, errors.InvalidInput(errors.PhaseDecode, "value has no layout")
	}
	if buf.layout != nil && buf.layout.Size != l.Size {
		return zero, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Layout(l.Name).Detail("buffer slots are %s", buf.layout.Name).Build()
	}
	off, err := buf.slot(i)
	if err != nil {
		return zero, err
	}
	tag, err := buf.block.ReadU32(off)
	if err != nil {
		return zero, err
	}
	if tag != l.Tag() {
		return zero, errors.VersionMismatch(l.Name, l.Tag(), tag)
	}

	dec := &Decoder{buf: buf, layout: l, base: off}
	if err := v.UnmarshalNative(dec); err != nil {
		return zero, err
	}
	if dec.err != nil {
		return zero, dec.err
	}
	return v, nil
}

// DecodeArray reads the first count slots of buf. Either every element
// decodes or none is returned.
func DecodeArray[T Struct](buf *Buffer, count uint32, ctor func() T) ([]T, error) {
	if count > buf.count {
		name := "raw"
		if buf.layout != nil {
			name = buf.layout.Name
		}
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{name}, int(count), int(buf.count))
	}
	out := make([]T, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := DecodeAt(buf, i, ctor)
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Cause(err).Detail("element %d", i).Build()
		}
		out = append(out, v)
	}
	return out, nil
}
