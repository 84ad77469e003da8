package marshal

import (
	"fmt"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal/internal/abi"
	"github.com/wippyai/nvapi/marshal/internal/layout"
)

// TagField is the name of the version tag every layout starts with.
const TagField = "version"

// PtrSize is the width in bytes of native pointers and handles.
const PtrSize = abi.PtrSize

// FieldKind is the native representation of one structure field.
type FieldKind uint8

const (
	FieldU8 FieldKind = iota + 1
	FieldU16
	FieldU32
	FieldI32
	FieldU64
	FieldF32
	FieldBool32 // u32, non-zero means true
	FieldPtr    // pointer to a child block owned by the same buffer
	FieldBytes  // fixed-length byte array, NUL padded
)

func (k FieldKind) String() string {
	switch k {
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU32:
		return "u32"
	case FieldI32:
		return "i32"
	case FieldU64:
		return "u64"
	case FieldF32:
		return "f32"
	case FieldBool32:
		return "bool32"
	case FieldPtr:
		return "ptr"
	case FieldBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k FieldKind) spec(n uint32) layout.Spec {
	switch k {
	case FieldU8:
		return layout.Spec{Size: 1, Align: 1}
	case FieldU16:
		return layout.Spec{Size: 2, Align: 2}
	case FieldU32, FieldI32, FieldF32, FieldBool32:
		return layout.Spec{Size: 4, Align: 4}
	case FieldU64:
		return layout.Spec{Size: 8, Align: 8}
	case FieldPtr:
		return layout.Spec{Size: PtrSize, Align: PtrSize}
	case FieldBytes:
		return layout.Spec{Size: n, Align: 1}
	default:
		return layout.Spec{Size: 0, Align: 1}
	}
}

// Field describes one field of a native structure. Offset is filled in by NewLayout.
type Field struct {
	Name   string
	Kind   FieldKind
	Len    uint32
	Offset uint32
}

func U8(name string) Field { return Field{Name: name, Kind: FieldU8} }
func U16(name string) Field { return Field{Name: name, Kind: FieldU16} }
func U32(name string) Field { return Field{Name: name, Kind: FieldU32} }
func I32(name string) Field { return Field{Name: name, Kind: FieldI32} }
func U64(name string) Field { return Field{Name: name, Kind: FieldU64} }
func F32(name string) Field { return Field{Name: name, Kind: FieldF32} }
func Bool32(name string) Field { return Field{Name: name, Kind: FieldBool32} }
func Ptr(name string) Field { return Field{Name: name, Kind: FieldPtr} }

// Bytes declares a fixed-length byte array field of n bytes.
func Bytes(name string, n uint32) Field { return Field{Name: name, Kind: FieldBytes, Len: n} }

// Layout is one concrete versioned native structure shape. The version tag
// lives at offset 0 and equals Size | Version<<16.
type Layout struct {
	index   map[string]int
	Name    string
	fields  []Field
	Size    uint32
	Align   uint32
	Version uint16
}

// NewLayout computes offsets for fields, prepending the version tag.
func NewLayout(name string, version uint16, fields ...Field) (*Layout, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegistry, "layout name is empty")
	}
	if version == 0 {
		return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
			Layout(name).Detail("version must be at least 1").Build()
	}

	all := make([]Field, 0, len(fields)+1)
	all = append(all, U32(TagField))
	all = append(all, fields...)

	specs := make([]layout.Spec, len(all))
	index := make(map[string]int, len(all))
	for i, f := range all {
		if f.Name == "" {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Layout(name).Detail("field %d has no name", i).Build()
		}
		if _, dup := index[f.Name]; dup {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Layout(name).Path(f.Name).Detail("duplicate field").Build()
		}
		if f.Kind < FieldU8 || f.Kind > FieldBytes {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Layout(name).Path(f.Name).Detail("unknown field kind %d", f.Kind).Build()
		}
		if f.Kind == FieldBytes && f.Len == 0 {
			return nil, errors.New(errors.PhaseRegistry, errors.KindInvalidInput).
				Layout(name).Path(f.Name).Detail("byte array needs a length").Build()
		}
		index[f.Name] = i
		specs[i] = f.Kind.spec(f.Len)
	}

	info := layout.Calculate(specs)
	if info.Size > 0xFFFF {
		return nil, errors.Overflow(errors.PhaseRegistry, []string{name}, info.Size, "16-bit version tag size")
	}
	for i := range all {
		all[i].Offset = info.Offsets[i]
	}

	return &Layout{
		Name:    name,
		Version: version,
		Size:    info.Size,
		Align:   info.Align,
		fields:  all,
		index:   index,
	}, nil
}

// MustLayout is like NewLayout but panics on error. It is meant for
// package-level layout tables.
func MustLayout(name string, version uint16, fields ...Field) *Layout {
	l, err := NewLayout(name, version, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Tag returns the version tag written at offset 0.
func (l *Layout) Tag() uint32 {
	return l.Size | uint32(l.Version)<<16
}

// Field returns the named field.
func (l *Layout) Field(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Fields returns a copy of the field list, version tag first.
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

func (l *Layout) String() string {
	return fmt.Sprintf("%s (v%d, %d bytes)", l.Name, l.Version, l.Size)
}

// TagVersion splits a version tag into structure size and version.
func TagVersion(tag uint32) (size uint32, version uint16) {
	return tag & 0xFFFF, uint16(tag >> 16)
}
