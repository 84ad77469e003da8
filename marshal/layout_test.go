package marshal

import (
	"testing"

	"github.com/wippyai/nvapi/errors"
)

func TestNewLayout_Offsets(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  uint32
	}{
		{"tag first", TagField, 0},
		{"x", "x", 4},
		{"y", "y", 8},
		{"name", "name", 12},
		{"on", "on", 28},
		{"scale", "scale", 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := pointV1Layout.Field(tt.field)
			if !ok {
				t.Fatalf("field %q missing", tt.field)
			}
			if f.Offset != tt.want {
				t.Errorf("offset = %d, want %d", f.Offset, tt.want)
			}
		})
	}
	if pointV1Layout.Size != 36 || pointV1Layout.Align != 4 {
		t.Errorf("size/align = %d/%d, want 36/4", pointV1Layout.Size, pointV1Layout.Align)
	}
}

func TestNewLayout_PointerAlignment(t *testing.T) {
	f, _ := groupV1Layout.Field("points")
	if f.Offset%PtrSize != 0 {
		t.Errorf("pointer field offset %d not aligned to %d", f.Offset, PtrSize)
	}
	if groupV1Layout.Align != 8 {
		t.Errorf("align = %d, want 8", groupV1Layout.Align)
	}
	if groupV1Layout.Size%8 != 0 {
		t.Errorf("size %d not padded to alignment", groupV1Layout.Size)
	}
}

func TestLayout_Tag(t *testing.T) {
	tag := pointV2Layout.Tag()
	if tag != 40|2<<16 {
		t.Errorf("tag = %#x, want %#x", tag, 40|2<<16)
	}
	size, version := TagVersion(tag)
	if size != 40 || version != 2 {
		t.Errorf("TagVersion = %d/%d", size, version)
	}
}

func TestNewLayout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		version uint16
		fields  []Field
		kind    errors.Kind
	}{
		{"empty name", "", 1, nil, errors.KindInvalidInput},
		{"zero version", "X", 0, nil, errors.KindInvalidInput},
		{"duplicate", "X", 1, []Field{U32("a"), U32("a")}, errors.KindInvalidInput},
		{"tag redeclared", "X", 1, []Field{U32(TagField)}, errors.KindInvalidInput},
		{"unnamed", "X", 1, []Field{U32("")}, errors.KindInvalidInput},
		{"bytes without length", "X", 1, []Field{Bytes("b", 0)}, errors.KindInvalidInput},
		{"bad kind", "X", 1, []Field{{Name: "k", Kind: 99}}, errors.KindInvalidInput},
		{"too large", "X", 1, []Field{Bytes("b", 0x10000)}, errors.KindOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.layout, tt.version, tt.fields...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("got %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestMustLayout_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLayout should panic on invalid layout")
		}
	}()
	MustLayout("", 1)
}

func TestLayout_Fields(t *testing.T) {
	fields := pointV1Layout.Fields()
	if fields[0].Name != TagField {
		t.Errorf("first field = %q", fields[0].Name)
	}
	fields[0].Name = "changed"
	if f, _ := pointV1Layout.Field(TagField); f.Name != TagField {
		t.Error("Fields should return a copy")
	}
}
