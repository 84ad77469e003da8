package layout

import "github.com/wippyai/nvapi/marshal/internal/abi"

// Spec is the size and alignment of one field.
type Spec struct {
	Size  uint32
	Align uint32
}

// Info is the computed layout of a structure.
type Info struct {
	Offsets []uint32
	Size    uint32
	Align   uint32
}

// Calculate lays out fields sequentially with natural padding.
func Calculate(fields []Spec) Info {
	if len(fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, f := range fields {
		align := f.Align
		if align == 0 {
			align = 1
		}

		offset = abi.AlignTo(offset, align)
		offsets[i] = offset

		if align > maxAlign {
			maxAlign = align
		}

		offset += f.Size
	}

	return Info{
		Offsets: offsets,
		Size:    abi.AlignTo(offset, maxAlign),
		Align:   maxAlign,
	}
}
