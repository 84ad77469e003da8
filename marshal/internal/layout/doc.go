// Package layout computes native structure layouts.
//
// Fields are placed in declaration order at the next offset aligned to the
// field's natural alignment; the structure's alignment is the largest field
// alignment and its size is rounded up to that alignment. This matches the
// C compiler rules the driver headers are built with.
//
// # Usage
//
//	info := layout.Calculate([]layout.Spec{{Size: 4, Align: 4}, {Size: 1, Align: 1}})
//	// info.Size == 8, info.Offsets == []uint32{0, 4}
//
// This package is internal to marshal.
package layout
