package control

import "fmt"

// DisplayHandle is the driver's opaque handle for an attached display.
type DisplayHandle uintptr

func (h DisplayHandle) String() string { return fmt.Sprintf("display@%#x", uintptr(h)) }

// GPUHandle is the driver's opaque handle for a physical GPU.
type GPUHandle uintptr

func (h GPUHandle) String() string { return fmt.Sprintf("gpu@%#x", uintptr(h)) }

// DisplayID is the driver's stable 32-bit display identifier.
type DisplayID uint32

func (id DisplayID) String() string { return fmt.Sprintf("0x%08X", uint32(id)) }

// OutputID selects one output of a display handle. Zero selects the
// default output.
type OutputID uint32

// MaxPhysicalGPUs is the size of the handle array the driver fills.
const MaxPhysicalGPUs = 64
