package control

import (
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
)

var (
	memoryInfoV1Layout = marshal.MustLayout("NV_DISPLAY_DRIVER_MEMORY_INFO_V1", 1,
		marshal.U32("dedicatedVideoMemory"),
		marshal.U32("availableDedicatedVideoMemory"),
		marshal.U32("systemVideoMemory"),
		marshal.U32("sharedSystemMemory"),
		marshal.U32("curAvailableDedicatedVideoMemory"),
	)
	memoryInfoV2Layout = marshal.MustLayout("NV_DISPLAY_DRIVER_MEMORY_INFO_V2", 2,
		append(memoryInfoV1Layout.Fields()[1:],
			marshal.U32("dedicatedVideoMemoryEvictionsSize"),
			marshal.U32("dedicatedVideoMemoryEvictionCount"),
		)...,
	)
	memoryInfoV3Layout = marshal.MustLayout("NV_DISPLAY_DRIVER_MEMORY_INFO_V3", 3,
		append(memoryInfoV2Layout.Fields()[1:],
			marshal.U32("dedicatedVideoMemoryPromotionsSize"),
			marshal.U32("dedicatedVideoMemoryPromotionCount"),
		)...,
	)
)

// MemoryInfo is one of MemoryInfoV1, MemoryInfoV2 or MemoryInfoV3. Sizes
// are in KiB.
type MemoryInfo interface {
	marshal.Struct
	Basic() *MemoryInfoV1
}

type MemoryInfoV1 struct {
	DedicatedVideoMemory             uint32
	AvailableDedicatedVideoMemory    uint32
	SystemVideoMemory                uint32
	SharedSystemMemory               uint32
	CurAvailableDedicatedVideoMemory uint32
}

func (m *MemoryInfoV1) Layout() *marshal.Layout { return memoryInfoV1Layout }

// Basic returns the fields every version has.
func (m *MemoryInfoV1) Basic() *MemoryInfoV1 { return m }

func (m *MemoryInfoV1) MarshalNative(e *marshal.Encoder) error {
	e.U32("dedicatedVideoMemory", m.DedicatedVideoMemory)
	e.U32("availableDedicatedVideoMemory", m.AvailableDedicatedVideoMemory)
	e.U32("systemVideoMemory", m.SystemVideoMemory)
	e.U32("sharedSystemMemory", m.SharedSystemMemory)
	e.U32("curAvailableDedicatedVideoMemory", m.CurAvailableDedicatedVideoMemory)
	return e.Err()
}

func (m *MemoryInfoV1) UnmarshalNative(d *marshal.Decoder) error {
	m.DedicatedVideoMemory = d.U32("dedicatedVideoMemory")
	m.AvailableDedicatedVideoMemory = d.U32("availableDedicatedVideoMemory")
	m.SystemVideoMemory = d.U32("systemVideoMemory")
	m.SharedSystemMemory = d.U32("sharedSystemMemory")
	m.CurAvailableDedicatedVideoMemory = d.U32("curAvailableDedicatedVideoMemory")
	return d.Err()
}

type MemoryInfoV2 struct {
	MemoryInfoV1
	DedicatedVideoMemoryEvictionsSize uint32
	DedicatedVideoMemoryEvictionCount uint32
}

func (m *MemoryInfoV2) Layout() *marshal.Layout { return memoryInfoV2Layout }

func (m *MemoryInfoV2) MarshalNative(e *marshal.Encoder) error {
	_ = m.MemoryInfoV1.MarshalNative(e)
	e.U32("dedicatedVideoMemoryEvictionsSize", m.DedicatedVideoMemoryEvictionsSize)
	e.U32("dedicatedVideoMemoryEvictionCount", m.DedicatedVideoMemoryEvictionCount)
	return e.Err()
}

func (m *MemoryInfoV2) UnmarshalNative(d *marshal.Decoder) error {
	_ = m.MemoryInfoV1.UnmarshalNative(d)
	m.DedicatedVideoMemoryEvictionsSize = d.U32("dedicatedVideoMemoryEvictionsSize")
	m.DedicatedVideoMemoryEvictionCount = d.U32("dedicatedVideoMemoryEvictionCount")
	return d.Err()
}

type MemoryInfoV3 struct {
	MemoryInfoV2
	DedicatedVideoMemoryPromotionsSize uint32
	DedicatedVideoMemoryPromotionCount uint32
}

func (m *MemoryInfoV3) Layout() *marshal.Layout { return memoryInfoV3Layout }

func (m *MemoryInfoV3) MarshalNative(e *marshal.Encoder) error {
	_ = m.MemoryInfoV2.MarshalNative(e)
	e.U32("dedicatedVideoMemoryPromotionsSize", m.DedicatedVideoMemoryPromotionsSize)
	e.U32("dedicatedVideoMemoryPromotionCount", m.DedicatedVideoMemoryPromotionCount)
	return e.Err()
}

func (m *MemoryInfoV3) UnmarshalNative(d *marshal.Decoder) error {
	_ = m.MemoryInfoV2.UnmarshalNative(d)
	m.DedicatedVideoMemoryPromotionsSize = d.U32("dedicatedVideoMemoryPromotionsSize")
	m.DedicatedVideoMemoryPromotionCount = d.U32("dedicatedVideoMemoryPromotionCount")
	return d.Err()
}

var memoryInfoCandidates = registry.MustCandidates[MemoryInfo](KindMemoryInfo,
	func() MemoryInfo { return &MemoryInfoV3{} },
	func() MemoryInfo { return &MemoryInfoV2{} },
	func() MemoryInfo { return &MemoryInfoV1{} },
)

// MemoryInfo returns the newest memory report the driver supports for gpu.
func (c *Client) MemoryInfo(gpu GPUHandle) (MemoryInfo, error) {
	set, err := registry.Set[MemoryInfo](c.reg, KindMemoryInfo)
	if err != nil {
		return nil, err
	}
	return dispatch.Negotiate(c.d, resolver.GPU_GetMemoryInfo, set, nil, func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.Word(uintptr(gpu)), native.Ptr(buf)}
	})
}
