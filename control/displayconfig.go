package control

import (
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
)

// SetConfigFlags controls DISP_SetDisplayConfig.
type SetConfigFlags uint32

const (
	SetConfigValidateOnly         SetConfigFlags = 1 << 0
	SetConfigSaveToPersistence    SetConfigFlags = 1 << 1
	SetConfigDriverReloadAllowed  SetConfigFlags = 1 << 2
	SetConfigForceModeEnumeration SetConfigFlags = 1 << 3
	SetConfigForceCommitVideoMode SetConfigFlags = 1 << 4
)

var (
	advancedTargetInfoLayout = marshal.MustLayout("NV_DISPLAYCONFIG_PATH_ADVANCED_TARGET_INFO_V1", 1,
		marshal.U32("rotation"),
		marshal.U32("scaling"),
		marshal.U32("refreshRate1K"),
		marshal.U32("flags"),
		marshal.U32("connector"),
		marshal.U32("tvFormat"),
		marshal.U32("timingOverride"),
	)
	sourceModeInfoLayout = marshal.MustLayout("NV_DISPLAYCONFIG_SOURCE_MODE_INFO_V1", 1,
		marshal.U32("width"),
		marshal.U32("height"),
		marshal.U32("colorDepth"),
		marshal.U32("colorFormat"),
		marshal.I32("positionX"),
		marshal.I32("positionY"),
		marshal.U32("spanningOrientation"),
		marshal.U32("flags"),
	)
	targetInfoV1Layout = marshal.MustLayout("NV_DISPLAYCONFIG_PATH_TARGET_INFO_V1", 1,
		marshal.U32("displayId"),
		marshal.Ptr("details"),
		marshal.U32("targetId"),
	)
	targetInfoV2Layout = marshal.MustLayout("NV_DISPLAYCONFIG_PATH_TARGET_INFO_V2", 2,
		append(targetInfoV1Layout.Fields()[1:], marshal.U32("windowsCCDTargetId"))...,
	)
	pathInfoV1Layout = marshal.MustLayout("NV_DISPLAYCONFIG_PATH_INFO_V1", 1,
		marshal.U32("sourceId"),
		marshal.U32("targetInfoCount"),
		marshal.Ptr("targetInfo"),
		marshal.Ptr("sourceModeInfo"),
	)
	pathInfoV2Layout = marshal.MustLayout("NV_DISPLAYCONFIG_PATH_INFO_V2", 2,
		append(pathInfoV1Layout.Fields()[1:],
			marshal.U32("flags"),
			marshal.U32("osAdapterLuidLow"),
			marshal.I32("osAdapterLuidHigh"),
		)...,
	)
)

// AdvancedTargetInfo carries the timing and orientation of one target.
type AdvancedTargetInfo struct {
	Rotation       uint32
	Scaling        uint32
	RefreshRate1K  uint32
	Flags          uint32
	Connector      uint32
	TVFormat       uint32
	TimingOverride uint32
}

func (a *AdvancedTargetInfo) Layout() *marshal.Layout { return advancedTargetInfoLayout }

func (a *AdvancedTargetInfo) MarshalNative(e *marshal.Encoder) error {
	e.U32("rotation", a.Rotation)
	e.U32("scaling", a.Scaling)
	e.U32("refreshRate1K", a.RefreshRate1K)
	e.U32("flags", a.Flags)
	e.U32("connector", a.Connector)
	e.U32("tvFormat", a.TVFormat)
	e.U32("timingOverride", a.TimingOverride)
	return e.Err()
}

func (a *AdvancedTargetInfo) UnmarshalNative(d *marshal.Decoder) error {
	a.Rotation = d.U32("rotation")
	a.Scaling = d.U32("scaling")
	a.RefreshRate1K = d.U32("refreshRate1K")
	a.Flags = d.U32("flags")
	a.Connector = d.U32("connector")
	a.TVFormat = d.U32("tvFormat")
	a.TimingOverride = d.U32("timingOverride")
	return d.Err()
}

// SourceModeInfo is the desktop mode of a path's source.
type SourceModeInfo struct {
	Width               uint32
	Height              uint32
	ColorDepth          uint32
	ColorFormat         uint32
	PositionX           int32
	PositionY           int32
	SpanningOrientation uint32
	Flags               uint32
}

// GDIPrimary reports whether the source is the primary desktop.
func (s *SourceModeInfo) GDIPrimary() bool { return s.Flags&1 != 0 }

func (s *SourceModeInfo) Layout() *marshal.Layout { return sourceModeInfoLayout }

func (s *SourceModeInfo) MarshalNative(e *marshal.Encoder) error {
	e.U32("width", s.Width)
	e.U32("height", s.Height)
	e.U32("colorDepth", s.ColorDepth)
	e.U32("colorFormat", s.ColorFormat)
	e.I32("positionX", s.PositionX)
	e.I32("positionY", s.PositionY)
	e.U32("spanningOrientation", s.SpanningOrientation)
	e.U32("flags", s.Flags)
	return e.Err()
}

func (s *SourceModeInfo) UnmarshalNative(d *marshal.Decoder) error {
	s.Width = d.U32("width")
	s.Height = d.U32("height")
	s.ColorDepth = d.U32("colorDepth")
	s.ColorFormat = d.U32("colorFormat")
	s.PositionX = d.I32("positionX")
	s.PositionY = d.I32("positionY")
	s.SpanningOrientation = d.U32("spanningOrientation")
	s.Flags = d.U32("flags")
	return d.Err()
}

func newAdvancedTargetInfo() *AdvancedTargetInfo { return &AdvancedTargetInfo{} }
func newSourceModeInfo() *SourceModeInfo { return &SourceModeInfo{} }

type TargetInfoV1 struct {
	Details   *AdvancedTargetInfo
	DisplayID DisplayID
	TargetID  uint32
}

func (t *TargetInfoV1) Layout() *marshal.Layout { return targetInfoV1Layout }

func (t *TargetInfoV1) MarshalNative(e *marshal.Encoder) error {
	e.U32("displayId", uint32(t.DisplayID))
	if t.Details != nil {
		marshal.EncodeChild(e, "details", t.Details)
	} else {
		e.Null("details")
	}
	e.U32("targetId", t.TargetID)
	return e.Err()
}

func (t *TargetInfoV1) UnmarshalNative(d *marshal.Decoder) error {
	t.DisplayID = DisplayID(d.U32("displayId"))
	if details, ok := marshal.DecodeChild(d, "details", newAdvancedTargetInfo); ok {
		t.Details = details
	}
	t.TargetID = d.U32("targetId")
	return d.Err()
}

type TargetInfoV2 struct {
	TargetInfoV1
	WindowsCCDTargetID uint32
}

func (t *TargetInfoV2) Layout() *marshal.Layout { return targetInfoV2Layout }

func (t *TargetInfoV2) MarshalNative(e *marshal.Encoder) error {
	_ = t.TargetInfoV1.MarshalNative(e)
	e.U32("windowsCCDTargetId", t.WindowsCCDTargetID)
	return e.Err()
}

func (t *TargetInfoV2) UnmarshalNative(d *marshal.Decoder) error {
	_ = t.TargetInfoV1.UnmarshalNative(d)
	t.WindowsCCDTargetID = d.U32("windowsCCDTargetId")
	return d.Err()
}

// PathSummary is the version independent view of a display path.
type PathSummary struct {
	SourceMode *SourceModeInfo
	Targets    []TargetInfoV1
	SourceID   uint32
}

// PathInfo is PathInfoV1 or PathInfoV2. Each path version carries target
// infos of the same version.
type PathInfo interface {
	marshal.Struct
	Summary() PathSummary
	// withChildren returns a copy with empty targets and a source mode
	// reserved for the driver to fill.
	withChildren() PathInfo
	blank() PathInfo
}

type PathInfoV1 struct {
	SourceMode  *SourceModeInfo
	Targets     []*TargetInfoV1
	SourceID    uint32
	TargetCount uint32
}

func (p *PathInfoV1) Layout() *marshal.Layout { return pathInfoV1Layout }
func (p *PathInfoV1) blank() PathInfo { return &PathInfoV1{} }

func (p *PathInfoV1) Summary() PathSummary {
	s := PathSummary{SourceID: p.SourceID, SourceMode: p.SourceMode}
	for _, t := range p.Targets {
		s.Targets = append(s.Targets, *t)
	}
	return s
}

func (p *PathInfoV1) withChildren() PathInfo {
	out := *p
	out.Targets = make([]*TargetInfoV1, p.TargetCount)
	for i := range out.Targets {
		out.Targets[i] = &TargetInfoV1{Details: &AdvancedTargetInfo{}}
	}
	out.SourceMode = &SourceModeInfo{}
	return &out
}

func (p *PathInfoV1) MarshalNative(e *marshal.Encoder) error {
	count := p.TargetCount
	if len(p.Targets) > 0 {
		count = uint32(len(p.Targets))
	}
	e.U32("sourceId", p.SourceID)
	e.U32("targetInfoCount", count)
	marshal.EncodeChildren(e, "targetInfo", p.Targets)
	encodeSourceMode(e, p.SourceMode)
	return e.Err()
}

func (p *PathInfoV1) UnmarshalNative(d *marshal.Decoder) error {
	p.SourceID = d.U32("sourceId")
	p.TargetCount = d.U32("targetInfoCount")
	p.Targets = marshal.DecodeChildren(d, "targetInfo", p.TargetCount, func() *TargetInfoV1 { return &TargetInfoV1{} })
	p.SourceMode = decodeSourceMode(d)
	return d.Err()
}

type PathInfoV2 struct {
	SourceMode        *SourceModeInfo
	Targets           []*TargetInfoV2
	SourceID          uint32
	TargetCount       uint32
	Flags             uint32
	OSAdapterLUIDLow  uint32
	OSAdapterLUIDHigh int32
}

// NonNVIDIAAdapter reports whether the path's source lives on another
// vendor's adapter.
func (p *PathInfoV2) NonNVIDIAAdapter() bool { return p.Flags&1 != 0 }

func (p *PathInfoV2) Layout() *marshal.Layout { return pathInfoV2Layout }
func (p *PathInfoV2) blank() PathInfo { return &PathInfoV2{} }

func (p *PathInfoV2) Summary() PathSummary {
	s := PathSummary{SourceID: p.SourceID, SourceMode: p.SourceMode}
	for _, t := range p.Targets {
		s.Targets = append(s.Targets, t.TargetInfoV1)
	}
	return s
}

func (p *PathInfoV2) withChildren() PathInfo {
	out := *p
	out.Targets = make([]*TargetInfoV2, p.TargetCount)
	for i := range out.Targets {
		out.Targets[i] = &TargetInfoV2{TargetInfoV1: TargetInfoV1{Details: &AdvancedTargetInfo{}}}
	}
	out.SourceMode = &SourceModeInfo{}
	return &out
}

func (p *PathInfoV2) MarshalNative(e *marshal.Encoder) error {
	count := p.TargetCount
	if len(p.Targets) > 0 {
		count = uint32(len(p.Targets))
	}
	e.U32("sourceId", p.SourceID)
	e.U32("targetInfoCount", count)
	marshal.EncodeChildren(e, "targetInfo", p.Targets)
	encodeSourceMode(e, p.SourceMode)
	e.U32("flags", p.Flags)
	e.U32("osAdapterLuidLow", p.OSAdapterLUIDLow)
	e.I32("osAdapterLuidHigh", p.OSAdapterLUIDHigh)
	return e.Err()
}

func (p *PathInfoV2) UnmarshalNative(d *marshal.Decoder) error {
	p.SourceID = d.U32("sourceId")
	p.TargetCount = d.U32("targetInfoCount")
	p.Targets = marshal.DecodeChildren(d, "targetInfo", p.TargetCount, func() *TargetInfoV2 { return &TargetInfoV2{} })
	p.SourceMode = decodeSourceMode(d)
	p.Flags = d.U32("flags")
	p.OSAdapterLUIDLow = d.U32("osAdapterLuidLow")
	p.OSAdapterLUIDHigh = d.I32("osAdapterLuidHigh")
	return d.Err()
}

func encodeSourceMode(e *marshal.Encoder, m *SourceModeInfo) {
	if m == nil {
		e.Null("sourceModeInfo")
		return
	}
	marshal.EncodeChild(e, "sourceModeInfo", m)
}

func decodeSourceMode(d *marshal.Decoder) *SourceModeInfo {
	m, ok := marshal.DecodeChild(d, "sourceModeInfo", newSourceModeInfo)
	if !ok {
		return nil
	}
	return m
}

var displayConfigCandidates = registry.MustCandidates[PathInfo](KindDisplayConfig,
	func() PathInfo { return &PathInfoV2{} },
	func() PathInfo { return &PathInfoV1{} },
)

// DisplayConfig returns every display path with its targets and source
// mode. The path array is fetched with count-then-fetch; a second call
// then fills the target and source mode arrays sized by the first. When
// the path count changes between the two calls the whole query runs once
// more.
func (c *Client) DisplayConfig() ([]PathInfo, error) {
	paths, err := c.displayConfig()
	if errors.IsKind(err, errors.KindCountChanged) {
		c.log.Debug("display paths changed, querying again", zap.Error(err))
		paths, err = c.displayConfig()
	}
	return paths, err
}

func (c *Client) displayConfig() ([]PathInfo, error) {
	set, err := registry.Set[PathInfo](c.reg, KindDisplayConfig)
	if err != nil {
		return nil, err
	}
	args := func(count, arr *marshal.Buffer) []native.Arg {
		return []native.Arg{native.Ptr(count), native.Ptr(arr)}
	}
	paths, err := dispatch.FetchAll(c.d, resolver.DISP_GetDisplayConfig, set, args)
	if err != nil || len(paths) == 0 {
		return paths, err
	}

	expanded := make([]PathInfo, len(paths))
	for i, p := range paths {
		expanded[i] = p.withChildren()
	}
	return dispatch.ExchangeCounted(c.d, resolver.DISP_GetDisplayConfig, expanded, paths[0].blank, args)
}

// SetDisplayConfig applies paths. All paths must be the same version.
func (c *Client) SetDisplayConfig(paths []PathInfo, flags SetConfigFlags) error {
	if len(paths) == 0 {
		return errors.InvalidInput(errors.PhaseValidate, "display config needs at least one path")
	}
	buf, err := marshal.EncodeArray(c.d.Allocator(), paths)
	if err != nil {
		return err
	}
	defer buf.Release()

	return c.d.Exec(resolver.DISP_SetDisplayConfig,
		native.U32(uint32(len(paths))), native.Ptr(buf), native.U32(uint32(flags)))
}
