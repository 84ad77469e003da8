package control

import (
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
)

// ScanoutParameter selects a scan-out composition parameter.
type ScanoutParameter uint32

const ScanoutWarpingResamplingMethod ScanoutParameter = 0

// ScanoutParameterValue is the value of a composition parameter.
type ScanoutParameterValue uint32

const (
	ScanoutValueDefault                ScanoutParameterValue = 0
	ScanoutResamplingBilinear          ScanoutParameterValue = 0x100
	ScanoutResamplingBicubicTriangular ScanoutParameterValue = 0x101
	ScanoutResamplingBicubicBellShaped ScanoutParameterValue = 0x102
	ScanoutResamplingBicubicBSpline    ScanoutParameterValue = 0x103
	ScanoutResamplingBicubicAdaptive   ScanoutParameterValue = 0x104
)

// Rect is a signed box in desktop or target coordinates.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

func rectFields(prefix string) []marshal.Field {
	return []marshal.Field{
		marshal.I32(prefix + "X"),
		marshal.I32(prefix + "Y"),
		marshal.I32(prefix + "Width"),
		marshal.I32(prefix + "Height"),
	}
}

func (r Rect) encode(e *marshal.Encoder, prefix string) {
	e.I32(prefix+"X", r.X)
	e.I32(prefix+"Y", r.Y)
	e.I32(prefix+"Width", r.Width)
	e.I32(prefix+"Height", r.Height)
}

func (r *Rect) decode(d *marshal.Decoder, prefix string) {
	r.X = d.I32(prefix + "X")
	r.Y = d.I32(prefix + "Y")
	r.Width = d.I32(prefix + "Width")
	r.Height = d.I32(prefix + "Height")
}

var (
	scanoutInformationLayout = marshal.MustLayout("NV_SCANOUT_INFORMATION_V1", 1,
		append(append(append(rectFields("sourceDesktopRect"),
			rectFields("sourceViewportRect")...),
			rectFields("targetViewportRect")...),
			marshal.U32("targetDisplayWidth"),
			marshal.U32("targetDisplayHeight"),
			marshal.U32("cloneImportance"),
			marshal.U32("sourceToTargetRotation"),
		)...,
	)
	scanoutIntensityStateLayout = marshal.MustLayout("NV_SCANOUT_INTENSITY_STATE_DATA_V1", 1,
		marshal.Bool32("enabled"),
	)
	scanoutWarpingStateLayout = marshal.MustLayout("NV_SCANOUT_WARPING_STATE_DATA_V1", 1,
		marshal.Bool32("enabled"),
	)
)

// ScanoutInformation describes how a display's source is scanned out.
type ScanoutInformation struct {
	SourceDesktop          Rect
	SourceViewport         Rect
	TargetViewport         Rect
	TargetDisplayWidth     uint32
	TargetDisplayHeight    uint32
	CloneImportance        uint32
	SourceToTargetRotation uint32
}

func (s *ScanoutInformation) Layout() *marshal.Layout { return scanoutInformationLayout }

func (s *ScanoutInformation) MarshalNative(e *marshal.Encoder) error {
	s.SourceDesktop.encode(e, "sourceDesktopRect")
	s.SourceViewport.encode(e, "sourceViewportRect")
	s.TargetViewport.encode(e, "targetViewportRect")
	e.U32("targetDisplayWidth", s.TargetDisplayWidth)
	e.U32("targetDisplayHeight", s.TargetDisplayHeight)
	e.U32("cloneImportance", s.CloneImportance)
	e.U32("sourceToTargetRotation", s.SourceToTargetRotation)
	return e.Err()
}

func (s *ScanoutInformation) UnmarshalNative(d *marshal.Decoder) error {
	s.SourceDesktop.decode(d, "sourceDesktopRect")
	s.SourceViewport.decode(d, "sourceViewportRect")
	s.TargetViewport.decode(d, "targetViewportRect")
	s.TargetDisplayWidth = d.U32("targetDisplayWidth")
	s.TargetDisplayHeight = d.U32("targetDisplayHeight")
	s.CloneImportance = d.U32("cloneImportance")
	s.SourceToTargetRotation = d.U32("sourceToTargetRotation")
	return d.Err()
}

// ScanoutIntensityState reports whether an intensity map is applied.
type ScanoutIntensityState struct {
	Enabled bool
}

func (s *ScanoutIntensityState) Layout() *marshal.Layout { return scanoutIntensityStateLayout }

func (s *ScanoutIntensityState) MarshalNative(e *marshal.Encoder) error {
	e.Bool32("enabled", s.Enabled)
	return e.Err()
}

func (s *ScanoutIntensityState) UnmarshalNative(d *marshal.Decoder) error {
	s.Enabled = d.Bool32("enabled")
	return d.Err()
}

// ScanoutWarpingState reports whether a warping mesh is applied.
type ScanoutWarpingState struct {
	Enabled bool
}

func (s *ScanoutWarpingState) Layout() *marshal.Layout { return scanoutWarpingStateLayout }

func (s *ScanoutWarpingState) MarshalNative(e *marshal.Encoder) error {
	e.Bool32("enabled", s.Enabled)
	return e.Err()
}

func (s *ScanoutWarpingState) UnmarshalNative(d *marshal.Decoder) error {
	s.Enabled = d.Bool32("enabled")
	return d.Err()
}

var (
	scanoutInformationCandidates = registry.MustCandidates(KindScanoutInformation,
		func() *ScanoutInformation { return &ScanoutInformation{} })
	scanoutIntensityCandidates = registry.MustCandidates(KindScanoutIntensity,
		func() *ScanoutIntensityState { return &ScanoutIntensityState{} })
	scanoutWarpingCandidates = registry.MustCandidates(KindScanoutWarping,
		func() *ScanoutWarpingState { return &ScanoutWarpingState{} })
)

func displayIDArgs(display DisplayID) func(*marshal.Buffer) []native.Arg {
	return func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.U32(uint32(display)), native.Ptr(buf)}
	}
}

// ScanoutConfiguration returns the scan-out geometry of a display.
func (c *Client) ScanoutConfiguration(display DisplayID) (*ScanoutInformation, error) {
	set, err := registry.Set[*ScanoutInformation](c.reg, KindScanoutInformation)
	if err != nil {
		return nil, err
	}
	return dispatch.Negotiate(c.d, resolver.GPU_GetScanoutConfigurationEx, set, nil, displayIDArgs(display))
}

func (c *Client) ScanoutIntensityState(display DisplayID) (*ScanoutIntensityState, error) {
	set, err := registry.Set[*ScanoutIntensityState](c.reg, KindScanoutIntensity)
	if err != nil {
		return nil, err
	}
	return dispatch.Negotiate(c.d, resolver.GPU_GetScanoutIntensityState, set, nil, displayIDArgs(display))
}

func (c *Client) ScanoutWarpingState(display DisplayID) (*ScanoutWarpingState, error) {
	set, err := registry.Set[*ScanoutWarpingState](c.reg, KindScanoutWarping)
	if err != nil {
		return nil, err
	}
	return dispatch.Negotiate(c.d, resolver.GPU_GetScanoutWarpingState, set, nil, displayIDArgs(display))
}

// ScanoutCompositionParameter reads a composition parameter and its
// container value.
func (c *Client) ScanoutCompositionParameter(display DisplayID, param ScanoutParameter) (ScanoutParameterValue, float32, error) {
	alloc := c.d.Allocator()
	value, err := marshal.NewU32(alloc, 0)
	if err != nil {
		return 0, 0, err
	}
	defer value.Release()
	container, err := marshal.NewF32(alloc, 0)
	if err != nil {
		return 0, 0, err
	}
	defer container.Release()

	err = c.d.Exec(resolver.GPU_GetScanoutCompositionParameter,
		native.U32(uint32(display)), native.U32(uint32(param)), native.Ptr(value), native.Ptr(container))
	if err != nil {
		return 0, 0, err
	}
	v, err := value.U32()
	if err != nil {
		return 0, 0, err
	}
	f, err := container.F32()
	if err != nil {
		return 0, 0, err
	}
	return ScanoutParameterValue(v), f, nil
}

// SetScanoutCompositionParameter sets a composition parameter. The value
// is passed by value and the container by address.
func (c *Client) SetScanoutCompositionParameter(display DisplayID, param ScanoutParameter, value ScanoutParameterValue, container float32) error {
	buf, err := marshal.NewF32(c.d.Allocator(), container)
	if err != nil {
		return err
	}
	defer buf.Release()

	return c.d.Exec(resolver.GPU_SetScanoutCompositionParameter,
		native.U32(uint32(display)), native.U32(uint32(param)), native.U32(uint32(value)), native.Ptr(buf))
}
