package control

import (
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
)

// HDRCommand selects what Disp_HdrColorControl does with the struct.
type HDRCommand uint32

const (
	HDRCmdGet HDRCommand = iota
	HDRCmdSet
)

// HDRMode is the output HDR mode.
type HDRMode uint32

const (
	HDRModeOff             HDRMode = 0
	HDRModeUHDA            HDRMode = 2
	HDRModeEDR             HDRMode = 3
	HDRModeSDR             HDRMode = 4
	HDRModeUHDAPassthrough HDRMode = 5
	HDRModeUHDANB          HDRMode = 6
	HDRModeDolbyVision     HDRMode = 7
)

// MasteringDisplayData is the static HDR metadata of the mastering display.
// Chromaticity coordinates are in units of 0.00002, luminance in cd/m².
type MasteringDisplayData struct {
	DisplayPrimaryX0             uint16
	DisplayPrimaryY0             uint16
	DisplayPrimaryX1             uint16
	DisplayPrimaryY1             uint16
	DisplayPrimaryX2             uint16
	DisplayPrimaryY2             uint16
	DisplayWhitePointX           uint16
	DisplayWhitePointY           uint16
	MaxDisplayMasteringLuminance uint16
	MinDisplayMasteringLuminance uint16
	MaxContentLightLevel         uint16
	MaxFrameAverageLightLevel    uint16
}

func masteringFields() []marshal.Field {
	return []marshal.Field{
		marshal.U16("displayPrimaryX0"),
		marshal.U16("displayPrimaryY0"),
		marshal.U16("displayPrimaryX1"),
		marshal.U16("displayPrimaryY1"),
		marshal.U16("displayPrimaryX2"),
		marshal.U16("displayPrimaryY2"),
		marshal.U16("displayWhitePointX"),
		marshal.U16("displayWhitePointY"),
		marshal.U16("maxDisplayMasteringLuminance"),
		marshal.U16("minDisplayMasteringLuminance"),
		marshal.U16("maxContentLightLevel"),
		marshal.U16("maxFrameAverageLightLevel"),
	}
}

func (m *MasteringDisplayData) encode(e *marshal.Encoder) {
	e.U16("displayPrimaryX0", m.DisplayPrimaryX0)
	e.U16("displayPrimaryY0", m.DisplayPrimaryY0)
	e.U16("displayPrimaryX1", m.DisplayPrimaryX1)
	e.U16("displayPrimaryY1", m.DisplayPrimaryY1)
	e.U16("displayPrimaryX2", m.DisplayPrimaryX2)
	e.U16("displayPrimaryY2", m.DisplayPrimaryY2)
	e.U16("displayWhitePointX", m.DisplayWhitePointX)
	e.U16("displayWhitePointY", m.DisplayWhitePointY)
	e.U16("maxDisplayMasteringLuminance", m.MaxDisplayMasteringLuminance)
	e.U16("minDisplayMasteringLuminance", m.MinDisplayMasteringLuminance)
	e.U16("maxContentLightLevel", m.MaxContentLightLevel)
	e.U16("maxFrameAverageLightLevel", m.MaxFrameAverageLightLevel)
}

func (m *MasteringDisplayData) decode(d *marshal.Decoder) {
	m.DisplayPrimaryX0 = d.U16("displayPrimaryX0")
	m.DisplayPrimaryY0 = d.U16("displayPrimaryY0")
	m.DisplayPrimaryX1 = d.U16("displayPrimaryX1")
	m.DisplayPrimaryY1 = d.U16("displayPrimaryY1")
	m.DisplayPrimaryX2 = d.U16("displayPrimaryX2")
	m.DisplayPrimaryY2 = d.U16("displayPrimaryY2")
	m.DisplayWhitePointX = d.U16("displayWhitePointX")
	m.DisplayWhitePointY = d.U16("displayWhitePointY")
	m.MaxDisplayMasteringLuminance = d.U16("maxDisplayMasteringLuminance")
	m.MinDisplayMasteringLuminance = d.U16("minDisplayMasteringLuminance")
	m.MaxContentLightLevel = d.U16("maxContentLightLevel")
	m.MaxFrameAverageLightLevel = d.U16("maxFrameAverageLightLevel")
}

// HDRSettings is the version independent view of a display's HDR state.
type HDRSettings struct {
	Mastering                  MasteringDisplayData
	Mode                       HDRMode
	StaticMetadataDescriptorID uint32
	ColorFormat                uint32
	DynamicRange               uint32
	BPC                        uint32
}

var (
	hdrColorDataV1Layout = marshal.MustLayout("NV_HDR_COLOR_DATA_V1", 1,
		append([]marshal.Field{
			marshal.U32("cmd"),
			marshal.U32("hdrMode"),
			marshal.U32("staticMetadataDescriptorId"),
		}, masteringFields()...)...,
	)
	hdrColorDataV2Layout = marshal.MustLayout("NV_HDR_COLOR_DATA_V2", 2,
		append(hdrColorDataV1Layout.Fields()[1:],
			marshal.U32("hdrColorFormat"),
			marshal.U32("hdrDynamicRange"),
			marshal.U32("hdrBpc"),
		)...,
	)
)

// HDRColorData is HDRColorDataV1 or HDRColorDataV2.
type HDRColorData interface {
	marshal.Struct
	Settings() HDRSettings
	command() *HDRCommand
	apply(s HDRSettings)
}

type HDRColorDataV1 struct {
	Mastering                  MasteringDisplayData
	Cmd                        HDRCommand
	Mode                       HDRMode
	StaticMetadataDescriptorID uint32
}

func (h *HDRColorDataV1) Layout() *marshal.Layout { return hdrColorDataV1Layout }
func (h *HDRColorDataV1) command() *HDRCommand { return &h.Cmd }

func (h *HDRColorDataV1) Settings() HDRSettings {
	return HDRSettings{Mode: h.Mode, StaticMetadataDescriptorID: h.StaticMetadataDescriptorID, Mastering: h.Mastering}
}

func (h *HDRColorDataV1) apply(s HDRSettings) {
	h.Mode = s.Mode
	h.StaticMetadataDescriptorID = s.StaticMetadataDescriptorID
	h.Mastering = s.Mastering
}

func (h *HDRColorDataV1) MarshalNative(e *marshal.Encoder) error {
	e.U32("cmd", uint32(h.Cmd))
	e.U32("hdrMode", uint32(h.Mode))
	e.U32("staticMetadataDescriptorId", h.StaticMetadataDescriptorID)
	h.Mastering.encode(e)
	return e.Err()
}

func (h *HDRColorDataV1) UnmarshalNative(d *marshal.Decoder) error {
	h.Cmd = HDRCommand(d.U32("cmd"))
	h.Mode = HDRMode(d.U32("hdrMode"))
	h.StaticMetadataDescriptorID = d.U32("staticMetadataDescriptorId")
	h.Mastering.decode(d)
	return d.Err()
}

type HDRColorDataV2 struct {
	HDRColorDataV1
	ColorFormat  uint32
	DynamicRange uint32
	BPC          uint32
}

func (h *HDRColorDataV2) Layout() *marshal.Layout { return hdrColorDataV2Layout }

func (h *HDRColorDataV2) Settings() HDRSettings {
	s := h.HDRColorDataV1.Settings()
	s.ColorFormat, s.DynamicRange, s.BPC = h.ColorFormat, h.DynamicRange, h.BPC
	return s
}

func (h *HDRColorDataV2) apply(s HDRSettings) {
	h.HDRColorDataV1.apply(s)
	h.ColorFormat, h.DynamicRange, h.BPC = s.ColorFormat, s.DynamicRange, s.BPC
}

func (h *HDRColorDataV2) MarshalNative(e *marshal.Encoder) error {
	_ = h.HDRColorDataV1.MarshalNative(e)
	e.U32("hdrColorFormat", h.ColorFormat)
	e.U32("hdrDynamicRange", h.DynamicRange)
	e.U32("hdrBpc", h.BPC)
	return e.Err()
}

func (h *HDRColorDataV2) UnmarshalNative(d *marshal.Decoder) error {
	_ = h.HDRColorDataV1.UnmarshalNative(d)
	h.ColorFormat = d.U32("hdrColorFormat")
	h.DynamicRange = d.U32("hdrDynamicRange")
	h.BPC = d.U32("hdrBpc")
	return d.Err()
}

var hdrColorDataCandidates = registry.MustCandidates[HDRColorData](KindHDRColorData,
	func() HDRColorData { return &HDRColorDataV2{} },
	func() HDRColorData { return &HDRColorDataV1{} },
)

var (
	hdrCapabilitiesV1Layout = marshal.MustLayout("NV_HDR_CAPABILITIES_V1", 1,
		append([]marshal.Field{
			marshal.Bool32("isST2084EotfSupported"),
			marshal.Bool32("isTraditionalHdrGammaSupported"),
			marshal.Bool32("isEdrSupported"),
			marshal.Bool32("driverExpandDefaultHdrParameters"),
			marshal.Bool32("isTraditionalSdrGammaSupported"),
			marshal.U32("staticMetadataDescriptorId"),
		}, masteringFields()...)...,
	)
	hdrCapabilitiesV2Layout = marshal.MustLayout("NV_HDR_CAPABILITIES_V2", 2,
		append(hdrCapabilitiesV1Layout.Fields()[1:],
			marshal.Bool32("isDolbyVisionSupported"),
			marshal.U32("dolbyVisionVersion"),
			marshal.Bool32("dolbyVisionSupportsBacklightControl"),
		)...,
	)
)

// HDRCapabilities is HDRCapabilitiesV1 or HDRCapabilitiesV2.
type HDRCapabilities interface {
	marshal.Struct
	Basic() *HDRCapabilitiesV1
}

type HDRCapabilitiesV1 struct {
	Display                    MasteringDisplayData
	StaticMetadataDescriptorID uint32
	ST2084EOTF                 bool
	TraditionalHDRGamma        bool
	EDR                        bool
	ExpandDefaultHDRParameters bool
	TraditionalSDRGamma        bool
}

func (h *HDRCapabilitiesV1) Layout() *marshal.Layout { return hdrCapabilitiesV1Layout }
func (h *HDRCapabilitiesV1) Basic() *HDRCapabilitiesV1 { return h }

func (h *HDRCapabilitiesV1) MarshalNative(e *marshal.Encoder) error {
	e.Bool32("isST2084EotfSupported", h.ST2084EOTF)
	e.Bool32("isTraditionalHdrGammaSupported", h.TraditionalHDRGamma)
	e.Bool32("isEdrSupported", h.EDR)
	e.Bool32("driverExpandDefaultHdrParameters", h.ExpandDefaultHDRParameters)
	e.Bool32("isTraditionalSdrGammaSupported", h.TraditionalSDRGamma)
	e.U32("staticMetadataDescriptorId", h.StaticMetadataDescriptorID)
	h.Display.encode(e)
	return e.Err()
}

func (h *HDRCapabilitiesV1) UnmarshalNative(d *marshal.Decoder) error {
	h.ST2084EOTF = d.Bool32("isST2084EotfSupported")
	h.TraditionalHDRGamma = d.Bool32("isTraditionalHdrGammaSupported")
	h.EDR = d.Bool32("isEdrSupported")
	h.ExpandDefaultHDRParameters = d.Bool32("driverExpandDefaultHdrParameters")
	h.TraditionalSDRGamma = d.Bool32("isTraditionalSdrGammaSupported")
	h.StaticMetadataDescriptorID = d.U32("staticMetadataDescriptorId")
	h.Display.decode(d)
	return d.Err()
}

type HDRCapabilitiesV2 struct {
	HDRCapabilitiesV1
	DolbyVisionVersion          uint32
	DolbyVision                 bool
	DolbyVisionBacklightControl bool
}

func (h *HDRCapabilitiesV2) Layout() *marshal.Layout { return hdrCapabilitiesV2Layout }

func (h *HDRCapabilitiesV2) MarshalNative(e *marshal.Encoder) error {
	_ = h.HDRCapabilitiesV1.MarshalNative(e)
	e.Bool32("isDolbyVisionSupported", h.DolbyVision)
	e.U32("dolbyVisionVersion", h.DolbyVisionVersion)
	e.Bool32("dolbyVisionSupportsBacklightControl", h.DolbyVisionBacklightControl)
	return e.Err()
}

func (h *HDRCapabilitiesV2) UnmarshalNative(d *marshal.Decoder) error {
	_ = h.HDRCapabilitiesV1.UnmarshalNative(d)
	h.DolbyVision = d.Bool32("isDolbyVisionSupported")
	h.DolbyVisionVersion = d.U32("dolbyVisionVersion")
	h.DolbyVisionBacklightControl = d.Bool32("dolbyVisionSupportsBacklightControl")
	return d.Err()
}

var hdrCapabilitiesCandidates = registry.MustCandidates[HDRCapabilities](KindHDRCapabilities,
	func() HDRCapabilities { return &HDRCapabilitiesV2{} },
	func() HDRCapabilities { return &HDRCapabilitiesV1{} },
)

func (c *Client) hdrControl(display DisplayID, cmd HDRCommand, s *HDRSettings) (HDRColorData, error) {
	set, err := registry.Set[HDRColorData](c.reg, KindHDRColorData)
	if err != nil {
		return nil, err
	}
	prepare := func(v HDRColorData) error {
		*v.command() = cmd
		if s != nil {
			v.apply(*s)
		}
		return nil
	}
	return dispatch.Negotiate(c.d, resolver.Disp_HdrColorControl, set, prepare, func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.U32(uint32(display)), native.Ptr(buf)}
	})
}

// HDRColorData returns the current HDR state of a display.
func (c *Client) HDRColorData(display DisplayID) (HDRColorData, error) {
	return c.hdrControl(display, HDRCmdGet, nil)
}

// SetHDRColorData applies s to a display.
func (c *Client) SetHDRColorData(display DisplayID, s HDRSettings) error {
	_, err := c.hdrControl(display, HDRCmdSet, &s)
	return err
}

// HDRCapabilities reports what HDR features a display supports. With
// expandDefaults set the driver fills in default mastering data when the
// display reports none.
func (c *Client) HDRCapabilities(display DisplayID, expandDefaults bool) (HDRCapabilities, error) {
	set, err := registry.Set[HDRCapabilities](c.reg, KindHDRCapabilities)
	if err != nil {
		return nil, err
	}
	prepare := func(v HDRCapabilities) error {
		v.Basic().ExpandDefaultHDRParameters = expandDefaults
		return nil
	}
	return dispatch.Negotiate(c.d, resolver.Disp_GetHdrCapabilities, set, prepare, func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.U32(uint32(display)), native.Ptr(buf)}
	})
}
