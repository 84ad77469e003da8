package control

import (
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// ColorCommand selects what Disp_ColorControl does with the struct.
type ColorCommand uint8

const (
	ColorCmdGet ColorCommand = iota + 1
	ColorCmdSet
	ColorCmdIsSupported
	ColorCmdGetDefault
)

// ColorSettings is the version independent view of a display's color
// pipeline. Fields a version lacks are left zero.
type ColorSettings struct {
	Format          uint8
	Colorimetry     uint8
	DynamicRange    uint8
	BPC             uint32
	SelectionPolicy uint32
	Depth           uint32
}

var (
	colorDataV1Layout = marshal.MustLayout("NV_COLOR_DATA_V1", 1,
		marshal.U16("size"),
		marshal.U8("cmd"),
		marshal.U8("colorFormat"),
		marshal.U8("colorimetry"),
	)
	colorDataV2Layout = marshal.MustLayout("NV_COLOR_DATA_V2", 2,
		append(colorDataV1Layout.Fields()[1:], marshal.U8("dynamicRange"))...,
	)
	colorDataV3Layout = marshal.MustLayout("NV_COLOR_DATA_V3", 3,
		append(colorDataV2Layout.Fields()[1:], marshal.U32("bpc"))...,
	)
	colorDataV4Layout = marshal.MustLayout("NV_COLOR_DATA_V4", 4,
		append(colorDataV3Layout.Fields()[1:], marshal.U32("colorSelectionPolicy"))...,
	)
	colorDataV5Layout = marshal.MustLayout("NV_COLOR_DATA_V5", 5,
		append(colorDataV4Layout.Fields()[1:], marshal.U32("depth"))...,
	)
)

// ColorData is one of ColorDataV1 to ColorDataV5.
type ColorData interface {
	marshal.Struct
	Settings() ColorSettings
	command() *ColorCommand
	apply(s ColorSettings)
}

type ColorDataV1 struct {
	Cmd         ColorCommand
	Format      uint8
	Colorimetry uint8
}

func (c *ColorDataV1) Layout() *marshal.Layout { return colorDataV1Layout }
func (c *ColorDataV1) command() *ColorCommand { return &c.Cmd }

func (c *ColorDataV1) Settings() ColorSettings {
	return ColorSettings{Format: c.Format, Colorimetry: c.Colorimetry}
}

func (c *ColorDataV1) apply(s ColorSettings) {
	c.Format, c.Colorimetry = s.Format, s.Colorimetry
}

func (c *ColorDataV1) MarshalNative(e *marshal.Encoder) error {
	e.U16("size", uint16(e.Layout().Size))
	e.U8("cmd", uint8(c.Cmd))
	e.U8("colorFormat", c.Format)
	e.U8("colorimetry", c.Colorimetry)
	return e.Err()
}

func (c *ColorDataV1) UnmarshalNative(d *marshal.Decoder) error {
	c.Cmd = ColorCommand(d.U8("cmd"))
	c.Format = d.U8("colorFormat")
	c.Colorimetry = d.U8("colorimetry")
	return d.Err()
}

type ColorDataV2 struct {
	ColorDataV1
	DynamicRange uint8
}

func (c *ColorDataV2) Layout() *marshal.Layout { return colorDataV2Layout }

func (c *ColorDataV2) Settings() ColorSettings {
	s := c.ColorDataV1.Settings()
	s.DynamicRange = c.DynamicRange
	return s
}

func (c *ColorDataV2) apply(s ColorSettings) {
	c.ColorDataV1.apply(s)
	c.DynamicRange = s.DynamicRange
}

func (c *ColorDataV2) MarshalNative(e *marshal.Encoder) error {
	_ = c.ColorDataV1.MarshalNative(e)
	e.U8("dynamicRange", c.DynamicRange)
	return e.Err()
}

func (c *ColorDataV2) UnmarshalNative(d *marshal.Decoder) error {
	_ = c.ColorDataV1.UnmarshalNative(d)
	c.DynamicRange = d.U8("dynamicRange")
	return d.Err()
}

type ColorDataV3 struct {
	ColorDataV2
	BPC uint32
}

func (c *ColorDataV3) Layout() *marshal.Layout { return colorDataV3Layout }

func (c *ColorDataV3) Settings() ColorSettings {
	s := c.ColorDataV2.Settings()
	s.BPC = c.BPC
	return s
}

func (c *ColorDataV3) apply(s ColorSettings) {
	c.ColorDataV2.apply(s)
	c.BPC = s.BPC
}

func (c *ColorDataV3) MarshalNative(e *marshal.Encoder) error {
	_ = c.ColorDataV2.MarshalNative(e)
	e.U32("bpc", c.BPC)
	return e.Err()
}

func (c *ColorDataV3) UnmarshalNative(d *marshal.Decoder) error {
	_ = c.ColorDataV2.UnmarshalNative(d)
	c.BPC = d.U32("bpc")
	return d.Err()
}

type ColorDataV4 struct {
	ColorDataV3
	SelectionPolicy uint32
}

func (c *ColorDataV4) Layout() *marshal.Layout { return colorDataV4Layout }

func (c *ColorDataV4) Settings() ColorSettings {
	s := c.ColorDataV3.Settings()
	s.SelectionPolicy = c.SelectionPolicy
	return s
}

func (c *ColorDataV4) apply(s ColorSettings) {
	c.ColorDataV3.apply(s)
	c.SelectionPolicy = s.SelectionPolicy
}

func (c *ColorDataV4) MarshalNative(e *marshal.Encoder) error {
	_ = c.ColorDataV3.MarshalNative(e)
	e.U32("colorSelectionPolicy", c.SelectionPolicy)
	return e.Err()
}

func (c *ColorDataV4) UnmarshalNative(d *marshal.Decoder) error {
	_ = c.ColorDataV3.UnmarshalNative(d)
	c.SelectionPolicy = d.U32("colorSelectionPolicy")
	return d.Err()
}

type ColorDataV5 struct {
	ColorDataV4
	Depth uint32
}

func (c *ColorDataV5) Layout() *marshal.Layout { return colorDataV5Layout }

func (c *ColorDataV5) Settings() ColorSettings {
	s := c.ColorDataV4.Settings()
	s.Depth = c.Depth
	return s
}

func (c *ColorDataV5) apply(s ColorSettings) {
	c.ColorDataV4.apply(s)
	c.Depth = s.Depth
}

func (c *ColorDataV5) MarshalNative(e *marshal.Encoder) error {
	_ = c.ColorDataV4.MarshalNative(e)
	e.U32("depth", c.Depth)
	return e.Err()
}

func (c *ColorDataV5) UnmarshalNative(d *marshal.Decoder) error {
	_ = c.ColorDataV4.UnmarshalNative(d)
	c.Depth = d.U32("depth")
	return d.Err()
}

var colorDataCandidates = registry.MustCandidates[ColorData](KindColorData,
	func() ColorData { return &ColorDataV5{} },
	func() ColorData { return &ColorDataV4{} },
	func() ColorData { return &ColorDataV3{} },
	func() ColorData { return &ColorDataV2{} },
	func() ColorData { return &ColorDataV1{} },
)

func (c *Client) colorControl(display DisplayID, cmd ColorCommand, s *ColorSettings) (ColorData, error) {
	set, err := registry.Set[ColorData](c.reg, KindColorData)
	if err != nil {
		return nil, err
	}
	prepare := func(v ColorData) error {
		*v.command() = cmd
		if s != nil {
			v.apply(*s)
		}
		return nil
	}
	return dispatch.Negotiate(c.d, resolver.Disp_ColorControl, set, prepare, func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.U32(uint32(display)), native.Ptr(buf)}
	})
}

// ColorData returns the current color settings of a display using the
// newest struct version the driver accepts.
func (c *Client) ColorData(display DisplayID) (ColorData, error) {
	return c.colorControl(display, ColorCmdGet, nil)
}

// DefaultColorData returns the driver's default color settings.
func (c *Client) DefaultColorData(display DisplayID) (ColorData, error) {
	return c.colorControl(display, ColorCmdGetDefault, nil)
}

// IsColorSupported asks whether the driver can apply s to the display.
// NotSupported and InvalidCombination answer false; any other failure is
// returned as an error.
func (c *Client) IsColorSupported(display DisplayID, s ColorSettings) (bool, error) {
	_, err := c.colorControl(display, ColorCmdIsSupported, &s)
	if err == nil {
		return true, nil
	}
	if code, ok := errors.StatusOf(err); ok {
		switch status.Code(code) {
		case status.NotSupported, status.InvalidCombination:
			return false, nil
		}
	}
	return false, err
}

// SetColorData applies s to the display. Settings a negotiated version
// cannot carry are dropped by that version.
func (c *Client) SetColorData(display DisplayID, s ColorSettings) error {
	_, err := c.colorControl(display, ColorCmdSet, &s)
	return err
}
