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

var (
	dvcInfoLayout = marshal.MustLayout("NV_DISPLAY_DVC_INFO", 1,
		marshal.U32("currentLevel"),
		marshal.U32("minLevel"),
		marshal.U32("maxLevel"),
	)
	dvcInfoExLayout = marshal.MustLayout("NV_DISPLAY_DVC_INFO_EX", 1,
		marshal.I32("currentLevel"),
		marshal.I32("minLevel"),
		marshal.I32("maxLevel"),
		marshal.I32("defaultLevel"),
	)
)

// DVC is the digital vibrance state of a display output. Extended reports
// whether the signed Ex interface produced it; the legacy interface has no
// default level.
type DVC struct {
	Current  int32
	Min      int32
	Max      int32
	Default  int32
	Extended bool
}

// DVCInfo is the legacy unsigned vibrance struct.
type DVCInfo struct {
	CurrentLevel uint32
	MinLevel     uint32
	MaxLevel     uint32
}

func (v *DVCInfo) Layout() *marshal.Layout { return dvcInfoLayout }

func (v *DVCInfo) MarshalNative(e *marshal.Encoder) error {
	e.U32("currentLevel", v.CurrentLevel)
	e.U32("minLevel", v.MinLevel)
	e.U32("maxLevel", v.MaxLevel)
	return e.Err()
}

func (v *DVCInfo) UnmarshalNative(d *marshal.Decoder) error {
	v.CurrentLevel = d.U32("currentLevel")
	v.MinLevel = d.U32("minLevel")
	v.MaxLevel = d.U32("maxLevel")
	return d.Err()
}

// DVCInfoEx is the signed vibrance struct with a default level.
type DVCInfoEx struct {
	CurrentLevel int32
	MinLevel     int32
	MaxLevel     int32
	DefaultLevel int32
}

func (v *DVCInfoEx) Layout() *marshal.Layout { return dvcInfoExLayout }

func (v *DVCInfoEx) MarshalNative(e *marshal.Encoder) error {
	e.I32("currentLevel", v.CurrentLevel)
	e.I32("minLevel", v.MinLevel)
	e.I32("maxLevel", v.MaxLevel)
	e.I32("defaultLevel", v.DefaultLevel)
	return e.Err()
}

func (v *DVCInfoEx) UnmarshalNative(d *marshal.Decoder) error {
	v.CurrentLevel = d.I32("currentLevel")
	v.MinLevel = d.I32("minLevel")
	v.MaxLevel = d.I32("maxLevel")
	v.DefaultLevel = d.I32("defaultLevel")
	return d.Err()
}

var (
	dvcInfoCandidates   = registry.MustCandidates(KindDVCInfo, func() *DVCInfo { return &DVCInfo{} })
	dvcInfoExCandidates = registry.MustCandidates(KindDVCInfoEx, func() *DVCInfoEx { return &DVCInfoEx{} })
)

func dvcArgs(display DisplayHandle, output OutputID) func(*marshal.Buffer) []native.Arg {
	return func(buf *marshal.Buffer) []native.Arg {
		return []native.Arg{native.Word(uintptr(display)), native.U32(uint32(output)), native.Ptr(buf)}
	}
}

// DVCInfo reads the vibrance state of a display output. It prefers the
// signed Ex interface and falls back to the legacy one on drivers that do
// not export it.
func (c *Client) DVCInfo(display DisplayHandle, output OutputID) (DVC, error) {
	ex, err := c.dvcInfoEx(display, output)
	if err == nil {
		return DVC{
			Current:  ex.CurrentLevel,
			Min:      ex.MinLevel,
			Max:      ex.MaxLevel,
			Default:  ex.DefaultLevel,
			Extended: true,
		}, nil
	}
	if !errors.IsKind(err, errors.KindEntryPointNotFound) {
		return DVC{}, err
	}
	c.log.Debug("falling back to legacy vibrance interface", zap.Stringer("display", display))

	set, err := registry.Set[*DVCInfo](c.reg, KindDVCInfo)
	if err != nil {
		return DVC{}, err
	}
	legacy, err := dispatch.Negotiate(c.d, resolver.GetDVCInfo, set, nil, dvcArgs(display, output))
	if err != nil {
		return DVC{}, err
	}
	return DVC{
		Current: int32(legacy.CurrentLevel),
		Min:     int32(legacy.MinLevel),
		Max:     int32(legacy.MaxLevel),
	}, nil
}

func (c *Client) dvcInfoEx(display DisplayHandle, output OutputID) (*DVCInfoEx, error) {
	set, err := registry.Set[*DVCInfoEx](c.reg, KindDVCInfoEx)
	if err != nil {
		return nil, err
	}
	return dispatch.Negotiate(c.d, resolver.GetDVCInfoEx, set, nil, dvcArgs(display, output))
}

// SetDVCLevel sets the vibrance level of a display output, through the Ex
// interface when the driver has it.
func (c *Client) SetDVCLevel(display DisplayHandle, output OutputID, level int32) error {
	set, err := registry.Set[*DVCInfoEx](c.reg, KindDVCInfoEx)
	if err != nil {
		return err
	}
	_, err = dispatch.Negotiate(c.d, resolver.SetDVCLevelEx, set, func(v *DVCInfoEx) error {
		v.CurrentLevel = level
		return nil
	}, dvcArgs(display, output))
	if err == nil || !errors.IsKind(err, errors.KindEntryPointNotFound) {
		return err
	}

	if level < 0 {
		return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Function(resolver.SetDVCLevel.String()).Value(level).
			Detail("legacy vibrance interface takes unsigned levels").Build()
	}
	c.log.Debug("falling back to legacy vibrance interface", zap.Stringer("display", display))
	return c.d.Exec(resolver.SetDVCLevel,
		native.Word(uintptr(display)), native.U32(uint32(output)), native.U32(uint32(level)))
}
