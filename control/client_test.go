package control

import (
	"testing"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native/nativetest"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// newClient returns a client over drv and fails the test if any buffer is
// still allocated when it ends.
func newClient(t *testing.T, drv *nativetest.Driver) *Client {
	t.Helper()
	alloc := marshal.NewTrackingAllocator(nil)
	c, err := New(drv, WithAllocator(alloc))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if n := alloc.Live(); n != 0 {
			t.Errorf("%d blocks still allocated", n)
		}
	})
	return c
}

// reply accepts only struct version v in argument arg and writes out into
// it.
func reply(arg int, v uint16, out marshal.Struct) nativetest.Handler {
	return func(c *nativetest.Call) status.Code {
		if c.Version(arg) != v {
			return status.IncompatibleStructVersion
		}
		if err := marshal.EncodeInto(c.Buffer(arg), 0, out); err != nil {
			return status.Error
		}
		return status.OK
	}
}

func TestInitializeUnload(t *testing.T) {
	drv := nativetest.New().
		Status(resolver.Initialize, status.OK).
		Status(resolver.Unload, status.APINotInitialized)
	c := newClient(t, drv)

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	err := c.Unload()
	if code, ok := errors.StatusOf(err); !ok || code != int32(status.APINotInitialized) {
		t.Errorf("Unload err = %v", err)
	}
}

func TestShortStrings(t *testing.T) {
	drv := nativetest.New().
		Handle(resolver.GetInterfaceVersionString, func(c *nativetest.Call) status.Code {
			if err := c.Buffer(0).SetCString("NVidia Complete Version 1.10"); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.GetErrorMessage, func(c *nativetest.Call) status.Code {
			if int32(c.Word(0)) != int32(status.NotSupported) {
				return status.InvalidArgument
			}
			if err := c.Buffer(1).SetCString("NVAPI_NOT_SUPPORTED"); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.GetAssociatedNvidiaDisplayName, func(c *nativetest.Call) status.Code {
			if c.Word(0) != 0x1234 {
				return status.ExpectedDisplayHandle
			}
			if err := c.Buffer(1).SetCString(`\\.\DISPLAY1`); err != nil {
				return status.Error
			}
			return status.OK
		})
	c := newClient(t, drv)

	v, err := c.InterfaceVersion()
	if err != nil || v != "NVidia Complete Version 1.10" {
		t.Errorf("InterfaceVersion = %q, %v", v, err)
	}
	msg, err := c.ErrorMessage(status.NotSupported)
	if err != nil || msg != "NVAPI_NOT_SUPPORTED" {
		t.Errorf("ErrorMessage = %q, %v", msg, err)
	}
	name, err := c.DisplayName(0x1234)
	if err != nil || name != `\\.\DISPLAY1` {
		t.Errorf("DisplayName = %q, %v", name, err)
	}
}

func TestEnumDisplayHandles(t *testing.T) {
	drv := nativetest.New().Handle(resolver.EnumNvidiaDisplayHandle, func(c *nativetest.Call) status.Code {
		index := c.U32(0)
		if index >= 2 {
			return status.EndEnumeration
		}
		if err := c.Buffer(1).SetWord(uintptr(0xD0 + index)); err != nil {
			return status.Error
		}
		return status.OK
	})
	c := newClient(t, drv)

	hs, err := c.EnumDisplayHandles()
	if err != nil {
		t.Fatalf("EnumDisplayHandles failed: %v", err)
	}
	if len(hs) != 2 || hs[0] != 0xD0 || hs[1] != 0xD1 {
		t.Errorf("handles = %v", hs)
	}
}

func TestEnumPhysicalGPUs(t *testing.T) {
	drv := nativetest.New().Handle(resolver.EnumPhysicalGPUs, func(c *nativetest.Call) status.Code {
		arr := c.Buffer(0)
		if arr.Len() != MaxPhysicalGPUs*marshal.PtrSize {
			return status.InvalidArgument
		}
		if err := arr.SetWordAt(0, 0x6A); err != nil {
			return status.Error
		}
		if err := c.Buffer(1).SetU32(1); err != nil {
			return status.Error
		}
		return status.OK
	})
	c := newClient(t, drv)

	gpus, err := c.EnumPhysicalGPUs()
	if err != nil {
		t.Fatalf("EnumPhysicalGPUs failed: %v", err)
	}
	if len(gpus) != 1 || gpus[0] != 0x6A {
		t.Errorf("gpus = %v", gpus)
	}
}

func TestDisplayLookups(t *testing.T) {
	nameIs := func(c *nativetest.Call, want string) bool {
		got, err := c.Buffer(0).CString()
		return err == nil && got == want
	}
	drv := nativetest.New().
		Handle(resolver.GetAssociatedNvidiaDisplayHandle, func(c *nativetest.Call) status.Code {
			if !nameIs(c, `\\.\DISPLAY2`) {
				return status.InvalidArgument
			}
			if err := c.Buffer(1).SetWord(0xBEEF); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.DISP_GetDisplayIdByDisplayName, func(c *nativetest.Call) status.Code {
			if !nameIs(c, `\\.\DISPLAY2`) {
				return status.InvalidArgument
			}
			if err := c.Buffer(1).SetU32(0x80061086); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.DISP_GetGDIPrimaryDisplayId, func(c *nativetest.Call) status.Code {
			if err := c.Buffer(0).SetU32(0x1001); err != nil {
				return status.Error
			}
			return status.OK
		})
	c := newClient(t, drv)

	h, err := c.DisplayHandleByName(`\\.\DISPLAY2`)
	if err != nil || h != 0xBEEF {
		t.Errorf("DisplayHandleByName = %v, %v", h, err)
	}
	id, err := c.DisplayIDByName(`\\.\DISPLAY2`)
	if err != nil || id != 0x80061086 {
		t.Errorf("DisplayIDByName = %v, %v", id, err)
	}
	if _, err := c.DisplayIDByName(`\\.\DISPLAY9`); !errors.IsKind(err, errors.KindNativeFailure) {
		t.Errorf("unknown name err = %v", err)
	}
	if _, err := c.DisplayIDByName("bad\x00name"); !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("NUL name err = %v", err)
	}
	primary, err := c.PrimaryDisplayID()
	if err != nil || primary != 0x1001 {
		t.Errorf("PrimaryDisplayID = %v, %v", primary, err)
	}
}

func TestMemoryInfo_Negotiates(t *testing.T) {
	want := &MemoryInfoV2{
		MemoryInfoV1:                      MemoryInfoV1{DedicatedVideoMemory: 8 << 20, CurAvailableDedicatedVideoMemory: 6 << 20},
		DedicatedVideoMemoryEvictionCount: 3,
	}
	drv := nativetest.New().Handle(resolver.GPU_GetMemoryInfo, reply(1, 2, want))
	c := newClient(t, drv)

	info, err := c.MemoryInfo(0x6A)
	if err != nil {
		t.Fatalf("MemoryInfo failed: %v", err)
	}
	got, ok := info.(*MemoryInfoV2)
	if !ok {
		t.Fatalf("MemoryInfo returned %T", info)
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if info.Basic().DedicatedVideoMemory != 8<<20 {
		t.Errorf("Basic = %+v", info.Basic())
	}
	if drv.Calls(resolver.GPU_GetMemoryInfo) != 2 {
		t.Errorf("calls = %d, want V3 then V2", drv.Calls(resolver.GPU_GetMemoryInfo))
	}
}

func TestMemoryInfo_Unsupported(t *testing.T) {
	drv := nativetest.New().Status(resolver.GPU_GetMemoryInfo, status.IncompatibleStructVersion)
	c := newClient(t, drv)

	info, err := c.MemoryInfo(0x6A)
	if info != nil {
		t.Errorf("info = %v, want nil", info)
	}
	if !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("err = %v", err)
	}
	if drv.Calls(resolver.GPU_GetMemoryInfo) != 3 {
		t.Errorf("calls = %d, want one per version", drv.Calls(resolver.GPU_GetMemoryInfo))
	}
}

// colorDriver accepts ColorDataV5, records every received struct and
// answers with reported settings.
func colorDriver(reported ColorSettings, seen *[]ColorDataV5) *nativetest.Driver {
	return nativetest.New().Handle(resolver.Disp_ColorControl, func(c *nativetest.Call) status.Code {
		if c.Version(1) != 5 {
			return status.IncompatibleStructVersion
		}
		in, err := marshal.Decode(c.Buffer(1), func() *ColorDataV5 { return &ColorDataV5{} })
		if err != nil {
			return status.InvalidArgument
		}
		*seen = append(*seen, *in)
		switch in.Cmd {
		case ColorCmdIsSupported:
			if in.Format == 99 {
				return status.NotSupported
			}
		case ColorCmdGet, ColorCmdGetDefault:
			out := &ColorDataV5{}
			out.apply(reported)
			out.Cmd = in.Cmd
			if err := marshal.EncodeInto(c.Buffer(1), 0, out); err != nil {
				return status.Error
			}
		}
		return status.OK
	})
}

func TestColorData_Commands(t *testing.T) {
	reported := ColorSettings{Format: 3, Colorimetry: 1, DynamicRange: 1, BPC: 10, Depth: 30}
	var seen []ColorDataV5
	c := newClient(t, colorDriver(reported, &seen))

	cd, err := c.ColorData(0x1001)
	if err != nil {
		t.Fatalf("ColorData failed: %v", err)
	}
	if cd.Settings() != reported {
		t.Errorf("settings = %+v", cd.Settings())
	}
	if _, err := c.DefaultColorData(0x1001); err != nil {
		t.Fatalf("DefaultColorData failed: %v", err)
	}
	if err := c.SetColorData(0x1001, reported); err != nil {
		t.Fatalf("SetColorData failed: %v", err)
	}
	ok, err := c.IsColorSupported(0x1001, ColorSettings{Format: 99})
	if err != nil || ok {
		t.Errorf("IsColorSupported(99) = %v, %v", ok, err)
	}
	ok, err = c.IsColorSupported(0x1001, reported)
	if err != nil || !ok {
		t.Errorf("IsColorSupported = %v, %v", ok, err)
	}

	wantCmds := []ColorCommand{ColorCmdGet, ColorCmdGetDefault, ColorCmdSet, ColorCmdIsSupported, ColorCmdIsSupported}
	if len(seen) != len(wantCmds) {
		t.Fatalf("driver saw %d calls", len(seen))
	}
	for i, cmd := range wantCmds {
		if seen[i].Cmd != cmd {
			t.Errorf("call %d cmd = %d, want %d", i, seen[i].Cmd, cmd)
		}
	}
	if seen[2].Settings() != reported {
		t.Errorf("set sent %+v", seen[2].Settings())
	}
}

func TestIsColorSupported_Statuses(t *testing.T) {
	tests := []struct {
		code    status.Code
		wantErr bool
	}{
		{status.NotSupported, false},
		{status.InvalidCombination, false},
		{status.APINotInitialized, true},
		{status.InvalidHandle, true},
		{status.InvalidArgument, true},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			drv := nativetest.New().Status(resolver.Disp_ColorControl, tt.code)
			c := newClient(t, drv)

			ok, err := c.IsColorSupported(0x1001, ColorSettings{Format: 3})
			if ok {
				t.Error("failed query reported supported")
			}
			if !tt.wantErr {
				if err != nil {
					t.Errorf("got error %v, want false without error", err)
				}
				return
			}
			code, found := errors.StatusOf(err)
			if !found || status.Code(code) != tt.code {
				t.Errorf("got %v, want status %s", err, tt.code)
			}
		})
	}
}

func TestColorData_OldDriverDropsFields(t *testing.T) {
	var sent ColorDataV2
	drv := nativetest.New().Handle(resolver.Disp_ColorControl, func(c *nativetest.Call) status.Code {
		if c.Version(1) != 2 {
			return status.IncompatibleStructVersion
		}
		in, err := marshal.Decode(c.Buffer(1), func() *ColorDataV2 { return &ColorDataV2{} })
		if err != nil {
			return status.InvalidArgument
		}
		sent = *in
		return status.OK
	})
	c := newClient(t, drv)

	if err := c.SetColorData(7, ColorSettings{Format: 1, DynamicRange: 2, BPC: 12}); err != nil {
		t.Fatalf("SetColorData failed: %v", err)
	}
	want := ColorSettings{Format: 1, DynamicRange: 2}
	if sent.Settings() != want {
		t.Errorf("sent %+v, want %+v", sent.Settings(), want)
	}
	if drv.Calls(resolver.Disp_ColorControl) != 4 {
		t.Errorf("calls = %d", drv.Calls(resolver.Disp_ColorControl))
	}
}

func TestHDRColorData(t *testing.T) {
	var cmds []HDRCommand
	drv := nativetest.New().Handle(resolver.Disp_HdrColorControl, func(c *nativetest.Call) status.Code {
		if c.Version(1) != 1 {
			return status.IncompatibleStructVersion
		}
		in, err := marshal.Decode(c.Buffer(1), func() *HDRColorDataV1 { return &HDRColorDataV1{} })
		if err != nil {
			return status.InvalidArgument
		}
		cmds = append(cmds, in.Cmd)
		if in.Cmd == HDRCmdGet {
			out := &HDRColorDataV1{Mode: HDRModeUHDA, Mastering: mastering}
			if err := marshal.EncodeInto(c.Buffer(1), 0, out); err != nil {
				return status.Error
			}
		}
		return status.OK
	})
	c := newClient(t, drv)

	hdr, err := c.HDRColorData(0x1001)
	if err != nil {
		t.Fatalf("HDRColorData failed: %v", err)
	}
	if s := hdr.Settings(); s.Mode != HDRModeUHDA || s.Mastering != mastering {
		t.Errorf("settings = %+v", s)
	}
	if err := c.SetHDRColorData(0x1001, HDRSettings{Mode: HDRModeOff}); err != nil {
		t.Fatalf("SetHDRColorData failed: %v", err)
	}
	if len(cmds) != 2 || cmds[0] != HDRCmdGet || cmds[1] != HDRCmdSet {
		t.Errorf("commands = %v", cmds)
	}
}

func TestHDRCapabilities_ExpandDefaults(t *testing.T) {
	drv := nativetest.New().Handle(resolver.Disp_GetHdrCapabilities, func(c *nativetest.Call) status.Code {
		in, err := marshal.Decode(c.Buffer(1), func() *HDRCapabilitiesV2 { return &HDRCapabilitiesV2{} })
		if err != nil {
			return status.InvalidArgument
		}
		out := &HDRCapabilitiesV2{HDRCapabilitiesV1: HDRCapabilitiesV1{ST2084EOTF: true}}
		if in.ExpandDefaultHDRParameters {
			out.Display = mastering
		}
		if err := marshal.EncodeInto(c.Buffer(1), 0, out); err != nil {
			return status.Error
		}
		return status.OK
	})
	c := newClient(t, drv)

	caps, err := c.HDRCapabilities(0x1001, true)
	if err != nil {
		t.Fatalf("HDRCapabilities failed: %v", err)
	}
	if !caps.Basic().ST2084EOTF || caps.Basic().Display != mastering {
		t.Errorf("caps = %+v", caps.Basic())
	}
	caps, err = c.HDRCapabilities(0x1001, false)
	if err != nil {
		t.Fatalf("HDRCapabilities failed: %v", err)
	}
	if caps.Basic().Display != (MasteringDisplayData{}) {
		t.Errorf("defaults expanded without asking: %+v", caps.Basic().Display)
	}
}

func TestDVCInfo_Ex(t *testing.T) {
	drv := nativetest.New().
		Handle(resolver.GetDVCInfoEx, reply(2, 1, &DVCInfoEx{CurrentLevel: -5, MinLevel: -50, MaxLevel: 50, DefaultLevel: 0})).
		Status(resolver.GetDVCInfo, status.OK)
	c := newClient(t, drv)

	dvc, err := c.DVCInfo(0xD0, 0)
	if err != nil {
		t.Fatalf("DVCInfo failed: %v", err)
	}
	want := DVC{Current: -5, Min: -50, Max: 50, Extended: true}
	if dvc != want {
		t.Errorf("dvc = %+v, want %+v", dvc, want)
	}
	if drv.Calls(resolver.GetDVCInfo) != 0 {
		t.Error("legacy interface should not be called")
	}
}

func TestDVCInfo_LegacyFallback(t *testing.T) {
	drv := nativetest.New().
		Handle(resolver.GetDVCInfo, reply(2, 1, &DVCInfo{CurrentLevel: 40, MaxLevel: 63}))
	c := newClient(t, drv)

	dvc, err := c.DVCInfo(0xD0, 0)
	if err != nil {
		t.Fatalf("DVCInfo failed: %v", err)
	}
	if dvc != (DVC{Current: 40, Max: 63}) {
		t.Errorf("dvc = %+v", dvc)
	}
}

func TestDVCInfo_ExFailureIsReported(t *testing.T) {
	drv := nativetest.New().
		Status(resolver.GetDVCInfoEx, status.ExpectedDisplayHandle).
		Status(resolver.GetDVCInfo, status.OK)
	c := newClient(t, drv)

	if _, err := c.DVCInfo(0xD0, 0); !errors.IsKind(err, errors.KindNativeFailure) {
		t.Errorf("err = %v", err)
	}
	if drv.Calls(resolver.GetDVCInfo) != 0 {
		t.Error("a native failure must not fall back")
	}
}

func TestSetDVCLevel(t *testing.T) {
	t.Run("ex", func(t *testing.T) {
		var level int32
		drv := nativetest.New().Handle(resolver.SetDVCLevelEx, func(c *nativetest.Call) status.Code {
			in, err := marshal.Decode(c.Buffer(2), func() *DVCInfoEx { return &DVCInfoEx{} })
			if err != nil {
				return status.InvalidArgument
			}
			level = in.CurrentLevel
			return status.OK
		})
		c := newClient(t, drv)

		if err := c.SetDVCLevel(0xD0, 0, -20); err != nil {
			t.Fatalf("SetDVCLevel failed: %v", err)
		}
		if level != -20 {
			t.Errorf("level = %d", level)
		}
	})

	t.Run("legacy", func(t *testing.T) {
		var args [3]uint32
		drv := nativetest.New().Handle(resolver.SetDVCLevel, func(c *nativetest.Call) status.Code {
			args = [3]uint32{c.U32(0), c.U32(1), c.U32(2)}
			return status.OK
		})
		c := newClient(t, drv)

		if err := c.SetDVCLevel(0xD0, 1, 30); err != nil {
			t.Fatalf("SetDVCLevel failed: %v", err)
		}
		if args != [3]uint32{0xD0, 1, 30} {
			t.Errorf("args = %v", args)
		}
		if err := c.SetDVCLevel(0xD0, 1, -1); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Errorf("negative legacy level err = %v", err)
		}
		if drv.Calls(resolver.SetDVCLevel) != 1 {
			t.Errorf("calls = %d", drv.Calls(resolver.SetDVCLevel))
		}
	})
}

func TestScanout(t *testing.T) {
	info := &ScanoutInformation{
		SourceDesktop:       Rect{0, 0, 1920, 1080},
		TargetDisplayWidth:  1920,
		TargetDisplayHeight: 1080,
	}
	var setArgs [3]uint32
	var setContainer float32
	drv := nativetest.New().
		Handle(resolver.GPU_GetScanoutConfigurationEx, reply(1, 1, info)).
		Handle(resolver.GPU_GetScanoutIntensityState, reply(1, 1, &ScanoutIntensityState{Enabled: true})).
		Handle(resolver.GPU_GetScanoutWarpingState, reply(1, 1, &ScanoutWarpingState{})).
		Handle(resolver.GPU_GetScanoutCompositionParameter, func(c *nativetest.Call) status.Code {
			if ScanoutParameter(c.U32(1)) != ScanoutWarpingResamplingMethod {
				return status.InvalidArgument
			}
			if err := c.Buffer(2).SetU32(uint32(ScanoutResamplingBicubicAdaptive)); err != nil {
				return status.Error
			}
			if err := c.Buffer(3).SetF32(0.5); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.GPU_SetScanoutCompositionParameter, func(c *nativetest.Call) status.Code {
			setArgs = [3]uint32{c.U32(0), c.U32(1), c.U32(2)}
			setContainer, _ = c.Buffer(3).F32()
			return status.OK
		})
	c := newClient(t, drv)

	got, err := c.ScanoutConfiguration(0x1001)
	if err != nil || *got != *info {
		t.Errorf("ScanoutConfiguration = %+v, %v", got, err)
	}
	intensity, err := c.ScanoutIntensityState(0x1001)
	if err != nil || !intensity.Enabled {
		t.Errorf("ScanoutIntensityState = %+v, %v", intensity, err)
	}
	warping, err := c.ScanoutWarpingState(0x1001)
	if err != nil || warping.Enabled {
		t.Errorf("ScanoutWarpingState = %+v, %v", warping, err)
	}
	v, container, err := c.ScanoutCompositionParameter(0x1001, ScanoutWarpingResamplingMethod)
	if err != nil || v != ScanoutResamplingBicubicAdaptive || container != 0.5 {
		t.Errorf("ScanoutCompositionParameter = %v, %v, %v", v, container, err)
	}
	err = c.SetScanoutCompositionParameter(0x1001, ScanoutWarpingResamplingMethod, ScanoutResamplingBilinear, 1.5)
	if err != nil {
		t.Fatalf("SetScanoutCompositionParameter failed: %v", err)
	}
	if setArgs != [3]uint32{0x1001, 0, uint32(ScanoutResamplingBilinear)} || setContainer != 1.5 {
		t.Errorf("set args = %v, container %v", setArgs, setContainer)
	}
}

func TestWithRegistry_PinsVersions(t *testing.T) {
	old := registry.MustCandidates[MemoryInfo](KindMemoryInfo, func() MemoryInfo { return &MemoryInfoV1{} })
	reg, err := registry.New(old)
	if err != nil {
		t.Fatal(err)
	}
	drv := nativetest.New().Handle(resolver.GPU_GetMemoryInfo, reply(1, 1, &MemoryInfoV1{DedicatedVideoMemory: 1}))
	alloc := marshal.NewTrackingAllocator(nil)
	c, err := New(drv, WithAllocator(alloc), WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.MemoryInfo(1); err != nil {
		t.Fatalf("MemoryInfo failed: %v", err)
	}
	if drv.Calls(resolver.GPU_GetMemoryInfo) != 1 {
		t.Errorf("calls = %d, want only V1", drv.Calls(resolver.GPU_GetMemoryInfo))
	}
	if _, err := c.ColorData(1); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("unregistered kind err = %v", err)
	}
}
