package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/nvapi/control"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/native/nativetest"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// harness runs nvctl command lines against a fake driver.
type harness struct {
	drv    *nativetest.Driver
	opened int
	closed int
}

func newHarness(t *testing.T, drv *nativetest.Driver) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	drv.Status(resolver.Initialize, status.OK).Status(resolver.Unload, status.OK)
	return &harness{drv: drv}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	a := newApp(&out)
	a.open = func(string) (native.Invoker, func() error, error) {
		h.opened++
		return h.drv, func() error { h.closed++; return nil }, nil
	}
	err := run(a, append([]string{"--color", "never"}, args...))
	return out.String(), err
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

func twoDisplays() *nativetest.Driver {
	names := []string{`\\.\DISPLAY1`, `\\.\DISPLAY2`}
	return nativetest.New().
		Handle(resolver.EnumNvidiaDisplayHandle, func(c *nativetest.Call) status.Code {
			if c.U32(0) >= 2 {
				return status.EndEnumeration
			}
			if err := c.Buffer(1).SetWord(uintptr(0xD0 + c.U32(0))); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.GetAssociatedNvidiaDisplayName, func(c *nativetest.Call) status.Code {
			if err := c.Buffer(1).SetCString(names[c.Word(0)-0xD0]); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.DISP_GetDisplayIdByDisplayName, func(c *nativetest.Call) status.Code {
			name, err := c.Buffer(0).CString()
			if err != nil {
				return status.Error
			}
			id := uint32(0x1001)
			if name == names[1] {
				id = 0x1002
			}
			if err := c.Buffer(1).SetU32(id); err != nil {
				return status.Error
			}
			return status.OK
		}).
		Handle(resolver.DISP_GetGDIPrimaryDisplayId, func(c *nativetest.Call) status.Code {
			if err := c.Buffer(0).SetU32(0x1002); err != nil {
				return status.Error
			}
			return status.OK
		})
}

func TestDisplays(t *testing.T) {
	h := newHarness(t, twoDisplays())

	out, err := h.run("displays")
	if err != nil {
		t.Fatalf("displays failed: %v", err)
	}
	for _, s := range []string{`\\.\DISPLAY1`, `\\.\DISPLAY2`, "0x00001002", "0xd1"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if h.opened != 1 || h.closed != 1 {
		t.Errorf("opened %d closed %d", h.opened, h.closed)
	}
	if h.drv.Calls(resolver.Initialize) != 1 || h.drv.Calls(resolver.Unload) != 1 {
		t.Error("driver should be initialized and unloaded once")
	}
}

func TestDisplays_YAML(t *testing.T) {
	h := newHarness(t, twoDisplays())

	out, err := h.run("displays", "-o", "yaml")
	if err != nil {
		t.Fatalf("displays failed: %v", err)
	}
	if !strings.Contains(out, "primary: true") || !strings.Contains(out, "index: 1") {
		t.Errorf("unexpected yaml:\n%s", out)
	}
}

func TestDVC(t *testing.T) {
	var set int32 = -1000
	drv := twoDisplays().
		Handle(resolver.GetDVCInfoEx, reply(2, 1, &control.DVCInfoEx{CurrentLevel: 10, MinLevel: -50, MaxLevel: 50})).
		Handle(resolver.SetDVCLevelEx, func(c *nativetest.Call) status.Code {
			in, err := marshal.Decode(c.Buffer(2), func() *control.DVCInfoEx { return &control.DVCInfoEx{} })
			if err != nil {
				return status.InvalidArgument
			}
			set = in.CurrentLevel
			return status.OK
		})
	h := newHarness(t, drv)

	out, err := h.run("dvc", "1")
	if err != nil {
		t.Fatalf("dvc failed: %v", err)
	}
	if !strings.Contains(out, "0xd1") || !strings.Contains(out, "-50..50") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := h.run("dvc", "set", "20", "0"); err != nil {
		t.Fatalf("dvc set failed: %v", err)
	}
	if set != 20 {
		t.Errorf("level = %d, want 20", set)
	}

	if _, err := h.run("dvc", "set", "99"); err == nil || !strings.Contains(err.Error(), "outside") {
		t.Errorf("out of range err = %v", err)
	}
	if _, err := h.run("dvc", "7"); err == nil {
		t.Error("bad display index should fail")
	}
}

func TestColorSet_KeepsUnchangedFields(t *testing.T) {
	current := control.ColorDataV5{}
	current.Format, current.Colorimetry, current.BPC, current.Depth = 1, 2, 8, 4
	var written *control.ColorDataV5
	drv := twoDisplays().Handle(resolver.Disp_ColorControl, func(c *nativetest.Call) status.Code {
		if c.Version(1) != 5 {
			return status.IncompatibleStructVersion
		}
		in, err := marshal.Decode(c.Buffer(1), func() *control.ColorDataV5 { return &control.ColorDataV5{} })
		if err != nil {
			return status.InvalidArgument
		}
		if in.Cmd == control.ColorCmdSet {
			written = in
			return status.OK
		}
		out := current
		out.Cmd = in.Cmd
		if err := marshal.EncodeInto(c.Buffer(1), 0, &out); err != nil {
			return status.Error
		}
		return status.OK
	})
	h := newHarness(t, drv)

	if _, err := h.run("color", "set", "--bpc", "10"); err != nil {
		t.Fatalf("color set failed: %v", err)
	}
	if written == nil {
		t.Fatal("no set command reached the driver")
	}
	s := written.Settings()
	if s.BPC != 10 || s.Format != 1 || s.Colorimetry != 2 || s.Depth != 4 {
		t.Errorf("written settings = %+v", s)
	}
}

func TestCheck(t *testing.T) {
	h := newHarness(t, twoDisplays())

	out, err := h.run("check", "-o", "yaml")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	var entries []entryDoc
	if err := yaml.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("check output is not yaml: %v\n%s", err, out)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name] = e.Present
	}
	if len(entries) != len(resolver.Known()) {
		t.Errorf("%d entries, want %d", len(entries), len(resolver.Known()))
	}
	if !present["NvAPI_EnumNvidiaDisplayHandle"] {
		t.Error("enum entry point should be present")
	}
	if p, ok := present["NvAPI_GPU_GetMemoryInfo"]; !ok || p {
		t.Error("memory entry point should be reported missing")
	}

	out, err = h.run("check", "--layouts")
	if err != nil {
		t.Fatalf("check --layouts failed: %v", err)
	}
	if !strings.Contains(out, "NV_COLOR_DATA_V5") || !strings.Contains(out, "NV_DISPLAYCONFIG_PATH_INFO_V2") {
		t.Errorf("layouts missing:\n%s", out)
	}
}

func TestErrors(t *testing.T) {
	h := newHarness(t, nativetest.New())

	out, err := h.run("errors", "--", "-104")
	if err != nil {
		t.Fatalf("errors failed: %v", err)
	}
	if !strings.Contains(out, "NVAPI_NOT_SUPPORTED") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if h.opened != 0 {
		t.Error("listing codes should not load the driver")
	}
}

func TestConfig_FileAndFlags(t *testing.T) {
	h := newHarness(t, nativetest.New())
	path := filepath.Join(t.TempDir(), "nvctl.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\ndriver:\n  library: /opt/nv.so\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := h.run("--config", path, "--library", "/tmp/other.so", "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, s := range []string{"# " + path, "level: debug", "library: /tmp/other.so"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestConfig_Invalid(t *testing.T) {
	h := newHarness(t, nativetest.New())
	if _, err := h.run("-o", "json", "displays"); err == nil {
		t.Error("unknown output format should fail")
	}
	if h.opened != 0 {
		t.Error("driver opened despite invalid config")
	}
}

func TestVersion_Driver(t *testing.T) {
	drv := nativetest.New().Handle(resolver.GetInterfaceVersionString, func(c *nativetest.Call) status.Code {
		if err := c.Buffer(0).SetCString("R560"); err != nil {
			return status.Error
		}
		return status.OK
	})
	h := newHarness(t, drv)

	out, err := h.run("version", "--driver")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "nvctl "+Version) || !strings.Contains(out, "driver R560") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInitializeFailureReleasesDriver(t *testing.T) {
	h := newHarness(t, twoDisplays())
	h.drv.Status(resolver.Initialize, status.NvidiaDeviceNotFound)

	if _, err := h.run("displays"); err == nil {
		t.Fatal("expected initialize error")
	}
	if h.opened != 1 || h.closed != 1 {
		t.Errorf("opened %d closed %d", h.opened, h.closed)
	}
	if h.drv.Calls(resolver.Unload) != 0 {
		t.Error("unload without a successful initialize")
	}
}

// displayConfigDriver reports n single-target paths in the V1 layout and
// records what DISP_SetDisplayConfig receives.
func displayConfigDriver(n uint32, applied *[]uint32) *nativetest.Driver {
	newPath := func() *control.PathInfoV1 { return &control.PathInfoV1{} }
	return nativetest.New().
		Handle(resolver.DISP_GetDisplayConfig, func(c *nativetest.Call) status.Code {
			countBuf, arr := c.Buffer(0), c.Buffer(1)
			if arr == nil {
				if err := countBuf.SetU32(n); err != nil {
					return status.Error
				}
				return status.OK
			}
			if c.Version(1) != 1 {
				return status.IncompatibleStructVersion
			}
			for i := uint32(0); i < arr.Count(); i++ {
				p, err := marshal.DecodeAt(arr, i, newPath)
				if err != nil {
					return status.InvalidArgument
				}
				if p.Targets == nil {
					p.SourceID, p.TargetCount = i, 1
				} else {
					p.SourceMode.Width, p.SourceMode.Height = 2560, 1440
					p.SourceMode.PositionX = int32(i) * 2560
					p.Targets[0].DisplayID = control.DisplayID(0x1000 + i)
				}
				if err := marshal.EncodeInto(arr, i, p); err != nil {
					return status.Error
				}
			}
			return status.OK
		}).
		Handle(resolver.DISP_SetDisplayConfig, func(c *nativetest.Call) status.Code {
			*applied = append(*applied, c.U32(0), c.U32(2))
			return status.OK
		})
}

func TestPaths(t *testing.T) {
	var applied []uint32
	h := newHarness(t, displayConfigDriver(2, &applied))

	out, err := h.run("paths")
	if err != nil {
		t.Fatalf("paths failed: %v", err)
	}
	for _, s := range []string{"NV_DISPLAYCONFIG_PATH_INFO_V1", "2560x1440", "2560,0", "0x00001001"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}

	out, err = h.run("paths", "apply", "--save", "--yes")
	if err != nil {
		t.Fatalf("paths apply failed: %v", err)
	}
	if len(applied) != 2 || applied[0] != 2 || applied[1] != uint32(control.SetConfigSaveToPersistence) {
		t.Errorf("applied = %v", applied)
	}
	if !strings.Contains(out, "applied 2 path(s)") {
		t.Errorf("unexpected output: %s", out)
	}

	// Without --yes a non-interactive run must not touch the configuration.
	if _, err := h.run("paths", "apply"); err == nil {
		t.Error("apply without --yes should need a terminal")
	}
	if len(applied) != 2 {
		t.Errorf("applied = %v", applied)
	}
}
