package control

import (
	"reflect"
	"testing"

	"github.com/wippyai/nvapi/marshal"
)

var mastering = MasteringDisplayData{
	DisplayPrimaryX0:             34000,
	DisplayPrimaryY0:             16000,
	DisplayPrimaryX1:             13250,
	DisplayPrimaryY1:             34500,
	DisplayPrimaryX2:             7500,
	DisplayPrimaryY2:             3000,
	DisplayWhitePointX:           15635,
	DisplayWhitePointY:           16450,
	MaxDisplayMasteringLuminance: 1000,
	MinDisplayMasteringLuminance: 1,
	MaxContentLightLevel:         1000,
	MaxFrameAverageLightLevel:    400,
}

func colorV4() ColorDataV4 {
	return ColorDataV4{
		ColorDataV3: ColorDataV3{
			ColorDataV2: ColorDataV2{
				ColorDataV1:  ColorDataV1{Cmd: ColorCmdSet, Format: 3, Colorimetry: 5},
				DynamicRange: 1,
			},
			BPC: 10,
		},
		SelectionPolicy: 2,
	}
}

// samples holds one populated value per registered layout, built by a
// constructor so each round trip starts from a fresh value.
var samples = map[string]struct {
	value func() marshal.Struct
	blank func() marshal.Struct
}{
	"NV_DISPLAY_DRIVER_MEMORY_INFO_V1": {
		func() marshal.Struct { return &MemoryInfoV1{1, 2, 3, 4, 5} },
		func() marshal.Struct { return &MemoryInfoV1{} },
	},
	"NV_DISPLAY_DRIVER_MEMORY_INFO_V2": {
		func() marshal.Struct { return &MemoryInfoV2{MemoryInfoV1{1, 2, 3, 4, 5}, 6, 7} },
		func() marshal.Struct { return &MemoryInfoV2{} },
	},
	"NV_DISPLAY_DRIVER_MEMORY_INFO_V3": {
		func() marshal.Struct {
			return &MemoryInfoV3{MemoryInfoV2{MemoryInfoV1{1, 2, 3, 4, 5}, 6, 7}, 8, 9}
		},
		func() marshal.Struct { return &MemoryInfoV3{} },
	},
	"NV_COLOR_DATA_V1": {
		func() marshal.Struct { return &ColorDataV1{Cmd: ColorCmdGet, Format: 1, Colorimetry: 2} },
		func() marshal.Struct { return &ColorDataV1{} },
	},
	"NV_COLOR_DATA_V2": {
		func() marshal.Struct { v := colorV4(); return &v.ColorDataV2 },
		func() marshal.Struct { return &ColorDataV2{} },
	},
	"NV_COLOR_DATA_V3": {
		func() marshal.Struct { v := colorV4(); return &v.ColorDataV3 },
		func() marshal.Struct { return &ColorDataV3{} },
	},
	"NV_COLOR_DATA_V4": {
		func() marshal.Struct { v := colorV4(); return &v },
		func() marshal.Struct { return &ColorDataV4{} },
	},
	"NV_COLOR_DATA_V5": {
		func() marshal.Struct { return &ColorDataV5{ColorDataV4: colorV4(), Depth: 30} },
		func() marshal.Struct { return &ColorDataV5{} },
	},
	"NV_HDR_COLOR_DATA_V1": {
		func() marshal.Struct {
			return &HDRColorDataV1{Mastering: mastering, Cmd: HDRCmdSet, Mode: HDRModeUHDA}
		},
		func() marshal.Struct { return &HDRColorDataV1{} },
	},
	"NV_HDR_COLOR_DATA_V2": {
		func() marshal.Struct {
			return &HDRColorDataV2{
				HDRColorDataV1: HDRColorDataV1{Mastering: mastering, Mode: HDRModeUHDA},
				ColorFormat:    1,
				DynamicRange:   2,
				BPC:            10,
			}
		},
		func() marshal.Struct { return &HDRColorDataV2{} },
	},
	"NV_HDR_CAPABILITIES_V1": {
		func() marshal.Struct {
			return &HDRCapabilitiesV1{Display: mastering, ST2084EOTF: true, TraditionalSDRGamma: true}
		},
		func() marshal.Struct { return &HDRCapabilitiesV1{} },
	},
	"NV_HDR_CAPABILITIES_V2": {
		func() marshal.Struct {
			return &HDRCapabilitiesV2{
				HDRCapabilitiesV1:  HDRCapabilitiesV1{Display: mastering, EDR: true},
				DolbyVision:        true,
				DolbyVisionVersion: 2,
			}
		},
		func() marshal.Struct { return &HDRCapabilitiesV2{} },
	},
	"NV_DISPLAY_DVC_INFO": {
		func() marshal.Struct { return &DVCInfo{CurrentLevel: 40, MinLevel: 0, MaxLevel: 63} },
		func() marshal.Struct { return &DVCInfo{} },
	},
	"NV_DISPLAY_DVC_INFO_EX": {
		func() marshal.Struct {
			return &DVCInfoEx{CurrentLevel: -10, MinLevel: -50, MaxLevel: 50, DefaultLevel: 0}
		},
		func() marshal.Struct { return &DVCInfoEx{} },
	},
	"NV_DISPLAYCONFIG_PATH_INFO_V1": {
		func() marshal.Struct {
			return &PathInfoV1{
				SourceID:    1,
				TargetCount: 1,
				SourceMode:  &SourceModeInfo{Width: 1920, Height: 1080, ColorDepth: 32, PositionX: -1920},
				Targets: []*TargetInfoV1{{
					DisplayID: 0x80061086,
					Details:   &AdvancedTargetInfo{RefreshRate1K: 59940, Rotation: 1},
				}},
			}
		},
		func() marshal.Struct { return &PathInfoV1{} },
	},
	"NV_DISPLAYCONFIG_PATH_INFO_V2": {
		func() marshal.Struct {
			return &PathInfoV2{
				SourceID:          2,
				TargetCount:       2,
				OSAdapterLUIDLow:  0xABCD,
				OSAdapterLUIDHigh: -1,
				Targets: []*TargetInfoV2{
					{TargetInfoV1: TargetInfoV1{DisplayID: 1}, WindowsCCDTargetID: 7},
					{TargetInfoV1: TargetInfoV1{DisplayID: 2, Details: &AdvancedTargetInfo{Scaling: 3}}},
				},
			}
		},
		func() marshal.Struct { return &PathInfoV2{} },
	},
	"NV_SCANOUT_INFORMATION_V1": {
		func() marshal.Struct {
			return &ScanoutInformation{
				SourceDesktop:       Rect{0, 0, 3840, 2160},
				SourceViewport:      Rect{0, 0, 3840, 2160},
				TargetViewport:      Rect{-8, 4, 1920, 1080},
				TargetDisplayWidth:  1920,
				TargetDisplayHeight: 1080,
			}
		},
		func() marshal.Struct { return &ScanoutInformation{} },
	},
	"NV_SCANOUT_INTENSITY_STATE_DATA_V1": {
		func() marshal.Struct { return &ScanoutIntensityState{Enabled: true} },
		func() marshal.Struct { return &ScanoutIntensityState{} },
	},
	"NV_SCANOUT_WARPING_STATE_DATA_V1": {
		func() marshal.Struct { return &ScanoutWarpingState{Enabled: true} },
		func() marshal.Struct { return &ScanoutWarpingState{} },
	},
}

func TestRoundTrip_EveryRegisteredLayout(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	alloc := marshal.NewTrackingAllocator(nil)

	for _, l := range reg.Layouts() {
		t.Run(l.Name, func(t *testing.T) {
			s, ok := samples[l.Name]
			if !ok {
				t.Fatalf("no sample for %s", l.Name)
			}
			in := s.value()
			if in.Layout() != l {
				t.Fatalf("sample layout = %s", in.Layout().Name)
			}
			buf, err := marshal.Encode(alloc, in)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			defer buf.Release()

			tag, _ := buf.Tag(0)
			if tag != l.Tag() {
				t.Errorf("tag = %#x, want %#x", tag, l.Tag())
			}
			out, err := marshal.Decode(buf, s.blank)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
			}
		})
	}
	if alloc.Live() != 0 {
		t.Errorf("live blocks = %d after release", alloc.Live())
	}
}

func TestLayouts_ExtendPreviousVersion(t *testing.T) {
	tests := []struct {
		older, newer *marshal.Layout
	}{
		{memoryInfoV1Layout, memoryInfoV2Layout},
		{memoryInfoV2Layout, memoryInfoV3Layout},
		{colorDataV1Layout, colorDataV2Layout},
		{colorDataV4Layout, colorDataV5Layout},
		{hdrColorDataV1Layout, hdrColorDataV2Layout},
		{hdrCapabilitiesV1Layout, hdrCapabilitiesV2Layout},
		{targetInfoV1Layout, targetInfoV2Layout},
		{pathInfoV1Layout, pathInfoV2Layout},
	}
	for _, tt := range tests {
		t.Run(tt.newer.Name, func(t *testing.T) {
			if tt.newer.Size <= tt.older.Size {
				t.Errorf("size %d not larger than %d", tt.newer.Size, tt.older.Size)
			}
			for _, f := range tt.older.Fields() {
				nf, ok := tt.newer.Field(f.Name)
				if !ok || nf.Offset != f.Offset {
					t.Errorf("field %s moved or missing", f.Name)
				}
			}
		})
	}
}

func TestColorDataV1_SizeField(t *testing.T) {
	buf, err := marshal.Encode(marshal.NewHeapAllocator(), &ColorDataV3{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	defer buf.Release()
	mem, _ := buf.Memory()
	f, _ := colorDataV3Layout.Field("size")
	size, _ := mem.ReadU16(f.Offset)
	if uint32(size) != colorDataV3Layout.Size {
		t.Errorf("size = %d, want %d", size, colorDataV3Layout.Size)
	}
}

func TestDefaultRegistry_Kinds(t *testing.T) {
	reg, err := DefaultRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.Kinds()) != 10 {
		t.Errorf("kinds = %v", reg.Kinds())
	}
	again, _ := DefaultRegistry()
	if again != reg {
		t.Error("DefaultRegistry should be built once")
	}
}
