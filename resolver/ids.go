package resolver

import "fmt"

// FunctionID is the interface id the driver's query interface maps to an
// entry point.
type FunctionID uint32

const (
	Initialize                         FunctionID = 0x0150E828
	Unload                             FunctionID = 0xD22BDD7E
	GetErrorMessage                    FunctionID = 0x6C2D048C
	GetInterfaceVersionString          FunctionID = 0x01053FA5
	EnumPhysicalGPUs                   FunctionID = 0xE5AC921F
	EnumNvidiaDisplayHandle            FunctionID = 0x9ABDD40D
	GetAssociatedNvidiaDisplayName     FunctionID = 0x22A78B05
	GetAssociatedNvidiaDisplayHandle   FunctionID = 0x35C29134
	DISP_GetDisplayIdByDisplayName     FunctionID = 0xAE457190
	DISP_GetGDIPrimaryDisplayId        FunctionID = 0x1E9D8A31
	Disp_ColorControl                  FunctionID = 0x92F9D80D
	Disp_HdrColorControl               FunctionID = 0x351DA224
	Disp_GetHdrCapabilities            FunctionID = 0x84F2A8DF
	GetDVCInfo                         FunctionID = 0x4085DE45
	GetDVCInfoEx                       FunctionID = 0x0E45002D
	SetDVCLevel                        FunctionID = 0x172409B4
	SetDVCLevelEx                      FunctionID = 0x4A82C2B1
	DISP_GetDisplayConfig              FunctionID = 0x11ABCCF8
	DISP_SetDisplayConfig              FunctionID = 0x5D8CF8DE
	GPU_GetMemoryInfo                  FunctionID = 0x07F9B368
	GPU_GetScanoutConfigurationEx      FunctionID = 0xE2E1E6F0
	GPU_GetScanoutIntensityState       FunctionID = 0xE81CE836
	GPU_GetScanoutWarpingState         FunctionID = 0x6F5435AF
	GPU_GetScanoutCompositionParameter FunctionID = 0x58FE51E6
	GPU_SetScanoutCompositionParameter FunctionID = 0xF898247D
)

var names = map[FunctionID]string{
	Initialize:                         "NvAPI_Initialize",
	Unload:                             "NvAPI_Unload",
	GetErrorMessage:                    "NvAPI_GetErrorMessage",
	GetInterfaceVersionString:          "NvAPI_GetInterfaceVersionString",
	EnumPhysicalGPUs:                   "NvAPI_EnumPhysicalGPUs",
	EnumNvidiaDisplayHandle:            "NvAPI_EnumNvidiaDisplayHandle",
	GetAssociatedNvidiaDisplayName:     "NvAPI_GetAssociatedNvidiaDisplayName",
	GetAssociatedNvidiaDisplayHandle:   "NvAPI_GetAssociatedNvidiaDisplayHandle",
	DISP_GetDisplayIdByDisplayName:     "NvAPI_DISP_GetDisplayIdByDisplayName",
	DISP_GetGDIPrimaryDisplayId:        "NvAPI_DISP_GetGDIPrimaryDisplayId",
	Disp_ColorControl:                  "NvAPI_Disp_ColorControl",
	Disp_HdrColorControl:               "NvAPI_Disp_HdrColorControl",
	Disp_GetHdrCapabilities:            "NvAPI_Disp_GetHdrCapabilities",
	GetDVCInfo:                         "NvAPI_GetDVCInfo",
	GetDVCInfoEx:                       "NvAPI_GetDVCInfoEx",
	SetDVCLevel:                        "NvAPI_SetDVCLevel",
	SetDVCLevelEx:                      "NvAPI_SetDVCLevelEx",
	DISP_GetDisplayConfig:              "NvAPI_DISP_GetDisplayConfig",
	DISP_SetDisplayConfig:              "NvAPI_DISP_SetDisplayConfig",
	GPU_GetMemoryInfo:                  "NvAPI_GPU_GetMemoryInfo",
	GPU_GetScanoutConfigurationEx:      "NvAPI_GPU_GetScanoutConfigurationEx",
	GPU_GetScanoutIntensityState:       "NvAPI_GPU_GetScanoutIntensityState",
	GPU_GetScanoutWarpingState:         "NvAPI_GPU_GetScanoutWarpingState",
	GPU_GetScanoutCompositionParameter: "NvAPI_GPU_GetScanoutCompositionParameter",
	GPU_SetScanoutCompositionParameter: "NvAPI_GPU_SetScanoutCompositionParameter",
}

// String returns the exported function name, or the hex id when the id is
// not in the table.
func (id FunctionID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("NvAPI_0x%08X", uint32(id))
}

// Known returns every function id with a name, in no particular order.
func Known() []FunctionID {
	ids := make([]FunctionID, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	return ids
}
