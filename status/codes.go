package status

import "sort"

// Native status codes.
const (
	OK                                  Code = 0
	Error                               Code = -1
	LibraryNotFound                     Code = -2
	NoImplementation                    Code = -3
	APINotInitialized                   Code = -4
	InvalidArgument                     Code = -5
	NvidiaDeviceNotFound                Code = -6
	EndEnumeration                      Code = -7
	InvalidHandle                       Code = -8
	IncompatibleStructVersion           Code = -9
	HandleInvalidated                   Code = -10
	OpenGLContextNotCurrent             Code = -11
	InvalidPointer                      Code = -14
	NoGLExpert                          Code = -12
	InstrumentationDisabled             Code = -13
	ExpectedLogicalGPUHandle            Code = -100
	ExpectedPhysicalGPUHandle           Code = -101
	ExpectedDisplayHandle               Code = -102
	InvalidCombination                  Code = -103
	NotSupported                        Code = -104
	PortIDNotFound                      Code = -105
	ExpectedUnattachedDisplayHandle     Code = -106
	InvalidPerfLevel                    Code = -107
	DeviceBusy                          Code = -108
	PersistFileNotFound                 Code = -109
	PersistDataNotFound                 Code = -110
	ExpectedTVDisplay                   Code = -111
	ExpectedTVDisplayOnDConnector       Code = -112
	NoActiveSLITopology                 Code = -113
	SLIRenderingModeNotAllowed          Code = -114
	ExpectedDigitalFlatPanel            Code = -115
	ArgumentExceedMaxSize               Code = -116
	DeviceSwitchingNotAllowed           Code = -117
	TestingClocksNotSupported           Code = -118
	UnknownUnderscanConfig              Code = -119
	TimeoutReconfiguringGPUTopo         Code = -120
	DataNotFound                        Code = -121
	ExpectedAnalogDisplay               Code = -122
	NoVidlink                           Code = -123
	RequiresReboot                      Code = -124
	InvalidHybridMode                   Code = -125
	MixedTargetTypes                    Code = -126
	SYSWOW64NotSupported                Code = -127
	ImplicitSetGPUTopologyNotAllowed    Code = -128
	RequestUserToCloseNonMigratableApps Code = -129
	OutOfMemory                         Code = -130
	WasStillDrawing                     Code = -131
	FileNotFound                        Code = -132
	TooManyUniqueStateObjects           Code = -133
	InvalidCall                         Code = -134
	D3D10DLLNotFound                    Code = -135
	D3D10FuncNotFound                   Code = -136
	InvalidUserPrivilege                Code = -137
)

type codeEntry struct {
	name        string
	description string
}

var codeTable = map[Code]codeEntry{
	OK:                                  {"NVAPI_OK", "success"},
	Error:                               {"NVAPI_ERROR", "generic error"},
	LibraryNotFound:                     {"NVAPI_LIBRARY_NOT_FOUND", "driver library not found"},
	NoImplementation:                    {"NVAPI_NO_IMPLEMENTATION", "not implemented in current driver installation"},
	APINotInitialized:                   {"NVAPI_API_NOT_INITIALIZED", "Initialize has not been called or failed"},
	InvalidArgument:                     {"NVAPI_INVALID_ARGUMENT", "invalid argument"},
	NvidiaDeviceNotFound:                {"NVAPI_NVIDIA_DEVICE_NOT_FOUND", "no NVIDIA display driver or GPU found"},
	EndEnumeration:                      {"NVAPI_END_ENUMERATION", "no more items to enumerate"},
	InvalidHandle:                       {"NVAPI_INVALID_HANDLE", "invalid handle"},
	IncompatibleStructVersion:           {"NVAPI_INCOMPATIBLE_STRUCT_VERSION", "structure version is not supported by the driver"},
	HandleInvalidated:                   {"NVAPI_HANDLE_INVALIDATED", "handle is no longer valid, likely after a mode switch or hotplug"},
	OpenGLContextNotCurrent:             {"NVAPI_OPENGL_CONTEXT_NOT_CURRENT", "no OpenGL context is current in the calling thread"},
	NoGLExpert:                          {"NVAPI_NO_GL_EXPERT", "OpenGL expert mode is not available"},
	InstrumentationDisabled:             {"NVAPI_INSTRUMENTATION_DISABLED", "OpenGL expert mode is disabled"},
	InvalidPointer:                      {"NVAPI_INVALID_POINTER", "invalid pointer"},
	ExpectedLogicalGPUHandle:            {"NVAPI_EXPECTED_LOGICAL_GPU_HANDLE", "expected a logical GPU handle"},
	ExpectedPhysicalGPUHandle:           {"NVAPI_EXPECTED_PHYSICAL_GPU_HANDLE", "expected a physical GPU handle"},
	ExpectedDisplayHandle:               {"NVAPI_EXPECTED_DISPLAY_HANDLE", "expected a display handle"},
	InvalidCombination:                  {"NVAPI_INVALID_COMBINATION", "combination of parameters is not valid"},
	NotSupported:                        {"NVAPI_NOT_SUPPORTED", "requested feature is not supported"},
	PortIDNotFound:                      {"NVAPI_PORTID_NOT_FOUND", "no port id found for the I2C transaction"},
	ExpectedUnattachedDisplayHandle:     {"NVAPI_EXPECTED_UNATTACHED_DISPLAY_HANDLE", "expected an unattached display handle"},
	InvalidPerfLevel:                    {"NVAPI_INVALID_PERF_LEVEL", "invalid performance level"},
	DeviceBusy:                          {"NVAPI_DEVICE_BUSY", "device is busy, request not fulfilled"},
	PersistFileNotFound:                 {"NVAPI_NV_PERSIST_FILE_NOT_FOUND", "persist file not found"},
	PersistDataNotFound:                 {"NVAPI_PERSIST_DATA_NOT_FOUND", "persist data not found"},
	ExpectedTVDisplay:                   {"NVAPI_EXPECTED_TV_DISPLAY", "expected a TV output display"},
	ExpectedTVDisplayOnDConnector:       {"NVAPI_EXPECTED_TV_DISPLAY_ON_DCONNECTOR", "expected a TV output on the D connector"},
	NoActiveSLITopology:                 {"NVAPI_NO_ACTIVE_SLI_TOPOLOGY", "SLI is not active on this device"},
	SLIRenderingModeNotAllowed:          {"NVAPI_SLI_RENDERING_MODE_NOTALLOWED", "setting of SLI rendering mode is not allowed"},
	ExpectedDigitalFlatPanel:            {"NVAPI_EXPECTED_DIGITAL_FLAT_PANEL", "expected a digital flat panel"},
	ArgumentExceedMaxSize:               {"NVAPI_ARGUMENT_EXCEED_MAX_SIZE", "argument exceeds the expected size"},
	DeviceSwitchingNotAllowed:           {"NVAPI_DEVICE_SWITCHING_NOT_ALLOWED", "inhibit is on due to one of the flags"},
	TestingClocksNotSupported:           {"NVAPI_TESTING_CLOCKS_NOT_SUPPORTED", "testing clocks is not supported"},
	UnknownUnderscanConfig:              {"NVAPI_UNKNOWN_UNDERSCAN_CONFIG", "the specified underscan config is from an unknown source"},
	TimeoutReconfiguringGPUTopo:         {"NVAPI_TIMEOUT_RECONFIGURING_GPU_TOPO", "timeout while reconfiguring GPUs"},
	DataNotFound:                        {"NVAPI_DATA_NOT_FOUND", "requested data was not found"},
	ExpectedAnalogDisplay:               {"NVAPI_EXPECTED_ANALOG_DISPLAY", "expected an analog display"},
	NoVidlink:                           {"NVAPI_NO_VIDLINK", "no SLI video bridge is present"},
	RequiresReboot:                      {"NVAPI_REQUIRES_REBOOT", "the change takes effect after a reboot"},
	InvalidHybridMode:                   {"NVAPI_INVALID_HYBRID_MODE", "the function is not supported in this hybrid mode"},
	MixedTargetTypes:                    {"NVAPI_MIXED_TARGET_TYPES", "the target types are not all the same"},
	SYSWOW64NotSupported:                {"NVAPI_SYSWOW64_NOT_SUPPORTED", "the function is not supported from a 32-bit process on a 64-bit OS"},
	ImplicitSetGPUTopologyNotAllowed:    {"NVAPI_IMPLICIT_SET_GPU_TOPOLOGY_CHANGE_NOT_ALLOWED", "implicit GPU topology changes are not allowed"},
	RequestUserToCloseNonMigratableApps: {"NVAPI_REQUEST_USER_TO_CLOSE_NON_MIGRATABLE_APPS", "non-migratable applications must be closed first"},
	OutOfMemory:                         {"NVAPI_OUT_OF_MEMORY", "could not allocate sufficient memory"},
	WasStillDrawing:                     {"NVAPI_WAS_STILL_DRAWING", "the device is still drawing"},
	FileNotFound:                        {"NVAPI_FILE_NOT_FOUND", "file not found"},
	TooManyUniqueStateObjects:           {"NVAPI_TOO_MANY_UNIQUE_STATE_OBJECTS", "too many unique state objects"},
	InvalidCall:                         {"NVAPI_INVALID_CALL", "the method call is invalid"},
	D3D10DLLNotFound:                    {"NVAPI_D3D10_1_LIBRARY_NOT_FOUND", "d3d10_1.dll cannot be loaded"},
	D3D10FuncNotFound:                   {"NVAPI_FUNCTION_NOT_FOUND", "function not found in the loaded library"},
	InvalidUserPrivilege:                {"NVAPI_INVALID_USER_PRIVILEGE", "the current user lacks the required privilege"},
}

// Codes returns every code in the description table, ordered from zero downwards.
func Codes() []Code {
	out := make([]Code, 0, len(codeTable))
	for c := range codeTable {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
