// Package errors provides structured error types for the nvapi module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go type and native layout
// names, the native function involved, the native status code and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindOverflow).
//		Path("colorFormat").
//		Layout("NV_COLOR_DATA_V5").
//		Detail("value does not fit u8").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.EntryPointNotFound("NvAPI_Disp_ColorControl", 0x92F9D80D)
//	err := errors.NativeFailure("NvAPI_GPU_GetMemoryInfo", -104, "not supported")
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on Kind alone and StatusOf recovers the native status code.
package errors
