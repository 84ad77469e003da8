// Package native loads the driver module and calls its entry points.
//
// The module exports one symbol, nvapi_QueryInterface, which maps interface
// ids to function addresses. Driver resolves it with purego (dlopen on unix,
// LoadDLL on windows) and performs every call with purego.SyscallN, so no
// cgo is needed. Arguments are machine words; buffers are passed by their
// pinned address.
//
// Tests use nativetest.Driver, an in-process fake with the same Invoker
// interface.
package native
