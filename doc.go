// Package nvapi provides a Go binding core for the NVIDIA driver control API.
//
// The driver exports a single lookup symbol and hands out every other entry
// point by numeric id. Most entry points exchange fixed-size structures whose
// first field is a version tag; the driver accepts only the versions it knows,
// so callers must negotiate the layout at runtime.
//
// # Architecture Overview
//
//	nvapi/            Root package with Memory, Block and Allocator interfaces
//	├── resolver/     Entry point resolution and the function id table
//	├── registry/     Ordered candidate layouts per logical operation
//	├── marshal/      Layout descriptors, native buffers, encode and decode
//	├── dispatch/     Version negotiation and count-then-fetch protocols
//	├── status/       Native status codes and result classification
//	├── native/       Driver module loading and native calls
//	├── control/      Versioned driver structures and the Client API
//	├── errors/       Structured error types for debugging
//	├── internal/     nvctl configuration and MCP tool server
//	└── cmd/nvctl/    Command line and TUI front end
//
// # Quick Start
//
//	drv, err := native.Open(native.DefaultLibrary())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	client, err := control.New(drv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Unload()
//
//	handles, err := client.EnumDisplayHandles()
//
// # Negotiation
//
// Every multi-version operation tries its candidate layouts from newest to
// oldest. A driver answering "incompatible structure version" moves the
// dispatcher to the next candidate; any other failure is final. Callers get
// back the newest variant the driver accepted and type-switch on it.
//
// # Memory Model
//
// Native buffers are allocated per call, pinned for the duration of the call
// and released on every exit path before control returns. Decoded values are
// plain Go values; nothing returned to the caller points into native memory.
//
// # Thread Safety
//
// Client, Resolver, Registry and Dispatcher are safe for concurrent use.
// Buffers are owned by exactly one call and are never shared.
package nvapi
