// Package dispatch implements the calling protocols shared by every
// versioned driver entry point.
//
// Negotiate tries the candidate layouts of an operation newest first until
// the driver stops answering IncompatibleStructVersion. FetchAll is the
// two-phase count-then-fetch protocol used for variable-length arrays.
// Enumerate walks index-driven enumerations until EndEnumeration. Exchange
// and Exec cover single-version and scalar calls.
//
// Every buffer is released before the protocol function returns, on every
// path. Values returned to callers are plain Go values and hold no native
// memory.
package dispatch
