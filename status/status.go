// Package status classifies native driver status codes.
//
// Zero is success, EndEnumeration marks the normal end of an index-driven
// enumeration, and every other code is a failure carrying a description
// from the static table in codes.go.
package status

import (
	"fmt"

	"github.com/wippyai/nvapi/errors"
)

// Code is a native status code as returned by every driver entry point.
type Code int32

// String returns the symbolic name of the code.
func (c Code) String() string {
	if e, ok := codeTable[c]; ok {
		return e.name
	}
	return fmt.Sprintf("NVAPI_STATUS(%d)", int32(c))
}

// Describe returns the human-readable description of a code.
func Describe(c Code) string {
	if e, ok := codeTable[c]; ok {
		return e.description
	}
	return "unknown status"
}

// ResultKind classifies a translated status.
type ResultKind uint8

const (
	ResultOk ResultKind = iota
	ResultEndOfEnumeration
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "ok"
	case ResultEndOfEnumeration:
		return "end_of_enumeration"
	default:
		return "failure"
	}
}

// Result is the classified outcome of one native call.
type Result struct {
	Kind ResultKind
	Code Code
}

// Translate classifies a native status code.
func Translate(code Code) Result {
	switch code {
	case OK:
		return Result{Kind: ResultOk, Code: code}
	case EndEnumeration:
		return Result{Kind: ResultEndOfEnumeration, Code: code}
	default:
		return Result{Kind: ResultFailure, Code: code}
	}
}

// Ok reports whether the call succeeded.
func (r Result) Ok() bool { return r.Kind == ResultOk }

// Done reports whether an enumeration reached its end.
func (r Result) Done() bool { return r.Kind == ResultEndOfEnumeration }

// IncompatibleVersion reports whether the driver rejected the structure version.
func (r Result) IncompatibleVersion() bool {
	return r.Kind == ResultFailure && r.Code == IncompatibleStructVersion
}

// Description returns the table description of the result code.
func (r Result) Description() string { return Describe(r.Code) }

// Err converts a failure into a native failure error attributed to function.
// Ok and EndOfEnumeration return nil.
func (r Result) Err(function string) error {
	if r.Kind != ResultFailure {
		return nil
	}
	return errors.NativeFailure(function, int32(r.Code), Describe(r.Code))
}

func (r Result) String() string {
	if r.Kind == ResultFailure {
		return fmt.Sprintf("failure(%s)", r.Code)
	}
	return r.Kind.String()
}
