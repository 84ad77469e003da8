package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // entry point lookup
	PhaseRegistry Phase = "registry" // candidate set construction and lookup
	PhaseEncode   Phase = "encode"   // Go to native buffer
	PhaseDecode   Phase = "decode"   // native buffer to Go
	PhaseDispatch Phase = "dispatch" // version negotiation
	PhaseNative   Phase = "native"   // native call and memory access
	PhaseLoad     Phase = "load"     // driver module loading
	PhaseValidate Phase = "validate" // caller input validation
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch       Kind = "type_mismatch"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindInvalidData        Kind = "invalid_data"
	KindUnsupported        Kind = "unsupported"
	KindAllocation         Kind = "allocation"
	KindFieldUnknown       Kind = "field_unknown"
	KindOverflow           Kind = "overflow"
	KindNilPointer         Kind = "nil_pointer"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindRegistration       Kind = "registration"
	KindEntryPointNotFound Kind = "entry_point_not_found"
	KindNativeFailure      Kind = "native_failure"
	KindVersionMismatch    Kind = "version_mismatch"
	KindCountChanged       Kind = "count_changed"
	KindReleased           Kind = "released"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	Layout   string
	Function string
	Detail   string
	Path     []string
	Status   int32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Function != "" {
		b.WriteString(" in ")
		b.WriteString(e.Function)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Layout != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Layout != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", layout ")
			b.WriteString(e.Layout)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("layout ")
			b.WriteString(e.Layout)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Layout != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// StatusOf extracts the native status code carried by a native failure in err's chain.
func StatusOf(err error) (int32, bool) {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return 0, false
		}
		if e.Kind == KindNativeFailure {
			return e.Status, true
		}
		err = e.Cause
	}
	return 0, false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Layout sets the native layout name
func (b *Builder) Layout(name string) *Builder {
	b.err.Layout = name
	return b
}

// Function sets the native entry point name
func (b *Builder) Function(name string) *Builder {
	b.err.Function = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, layout string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Layout: layout,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, layout, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   []string{fieldName},
		Layout: layout,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a registry construction error
func Registration(kind, detail string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s: %s", kind, detail),
	}
}

// Load creates a driver module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Domain constructors for the negotiation core

// EntryPointNotFound reports that the driver does not export a function.
func EntryPointNotFound(function string, id uint32) *Error {
	return &Error{
		Phase:    PhaseResolve,
		Kind:     KindEntryPointNotFound,
		Function: function,
		Detail:   fmt.Sprintf("driver does not export function id 0x%08X", id),
		Value:    id,
	}
}

// UnsupportedOperation reports that no candidate layout was accepted or registered.
func UnsupportedOperation(operation string, tried int) *Error {
	detail := fmt.Sprintf("operation %q is not supported", operation)
	if tried > 0 {
		detail = fmt.Sprintf("operation %q is not supported: driver rejected %d layout(s)", operation, tried)
	}
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindUnsupported,
		Detail: detail,
	}
}

// NativeFailure reports a non-Ok native status.
func NativeFailure(function string, status int32, description string) *Error {
	return &Error{
		Phase:    PhaseNative,
		Kind:     KindNativeFailure,
		Function: function,
		Status:   status,
		Detail:   fmt.Sprintf("status %d: %s", status, description),
		Value:    status,
	}
}

// VersionMismatch reports a buffer whose version tag does not match the expected layout.
func VersionMismatch(layout string, want, got uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindVersionMismatch,
		Layout: layout,
		Detail: fmt.Sprintf("version tag 0x%08X, want 0x%08X", got, want),
		Value:  got,
	}
}

// CountChanged reports that a count-then-fetch call kept changing its count.
func CountChanged(function string, capacity, reported uint32) *Error {
	return &Error{
		Phase:    PhaseDispatch,
		Kind:     KindCountChanged,
		Function: function,
		Detail:   fmt.Sprintf("driver reported %d entries for a buffer of %d after retry", reported, capacity),
		Value:    reported,
	}
}

// Released reports access to a buffer after it was released.
func Released(what string) *Error {
	return &Error{
		Phase:  PhaseNative,
		Kind:   KindReleased,
		Detail: fmt.Sprintf("%s used after release", what),
	}
}

// MissingEntryPointsError is returned when a capability probe finds functions
// the loaded driver does not export.
type MissingEntryPointsError struct {
	Functions []string
}

// NewMissingEntryPointsError creates an error from native function names.
func NewMissingEntryPointsError(functions []string) *MissingEntryPointsError {
	return &MissingEntryPointsError{Functions: append([]string(nil), functions...)}
}

// functionGroup returns the API group of a native function name,
// e.g. "DISP" for NvAPI_DISP_GetDisplayConfig.
func functionGroup(name string) string {
	rest, ok := strings.CutPrefix(name, "NvAPI_")
	if !ok {
		return "other"
	}
	group, _, found := strings.Cut(rest, "_")
	if !found {
		return "core"
	}
	return group
}

func (e *MissingEntryPointsError) Error() string {
	if len(e.Functions) == 0 {
		return "[resolve] entry_point_not_found: no functions specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "driver is missing %d function(s):\n", len(e.Functions))

	byGroup := make(map[string][]string)
	var order []string
	for _, fn := range e.Functions {
		g := functionGroup(fn)
		if _, exists := byGroup[g]; !exists {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], fn)
	}

	for _, g := range order {
		b.WriteString("\n  ")
		b.WriteString(g)
		b.WriteString(":\n")
		for _, fn := range byGroup[g] {
			b.WriteString("    - ")
			b.WriteString(fn)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingEntryPointsError) Is(target error) bool {
	_, ok := target.(*MissingEntryPointsError)
	return ok
}
