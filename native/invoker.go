package native

import (
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// Invoker calls resolved driver entry points. Implementations also supply
// the query lookup the resolver caches.
type Invoker interface {
	resolver.Lookup
	Invoke(h resolver.Handle, args ...Arg) (status.Code, error)
}

// words converts args to machine words, rejecting released buffers.
func words(h resolver.Handle, args []Arg) ([]uintptr, error) {
	out := make([]uintptr, len(args))
	for i, a := range args {
		if a.buf != nil && a.buf.Released() {
			return nil, errors.New(errors.PhaseNative, errors.KindReleased).
				Function(h.Name).Detail("argument %d refers to a released buffer", i).Build()
		}
		out[i] = a.Value()
	}
	return out, nil
}
