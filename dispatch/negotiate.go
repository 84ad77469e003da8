package dispatch

import (
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// Negotiate tries each candidate of set, newest first. For every candidate
// it builds a value, lets prepare fill in request fields, encodes it and
// calls id with the arguments built by args. IncompatibleStructVersion
// moves on to the next candidate, any other failure stops with that
// status, and Ok decodes the buffer and returns. When every candidate is
// rejected the result is an UnsupportedOperation error.
func Negotiate[T marshal.Struct](d *Dispatcher, id resolver.FunctionID, set registry.CandidateSet[T], prepare func(T) error, args func(buf *marshal.Buffer) []native.Arg) (T, error) {
	var zero T
	h, err := d.res.Resolve(id)
	if err != nil {
		return zero, err
	}

	for i := 0; i < set.Len(); i++ {
		ctor, layout := set.Candidate(i)
		v, res, err := attempt(d, h, ctor, prepare, args)
		if err != nil {
			return zero, err
		}
		switch {
		case res.Ok():
			Logger().Debug("layout accepted",
				zap.String("function", h.Name),
				zap.String("layout", layout.Name))
			return v, nil
		case res.IncompatibleVersion():
			Logger().Debug("layout rejected",
				zap.String("function", h.Name),
				zap.String("layout", layout.Name))
		default:
			return zero, requireOk(h.Name, res)
		}
	}
	unsupported := errors.UnsupportedOperation(string(set.Kind()), set.Len())
	unsupported.Function = h.Name
	return zero, unsupported
}

func attempt[T marshal.Struct](d *Dispatcher, h resolver.Handle, ctor func() T, prepare func(T) error, args func(*marshal.Buffer) []native.Arg) (T, status.Result, error) {
	var zero T
	v := ctor()
	if prepare != nil {
		if err := prepare(v); err != nil {
			return zero, status.Result{}, err
		}
	}
	buf, err := marshal.Encode(d.alloc, v)
	if err != nil {
		return zero, status.Result{}, err
	}
	defer buf.Release()

	res, err := d.invoke(h, args(buf))
	if err != nil || !res.Ok() {
		return zero, res, err
	}
	out, err := marshal.Decode(buf, ctor)
	if err != nil {
		return zero, res, err
	}
	return out, res, nil
}
