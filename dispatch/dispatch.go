package dispatch

import (
	"go.uber.org/zap"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// Dispatcher runs native calls and the version negotiation protocols on top
// of them. It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	res   *resolver.Resolver
	inv   native.Invoker
	alloc nvapi.Allocator
}

// New creates a dispatcher whose resolver queries inv. A nil allocator
// uses marshal.HeapAllocator.
func New(inv native.Invoker, alloc nvapi.Allocator) *Dispatcher {
	return NewWithResolver(resolver.New(inv), inv, alloc)
}

// NewWithResolver creates a dispatcher sharing an existing resolver cache.
func NewWithResolver(res *resolver.Resolver, inv native.Invoker, alloc nvapi.Allocator) *Dispatcher {
	if alloc == nil {
		alloc = marshal.NewHeapAllocator()
	}
	return &Dispatcher{res: res, inv: inv, alloc: alloc}
}

func (d *Dispatcher) Resolver() *resolver.Resolver { return d.res }

func (d *Dispatcher) Allocator() nvapi.Allocator { return d.alloc }

// Call resolves id, invokes it and classifies the status.
func (d *Dispatcher) Call(id resolver.FunctionID, args ...native.Arg) (status.Result, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return status.Result{}, err
	}
	return d.invoke(h, args)
}

func (d *Dispatcher) invoke(h resolver.Handle, args []native.Arg) (status.Result, error) {
	code, err := d.inv.Invoke(h, args...)
	if err != nil {
		return status.Result{}, err
	}
	res := status.Translate(code)
	Logger().Debug("native call",
		zap.String("function", h.Name),
		zap.Stringer("result", res))
	return res, nil
}

// Exec runs a call that must return Ok.
func (d *Dispatcher) Exec(id resolver.FunctionID, args ...native.Arg) error {
	res, err := d.Call(id, args...)
	if err != nil {
		return err
	}
	return requireOk(id.String(), res)
}

// requireOk fails on anything but Ok. EndEnumeration outside an
// enumeration is a failure.
func requireOk(function string, res status.Result) error {
	if res.Ok() {
		return nil
	}
	return errors.NativeFailure(function, int32(res.Code), res.Description())
}

// Exchange encodes v, calls id and decodes the buffer back into a new value
// built by ctor. It serves set-style calls whose driver side also writes
// the struct.
func Exchange[T marshal.Struct](d *Dispatcher, id resolver.FunctionID, v T, ctor func() T, args func(buf *marshal.Buffer) []native.Arg) (T, error) {
	var zero T
	h, err := d.res.Resolve(id)
	if err != nil {
		return zero, err
	}
	buf, err := marshal.Encode(d.alloc, v)
	if err != nil {
		return zero, err
	}
	defer buf.Release()

	res, err := d.invoke(h, args(buf))
	if err != nil {
		return zero, err
	}
	if err := requireOk(h.Name, res); err != nil {
		return zero, err
	}
	return marshal.Decode(buf, ctor)
}

// ExchangeArray is Exchange for a contiguous array of values.
func ExchangeArray[T marshal.Struct](d *Dispatcher, id resolver.FunctionID, vs []T, ctor func() T, args func(count uint32, arr *marshal.Buffer) []native.Arg) ([]T, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return nil, err
	}
	arr, err := marshal.EncodeArray(d.alloc, vs)
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	res, err := d.invoke(h, args(arr.Count(), arr))
	if err != nil {
		return nil, err
	}
	if err := requireOk(h.Name, res); err != nil {
		return nil, err
	}
	return marshal.DecodeArray(arr, arr.Count(), ctor)
}

// ExchangeCounted is ExchangeArray for calls that also take the array
// length as an in/out count parameter. When the driver writes back a count
// other than len(vs) nothing is decoded and the call fails with
// KindCountChanged, so slots the driver no longer fills are never returned.
func ExchangeCounted[T marshal.Struct](d *Dispatcher, id resolver.FunctionID, vs []T, ctor func() T, args CountArgs) ([]T, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return nil, err
	}
	arr, err := marshal.EncodeArray(d.alloc, vs)
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	countBuf, err := marshal.NewU32(d.alloc, arr.Count())
	if err != nil {
		return nil, err
	}
	defer countBuf.Release()

	res, err := d.invoke(h, args(countBuf, arr))
	if err != nil {
		return nil, err
	}
	if err := requireOk(h.Name, res); err != nil {
		return nil, err
	}
	reported, err := countBuf.U32()
	if err != nil {
		return nil, err
	}
	if reported != arr.Count() {
		return nil, errors.CountChanged(h.Name, arr.Count(), reported)
	}
	return marshal.DecodeArray(arr, reported, ctor)
}
