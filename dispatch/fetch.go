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

// CountArgs builds the arguments of a count-then-fetch call from the
// in/out count parameter and the array buffer, which is nil for the probe.
type CountArgs func(count *marshal.Buffer, arr *marshal.Buffer) []native.Arg

// FetchAll runs the two-phase count-then-fetch protocol. The probe call
// passes a null array to learn the count; a count of zero returns an empty
// slice without a second call. Each candidate then gets an array of count
// tagged slots. When the driver reports a different count than the array
// holds, the array is released and the call retried once with exactly the
// reported count. A second mismatch fails with KindCountChanged.
func FetchAll[T marshal.Struct](d *Dispatcher, id resolver.FunctionID, set registry.CandidateSet[T], args CountArgs) ([]T, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return nil, err
	}

	countBuf, err := marshal.NewU32(d.alloc, 0)
	if err != nil {
		return nil, err
	}
	defer countBuf.Release()

	res, err := d.invoke(h, args(countBuf, nil))
	if err != nil {
		return nil, err
	}
	if err := requireOk(h.Name, res); err != nil {
		return nil, err
	}
	count, err := countBuf.U32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []T{}, nil
	}

	for i := 0; i < set.Len(); i++ {
		ctor, layout := set.Candidate(i)
		items, res, err := fetchCandidate(d, h, ctor, layout, countBuf, count, args)
		if err != nil {
			return nil, err
		}
		if res.Ok() {
			return items, nil
		}
		if !res.IncompatibleVersion() {
			return nil, requireOk(h.Name, res)
		}
		Logger().Debug("layout rejected",
			zap.String("function", h.Name),
			zap.String("layout", layout.Name))
	}
	unsupported := errors.UnsupportedOperation(string(set.Kind()), set.Len())
	unsupported.Function = h.Name
	return nil, unsupported
}

// fetchCandidate fetches with one layout, retrying in place once when the
// count changed between calls.
func fetchCandidate[T marshal.Struct](d *Dispatcher, h resolver.Handle, ctor func() T, layout *marshal.Layout, countBuf *marshal.Buffer, capacity uint32, args CountArgs) ([]T, status.Result, error) {
	items, reported, res, err := fetchOnce(d, h, ctor, layout, countBuf, capacity, args)
	if err != nil || !res.Ok() || reported == capacity {
		return items, res, err
	}

	Logger().Debug("count changed, retrying",
		zap.String("function", h.Name),
		zap.Uint32("capacity", capacity),
		zap.Uint32("reported", reported))
	if reported == 0 {
		return []T{}, res, nil
	}

	items, again, res, err := fetchOnce(d, h, ctor, layout, countBuf, reported, args)
	if err != nil || !res.Ok() {
		return nil, res, err
	}
	if again != reported {
		return nil, res, errors.CountChanged(h.Name, reported, again)
	}
	return items, res, nil
}

// fetchOnce allocates an array of capacity slots, calls and decodes. The
// array is released before returning, so a retry never holds two arrays.
// Items are only decoded when the reported count equals capacity.
func fetchOnce[T marshal.Struct](d *Dispatcher, h resolver.Handle, ctor func() T, layout *marshal.Layout, countBuf *marshal.Buffer, capacity uint32, args CountArgs) ([]T, uint32, status.Result, error) {
	arr, err := marshal.NewArray(d.alloc, layout, capacity)
	if err != nil {
		return nil, 0, status.Result{}, err
	}
	defer arr.Release()

	if err := countBuf.SetU32(capacity); err != nil {
		return nil, 0, status.Result{}, err
	}
	res, err := d.invoke(h, args(countBuf, arr))
	if err != nil || !res.Ok() {
		return nil, 0, res, err
	}
	reported, err := countBuf.U32()
	if err != nil {
		return nil, 0, res, err
	}
	if reported != capacity {
		return nil, reported, res, nil
	}
	items, err := marshal.DecodeArray(arr, capacity, ctor)
	if err != nil {
		return nil, reported, res, err
	}
	return items, reported, res, nil
}
