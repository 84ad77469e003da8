package dispatch

import (
	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/resolver"
)

// MaxEnumeration bounds index-driven enumerations.
const MaxEnumeration = 1024

// Enumeration describes one index-driven enumeration: the out parameter
// allocated per index, the call arguments and how to read an item.
type Enumeration[R any] struct {
	Out  func(alloc nvapi.Allocator) (*marshal.Buffer, error)
	Args func(index uint32, out *marshal.Buffer) []native.Arg
	Read func(out *marshal.Buffer) (R, error)
}

// Enumerate calls id with index 0, 1, 2 and so on until the driver returns
// EndEnumeration, and returns every item collected. EndEnumeration is the
// normal end and never an error.
func Enumerate[R any](d *Dispatcher, id resolver.FunctionID, e Enumeration[R]) ([]R, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return nil, err
	}

	var items []R
	for index := uint32(0); index < MaxEnumeration; index++ {
		item, done, err := enumerateOne(d, h, index, e)
		if err != nil {
			return nil, err
		}
		if done {
			if items == nil {
				items = []R{}
			}
			return items, nil
		}
		items = append(items, item)
	}
	return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidData).
		Function(h.Name).Detail("enumeration did not end after %d items", MaxEnumeration).Build()
}

func enumerateOne[R any](d *Dispatcher, h resolver.Handle, index uint32, e Enumeration[R]) (R, bool, error) {
	var zero R
	out, err := e.Out(d.alloc)
	if err != nil {
		return zero, false, err
	}
	defer out.Release()

	res, err := d.invoke(h, e.Args(index, out))
	if err != nil {
		return zero, false, err
	}
	if res.Done() {
		return zero, true, nil
	}
	if err := requireOk(h.Name, res); err != nil {
		return zero, false, err
	}
	item, err := e.Read(out)
	return item, false, err
}

// EnumerateHandles enumerates driver handles of the form
// fn(index, &handle).
func EnumerateHandles(d *Dispatcher, id resolver.FunctionID) ([]uintptr, error) {
	return Enumerate(d, id, Enumeration[uintptr]{
		Out: func(alloc nvapi.Allocator) (*marshal.Buffer, error) {
			return marshal.NewWord(alloc, 0)
		},
		Args: func(index uint32, out *marshal.Buffer) []native.Arg {
			return []native.Arg{native.U32(index), native.Ptr(out)}
		},
		Read: func(out *marshal.Buffer) (uintptr, error) {
			return out.Word()
		},
	})
}

// FetchHandles calls fn(handles[capacity], &count) and returns the first
// count handles.
func FetchHandles(d *Dispatcher, id resolver.FunctionID, capacity uint32) ([]uintptr, error) {
	h, err := d.res.Resolve(id)
	if err != nil {
		return nil, err
	}
	arr, err := marshal.NewWords(d.alloc, capacity)
	if err != nil {
		return nil, err
	}
	defer arr.Release()
	countBuf, err := marshal.NewU32(d.alloc, 0)
	if err != nil {
		return nil, err
	}
	defer countBuf.Release()

	res, err := d.invoke(h, []native.Arg{native.Ptr(arr), native.Ptr(countBuf)})
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
	if count > capacity {
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{h.Name}, int(count), int(capacity))
	}
	out := make([]uintptr, count)
	for i := range out {
		if out[i], err = arr.WordAt(uint32(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
