package nativetest

import (
	"testing"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

func TestDriver(t *testing.T) {
	d := New().Handle(resolver.GetDVCInfo, func(c *Call) status.Code {
		if err := c.Buffer(2).SetU32(c.U32(1) + 1); err != nil {
			return status.Error
		}
		return status.OK
	})
	r := resolver.New(d)

	h, err := r.Resolve(resolver.GetDVCInfo)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	out, err := marshal.NewU32(marshal.NewHeapAllocator(), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()

	code, err := d.Invoke(h, native.Word(0), native.U32(41), native.Ptr(out))
	if err != nil || code != status.OK {
		t.Fatalf("Invoke = %v, %v", code, err)
	}
	if v, _ := out.U32(); v != 42 {
		t.Errorf("out = %d", v)
	}
	if d.Calls(resolver.GetDVCInfo) != 1 || d.Queries(resolver.GetDVCInfo) != 1 {
		t.Error("call accounting is wrong")
	}

	if _, err := r.Resolve(resolver.SetDVCLevel); !errors.IsKind(err, errors.KindEntryPointNotFound) {
		t.Errorf("unexported id: %v", err)
	}
}

func TestDriver_ReleasedArgument(t *testing.T) {
	d := New().Status(resolver.Unload, status.OK)
	buf, _ := marshal.NewU32(marshal.NewHeapAllocator(), 0)
	buf.Release()

	h := resolver.Handle{ID: resolver.Unload, Addr: uintptr(resolver.Unload)}
	if _, err := d.Invoke(h, native.Ptr(buf)); !errors.IsKind(err, errors.KindReleased) {
		t.Errorf("got %v", err)
	}
}
