package dispatch

import (
	"testing"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native/nativetest"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

const enumID = resolver.EnumNvidiaDisplayHandle

func handleEnumerator(n uint32, last status.Code) *nativetest.Driver {
	return nativetest.New().Handle(enumID, func(c *nativetest.Call) status.Code {
		index := c.U32(0)
		if index >= n {
			return last
		}
		if err := c.Buffer(1).SetWord(uintptr(0x100 + index)); err != nil {
			return status.Error
		}
		return status.OK
	})
}

func TestEnumerateHandles(t *testing.T) {
	alloc := marshal.NewTrackingAllocator(nil)
	d := New(handleEnumerator(3, status.EndEnumeration), alloc)

	handles, err := EnumerateHandles(d, enumID)
	if err != nil {
		t.Fatalf("EnumerateHandles failed: %v", err)
	}
	want := []uintptr{0x100, 0x101, 0x102}
	if len(handles) != len(want) {
		t.Fatalf("handles = %v", handles)
	}
	for i := range want {
		if handles[i] != want[i] {
			t.Errorf("handle %d = %#x, want %#x", i, handles[i], want[i])
		}
	}
	if alloc.Live() != 0 {
		t.Errorf("live = %d", alloc.Live())
	}
}

func TestEnumerateHandles_Empty(t *testing.T) {
	d := New(handleEnumerator(0, status.EndEnumeration), nil)
	handles, err := EnumerateHandles(d, enumID)
	if err != nil || handles == nil || len(handles) != 0 {
		t.Errorf("got %v, %v", handles, err)
	}
}

func TestEnumerateHandles_Failure(t *testing.T) {
	d := New(handleEnumerator(2, status.NvidiaDeviceNotFound), nil)
	handles, err := EnumerateHandles(d, enumID)
	if !errors.IsKind(err, errors.KindNativeFailure) {
		t.Errorf("got %v", err)
	}
	if handles != nil {
		t.Errorf("partial result returned: %v", handles)
	}
}

func TestEnumerate_Unbounded(t *testing.T) {
	d := New(handleEnumerator(MaxEnumeration+1, status.EndEnumeration), nil)
	if _, err := EnumerateHandles(d, enumID); !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("got %v", err)
	}
}

func TestFetchHandles(t *testing.T) {
	drv := nativetest.New().Handle(resolver.EnumPhysicalGPUs, func(c *nativetest.Call) status.Code {
		arr := c.Buffer(0)
		for i := uint32(0); i < 2; i++ {
			if err := arr.SetWordAt(i, uintptr(0xA0+i)); err != nil {
				return status.Error
			}
		}
		if err := c.Buffer(1).SetU32(2); err != nil {
			return status.Error
		}
		return status.OK
	})
	d := New(drv, nil)

	gpus, err := FetchHandles(d, resolver.EnumPhysicalGPUs, 64)
	if err != nil {
		t.Fatalf("FetchHandles failed: %v", err)
	}
	if len(gpus) != 2 || gpus[1] != 0xA1 {
		t.Errorf("gpus = %v", gpus)
	}
}
