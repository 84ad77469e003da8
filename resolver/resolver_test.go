package resolver

import (
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/nvapi/errors"
)

type countingLookup struct {
	exports map[uint32]uintptr
	calls   atomic.Int32
}

func (c *countingLookup) QueryInterface(id uint32) uintptr {
	c.calls.Add(1)
	return c.exports[id]
}

func TestResolve(t *testing.T) {
	lookup := &countingLookup{exports: map[uint32]uintptr{
		uint32(Initialize):        0x1000,
		uint32(GPU_GetMemoryInfo): 0x2000,
	}}
	r := New(lookup)

	h, err := r.Resolve(GPU_GetMemoryInfo)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if h.Addr != 0x2000 || h.ID != GPU_GetMemoryInfo || h.Name != "NvAPI_GPU_GetMemoryInfo" {
		t.Errorf("handle = %+v", h)
	}

	again, _ := r.Resolve(GPU_GetMemoryInfo)
	if again != h {
		t.Error("cached handle should be identical")
	}
	if lookup.calls.Load() != 1 {
		t.Errorf("lookups = %d, want 1", lookup.calls.Load())
	}
}

func TestResolve_NotFoundIsCached(t *testing.T) {
	lookup := &countingLookup{}
	r := New(lookup)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(Disp_HdrColorControl)
		if !errors.IsKind(err, errors.KindEntryPointNotFound) {
			t.Fatalf("got %v, want entry point not found", err)
		}
	}
	if lookup.calls.Load() != 1 {
		t.Errorf("lookups = %d, want 1", lookup.calls.Load())
	}
}

func TestResolve_Concurrent(t *testing.T) {
	lookup := &countingLookup{exports: map[uint32]uintptr{uint32(Disp_ColorControl): 0xABC}}
	r := New(lookup)

	const workers = 32
	handles := make([]Handle, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			handles[i], _ = r.Resolve(Disp_ColorControl)
		}(i)
	}
	close(start)
	wg.Wait()

	if lookup.calls.Load() != 1 {
		t.Errorf("lookups = %d, want exactly 1", lookup.calls.Load())
	}
	for i, h := range handles {
		if h != handles[0] {
			t.Errorf("handle %d = %+v, want %+v", i, h, handles[0])
		}
	}
	if s := r.Stats(); s.Lookups != 1 || s.Cached != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestMissing(t *testing.T) {
	r := New(LookupFunc(func(id uint32) uintptr {
		if FunctionID(id) == GetDVCInfo {
			return 0x10
		}
		return 0
	}))

	if err := r.Missing(GetDVCInfo); err != nil {
		t.Errorf("Missing = %v, want nil", err)
	}
	err := r.Missing(GetDVCInfo, GetDVCInfoEx, DISP_GetDisplayConfig)
	if !stderrors.Is(err, &errors.MissingEntryPointsError{}) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "NvAPI_GetDVCInfoEx") || !strings.Contains(err.Error(), "2 function(s)") {
		t.Errorf("message = %s", err)
	}
}

func TestFunctionID_String(t *testing.T) {
	if got := DISP_GetDisplayConfig.String(); got != "NvAPI_DISP_GetDisplayConfig" {
		t.Errorf("String = %q", got)
	}
	if got := FunctionID(0x12).String(); got != "NvAPI_0x00000012" {
		t.Errorf("unknown id = %q", got)
	}
	if len(Known()) != len(names) {
		t.Error("Known should list every named id")
	}
}
