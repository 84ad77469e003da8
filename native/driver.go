package native

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// QuerySymbol is the single symbol the driver module exports.
const QuerySymbol = "nvapi_QueryInterface"

// Driver calls into the loaded driver module through purego.
type Driver struct {
	path  string
	lib   uintptr
	query uintptr
	owned bool
	mu    sync.RWMutex
}

// Open loads the driver module at path. An empty path uses DefaultLibrary.
func Open(path string) (*Driver, error) {
	if path == "" {
		path = DefaultLibrary()
	}
	lib, err := openLibrary(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	d, err := fromHandle(lib, path)
	if err != nil {
		_ = closeLibrary(lib)
		return nil, err
	}
	d.owned = true
	Logger().Info("driver module loaded", zap.String("path", path))
	return d, nil
}

// FromHandle wraps a module the host already loaded. Close on the returned
// Driver does not unload it.
func FromHandle(lib uintptr) (*Driver, error) {
	return fromHandle(lib, "")
}

func fromHandle(lib uintptr, path string) (*Driver, error) {
	if lib == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "module handle is zero")
	}
	query, err := symbol(lib, QuerySymbol)
	if err != nil {
		return nil, errors.Load("resolve "+QuerySymbol, err)
	}
	if query == 0 {
		return nil, errors.Load(QuerySymbol+" not exported", nil)
	}
	return &Driver{path: path, lib: lib, query: query}, nil
}

// Path is the module path passed to Open, empty for FromHandle drivers.
func (d *Driver) Path() string { return d.path }

// QueryInterface returns the entry point for id, or 0.
func (d *Driver) QueryInterface(id uint32) uintptr {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.query == 0 {
		return 0
	}
	addr, _, _ := purego.SyscallN(d.query, uintptr(id))
	return addr
}

// Invoke calls the entry point with args and returns its status. Handles
// resolved before Close point into the unloaded module, so calls after
// Close fail without reaching them. Close waits for calls in flight.
func (d *Driver) Invoke(h resolver.Handle, args ...Arg) (status.Code, error) {
	if h.Addr == 0 {
		return 0, errors.EntryPointNotFound(h.Name, uint32(h.ID))
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lib == 0 {
		err := errors.Load("driver module is closed", nil)
		err.Function = h.Name
		return 0, err
	}
	w, err := words(h, args)
	if err != nil {
		return 0, err
	}
	r1, _, _ := purego.SyscallN(h.Addr, w...)
	runtime.KeepAlive(args)

	code := status.Code(int32(r1))
	if code != status.OK {
		Logger().Debug("native call returned status",
			zap.String("function", h.Name),
			zap.Int32("status", int32(code)))
	}
	return code, nil
}

// Close unloads the module if Open loaded it.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.owned || d.lib == 0 {
		return nil
	}
	err := closeLibrary(d.lib)
	d.lib, d.query = 0, 0
	if err != nil {
		return errors.Load("close "+d.path, err)
	}
	return nil
}
