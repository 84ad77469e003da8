// Package nativetest provides an in-process fake driver for tests.
//
// Handlers registered per function id play the driver's part: they read
// and write the buffers passed by address through the marshal package and
// return a status code. The fake never touches raw addresses.
package nativetest

import (
	"sync"

	"github.com/wippyai/nvapi/errors"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// Handler simulates one entry point.
type Handler func(c *Call) status.Code

// Call is one invocation seen by a Handler.
type Call struct {
	Args []native.Arg
	ID   resolver.FunctionID
	// N is the zero-based ordinal of this call among calls to ID.
	N int
}

// Buffer returns argument i as a buffer, or nil for a word or null pointer.
func (c *Call) Buffer(i int) *marshal.Buffer {
	if i >= len(c.Args) {
		return nil
	}
	return c.Args[i].Buffer()
}

// Word returns argument i as a machine word.
func (c *Call) Word(i int) uintptr {
	if i >= len(c.Args) {
		return 0
	}
	return c.Args[i].Value()
}

// U32 returns argument i truncated to 32 bits.
func (c *Call) U32(i int) uint32 { return uint32(c.Word(i)) }

// Version returns the layout version tagged in slot 0 of argument i, or 0
// when the argument is not a tagged buffer.
func (c *Call) Version(i int) uint16 {
	b := c.Buffer(i)
	if b == nil || b.Layout() == nil {
		return 0
	}
	tag, err := b.Tag(0)
	if err != nil {
		return 0
	}
	_, v := marshal.TagVersion(tag)
	return v
}

// Driver is a fake native.Invoker.
type Driver struct {
	handlers map[resolver.FunctionID]Handler
	calls    map[resolver.FunctionID]int
	queries  map[resolver.FunctionID]int
	order    []resolver.FunctionID
	mu       sync.Mutex
}

var _ native.Invoker = (*Driver)(nil)

// New returns a driver that exports nothing.
func New() *Driver {
	return &Driver{
		handlers: make(map[resolver.FunctionID]Handler),
		calls:    make(map[resolver.FunctionID]int),
		queries:  make(map[resolver.FunctionID]int),
	}
}

// Handle exports id, served by h.
func (d *Driver) Handle(id resolver.FunctionID, h Handler) *Driver {
	d.mu.Lock()
	d.handlers[id] = h
	d.mu.Unlock()
	return d
}

// Status exports id as a function that always returns code.
func (d *Driver) Status(id resolver.FunctionID, code status.Code) *Driver {
	return d.Handle(id, func(*Call) status.Code { return code })
}

// QueryInterface returns a fake non-zero address for exported ids.
func (d *Driver) QueryInterface(id uint32) uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()
	fid := resolver.FunctionID(id)
	d.queries[fid]++
	if _, ok := d.handlers[fid]; !ok {
		return 0
	}
	return uintptr(id)
}

// Invoke runs the handler for h.ID.
func (d *Driver) Invoke(h resolver.Handle, args ...native.Arg) (status.Code, error) {
	d.mu.Lock()
	handler, ok := d.handlers[h.ID]
	n := d.calls[h.ID]
	d.calls[h.ID]++
	d.order = append(d.order, h.ID)
	d.mu.Unlock()

	if !ok || h.Addr != uintptr(h.ID) {
		return 0, errors.EntryPointNotFound(h.Name, uint32(h.ID))
	}
	for i, a := range args {
		if b := a.Buffer(); b != nil && b.Released() {
			return 0, errors.New(errors.PhaseNative, errors.KindReleased).
				Function(h.Name).Detail("argument %d refers to a released buffer", i).Build()
		}
	}
	return handler(&Call{ID: h.ID, Args: args, N: n}), nil
}

// Calls returns how many times id was invoked.
func (d *Driver) Calls(id resolver.FunctionID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

// Queries returns how many times id was looked up.
func (d *Driver) Queries(id resolver.FunctionID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries[id]
}

// Order returns every invoked id in call order.
func (d *Driver) Order() []resolver.FunctionID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]resolver.FunctionID(nil), d.order...)
}
