package control

import (
	"go.uber.org/zap"

	"github.com/wippyai/nvapi"
	"github.com/wippyai/nvapi/dispatch"
	"github.com/wippyai/nvapi/marshal"
	"github.com/wippyai/nvapi/native"
	"github.com/wippyai/nvapi/registry"
	"github.com/wippyai/nvapi/resolver"
	"github.com/wippyai/nvapi/status"
)

// Client exposes the driver's logical operations. It is safe for
// concurrent use; every call owns its buffers.
type Client struct {
	d     *dispatch.Dispatcher
	reg   *registry.Registry
	log   *zap.Logger
	alloc nvapi.Allocator
}

// Option configures a Client.
type Option func(*Client)

// WithAllocator sets the allocator native buffers come from.
func WithAllocator(a nvapi.Allocator) Option {
	return func(c *Client) { c.alloc = a }
}

// WithRegistry replaces the default registry, for example to pin an
// operation to older struct versions.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Client) { c.reg = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client that calls through inv.
func New(inv native.Invoker, opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		reg, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		c.reg = reg
	}
	if c.log == nil {
		c.log = Logger()
	}
	c.d = dispatch.New(inv, c.alloc)
	return c, nil
}

// Registry returns the registry the client negotiates from.
func (c *Client) Registry() *registry.Registry { return c.reg }

// Resolver returns the client's entry-point cache.
func (c *Client) Resolver() *resolver.Resolver { return c.d.Resolver() }

func (c *Client) Initialize() error {
	if err := c.d.Exec(resolver.Initialize); err != nil {
		return err
	}
	c.log.Info("driver api initialized")
	return nil
}

func (c *Client) Unload() error {
	return c.d.Exec(resolver.Unload)
}

// InterfaceVersion returns the driver's interface version string.
func (c *Client) InterfaceVersion() (string, error) {
	return c.shortString(resolver.GetInterfaceVersionString)
}

// ErrorMessage asks the driver to describe code.
func (c *Client) ErrorMessage(code status.Code) (string, error) {
	return c.shortString(resolver.GetErrorMessage, native.I32(int32(code)))
}

// DisplayName returns the name the OS uses for a display handle, such as
// \\.\DISPLAY1.
func (c *Client) DisplayName(h DisplayHandle) (string, error) {
	return c.shortString(resolver.GetAssociatedNvidiaDisplayName, native.Word(uintptr(h)))
}

func (c *Client) shortString(id resolver.FunctionID, args ...native.Arg) (string, error) {
	buf, err := marshal.NewShortString(c.d.Allocator())
	if err != nil {
		return "", err
	}
	defer buf.Release()

	if err := c.d.Exec(id, append(args, native.Ptr(buf))...); err != nil {
		return "", err
	}
	return buf.CString()
}

// EnumDisplayHandles returns every attached display in driver order.
func (c *Client) EnumDisplayHandles() ([]DisplayHandle, error) {
	hs, err := dispatch.EnumerateHandles(c.d, resolver.EnumNvidiaDisplayHandle)
	if err != nil {
		return nil, err
	}
	out := make([]DisplayHandle, len(hs))
	for i, h := range hs {
		out[i] = DisplayHandle(h)
	}
	return out, nil
}

func (c *Client) EnumPhysicalGPUs() ([]GPUHandle, error) {
	hs, err := dispatch.FetchHandles(c.d, resolver.EnumPhysicalGPUs, MaxPhysicalGPUs)
	if err != nil {
		return nil, err
	}
	out := make([]GPUHandle, len(hs))
	for i, h := range hs {
		out[i] = GPUHandle(h)
	}
	return out, nil
}

// DisplayHandleByName maps an OS display name to its handle.
func (c *Client) DisplayHandleByName(name string) (DisplayHandle, error) {
	alloc := c.d.Allocator()
	nameBuf, err := marshal.NewCString(alloc, name)
	if err != nil {
		return 0, err
	}
	defer nameBuf.Release()
	out, err := marshal.NewWord(alloc, 0)
	if err != nil {
		return 0, err
	}
	defer out.Release()

	if err := c.d.Exec(resolver.GetAssociatedNvidiaDisplayHandle, native.Ptr(nameBuf), native.Ptr(out)); err != nil {
		return 0, err
	}
	h, err := out.Word()
	return DisplayHandle(h), err
}

// DisplayIDByName maps an OS display name to its display id.
func (c *Client) DisplayIDByName(name string) (DisplayID, error) {
	alloc := c.d.Allocator()
	nameBuf, err := marshal.NewCString(alloc, name)
	if err != nil {
		return 0, err
	}
	defer nameBuf.Release()
	out, err := marshal.NewU32(alloc, 0)
	if err != nil {
		return 0, err
	}
	defer out.Release()

	if err := c.d.Exec(resolver.DISP_GetDisplayIdByDisplayName, native.Ptr(nameBuf), native.Ptr(out)); err != nil {
		return 0, err
	}
	id, err := out.U32()
	return DisplayID(id), err
}

// PrimaryDisplayID returns the display id of the OS primary desktop.
func (c *Client) PrimaryDisplayID() (DisplayID, error) {
	out, err := marshal.NewU32(c.d.Allocator(), 0)
	if err != nil {
		return 0, err
	}
	defer out.Release()

	if err := c.d.Exec(resolver.DISP_GetGDIPrimaryDisplayId, native.Ptr(out)); err != nil {
		return 0, err
	}
	id, err := out.U32()
	return DisplayID(id), err
}
