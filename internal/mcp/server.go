// Package mcp exposes display queries and vibrance control as Model
// Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/control"
)

const ServerName = "nvctl"

// ClientFunc returns the driver client, opening it on first use.
type ClientFunc func() (*control.Client, error)

// Server is the MCP server for display control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    ClientFunc
	log       *zap.Logger

	// mu guards the lazy client getter; tool calls may arrive concurrently.
	mu sync.Mutex
}

// NewServer builds a server whose tools run against the client returned by
// get.
func NewServer(get ClientFunc, version string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{client: get, log: log}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one session on t.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List displays driven by the NVIDIA GPU with their index, OS name and driver display id.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_dvc",
		Description: "Read the digital vibrance level of a display and the range the driver accepts.",
	}, s.handleGetDVC)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_dvc",
		Description: "Set the digital vibrance level of a display. The level must lie within the range get_dvc reports.",
	}, s.handleSetDVC)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_color",
		Description: "Read the color format, colorimetry, dynamic range and bit depth of a display.",
	}, s.handleGetColor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_memory",
		Description: "Read dedicated and available video memory of every physical GPU.",
	}, s.handleGetMemory)
}

// with runs fn holding the driver lock.
func (s *Server) with(fn func(c *control.Client) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.client()
	if err != nil {
		return err
	}
	return fn(c)
}

func displayHandle(c *control.Client, index int) (control.DisplayHandle, error) {
	handles, err := c.EnumDisplayHandles()
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(handles) {
		return 0, fmt.Errorf("display index %d out of range (%d displays)", index, len(handles))
	}
	return handles[index], nil
}

func dvcOutput(index int, d control.DVC) DVCOutput {
	return DVCOutput{Display: index, Current: d.Current, Min: d.Min, Max: d.Max, Default: d.Default, Extended: d.Extended}
}
