package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/control"
)

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	var out ListDisplaysOutput
	err := s.with(func(c *control.Client) error {
		handles, err := c.EnumDisplayHandles()
		if err != nil {
			return err
		}
		out.Displays = make([]Display, 0, len(handles))
		for i, h := range handles {
			d := Display{Index: i, Handle: fmt.Sprintf("%#x", uintptr(h))}
			if d.Name, err = c.DisplayName(h); err != nil {
				return fmt.Errorf("display %d: %w", i, err)
			}
			if id, err := c.DisplayIDByName(d.Name); err == nil {
				d.DisplayID = uint32(id)
			}
			out.Displays = append(out.Displays, d)
		}
		return nil
	})
	return nil, out, err
}

func (s *Server) handleGetDVC(_ context.Context, _ *mcpsdk.CallToolRequest, args DisplayInput) (*mcpsdk.CallToolResult, DVCOutput, error) {
	var out DVCOutput
	err := s.with(func(c *control.Client) error {
		h, err := displayHandle(c, args.Display)
		if err != nil {
			return err
		}
		d, err := c.DVCInfo(h, 0)
		if err != nil {
			return err
		}
		out = dvcOutput(args.Display, d)
		return nil
	})
	return nil, out, err
}

func (s *Server) handleSetDVC(_ context.Context, _ *mcpsdk.CallToolRequest, args SetDVCInput) (*mcpsdk.CallToolResult, DVCOutput, error) {
	var out DVCOutput
	err := s.with(func(c *control.Client) error {
		h, err := displayHandle(c, args.Display)
		if err != nil {
			return err
		}
		d, err := c.DVCInfo(h, 0)
		if err != nil {
			return err
		}
		if args.Level < d.Min || args.Level > d.Max {
			return fmt.Errorf("level %d outside %d..%d", args.Level, d.Min, d.Max)
		}
		if err := c.SetDVCLevel(h, 0, args.Level); err != nil {
			return err
		}
		d.Current = args.Level
		out = dvcOutput(args.Display, d)
		return nil
	})
	if err == nil {
		s.log.Info("vibrance changed", zap.Int("display", args.Display), zap.Int32("level", args.Level))
	}
	return nil, out, err
}

func (s *Server) handleGetColor(_ context.Context, _ *mcpsdk.CallToolRequest, args DisplayIDInput) (*mcpsdk.CallToolResult, ColorOutput, error) {
	var out ColorOutput
	err := s.with(func(c *control.Client) error {
		id := control.DisplayID(args.DisplayID)
		if id == 0 {
			var err error
			if id, err = c.PrimaryDisplayID(); err != nil {
				return err
			}
		}
		cd, err := c.ColorData(id)
		if err != nil {
			return err
		}
		st := cd.Settings()
		out = ColorOutput{
			DisplayID:       uint32(id),
			Layout:          cd.Layout().Name,
			Format:          st.Format,
			Colorimetry:     st.Colorimetry,
			DynamicRange:    st.DynamicRange,
			BPC:             st.BPC,
			SelectionPolicy: st.SelectionPolicy,
			Depth:           st.Depth,
		}
		return nil
	})
	return nil, out, err
}

func (s *Server) handleGetMemory(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, MemoryOutput, error) {
	var out MemoryOutput
	err := s.with(func(c *control.Client) error {
		gpus, err := c.EnumPhysicalGPUs()
		if err != nil {
			return err
		}
		out.GPUs = make([]GPUMemory, 0, len(gpus))
		for i, g := range gpus {
			info, err := c.MemoryInfo(g)
			if err != nil {
				return fmt.Errorf("gpu %d: %w", i, err)
			}
			b := info.Basic()
			out.GPUs = append(out.GPUs, GPUMemory{
				GPU:              i,
				Layout:           info.Layout().Name,
				Dedicated:        b.DedicatedVideoMemory,
				Available:        b.AvailableDedicatedVideoMemory,
				CurrentAvailable: b.CurAvailableDedicatedVideoMemory,
			})
		}
		return nil
	})
	return nil, out, err
}
