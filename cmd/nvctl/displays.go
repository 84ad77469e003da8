package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/control"
)

type displayRow struct {
	Index   int    `yaml:"index"`
	Handle  string `yaml:"handle"`
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Primary bool   `yaml:"primary"`
}

func newDisplaysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "displays",
		Short: "List attached displays",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			handles, err := c.EnumDisplayHandles()
			if err != nil {
				return err
			}
			primary, err := c.PrimaryDisplayID()
			if err != nil {
				a.log.Debug("no primary display id", zap.Error(err))
			}

			v := view{headers: []string{"#", "HANDLE", "NAME", "DISPLAY ID", "PRIMARY"}}
			var out []displayRow
			for i, h := range handles {
				row := displayRow{Index: i, Handle: hex(uintptr(h))}
				if row.Name, err = c.DisplayName(h); err != nil {
					return fmt.Errorf("display %d: %w", i, err)
				}
				if id, err := c.DisplayIDByName(row.Name); err == nil {
					row.ID = id.String()
					row.Primary = primary != 0 && id == primary
				}
				out = append(out, row)
				v.rows = append(v.rows, []string{strconv.Itoa(i), row.Handle, row.Name, row.ID, yesNo(row.Primary)})
			}
			v.data = out
			return a.printer().print(v)
		},
	}
}

type gpuRow struct {
	Index  int    `yaml:"index"`
	Handle string `yaml:"handle"`
}

func newGPUsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gpus",
		Short: "List physical GPUs",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			gpus, err := c.EnumPhysicalGPUs()
			if err != nil {
				return err
			}
			v := view{headers: []string{"#", "HANDLE"}}
			out := make([]gpuRow, 0, len(gpus))
			for i, g := range gpus {
				out = append(out, gpuRow{Index: i, Handle: hex(uintptr(g))})
				v.rows = append(v.rows, []string{strconv.Itoa(i), hex(uintptr(g))})
			}
			v.data = out
			return a.printer().print(v)
		},
	}
}

type memoryRow struct {
	GPU       int    `yaml:"gpu"`
	Layout    string `yaml:"layout"`
	Dedicated uint32 `yaml:"dedicated_kib"`
	Available uint32 `yaml:"available_kib"`
	Current   uint32 `yaml:"current_available_kib"`
	System    uint32 `yaml:"system_kib"`
	Shared    uint32 `yaml:"shared_system_kib"`
	Evictions uint32 `yaml:"evictions,omitempty"`
}

func newMemoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "memory",
		Short: "Show video memory of every GPU",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			gpus, err := c.EnumPhysicalGPUs()
			if err != nil {
				return err
			}
			v := view{headers: []string{"GPU", "LAYOUT", "DEDICATED", "AVAILABLE", "FREE", "SHARED"}}
			var out []memoryRow
			for i, g := range gpus {
				info, err := c.MemoryInfo(g)
				if err != nil {
					return fmt.Errorf("gpu %d: %w", i, err)
				}
				b := info.Basic()
				row := memoryRow{
					GPU:       i,
					Layout:    info.Layout().Name,
					Dedicated: b.DedicatedVideoMemory,
					Available: b.AvailableDedicatedVideoMemory,
					Current:   b.CurAvailableDedicatedVideoMemory,
					System:    b.SystemVideoMemory,
					Shared:    b.SharedSystemMemory,
				}
				switch m := info.(type) {
				case *control.MemoryInfoV2:
					row.Evictions = m.DedicatedVideoMemoryEvictionCount
				case *control.MemoryInfoV3:
					row.Evictions = m.DedicatedVideoMemoryEvictionCount
				}
				out = append(out, row)
				v.rows = append(v.rows, []string{
					strconv.Itoa(i), row.Layout, mib(row.Dedicated), mib(row.Available), mib(row.Current), mib(row.Shared),
				})
			}
			v.data = out
			return a.printer().print(v)
		},
	}
}

func mib(kib uint32) string { return fmt.Sprintf("%d MiB", kib/1024) }
