package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/control"
)

type dvcDoc struct {
	Display  string `yaml:"display"`
	Output   uint32 `yaml:"output"`
	Current  int32  `yaml:"current"`
	Min      int32  `yaml:"min"`
	Max      int32  `yaml:"max"`
	Default  int32  `yaml:"default"`
	Extended bool   `yaml:"extended"`
}

func dvcView(h control.DisplayHandle, output control.OutputID, d control.DVC) view {
	def := "-"
	if d.Extended {
		def = strconv.Itoa(int(d.Default))
	}
	return view{
		data: dvcDoc{
			Display: hex(uintptr(h)), Output: uint32(output),
			Current: d.Current, Min: d.Min, Max: d.Max, Default: d.Default, Extended: d.Extended,
		},
		headers: []string{"DISPLAY", "OUTPUT", "LEVEL", "RANGE", "DEFAULT"},
		rows: [][]string{{
			hex(uintptr(h)), fmt.Sprint(uint32(output)), strconv.Itoa(int(d.Current)),
			fmt.Sprintf("%d..%d", d.Min, d.Max), def,
		}},
	}
}

func newDVCCmd(a *app) *cobra.Command {
	var output uint32
	cmd := &cobra.Command{
		Use:   "dvc [display]",
		Short: "Show the digital vibrance of a display",
		Long: `Show the digital vibrance of a display. The display is an index into
the display list, an OS display name, or empty for the first display.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			h, err := displayHandle(c, optionalArg(args, 0))
			if err != nil {
				return err
			}
			d, err := c.DVCInfo(h, control.OutputID(output))
			if err != nil {
				return err
			}
			return a.printer().print(dvcView(h, control.OutputID(output), d))
		},
	}
	cmd.PersistentFlags().Uint32Var(&output, "output", 0, "output id of the display (0 for default)")

	set := &cobra.Command{
		Use:   "set <level> [display]",
		Short: "Set the digital vibrance level",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			level, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("level: %w", err)
			}
			c, err := a.driver()
			if err != nil {
				return err
			}
			h, err := displayHandle(c, optionalArg(args, 1))
			if err != nil {
				return err
			}
			d, err := c.DVCInfo(h, control.OutputID(output))
			if err != nil {
				return err
			}
			if int32(level) < d.Min || int32(level) > d.Max {
				return fmt.Errorf("level %d outside %d..%d", level, d.Min, d.Max)
			}
			if err := c.SetDVCLevel(h, control.OutputID(output), int32(level)); err != nil {
				return err
			}
			d.Current = int32(level)
			return a.printer().print(dvcView(h, control.OutputID(output), d))
		},
	}
	cmd.AddCommand(set)
	return cmd
}
