package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wippyai/nvapi/control"
)

type colorDoc struct {
	Display  string                `yaml:"display"`
	Layout   string                `yaml:"layout"`
	Settings control.ColorSettings `yaml:"settings"`
}

func colorView(id control.DisplayID, cd control.ColorData) view {
	s := cd.Settings()
	return view{
		data:    colorDoc{Display: id.String(), Layout: cd.Layout().Name, Settings: s},
		headers: []string{"DISPLAY", "LAYOUT", "FORMAT", "COLORIMETRY", "RANGE", "BPC", "POLICY", "DEPTH"},
		rows: [][]string{{
			id.String(), cd.Layout().Name,
			strconv.Itoa(int(s.Format)), strconv.Itoa(int(s.Colorimetry)), strconv.Itoa(int(s.DynamicRange)),
			fmt.Sprint(s.BPC), fmt.Sprint(s.SelectionPolicy), fmt.Sprint(s.Depth),
		}},
	}
}

// colorFlags registers one flag per ColorSettings field.
func colorFlags(fs *pflag.FlagSet) {
	fs.Uint8("format", 0, "color format")
	fs.Uint8("colorimetry", 0, "colorimetry")
	fs.Uint8("dynamic-range", 0, "dynamic range (0 VESA, 1 CEA, 2 auto)")
	fs.Uint32("bpc", 0, "bits per component")
	fs.Uint32("policy", 0, "color selection policy")
	fs.Uint32("depth", 0, "desktop color depth")
}

// applyColorFlags overwrites the settings whose flags were given.
func applyColorFlags(fs *pflag.FlagSet, s *control.ColorSettings) {
	if fs.Changed("format") {
		s.Format, _ = fs.GetUint8("format")
	}
	if fs.Changed("colorimetry") {
		s.Colorimetry, _ = fs.GetUint8("colorimetry")
	}
	if fs.Changed("dynamic-range") {
		s.DynamicRange, _ = fs.GetUint8("dynamic-range")
	}
	if fs.Changed("bpc") {
		s.BPC, _ = fs.GetUint32("bpc")
	}
	if fs.Changed("policy") {
		s.SelectionPolicy, _ = fs.GetUint32("policy")
	}
	if fs.Changed("depth") {
		s.Depth, _ = fs.GetUint32("depth")
	}
}

func newColorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color [display]",
		Short: "Show the color settings of a display",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.showColor(optionalArg(args, 0), false)
		},
	}

	defaults := &cobra.Command{
		Use:   "default [display]",
		Short: "Show the driver's default color settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.showColor(optionalArg(args, 0), true)
		},
	}

	set := &cobra.Command{
		Use:   "set [display]",
		Short: "Change color settings; unspecified fields keep their current value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, id, s, err := a.currentColor(optionalArg(args, 0))
			if err != nil {
				return err
			}
			applyColorFlags(cmd.Flags(), &s)
			if err := c.SetColorData(id, s); err != nil {
				return err
			}
			return a.showColor(optionalArg(args, 0), false)
		},
	}
	colorFlags(set.Flags())

	check := &cobra.Command{
		Use:   "check [display]",
		Short: "Ask the driver whether color settings are supported",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, id, s, err := a.currentColor(optionalArg(args, 0))
			if err != nil {
				return err
			}
			applyColorFlags(cmd.Flags(), &s)
			ok, err := c.IsColorSupported(id, s)
			if err != nil {
				return err
			}
			return a.printer().print(view{
				data:    map[string]any{"display": id.String(), "settings": s, "supported": ok},
				headers: []string{"DISPLAY", "SUPPORTED"},
				rows:    [][]string{{id.String(), yesNo(ok)}},
			})
		},
	}
	colorFlags(check.Flags())

	cmd.AddCommand(defaults, set, check)
	return cmd
}

func (a *app) currentColor(arg string) (*control.Client, control.DisplayID, control.ColorSettings, error) {
	c, err := a.driver()
	if err != nil {
		return nil, 0, control.ColorSettings{}, err
	}
	id, err := displayID(c, arg)
	if err != nil {
		return nil, 0, control.ColorSettings{}, err
	}
	cd, err := c.ColorData(id)
	if err != nil {
		return nil, 0, control.ColorSettings{}, err
	}
	return c, id, cd.Settings(), nil
}

func (a *app) showColor(arg string, defaults bool) error {
	c, err := a.driver()
	if err != nil {
		return err
	}
	id, err := displayID(c, arg)
	if err != nil {
		return err
	}
	get := c.ColorData
	if defaults {
		get = c.DefaultColorData
	}
	cd, err := get(id)
	if err != nil {
		return err
	}
	return a.printer().print(colorView(id, cd))
}
