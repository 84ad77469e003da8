package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/control"
)

type scanoutDoc struct {
	Display     string                      `yaml:"display"`
	Information *control.ScanoutInformation `yaml:"information,omitempty"`
	Intensity   *bool                       `yaml:"intensity,omitempty"`
	Warping     *bool                       `yaml:"warping,omitempty"`
	Resampling  string                      `yaml:"resampling,omitempty"`
}

var resamplingNames = map[control.ScanoutParameterValue]string{
	control.ScanoutValueDefault:                "default",
	control.ScanoutResamplingBilinear:          "bilinear",
	control.ScanoutResamplingBicubicTriangular: "bicubic-triangular",
	control.ScanoutResamplingBicubicBellShaped: "bicubic-bell-shaped",
	control.ScanoutResamplingBicubicBSpline:    "bicubic-bspline",
	control.ScanoutResamplingBicubicAdaptive:   "bicubic-adaptive",
}

func resamplingName(v control.ScanoutParameterValue) string {
	if s, ok := resamplingNames[v]; ok {
		return s
	}
	return fmt.Sprintf("%#x", uint32(v))
}

func parseResampling(s string) (control.ScanoutParameterValue, error) {
	for v, name := range resamplingNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown resampling method %q", s)
}

func rect(r control.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func newScanoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanout [display]",
		Short: "Show scanout geometry and warping state of a display",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			id, err := displayID(c, optionalArg(args, 0))
			if err != nil {
				return err
			}
			doc := scanoutDoc{Display: id.String()}
			row := []string{id.String(), "-", "-", "-", "-", "-"}

			// Each query is optional; drivers without warping support reject them individually.
			if info, err := c.ScanoutConfiguration(id); err == nil {
				doc.Information = info
				row[1] = rect(info.SourceDesktop)
				row[2] = rect(info.TargetViewport)
			}
			if st, err := c.ScanoutIntensityState(id); err == nil {
				doc.Intensity = &st.Enabled
				row[3] = yesNo(st.Enabled)
			}
			if st, err := c.ScanoutWarpingState(id); err == nil {
				doc.Warping = &st.Enabled
				row[4] = yesNo(st.Enabled)
			}
			if v, _, err := c.ScanoutCompositionParameter(id, control.ScanoutWarpingResamplingMethod); err == nil {
				doc.Resampling = resamplingName(v)
				row[5] = doc.Resampling
			}
			return a.printer().print(view{
				data:    doc,
				headers: []string{"DISPLAY", "DESKTOP", "VIEWPORT", "INTENSITY", "WARPING", "RESAMPLING"},
				rows:    [][]string{row},
			})
		},
	}

	set := &cobra.Command{
		Use:   "resampling <method> [display]",
		Short: "Set the warping resampling method",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := parseResampling(args[0])
			if err != nil {
				return err
			}
			c, err := a.driver()
			if err != nil {
				return err
			}
			id, err := displayID(c, optionalArg(args, 1))
			if err != nil {
				return err
			}
			if err := c.SetScanoutCompositionParameter(id, control.ScanoutWarpingResamplingMethod, v, 0); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: resampling %s\n", id, resamplingName(v))
			return nil
		},
	}
	cmd.AddCommand(set)
	return cmd
}
