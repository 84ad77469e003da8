package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/nvapi/control"
)

type hdrDoc struct {
	Display      string                     `yaml:"display"`
	Layout       string                     `yaml:"layout"`
	Mode         uint32                     `yaml:"mode"`
	Settings     control.HDRSettings        `yaml:"settings"`
	Capabilities *control.HDRCapabilitiesV1 `yaml:"capabilities,omitempty"`
	DolbyVision  *dolbyVisionDoc            `yaml:"dolby_vision,omitempty"`
}

type dolbyVisionDoc struct {
	Version          uint32 `yaml:"version"`
	BacklightControl bool   `yaml:"backlight_control"`
}

var hdrModeNames = map[control.HDRMode]string{
	control.HDRModeOff:             "off",
	control.HDRModeUHDA:            "uhda",
	control.HDRModeEDR:             "edr",
	control.HDRModeSDR:             "sdr",
	control.HDRModeUHDAPassthrough: "uhda-passthrough",
	control.HDRModeUHDANB:          "uhda-nb",
	control.HDRModeDolbyVision:     "dolby-vision",
}

func hdrModeName(m control.HDRMode) string {
	if s, ok := hdrModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", uint32(m))
}

// hdrModeList returns the mode names in mode order.
func hdrModeList() []string {
	modes := make([]control.HDRMode, 0, len(hdrModeNames))
	for m := range hdrModeNames {
		modes = append(modes, m)
	}
	slices.Sort(modes)
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = hdrModeNames[m]
	}
	return names
}

func parseHDRMode(s string) (control.HDRMode, error) {
	for m, name := range hdrModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown hdr mode %q", s)
}

func newHDRCmd(a *app) *cobra.Command {
	var expand bool
	cmd := &cobra.Command{
		Use:   "hdr [display]",
		Short: "Show HDR state and capabilities of a display",
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
			data, err := c.HDRColorData(id)
			if err != nil {
				return err
			}
			doc := hdrDoc{Display: id.String(), Layout: data.Layout().Name, Settings: data.Settings()}
			doc.Mode = uint32(doc.Settings.Mode)

			caps, err := c.HDRCapabilities(id, expand)
			if err != nil {
				a.log.Debug("hdr capabilities unavailable", zap.Error(err))
			} else {
				doc.Capabilities = caps.Basic()
				if v2, ok := caps.(*control.HDRCapabilitiesV2); ok && v2.DolbyVision {
					doc.DolbyVision = &dolbyVisionDoc{Version: v2.DolbyVisionVersion, BacklightControl: v2.DolbyVisionBacklightControl}
				}
			}

			row := []string{id.String(), doc.Layout, hdrModeName(doc.Settings.Mode), "-", "-"}
			if doc.Capabilities != nil {
				row[3] = yesNo(doc.Capabilities.ST2084EOTF)
				row[4] = fmt.Sprintf("%d nits", doc.Capabilities.Display.MaxDisplayMasteringLuminance)
			}
			return a.printer().print(view{
				data:    doc,
				headers: []string{"DISPLAY", "LAYOUT", "MODE", "ST2084", "MAX LUMINANCE"},
				rows:    [][]string{row},
			})
		},
	}
	cmd.Flags().BoolVar(&expand, "expand-defaults", false, "let the driver fill default mastering data")

	var mode string
	set := &cobra.Command{
		Use:   "set [display]",
		Short: "Set the HDR mode of a display",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if mode == "" {
				var err error
				if mode, err = choose("HDR mode", hdrModeList()); err != nil {
					return fmt.Errorf("--mode not given: %w", err)
				}
			}
			m, err := parseHDRMode(mode)
			if err != nil {
				return err
			}
			c, err := a.driver()
			if err != nil {
				return err
			}
			id, err := displayID(c, optionalArg(args, 0))
			if err != nil {
				return err
			}
			current, err := c.HDRColorData(id)
			if err != nil {
				return err
			}
			s := current.Settings()
			s.Mode = m
			if err := c.SetHDRColorData(id, s); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: hdr mode %s\n", id, hdrModeName(m))
			return nil
		},
	}
	set.Flags().StringVar(&mode, "mode", "", "hdr mode: "+strings.Join(hdrModeList(), ", ")+" (prompted when omitted)")

	cmd.AddCommand(set)
	return cmd
}
