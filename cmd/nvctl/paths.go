package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/control"
)

type pathDoc struct {
	Layout    string      `yaml:"layout"`
	SourceID  uint32      `yaml:"source_id"`
	Width     uint32      `yaml:"width"`
	Height    uint32      `yaml:"height"`
	PositionX int32       `yaml:"position_x"`
	PositionY int32       `yaml:"position_y"`
	Primary   bool        `yaml:"primary"`
	NonNVIDIA bool        `yaml:"non_nvidia,omitempty"`
	Targets   []targetDoc `yaml:"targets"`
}

type targetDoc struct {
	DisplayID string `yaml:"display_id"`
	TargetID  uint32 `yaml:"target_id"`
	Rotation  uint32 `yaml:"rotation"`
	Refresh   uint32 `yaml:"refresh_1k"`
}

func pathDocs(paths []control.PathInfo) []pathDoc {
	docs := make([]pathDoc, 0, len(paths))
	for _, p := range paths {
		s := p.Summary()
		doc := pathDoc{Layout: p.Layout().Name, SourceID: s.SourceID}
		if m := s.SourceMode; m != nil {
			doc.Width, doc.Height = m.Width, m.Height
			doc.PositionX, doc.PositionY = m.PositionX, m.PositionY
			doc.Primary = m.GDIPrimary()
		}
		if v2, ok := p.(*control.PathInfoV2); ok {
			doc.NonNVIDIA = v2.NonNVIDIAAdapter()
		}
		for _, t := range s.Targets {
			td := targetDoc{DisplayID: t.DisplayID.String(), TargetID: t.TargetID}
			if t.Details != nil {
				td.Rotation = t.Details.Rotation
				td.Refresh = t.Details.RefreshRate1K
			}
			doc.Targets = append(doc.Targets, td)
		}
		docs = append(docs, doc)
	}
	return docs
}

func newPathsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the display configuration paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			paths, err := c.DisplayConfig()
			if err != nil {
				return err
			}
			docs := pathDocs(paths)
			v := view{
				data:    docs,
				headers: []string{"SOURCE", "LAYOUT", "MODE", "POSITION", "PRIMARY", "TARGETS"},
			}
			for _, d := range docs {
				ids := make([]string, len(d.Targets))
				for i, t := range d.Targets {
					ids[i] = t.DisplayID
				}
				v.rows = append(v.rows, []string{
					fmt.Sprint(d.SourceID), d.Layout,
					fmt.Sprintf("%dx%d", d.Width, d.Height),
					fmt.Sprintf("%d,%d", d.PositionX, d.PositionY),
					yesNo(d.Primary), strings.Join(ids, ","),
				})
			}
			return a.printer().print(v)
		},
	}
	cmd.AddCommand(newPathsApplyCmd(a))
	return cmd
}

func newPathsApplyCmd(a *app) *cobra.Command {
	var validate, save, remode, yes bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Resubmit the current display configuration",
		Long: `Read the current display paths and hand them back to the driver. With
--save the configuration is written to the driver's persistent store;
--force-modeset re-enumerates and commits the modes even when unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := a.driver()
			if err != nil {
				return err
			}
			paths, err := c.DisplayConfig()
			if err != nil {
				return err
			}
			var flags control.SetConfigFlags
			if validate {
				flags |= control.SetConfigValidateOnly
			}
			if save {
				flags |= control.SetConfigSaveToPersistence
			}
			if remode {
				flags |= control.SetConfigForceModeEnumeration | control.SetConfigForceCommitVideoMode
			}
			if !validate && !yes {
				ok, err := confirm("Apply display configuration?",
					fmt.Sprintf("%d path(s) will be resubmitted; displays may blank briefly", len(paths)))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			if err := c.SetDisplayConfig(paths, flags); err != nil {
				return err
			}
			verb := "applied"
			if validate {
				verb = "validated"
			}
			fmt.Fprintf(a.out, "%s %d path(s)\n", verb, len(paths))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&validate, "validate-only", false, "ask the driver to validate without applying")
	f.BoolVar(&save, "save", false, "persist the configuration")
	f.BoolVar(&remode, "force-modeset", false, "force mode enumeration and commit")
	f.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
