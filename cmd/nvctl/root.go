package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "nvctl",
		Short: "nvctl - NVIDIA display control",
		Long: `nvctl reads and changes display configuration, color, HDR, digital
vibrance and scan-out settings through the NVIDIA driver API. Every query
negotiates the newest structure version the installed driver accepts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: $XDG_CONFIG_HOME/nvctl/nvctl.yaml)")
	flags.StringP("output", "o", "", "output format: table or yaml")
	flags.String("color", "", "colorize tables: auto, always or never")
	flags.String("library", "", "driver library path (default: platform library)")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newDisplaysCmd(a),
		newGPUsCmd(a),
		newMemoryCmd(a),
		newColorCmd(a),
		newHDRCmd(a),
		newDVCCmd(a),
		newPathsCmd(a),
		newScanoutCmd(a),
		newCheckCmd(a),
		newErrorsCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
		newTUICmd(a),
		newMCPCmd(a),
	)
	return root
}
