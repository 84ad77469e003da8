package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	var withDriver bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the nvctl version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(a.out, "nvctl %s\n", Version)
			if !withDriver {
				return nil
			}
			c, err := a.driver()
			if err != nil {
				return err
			}
			iface, err := c.InterfaceVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "driver %s\n", iface)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDriver, "driver", false, "also print the driver interface version")
	return cmd
}
