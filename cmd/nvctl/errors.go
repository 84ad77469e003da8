package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/status"
)

type codeDoc struct {
	Code        int32  `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Driver      string `yaml:"driver,omitempty"`
}

func newErrorsCmd(a *app) *cobra.Command {
	var fromDriver bool
	cmd := &cobra.Command{
		Use:   "errors [code]",
		Short: "List native status codes and their meaning",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			codes := status.Codes()
			if len(args) == 1 {
				var n int32
				if _, err := fmt.Sscan(args[0], &n); err != nil {
					return fmt.Errorf("status code %q: %w", args[0], err)
				}
				codes = []status.Code{status.Code(n)}
			}

			v := view{headers: []string{"CODE", "NAME", "DESCRIPTION"}}
			docs := make([]codeDoc, 0, len(codes))
			for _, c := range codes {
				d := codeDoc{Code: int32(c), Name: c.String(), Description: status.Describe(c)}
				if fromDriver {
					client, err := a.driver()
					if err != nil {
						return err
					}
					if d.Driver, err = client.ErrorMessage(c); err != nil {
						return err
					}
				}
				docs = append(docs, d)
				row := []string{fmt.Sprint(d.Code), d.Name, d.Description}
				if fromDriver {
					row = append(row, d.Driver)
				}
				v.rows = append(v.rows, row)
			}
			if fromDriver {
				v.headers = append(v.headers, "DRIVER")
			}
			v.data = docs
			return a.printer().print(v)
		},
	}
	cmd.Flags().BoolVar(&fromDriver, "driver", false, "also ask the driver for its message")
	return cmd
}
