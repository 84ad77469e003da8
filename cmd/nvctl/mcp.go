package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wippyai/nvapi/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve display tools over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing list_displays, get_dvc,
set_dvc, get_color and get_memory. The driver is opened on the first tool
call. Register "nvctl mcp" as a stdio server in the MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return mcp.NewServer(a.driver, Version, a.log.Named("mcp")).Run(ctx)
		},
	}
}
