package cmd

import (
	"context"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/yr/internal/history"
	"github.com/joescharf/yr/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients review years and read the review history.
Configure a client with:

  {
    "mcpServers": {
      "yr": { "command": "yr", "args": ["mcp"] }
    }
  }

Available tools: yr_review, yr_history, yr_info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()
		return mcpRun(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rec, err := newRecorder(true, history.WithLogger(logger))
	if err != nil {
		return err
	}
	return mcp.NewServer(rec, buildVersion).ServeStdio(ctx)
}
