package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets agent tooling run reviews and query history natively.
Configure in Claude Code with:

  {
    "mcpServers": {
      "gavel": { "command": "gavel", "args": ["mcp"] }
    }
  }

Available tools: gavel_review_files, gavel_review_history, gavel_list_rules`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadReviewConfig()
		if err != nil {
			return err
		}

		// History tools degrade gracefully without a database.
		s, err := getStore()
		if err != nil {
			ui.Warning("review history unavailable: %v", err)
			s = nil
		}

		return mcp.NewServer(cfg, s).ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
