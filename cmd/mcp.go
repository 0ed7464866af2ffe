package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/shipgate/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets agent tooling query ship gates natively. Configure with:

  {
    "mcpServers": {
      "shipgate": { "command": "shipgate", "args": ["mcp"] }
    }
  }

Available tools: shipgate_list_projects, shipgate_project_status,
shipgate_refresh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine()
		if err != nil {
			return err
		}
		return mcp.NewServer(e).ServeStdio(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
