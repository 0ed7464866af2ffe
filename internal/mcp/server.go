// Package mcp exposes the engine as MCP tools over stdio so agent
// tooling can query ship gates natively.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/shipgate/internal/engine"
)

// Server wraps the engine and exposes it as MCP tools.
type Server struct {
	engine *engine.Engine
}

// NewServer creates the MCP server wrapper.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("shipgate", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listProjectsTool())
	srv.AddTool(s.projectStatusTool())
	srv.AddTool(s.refreshTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// shipgate_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("shipgate_list_projects",
		mcp.WithDescription("List the tracked projects. Returns a JSON array with repo id, display name, and description."),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.engine.Projects())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// shipgate_project_status
func (s *Server) projectStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("shipgate_project_status",
		mcp.WithDescription("Get the full reconstructed status for one tracked project: branches, open PRs, milestones, stage progress, ship gate, handoff, and north star. Refreshes first if nothing is published yet."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository id, e.g. acme/roadmap")),
	)
	return tool, s.handleProjectStatus
}

func (s *Server) handleProjectStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}

	st, ok := s.engine.Status(repo)
	if !ok {
		s.engine.RefreshAll(ctx)
		if st, ok = s.engine.Status(repo); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("project not tracked: %s", repo)), nil
		}
	}

	data, err := json.Marshal(st)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// shipgate_refresh
func (s *Server) refreshTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("shipgate_refresh",
		mcp.WithDescription("Run one full refresh cycle across all tracked projects and return the batch summary."),
	)
	return tool, s.handleRefresh
}

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batch := s.engine.RefreshAll(ctx)

	type summary struct {
		BatchID  string `json:"batch_id"`
		Projects int    `json:"projects"`
		Failed   int    `json:"failed"`
		Stale    bool   `json:"stale"`
	}
	out := summary{BatchID: batch.ID, Projects: len(batch.Statuses), Stale: batch.Stale}
	for _, st := range batch.Statuses {
		if st.Error != "" {
			out.Failed++
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal batch: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
