// Package mcp exposes the review engine over the Model Context Protocol so
// agent tooling can run reviews and read history without shelling out.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gavelhq/gavel/internal/changeset"
	"github.com/gavelhq/gavel/internal/checkers"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/engine"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/store"
)

// Server wraps the review engine and store and exposes them as MCP tools.
type Server struct {
	cfg   *config.Config
	store store.Store
}

// NewServer creates the MCP server wrapper. store may be nil; history tools
// then report that persistence is disabled.
func NewServer(cfg *config.Config, st store.Store) *Server {
	return &Server{cfg: cfg, store: st}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("gavel", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.reviewFilesTool())
	srv.AddTool(s.reviewHistoryTool())
	srv.AddTool(s.listRulesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// gavel_review_files
func (s *Server) reviewFilesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gavel_review_files",
		mcp.WithDescription("Run a static code review over the given files or directories. Returns the full result as JSON: findings with rule, severity, file, line, and message, plus summary counts."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to review")),
		mcp.WithString("min_severity", mcp.Description("Lowest severity to report: error, warning, suggestion, or style")),
	)
	return tool, s.handleReviewFiles
}

func (s *Server) handleReviewFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Copy the config so a per-call severity override never leaks.
	cfg := *s.cfg
	if ms := request.GetString("min_severity", ""); ms != "" {
		cfg.Review.MinSeverity = models.Severity(ms)
		if err := cfg.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid min_severity: %v", err)), nil
		}
	}

	files, err := changeset.FromPaths([]string{path}, &cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to collect files: %v", err)), nil
	}

	res, err := engine.New(&cfg).Run(ctx, files, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("review failed: %v", err)), nil
	}

	data, err := json.Marshal(res)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// gavel_review_history
func (s *Server) reviewHistoryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gavel_review_history",
		mcp.WithDescription("List past review runs with their summary counts, newest first."),
		mcp.WithString("target", mcp.Description("Filter by reviewed target path")),
		mcp.WithNumber("limit", mcp.Description("Maximum runs to return (default 20)")),
	)
	return tool, s.handleReviewHistory
}

func (s *Server) handleReviewHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("review history is disabled: no database configured"), nil
	}

	limit := request.GetInt("limit", 20)
	runs, err := s.store.ListRuns(ctx, store.RunListFilter{
		Target: request.GetString("target", ""),
		Limit:  limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	type runOut struct {
		ID          string `json:"id"`
		Target      string `json:"target"`
		ReviewType  string `json:"review_type"`
		Errors      int    `json:"errors"`
		Warnings    int    `json:"warnings"`
		Suggestions int    `json:"suggestions"`
		Styles      int    `json:"styles"`
		CreatedAt   string `json:"created_at"`
	}

	out := make([]runOut, len(runs))
	for i, r := range runs {
		out[i] = runOut{
			ID:         r.ID,
			Target:     r.Target,
			ReviewType: r.ReviewType,
			CreatedAt:  r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if r.Result != nil {
			c := r.Result.Summary.Counts
			out[i].Errors = c.Errors
			out[i].Warnings = c.Warnings
			out[i].Suggestions = c.Suggestions
			out[i].Styles = c.Styles
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// gavel_list_rules
func (s *Server) listRulesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gavel_list_rules",
		mcp.WithDescription("List the registered static checkers in execution order, with their categories."),
	)
	return tool, s.handleListRules
}

func (s *Server) handleListRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type ruleOut struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}
	var out []ruleOut
	for _, c := range checkers.All() {
		out = append(out, ruleOut{ID: c.ID, Category: string(c.Category)})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal rules: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
