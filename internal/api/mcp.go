package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/qamine/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Runs RunLister
	QA   Processor
}

// NewMCPServer creates an MCP server with the qamine tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"qamine",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("qamine extracts question-answer pairs from document text for dataset construction."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("extract_qa",
			mcp.WithDescription("Extract question-answer pairs from raw text. Returns a JSON array of {question, answer, source, confidence} records."),
			mcp.WithString("text", mcp.Description("The text to mine for Q&A pairs"), mcp.Required()),
		),
		mcpExtractQA(deps),
	)

	s.AddTool(
		mcp.NewTool("list_runs",
			mcp.WithDescription("List recent extraction runs with their status, record counts, and artifact paths."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of runs (default 10)")),
		),
		mcpListRuns(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"runs://recent",
			"Recent Runs",
			mcp.WithResourceDescription("Last 10 extraction runs as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentRuns(deps),
	)

	return s
}

func mcpExtractQA(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}
		if text == "" {
			return mcpError("text is empty"), nil
		}

		records := deps.QA.Process(ctx, text)
		if len(records) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(records)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal records: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpListRuns(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		runs, err := deps.Runs.ListRuns(limit)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list runs: %v", err)), nil
		}

		b, err := json.Marshal(runSummaries(runs))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

type runSummary struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	Status        string `json:"status"`
	Mode          string `json:"mode"`
	DocumentCount int    `json:"document_count"`
	RecordCount   int    `json:"record_count"`
	ArtifactPath  string `json:"artifact_path,omitempty"`
	Error         string `json:"error,omitempty"`
}

func runSummaries(runs []storage.Run) []runSummary {
	summaries := make([]runSummary, len(runs))
	for i, r := range runs {
		summaries[i] = runSummary{
			ID:            r.ID,
			StartedAt:     r.StartedAt.Format(time.RFC3339),
			Status:        r.Status,
			Mode:          r.Mode,
			DocumentCount: r.DocumentCount,
			RecordCount:   r.RecordCount,
			ArtifactPath:  r.ArtifactPath,
			Error:         r.Error,
		}
	}
	return summaries
}

func mcpResourceRecentRuns(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		runs, err := deps.Runs.ListRuns(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}

		b, err := json.Marshal(runSummaries(runs))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal runs: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
