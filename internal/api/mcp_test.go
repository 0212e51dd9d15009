package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/qamine/internal/qa"
	"github.com/kalambet/qamine/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Runs: store,
		QA:   &mockProcessor{},
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPExtractQA(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	deps.QA = &mockProcessor{processFn: func(ctx context.Context, text string) []qa.Record {
		return []qa.Record{{
			Question:   "What is MCP?",
			Answer:     "A protocol for tool-using agents.",
			Source:     qa.SourceExtracted,
			Confidence: 1.0,
		}}
	}}

	handler := mcpExtractQA(deps)
	result, err := handler(context.Background(), makeCallToolRequest("extract_qa", map[string]interface{}{
		"text": "Q: What is MCP? A: A protocol for tool-using agents.",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var records []qa.Record
	if err := json.Unmarshal([]byte(toolText(t, result)), &records); err != nil {
		t.Fatalf("parsing tool output: %v", err)
	}
	if len(records) != 1 || records[0].Question != "What is MCP?" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestMCPExtractQA_MissingText(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpExtractQA(deps)

	result, err := handler(context.Background(), makeCallToolRequest("extract_qa", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for missing text")
	}
}

func TestMCPExtractQA_NoRecords(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	deps.QA = &mockProcessor{processFn: func(ctx context.Context, text string) []qa.Record { return nil }}

	handler := mcpExtractQA(deps)
	result, err := handler(context.Background(), makeCallToolRequest("extract_qa", map[string]interface{}{
		"text": "plain prose with nothing to mine",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestMCPListRuns(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	if err := store.SaveRun(storage.Run{ID: "run-1", StartedAt: time.Now(), Mode: "auto", DocumentCount: 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteRun("run-1", 7, "/out/a.json"); err != nil {
		t.Fatal(err)
	}

	handler := mcpListRuns(deps)
	result, err := handler(context.Background(), makeCallToolRequest("list_runs", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	var runs []runSummary
	if err := json.Unmarshal([]byte(toolText(t, result)), &runs); err != nil {
		t.Fatalf("parsing tool output: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != "run-1" || runs[0].RecordCount != 7 || runs[0].Status != storage.StatusCompleted {
		t.Errorf("unexpected summary: %+v", runs[0])
	}
}

func TestMCPResourceRecentRuns(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	if err := store.SaveRun(storage.Run{ID: "run-1", StartedAt: time.Now(), Mode: "extract"}); err != nil {
		t.Fatal(err)
	}

	handler := mcpResourceRecentRuns(deps)
	contents, err := handler(context.Background(), makeReadResourceRequest("runs://recent"))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}

	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	var runs []runSummary
	if err := json.Unmarshal([]byte(text.Text), &runs); err != nil {
		t.Fatalf("parsing resource: %v", err)
	}
	if len(runs) != 1 || runs[0].Mode != "extract" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}
