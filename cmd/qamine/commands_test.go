package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalambet/qamine/internal/config"
	"github.com/kalambet/qamine/internal/qa"
)

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestCountLabel(t *testing.T) {
	tests := []struct {
		count, limit int
		want         string
	}{
		{5, 100, "5"},
		{0, 100, "0"},
		{100, 100, "100+"},
		{150, 100, "150+"},
	}
	for _, tt := range tests {
		got := countLabel(tt.count, tt.limit)
		if got != tt.want {
			t.Errorf("countLabel(%d, %d) = %q, want %q", tt.count, tt.limit, got, tt.want)
		}
	}
}

func TestCollectDocuments_PositionalArgs(t *testing.T) {
	docs, err := collectDocuments([]string{"/tmp/a.pdf", "notes/b.txt"}, "", config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "a.pdf" || docs[0].Path != "/tmp/a.pdf" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}
	if docs[1].Name != "b.txt" {
		t.Errorf("name = %q, want b.txt", docs[1].Name)
	}
}

func TestCollectDocuments_SourcesFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := "documents:\n  - name: Handbook\n    path: handbook.pdf\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := collectDocuments(nil, path, config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Name != "Handbook" {
		t.Errorf("name = %q, want Handbook", docs[0].Name)
	}
	if docs[0].Path != filepath.Join(dir, "handbook.pdf") {
		t.Errorf("path = %q, want it resolved next to the sources file", docs[0].Path)
	}
}

func TestCollectDocuments_ConfiguredFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := "documents:\n  - path: deep/doc.txt\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{}
	cfg.Input.SourcesFile = path
	cfg.Input.DocumentDir = dir

	docs, err := collectDocuments(nil, "", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Path != filepath.Join(dir, "deep/doc.txt") {
		t.Errorf("path = %q, want it under the configured document dir", docs[0].Path)
	}
}

func TestBuildProcessor_Normal(t *testing.T) {
	cfg := config.Config{}
	cfg.QA.MinQuestionLength = 10
	cfg.QA.MinAnswerLength = 15
	cfg.QA.ConfidenceThreshold = 0.65

	proc := buildProcessor(cfg, qa.ModeExtract, nil, false)
	if _, ok := proc.(*qa.Pipeline); !ok {
		t.Fatalf("expected *qa.Pipeline, got %T", proc)
	}

	text := "Q: What is the capital of France?\nA: The capital of France is Paris."
	records := proc.Process(context.Background(), text)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Source != qa.SourceExtracted {
		t.Errorf("source = %q, want %q", records[0].Source, qa.SourceExtracted)
	}
}

func TestBuildProcessor_Forced(t *testing.T) {
	cfg := config.Config{}
	cfg.QA.ConfidenceThreshold = 0.65

	proc := buildProcessor(cfg, qa.ModeAuto, nil, true)
	if _, ok := proc.(forcedProcessor); !ok {
		t.Fatalf("expected forcedProcessor, got %T", proc)
	}

	// Forced generation without a model yields nothing rather than panicking.
	records := proc.Process(context.Background(), "plain prose without any questions in it at all")
	if len(records) != 0 {
		t.Errorf("expected no records without a model, got %d", len(records))
	}
}

func TestProcessCommand_BadMode(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"process", "--mode", "hybrid", "some.txt"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !strings.Contains(err.Error(), "hybrid") {
		t.Errorf("error = %q, want it to name the bad mode", err.Error())
	}
}

func TestRunsShow_MissingArg(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"runs", "show"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4500
	cfg.Ollama.QAModel = "phi3.5"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4500" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4500 in ShowAll output")
	}
}
