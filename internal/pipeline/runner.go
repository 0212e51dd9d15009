// Package pipeline orchestrates a full extraction run: pull text out of
// each document, derive question–answer records, write the JSON artifact,
// and keep the run ledger honest about what happened.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/qamine/internal/config"
	"github.com/kalambet/qamine/internal/qa"
	"github.com/kalambet/qamine/internal/storage"
)

// TextSource extracts document text.
type TextSource interface {
	Extract(path string) (string, error)
}

// Processor turns document text into question–answer records.
type Processor interface {
	Process(ctx context.Context, text string) []qa.Record
}

// RunStore is the slice of the storage layer the runner needs.
type RunStore interface {
	SaveRun(r storage.Run) error
	CompleteRun(id string, recordCount int, artifactPath string) error
	FailRun(id string, errMsg string) error
	SaveDocumentResult(d storage.DocumentResult) error
}

// Saver writes the final record set and returns the artifact path.
type Saver func(records []qa.Record, dir string) (string, error)

// Runner executes extraction runs over document batches.
type Runner struct {
	source  TextSource
	qa      Processor
	store   RunStore
	save    Saver
	outDir  string
	mode    string
	workers int
}

// New assembles a Runner. workers bounds how many documents are processed
// concurrently; values below 1 are treated as 1.
func New(source TextSource, proc Processor, store RunStore, save Saver, outDir, mode string, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		source:  source,
		qa:      proc,
		store:   store,
		save:    save,
		outDir:  outDir,
		mode:    mode,
		workers: workers,
	}
}

// Result summarizes a completed run.
type Result struct {
	RunID        string
	ArtifactPath string
	Records      []qa.Record
	Documents    []storage.DocumentResult
}

// Run processes the documents and writes one combined artifact. A document
// that fails to extract fails the whole run; a document that yields no text
// is recorded with zero records and the run continues.
func (r *Runner) Run(ctx context.Context, docs []config.Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to process")
	}

	runID := uuid.NewString()
	if err := r.store.SaveRun(storage.Run{
		ID:            runID,
		StartedAt:     time.Now(),
		Mode:          r.mode,
		DocumentCount: len(docs),
	}); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	slog.Info("run started", "run_id", runID, "documents", len(docs), "mode", r.mode)

	perDoc := make([][]qa.Record, len(docs))
	results := make([]storage.DocumentResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, doc := range docs {
		g.Go(func() error {
			text, err := r.source.Extract(doc.Path)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", doc.Name, err)
			}

			res := storage.DocumentResult{
				RunID:       runID,
				Path:        doc.Path,
				TextChars:   len(text),
				ProcessedAt: time.Now(),
			}
			if strings.TrimSpace(text) == "" {
				slog.Warn("document yielded no text", "run_id", runID, "document", doc.Name)
				res.Error = "no text extracted"
				results[i] = res
				return nil
			}

			records := r.qa.Process(gctx, text)
			slog.Info("document processed", "run_id", runID, "document", doc.Name, "records", len(records))
			res.RecordCount = len(records)
			perDoc[i] = records
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.failRun(runID, err)
		return nil, err
	}

	for _, res := range results {
		if err := r.store.SaveDocumentResult(res); err != nil {
			slog.Warn("could not record document result", "run_id", runID, "path", res.Path, "error", err)
		}
	}

	var all []qa.Record
	for _, records := range perDoc {
		all = append(all, records...)
	}

	artifactPath, err := r.save(all, r.outDir)
	if err != nil {
		r.failRun(runID, err)
		return nil, fmt.Errorf("saving artifact: %w", err)
	}

	if err := r.store.CompleteRun(runID, len(all), artifactPath); err != nil {
		return nil, fmt.Errorf("completing run: %w", err)
	}
	slog.Info("run completed", "run_id", runID, "records", len(all), "artifact", artifactPath)

	return &Result{
		RunID:        runID,
		ArtifactPath: artifactPath,
		Records:      all,
		Documents:    results,
	}, nil
}

func (r *Runner) failRun(runID string, cause error) {
	if err := r.store.FailRun(runID, cause.Error()); err != nil {
		slog.Warn("could not mark run failed", "run_id", runID, "error", err)
	}
}
