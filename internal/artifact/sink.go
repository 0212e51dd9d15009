// Package artifact writes the final question–answer dataset to disk as a
// timestamped JSON file. Validation here is the last gate before records
// become a training artifact: whatever produced them, only well-formed
// pairs reach disk.
package artifact

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kalambet/qamine/internal/qa"
)

// filenameFormat yields names like qa_pairs_20260823_141500.json so runs
// sort chronologically in a directory listing.
const filenameFormat = "qa_pairs_20060102_150405.json"

// Save validates records and writes them to a timestamped JSON file under
// dir, creating the directory if needed. It returns the path of the written
// file. An empty validated set still produces a file containing [].
func Save(records []qa.Record, dir string, minQuestionLen, minAnswerLen int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	validated := make([]qa.Record, 0, len(records))
	for _, rec := range records {
		v, ok := validate(rec, minQuestionLen, minAnswerLen)
		if !ok {
			slog.Debug("dropping invalid record", "question", rec.Question)
			continue
		}
		validated = append(validated, v)
	}
	if dropped := len(records) - len(validated); dropped > 0 {
		slog.Info("validation dropped records", "dropped", dropped, "kept", len(validated))
	}

	path := filepath.Join(dir, time.Now().Format(filenameFormat))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating artifact %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(validated); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return path, nil
}

// validate normalizes one record and reports whether it belongs in the
// artifact. Whitespace is collapsed, a missing trailing '?' is appended,
// and an unset source falls back to unknown.
func validate(rec qa.Record, minQuestionLen, minAnswerLen int) (qa.Record, bool) {
	rec.Question = collapseSpace(rec.Question)
	rec.Answer = collapseSpace(rec.Answer)

	if len(rec.Question) <= minQuestionLen || len(rec.Answer) < minAnswerLen {
		return qa.Record{}, false
	}
	if !strings.HasSuffix(rec.Question, "?") {
		rec.Question += "?"
	}
	if rec.Source == "" {
		rec.Source = qa.SourceUnknown
	}
	return rec, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
