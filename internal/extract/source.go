// Package extract pulls plain text out of input documents. PDFs are read
// page by page; anything else is treated as UTF-8 text.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Source extracts the text content of a document at path.
type Source interface {
	Extract(path string) (string, error)
}

// FileSource reads documents from the local filesystem.
type FileSource struct{}

// Extract returns the text content of the file. A missing file is an error
// that terminates the run; the caller decides what a failed document means
// for the batch.
func (FileSource) Extract(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a document", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// extractPDF concatenates the plain text of every page. Pages that fail to
// decode are skipped with a warning; a PDF with zero readable pages yields
// empty text, not an error.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			slog.Warn("skipping unreadable pdf page", "path", path, "page", i)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping pdf page with broken text", "path", path, "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
