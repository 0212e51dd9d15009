package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "Q: What is extraction? A: Reading the bytes off disk."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FileSource{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != content {
		t.Errorf("Extract = %q, want %q", got, content)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := FileSource{}.Extract(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "nope.txt") {
		t.Errorf("error should name the path: %v", err)
	}
}

func TestExtractDirectory(t *testing.T) {
	if _, err := (FileSource{}).Extract(t.TempDir()); err == nil {
		t.Fatal("expected an error for a directory")
	}
}

func TestExtractBrokenPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (FileSource{}).Extract(path); err == nil {
		t.Fatal("expected an error for a malformed pdf")
	}
}

func TestExtractPDFExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.PDF")
	if err := os.WriteFile(path, []byte("still not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Routed through the PDF reader despite the uppercase extension, so
	// the malformed content must surface as a pdf error, not raw text.
	if _, err := (FileSource{}).Extract(path); err == nil {
		t.Fatal("expected .PDF to be parsed as a pdf")
	}
}
