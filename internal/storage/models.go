package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one invocation of the extraction pipeline over a document batch.
type Run struct {
	ID            string
	StartedAt     time.Time
	CompletedAt   time.Time
	Status        string
	Mode          string
	DocumentCount int
	RecordCount   int
	ArtifactPath  string
	Error         string
}

// DocumentResult records the per-document outcome within a run.
type DocumentResult struct {
	ID          int64
	RunID       string
	Path        string
	TextChars   int
	RecordCount int
	Error       string
	ProcessedAt time.Time
}
