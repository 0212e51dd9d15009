package qa

import (
	"context"
	"log/slog"
)

// Answer is one extractive QA result from the inference backend.
// Start and End are byte offsets of Text within the passage it was
// resolved against; both are -1 when the output is not an exact span.
type Answer struct {
	Text  string
	Score float64
	Start int
	End   int
}

// Answerer is the extractive question-answering primitive. Answer returns
// nil (with a nil error) when the model finds no answer in the passage.
// Absence and per-call errors are both expected, frequent outcomes: callers
// skip the candidate and continue rather than abort.
type Answerer interface {
	Answer(ctx context.Context, question, passage string) (*Answer, error)
}

// resolveBest queries the model with each chunk and keeps the best-scoring
// answer. Individual chunk failures are logged and skipped; failure
// isolation is per-candidate, never per-document.
func resolveBest(ctx context.Context, model Answerer, question string, chunks []Chunk) *Answer {
	var best *Answer
	for _, ch := range chunks {
		res, err := model.Answer(ctx, question, ch.Text)
		if err != nil {
			slog.Debug("inference failed for chunk", "question", question, "offset", ch.Offset, "error", err)
			continue
		}
		if res == nil {
			continue
		}
		if best == nil || res.Score > best.Score {
			best = res
		}
	}
	return best
}
