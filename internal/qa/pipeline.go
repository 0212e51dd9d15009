package qa

import (
	"context"
	"log/slog"
	"strings"
)

// Pipeline derives question–answer records from document text. Settings and
// the inference model are fixed at construction and shared read-only across
// calls, so a Pipeline is safe for concurrent use on independent documents.
type Pipeline struct {
	cfg            Config
	model          Answerer
	keywordSupport bool
}

// New builds a Pipeline. model may be nil when no inference backend is
// available; generation paths then yield no records while pattern
// extraction keeps working.
func New(cfg Config, model Answerer) *Pipeline {
	return &Pipeline{
		cfg:            cfg,
		model:          model,
		keywordSupport: len(stopwords) > 0,
	}
}

// Process dispatches on the configured mode. Auto mode tries pattern
// extraction first and falls back to generation only when extraction
// produced nothing — the single fallback transition in the dispatcher.
func (p *Pipeline) Process(ctx context.Context, text string) []Record {
	switch p.cfg.Mode {
	case ModeExtract:
		records := p.ExtractExplicit(ctx, text)
		slog.Info("extracted explicit Q&A pairs", "count", len(records))
		return records

	case ModeGenerate:
		records := p.GenerateFromContent(ctx, text)
		slog.Info("generated Q&A pairs", "count", len(records))
		return records

	default:
		records := p.ExtractExplicit(ctx, text)
		if len(records) > 0 {
			slog.Info("auto mode: extracted explicit Q&A pairs", "count", len(records))
			return records
		}
		records = p.GenerateFromContent(ctx, text)
		slog.Info("auto mode: generated Q&A pairs after extraction found none", "count", len(records))
		return records
	}
}

// GenerateFromContent synthesizes questions for documents without explicit
// Q&A structure and resolves them against chunked context windows. Returns
// nil when no model is available.
func (p *Pipeline) GenerateFromContent(ctx context.Context, text string) []Record {
	if p.model == nil || text == "" {
		return nil
	}

	chunks := split(text, 2000, 1500, 200, 0)
	if len(chunks) == 0 {
		end := min(2000, len(text))
		chunks = []Chunk{{Text: text[:end]}}
	}
	slog.Info("processing text chunks for QA generation", "chunks", len(chunks))

	threshold := p.cfg.generationThreshold()
	var out []Record

	for _, q := range genericQuestions[:min(maxGenericQuestions, len(genericQuestions))] {
		if rec, ok := p.resolveGenerated(ctx, q, chunks[:min(maxGenericChunks, len(chunks))], threshold, SourceGenerated); ok {
			out = append(out, rec)
		}
	}

	for _, q := range sentenceQuestions(text, maxSentenceQuestions) {
		if rec, ok := p.resolveGenerated(ctx, q, chunks[:min(maxKeywordChunks, len(chunks))], threshold, SourceGenerated); ok {
			out = append(out, rec)
		}
	}

	if p.keywordSupport {
		for _, q := range keywordQuestions(text, stopwords) {
			if rec, ok := p.resolveGenerated(ctx, q, chunks[:min(maxKeywordChunks, len(chunks))], threshold, SourceKeywordGenerated); ok {
				out = append(out, rec)
			}
		}
	} else {
		slog.Debug("keyword extraction unavailable, skipping keyword questions")
	}

	return out
}

// ForceGenerate is the degraded last-resort mode: a fixed document-summary
// question set over non-overlapping windows of the first 50,000 characters.
// It is never invoked by Process; callers needing a guaranteed attempt use
// it explicitly.
func (p *Pipeline) ForceGenerate(ctx context.Context, text string) []Record {
	if p.model == nil || text == "" {
		slog.Warn("force generation skipped: model not loaded or text empty")
		return nil
	}

	chunks := split(text, 3000, 3000, 300, 50000)
	if len(chunks) == 0 {
		slog.Warn("no usable text chunks for forced generation")
		return nil
	}
	slog.Info("processing chunks for forced generation", "chunks", len(chunks))

	threshold := p.cfg.generationThreshold()
	var out []Record
	for _, q := range summaryQuestions[:min(maxSummaryQuestions, len(summaryQuestions))] {
		if rec, ok := p.resolveGenerated(ctx, q, chunks[:min(maxForcedChunks, len(chunks))], threshold, SourceForcedGenerated); ok {
			out = append(out, rec)
		}
	}
	slog.Info("force-generated Q&A pairs", "count", len(out))
	return out
}

// resolveGenerated resolves one synthesized question and applies the
// generation acceptance gate: best score over the given chunks must reach
// threshold and the answer must be long enough and clean.
func (p *Pipeline) resolveGenerated(ctx context.Context, question string, chunks []Chunk, threshold float64, src Source) (Record, bool) {
	best := resolveBest(ctx, p.model, question, chunks)
	if best == nil || best.Score < threshold {
		return Record{}, false
	}
	answer := strings.TrimSpace(best.Text)
	if len(answer) < p.cfg.MinAnswerLength || !cleanAnswer(answer) {
		return Record{}, false
	}
	return Record{
		Question:   question,
		Answer:     answer,
		Source:     src,
		Confidence: round2(best.Score),
	}, true
}
