package qa

import (
	"context"
	"testing"
)

type mockAnswerer struct {
	answerFn func(ctx context.Context, question, passage string) (*Answer, error)
	calls    int
}

func (m *mockAnswerer) Answer(ctx context.Context, question, passage string) (*Answer, error) {
	m.calls++
	return m.answerFn(ctx, question, passage)
}

func TestExtractLabeledPairs(t *testing.T) {
	text := `Q: What is X? A: X is a thing used for testing here.
Question 2: How does the second part work? Answer: It works by reading both labels in order.`

	p := New(DefaultConfig(), nil)
	records := p.ExtractExplicit(context.Background(), text)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Question != "What is X?" {
		t.Errorf("unexpected first question: %q", records[0].Question)
	}
	if records[0].Answer != "X is a thing used for testing here." {
		t.Errorf("unexpected first answer: %q", records[0].Answer)
	}
	if records[1].Question != "How does the second part work?" {
		t.Errorf("unexpected second question: %q", records[1].Question)
	}
	for i, rec := range records {
		if rec.Source != SourceExtracted {
			t.Errorf("record %d: expected source %q, got %q", i, SourceExtracted, rec.Source)
		}
		if rec.Confidence != 1.0 {
			t.Errorf("record %d: expected confidence 1.0, got %v", i, rec.Confidence)
		}
	}
}

func TestExtractNumberedList(t *testing.T) {
	text := `1. What is water made of? It is water.
2. How do plants grow tall? They grow using sunlight and nutrients from soil.`

	p := New(DefaultConfig(), nil)
	records := p.ExtractExplicit(context.Background(), text)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Answer != "It is water." {
		t.Errorf("short factual answer should survive extraction, got %q", records[0].Answer)
	}
	if records[1].Question != "How do plants grow tall?" {
		t.Errorf("unexpected second question: %q", records[1].Question)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	text := `Q: What is idempotence? A: Running the same extraction twice yields identical output.`

	p := New(DefaultConfig(), nil)
	first := p.ExtractExplicit(context.Background(), text)
	second := p.ExtractExplicit(context.Background(), text)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 record from each pass, got %d and %d", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("passes disagree: %+v vs %+v", first[0], second[0])
	}
}

func TestExtractRejectsDirtyAnswer(t *testing.T) {
	// The answer body carries a question mark, so the pair is a mis-split
	// and must not be emitted.
	text := `Q: What is ambiguity? A: Maybe this? It depends on the reader.`

	p := New(DefaultConfig(), nil)
	records := p.ExtractExplicit(context.Background(), text)

	if len(records) != 0 {
		t.Fatalf("expected no records for dirty answer, got %+v", records)
	}
}

func TestQuestionListFallback(t *testing.T) {
	text := `Review these before the exam:
1. What is photosynthesis in green plants?
2. Why do leaves change color in autumn months?`

	model := &mockAnswerer{
		answerFn: func(ctx context.Context, question, passage string) (*Answer, error) {
			return &Answer{Text: "Photosynthesis converts sunlight into chemical energy inside leaves.", Score: 0.9}, nil
		},
	}
	p := New(DefaultConfig(), model)
	records := p.ExtractExplicit(context.Background(), text)

	if len(records) == 0 {
		t.Fatal("expected records from question-list fallback")
	}
	for i, rec := range records {
		if rec.Source != SourceModelExtracted {
			t.Errorf("record %d: expected source %q, got %q", i, SourceModelExtracted, rec.Source)
		}
		if rec.Confidence != 1.0 {
			t.Errorf("record %d: accepted list answers are ground truth, got confidence %v", i, rec.Confidence)
		}
	}
	if model.calls == 0 {
		t.Error("expected the model to be consulted")
	}
}

func TestQuestionListBelowThreshold(t *testing.T) {
	text := `Study guide:
1. What is photosynthesis in green plants?`

	model := &mockAnswerer{
		answerFn: func(ctx context.Context, question, passage string) (*Answer, error) {
			return &Answer{Text: "Photosynthesis converts sunlight into chemical energy.", Score: 0.5}, nil
		},
	}
	p := New(DefaultConfig(), model)
	records := p.ExtractExplicit(context.Background(), text)

	if len(records) != 0 {
		t.Fatalf("expected low-score answers to be rejected, got %+v", records)
	}
}

func TestExtractModeSkipsQuestionList(t *testing.T) {
	text := `Questions to ponder:
1. What is the meaning of careful configuration?`

	model := &mockAnswerer{
		answerFn: func(ctx context.Context, question, passage string) (*Answer, error) {
			return &Answer{Text: "It should never be asked in this mode.", Score: 0.99}, nil
		},
	}
	cfg := DefaultConfig()
	cfg.Mode = ModeExtract
	p := New(cfg, model)

	if records := p.ExtractExplicit(context.Background(), text); len(records) != 0 {
		t.Fatalf("extract mode must not resolve question lists, got %+v", records)
	}
	if model.calls != 0 {
		t.Errorf("extract mode must not call the model, got %d calls", model.calls)
	}
}

func TestQuestionListNoModel(t *testing.T) {
	text := `Open questions:
1. What is the plan for the next quarter exactly?`

	p := New(DefaultConfig(), nil)
	if records := p.ExtractExplicit(context.Background(), text); len(records) != 0 {
		t.Fatalf("expected no records without a model, got %+v", records)
	}
}

func TestDetectQuestionList(t *testing.T) {
	text := `Intro paragraph without questions.
1. What makes a numbered question valid?
- Why do bulleted questions also count?
How does a bare line question register?`

	questions := detectQuestionList(text)
	if len(questions) != 3 {
		t.Fatalf("expected 3 discovered questions, got %d: %v", len(questions), questions)
	}
}
