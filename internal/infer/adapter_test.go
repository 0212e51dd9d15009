package infer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kalambet/qamine/internal/ollama"
)

type mockChatter struct {
	chatFn func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error)
}

func (m *mockChatter) Chat(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
	return m.chatFn(ctx, model, messages, schema)
}

func TestAnswer_Span(t *testing.T) {
	passage := "The mitochondrion is the powerhouse of the cell."
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			if schema == nil {
				t.Error("expected a JSON schema constraint")
			}
			if model != "phi3.5" {
				t.Errorf("model = %q, want %q", model, "phi3.5")
			}
			return `{"answer": "the powerhouse of the cell", "score": 0.92}`, nil
		},
	}

	a := New(client, "phi3.5")
	ans, err := a.Answer(context.Background(), "What is the mitochondrion?", passage)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans == nil {
		t.Fatal("expected an answer")
	}
	if ans.Text != "the powerhouse of the cell" {
		t.Errorf("text = %q", ans.Text)
	}
	if ans.Score != 0.92 {
		t.Errorf("score = %v, want 0.92", ans.Score)
	}
	wantStart := strings.Index(passage, ans.Text)
	if ans.Start != wantStart || ans.End != wantStart+len(ans.Text) {
		t.Errorf("offsets = [%d,%d], want [%d,%d]", ans.Start, ans.End, wantStart, wantStart+len(ans.Text))
	}
}

func TestAnswer_NoAnswer(t *testing.T) {
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			return `{"answer": "", "score": 0.0}`, nil
		},
	}

	a := New(client, "phi3.5")
	ans, err := a.Answer(context.Background(), "What is not here?", "Unrelated text.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans != nil {
		t.Fatalf("expected nil for no answer, got %+v", ans)
	}
}

func TestAnswer_MarkdownFences(t *testing.T) {
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			return "```json\n{\"answer\": \"forty-two\", \"score\": 0.7}\n```", nil
		},
	}

	a := New(client, "phi3.5")
	ans, err := a.Answer(context.Background(), "What is the answer?", "The answer is forty-two.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans == nil || ans.Text != "forty-two" {
		t.Fatalf("expected fenced JSON to parse, got %+v", ans)
	}
}

func TestAnswer_Paraphrase(t *testing.T) {
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			return `{"answer": "a paraphrased reply not in the passage", "score": 0.6}`, nil
		},
	}

	a := New(client, "phi3.5")
	ans, err := a.Answer(context.Background(), "What happened?", "Something else entirely.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans == nil {
		t.Fatal("expected an answer")
	}
	if ans.Start != -1 || ans.End != -1 {
		t.Errorf("paraphrase must carry offsets [-1,-1], got [%d,%d]", ans.Start, ans.End)
	}
}

func TestAnswer_ScoreClamped(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: `{"answer": "clamp me please", "score": 1.7}`, want: 1},
		{raw: `{"answer": "clamp me please", "score": -0.3}`, want: 0},
	}
	for _, tt := range tests {
		client := &mockChatter{
			chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
				return tt.raw, nil
			},
		}
		a := New(client, "phi3.5")
		ans, err := a.Answer(context.Background(), "q", "clamp me please and more text")
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		if ans.Score != tt.want {
			t.Errorf("score for %q = %v, want %v", tt.raw, ans.Score, tt.want)
		}
	}
}

func TestAnswer_ChatError(t *testing.T) {
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	a := New(client, "phi3.5")
	if _, err := a.Answer(context.Background(), "q", "p"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestAnswer_MalformedJSON(t *testing.T) {
	client := &mockChatter{
		chatFn: func(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error) {
			return "I refuse to answer in JSON", nil
		},
	}

	a := New(client, "phi3.5")
	if _, err := a.Answer(context.Background(), "q", "p"); err == nil {
		t.Fatal("expected a parse error")
	}
}
