// Package infer adapts the Ollama chat API into the extractive
// question-answering primitive the QA pipeline consumes. The model is asked
// to quote an answer span from the passage and rate its own confidence;
// structured JSON output keeps parsing deterministic.
package infer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/qamine/internal/ollama"
	"github.com/kalambet/qamine/internal/qa"
)

// Chatter is the slice of the Ollama client the adapter needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, schema *ollama.Schema) (string, error)
}

// answerTimeout bounds a single QA call. Small local models occasionally
// wedge on a pathological passage; the pipeline treats a timeout like any
// other per-candidate failure and moves on.
const answerTimeout = 30 * time.Second

const systemPrompt = `You are an extractive question answering engine.
Given a question and a passage, quote the shortest span of the passage that answers the question.
Respond with JSON: {"answer": "<exact quote from the passage, or empty string if the passage does not answer the question>", "score": <confidence between 0.0 and 1.0>}.
Never invent text that is not in the passage.`

var answerSchema = &ollama.Schema{
	Type: "object",
	Properties: map[string]ollama.SchemaProperty{
		"answer": {Type: "string", Description: "exact quote from the passage, empty if no answer"},
		"score":  {Type: "number", Description: "confidence between 0.0 and 1.0"},
	},
	Required: []string{"answer", "score"},
}

// Adapter answers questions against passages using a local Ollama model.
type Adapter struct {
	client Chatter
	model  string
}

// New creates an Adapter using the given chat client and model name.
func New(client Chatter, model string) *Adapter {
	return &Adapter{client: client, model: model}
}

type answerResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Answer implements the pipeline's extractive QA primitive. It returns
// (nil, nil) when the model reports the passage does not answer the
// question.
func (a *Adapter) Answer(ctx context.Context, question, passage string) (*qa.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Question: %s\n\nPassage:\n%s", question, passage)
	raw, err := a.client.Chat(ctx, a.model, []ollama.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, answerSchema)
	if err != nil {
		return nil, fmt.Errorf("qa inference: %w", err)
	}

	resp, err := parseAnswer(raw)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Answer)
	if text == "" {
		return nil, nil
	}

	score := resp.Score
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	// Offsets are best effort: models sometimes paraphrase despite the
	// prompt, in which case the answer is not a locatable span.
	start := strings.Index(passage, text)
	end := -1
	if start >= 0 {
		end = start + len(text)
	}

	return &qa.Answer{Text: text, Score: score, Start: start, End: end}, nil
}

// parseAnswer extracts the JSON object from the model output. Some models
// wrap structured output in markdown fences even when a format constraint
// is set.
func parseAnswer(raw string) (answerResponse, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	var resp answerResponse
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		return answerResponse{}, fmt.Errorf("parsing qa response %q: %w", raw, err)
	}
	return resp, nil
}
