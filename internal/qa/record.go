package qa

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Source identifies how a Record was derived.
type Source string

const (
	// SourceExtracted marks pairs lifted verbatim from explicit Q&A markup.
	SourceExtracted Source = "extracted"
	// SourceModelExtracted marks pairs whose question was found in the text
	// and whose answer was resolved by the model.
	SourceModelExtracted Source = "model_extracted"
	// SourceGenerated marks pairs built from synthesized template questions.
	SourceGenerated Source = "generated"
	// SourceKeywordGenerated marks pairs built from frequent content terms.
	SourceKeywordGenerated Source = "keyword_generated"
	// SourceForcedGenerated marks pairs from the degraded last-resort mode.
	SourceForcedGenerated Source = "forced_generated"
	// SourceUnknown is the fallback tag for records of unclear provenance.
	SourceUnknown Source = "unknown"
)

// Record is one question–answer pair derived from a document.
type Record struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Mode selects the processing strategy for a document.
type Mode string

const (
	// ModeExtract runs pattern extraction only.
	ModeExtract Mode = "extract"
	// ModeGenerate runs model-backed question synthesis only.
	ModeGenerate Mode = "generate"
	// ModeAuto tries extraction first and falls back to generation.
	ModeAuto Mode = "auto"
)

// ParseMode validates a mode string from configuration or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExtract, ModeGenerate, ModeAuto:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want extract, generate, or auto)", s)
	}
}

// Config holds the tunable thresholds shared read-only by all core
// components. Construct once per run; never mutate afterwards.
type Config struct {
	MinQuestionLength   int
	MinAnswerLength     int
	Mode                Mode
	ConfidenceThreshold float64
}

// DefaultConfig returns the standard processing settings.
func DefaultConfig() Config {
	return Config{
		MinQuestionLength:   10,
		MinAnswerLength:     15,
		Mode:                ModeAuto,
		ConfidenceThreshold: 0.65,
	}
}

// generationThreshold relaxes the configured confidence threshold for
// synthesized questions, floored at 0.3.
func (c Config) generationThreshold() float64 {
	t := c.ConfidenceThreshold - 0.2
	if t < 0.3 {
		t = 0.3
	}
	return t
}

// nextQuestionMarkerRe detects a question label that leaked into an answer
// body, which indicates a mis-split pattern match.
var nextQuestionMarkerRe = regexp.MustCompile(`(?i)(Q:|Question\s*\d)`)

// cleanAnswer reports whether an answer body is free of question marks and
// residual question-boundary markers.
func cleanAnswer(answer string) bool {
	return !strings.Contains(answer, "?") && !nextQuestionMarkerRe.MatchString(answer)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
