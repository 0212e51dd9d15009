package qa

import (
	"context"
	"regexp"
	"strings"
)

var (
	// questionLabelRe locates explicit question labels: "Q:", "Question:",
	// "Question 3.". Answer bodies run from one label to the next.
	questionLabelRe = regexp.MustCompile(`(?i)\b(?:Q:|Question\s*\d*[.:])`)

	// labeledPairRe splits the text following a question label into a
	// question (up to the first '?') and the answer behind its own label.
	labeledPairRe = regexp.MustCompile(`(?is)\A\s*(.+?\?)\s*(?:\bA:|\bAnswer\s*\d*[.:])\s*(.+?)\s*\z`)

	// numberedItemRe locates numbered list items like "1." or "2)".
	numberedItemRe = regexp.MustCompile(`(?:^|\s)\d+[.)]\s*`)

	// numberedPairRe splits a numbered item into a question up to the first
	// '?' and the trailing text as its answer.
	numberedPairRe = regexp.MustCompile(`(?s)\A([^.?]+\?)\s*(.+?)\s*\z`)

	// looseQuestionRe accepts questions without a '?' when they carry an
	// interrogative token. Guards against false positives from list markup.
	looseQuestionRe = regexp.MustCompile(`(?i)\b(what|how)\b`)
)

// questionListPatterns detect bare question lists (numbered, bulleted, or
// line-initial capitalized sentences ending in '?') when no explicit Q&A
// pairs exist. Discovered questions feed model resolution, they are never
// returned directly.
var questionListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\.\s*([A-Z][^.?]+\?)`),
	regexp.MustCompile(`[•*-]\s*([A-Z][^.?]+\?)`),
	regexp.MustCompile(`(?:^|\n)([A-Z][^.?]+\?)`),
}

// maxListQuestions caps how many discovered questions are resolved with the
// model, for cost control.
const maxListQuestions = 10

// pattern-extracted answers use a lower length floor than model answers so
// short factual answers in explicit lists ("It is water.") survive; the
// sink re-applies the configured minimum before anything reaches disk.
const extractedAnswerFloor = 10

// ExtractExplicit scans text for pre-existing Q&A structure. When the text
// carries explicit pairs they are returned with confidence 1.0. Otherwise
// it falls back to bare question-list detection and resolves each question
// against the document with the model, when one is available.
func (p *Pipeline) ExtractExplicit(ctx context.Context, text string) []Record {
	records := p.extractLabeled(text)
	records = append(records, p.extractNumbered(text)...)
	if len(records) > 0 {
		return records
	}

	if p.cfg.Mode == ModeExtract || p.model == nil {
		return nil
	}
	return p.resolveQuestionList(ctx, text, detectQuestionList(text))
}

func (p *Pipeline) extractLabeled(text string) []Record {
	labels := questionLabelRe.FindAllStringIndex(text, -1)
	var out []Record
	for i, loc := range labels {
		end := len(text)
		if i+1 < len(labels) {
			end = labels[i+1][0]
		}
		m := labeledPairRe.FindStringSubmatch(text[loc[1]:end])
		if m == nil {
			continue
		}
		if rec, ok := p.patternRecord(m[1], m[2]); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (p *Pipeline) extractNumbered(text string) []Record {
	items := numberedItemRe.FindAllStringIndex(text, -1)
	var out []Record
	for i, loc := range items {
		end := len(text)
		if i+1 < len(items) {
			end = items[i+1][0]
		}
		m := numberedPairRe.FindStringSubmatch(text[loc[1]:end])
		if m == nil {
			continue
		}
		if rec, ok := p.patternRecord(m[1], m[2]); ok {
			out = append(out, rec)
		}
	}
	return out
}

// patternRecord validates one pattern match into an extracted Record.
func (p *Pipeline) patternRecord(question, answer string) (Record, bool) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return Record{}, false
	}
	if !strings.Contains(question, "?") && !looseQuestionRe.MatchString(question) {
		return Record{}, false
	}
	if len(answer) < extractedAnswerFloor || !cleanAnswer(answer) {
		return Record{}, false
	}
	return Record{
		Question:   question,
		Answer:     answer,
		Source:     SourceExtracted,
		Confidence: 1.0,
	}, true
}

func detectQuestionList(text string) []string {
	var questions []string
	for _, re := range questionListPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			questions = append(questions, strings.TrimSpace(m[1]))
		}
	}
	return questions
}

// resolveQuestionList answers discovered questions against the document.
// Accepted records are treated as ground truth: the configured confidence
// threshold gates acceptance, then confidence is forced to 1.0.
func (p *Pipeline) resolveQuestionList(ctx context.Context, text string, questions []string) []Record {
	if len(questions) > maxListQuestions {
		questions = questions[:maxListQuestions]
	}
	contexts := contextsFor(text)

	var out []Record
	for _, q := range questions {
		best := resolveBest(ctx, p.model, q, contexts)
		if best == nil || best.Score < p.cfg.ConfidenceThreshold {
			continue
		}
		answer := strings.TrimSpace(best.Text)
		if len(q) <= p.cfg.MinQuestionLength || len(answer) < p.cfg.MinAnswerLength {
			continue
		}
		if !cleanAnswer(answer) {
			continue
		}
		out = append(out, Record{
			Question:   q,
			Answer:     answer,
			Source:     SourceModelExtracted,
			Confidence: 1.0,
		})
	}
	return out
}
