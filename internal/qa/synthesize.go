package qa

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// genericQuestions are template questions that work well against arbitrary
// prose with extractive QA models. Only the first maxGenericQuestions are
// posed per document.
var genericQuestions = []string{
	"What is the main topic discussed in this text?",
	"What are the key points mentioned?",
	"How does this text describe the main concept?",
	"What is the definition provided in this text?",
	"What are the benefits mentioned in this text?",
	"What challenges are discussed in this text?",
	"What is the most important information in this text?",
	"What are the steps or process described?",
	"How does this text explain the concept?",
	"What are the requirements mentioned in this text?",
}

// summaryQuestions drive forced generation: document-summary style prompts
// that typically yield an answer even from dry material.
var summaryQuestions = []string{
	"What is the main topic discussed in this document?",
	"What are the key concepts explained in this text?",
	"What is the most important information in this document?",
	"What are the main benefits described in this document?",
	"What is the purpose of this document?",
	"What problem does this document address?",
	"What are the key takeaways from this document?",
	"How would you summarize this document?",
	"What are the main points covered in this document?",
	"What is the conclusion of this document?",
}

const (
	maxGenericQuestions  = 5
	maxGenericChunks     = 5
	maxSummaryQuestions  = 5
	maxForcedChunks      = 3
	maxKeywordTerms      = 3
	maxKeywordChunks     = 3
	maxSentenceQuestions = 3
	keywordScanWindow    = 10000
	minKeywordTokenLen   = 5
)

// keywordQuestions derives up to maxKeywordTerms questions from the most
// frequent content terms in the head of the text. A term qualifies when it
// is alphanumeric, longer than 4 characters, not a stop word, and occurs
// more than once. Ties keep first-seen order.
func keywordQuestions(text string, stop map[string]struct{}) []string {
	text = truncate(text, keywordScanWindow)

	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(text) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(tok) < minKeywordTokenLen || !isAlnum(tok) {
			continue
		}
		if _, skip := stop[strings.ToLower(tok)]; skip {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	var questions []string
	for _, term := range order {
		if counts[term] <= 1 {
			break // sorted descending, nothing frequent remains
		}
		questions = append(questions, fmt.Sprintf("What does this text say about %s?", term))
		if len(questions) == maxKeywordTerms {
			break
		}
	}
	return questions
}

// truncate shortens s to at most n bytes without splitting a multi-byte
// rune; the cut moves back to the previous rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

var (
	// copulaRe captures the subject of an "X is Y" style sentence.
	copulaRe = regexp.MustCompile(`(?i)^([^.?!,]+?)\s+(is|are|was|were)\s+[^.?!]+`)
	// defineRe captures the term of a "definition of X" phrase.
	defineRe = regexp.MustCompile(`(?i)(?:define|definition|mean)s?\s+of\s+([^.?!,]+)`)
	// prosConsRe spots sentences weighing trade-offs.
	prosConsRe = regexp.MustCompile(`(?i)\b(advantages?|benefits?|pros?|cons?|disadvantages?)\b`)
	// sentenceEndRe is a crude sentence splitter for rule-based questions.
	sentenceEndRe = regexp.MustCompile(`[.!?]+\s+`)
)

// QuestionForSentence builds a question an extractive model can answer from
// a declarative sentence, using simple phrase rules. The sentence itself is
// the most likely answer span, so these questions score well when the rule
// actually fits.
func QuestionForSentence(sentence string) string {
	s := strings.TrimSpace(sentence)
	if m := copulaRe.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("What %s %s?", strings.ToLower(m[2]), strings.TrimSpace(m[1]))
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "how to") || strings.Contains(lower, "steps"):
		return "How would you accomplish this task?"
	case prosConsRe.MatchString(s):
		return "What are the advantages and disadvantages?"
	}
	if m := defineRe.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("What is %s?", strings.TrimSpace(m[1]))
	}

	s = truncate(s, 50)
	return fmt.Sprintf("Can you explain more about this: '%s...'?", s)
}

// sentenceQuestions derives rule-based questions from the leading sentences
// of the text, deduplicated, at most max.
func sentenceQuestions(text string, max int) []string {
	head := truncate(text, 2000)

	seen := make(map[string]struct{})
	var questions []string
	for _, s := range sentenceEndRe.Split(head, -1) {
		s = strings.TrimSpace(s)
		if len(s) < 40 {
			continue
		}
		q := QuestionForSentence(s)
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		questions = append(questions, q)
		if len(questions) == max {
			break
		}
	}
	return questions
}
