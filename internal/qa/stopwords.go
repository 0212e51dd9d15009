package qa

import (
	_ "embed"
	"strings"
)

// stopwordsRaw is the embedded English stop-word list backing keyword
// extraction. Keyword support is a startup capability: an empty or missing
// list disables the keyword-question step, it never fails a call.
//
//go:embed stopwords.txt
var stopwordsRaw string

var stopwords = loadStopwords(stopwordsRaw)

func loadStopwords(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(raw, "\n") {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
