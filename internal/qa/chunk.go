package qa

// Chunk is a window of document text handed to the inference primitive so
// that contexts stay within its input-size limit. Chunks are ephemeral:
// created and discarded within a single resolution call.
type Chunk struct {
	Offset int
	Text   string
}

// maxContextLength is a context window size (in characters) the QA model
// handles reliably; chunking kicks in for longer text.
const maxContextLength = 384

// split cuts text into windows of size chars taken every step chars,
// keeping only windows longer than minLen. When limit > 0 only the first
// limit chars of text are scanned. step < size yields overlapping windows.
func split(text string, size, step, minLen, limit int) []Chunk {
	if step <= 0 {
		step = size
	}
	scan := len(text)
	if limit > 0 && limit < scan {
		scan = limit
	}
	var chunks []Chunk
	for i := 0; i < scan; i += step {
		end := i + size
		if end > scan {
			end = scan
		}
		if end-i > minLen {
			chunks = append(chunks, Chunk{Offset: i, Text: text[i:end]})
		}
	}
	return chunks
}

// contextsFor returns the context windows used to resolve a question from
// the document as a whole: the full text when it fits the model, otherwise
// overlapping double-size windows.
func contextsFor(text string) []Chunk {
	if len(text) <= maxContextLength*3 {
		return []Chunk{{Offset: 0, Text: text}}
	}
	size := maxContextLength * 2
	step := size - maxContextLength/2
	return split(text, size, step, 100, 0)
}
