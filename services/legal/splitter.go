package legal

import "strings"

// Splitter cuts article bodies into overlapping chunks sized for embedding.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter builds a splitter; size and overlap are in runes.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 8
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split cuts text into chunks of at most chunkSize runes, preferring to break
// at paragraph and sentence boundaries, with the configured overlap carried
// into the next chunk.
func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBreak(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak looks backwards from end for a paragraph break, then a sentence
// end, then a space; a hard cut is the last resort.
func findBreak(runes []rune, start, end int) int {
	limit := start + (end-start)/2

	for i := end; i > limit; i-- {
		if runes[i-1] == '\n' && i < len(runes) && runes[i] == '\n' {
			return i
		}
	}
	for i := end; i > limit; i-- {
		switch runes[i-1] {
		case '.', '!', '?', ';':
			return i
		}
	}
	for i := end; i > limit; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' {
			return i
		}
	}
	return end
}
