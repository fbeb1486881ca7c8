// Package chunker splits normalized document text into overlapping,
// sentence-aware segments carrying positional and source metadata. Chunks are
// the unit of embedding and indexing.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// sentenceLookback is how far back from a hard chunk boundary a
	// sentence-terminating period is searched for.
	sentenceLookback = 100
	// minChunkChars discards fragments too short to be useful retrieval
	// context.
	minChunkChars = 50
)

// Metadata is caller-supplied per-document context merged verbatim into every
// chunk.
type Metadata struct {
	Filename      string
	Fingerprint   string
	AssetCategory string
	DocType       string
}

// Chunk is one overlapping segment of a document's cleaned text.
type Chunk struct {
	Text      string
	Index     int
	StartChar int
	EndChar   int
	Metadata  Metadata
}

// Chunker produces character-bounded chunks pulled back to sentence
// boundaries where possible.
type Chunker struct {
	size    int
	overlap int
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Everything outside the safelist (letters, digits, underscore,
	// whitespace, common punctuation) is stripped. Lossy on purpose:
	// downstream matching is simpler without control and symbol noise.
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()-]`)
)

// New creates a Chunker. Overlap must be smaller than size or the cursor
// would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Clean collapses whitespace runs to single spaces, strips characters outside
// the safelist, and trims the result.
func Clean(text string) string {
	text = disallowed.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk cleans text and splits it into overlapping chunks, merging meta into
// each. Offsets are rune positions into the cleaned text.
func (c *Chunker) Chunk(text string, meta Metadata) []Chunk {
	runes := []rune(Clean(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < len(runes) {
		end := start + c.size
		if end < len(runes) {
			// Pull the boundary back to the rightmost period within
			// the last sentenceLookback characters of the window. If
			// none is found the hard boundary stands: progress beats
			// sentence alignment.
			if p := lastPeriod(runes, end-sentenceLookback, end); p > start {
				end = p + 1
			}
		}
		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}

		content := strings.TrimSpace(string(runes[start:sliceEnd]))
		if len([]rune(content)) > minChunkChars {
			chunks = append(chunks, Chunk{
				Text:      content,
				Index:     index,
				StartChar: start,
				EndChar:   sliceEnd,
				Metadata:  meta,
			})
			index++
		}

		next := end - c.overlap
		if next <= start {
			// A pulled-back boundary can land the next window at or
			// before the current one when the overlap is close to the
			// chunk size. Force the hard stride so the cursor always
			// advances.
			next = start + (c.size - c.overlap)
		}
		start = next
	}
	return chunks
}

// lastPeriod returns the index of the rightmost '.' in runes[from:to), or -1.
func lastPeriod(runes []rune, from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	for i := to - 1; i >= from; i-- {
		if runes[i] == '.' {
			return i
		}
	}
	return -1
}
