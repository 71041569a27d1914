package textsplit

import (
	"strings"

	"github.com/furkantngr/ragchatbot/pkg/pdfloader"
)

const (
	DefaultChunkSize = 1024
	DefaultOverlap   = 200
)

// Chunk is the unit of embedding and retrieval: a bounded slice of
// extracted text plus the metadata of the unit it came from.
type Chunk struct {
	Content string
	Source  string
	Page    int
}

// RecursiveSplitter splits text into chunks of at most chunkSize
// characters with overlap characters shared between consecutive chunks
// of the same unit. It prefers natural boundaries (paragraph, then
// sentence, then word) and falls back to a hard cut only when no
// separator helps. Same input always yields the same boundaries.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	// Overlap must stay strictly below chunkSize or hardSplit cannot
	// advance; clamp relative to the chunk size, not the default.
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: []string{"\n\n", "\n", ". ", " "},
	}
}

// Split chunks every unit independently; overlap never crosses units.
func (s *RecursiveSplitter) Split(units []pdfloader.TextUnit) []Chunk {
	var chunks []Chunk
	for _, unit := range units {
		for _, piece := range s.SplitText(unit.Content) {
			chunks = append(chunks, Chunk{
				Content: piece,
				Source:  unit.Source,
				Page:    unit.Page,
			})
		}
	}
	return chunks
}

// SplitText splits a single string. Empty pieces are discarded.
func (s *RecursiveSplitter) SplitText(text string) []string {
	raw := s.split(text, s.separators)
	out := make([]string, 0, len(raw))
	for _, piece := range raw {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	var remaining []string
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			remaining = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	// SplitAfter keeps the separator attached so re-joining the pieces
	// reproduces the original text.
	parts := strings.SplitAfter(text, sep)

	var final []string
	var pending []string
	for _, part := range parts {
		if len(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending)...)
			pending = nil
		}
		final = append(final, s.split(part, remaining)...)
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending)...)
	}
	return final
}

// merge greedily packs small pieces into chunks of at most chunkSize,
// carrying a tail of up to overlap characters into the next chunk.
func (s *RecursiveSplitter) merge(parts []string) []string {
	var out []string
	var current []string
	total := 0

	for _, part := range parts {
		if total+len(part) > s.chunkSize && total > 0 {
			out = append(out, strings.Join(current, ""))
			// Drop head pieces until only the overlap tail remains and
			// the incoming piece fits.
			for len(current) > 0 && (total > s.overlap || total+len(part) > s.chunkSize) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, part)
		total += len(part)
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, ""))
	}
	return out
}

// hardSplit is the last resort: fixed windows stepping by
// chunkSize-overlap, rune-safe.
func (s *RecursiveSplitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
