package chunker

import (
	"fmt"
	"log/slog"

	domain "github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
)

// DefaultSeparators lists chunk boundaries from most to least preferred.
// A boundary falls just after the separator. When none is present the text
// is cut between characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Span is a half-open range of rune offsets.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes covered.
func (s Span) Len() int { return s.End - s.Start }

// RecursiveChunker splits text on the most preferred separator available near
// each cut, carrying at least the configured overlap into the next chunk.
type RecursiveChunker struct {
	separators [][]rune
	counter    TokenCounter
	logger     *slog.Logger
}

// NewRecursiveChunker constructs a chunker. A nil counter skips token counts.
func NewRecursiveChunker(counter TokenCounter, logger *slog.Logger) *RecursiveChunker {
	seps := make([][]rune, len(DefaultSeparators))
	for i, sep := range DefaultSeparators {
		seps[i] = []rune(sep)
	}
	return &RecursiveChunker{
		separators: seps,
		counter:    counter,
		logger:     logger.With("component", "chunker"),
	}
}

// Split implements the summarizer Chunker.
func (c *RecursiveChunker) Split(text string, cfg domain.ProcessingConfig) ([]domain.Chunk, error) {
	runes := []rune(text)
	spans, err := c.Spans(runes, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Chunk, len(spans))
	for i, span := range spans {
		chunkText := string(runes[span.Start:span.End])
		out[i] = domain.Chunk{
			Index: i,
			Text:  chunkText,
			Start: span.Start,
			End:   span.End,
			Runes: span.Len(),
		}
		if c.counter != nil {
			out[i].TokenCount = c.counter.Count(chunkText)
		}
	}
	c.logger.Debug("text chunked", "characters", len(runes), "chunks", len(out), "chunk_size", cfg.ChunkSize, "chunk_overlap", cfg.ChunkOverlap)
	return out, nil
}

// Spans computes chunk ranges over runes.
//
// Every span holds at most size runes. The first starts at 0, the last ends at
// len(runes), and each later span starts no later than the previous end minus
// overlap and no earlier than the previous end minus one and a half overlaps.
func (c *RecursiveChunker) Spans(runes []rune, size, overlap int) ([]Span, error) {
	if size <= 0 {
		return nil, apperrors.Wrap(domain.CodeInvalidInput, fmt.Sprintf("chunk size must be positive, got %d", size), nil)
	}
	if overlap < 0 || overlap >= size {
		return nil, apperrors.Wrap(domain.CodeInvalidInput, fmt.Sprintf("chunk overlap must be in [0, %d), got %d", size, overlap), nil)
	}
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	var spans []Span
	start := 0
	for n-start > size {
		lo := start + max(size/2, overlap+1)
		hi := start + size
		end := c.cut(runes, lo, hi, size/10)
		spans = append(spans, Span{Start: start, End: end})

		next := c.cut(runes, max(start+1, end-overlap-overlap/2), end-overlap, overlap/10)
		start = next
	}
	return append(spans, Span{Start: start, End: n}), nil
}

// cut picks a boundary in [lo, hi]. The last near runes before hi are tried
// first with every separator, then the whole range, then hi itself. Separator
// rank only decides within a region: a space close to hi beats a paragraph
// break further back, which keeps chunks near full size.
func (c *RecursiveChunker) cut(runes []rune, lo, hi, near int) int {
	regions := []int{max(lo, hi-near), lo}
	for _, from := range regions {
		for _, sep := range c.separators {
			if p, ok := lastBoundary(runes, sep, from, hi); ok {
				return p
			}
		}
	}
	return hi
}

// lastBoundary returns the largest p in [lo, hi] that directly follows sep.
func lastBoundary(runes []rune, sep []rune, lo, hi int) (int, bool) {
	for p := hi; p >= lo; p-- {
		if p < len(sep) {
			break
		}
		if endsWith(runes[:p], sep) {
			return p, true
		}
	}
	return 0, false
}

func endsWith(runes, suffix []rune) bool {
	offset := len(runes) - len(suffix)
	for i, r := range suffix {
		if runes[offset+i] != r {
			return false
		}
	}
	return true
}

var _ domain.Chunker = (*RecursiveChunker)(nil)
