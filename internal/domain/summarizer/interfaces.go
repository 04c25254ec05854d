package summarizer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
)

// Extractor turns an upload into a Document.
type Extractor interface {
	Extract(ctx context.Context, upload document.Upload) (document.Document, error)
}

// Chunker splits text into ordered, overlapping chunks.
type Chunker interface {
	Split(text string, cfg ProcessingConfig) ([]Chunk, error)
}

// Prompt is a single system + user instruction pair.
type Prompt struct {
	System string
	User   string
}

// Generation is the text produced for a Prompt.
type Generation struct {
	Text  string
	Usage metrics.TokenUsage
}

// Generator calls the external text generation service.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (Generation, error)
}

// ResultStore keeps the session's results for later download.
type ResultStore interface {
	Save(ctx context.Context, result Result) error
	Get(ctx context.Context, id uuid.UUID) (Result, bool, error)
}

// Metrics receives pipeline counters.
type Metrics interface {
	RunFinished(path, state string, elapsed time.Duration)
	LLMCall(kind string, ok bool)
	ChunksProduced(n int)
}

type noopMetrics struct{}

func (noopMetrics) RunFinished(string, string, time.Duration) {}
func (noopMetrics) LLMCall(string, bool)                      {}
func (noopMetrics) ChunksProduced(int)                        {}
