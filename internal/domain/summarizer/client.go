package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/logger"
)

const (
	callChunk     = "chunk"
	callSynthesis = "synthesis"
)

var errEmptyGeneration = errors.New("empty response from model")

// Client issues the two prompt variants against a Generator.
type Client struct {
	generator Generator
	metrics   Metrics
	logger    *slog.Logger
}

// NewClient constructs a Client. A nil metrics sink is allowed.
func NewClient(generator Generator, m Metrics, log *slog.Logger) *Client {
	if m == nil {
		m = noopMetrics{}
	}
	return &Client{generator: generator, metrics: m, logger: log}
}

// SummarizeChunk summarizes one chunk. chunkNum is 1-based; zero means the whole document.
func (c *Client) SummarizeChunk(ctx context.Context, text string, chunkNum int) (Generation, error) {
	log := logger.FromContext(ctx, c.logger)
	if chunkNum > 0 {
		log = log.With("chunk", chunkNum)
	}
	log.Info("starting summarization", "characters", utf8.RuneCountInString(text))
	return c.generate(ctx, log, callChunk, chunkPrompt(text))
}

// Synthesize merges chunk summaries, in the order given, into one summary.
func (c *Client) Synthesize(ctx context.Context, summaries []string) (Generation, error) {
	log := logger.FromContext(ctx, c.logger)
	log.Info("creating final summary", "chunk_summaries", len(summaries))
	return c.generate(ctx, log, callSynthesis, synthesisPrompt(summaries))
}

func (c *Client) generate(ctx context.Context, log *slog.Logger, kind string, prompt Prompt) (Generation, error) {
	start := time.Now()
	gen, err := c.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(gen.Text) == "" {
		err = errEmptyGeneration
	}
	c.metrics.LLMCall(kind, err == nil)
	if err != nil {
		log.Error("generation failed", "kind", kind, "error", err)
		if apperrors.IsCode(err, CodeMissingCredential) {
			return Generation{}, err
		}
		return Generation{}, apperrors.Wrap(CodeGenerationFailure, "text generation failed", err)
	}
	log.Info("generation completed",
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"summary_characters", utf8.RuneCountInString(gen.Text),
	)
	return gen, nil
}
