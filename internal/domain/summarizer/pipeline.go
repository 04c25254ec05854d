package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/logger"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
	"github.com/yanqian/doc-summarizer/pkg/util"
)

// SingleChunkThreshold is the largest text, in characters, summarized with one call.
const SingleChunkThreshold = 15000

// ChunkPause is the wait between successive chunk summarization calls.
const ChunkPause = time.Second

var transitions = map[State][]State{
	StateIdle:                   {StateExtracting, StateFailed},
	StateExtracting:             {StateSingleChunkSummarizing, StateMultiChunkSummarizing, StateFailed},
	StateSingleChunkSummarizing: {StateDone, StateFailed},
	StateMultiChunkSummarizing:  {StateSynthesizing, StateFailed},
	StateSynthesizing:           {StateDone, StateFailed},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// tracker owns the state of one run and reports it to the caller.
type tracker struct {
	state    State
	path     Path
	started  time.Time
	progress ProgressFunc
	metrics  Metrics
	logger   *slog.Logger
}

func newTracker(log *slog.Logger, progress ProgressFunc, m Metrics) *tracker {
	if progress == nil {
		progress = func(Progress) {}
	}
	return &tracker{
		state:    StateIdle,
		started:  time.Now(),
		progress: progress,
		metrics:  m,
		logger:   log,
	}
}

func (t *tracker) advance(next State, percent int, message string) {
	if !canTransition(t.state, next) {
		t.logger.Error("illegal state transition", "from", t.state, "to", next)
		return
	}
	t.logger.Info("state changed", "from", t.state, "to", next)
	t.state = next
	t.progress(Progress{State: next, Percent: percent, Message: message})
	if next.Terminal() {
		t.metrics.RunFinished(string(t.path), string(next), time.Since(t.started))
	}
}

func (t *tracker) report(p Progress) {
	p.State = t.state
	t.progress(p)
}

// fail moves the run to Failed and returns err for chaining.
func (t *tracker) fail(err error) error {
	t.advance(StateFailed, 100, apperrors.MessageOf(err))
	return err
}

// Pipeline runs the extraction-to-summary state machine for a document.
type Pipeline struct {
	chunker Chunker
	client  *Client
	metrics Metrics
	pause   time.Duration
	wait    func(ctx context.Context, d time.Duration) error
	logger  *slog.Logger
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithPause overrides the wait between chunk calls.
func WithPause(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.pause = d }
}

// WithWaiter replaces the function used to wait between chunk calls.
func WithWaiter(wait func(ctx context.Context, d time.Duration) error) PipelineOption {
	return func(p *Pipeline) {
		if wait != nil {
			p.wait = wait
		}
	}
}

// NewPipeline constructs a Pipeline.
func NewPipeline(chunker Chunker, client *Client, m Metrics, log *slog.Logger, opts ...PipelineOption) *Pipeline {
	if m == nil {
		m = noopMetrics{}
	}
	p := &Pipeline{
		chunker: chunker,
		client:  client,
		metrics: m,
		pause:   ChunkPause,
		wait:    util.Sleep,
		logger:  log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run summarizes an already extracted document.
func (p *Pipeline) Run(ctx context.Context, doc document.Document, cfg ProcessingConfig, progress ProgressFunc) (FinalSummary, error) {
	log := logger.FromContext(ctx, p.logger)
	t := newTracker(log, progress, p.metrics)
	t.advance(StateExtracting, 10, "Text extracted")
	return p.run(ctx, t, doc, cfg)
}

func (p *Pipeline) run(ctx context.Context, t *tracker, doc document.Document, cfg ProcessingConfig) (FinalSummary, error) {
	log := logger.FromContext(ctx, p.logger)
	if strings.TrimSpace(doc.Text) == "" {
		return FinalSummary{}, t.fail(apperrors.Wrap(CodeExtractionFailure, "no text could be extracted from the document", nil))
	}
	chars := utf8.RuneCountInString(doc.Text)
	log.Info("starting document processing", "characters", chars)
	if chars <= SingleChunkThreshold {
		return p.runSingle(ctx, t, doc.Text)
	}
	return p.runMulti(ctx, t, doc.Text, cfg)
}

func (p *Pipeline) runSingle(ctx context.Context, t *tracker, text string) (FinalSummary, error) {
	t.path = PathSingle
	t.advance(StateSingleChunkSummarizing, 75, "Generating summary...")
	gen, err := p.client.SummarizeChunk(ctx, text, 0)
	if err != nil {
		return FinalSummary{}, t.fail(err)
	}
	t.advance(StateDone, 100, "Summary complete")
	return FinalSummary{
		Text:       gen.Text,
		Path:       PathSingle,
		Chunks:     1,
		Summarized: 1,
		Usage:      gen.Usage,
	}, nil
}

func (p *Pipeline) runMulti(ctx context.Context, t *tracker, text string, cfg ProcessingConfig) (FinalSummary, error) {
	log := logger.FromContext(ctx, p.logger)
	t.path = PathMulti

	chunks, err := p.chunker.Split(text, cfg)
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap(CodeInvalidInput, "unable to split document", err)
		}
		return FinalSummary{}, t.fail(err)
	}
	total := len(chunks)
	p.metrics.ChunksProduced(total)
	log.Info("text split into chunks", "chunks", total, "chunk_size", cfg.ChunkSize, "chunk_overlap", cfg.ChunkOverlap)
	t.advance(StateMultiChunkSummarizing, 25, fmt.Sprintf("Document split into %d sections", total))

	var (
		summaries []ChunkSummary
		failed    []int
		usage     metrics.TokenUsage
		called    bool
	)
	for i, chunk := range chunks {
		num := i + 1
		if strings.TrimSpace(chunk.Text) == "" {
			log.Warn("skipping blank chunk", "chunk", num)
			continue
		}
		if called {
			if err := p.wait(ctx, p.pause); err != nil {
				return FinalSummary{}, t.fail(cancelled(err))
			}
		}
		called = true
		t.report(Progress{
			Percent:     25 + i*50/total,
			Chunk:       num,
			TotalChunks: total,
			Message:     fmt.Sprintf("Processing section %d of %d...", num, total),
		})

		gen, err := p.client.SummarizeChunk(ctx, chunk.Text, num)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return FinalSummary{}, t.fail(cancelled(ctxErr))
			}
			if apperrors.IsCode(err, CodeMissingCredential) {
				return FinalSummary{}, t.fail(err)
			}
			log.Warn("failed to process chunk", "chunk", num, "error", err)
			failed = append(failed, chunk.Index)
		} else {
			summaries = append(summaries, ChunkSummary{Index: chunk.Index, Text: gen.Text})
			usage = usage.Add(gen.Usage)
			log.Info("chunk processed", "chunk", num)
		}
		t.report(Progress{
			Percent:     25 + num*50/total,
			Chunk:       num,
			TotalChunks: total,
			Message:     fmt.Sprintf("Finished section %d of %d", num, total),
		})
	}

	if len(summaries) == 0 {
		log.Error("no chunk summaries generated", "chunks", total)
		return FinalSummary{}, t.fail(apperrors.Wrap(CodeEmptyResult, "no chunk summaries were generated", nil))
	}

	t.advance(StateSynthesizing, 90, "Creating final comprehensive summary...")
	texts := make([]string, len(summaries))
	for i, s := range summaries {
		texts[i] = s.Text
	}
	gen, err := p.client.Synthesize(ctx, texts)
	if err != nil {
		return FinalSummary{}, t.fail(err)
	}
	t.advance(StateDone, 100, "Summary complete")
	log.Info("multi-chunk processing completed", "summarized", len(summaries), "failed", len(failed))

	return FinalSummary{
		Text:         gen.Text,
		Path:         PathMulti,
		Chunks:       total,
		Summarized:   len(summaries),
		FailedChunks: failed,
		Usage:        usage.Add(gen.Usage),
	}, nil
}

func cancelled(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(CodeGenerationFailure, "summarization timed out", err)
	}
	return apperrors.Wrap(CodeGenerationFailure, "summarization cancelled", err)
}
