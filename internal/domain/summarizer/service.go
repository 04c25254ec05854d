package summarizer

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	apperrors "github.com/yanqian/doc-summarizer/pkg/errors"
	"github.com/yanqian/doc-summarizer/pkg/logger"
	"github.com/yanqian/doc-summarizer/pkg/util"
)

const readingWordsPerMinute = 200

// Service exposes document summarization.
type Service interface {
	Summarize(ctx context.Context, upload document.Upload, cfg ProcessingConfig, progress ProgressFunc) (Result, error)
	StreamSummary(ctx context.Context, upload document.Upload, cfg ProcessingConfig) (<-chan StreamEvent, error)
	Describe(ctx context.Context, upload document.Upload) (document.Info, error)
	Result(ctx context.Context, id uuid.UUID) (Result, error)
	Status() Status
}

type service struct {
	cfg       Config
	extractor Extractor
	pipeline  *Pipeline
	store     ResultStore
	logger    *slog.Logger
}

// NewService is a wire provider for the summarizer domain.
func NewService(cfg Config, extractor Extractor, pipeline *Pipeline, store ResultStore, logger *slog.Logger) Service {
	if cfg.Defaults == (ProcessingConfig{}) {
		cfg.Defaults = DefaultProcessingConfig()
	}
	return &service{
		cfg:       cfg,
		extractor: extractor,
		pipeline:  pipeline,
		store:     store,
		logger:    logger.With("component", "summarizer.service"),
	}
}

func (s *service) Summarize(ctx context.Context, upload document.Upload, cfg ProcessingConfig, progress ProgressFunc) (Result, error) {
	runID := uuid.New()
	log := s.logger.With("run_id", runID.String(), "document", upload.Filename)
	ctx = logger.WithContext(ctx, log)
	t := newTracker(log, progress, s.pipeline.metrics)

	cfg, err := s.prepare(upload, cfg)
	if err != nil {
		log.Warn("summarization rejected", "error", err)
		return Result{}, t.fail(err)
	}

	t.advance(StateExtracting, 10, "Extracting text...")
	doc, err := s.extractor.Extract(ctx, upload)
	if err != nil {
		log.Error("text extraction failed", "error", err)
		return Result{}, t.fail(err)
	}
	log.Info("text extracted",
		"format", doc.Format,
		"characters", doc.Characters(),
		"size", document.FormatSize(doc.Size),
	)

	summary, err := s.pipeline.run(ctx, t, doc, cfg)
	if err != nil {
		return Result{}, err
	}

	result := s.buildResult(runID, doc, cfg, summary, time.Since(t.started))
	if err := s.store.Save(ctx, result); err != nil {
		log.Warn("result not kept for download", "error", err)
	}
	log.Info("summarization finished", "path", result.Path, "duration_ms", result.DurationMs)
	return result, nil
}

func (s *service) StreamSummary(ctx context.Context, upload document.Upload, cfg ProcessingConfig) (<-chan StreamEvent, error) {
	if _, err := s.prepare(upload, cfg); err != nil {
		return nil, err
	}

	out := make(chan StreamEvent)
	send := func(ev StreamEvent) {
		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(out)
		result, err := s.Summarize(ctx, upload, cfg, func(p Progress) {
			send(StreamEvent{Progress: &p})
		})
		if err != nil {
			send(StreamEvent{Error: &EventError{Code: apperrors.CodeOf(err), Message: apperrors.MessageOf(err)}})
			return
		}
		send(StreamEvent{Result: &result})
	}()
	return out, nil
}

func (s *service) Describe(ctx context.Context, upload document.Upload) (document.Info, error) {
	if len(upload.Content) == 0 {
		return document.Info{}, apperrors.Wrap(CodeInvalidInput, "file content cannot be empty", nil)
	}
	doc, err := s.extractor.Extract(ctx, upload)
	if err != nil {
		return document.Info{}, err
	}
	return document.Describe(doc), nil
}

func (s *service) Result(ctx context.Context, id uuid.UUID) (Result, error) {
	result, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, apperrors.Wrap("store_error", "failed to load result", err)
	}
	if !ok {
		return Result{}, apperrors.Wrap(CodeNotFound, "summary not found", nil)
	}
	return result, nil
}

func (s *service) Status() Status {
	return Status{
		CredentialConfigured: s.cfg.CredentialConfigured,
		Model:                s.cfg.Model,
		SupportedFormats:     document.SupportedExtensions(),
		Defaults:             s.cfg.Defaults,
		Bounds:               ProcessingBounds(),
	}
}

// prepare runs the checks that must pass before any file processing begins.
func (s *service) prepare(upload document.Upload, cfg ProcessingConfig) (ProcessingConfig, error) {
	if !s.cfg.CredentialConfigured {
		return cfg, apperrors.Wrap(CodeMissingCredential, "GOOGLE_API_KEY is not configured", nil)
	}
	cfg = cfg.WithDefaults(s.cfg.Defaults)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if len(upload.Content) == 0 {
		return cfg, apperrors.Wrap(CodeInvalidInput, "file content cannot be empty", nil)
	}
	return cfg, nil
}

func (s *service) buildResult(id uuid.UUID, doc document.Document, cfg ProcessingConfig, summary FinalSummary, elapsed time.Duration) Result {
	result := Result{
		ID:           id,
		Document:     document.Describe(doc),
		Summary:      summary.Text,
		Path:         summary.Path,
		Chunks:       summary.Chunks,
		Summarized:   summary.Summarized,
		FailedChunks: summary.FailedChunks,
		Config:       cfg,
		Stats:        ComputeStats(doc.Text, summary.Text),
		DownloadName: document.SummaryFilename(doc.Filename),
		DurationMs:   elapsed.Milliseconds(),
		CreatedAt:    util.NowUTC(),
	}
	if !summary.Usage.IsZero() {
		usage := summary.Usage
		result.TokenUsage = &usage
	}
	return result
}

// ComputeStats compares a summary with its source text.
func ComputeStats(original, summary string) Stats {
	stats := Stats{
		OriginalCharacters: utf8.RuneCountInString(original),
		SummaryCharacters:  utf8.RuneCountInString(summary),
	}
	if stats.OriginalCharacters > 0 {
		ratio := 1 - float64(stats.SummaryCharacters)/float64(stats.OriginalCharacters)
		stats.CompressionPercent = math.Round(ratio*1000) / 10
	}
	stats.ReadingMinutes = readingMinutes(summary)
	return stats
}

func readingMinutes(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Max(1, math.Round(float64(words)/readingWordsPerMinute)))
}
