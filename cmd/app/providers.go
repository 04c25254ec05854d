package main

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yanqian/doc-summarizer/internal/domain/summarizer"
	"github.com/yanqian/doc-summarizer/internal/infra/chunker"
	"github.com/yanqian/doc-summarizer/internal/infra/config"
	"github.com/yanqian/doc-summarizer/internal/infra/extract"
	"github.com/yanqian/doc-summarizer/internal/infra/llm/gemini"
	"github.com/yanqian/doc-summarizer/internal/infra/resultstore"
	"github.com/yanqian/doc-summarizer/pkg/logger"
	"github.com/yanqian/doc-summarizer/pkg/metrics"
)

const tokenEncoding = "cl100k_base"

// summarizerSet builds the summarization service shared by the server and the CLI.
var summarizerSet = wire.NewSet(
	provideLoggerOptions,
	logger.New,
	provideRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	metrics.NewRecorder,
	wire.Bind(new(summarizer.Metrics), new(*metrics.Recorder)),
	provideTokenCounter,
	wire.Bind(new(chunker.TokenCounter), new(*chunker.TiktokenCounter)),
	chunker.NewRecursiveChunker,
	wire.Bind(new(summarizer.Chunker), new(*chunker.RecursiveChunker)),
	provideGeminiClient,
	wire.Bind(new(summarizer.Generator), new(*gemini.Client)),
	summarizer.NewClient,
	providePipeline,
	provideExtractor,
	wire.Bind(new(summarizer.Extractor), new(*extract.Extractor)),
	provideResultStore,
	wire.Bind(new(summarizer.ResultStore), new(*resultstore.MemoryStore)),
	provideSummarizerConfig,
	summarizer.NewService,
)

func provideLoggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		Level:      cfg.Log.Level,
		Dir:        cfg.Log.Dir,
		FilePrefix: cfg.Log.FilePrefix,
	}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideSummarizerConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		CredentialConfigured: cfg.CredentialConfigured(),
		Model:                cfg.LLM.Model,
		Defaults: summarizer.ProcessingConfig{
			ChunkSize:    cfg.Processing.ChunkSize,
			ChunkOverlap: cfg.Processing.ChunkOverlap,
		},
	}
}

func provideGeminiClient(cfg *config.Config, logger *slog.Logger) *gemini.Client {
	return gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxRetries:  cfg.LLM.MaxRetries,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
}

func provideTokenCounter(logger *slog.Logger) *chunker.TiktokenCounter {
	return chunker.NewTiktokenCounter(tokenEncoding, logger)
}

func provideExtractor(cfg *config.Config, logger *slog.Logger) *extract.Extractor {
	return extract.New(cfg.HTTP.MaxUploadBytes, logger)
}

func provideResultStore(cfg *config.Config) *resultstore.MemoryStore {
	return resultstore.NewMemoryStore(cfg.Results.Capacity, cfg.Results.TTL)
}

func providePipeline(c summarizer.Chunker, client *summarizer.Client, m summarizer.Metrics, logger *slog.Logger) *summarizer.Pipeline {
	return summarizer.NewPipeline(c, client, m, logger)
}
