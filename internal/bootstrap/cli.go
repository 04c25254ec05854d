package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yanqian/doc-summarizer/internal/domain/document"
	"github.com/yanqian/doc-summarizer/internal/domain/summarizer"
)

// CLI runs one summarization from the command line.
type CLI struct {
	svc    summarizer.Service
	logger *slog.Logger
}

// NewCLI is used by Wire to build the command line runner.
func NewCLI(svc summarizer.Service, logger *slog.Logger) *CLI {
	return &CLI{svc: svc, logger: logger.With("component", "cli")}
}

// SummarizeFile summarizes the file at path, prints progress to out and writes
// the summary as <stem>_summary.txt into outDir. It returns the written path.
func (c *CLI) SummarizeFile(ctx context.Context, path, outDir string, cfg summarizer.ProcessingConfig, out io.Writer) (string, error) {
	var upload document.Upload
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		upload = document.Upload{Filename: filepath.Base(path), Content: content}
	}

	result, err := c.svc.Summarize(ctx, upload, cfg, func(p summarizer.Progress) {
		fmt.Fprintf(out, "[%3d%%] %s\n", p.Percent, p.Message)
	})
	if err != nil {
		return "", err
	}

	if outDir == "" {
		outDir = "."
	}
	target := filepath.Join(outDir, result.DownloadName)
	if err := os.WriteFile(target, []byte(result.Summary), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	fmt.Fprintf(out, "summary written to %s (%s path, %d chunks, %.1f%% shorter, ~%d min read)\n",
		target, result.Path, result.Chunks, result.Stats.CompressionPercent, result.Stats.ReadingMinutes)
	c.logger.Info("summary written", "path", target, "run_id", result.ID)
	return target, nil
}
