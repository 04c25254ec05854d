package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// DefaultFilePrefix names the daily log files written next to the stdout stream.
const DefaultFilePrefix = "document_summarizer"

// Options controls where and how verbosely the service logs.
type Options struct {
	Level      string
	Dir        string
	FilePrefix string
	Stdout     io.Writer
	Now        func() time.Time
}

// New constructs a JSON slog logger on stdout. When Dir is set, every record is
// also appended as a human readable line to a date-stamped file in that directory.
// The returned cleanup closes the file.
func New(opts Options) (*slog.Logger, func(), error) {
	level := parseLevel(opts.Level)
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stdoutHandler := slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level})

	if strings.TrimSpace(opts.Dir) == "" {
		return slog.New(stdoutHandler).With("service", "doc-summarizer"), func() {}, nil
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := openDailyFile(opts.Dir, opts.FilePrefix, now)
	if err != nil {
		return nil, nil, err
	}
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})

	log := slog.New(newFanoutHandler(stdoutHandler, fileHandler)).With("service", "doc-summarizer")
	log.Info("logger initialized", "log_file", file.Path())
	cleanup := func() {
		_ = file.Close()
	}
	return log, cleanup, nil
}

// FileName returns the daily log file name for the given prefix and instant.
func FileName(prefix string, t time.Time) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultFilePrefix
	}
	return fmt.Sprintf("%s_%s.log", prefix, t.Format("20060102"))
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
