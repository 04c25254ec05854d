package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	day := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	require.Equal(t, "document_summarizer_20261017.log", FileName("", day))
	require.Equal(t, "custom_20261017.log", FileName("custom", day))
}

func TestNewWritesStdoutAndDailyFile(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	var stdout bytes.Buffer

	log, cleanup, err := New(Options{Level: "debug", Dir: dir, Stdout: &stdout, Now: func() time.Time { return day }})
	require.NoError(t, err)
	log.Info("pipeline step", "chunk", 3)
	cleanup()

	require.Contains(t, stdout.String(), `"msg":"pipeline step"`)

	raw, err := os.ReadFile(filepath.Join(dir, "document_summarizer_20261017.log"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "msg=\"pipeline step\"")
	require.Contains(t, string(raw), "chunk=3")
}

func TestNewSwitchesFileWhenDateChanges(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)

	log, cleanup, err := New(Options{Dir: dir, Stdout: &bytes.Buffer{}, Now: func() time.Time { return now }})
	require.NoError(t, err)
	defer cleanup()
	log.Info("before midnight")

	now = now.Add(2 * time.Minute)
	log.Info("after midnight")

	lines, err := RecentLines(dir, "", now, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "after midnight")

	previous, err := RecentLines(dir, "", now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Contains(t, strings.Join(previous, "\n"), "before midnight")
	require.NotContains(t, strings.Join(previous, "\n"), "after midnight")
}

func TestNewWithoutDirSkipsFile(t *testing.T) {
	var stdout bytes.Buffer
	log, cleanup, err := New(Options{Stdout: &stdout})
	require.NoError(t, err)
	defer cleanup()
	log.Debug("hidden")
	log.Warn("shown")
	require.NotContains(t, stdout.String(), "hidden")
	require.Contains(t, stdout.String(), "shown")
}

func TestRecentLines(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, "line "+string(rune('a'+i)))
	}
	path := filepath.Join(dir, FileName("", day))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	got, err := RecentLines(dir, "", day, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"line h", "line i", "line j"}, got)

	missing, err := RecentLines(dir, "", day.AddDate(0, 0, 1), 3)
	require.NoError(t, err)
	require.Empty(t, missing)
}

func TestDirStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "b.log"), later, later))

	stats, err := DirStats(dir)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalLogs)
	require.Equal(t, "b.log", stats.LatestLog)

	empty, err := DirStats(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Zero(t, empty.TotalLogs)
}

func TestFromContextFallsBack(t *testing.T) {
	fallback, cleanup, err := New(Options{Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	defer cleanup()
	require.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := fallback.With("run_id", "abc")
	ctx := WithContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx, fallback))
}
