package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stats describes the log directory.
type Stats struct {
	Directory string    `json:"directory"`
	TotalLogs int       `json:"totalLogs"`
	LatestLog string    `json:"latestLog,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// RecentLines returns up to n trailing lines of the log file for day t.
// A missing file yields an empty slice.
func RecentLines(dir, prefix string, t time.Time, n int) ([]string, error) {
	if n <= 0 {
		n = 50
	}
	path := filepath.Join(dir, FileName(prefix, t))
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return ring, nil
}

// DirStats counts the .log files in dir and reports the most recently modified one.
func DirStats(dir string) (Stats, error) {
	stats := Stats{Directory: dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("read log dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.TotalLogs++
		if info.ModTime().After(stats.UpdatedAt) {
			stats.UpdatedAt = info.ModTime()
			stats.LatestLog = entry.Name()
		}
	}
	return stats, nil
}
