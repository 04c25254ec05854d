package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// dailyFile appends to the date-stamped file for the current day, switching
// files on the first write after the date changes.
type dailyFile struct {
	mu     sync.Mutex
	dir    string
	prefix string
	now    func() time.Time
	name   string
	file   *os.File
}

func openDailyFile(dir, prefix string, now func() time.Time) (*dailyFile, error) {
	d := &dailyFile{dir: dir, prefix: prefix, now: now}
	if err := d.rotate(FileName(prefix, now())); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the file currently written to.
func (d *dailyFile) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return filepath.Join(d.dir, d.name)
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name := FileName(d.prefix, d.now()); name != d.name {
		if err := d.rotate(name); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// rotate must be called with mu held or before the file is shared.
func (d *dailyFile) rotate(name string) error {
	file, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file, d.name = file, name
	return nil
}
