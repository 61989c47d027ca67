package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// fileWriter is a file writer with size-based log rotation.
type fileWriter struct {
	// Filename is the file to write logs to
	Filename string

	// MaxSize is the maximum size in megabytes of the log file before rotation
	MaxSize int

	// MaxBackups is the maximum number of rotated files to retain
	MaxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

// Write implements io.Writer
func (w *fileWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	if w.size+int64(len(p)) > w.maxBytes() {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close implements io.Closer
func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.size = 0
	return err
}

func (w *fileWriter) maxBytes() int64 {
	if w.MaxSize <= 0 {
		return 100 * 1024 * 1024
	}
	return int64(w.MaxSize) * 1024 * 1024
}

func (w *fileWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(w.Filename), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(w.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	return nil
}

// rotate renames the current file with a timestamp suffix, opens a fresh one
// and prunes old backups.
func (w *fileWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return err
		}
		w.file = nil
		w.size = 0
	}

	ext := filepath.Ext(w.Filename)
	base := w.Filename[:len(w.Filename)-len(ext)]
	backup := fmt.Sprintf("%s-%s%s", base, time.Now().Format("2006-01-02T15-04-05.000"), ext)

	if err := os.Rename(w.Filename, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	if err := w.open(); err != nil {
		return err
	}

	w.prune(base, ext)
	return nil
}

// prune removes rotated files beyond MaxBackups, oldest first.
func (w *fileWriter) prune(base, ext string) {
	if w.MaxBackups <= 0 {
		return
	}

	matches, err := filepath.Glob(base + "-*" + ext)
	if err != nil || len(matches) <= w.MaxBackups {
		return
	}

	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, stale := range matches[w.MaxBackups:] {
		os.Remove(stale)
	}
}

// Ensure fileWriter implements io.WriteCloser
var _ io.WriteCloser = (*fileWriter)(nil)
