package backup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// ==================== EXPORT & WRITE ====================

// RunOnce exports the store and writes it when the content changed since the
// last write. It reports whether the file was written.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	data, err := w.exporter.ExportAll(ctx)
	if err != nil {
		return false, fmt.Errorf("export: %w", err)
	}

	sum := sha256.Sum256(data)

	w.mu.Lock()
	unchanged := w.hasSum && sum == w.lastSum
	w.mu.Unlock()
	if unchanged {
		return false, nil
	}

	path := w.Path()
	if err := writeAtomic(path, data); err != nil {
		return false, err
	}

	w.mu.Lock()
	w.lastSum = sum
	w.hasSum = true
	w.mu.Unlock()

	w.logger.Info("backup written", "path", path, "bytes", len(data))
	return true, nil
}

// Path is the file the worker writes to.
func (w *Worker) Path() string {
	return filepath.Join(w.dir, FileName)
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over path, so readers never see a partial export.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memos-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close backup: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace backup: %w", err)
	}
	return nil
}
