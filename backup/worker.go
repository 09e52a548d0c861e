// Package backup periodically writes a JSON export of the memo store to disk.
package backup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FileName is the export file written inside the backup directory.
const FileName = "memos.json"

// Exporter produces the full JSON export of the store.
type Exporter interface {
	ExportAll(ctx context.Context) ([]byte, error)
}

// Recorder is told the outcome of every backup run.
type Recorder interface {
	BackupWritten()
	BackupUnchanged()
	BackupFailed()
}

type nopRecorder struct{}

func (nopRecorder) BackupWritten()   {}
func (nopRecorder) BackupUnchanged() {}
func (nopRecorder) BackupFailed()    {}

// Worker coordinates background exports of the memo store.
// See also:
// - writer.go: change detection and atomic file writes
type Worker struct {
	exporter        Exporter
	recorder        Recorder
	logger          *slog.Logger
	dir             string
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration
	lastSum         [32]byte
	hasSum          bool
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	done            chan struct{}
}

// NewWorker creates a backup worker writing into dir every interval. The
// interval doubles (up to four times the base) while the export is unchanged.
func NewWorker(exporter Exporter, dir string, interval time.Duration, logger *slog.Logger) *Worker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		exporter:        exporter,
		recorder:        nopRecorder{},
		logger:          logger,
		dir:             dir,
		baseInterval:    interval,
		maxInterval:     4 * interval,
		currentInterval: interval,
	}
}

// SetRecorder reports backup outcomes to r. Call before Start.
func (w *Worker) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	w.recorder = r
}

// Start begins the background backup loop
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("backup worker started", "dir", w.dir, "interval", w.baseInterval)

	go w.run()
}

// Stop stops the loop and waits for an in-flight backup to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("backup worker stopped")
}

// Interval returns the current wait between backups.
func (w *Worker) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentInterval
}

// run is the main worker loop with adaptive backoff
func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.backup()

	for {
		select {
		case <-ticker.C:
			wrote := w.backup()

			w.mu.Lock()
			if wrote {
				if w.currentInterval != w.baseInterval {
					w.currentInterval = w.baseInterval
					ticker.Reset(w.currentInterval)
					w.logger.Debug("backup changed, interval reset", "interval", w.currentInterval)
				}
			} else if w.currentInterval < w.maxInterval {
				w.currentInterval = min(2*w.currentInterval, w.maxInterval)
				ticker.Reset(w.currentInterval)
				w.logger.Debug("backup unchanged, interval increased", "interval", w.currentInterval)
			}
			w.mu.Unlock()
		case <-w.stopChan:
			return
		}
	}
}

// backup runs one export and reports whether a file was written.
func (w *Worker) backup() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	wrote, err := w.RunOnce(ctx)
	switch {
	case err != nil:
		w.recorder.BackupFailed()
		w.logger.Error("backup failed", "dir", w.dir, "error", err)
	case wrote:
		w.recorder.BackupWritten()
	default:
		w.recorder.BackupUnchanged()
	}
	return wrote
}
