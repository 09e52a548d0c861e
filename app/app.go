package app

import (
	"log/slog"
	"memo-app/backup"
	"memo-app/metrics"
	"memo-app/services"
	"memo-app/validator"
	"memo-app/viewmodel"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Memos     *services.MemoService
	View      *viewmodel.MemoList
	Backup    *backup.Worker
	Metrics   *metrics.Collector
	Validator *validator.Validator
	Logger    *slog.Logger
}

// New creates a new App instance with all dependencies. backupWorker and
// collector may be nil.
func New(memos *services.MemoService, view *viewmodel.MemoList, backupWorker *backup.Worker, collector *metrics.Collector, logger *slog.Logger) *App {
	return &App{
		Memos:     memos,
		View:      view,
		Backup:    backupWorker,
		Metrics:   collector,
		Validator: validator.New(),
		Logger:    logger,
	}
}
