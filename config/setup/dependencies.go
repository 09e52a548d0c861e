package setup

import (
	"context"
	"log/slog"
	"memo-app/app"
	"memo-app/backup"
	"memo-app/config"
	"memo-app/database"
	"memo-app/metrics"
	"memo-app/services"
	"memo-app/viewmodel"
)

const metricsNamespace = "memo_app"

// InitDatabase initializes the SQLite database and runs migrations
func InitDatabase(dbPath string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", dbPath, "schema_version", database.SchemaVersion)
	return db, nil
}

// InitApp wires the store, repository, view model and backup worker, and
// loads the initial memo list.
func InitApp(ctx context.Context, db *database.DB, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	store := database.NewStore(db)

	memos := services.NewMemoService(store, logger, services.Options{
		CascadeDelete: cfg.CascadeDelete,
		Timeout:       cfg.OpTimeout,
	})
	logger.Info("memo service initialized", "cascade_delete", cfg.CascadeDelete, "timeout", cfg.OpTimeout)

	view := viewmodel.New(memos, logger)
	if err := view.Load(ctx); err != nil {
		return nil, err
	}
	logger.Info("memo list loaded", "count", view.Len())

	collector := metrics.NewCollector(metricsNamespace)
	collector.TrackMemoCount(metricsNamespace, view.Len)

	var backupWorker *backup.Worker
	if cfg.BackupDir != "" {
		backupWorker = backup.NewWorker(memos, cfg.BackupDir, cfg.BackupInterval, logger)
		backupWorker.SetRecorder(collector)
	}

	return app.New(memos, view, backupWorker, collector, logger), nil
}

// Shutdown performs graceful shutdown of all services
func Shutdown(application *app.App, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if application != nil && application.Backup != nil {
		application.Backup.Stop()
	}

	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
