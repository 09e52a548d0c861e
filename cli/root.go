// Package cli implements the memo-app commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"memo-app/app"
	"memo-app/config"
	"memo-app/config/setup"
	"memo-app/database"
	"memo-app/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "memo-app",
		Short:         "Memos with comments, backed by SQLite",
		Long:          "Keep memos with categories, hashtags and comments in a local SQLite file. Serve them over HTTP or work with them from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().StringP("db", "d", "", "Database path (default: $DB_PATH or ./data/memo-app.db)")
	root.Flags().StringP("port", "p", "", "Listen port (default: $PORT or 3000)")

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newAddCmd(),
		newCommentCmd(),
		newRmCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

// session is an opened store plus the wired application, for one command.
type session struct {
	app *app.App
	db  *database.DB
}

func (s *session) Close() {
	setup.Shutdown(s.app, s.db, s.app.Logger)
}

// openSession opens the store for a one-shot command. Logs go to stderr so
// stdout stays machine-readable.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg := loadConfig(cmd)
	cfg.BackupDir = ""
	logger := setup.NewLogger(cfg, cmd.ErrOrStderr())

	db, err := setup.InitDatabase(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	application, err := setup.InitApp(cmd.Context(), db, cfg, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load memos: %w", err)
	}

	return &session{app: application, db: db}, nil
}

// printMemos writes memos as json, yaml, or one "id<TAB>title" line each.
func printMemos(w io.Writer, format string, memos []models.Memo) error {
	switch format {
	case "json":
		return printJSON(w, memos)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(memos); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, m := range memos {
			fmt.Fprintf(w, "%d\t%s\n", m.ID, m.Title)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or text)", format)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
