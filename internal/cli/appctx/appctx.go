// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, flag overrides, logger setup and database
// opening to reduce boilerplate across commands.
package appctx

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lherron/datasetprep/internal/config"
	"github.com/lherron/datasetprep/internal/db"
	"github.com/lherron/datasetprep/internal/logging"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config

	// Log writes diagnostics to the command's stderr
	Log zerolog.Logger

	// DB is the database named by --db, opened read-only (nil if NeedsDB is false)
	DB *db.DB
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// OpenDB opens a dataset database with the configured driver.
func (a *App) OpenDB(path string) (*db.DB, error) {
	database, err := db.Open(path, a.Config.SQLiteDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB opens the existing database named by the --db flag read-only.
	NeedsDB bool
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The database is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Flags win over config and environment
	overrides := []struct {
		flag   string
		target *string
	}{
		{"sqlite-driver", &cfg.SQLiteDriver},
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
		{"output", &cfg.Output},
		{"work-dir", &cfg.WorkDir},
		{"metrics-file", &cfg.MetricsFile},
	}
	for _, o := range overrides {
		if f := cmd.Flag(o.flag); f != nil && f.Changed {
			*o.target = f.Value.String()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := db.ValidateDriver(cfg.SQLiteDriver); err != nil {
		return nil, err
	}

	app.Log, err = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	if opts.NeedsDB {
		dbPath := ""
		if dbFlag := cmd.Flag("db"); dbFlag != nil {
			dbPath = dbFlag.Value.String()
		}
		if dbPath == "" {
			return nil, fmt.Errorf("--db is required")
		}
		database, err := db.OpenReadOnly(dbPath, cfg.SQLiteDriver)
		if err != nil {
			return nil, err
		}
		app.DB = database
	}

	return app, nil
}
