// Package app wires the configured store and logger together and applies a
// batch of task list changes.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/metalagman/todo/internal/config"
	"github.com/metalagman/todo/internal/db"
	"github.com/metalagman/todo/internal/filestore"
	"github.com/metalagman/todo/internal/logging"
	"github.com/metalagman/todo/internal/task"
	"github.com/rs/zerolog"
	"go.uber.org/dig"
	"go.uber.org/fx"
)

// Options configures a single invocation.
type Options struct {
	Config    config.Config
	Verbosity int
	// Console receives log output. Defaults to os.Stderr.
	Console io.Writer
}

// Module provides the task store selected by the configuration.
var Module = fx.Module("todo",
	fx.Provide(NewStore),
)

// NewStore opens the configured backend and closes it when the app stops.
func NewStore(lc fx.Lifecycle, opts Options, logger zerolog.Logger) (task.Store, error) {
	cfg := opts.Config
	var (
		store task.Store
		err   error
	)
	switch cfg.Storage.Backend {
	case config.BackendJSON:
		store, err = filestore.Open(cfg.StoragePath(), logger)
	case config.BackendSQLite, config.BackendMySQL:
		store, err = openDB(cfg, opts.Verbosity, logger)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("backend", string(cfg.Storage.Backend)).Msg("store opened")
	lc.Append(fx.StopHook(store.Close))
	return store, nil
}

func openDB(cfg config.Config, verbosity int, logger zerolog.Logger) (*db.Store, error) {
	opts := db.Options{
		Driver:      db.DriverSQLite,
		DSN:         cfg.StoragePath(),
		BusyTimeout: cfg.Storage.BusyTimeout,
		Logger:      logger,
		Trace:       logging.TraceEnabled(verbosity),
	}
	if cfg.Storage.Backend == config.BackendMySQL {
		opts.Driver = db.DriverMySQL
		opts.DSN = cfg.Storage.DSN
	}
	database, err := db.Open(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return db.NewStore(database, logger), nil
}

// Run opens the store, applies req, and returns the resulting task list.
// The store and the log file are released before Run returns.
func Run(ctx context.Context, opts Options, req Request) ([]task.Task, error) {
	logger, closer, err := logging.New(logging.Options{
		Verbosity: opts.Verbosity,
		Console:   opts.Console,
		File:      opts.Config.Log.File,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()

	var (
		tasks    []task.Task
		applyErr error
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(opts, logger),
		Module,
		fx.Invoke(func(lc fx.Lifecycle, store task.Store) {
			lc.Append(fx.StartHook(func(ctx context.Context) error {
				tasks, applyErr = Apply(ctx, store, logger, req)
				return applyErr
			}))
		}),
	)
	if err := fxApp.Err(); err != nil {
		return nil, dig.RootCause(err)
	}
	if err := fxApp.Start(ctx); err != nil {
		if applyErr != nil {
			return nil, applyErr
		}
		return nil, err
	}
	if err := fxApp.Stop(ctx); err != nil {
		return nil, fmt.Errorf("close store: %w", err)
	}
	return tasks, nil
}
