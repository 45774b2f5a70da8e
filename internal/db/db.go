package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options configures Open.
type Options struct {
	// Driver is DriverSQLite or DriverMySQL.
	Driver string
	// DSN is the database file path for sqlite and the connection string for mysql.
	DSN         string
	BusyTimeout time.Duration
	Logger      zerolog.Logger
	// Trace routes migration output to the logger.
	Trace bool
}

// Open opens the database with required pragmas and migrations.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		db, err = openSQLite(opts)
	case DriverMySQL:
		db, err = openMySQL(opts)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if opts.Driver != DriverMySQL {
		if err := applyPragmas(ctx, db, opts); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(opts Options) (*sql.DB, error) {
	dir := filepath.Dir(opts.DSN)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		opts.Logger.Info().Str("dir", dir).Msg("database folder not found, created")
	}
	if _, err := os.Stat(opts.DSN); errors.Is(err, os.ErrNotExist) {
		opts.Logger.Info().Str("path", opts.DSN).Msg("database file not found, empty database loaded")
	}

	db, err := sql.Open("sqlite", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func openMySQL(opts Options) (*sql.DB, error) {
	cfg, err := mysqlConfig(opts.DSN)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func mysqlConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	// RowsAffected must count matched rows, not changed rows.
	cfg.ClientFoundRows = true
	return cfg, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, opts Options) error {
	stmts := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", opts.BusyTimeout.Milliseconds()),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if stmt == "PRAGMA journal_mode=WAL;" {
				opts.Logger.Warn().Err(err).Msg("sqlite: WAL mode not enabled")
				continue
			}
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	return nil
}

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

func migrate(db *sql.DB, opts Options) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if opts.Driver == DriverMySQL {
		dialect, dir = "mysql", "migrations/mysql"
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	if opts.Trace {
		goose.SetLogger(gooseLogger{log: opts.Logger})
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// gooseLogger adapts zerolog to goose.Logger.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Trace().Str("component", "goose").Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error().Str("component", "goose").Msgf(format, v...)
}
