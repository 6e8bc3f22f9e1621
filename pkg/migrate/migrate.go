// Package migrate applies the goose migrations that create the SQL storage
// schema. Only the postgres and sqlite storage drivers have one.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/cinecart/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

// goose keeps its dialect in package state.
var gooseMu sync.Mutex

// GooseDialect maps a storage driver to the goose dialect name.
func GooseDialect(driver string) (string, error) {
	switch driver {
	case config.StorageDriverPostgres:
		return "postgres", nil
	case config.StorageDriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("storage driver %q has no migrations", driver)
	}
}

// Runner applies the migrations in dir against one database.
type Runner struct {
	db      *sql.DB
	dialect string
	dir     string
}

func NewRunner(db *sql.DB, driver, dir string) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	dialect, err := GooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &Runner{db: db, dialect: dialect, dir: dir}, nil
}

// Exec runs a goose command that needs no extra arguments: up, down,
// status, redo, reset or version.
func (r *Runner) Exec(ctx context.Context, command string) error {
	return r.locked(func() error {
		if err := goose.RunContext(ctx, command, r.db, r.dir); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

func (r *Runner) Up(ctx context.Context) error {
	return r.Exec(ctx, "up")
}

// Version is the highest migration applied to the database.
func (r *Runner) Version() (int64, error) {
	var current int64
	err := r.locked(func() error {
		v, err := goose.GetDBVersion(r.db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		current = v
		return nil
	})
	return current, err
}

// MigrateTo moves the schema up or down until target is the latest
// applied version.
func (r *Runner) MigrateTo(ctx context.Context, target int64) error {
	current, err := r.Version()
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}
	return r.locked(func() error {
		if current < target {
			if err := goose.UpToContext(ctx, r.db, r.dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
			return nil
		}
		if err := goose.DownToContext(ctx, r.db, r.dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	})
}

func (r *Runner) locked(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect(r.dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// ParseVersion accepts the YYYYMMDDHHMMSS prefix of a migration file.
func ParseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New("version is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || len(raw) != len(versionLayout) {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return v, nil
}
