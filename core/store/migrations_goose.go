package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var gooseMigrationsFS embed.FS

const (
	gooseTable    = "goose_db_version"
	migrationsDir = "migrations"
)

// goose keeps dialect and base fs in package state.
var gooseMu sync.Mutex

// ApplyMigrations brings the schema to the latest embedded version.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect(dialectOf(db)); err != nil {
		return err
	}
	goose.SetBaseFS(gooseMigrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := enforceHardcutMigrationPolicy(ctx, db); err != nil {
		return err
	}
	logger.Printf("applying goose migrations")
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.Printf("goose migrations applied")
	return nil
}

// Hardcut policy: if DB has user tables but is not goose-versioned, reject startup.
func enforceHardcutMigrationPolicy(ctx context.Context, db *sql.DB) error {
	hasGoose, err := tableExists(ctx, db, gooseTable)
	if err != nil {
		return err
	}
	if hasGoose {
		return nil
	}
	legacy, err := isLegacyDatabase(ctx, db, hasGoose)
	if err != nil {
		return err
	}
	if legacy {
		return fmt.Errorf("legacy database is not supported: reset DB and run fresh migrations")
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM information_schema.tables
		WHERE table_schema='public' AND table_name=?
	`
	if !isPostgresDB(db) {
		query = `SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?`
	}
	var n int
	if err := db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func userTableCount(ctx context.Context, db *sql.DB) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM information_schema.tables
		WHERE table_schema='public'
			AND table_type='BASE TABLE'
			AND table_name <> ?
	`
	if !isPostgresDB(db) {
		query = `SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND name <> ?`
	}
	var n int
	if err := db.QueryRowContext(ctx, query, gooseTable).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func isPostgresDB(db *sql.DB) bool {
	_, ok := db.Driver().(rewriteDriver)
	return ok
}

func dialectOf(db *sql.DB) string {
	if isPostgresDB(db) {
		return "postgres"
	}
	return "sqlite3"
}

type gooseLogger struct {
	logger *utils.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Printf(format, v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatalf(format, v...)
}
