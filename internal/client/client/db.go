package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/migrations"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories owns the migrated local database. Repositories are built
// on DB per call, so they can also run inside a transaction.
type Repositories struct {
	DB *sql.DB
}

// Close releases the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and migrates it.
// ":memory:" is accepted; the pool is then pinned to one connection so
// every query sees the same database. For a plain file path the parent
// directory is created first.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return &Repositories{DB: db}, nil
}
