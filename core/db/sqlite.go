package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fbz-tec/docvault/internal/logger"
)

// SQLiteConnector opens an embedded SQLite database file.
type SQLiteConnector struct {
	MaxOpenConns int
}

func (s SQLiteConnector) Connect(ctx context.Context, uri string) (*sql.DB, error) {
	path, err := sqlitePath(uri)
	if err != nil {
		return nil, err
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if s.MaxOpenConns > 0 {
		db.SetMaxOpenConns(s.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("SQLite database opened: %s", path)
	return db, nil
}

func (s SQLiteConnector) Disconnect(_ context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
