package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/internal/logger"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	file_url    TEXT NOT NULL,
	file_name   TEXT NOT NULL DEFAULT '',
	file_size   INTEGER NOT NULL DEFAULT 0,
	file_type   TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at_idx ON documents (created_at)`,
}

// SQLiteStore keeps documents in an embedded SQLite file. Timestamps are
// stored as RFC 3339 text in UTC.
type SQLiteStore struct {
	cached[*sql.DB]

	mu       sync.Mutex
	migrated bool
}

func NewSQLiteStore(cache *db.Cache[*sql.DB]) *SQLiteStore {
	return &SQLiteStore{cached: cached[*sql.DB]{cache: cache}}
}

func (s *SQLiteStore) conn(ctx context.Context) (*sql.DB, error) {
	conn, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.migrated {
		for _, stmt := range sqliteSchema {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("create documents table: %w", err)
			}
		}
		s.migrated = true
		logger.Debug("documents table ready")
	}
	return conn, nil
}

func (s *SQLiteStore) Create(ctx context.Context, doc documents.Document) (documents.Document, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return documents.Document{}, err
	}

	_, err = conn.ExecContext(ctx,
		"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		doc.ID, doc.Title, doc.Description, doc.FileURL, doc.FileName, doc.FileSize,
		doc.FileType, doc.Category, tags, formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return documents.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return s.Get(ctx, doc.ID)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (documents.Document, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	return scanSQLiteDocument(conn.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id))
}

// List loads every row and filters in process with documents.Apply.
func (s *SQLiteStore) List(ctx context.Context, opts documents.ListOptions) ([]documents.Document, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents ORDER BY "+orderClause(opts.Sort))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var all []documents.Document
	for rows.Next() {
		doc, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	return documents.Apply(all, opts), nil
}

func (s *SQLiteStore) Update(ctx context.Context, doc documents.Document) (documents.Document, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return documents.Document{}, err
	}

	res, err := conn.ExecContext(ctx, `UPDATE documents SET title = ?, description = ?, file_url = ?, file_name = ?,
		file_size = ?, file_type = ?, category = ?, tags = ?, updated_at = ? WHERE id = ?`,
		doc.Title, doc.Description, doc.FileURL, doc.FileName, doc.FileSize,
		doc.FileType, doc.Category, tags, formatTime(doc.UpdatedAt), doc.ID)
	if err != nil {
		return documents.Document{}, fmt.Errorf("update document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return documents.Document{}, documents.ErrNotFound
	}
	return s.Get(ctx, doc.ID)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return documents.ErrNotFound
	}
	return nil
}

func scanSQLiteDocument(row rowScanner) (documents.Document, error) {
	var doc documents.Document
	var tags, created, updated string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.FileURL, &doc.FileName,
		&doc.FileSize, &doc.FileType, &doc.Category, &tags, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return documents.Document{}, documents.ErrNotFound
	}
	if err != nil {
		return documents.Document{}, fmt.Errorf("scan document: %w", err)
	}

	if doc.Tags, err = decodeTags([]byte(tags)); err != nil {
		return documents.Document{}, err
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return documents.Document{}, fmt.Errorf("parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return documents.Document{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
