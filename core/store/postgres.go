package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/internal/logger"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	file_url    TEXT NOT NULL,
	file_name   TEXT NOT NULL DEFAULT '',
	file_size   BIGINT NOT NULL DEFAULT 0,
	file_type   TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	tags        JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_created_at_idx ON documents (created_at);
CREATE INDEX IF NOT EXISTS documents_category_idx ON documents (category);
`

// PgStore keeps documents in a PostgreSQL table.
type PgStore struct {
	cached[*pgxpool.Pool]

	mu       sync.Mutex
	migrated bool
}

func NewPgStore(cache *db.Cache[*pgxpool.Pool]) *PgStore {
	return &PgStore{cached: cached[*pgxpool.Pool]{cache: cache}}
}

// pool returns the shared pool, creating the table on first use.
func (s *PgStore) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.migrated {
		if _, err := pool.Exec(ctx, pgSchema); err != nil {
			return nil, fmt.Errorf("create documents table: %w", err)
		}
		s.migrated = true
		logger.Debug("documents table ready")
	}
	return pool, nil
}

func (s *PgStore) Create(ctx context.Context, doc documents.Document) (documents.Document, error) {
	pool, err := s.pool(ctx)
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

	query := "INSERT INTO documents (" + documentColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11) RETURNING " + documentColumns
	return scanPgDocument(pool.QueryRow(ctx, query,
		doc.ID, doc.Title, doc.Description, doc.FileURL, doc.FileName, doc.FileSize,
		doc.FileType, doc.Category, tags, doc.CreatedAt, doc.UpdatedAt))
}

func (s *PgStore) Get(ctx context.Context, id string) (documents.Document, error) {
	pool, err := s.pool(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	return scanPgDocument(pool.QueryRow(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = $1", id))
}

func (s *PgStore) List(ctx context.Context, opts documents.ListOptions) ([]documents.Document, error) {
	pool, err := s.pool(ctx)
	if err != nil {
		return nil, err
	}

	where, args := pgWhere(opts)
	query := "SELECT " + documentColumns + " FROM documents" + where + " ORDER BY " + orderClause(opts.Sort)
	logger.Debug("Executing query: %s", query)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	out := []documents.Document{}
	for rows.Next() {
		doc, err := scanPgDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	return out, nil
}

func (s *PgStore) Update(ctx context.Context, doc documents.Document) (documents.Document, error) {
	pool, err := s.pool(ctx)
	if err != nil {
		return documents.Document{}, err
	}
	tags, err := encodeTags(doc.Tags)
	if err != nil {
		return documents.Document{}, err
	}

	query := `UPDATE documents SET title = $2, description = $3, file_url = $4, file_name = $5,
		file_size = $6, file_type = $7, category = $8, tags = $9::jsonb, updated_at = $10
		WHERE id = $1 RETURNING ` + documentColumns
	return scanPgDocument(pool.QueryRow(ctx, query,
		doc.ID, doc.Title, doc.Description, doc.FileURL, doc.FileName, doc.FileSize,
		doc.FileType, doc.Category, tags, doc.UpdatedAt))
}

func (s *PgStore) Delete(ctx context.Context, id string) error {
	pool, err := s.pool(ctx)
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return documents.ErrNotFound
	}
	return nil
}

func scanPgDocument(row rowScanner) (documents.Document, error) {
	var doc documents.Document
	var tags []byte
	err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.FileURL, &doc.FileName,
		&doc.FileSize, &doc.FileType, &doc.Category, &tags, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return documents.Document{}, documents.ErrNotFound
	}
	if err != nil {
		return documents.Document{}, fmt.Errorf("scan document: %w", err)
	}

	if doc.Tags, err = decodeTags(tags); err != nil {
		return documents.Document{}, err
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return doc, nil
}

// pgWhere builds the WHERE clause and its positional arguments.
func pgWhere(opts documents.ListOptions) (string, []any) {
	var conds []string
	var args []any

	if c := opts.CategoryFilter(); c != "" {
		args = append(args, c)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	if term := strings.TrimSpace(opts.Search); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR file_name ILIKE $%[1]d OR "+
				"EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE $%[1]d))",
			len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
