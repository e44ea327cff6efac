package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fbz-tec/docvault/core/documents"
)

const documentColumns = "id, title, description, file_url, file_name, file_size, file_type, category, tags, created_at, updated_at"

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]string, error) {
	tags := []string{}
	if len(raw) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// orderClause maps a sort order onto an ORDER BY expression.
func orderClause(order string) string {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case documents.SortOldest:
		return "created_at ASC, id ASC"
	case documents.SortName:
		return "lower(title) ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}
