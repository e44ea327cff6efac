package documents

import (
	"fmt"
	"sort"
	"strings"
)

// Sort orders accepted by ListOptions.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// ListOptions filters and orders a document listing.
type ListOptions struct {
	Search   string
	Category string
	Sort     string
}

// ParseSort validates a sort order; empty means SortNewest.
func ParseSort(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortName:
		return SortName, nil
	default:
		return "", fmt.Errorf("invalid sort %q (expected %s, %s or %s)", s, SortNewest, SortOldest, SortName)
	}
}

// Filtered reports whether opts narrows the listing at all.
func (o ListOptions) Filtered() bool {
	return strings.TrimSpace(o.Search) != "" || o.CategoryFilter() != ""
}

// CategoryFilter returns the canonical category to filter on, or "" for none.
func (o ListOptions) CategoryFilter() string {
	c := strings.TrimSpace(o.Category)
	if c == "" || strings.EqualFold(c, CategoryAll) {
		return ""
	}
	return canonicalCategory(c)
}

// Matches reports whether doc passes the search and category filters.
// Search is a case-insensitive substring match over title, description,
// file name and tags.
func (o ListOptions) Matches(doc Document) bool {
	if c := o.CategoryFilter(); c != "" && doc.Category != c {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(o.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Title), term) ||
		strings.Contains(strings.ToLower(doc.Description), term) ||
		strings.Contains(strings.ToLower(doc.FileName), term) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Apply returns the documents matching opts in the requested order.
// The input slice is not modified.
func Apply(docs []Document, opts ListOptions) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if opts.Matches(d) {
			out = append(out, d)
		}
	}
	SortDocuments(out, opts.Sort)
	return out
}

// SortDocuments orders docs in place. Unknown orders fall back to newest first.
func SortDocuments(docs []Document, order string) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case SortOldest:
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		})
	case SortName:
		sort.SliceStable(docs, func(i, j int) bool {
			return strings.ToLower(docs[i].Title) < strings.ToLower(docs[j].Title)
		})
	default:
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		})
	}
}
