package documents

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	MinTitleLength       = 3
	MinDescriptionLength = 10
	DefaultFileType      = "pdf"
)

// Categories offered by the upload form. The first entry is the default.
var Categories = []string{"General", "Project", "Technical", "Financial", "Legal", "Personal"}

// DefaultCategory is used when a document is saved without one.
const DefaultCategory = "General"

// ValidationError lists invalid fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Normalize trims text fields, fills defaults and cleans up tags.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.FileName = strings.TrimSpace(in.FileName)

	in.Category = canonicalCategory(in.Category)

	in.FileType = strings.ToLower(strings.TrimSpace(in.FileType))
	if in.FileType == "" {
		in.FileType = FileTypeFromName(in.FileName)
	}

	in.Tags = normalizeTags(in.Tags)
	return in
}

// Validate normalizes the input and reports every invalid field at once.
func (in Input) Validate() (Input, error) {
	in = in.Normalize()
	fields := map[string]string{}

	switch {
	case in.Title == "":
		fields["title"] = "title is required"
	case utf8.RuneCountInString(in.Title) < MinTitleLength:
		fields["title"] = fmt.Sprintf("title must be at least %d characters", MinTitleLength)
	}

	switch {
	case in.Description == "":
		fields["description"] = "description is required"
	case utf8.RuneCountInString(in.Description) < MinDescriptionLength:
		fields["description"] = fmt.Sprintf("description must be at least %d characters", MinDescriptionLength)
	}

	if in.FileURL == "" {
		fields["fileUrl"] = "please upload a file first"
	}

	if in.FileSize < 0 {
		fields["fileSize"] = "file size cannot be negative"
	}

	if !IsCategory(in.Category) {
		fields["category"] = fmt.Sprintf("unknown category %q (expected one of %s)", in.Category, strings.Join(Categories, ", "))
	}

	if len(fields) > 0 {
		return in, &ValidationError{Fields: fields}
	}
	return in, nil
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// FileTypeFromName returns the lower-case extension of name without the dot,
// or DefaultFileType when there is none.
func FileTypeFromName(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return DefaultFileType
	}
	return ext
}

func canonicalCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultCategory
	}
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
