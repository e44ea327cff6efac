package exporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/output"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// ExportOptions holds export configuration
type ExportOptions struct {
	Format         string
	OutputPath     string
	Delimiter      rune
	Compression    string
	TimeFormat     string
	TimeZone       string
	NoHeader       bool
	XmlRootElement string
	XmlRowElement  string
	// Columns restricts and orders the exported fields. Empty means all.
	Columns     []string
	ProgressBar bool
}

// Exporter writes a document catalog to options.OutputPath and returns the
// number of records written.
type Exporter interface {
	Export(docs []documents.Document, options ExportOptions) (int, error)
}

// Column is one exported field of a document.
type Column struct {
	Name  string
	Value func(d documents.Document) any
}

// Columns lists every exportable field in default order.
var Columns = []Column{
	{"id", func(d documents.Document) any { return d.ID }},
	{"title", func(d documents.Document) any { return d.Title }},
	{"description", func(d documents.Document) any { return d.Description }},
	{"category", func(d documents.Document) any { return d.Category }},
	{"tags", func(d documents.Document) any { return d.Tags }},
	{"fileName", func(d documents.Document) any { return d.FileName }},
	{"fileType", func(d documents.Document) any { return d.FileType }},
	{"fileSize", func(d documents.Document) any { return d.FileSize }},
	{"fileSizeLabel", func(d documents.Document) any { return documents.FormatFileSize(d.FileSize) }},
	{"fileUrl", func(d documents.Document) any { return d.FileURL }},
	{"createdAt", func(d documents.Document) any { return d.CreatedAt }},
	{"updatedAt", func(d documents.Document) any { return d.UpdatedAt }},
}

// ColumnNames returns the names of Columns.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// SelectColumns resolves names (case-insensitive) against Columns, keeping
// the order given. No names selects every column.
func SelectColumns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return Columns, nil
	}

	selected := make([]Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		col, ok := findColumn(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q (available: %s)", name, strings.Join(ColumnNames(), ", "))
		}
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true
		selected = append(selected, col)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no columns selected")
	}
	return selected, nil
}

func findColumn(name string) (Column, bool) {
	for _, c := range Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

func createOutputWriter(options ExportOptions) (io.WriteCloser, error) {
	return output.CreateWriter(output.OutputConfig{
		Path:        options.OutputPath,
		Compression: options.Compression,
		Format:      options.Format,
	})
}
