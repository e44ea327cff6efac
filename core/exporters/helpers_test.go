package exporters

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/fbz-tec/docvault/core/documents"
)

var exportTime = time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)

func sampleDocuments() []documents.Document {
	return []documents.Document{
		{
			ID: "doc-1", Title: "Project Requirements", Description: "Requirements & scope for <intranet>",
			FileURL: "http://localhost:8080/files/req.pdf", FileName: "requirements.pdf", FileSize: 2048576,
			FileType: "pdf", Category: "Project", Tags: []string{"requirements", "planning"},
			CreatedAt: exportTime, UpdatedAt: exportTime.Add(time.Hour),
		},
		{
			ID: "doc-2", Title: "O'Brien, notes", Description: "Line1\nLine2",
			FileURL: "http://localhost:8080/files/notes.txt", FileName: "notes.txt", FileSize: 512,
			FileType: "txt", Category: "Personal", Tags: []string{},
			CreatedAt: exportTime, UpdatedAt: exportTime,
		},
	}
}

func exportTo(t *testing.T, format string, docs []documents.Document, opts ExportOptions) (string, int) {
	t.Helper()
	exporter, err := Get(format)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", format, err)
	}

	opts.Format = format
	if opts.OutputPath == "" {
		opts.OutputPath = filepath.Join(t.TempDir(), "documents."+format)
	}
	if opts.Compression == "" {
		opts.Compression = "none"
	}
	if opts.TimeZone == "" {
		opts.TimeZone = "UTC"
	}

	n, err := exporter.Export(docs, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	return opts.OutputPath, n
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	return string(b)
}
