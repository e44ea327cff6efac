package exporters

import (
	"compress/gzip"
	"encoding/csv"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	tests := []struct {
		name      string
		opts      ExportOptions
		checkFunc func(t *testing.T, records [][]string)
	}{
		{
			name: "all columns with header",
			opts: ExportOptions{Delimiter: ','},
			checkFunc: func(t *testing.T, records [][]string) {
				if len(records) != 3 {
					t.Fatalf("Expected 3 records (header + 2), got %d", len(records))
				}
				if !slices.Equal(records[0], ColumnNames()) {
					t.Errorf("header = %v, want %v", records[0], ColumnNames())
				}
				row := records[1]
				if row[0] != "doc-1" || row[1] != "Project Requirements" {
					t.Errorf("unexpected first row: %v", row)
				}
				if row[4] != `["requirements","planning"]` {
					t.Errorf("tags = %q", row[4])
				}
				if row[8] != "1.95 MB" {
					t.Errorf("fileSizeLabel = %q, want 1.95 MB", row[8])
				}
				if row[10] != "2024-03-15 14:30:45" {
					t.Errorf("createdAt = %q", row[10])
				}
			},
		},
		{
			name: "special characters survive",
			opts: ExportOptions{Delimiter: ',', Columns: []string{"title", "description"}},
			checkFunc: func(t *testing.T, records [][]string) {
				if records[2][0] != "O'Brien, notes" || records[2][1] != "Line1\nLine2" {
					t.Errorf("special characters mangled: %q", records[2])
				}
				if records[1][1] != "Requirements & scope for <intranet>" {
					t.Errorf("description = %q", records[1][1])
				}
			},
		},
		{
			name: "empty tag list",
			opts: ExportOptions{Delimiter: ',', Columns: []string{"tags"}},
			checkFunc: func(t *testing.T, records [][]string) {
				if records[2][0] != "[]" {
					t.Errorf("empty tags = %q, want []", records[2][0])
				}
			},
		},
		{
			name: "no header",
			opts: ExportOptions{Delimiter: ',', NoHeader: true, Columns: []string{"id"}},
			checkFunc: func(t *testing.T, records [][]string) {
				if len(records) != 2 || records[0][0] != "doc-1" {
					t.Errorf("records = %v", records)
				}
			},
		},
		{
			name: "custom time format and zone",
			opts: ExportOptions{Delimiter: ',', Columns: []string{"createdAt"}, TimeFormat: "dd/MM/yyyy HH:mm", TimeZone: "Europe/Paris"},
			checkFunc: func(t *testing.T, records [][]string) {
				if records[1][0] != "15/03/2024 15:30" {
					t.Errorf("createdAt = %q, want 15/03/2024 15:30", records[1][0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, n := exportTo(t, FormatCSV, sampleDocuments(), tt.opts)
			if n != 2 {
				t.Errorf("Export() rows = %d, want 2", n)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("Failed to open file: %v", err)
			}
			defer f.Close()

			records, err := csv.NewReader(f).ReadAll()
			if err != nil {
				t.Fatalf("Failed to parse CSV: %v", err)
			}
			tt.checkFunc(t, records)
		})
	}
}

func TestExportCSVDelimiter(t *testing.T) {
	path, _ := exportTo(t, FormatCSV, sampleDocuments(), ExportOptions{Delimiter: ';', Columns: []string{"id", "category"}})

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	if lines[0] != "id;category" {
		t.Errorf("header = %q, want id;category", lines[0])
	}
	if lines[1] != "doc-1;Project" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	path, n := exportTo(t, FormatCSV, nil, ExportOptions{Delimiter: ','})
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	if len(lines) != 1 {
		t.Errorf("expected header only, got %d lines", len(lines))
	}
}

func TestExportCSVGzip(t *testing.T) {
	path, _ := exportTo(t, FormatCSV, sampleDocuments(), ExportOptions{Delimiter: ',', Compression: "gzip"})

	f, err := os.Open(path + ".gz")
	if err != nil {
		t.Fatalf("expected %s.gz: %v", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	records, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("records = %d, want 3", len(records))
	}
}

func TestExportCSVUnknownColumn(t *testing.T) {
	exporter, _ := Get(FormatCSV)
	_, err := exporter.Export(sampleDocuments(), ExportOptions{
		Format: FormatCSV, OutputPath: t.TempDir() + "/x.csv", Compression: "none", Columns: []string{"owner"},
	})
	if err == nil || !strings.Contains(err.Error(), "owner") {
		t.Errorf("expected unknown column error, got %v", err)
	}
}
