package exporters

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExportJSON(t *testing.T) {
	path, n := exportTo(t, FormatJSON, sampleDocuments(), ExportOptions{})
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}

	content := readFile(t, path)

	var result []map[string]any
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, content)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(result))
	}

	first := result[0]
	if first["title"] != "Project Requirements" {
		t.Errorf("title = %v", first["title"])
	}
	if first["fileSize"] != float64(2048576) {
		t.Errorf("fileSize = %v", first["fileSize"])
	}
	if first["createdAt"] != "2024-03-15 14:30:45" {
		t.Errorf("createdAt = %v", first["createdAt"])
	}
	tags, ok := first["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "requirements" {
		t.Errorf("tags = %#v", first["tags"])
	}

	second := result[1]
	if tags, ok := second["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("empty tags should export as [], got %#v", second["tags"])
	}

	if !strings.Contains(content, "<intranet>") {
		t.Error("HTML characters should not be escaped")
	}
}

func TestExportJSONKeyOrder(t *testing.T) {
	path, _ := exportTo(t, FormatJSON, sampleDocuments()[:1], ExportOptions{Columns: []string{"updatedAt", "ID", "title"}})

	content := readFile(t, path)
	iu := strings.Index(content, `"updatedAt"`)
	ii := strings.Index(content, `"id"`)
	it := strings.Index(content, `"title"`)
	if iu < 0 || ii < 0 || it < 0 {
		t.Fatalf("missing keys in %s", content)
	}
	if !(iu < ii && ii < it) {
		t.Errorf("keys not in requested order: %s", content)
	}
	if strings.Contains(content, `"description"`) {
		t.Errorf("unselected column exported: %s", content)
	}
}

func TestExportJSONEmpty(t *testing.T) {
	path, n := exportTo(t, FormatJSON, nil, ExportOptions{})
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
	if got := readFile(t, path); got != "[]\n" {
		t.Errorf("content = %q, want []", got)
	}
}
