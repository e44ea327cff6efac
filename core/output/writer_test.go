package output

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const testData = "id,title\n1,Project Requirements\n2,API Documentation\n"

func writeAll(t *testing.T, cfg OutputConfig, data string) {
	t.Helper()
	writer, err := CreateWriter(cfg)
	if err != nil {
		t.Fatalf("CreateWriter() error = %v", err)
	}
	if _, err := writer.Write([]byte(data)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestCreateWriter(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		compression string
		wantFile    string
		decode      func(r io.Reader) (io.Reader, error)
	}{
		{
			name:        "no compression",
			file:        "docs.csv",
			compression: "none",
			wantFile:    "docs.csv",
			decode:      func(r io.Reader) (io.Reader, error) { return r, nil },
		},
		{
			name:        "empty compression means none",
			file:        "docs.csv",
			compression: "",
			wantFile:    "docs.csv",
			decode:      func(r io.Reader) (io.Reader, error) { return r, nil },
		},
		{
			name:        "gzip adds extension",
			file:        "docs.csv",
			compression: "gzip",
			wantFile:    "docs.csv.gz",
			decode:      func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
		},
		{
			name:        "gzip keeps existing extension",
			file:        "docs.csv.GZ",
			compression: "GZIP",
			wantFile:    "docs.csv.GZ",
			decode:      func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
		},
		{
			name:        "zstd",
			file:        "docs.json",
			compression: " zstd ",
			wantFile:    "docs.json.zst",
			decode: func(r io.Reader) (io.Reader, error) {
				d, err := zstd.NewReader(r)
				if err != nil {
					return nil, err
				}
				return d.IOReadCloser(), nil
			},
		},
		{
			name:        "lz4",
			file:        "docs.yaml",
			compression: "lz4",
			wantFile:    "docs.yaml.lz4",
			decode:      func(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeAll(t, OutputConfig{Path: filepath.Join(dir, tt.file), Compression: tt.compression, Format: "csv"}, testData)

			f, err := os.Open(filepath.Join(dir, tt.wantFile))
			if err != nil {
				t.Fatalf("expected output file %s: %v", tt.wantFile, err)
			}
			defer f.Close()

			r, err := tt.decode(f)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			content, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read error = %v", err)
			}
			if string(content) != testData {
				t.Errorf("content = %q, want %q", content, testData)
			}
		})
	}
}

func TestCreateWriter_ZIP(t *testing.T) {
	dir := t.TempDir()
	writeAll(t, OutputConfig{Path: filepath.Join(dir, "docs.csv"), Compression: "zip", Format: "csv"}, testData)

	r, err := zip.OpenReader(filepath.Join(dir, "docs.zip"))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer r.Close()

	if len(r.File) != 1 {
		t.Fatalf("zip has %d entries, want 1", len(r.File))
	}
	if r.File[0].Name != "docs.csv" {
		t.Errorf("entry name = %q, want docs.csv", r.File[0].Name)
	}

	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if string(content) != testData {
		t.Errorf("content = %q, want %q", content, testData)
	}
}

func TestCreateWriter_InvalidCompression(t *testing.T) {
	_, err := CreateWriter(OutputConfig{Path: filepath.Join(t.TempDir(), "x.csv"), Compression: "rar"})
	if err == nil {
		t.Fatal("CreateWriter() expected error for unknown compression")
	}
	if !strings.Contains(err.Error(), "rar") {
		t.Errorf("error %q should name the compression", err)
	}
}

func TestCreateWriter_StdoutRejectsCompression(t *testing.T) {
	if _, err := CreateWriter(OutputConfig{Path: Stdout, Compression: GZIP}); err == nil {
		t.Fatal("CreateWriter() expected error for compressed stdout")
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		path        string
		compression string
		want        string
	}{
		{"docs.csv", "none", "docs.csv"},
		{"docs.csv", "gzip", "docs.csv.gz"},
		{"docs.csv.gz", "gzip", "docs.csv.gz"},
		{"docs.json", "zstd", "docs.json.zst"},
		{"docs.yaml", "lz4", "docs.yaml.lz4"},
		{"docs.csv", "zip", "docs.zip"},
		{"docs", "zip", "docs.zip"},
		{"-", "none", "-"},
		{"docs.csv", "bogus", "docs.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.compression, func(t *testing.T) {
			if got := ResolvePath(tt.path, tt.compression); got != tt.want {
				t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.path, tt.compression, got, tt.want)
			}
		})
	}
}

func TestDetermineZipEntryName(t *testing.T) {
	tests := []struct {
		path   string
		format string
		want   string
	}{
		{"docs.csv", "csv", "docs.csv"},
		{"docs.zip", "json", "docs.json"},
		{"docs.csv.zip", "csv", "docs.csv"},
		{"/tmp/out/catalog", "xlsx", "catalog.xlsx"},
		{"", "yaml", "documents.yaml"},
		{"docs.zip", "", "docs"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := determineZipEntryName(tt.path, tt.format); got != tt.want {
				t.Errorf("determineZipEntryName(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
			}
		})
	}
}

func TestNormalizeCompression(t *testing.T) {
	for _, c := range []string{"none", "GZIP", " zip ", "zstd", "lz4", ""} {
		if _, err := NormalizeCompression(c); err != nil {
			t.Errorf("NormalizeCompression(%q) error = %v", c, err)
		}
	}
	if _, err := NormalizeCompression("bzip2"); err == nil {
		t.Error("NormalizeCompression(bzip2) expected error")
	}
}

func TestCompositeWriteCloser_NilCloseFunc(t *testing.T) {
	c := &compositeWriteCloser{Writer: &bytes.Buffer{}}
	if err := c.Close(); err != nil {
		t.Errorf("Close() with nil closeFunc = %v, want nil", err)
	}
}

func BenchmarkCreateWriter_GZIP(b *testing.B) {
	dir := b.TempDir()
	data := bytes.Repeat([]byte(testData), 1000)
	for i := 0; i < b.N; i++ {
		w, err := CreateWriter(OutputConfig{Path: filepath.Join(dir, "bench.csv"), Compression: GZIP})
		if err != nil {
			b.Fatal(err)
		}
		w.Write(data)
		w.Close()
	}
}

func TestCreateWriter_CloseTwice(t *testing.T) {
	for _, c := range Compressions {
		t.Run(c, func(t *testing.T) {
			w, err := CreateWriter(OutputConfig{Path: filepath.Join(t.TempDir(), "docs.csv"), Compression: c, Format: "csv"})
			if err != nil {
				t.Fatalf("CreateWriter() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("first Close() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Errorf("second Close() error = %v", err)
			}
		})
	}
}
