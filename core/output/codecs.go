package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/fbz-tec/docvault/internal/logger"
)

// streamCodec wraps a file in a single-stream compressor.
type streamCodec struct {
	ext  string
	wrap func(w io.Writer) (io.WriteCloser, error)
}

var streamCodecs = map[string]streamCodec{
	GZIP: {".gz", func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
	ZSTD: {".zst", func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
	LZ4:  {".lz4", func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
}

func newStreamWriter(path, compression string) (io.WriteCloser, error) {
	start := time.Now()
	codec := streamCodecs[compression]

	logger.Debug("Creating %s-compressed output file: %s", compression, path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	cw, err := codec.wrap(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error creating %s writer: %w", compression, err)
	}

	return &compositeWriteCloser{
		Writer: cw,
		closeFunc: func() error {
			return closeAll(compression, path, start, cw, file)
		},
	}, nil
}

func newZipWriter(path, requested, format string) (io.WriteCloser, error) {
	start := time.Now()
	logger.Debug("Creating zip-compressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	zipWriter := zip.NewWriter(file)
	entryName := determineZipEntryName(requested, format)
	logger.Debug("Creating zip entry: %s", entryName)
	entryWriter, err := zipWriter.Create(entryName)
	if err != nil {
		zipWriter.Close()
		file.Close()
		return nil, fmt.Errorf("error creating zip entry: %w", err)
	}

	return &compositeWriteCloser{
		Writer: entryWriter,
		closeFunc: func() error {
			return closeAll(ZIP, path, start, zipWriter, file)
		},
	}, nil
}

// determineZipEntryName names the single archive entry after the output
// file, with the export format as its extension.
func determineZipEntryName(outputPath, format string) string {
	base := filepath.Base(outputPath)
	if strings.EqualFold(filepath.Ext(base), ".zip") {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "documents"
	}
	if format == "" || strings.EqualFold(filepath.Ext(base), "."+format) {
		return base
	}
	return base + "." + format
}
