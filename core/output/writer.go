package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fbz-tec/docvault/internal/logger"
)

const (
	None = "none"
	GZIP = "gzip"
	ZIP  = "zip"
	ZSTD = "zstd"
	LZ4  = "lz4"
)

// Stdout is the output path that writes to standard output.
const Stdout = "-"

// Compressions lists the accepted compression names.
var Compressions = []string{None, GZIP, ZIP, ZSTD, LZ4}

// OutputConfig holds configuration for output file creation.
type OutputConfig struct {
	Path        string
	Compression string
	Format      string
}

// NormalizeCompression lower-cases c, maps "" to None and rejects unknown names.
func NormalizeCompression(c string) (string, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return None, nil
	}
	for _, known := range Compressions {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported compression type %q (valid: %s)", c, strings.Join(Compressions, ", "))
}

// ResolvePath returns the file CreateWriter will actually create for path,
// after adding or fixing the compression extension.
func ResolvePath(path, compression string) string {
	c, err := NormalizeCompression(compression)
	if err != nil || c == None || path == Stdout {
		return path
	}
	if c == ZIP {
		return fixExtension(path, ".zip")
	}
	ext := streamCodecs[c].ext
	if strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}

// CreateWriter creates a new writer based on the output configuration.
// Supports various compression formats: none, gzip, zip, zstd, lz4.
// The returned writer must be closed to flush the compressed stream; closing
// it again is a no-op.
func CreateWriter(cfg OutputConfig) (io.WriteCloser, error) {
	w, err := createWriter(cfg)
	if err != nil {
		return nil, err
	}
	return &onceCloser{WriteCloser: w}, nil
}

func createWriter(cfg OutputConfig) (io.WriteCloser, error) {
	c, err := NormalizeCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	if cfg.Path == Stdout {
		if c != None {
			return nil, fmt.Errorf("compression %q cannot be used when writing to stdout", c)
		}
		logger.Debug("Writing output to stdout")
		return newBufferedWriteCloser(nopCloser{os.Stdout}, 64*1024), nil
	}

	path := ResolvePath(cfg.Path, c)
	switch c {
	case None:
		return newFileWriter(path)
	case ZIP:
		return newZipWriter(path, cfg.Path, cfg.Format)
	default:
		return newStreamWriter(path, c)
	}
}

func newFileWriter(path string) (io.WriteCloser, error) {
	logger.Debug("Creating uncompressed output file: %s", path)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	return newBufferedWriteCloser(file, 256*1024), nil
}

// closeAll closes every closer in order and returns the first error.
func closeAll(name, path string, start time.Time, closers ...io.Closer) error {
	logger.Debug("Finalizing %s output: %s", name, path)
	var err error
	for _, c := range closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	logger.Debug("%s file closed in %v", name, time.Since(start))
	return err
}

func fixExtension(path, extension string) string {
	ext := filepath.Ext(path)

	if strings.ToLower(ext) != extension {
		path = path[:len(path)-len(ext)] + extension
	}
	return path
}
