package exporters

import (
	"fmt"
	"time"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/encoders"
	"github.com/fbz-tec/docvault/internal/logger"
)

type jsonExporter struct{}

// Export writes documents as a JSON array, keys in column order.
func (e *jsonExporter) Export(docs []documents.Document, options ExportOptions) (int, error) {
	start := time.Now()
	logger.Debug("Preparing JSON export (indent=2 spaces, compression=%s)", options.Compression)

	columns, err := SelectColumns(options.Columns)
	if err != nil {
		return 0, err
	}

	writeCloser, err := createOutputWriter(options)
	if err != nil {
		return 0, err
	}
	defer writeCloser.Close()

	if len(docs) == 0 {
		if _, err := writeCloser.Write([]byte("[]\n")); err != nil {
			return 0, fmt.Errorf("error writing empty JSON array: %w", err)
		}
		return 0, writeCloser.Close()
	}

	if _, err := writeCloser.Write([]byte("[\n")); err != nil {
		return 0, fmt.Errorf("error writing start of JSON array: %w", err)
	}

	orderedEncoder := encoders.NewOrderedJsonEncoder(options.TimeFormat, options.TimeZone)

	rowCount := 0
	for _, doc := range docs {
		if rowCount > 0 {
			if _, err := writeCloser.Write([]byte(",\n")); err != nil {
				return rowCount, fmt.Errorf("error writing comma for row %d: %w", rowCount, err)
			}
		}

		rowData := encoders.NewRow()
		for _, c := range columns {
			rowData.Set(c.Name, c.Value(doc))
		}

		jsonBytes, err := orderedEncoder.EncodeRow(rowData)
		if err != nil {
			return rowCount, fmt.Errorf("error encoding JSON for row %d: %w", rowCount+1, err)
		}

		if _, err := writeCloser.Write([]byte("  ")); err != nil {
			return rowCount, fmt.Errorf("error writing indentation for row %d: %w", rowCount+1, err)
		}
		if _, err := writeCloser.Write(jsonBytes); err != nil {
			return rowCount, fmt.Errorf("error writing JSON object for row %d: %w", rowCount+1, err)
		}

		rowCount++
	}

	if _, err := writeCloser.Write([]byte("\n]\n")); err != nil {
		return rowCount, fmt.Errorf("error writing end of JSON array: %w", err)
	}
	if err := writeCloser.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing output: %w", err)
	}

	logger.Debug("JSON export completed successfully: %d rows written in %v", rowCount, time.Since(start))
	return rowCount, nil
}

func init() {
	MustRegister(FormatJSON, func() Exporter { return &jsonExporter{} })
}
