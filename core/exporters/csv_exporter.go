package exporters

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/formatters"
	"github.com/fbz-tec/docvault/internal/logger"
	"github.com/fbz-tec/docvault/internal/ui"
)

type csvExporter struct{}

// Export writes documents to a CSV file with buffered I/O.
func (e *csvExporter) Export(docs []documents.Document, options ExportOptions) (int, error) {
	start := time.Now()

	if options.Delimiter == 0 {
		options.Delimiter = ','
	}
	logger.Debug("Preparing CSV export (delimiter=%q, noHeader=%v, compression=%s)",
		string(options.Delimiter), options.NoHeader, options.Compression)

	columns, err := SelectColumns(options.Columns)
	if err != nil {
		return 0, err
	}

	writerCloser, err := createOutputWriter(options)
	if err != nil {
		return 0, err
	}
	defer writerCloser.Close()

	writer := csv.NewWriter(writerCloser)
	writer.Comma = options.Delimiter

	if !options.NoHeader {
		headers := make([]string, len(columns))
		for i, c := range columns {
			headers[i] = c.Name
		}

		if err := writer.Write(headers); err != nil {
			return 0, fmt.Errorf("error writing headers: %w", err)
		}
		logger.Debug("CSV headers written: %s", strings.Join(headers, string(options.Delimiter)))
	}

	var bar *ui.ProgressBar
	if options.ProgressBar {
		bar = ui.NewProgressBar(len(docs), "Exporting documents")
	}

	rowCount := 0
	for _, doc := range docs {
		record := make([]string, len(columns))
		for i, c := range columns {
			record[i] = formatters.FormatCSVValue(c.Value(doc), options.TimeFormat, options.TimeZone)
		}

		if err := writer.Write(record); err != nil {
			return rowCount, fmt.Errorf("error writing row %d: %w", rowCount+1, err)
		}
		rowCount++
		bar.Add(1)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rowCount, fmt.Errorf("error flushing CSV: %w", err)
	}
	if err := writerCloser.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing output: %w", err)
	}
	bar.Finish()

	logger.Debug("CSV export completed successfully: %d rows written in %v", rowCount, time.Since(start).Round(time.Millisecond))
	return rowCount, nil
}

func init() {
	MustRegister(FormatCSV, func() Exporter { return &csvExporter{} })
}
