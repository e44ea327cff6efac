package exporters

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/formatters"
	"github.com/fbz-tec/docvault/internal/logger"
	"github.com/fbz-tec/docvault/internal/ui"
)

// SheetName is the worksheet holding the exported catalog.
const SheetName = "Documents"

type xlsxExporter struct{}

// Export writes documents to an Excel XLSX workbook with one sheet. Timestamps
// are stored as Excel dates using the requested time format.
func (e *xlsxExporter) Export(docs []documents.Document, options ExportOptions) (int, error) {

	start := time.Now()
	logger.Debug("Preparing XLSX export (compression=%s)", options.Compression)

	columns, err := SelectColumns(options.Columns)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Error closing Excel file: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("failed to rename sheet: %w", err)
	}

	styles, err := newXLSXStyles(f, options)
	if err != nil {
		return 0, err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return 0, fmt.Errorf("error creating stream writer: %w", err)
	}

	var sp *ui.Spinner
	if options.ProgressBar {
		sp = ui.NewSpinner("Building workbook...")
		sp.Start()
	}

	currentRow := 1
	if !options.NoHeader {
		headerCells := make([]any, len(columns))
		for i, c := range columns {
			headerCells[i] = excelize.Cell{Value: c.Name, StyleID: styles.header}
		}
		cell, _ := excelize.CoordinatesToCellName(1, currentRow)
		if err := sw.SetRow(cell, headerCells); err != nil {
			return 0, fmt.Errorf("error writing headers: %w", err)
		}
		logger.Debug("XLSX headers written: %d columns", len(columns))
		currentRow++
	}

	rowCount := 0
	for _, doc := range docs {
		cells := make([]any, len(columns))
		for i, c := range columns {
			v := formatters.FormatXLSXValue(c.Value(doc), options.TimeFormat, options.TimeZone)
			if t, ok := v.(time.Time); ok {
				cells[i] = excelize.Cell{Value: t, StyleID: styles.date}
				continue
			}
			cells[i] = v
		}

		cell, _ := excelize.CoordinatesToCellName(1, currentRow)
		if err := sw.SetRow(cell, cells); err != nil {
			return rowCount, fmt.Errorf("error writing row %d: %w", currentRow, err)
		}

		rowCount++
		currentRow++
		sp.Update(fmt.Sprintf("Building workbook... %d rows", rowCount))
	}

	if err := sw.Flush(); err != nil {
		return rowCount, fmt.Errorf("error flushing stream: %w", err)
	}

	writerCloser, err := createOutputWriter(options)
	if err != nil {
		return rowCount, err
	}
	defer writerCloser.Close()

	if err := f.Write(writerCloser); err != nil {
		return rowCount, fmt.Errorf("error writing Excel file: %w", err)
	}
	if err := writerCloser.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing output: %w", err)
	}

	sp.Stop("Workbook written")
	logger.Debug("XLSX export completed: %d rows in %v", rowCount, time.Since(start))
	return rowCount, nil
}

type xlsxStyles struct {
	header int
	date   int
}

func newXLSXStyles(f *excelize.File, options ExportOptions) (xlsxStyles, error) {
	var s xlsxStyles

	if !options.NoHeader {
		id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "000000"}})
		if err != nil {
			logger.Warn("Failed to create header style: %v", err)
		} else {
			s.header = id
		}
	}

	layout := options.TimeFormat
	if layout == "" {
		layout = formatters.DefaultTimeFormat
	}
	numFmt := excelDateFormat(layout)
	id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return s, fmt.Errorf("failed to create date style: %w", err)
	}
	s.date = id
	return s, nil
}

var excelFormatReplacer = strings.NewReplacer(
	"MM", "mm",
	"HH", "hh",
	"SSS", "000",
)

// excelDateFormat maps the user time pattern onto Excel's number format
// codes, which use lower-case months/minutes and no millisecond token.
func excelDateFormat(userFmt string) string {
	return excelFormatReplacer.Replace(userFmt)
}

func init() {
	MustRegister(FormatXLSX, func() Exporter {
		return &xlsxExporter{}
	})
}
