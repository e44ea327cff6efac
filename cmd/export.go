package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/exporters"
	"github.com/fbz-tec/docvault/core/output"
	"github.com/fbz-tec/docvault/core/store"
	"github.com/fbz-tec/docvault/core/validation"
	"github.com/fbz-tec/docvault/internal/logger"
	"github.com/fbz-tec/docvault/internal/ui"
)

var (
	outputPath     string
	format         string
	delimiter      string
	compression    string
	timeFormat     string
	timeZone       string
	xmlRootElement string
	xmlRowElement  string
	columns        []string
	failOnEmpty    bool
	noHeader       bool

	exportSearch   string
	exportCategory string
	exportSort     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document catalog to CSV, JSON, XML, YAML or XLSX",
	Long: `Export document records straight from the database.

Supported output formats:
 • CSV : standard text export with customizable delimiter
 • JSON: array of objects, keys in column order
 • XML : one element per document, tags as child elements
 • YAML: sequence of mappings
 • XLSX: Excel workbook with real date cells`,
	Example: `  # Whole catalog as CSV
  docvault export -o catalog.csv

  # Financial documents as zstd-compressed JSON
  docvault export -o finance.json -f json --category Financial -z zstd

  # Selected columns to stdout with a semicolon delimiter
  docvault export -o - --columns id,title,fileSizeLabel -D ";"`,
	Args:    cobra.NoArgs,
	PreRunE: validateExportParams,
	RunE:    runExport,
}

func init() {
	f := exportCmd.Flags()
	f.SortFlags = false

	// OUTPUT DESTINATION - where and how to export
	f.StringVarP(&outputPath, "output", "o", "", "Output file path, - for stdout (required)")
	f.StringVarP(&format, "format", "f", exporters.FormatCSV, "Output format ("+strings.Join(exporters.List(), ", ")+")")
	f.StringVarP(&compression, "compression", "z", output.None, "Compression to apply to the output file ("+strings.Join(output.Compressions, ", ")+")")
	f.StringSliceVar(&columns, "columns", nil, "Columns to export, in order (default all: "+strings.Join(exporters.ColumnNames(), ",")+")")

	// SELECTION - which documents
	f.StringVarP(&exportSearch, "search", "s", "", "Only documents matching this text")
	f.StringVarP(&exportCategory, "category", "c", "", "Only this category")
	f.StringVar(&exportSort, "sort", documents.SortNewest, "Sort order: newest, oldest or name")

	// CSV options
	f.StringVarP(&delimiter, "delimiter", "D", ",", "CSV delimiter character")
	f.BoolVarP(&noHeader, "no-header", "n", false, "Skip header row in CSV and XLSX output")

	// XML options
	f.StringVar(&xmlRootElement, "xml-root-tag", exporters.DefaultXMLRootElement, "Sets the root element name for XML exports")
	f.StringVar(&xmlRowElement, "xml-row-tag", exporters.DefaultXMLRowElement, "Sets the row element name for XML exports")

	// Date FORMATTING
	f.StringVarP(&timeFormat, "time-format", "T", "yyyy-MM-dd HH:mm:ss", "Custom time format (e.g. yyyy-MM-ddTHH:mm:ss.SSS)")
	f.StringVarP(&timeZone, "time-zone", "Z", "", "Time zone for date/time formatting (e.g. UTC, Europe/Paris). Defaults to local time zone.")

	// BEHAVIOR OPTIONS
	f.BoolVarP(&failOnEmpty, "fail-on-empty", "x", false, "Exit with error if no document matches")

	if err := exportCmd.MarkFlagRequired("output"); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	rootCmd.AddCommand(exportCmd)
}

func validateExportParams(cmd *cobra.Command, args []string) error {
	logger.Debug("Validating export parameters")

	format = strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(exporters.List(), format) {
		return fmt.Errorf("invalid format '%s'. Valid formats are: %s",
			format, strings.Join(exporters.List(), ", "))
	}

	c, err := output.NormalizeCompression(compression)
	if err != nil {
		return err
	}
	compression = c

	if outputPath == output.Stdout {
		if compression != output.None {
			return fmt.Errorf("--compression cannot be used when writing to stdout")
		}
		if format == exporters.FormatXLSX {
			return fmt.Errorf("xlsx output cannot be written to stdout")
		}
	}

	if _, err := exporters.SelectColumns(columns); err != nil {
		return err
	}

	if _, err := documents.ParseSort(exportSort); err != nil {
		return err
	}

	if err := validation.ValidateTimeFormat(timeFormat); err != nil {
		return fmt.Errorf("invalid time format '%s'. Use format like 'yyyy-MM-dd HH:mm:ss'", timeFormat)
	}

	if err := validation.ValidateTimeZone(timeZone); err != nil {
		return fmt.Errorf("invalid timezone '%s'. Use format like 'UTC' or 'Europe/Paris'", timeZone)
	}

	logger.Debug("Export parameters validated successfully")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if outputPath == output.Stdout {
		// Keep stdout for the exported data.
		logger.GetLogger().SetOutput(os.Stderr)
	}

	delimRune := ','
	if format == exporters.FormatCSV {
		var err error
		delimRune, err = validation.ParseDelimiter(delimiter)
		if err != nil {
			return fmt.Errorf("invalid delimiter: %w", err)
		}
		logger.Debug("CSV delimiter: %q", string(delimRune))
	}

	st, err := store.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("Closing %s connection: %v", st.Backend(), err)
		}
	}()

	docs, err := fetchDocuments(cmd.Context(), st)
	if err != nil {
		return err
	}

	exporter, err := exporters.Get(format)
	if err != nil {
		return err
	}

	options := exporters.ExportOptions{
		Format:         format,
		OutputPath:     outputPath,
		Delimiter:      delimRune,
		Compression:    compression,
		TimeFormat:     timeFormat,
		TimeZone:       timeZone,
		NoHeader:       noHeader,
		XmlRootElement: xmlRootElement,
		XmlRowElement:  xmlRowElement,
		Columns:        columns,
		ProgressBar:    !logger.IsQuiet() && !logger.IsVerbose() && outputPath != output.Stdout,
	}

	logger.Debug("Exporting %d documents as %s", len(docs), format)
	rowCount, err := exporter.Export(docs, options)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	return handleExportResult(rowCount, output.ResolvePath(outputPath, compression))
}

// fetchDocuments connects through the store's connection cache, showing a
// spinner while the first connection is made.
func fetchDocuments(ctx context.Context, st store.Store) ([]documents.Document, error) {
	var sp *ui.Spinner
	if !logger.IsQuiet() && outputPath != output.Stdout {
		sp = ui.NewSpinner(fmt.Sprintf("Connecting to %s...", st.Backend()))
		sp.Start()
	}

	if err := st.Ping(ctx); err != nil {
		sp.Stop("Connection failed")
		return nil, err
	}
	sp.Update("Loading documents...")

	svc, err := documents.NewService(st, 0)
	if err != nil {
		sp.Stop("")
		return nil, err
	}
	listing, err := svc.List(ctx, documents.ListOptions{
		Search:   exportSearch,
		Category: exportCategory,
		Sort:     exportSort,
	})
	if err != nil {
		sp.Stop("Loading failed")
		return nil, err
	}

	sp.Stop(fmt.Sprintf("Loaded %d of %d documents", len(listing.Data), listing.Stats.Total))
	return listing.Data, nil
}

func handleExportResult(rowCount int, path string) error {
	if rowCount == 0 {

		if failOnEmpty {
			return fmt.Errorf("export failed: no document matched")
		}

		logger.Warn("No document matched. File created at %s but contains no data rows", path)

	} else {
		logger.Success("Export completed: %d rows -> %s", rowCount, path)
	}

	return nil
}
