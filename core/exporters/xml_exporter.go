package exporters

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/formatters"
	"github.com/fbz-tec/docvault/internal/logger"
)

const (
	DefaultXMLRootElement = "documents"
	DefaultXMLRowElement  = "document"
)

type xmlExporter struct{}

// Export writes documents as XML. Tag lists become one child element per tag.
func (e *xmlExporter) Export(docs []documents.Document, options ExportOptions) (int, error) {

	start := time.Now()
	logger.Debug("Preparing XML export (indent=2 spaces, compression=%s)", options.Compression)

	rootName := options.XmlRootElement
	if rootName == "" {
		rootName = DefaultXMLRootElement
	}
	rowName := options.XmlRowElement
	if rowName == "" {
		rowName = DefaultXMLRowElement
	}

	columns, err := SelectColumns(options.Columns)
	if err != nil {
		return 0, err
	}

	writeCloser, err := createOutputWriter(options)
	if err != nil {
		return 0, err
	}
	defer writeCloser.Close()

	if _, err := writeCloser.Write([]byte(xml.Header)); err != nil {
		return 0, fmt.Errorf("error writing XML header: %w", err)
	}

	encoder := xml.NewEncoder(writeCloser)
	encoder.Indent("", "  ")

	startRoot := xml.StartElement{Name: xml.Name{Local: rootName}}
	if err := encoder.EncodeToken(startRoot); err != nil {
		return 0, fmt.Errorf("error starting <%s>: %w", rootName, err)
	}

	rowCount := 0
	for _, doc := range docs {
		startRow := xml.StartElement{Name: xml.Name{Local: rowName}}
		if err := encoder.EncodeToken(startRow); err != nil {
			return rowCount, fmt.Errorf("error opening <%s>: %w", rowName, err)
		}

		for _, c := range columns {
			elem := xml.StartElement{Name: xml.Name{Local: c.Name}}

			if list, ok := c.Value(doc).([]string); ok {
				wrapper := struct {
					Items []string `xml:"tag"`
				}{Items: list}
				if err := encoder.EncodeElement(wrapper, elem); err != nil {
					return rowCount, fmt.Errorf("error encoding list %s: %w", c.Name, err)
				}
				continue
			}

			val := formatters.FormatXMLValue(c.Value(doc), options.TimeFormat, options.TimeZone)
			if err := encoder.EncodeElement(val, elem); err != nil {
				return rowCount, fmt.Errorf("error encoding field %s: %w", c.Name, err)
			}
		}

		if err := encoder.EncodeToken(startRow.End()); err != nil {
			return rowCount, fmt.Errorf("error closing </%s>: %w", rowName, err)
		}
		rowCount++
	}

	if err := encoder.EncodeToken(startRoot.End()); err != nil {
		return rowCount, fmt.Errorf("error ending </%s>: %w", rootName, err)
	}

	if err := encoder.Flush(); err != nil {
		return rowCount, fmt.Errorf("error flushing XML encoder: %w", err)
	}

	if _, err := writeCloser.Write([]byte("\n")); err != nil {
		return rowCount, fmt.Errorf("error writing final newline: %w", err)
	}
	if err := writeCloser.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing output: %w", err)
	}

	logger.Debug("XML export completed successfully: %d rows written in %v", rowCount, time.Since(start))
	return rowCount, nil
}

func init() {
	MustRegister(FormatXML, func() Exporter { return &xmlExporter{} })
}
