package exporters

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/encoders"
	"github.com/fbz-tec/docvault/internal/logger"
)

type yamlExporter struct{}

func (e *yamlExporter) Export(docs []documents.Document, options ExportOptions) (int, error) {
	start := time.Now()
	logger.Debug("Preparing YAML export (compression=%s)", options.Compression)

	columns, err := SelectColumns(options.Columns)
	if err != nil {
		return 0, err
	}

	writeCloser, err := createOutputWriter(options)
	if err != nil {
		return 0, err
	}
	defer writeCloser.Close()

	enc := yaml.NewEncoder(writeCloser)
	enc.SetIndent(2)

	// Root YAML Sequence (the "-" items)
	rootSeq := &yaml.Node{
		Kind: yaml.SequenceNode,
	}

	rowEncoder := encoders.NewOrderedYamlEncoder(options.TimeFormat, options.TimeZone)

	rowCount := 0
	for _, doc := range docs {
		rowData := encoders.NewRow()
		for _, c := range columns {
			rowData.Set(c.Name, c.Value(doc))
		}

		rowNode, err := rowEncoder.EncodeRow(rowData)
		if err != nil {
			return rowCount, fmt.Errorf("error encoding YAML row %d: %w", rowCount+1, err)
		}

		rootSeq.Content = append(rootSeq.Content, rowNode)
		rowCount++
	}

	if rowCount == 0 {
		rootSeq.Style = yaml.FlowStyle
	}

	if err := enc.Encode(rootSeq); err != nil {
		return rowCount, fmt.Errorf("error writing YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing YAML encoder: %w", err)
	}
	if err := writeCloser.Close(); err != nil {
		return rowCount, fmt.Errorf("error closing output: %w", err)
	}

	logger.Debug("YAML export completed: %d rows written in %v",
		rowCount, time.Since(start))

	return rowCount, nil
}

func init() {
	MustRegister(FormatYAML, func() Exporter { return &yamlExporter{} })
}
