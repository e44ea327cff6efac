package encoders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/fbz-tec/docvault/core/formatters"
)

// Row is one exported record with its fields in column order.
type Row = orderedmap.OrderedMap[string, any]

// NewRow returns an empty Row.
func NewRow() *Row {
	return orderedmap.NewOrderedMap[string, any]()
}

// OrderedJsonEncoder encodes JSON while preserving key order
type OrderedJsonEncoder struct {
	timeLayout string
	timezone   string
}

// NewOrderedJsonEncoder creates a new ordered JSON encoder with time formatting options
func NewOrderedJsonEncoder(timeFormat, timeZone string) OrderedJsonEncoder {
	return OrderedJsonEncoder{
		timeLayout: timeFormat,
		timezone:   timeZone,
	}
}

// EncodeRow encodes one record as an indented JSON object, keys in column order.
func (o OrderedJsonEncoder) EncodeRow(rowData *Row) ([]byte, error) {

	if rowData.Len() == 0 {
		return []byte("{}"), nil
	}

	var row bytes.Buffer
	row.Grow(rowData.Len() * 32)

	row.WriteString("{\n")

	i := 0

	for k, v := range rowData.AllFromFront() {

		if i > 0 {
			row.WriteString(",\n")
		}
		// 4 spaces: objects sit inside a 2-space indented array
		row.WriteString("    ")

		row.WriteString(fmt.Sprintf("%q", k))
		row.WriteString(": ")

		formattedValue := formatters.FormatJSONValue(v, o.timeLayout, o.timezone)
		valueJSON, err := marshalWithoutHTMLEscape(formattedValue)
		if err != nil {
			return nil, fmt.Errorf("error marshaling value for key %q: %w", k, err)
		}

		row.Write(valueJSON)
		i++
	}

	row.WriteString("\n  }")
	return row.Bytes(), nil
}

func marshalWithoutHTMLEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
