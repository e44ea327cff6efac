package encoders

import (
	"gopkg.in/yaml.v3"

	"github.com/fbz-tec/docvault/core/formatters"
)

type OrderedYamlEncoder struct {
	timeLayout string
	timezone   string
}

func NewOrderedYamlEncoder(timeFormat, timeZone string) OrderedYamlEncoder {
	return OrderedYamlEncoder{
		timeLayout: timeFormat,
		timezone:   timeZone,
	}
}

// EncodeRow builds a YAML mapping node (one record).
func (o OrderedYamlEncoder) EncodeRow(rowData *Row) (*yaml.Node, error) {

	row := &yaml.Node{
		Kind: yaml.MappingNode,
	}

	for k, v := range rowData.AllFromFront() {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: k,
		}

		val := formatters.FormatYAMLValue(v, o.timeLayout, o.timezone)
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(val); err != nil {
			return nil, err
		}
		// Keep tag lists on one line: tags: [a, b]
		if valueNode.Kind == yaml.SequenceNode {
			valueNode.Style = yaml.FlowStyle
		}

		row.Content = append(row.Content, keyNode, valueNode)
	}

	return row, nil
}
