// Package export converts card file documents to YAML and JSON and back.
//
// Keyed blocks become mappings, sequences become lists and scalars become
// strings. A tagged block becomes a mapping whose first key is "_type".
// Field order is preserved in YAML; JSON objects have sorted keys.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/cardfile/pkg/document"
)

// Keys with special meaning in exported mappings.
const (
	TypeKey  = "_type"
	ItemsKey = "_items"
)

// Format is an output format.
type Format string

// Formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (expected yaml or json)", s)
}

// Write renders doc to w in the given format.
func Write(w io.Writer, doc *document.Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ToYAML(doc)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ToMap(doc)); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Marshal renders doc in the given format.
func Marshal(doc *document.Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToYAML converts doc to an order-preserving YAML mapping node.
func ToYAML(doc *document.Document) *yaml.Node {
	return yamlBlock("", doc.Nodes)
}

func yamlNode(n *document.Node) *yaml.Node {
	if !n.IsBlock() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Value}
	}
	return yamlBlock(n.Tag, n.Children)
}

func yamlBlock(tag string, children []*document.Node) *yaml.Node {
	if tag == "" && allItems(children) {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range children {
			seq.Content = append(seq.Content, yamlNode(c))
		}
		return seq
	}

	m := &yaml.Node{Kind: yaml.MappingNode}
	if tag != "" {
		m.Content = append(m.Content, yamlKey(TypeKey), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag})
	}
	var items *yaml.Node
	for _, c := range children {
		if c.Item {
			if items == nil {
				items = &yaml.Node{Kind: yaml.SequenceNode}
			}
			items.Content = append(items.Content, yamlNode(c))
			continue
		}
		m.Content = append(m.Content, yamlKey(c.Key), yamlNode(c))
	}
	if items != nil {
		m.Content = append(m.Content, yamlKey(ItemsKey), items)
	}
	return m
}

func yamlKey(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}

// ToMap converts doc to nested maps, lists and strings.
func ToMap(doc *document.Document) map[string]any {
	if m, ok := mapBlock("", doc.Nodes).(map[string]any); ok {
		return m
	}
	return map[string]any{ItemsKey: mapBlock("", doc.Nodes)}
}

func mapNode(n *document.Node) any {
	if !n.IsBlock() {
		return n.Value
	}
	return mapBlock(n.Tag, n.Children)
}

func mapBlock(tag string, children []*document.Node) any {
	if tag == "" && len(children) > 0 && allItems(children) {
		list := make([]any, len(children))
		for i, c := range children {
			list[i] = mapNode(c)
		}
		return list
	}

	m := make(map[string]any, len(children)+1)
	if tag != "" {
		m[TypeKey] = tag
	}
	var items []any
	for _, c := range children {
		if c.Item {
			items = append(items, mapNode(c))
			continue
		}
		m[c.Key] = mapNode(c)
	}
	if items != nil {
		m[ItemsKey] = items
	}
	return m
}

func allItems(nodes []*document.Node) bool {
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if !n.Item {
			return false
		}
	}
	return true
}
