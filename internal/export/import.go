package export

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/cardfile/pkg/document"
)

// FromYAML converts YAML produced by Write back into a document. Numbers
// and booleans are taken verbatim as scalar text.
func FromYAML(data []byte) (*document.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return &document.Document{}, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: document must be a mapping", top.Line)
	}

	tag, nodes, err := fromMapping(top)
	if err != nil {
		return nil, err
	}
	if tag != "" {
		return nil, fmt.Errorf("line %d: top-level mapping must not have %s", top.Line, TypeKey)
	}
	return &document.Document{Nodes: nodes}, nil
}

// fromYAML converts the value node v into n's payload.
func fromYAML(n *document.Node, v *yaml.Node) error {
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return nil
		}
		*n = *document.NewValue(n.Key, v.Value)
		return nil
	case yaml.SequenceNode:
		items, err := fromSequence(v)
		if err != nil {
			return err
		}
		n.Children = items
		return nil
	case yaml.MappingNode:
		tag, children, err := fromMapping(v)
		if err != nil {
			return err
		}
		n.Tag = tag
		n.Children = children
		return nil
	case yaml.AliasNode:
		return fromYAML(n, v.Alias)
	}
	return fmt.Errorf("line %d: unsupported yaml node", v.Line)
}

func fromSequence(v *yaml.Node) ([]*document.Node, error) {
	out := make([]*document.Node, 0, len(v.Content))
	for _, c := range v.Content {
		item := &document.Node{}
		if err := fromYAML(item, c); err != nil {
			return nil, err
		}
		out = append(out, document.NewItem(item))
	}
	return out, nil
}

func fromMapping(v *yaml.Node) (string, []*document.Node, error) {
	var (
		tag      string
		children []*document.Node
	)
	for i := 0; i+1 < len(v.Content); i += 2 {
		k, val := v.Content[i], v.Content[i+1]
		switch k.Value {
		case TypeKey:
			if val.Kind != yaml.ScalarNode || val.Value == "" {
				return "", nil, fmt.Errorf("line %d: %s must be a non-empty string", val.Line, TypeKey)
			}
			tag = val.Value
		case ItemsKey:
			if val.Kind != yaml.SequenceNode {
				return "", nil, fmt.Errorf("line %d: %s must be a sequence", val.Line, ItemsKey)
			}
			items, err := fromSequence(val)
			if err != nil {
				return "", nil, err
			}
			children = append(children, items...)
		default:
			n := &document.Node{Key: k.Value}
			if err := fromYAML(n, val); err != nil {
				return "", nil, err
			}
			children = append(children, n)
		}
	}
	return tag, children, nil
}
