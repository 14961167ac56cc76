// Package document implements the card file text format.
//
// A Document is an ordered list of Nodes. Each node is a key/value
// assignment, a keyed block, or a sequence element, and blocks nest to
// arbitrary depth. The package knows nothing about schemas: it only turns
// text into nodes (Parse) and nodes into canonical text (Print).
package document

import "github.com/leapstack-labs/cardfile/pkg/token"

// Node is one line of a document together with its nested block.
type Node struct {
	Key      string // empty for sequence elements
	Item     bool   // true for "-" element markers
	Value    string // scalar payload, already unquoted
	Tag      string // type discriminator of a tagged block
	Children []*Node
	Pos      token.Position

	valued bool // a scalar payload was present on the line
}

// NewValue returns a scalar node.
func NewValue(key, value string) *Node {
	return &Node{Key: key, Value: value, valued: value != ""}
}

// NewBlock returns a block node with the given tag and children.
func NewBlock(key, tag string, children ...*Node) *Node {
	return &Node{Key: key, Tag: tag, Children: children}
}

// NewItem returns a sequence element wrapping n's payload and children.
func NewItem(n *Node) *Node {
	return &Node{Item: true, Value: n.Value, Tag: n.Tag, Children: n.Children, valued: n.valued}
}

// IsBlock returns true if the node opens a (possibly empty) nested block.
func (n *Node) IsBlock() bool {
	return n.Tag != "" || len(n.Children) > 0
}

// IsScalar returns true if the node carries a scalar payload and no block.
func (n *Node) IsScalar() bool {
	return !n.IsBlock()
}

// Lookup returns the first child with the given key.
func (n *Node) Lookup(key string) (*Node, bool) {
	for _, c := range n.Children {
		if !c.Item && c.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Document is a parsed card file.
type Document struct {
	Nodes []*Node
}

// Lookup returns the first top-level node with the given key.
func (d *Document) Lookup(key string) (*Node, bool) {
	for _, n := range d.Nodes {
		if !n.Item && n.Key == key {
			return n, true
		}
	}
	return nil, false
}
