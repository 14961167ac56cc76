package document

import (
	"fmt"

	"github.com/leapstack-labs/cardfile/pkg/core"
	"github.com/leapstack-labs/cardfile/pkg/token"
)

// Parser builds a Document from the token stream of a Lexer.
type Parser struct {
	lexer *Lexer
	cur   token.Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.next()
	return p
}

// Parse parses input into a Document.
func Parse(input string) (*Document, error) {
	return NewParser(input).Parse()
}

func (p *Parser) next() {
	p.cur = p.lexer.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) error {
	return &core.ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Parse consumes all tokens and returns the document tree.
func (p *Parser) Parse() (*Document, error) {
	root := &Node{}
	// stack[d] is the node whose children live at depth d.
	stack := []*Node{root}

	for p.cur.Type != token.EOF {
		if p.cur.Type == token.ILLEGAL {
			return nil, p.errorf(p.cur.Pos, "%s", p.cur.Literal)
		}
		if p.cur.Type != token.INDENT {
			return nil, p.errorf(p.cur.Pos, ErrUnexpectedToken, p.cur, token.INDENT)
		}
		depth := p.cur.Depth
		p.next()

		node, err := p.parseLine()
		if err != nil {
			return nil, err
		}

		if depth >= len(stack) {
			return nil, p.errorf(node.Pos, "unexpected indentation (depth %d, expected at most %d)", depth, len(stack)-1)
		}
		parent := stack[depth]
		if parent.valued {
			return nil, p.errorf(node.Pos, "unexpected block under %s which already has a value", describe(parent))
		}
		parent.Children = append(parent.Children, node)
		stack = append(stack[:depth+1], node)
	}

	return &Document{Nodes: root.Children}, nil
}

// parseLine parses head, optional payload and NEWLINE.
func (p *Parser) parseLine() (*Node, error) {
	n := &Node{Pos: p.cur.Pos}
	switch p.cur.Type {
	case token.KEY:
		n.Key = p.cur.Literal
	case token.ITEM:
		n.Item = true
	case token.ILLEGAL:
		return nil, p.errorf(p.cur.Pos, "%s", p.cur.Literal)
	default:
		return nil, p.errorf(p.cur.Pos, ErrUnexpectedToken, p.cur, "key or '-'")
	}
	p.next()

	switch p.cur.Type {
	case token.VALUE:
		n.Value = p.cur.Literal
		n.valued = p.cur.Literal != "" || p.cur.Quoted
		p.next()
	case token.TAG:
		n.Tag = p.cur.Literal
		p.next()
	}

	if p.cur.Type == token.ILLEGAL {
		return nil, p.errorf(p.cur.Pos, "%s", p.cur.Literal)
	}
	if p.cur.Type != token.NEWLINE {
		return nil, p.errorf(p.cur.Pos, ErrUnexpectedToken, p.cur, token.NEWLINE)
	}
	p.next()
	return n, nil
}

func describe(n *Node) string {
	if n.Item {
		return "sequence element"
	}
	return fmt.Sprintf("key %q", n.Key)
}

// Common error messages
const (
	ErrUnexpectedToken = "unexpected token %s, expected %s"
)
