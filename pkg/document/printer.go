package document

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Printer renders a Document in canonical form.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter() *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// Print renders the document as text.
func Print(doc *Document) string {
	p := newPrinter()
	for _, n := range doc.Nodes {
		p.printNode(n)
	}
	return p.output.String()
}

// WriteTo writes the canonical text of the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, Print(d))
	return int64(n), err
}

// String returns the canonical text of the document.
func (d *Document) String() string {
	return Print(d)
}

func (p *Printer) printNode(n *Node) {
	if n.Item {
		p.write("-")
	} else {
		p.write(QuoteKey(n.Key))
		p.write(":")
	}

	switch {
	case n.Tag != "":
		p.write(" !")
		p.write(n.Tag)
	case n.Value != "":
		p.write(" ")
		p.write(QuoteValue(n.Value))
	}
	p.writeln()

	p.indent()
	for _, c := range n.Children {
		p.printNode(c)
	}
	p.dedent()
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth; i++ {
		p.output.WriteByte('\t')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// QuoteValue returns s as it must appear after "key: ".
func QuoteValue(s string) string {
	if s == "" {
		return s
	}
	if needsQuote(s) || s[0] == '"' || s[0] == '!' {
		return strconv.Quote(s)
	}
	return s
}

// QuoteKey returns key as it must appear before ':'.
func QuoteKey(key string) string {
	if key == "" || needsQuote(key) || strings.ContainsRune(key, ':') {
		return strconv.Quote(key)
	}
	switch key[0] {
	case '"', '-', '#', '!':
		return strconv.Quote(key)
	}
	return key
}

func needsQuote(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' || !utf8.ValidString(s) {
		return true
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}
