package document

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/cardfile/pkg/token"
)

// Lexer tokenizes card file input one line at a time.
type Lexer struct {
	input string
	pos   int // offset of the next unread line
	line  int // number of the next unread line (1-based)
	queue []token.Token
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	for len(l.queue) == 0 {
		if l.pos >= len(l.input) {
			return token.Token{Type: token.EOF, Pos: token.Position{Line: l.line, Column: 1, Offset: l.pos}}
		}
		l.lexLine()
	}
	tok := l.queue[0]
	l.queue = l.queue[1:]
	return tok
}

// Tokens lexes the whole input, stopping after EOF or the first ILLEGAL token.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF || tok.Type == token.ILLEGAL {
			return toks
		}
	}
}

// lexLine consumes one physical line and queues its tokens.
func (l *Lexer) lexLine() {
	start := l.pos
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		end = len(l.input)
	} else {
		end += start
	}
	text := strings.TrimSuffix(l.input[start:end], "\r")
	line := l.line

	l.pos = end + 1
	l.line++

	pos := func(col int) token.Position {
		return token.Position{Line: line, Column: col + 1, Offset: start + col}
	}

	// Indentation
	depth := 0
	for depth < len(text) && text[depth] == '\t' {
		depth++
	}
	rest := text[depth:]
	if strings.TrimSpace(rest) == "" || strings.HasPrefix(strings.TrimLeft(rest, " \t"), "#") {
		return
	}
	if rest[0] == ' ' {
		l.illegal(pos(depth), "indentation must use tabs")
		return
	}
	l.emit(token.Token{Type: token.INDENT, Literal: strconv.Itoa(depth), Depth: depth, Pos: pos(0)})

	col := depth
	if rest[0] == '-' && (len(rest) == 1 || rest[1] == ' ') {
		l.emit(token.Token{Type: token.ITEM, Literal: "-", Depth: depth, Pos: pos(col)})
		col++
	} else {
		key, quoted, n, msg := scanKey(rest)
		if msg != "" {
			l.illegal(pos(col), msg)
			return
		}
		l.emit(token.Token{Type: token.KEY, Literal: key, Quoted: quoted, Depth: depth, Pos: pos(col)})
		col += n
	}

	// Payload
	for col < len(text) && text[col] == ' ' {
		col++
	}
	if col < len(text) {
		payload := text[col:]
		switch payload[0] {
		case '"':
			val, n, ok := scanQuoted(payload)
			if !ok {
				l.illegal(pos(col), "unterminated quoted string")
				return
			}
			if strings.TrimSpace(payload[n:]) != "" {
				l.illegal(pos(col+n), "unexpected text after quoted value")
				return
			}
			l.emit(token.Token{Type: token.VALUE, Literal: val, Quoted: true, Pos: pos(col)})
		case '!':
			tag := strings.TrimRight(payload[1:], " \t")
			if !validTag(tag) {
				l.illegal(pos(col), "invalid type tag "+strconv.Quote(tag))
				return
			}
			l.emit(token.Token{Type: token.TAG, Literal: tag, Pos: pos(col)})
		default:
			l.emit(token.Token{Type: token.VALUE, Literal: strings.TrimRight(payload, " \t"), Pos: pos(col)})
		}
	}
	l.emit(token.Token{Type: token.NEWLINE, Pos: pos(len(text))})
}

func (l *Lexer) emit(tok token.Token) {
	l.queue = append(l.queue, tok)
}

func (l *Lexer) illegal(pos token.Position, msg string) {
	l.queue = append(l.queue[:0], token.Token{Type: token.ILLEGAL, Literal: msg, Pos: pos})
}

// scanKey reads a key and its ':' separator from the start of s.
// It returns the key, whether it was quoted, the number of bytes consumed
// and an error message.
func scanKey(s string) (string, bool, int, string) {
	if s[0] == '"' {
		key, n, ok := scanQuoted(s)
		if !ok {
			return "", true, 0, "unterminated quoted key"
		}
		if n >= len(s) || s[n] != ':' || (n+1 < len(s) && s[n+1] != ' ') {
			return "", true, 0, "expected ':' after key"
		}
		return key, true, n + 1, ""
	}

	for i := 0; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i+1 < len(s) && s[i+1] != ' ' {
			continue
		}
		key := strings.TrimRight(s[:i], " ")
		if key == "" {
			return "", false, 0, "empty key"
		}
		return key, false, i + 1, ""
	}
	return "", false, 0, "expected ':' after key"
}

// scanQuoted reads a double-quoted Go string literal from the start of s.
func scanQuoted(s string) (string, int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			val, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", 0, false
			}
			return val, i + 1, true
		}
	}
	return "", 0, false
}

func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if !isTagChar(c) {
			return false
		}
	}
	return true
}

func isTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
}
