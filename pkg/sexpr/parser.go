package sexpr

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/amebel/hyperon-experimental/pkg/atom"
)

// ErrEmpty is returned by ParseOne for text without atoms.
var ErrEmpty = errors.New("no atom in source")

// Parser reads atoms from S-expression text.
//
// The syntax is: ( and ) delimit expressions, "..." is a string with Go
// escape sequences, $name is a variable, ; starts a comment running to the
// end of the line, and any other word is looked up in the tokenizer and
// becomes a symbol when no entry matches.
type Parser struct {
	tokenizer *Tokenizer
	file      string
	maxDepth  int // Maximum expression nesting (default: 1000)
}

// NewParser creates a parser using tok to resolve words. A nil tokenizer
// turns every word into a symbol.
func NewParser(tok *Tokenizer) *Parser {
	if tok == nil {
		tok = NewTokenizer()
	}
	return &Parser{
		tokenizer: tok,
		maxDepth:  1000,
	}
}

// WithFile sets the source name reported in syntax errors.
func (p *Parser) WithFile(name string) *Parser {
	p.file = name
	return p
}

// WithMaxDepth sets the maximum expression nesting. Zero means unlimited.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Tokenizer returns the tokenizer of the parser.
func (p *Parser) Tokenizer() *Tokenizer {
	return p.tokenizer
}

// ParseAll parses every atom of src.
func (p *Parser) ParseAll(src string) ([]atom.Atom, error) {
	r := p.Reader(src)
	var out []atom.Atom
	for {
		a, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
}

// ParseOne parses src, which must contain exactly one atom.
func (p *Parser) ParseOne(src string) (atom.Atom, error) {
	r := p.Reader(src)
	a, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, r.errorAt(r.location(), "unexpected text after the atom")
	}
	return a, nil
}

// Reader returns a reader producing the atoms of src one at a time.
func (p *Parser) Reader(src string) *Reader {
	return &Reader{p: p, src: src, line: 1, col: 1}
}

// Reader is an incremental parser over one source text.
type Reader struct {
	p    *Parser
	src  string
	pos  int
	line int
	col  int
}

// Next returns the next top-level atom, or io.EOF when the text is consumed.
func (r *Reader) Next() (atom.Atom, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return nil, io.EOF
	}
	return r.parseAtom(0)
}

// Location returns the current position in the text.
func (r *Reader) Location() Location {
	return r.location()
}

func (r *Reader) parseAtom(depth int) (atom.Atom, error) {
	start := r.location()
	switch r.src[r.pos] {
	case '(':
		return r.parseExpr(depth + 1)
	case ')':
		r.advance(1)
		return nil, r.errorAt(start, "unexpected ')'")
	case '"':
		return r.parseString()
	}

	word := r.readWord()
	if word[0] == '$' {
		if len(word) == 1 {
			return nil, r.errorAt(start, "variable name expected after '$'")
		}
		return atom.Var(word[1:]), nil
	}
	if fn, ok := r.p.tokenizer.Lookup(word); ok {
		a, err := fn(word)
		if err != nil {
			return nil, &SyntaxError{Location: start, Message: fmt.Sprintf("invalid token %q", word), Cause: err}
		}
		return a, nil
	}
	return atom.Sym(word), nil
}

func (r *Reader) parseExpr(depth int) (atom.Atom, error) {
	start := r.location()
	if r.p.maxDepth > 0 && depth > r.p.maxDepth {
		return nil, r.errorAt(start, fmt.Sprintf("expression nested deeper than %d", r.p.maxDepth))
	}
	r.advance(1)

	var children []atom.Atom
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return nil, r.errorAt(start, "unclosed '('")
		}
		if r.src[r.pos] == ')' {
			r.advance(1)
			return atom.Expr(children...), nil
		}
		child, err := r.parseAtom(depth)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

func (r *Reader) parseString() (atom.Atom, error) {
	start := r.location()
	end := r.pos + 1
	for end < len(r.src) {
		switch r.src[end] {
		case '\\':
			end += 2
			continue
		case '"':
			raw := r.src[r.pos : end+1]
			s, err := strconv.Unquote(raw)
			if err != nil {
				return nil, &SyntaxError{Location: start, Message: "invalid string literal", Cause: err}
			}
			r.advance(len(raw))
			return atom.Text(s), nil
		}
		end++
	}
	return nil, r.errorAt(start, "unterminated string")
}

func (r *Reader) readWord() string {
	start := r.pos
	for r.pos < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.pos:])
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' {
			break
		}
		r.advance(size)
	}
	return r.src[start:r.pos]
}

func (r *Reader) skipSpace() {
	for r.pos < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.pos:])
		switch {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.advance(1)
			}
		case unicode.IsSpace(c):
			r.advance(size)
		default:
			return
		}
	}
}

// advance moves n bytes forward, tracking lines and columns.
func (r *Reader) advance(n int) {
	end := r.pos + n
	for r.pos < end && r.pos < len(r.src) {
		c, size := utf8.DecodeRuneInString(r.src[r.pos:])
		r.pos += size
		if c == '\n' {
			r.line++
			r.col = 1
		} else {
			r.col++
		}
	}
}

func (r *Reader) location() Location {
	return Location{File: r.p.file, Line: r.line, Column: r.col}
}

func (r *Reader) errorAt(loc Location, msg string) *SyntaxError {
	return &SyntaxError{Location: loc, Message: msg}
}
