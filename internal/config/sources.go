package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SourceTerm is one weighted light source of a category.
type SourceTerm struct {
	Coefficient float64
	Name        string
}

// Sources is a linear combination of named light sources, e.g.
// "dark + 0.5*background".
type Sources []SourceTerm

// Names returns the source names in expression order.
func (s Sources) Names() []string {
	out := make([]string, len(s))
	for i, term := range s {
		out[i] = term.Name
	}
	return out
}

func (s Sources) String() string {
	parts := make([]string, len(s))
	for i, term := range s {
		if term.Coefficient == 1 {
			parts[i] = term.Name
			continue
		}
		parts[i] = strconv.FormatFloat(term.Coefficient, 'g', -1, 64) + "*" + term.Name
	}
	return strings.Join(parts, " + ")
}

// ParseSources parses the grammar
//
//	expr := term { "+" term }
//	term := [number ["*"]] ident
//
// where ident is ASCII letters, digits and underscores not starting with a
// digit. No other operators are accepted.
func ParseSources(text string) (Sources, error) {
	p := &sourceParser{lex: sourceLexer{src: text}}
	p.advance()
	out, err := p.expr()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedSources, text, err)
	}
	return out, nil
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokStar
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type sourceLexer struct {
	src string
	pos int
}

func (l *sourceLexer) next() token {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '+':
		l.pos++
		return token{kind: tokPlus, text: "+", pos: start}
	case c == '*':
		l.pos++
		return token{kind: tokStar, text: "*", pos: start}
	case isDigit(c) || c == '.':
		l.scanNumber()
		return token{kind: tokNumber, text: l.src[start:l.pos], pos: start}
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
	default:
		l.pos++
		return token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func (l *sourceLexer) scanNumber() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	// Exponent only when followed by digits, so "2e" lexes as 2 then ident "e".
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			for j < len(l.src) && isDigit(l.src[j]) {
				j++
			}
			l.pos = j
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

type sourceParser struct {
	lex sourceLexer
	tok token
}

func (p *sourceParser) advance() { p.tok = p.lex.next() }

func (p *sourceParser) expr() (Sources, error) {
	var out Sources
	seen := map[string]bool{}
	for {
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("source %q appears more than once", term.Name)
		}
		seen[term.Name] = true
		out = append(out, term)

		switch p.tok.kind {
		case tokEOF:
			return out, nil
		case tokPlus:
			p.advance()
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d, expected '+'", p.tok.text, p.tok.pos)
		}
	}
}

func (p *sourceParser) term() (SourceTerm, error) {
	coef := 1.0
	if p.tok.kind == tokNumber {
		v, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return SourceTerm{}, fmt.Errorf("invalid coefficient %q at offset %d", p.tok.text, p.tok.pos)
		}
		coef = v
		p.advance()
		if p.tok.kind == tokStar {
			p.advance()
		}
	}
	if p.tok.kind != tokIdent {
		if p.tok.kind == tokEOF {
			return SourceTerm{}, fmt.Errorf("expected source name at end of expression")
		}
		return SourceTerm{}, fmt.Errorf("unexpected %q at offset %d, expected source name", p.tok.text, p.tok.pos)
	}
	term := SourceTerm{Coefficient: coef, Name: p.tok.text}
	p.advance()
	return term, nil
}
