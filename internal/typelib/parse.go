package typelib

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"typeconv/primitive"
)

var ErrSyntax = errors.New("invalid type expression")

// ParseExpr parses a type expression that mentions no type variables.
func ParseExpr(text string) (Expr, error) {
	return ParseExprIn(text, nil)
}

// ParseExprIn parses a type expression in the scope of a class whose type
// parameters are params. Identifiers naming one of params become VarExpr.
//
// Grammar:
//
//	expr     = "[]" expr | wildcard | name [ "[" expr { "," expr } "]" ]
//	wildcard = "?" [ ( "extends" | "super" ) expr ]
//	name     = qualified identifier, e.g. "T", "int32", "time.Time", "example.com/pkg.Type"
func ParseExprIn(text string, params []string) (Expr, error) {
	p := &parser{src: text, params: params}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}

	return e, nil
}

// MustParseExprIn is like ParseExprIn but panics on error. For fixtures and tests.
func MustParseExprIn(text string, params ...string) Expr {
	e, err := ParseExprIn(text, params)
	if err != nil {
		panic(err)
	}

	return e
}

type parser struct {
	src    string
	pos    int
	params []string
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}

	return false
}

func (p *parser) expr() (Expr, error) {
	p.skipSpace()

	switch {
	case p.consume("[]"):
		elem, err := p.expr()
		if err != nil {
			return nil, err
		}
		return Arr(elem), nil

	case p.consume("?"):
		return p.wildcard()
	}

	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, p.errorf("unexpected end of expression")
		}
		return nil, p.errorf("unexpected %q", p.src[p.pos:p.pos+1])
	}

	if !p.consume("[") {
		return p.leaf(name)
	}

	var args []Expr
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.consume("]") {
			break
		}
		if !p.consume(",") {
			return nil, p.errorf("expected ',' or ']'")
		}
	}

	if p.isParam(name) {
		return nil, p.errorf("type parameter %s cannot take arguments", name)
	}
	if k, ok := primitive.FromName(name); ok && k.IsPrimitive() {
		return nil, p.errorf("primitive %s cannot take arguments", name)
	}

	return Inst(ParseTypeID(name), args...), nil
}

func (p *parser) wildcard() (Expr, error) {
	save := p.pos
	word := p.ident()

	switch word {
	case "extends":
		upper, err := p.expr()
		if err != nil {
			return nil, err
		}
		return Extends(upper), nil
	case "super":
		lower, err := p.expr()
		if err != nil {
			return nil, err
		}
		return Super(lower), nil
	default:
		p.pos = save
		return Unbounded(), nil
	}
}

func (p *parser) leaf(name string) (Expr, error) {
	if p.isParam(name) {
		return Var(name), nil
	}

	if k, ok := primitive.FromName(name); ok && k.IsPrimitive() {
		return Prim(k), nil
	}

	return Ref(ParseTypeID(name)), nil
}

func (p *parser) isParam(name string) bool {
	for _, param := range p.params {
		if param == name {
			return true
		}
	}

	return false
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '.' && c != '/' && c != '-' {
			break
		}
		p.pos++
	}

	return p.src[start:p.pos]
}
