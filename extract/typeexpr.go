package extract

import (
	"fmt"
	"strings"

	"github.com/chazu/luadoc/doc"
)

// ---------------------------------------------------------------------------
// Type-expression parser
//
// Recursive descent over the sublanguage used inside tags:
//
//	type        := element "?"? ("|" element "?"?)*
//	element     := funcType | tableType | baseType
//	baseType    := identifier ("." identifier)* "[]"?
//	tableType   := "table" "<" type "," type ">"
//	funcType    := "fun" "(" paramList? ")" (":" type ("," type)*)?
//	paramList   := ident ":" type ("," ident ":" type)*
//
// Parse failure never aborts a doc block: the caller falls back to `any`
// and treats the rest of the line as free-text description.
// ---------------------------------------------------------------------------

// typeParser is a one-byte-lookahead parser over a single tag line.
type typeParser struct {
	input string
	pos   int
	depth int // inside fun(...) or table<...>
}

// ParseTypeString parses a leading type expression out of text. It
// returns the type, whether a trailing "?" optional marker was present,
// and the remaining free-text description. On failure the returned type
// is Primitive("any"), the whole text becomes the description, and the
// error describes what went wrong.
func ParseTypeString(text string) (*doc.TypeExpr, bool, string, error) {
	p := &typeParser{input: text}
	p.skipSpaces()
	if p.eof() {
		return doc.Primitive("any"), false, "", fmt.Errorf("empty type expression")
	}

	expr, opt, err := p.parseType()
	if err != nil {
		return doc.Primitive("any"), false, strings.TrimSpace(text), err
	}

	desc := strings.TrimSpace(p.input[p.pos:])
	return expr, opt, desc, nil
}

// ParseTypeExpr parses text as a complete type expression, ignoring any
// trailing description text.
func ParseTypeExpr(text string) (*doc.TypeExpr, error) {
	expr, _, _, err := ParseTypeString(text)
	return expr, err
}

func (p *typeParser) eof() bool { return p.pos >= len(p.input) }

func (p *typeParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) skipSpaces() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// accept consumes ch if it is next (after spaces) and reports success.
func (p *typeParser) accept(ch byte) bool {
	p.skipSpaces()
	if p.peek() == ch {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(ch byte) error {
	if !p.accept(ch) {
		return fmt.Errorf("expected %q at offset %d", string(ch), p.pos)
	}
	return nil
}

// parseType parses a full type: element, optional "?", union tail.
func (p *typeParser) parseType() (*doc.TypeExpr, bool, error) {
	first, err := p.parseElement()
	if err != nil {
		return nil, false, err
	}
	opt := p.accept('?')

	members := []*doc.TypeExpr{first}
	for p.accept('|') {
		next, err := p.parseElement()
		if err != nil {
			return nil, false, err
		}
		if p.accept('?') {
			opt = true
		}
		members = append(members, next)
	}

	if len(members) == 1 {
		return first, opt, nil
	}
	return doc.Union(members), opt, nil
}

// parseElement parses a single non-union type.
func (p *typeParser) parseElement() (*doc.TypeExpr, error) {
	p.skipSpaces()

	ident := p.readIdent()
	if ident == "" {
		return nil, fmt.Errorf("expected type name at offset %d", p.pos)
	}

	switch ident {
	case "fun":
		if p.nextIs('(') {
			return p.parseFunc()
		}
	case "table":
		if p.nextIs('<') {
			return p.parseTable()
		}
	}

	// Array suffix stays part of the name: pl.List[] is a custom name.
	if strings.HasPrefix(p.input[p.pos:], "[]") {
		p.pos += 2
		ident += "[]"
	}

	if doc.IsPrimitiveID(normalizeTypeID(ident)) {
		return doc.Primitive(normalizeTypeID(ident)), nil
	}
	return doc.Custom(ident), nil
}

// normalizeTypeID folds the ldoc shorthand spellings onto the canonical
// primitive ids.
func normalizeTypeID(id string) string {
	switch id {
	case "bool":
		return "boolean"
	case "int", "float":
		return "number"
	case "func", "fun":
		return "function"
	case "tab":
		return "table"
	}
	return id
}

// nextIs reports whether ch is the next non-space byte, without
// consuming anything.
func (p *typeParser) nextIs(ch byte) bool {
	i := p.pos
	for i < len(p.input) && (p.input[i] == ' ' || p.input[i] == '\t') {
		i++
	}
	return i < len(p.input) && p.input[i] == ch
}

// readIdent reads a possibly dotted identifier.
func (p *typeParser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.input[p.pos]
		if isIdentByte(c) || (c == '.' && p.pos > start && p.pos+1 < len(p.input) && isIdentByte(p.input[p.pos+1])) {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseTable parses "<" type "," type ">" after the table keyword.
func (p *typeParser) parseTable() (*doc.TypeExpr, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	p.depth++
	defer func() { p.depth-- }()

	key, _, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	value, _, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return doc.Table(key, value), nil
}

// parseFunc parses "(" paramList? ")" (":" type ("," type)*)? after the
// fun keyword. A comma-separated return list is only recognized at the
// top level: nested, the comma belongs to the enclosing expression.
func (p *typeParser) parseFunc() (*doc.TypeExpr, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var args []doc.TypeArg
	p.depth++
	if !p.nextIs(')') {
		for {
			arg, err := p.parseFuncArg()
			if err != nil {
				p.depth--
				return nil, err
			}
			args = append(args, arg)
			if !p.accept(',') {
				break
			}
		}
	}
	p.depth--
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	var results []*doc.TypeExpr
	if p.accept(':') {
		for {
			ret, _, err := p.parseType()
			if err != nil {
				return nil, err
			}
			results = append(results, ret)
			if p.depth > 0 || !p.accept(',') {
				break
			}
		}
	}

	return doc.Callable(args, results), nil
}

// parseFuncArg parses "name: type", a bare "...", or leniently a bare
// type with no name.
func (p *typeParser) parseFuncArg() (doc.TypeArg, error) {
	p.skipSpaces()

	if strings.HasPrefix(p.input[p.pos:], "...") {
		p.pos += 3
		varargType := doc.Primitive("any")
		if p.accept(':') {
			t, _, err := p.parseType()
			if err != nil {
				return doc.TypeArg{}, err
			}
			varargType = t
		}
		return doc.TypeArg{Name: "...", Type: varargType}, nil
	}

	mark := p.pos
	ident := p.readIdent()
	if ident == "" {
		return doc.TypeArg{}, fmt.Errorf("expected argument at offset %d", p.pos)
	}

	if p.accept(':') {
		t, _, err := p.parseType()
		if err != nil {
			return doc.TypeArg{}, err
		}
		return doc.TypeArg{Name: ident, Type: t}, nil
	}

	// No colon: the identifier was itself a type.
	p.pos = mark
	t, _, err := p.parseType()
	if err != nil {
		return doc.TypeArg{}, err
	}
	return doc.TypeArg{Type: t}, nil
}
