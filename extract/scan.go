package extract

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Declaration scanner: walks the token stream recognizing the statement
// shapes that can carry documentation. Function bodies are skipped to
// their matching `end`; other blocks (if/do/while/for) are scanned
// through so nested declarations are still seen.
// ---------------------------------------------------------------------------

// declKind classifies a recognized declaration.
type declKind int

const (
	declAssign        declKind = iota // Name = expr, Owner.field = expr
	declLocalAssign                   // local Name = expr
	declFunction                      // function [Owner[.:]]name(params)
	declLocalFunction                 // local function name(params)
)

// valueKind classifies the right-hand side of an assignment.
type valueKind int

const (
	valNone    valueKind = iota // no value (bare local)
	valTable                    // {...} table constructor
	valFunction                 // function(...) ... end literal
	valCall                     // f(...), obj.f(...), require "x"
	valName                     // plain (possibly dotted) reference
	valLiteral                  // string/number/boolean/nil literal
)

// declaration is one recognized statement, tagged with the index of its
// first token so the model builder can pair it with the doc block bound
// to the same index.
type declaration struct {
	Kind     declKind
	TokIndex int
	Pos      Position

	Owner    string   // dotted owner for functions and field assigns
	Name     string   // last name segment
	IsMethod bool     // declared with ':' — receives implicit self
	Params   []string // formal parameters, including "..."

	Value    valueKind
	ValueRef string // callee or referenced name for valCall/valName
	ValueLit string // literal text for valLiteral
}

// Target returns the full dotted assignment target.
func (d *declaration) Target() string {
	if d.Owner == "" {
		return d.Name
	}
	sep := "."
	if d.IsMethod {
		sep = ":"
	}
	return d.Owner + sep + d.Name
}

// declScanner walks a token slice.
type declScanner struct {
	file   string
	tokens []Token
	pos    int
}

// scanDeclarations extracts all declarations from the token stream.
// The only fatal outcome is a function header without a matching end.
func scanDeclarations(file string, tokens []Token) ([]*declaration, error) {
	s := &declScanner{file: file, tokens: tokens}
	var decls []*declaration

	for !s.eof() {
		tok := s.cur()
		switch tok.Type {
		case TokenEOF, TokenError:
			return decls, nil

		case TokenLocal:
			d, err := s.scanLocal()
			if err != nil {
				return nil, err
			}
			if d != nil {
				decls = append(decls, d)
			}

		case TokenFunction:
			d, err := s.scanFunction(s.pos)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)

		case TokenIdent:
			d, err := s.scanAssignOrSkip()
			if err != nil {
				return nil, err
			}
			if d != nil {
				decls = append(decls, d)
			}

		default:
			// comments, block keywords, opaque body tokens
			s.pos++
		}
	}
	return decls, nil
}

func (s *declScanner) eof() bool {
	return s.pos >= len(s.tokens) || s.tokens[s.pos].Type == TokenEOF || s.tokens[s.pos].Type == TokenError
}

func (s *declScanner) cur() Token { return s.tokens[s.pos] }

func (s *declScanner) peekType() TokenType {
	if s.pos+1 >= len(s.tokens) {
		return TokenEOF
	}
	return s.tokens[s.pos+1].Type
}

// scanLocal handles `local function f(...)`, `local Name = expr` and
// bare `local Name`.
func (s *declScanner) scanLocal() (*declaration, error) {
	start := s.pos
	s.pos++ // consume local

	if s.eof() {
		return nil, nil
	}

	if s.cur().Type == TokenFunction {
		d, err := s.scanFunction(start)
		if err != nil {
			return nil, err
		}
		d.Kind = declLocalFunction
		return d, nil
	}

	if s.cur().Type != TokenIdent {
		return nil, nil
	}
	name := s.cur().Literal
	s.pos++

	// local a, b = ... multi-target declarations carry no docs
	if !s.eof() && s.cur().Type == TokenComma {
		return nil, nil
	}

	d := &declaration{
		Kind:     declLocalAssign,
		TokIndex: start,
		Pos:      s.tokens[start].Pos,
		Name:     name,
	}
	if !s.eof() && s.cur().Type == TokenAssign {
		s.pos++
		if err := s.scanValue(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// scanFunction handles `function Owner.name(...)`, `function Owner:name(...)`
// and `function name(...)`, then skips the body. start is the index of
// the statement's first token (`local` or `function`).
func (s *declScanner) scanFunction(start int) (*declaration, error) {
	headerPos := s.cur().Pos
	s.pos++ // consume function

	var segments []string
	isMethod := false

	for !s.eof() && s.cur().Type == TokenIdent {
		segments = append(segments, s.cur().Literal)
		s.pos++
		if s.eof() {
			break
		}
		if s.cur().Type == TokenDot {
			s.pos++
			continue
		}
		if s.cur().Type == TokenColon {
			isMethod = true
			s.pos++
			if !s.eof() && s.cur().Type == TokenIdent {
				segments = append(segments, s.cur().Literal)
				s.pos++
			}
		}
		break
	}

	d := &declaration{
		Kind:     declFunction,
		TokIndex: start,
		Pos:      s.tokens[start].Pos,
		IsMethod: isMethod,
		Value:    valFunction,
	}
	if len(segments) > 0 {
		d.Name = segments[len(segments)-1]
		d.Owner = strings.Join(segments[:len(segments)-1], ".")
	}

	params, err := s.scanParams()
	if err != nil {
		return nil, err
	}
	d.Params = params

	if err := s.skipBody(headerPos); err != nil {
		return nil, err
	}
	return d, nil
}

// scanParams reads a `(a, b, ...)` formal parameter list.
func (s *declScanner) scanParams() ([]string, error) {
	params := []string{}
	if s.eof() || s.cur().Type != TokenLParen {
		return params, nil
	}
	s.pos++ // consume (

	for !s.eof() {
		switch s.cur().Type {
		case TokenRParen:
			s.pos++
			return params, nil
		case TokenIdent:
			params = append(params, s.cur().Literal)
			s.pos++
		case TokenVararg:
			params = append(params, "...")
			s.pos++
		default:
			s.pos++
		}
	}
	return params, nil
}

// skipBody advances past a function body to its matching end. Block
// openers that close with `end` (function, if, do) increase the depth;
// while/for are not counted because their `do` is. repeat/until pairs
// are tracked separately.
func (s *declScanner) skipBody(headerPos Position) error {
	depth := 1
	repeats := 0

	for !s.eof() {
		switch s.cur().Type {
		case TokenFunction, TokenIf, TokenDo:
			depth++
		case TokenRepeat:
			repeats++
		case TokenUntil:
			repeats--
		case TokenEnd:
			depth--
			if depth == 0 {
				s.pos++
				return nil
			}
		}
		s.pos++
	}
	return &StructureError{
		File: s.file,
		Pos:  headerPos,
		Msg:  "missing 'end' for function header",
	}
}

// scanAssignOrSkip handles a statement starting with an identifier:
// either a (possibly dotted) assignment or an expression to skip.
func (s *declScanner) scanAssignOrSkip() (*declaration, error) {
	start := s.pos

	var segments []string
	for !s.eof() && s.cur().Type == TokenIdent {
		segments = append(segments, s.cur().Literal)
		s.pos++
		if !s.eof() && s.cur().Type == TokenDot {
			s.pos++
			continue
		}
		break
	}

	if s.eof() || s.cur().Type != TokenAssign || len(segments) == 0 {
		return nil, nil // a call or other expression statement
	}
	s.pos++ // consume =

	d := &declaration{
		Kind:     declAssign,
		TokIndex: start,
		Pos:      s.tokens[start].Pos,
		Name:     segments[len(segments)-1],
		Owner:    strings.Join(segments[:len(segments)-1], "."),
	}
	if err := s.scanValue(d); err != nil {
		return nil, err
	}
	return d, nil
}

// scanValue classifies the right-hand side of an assignment and skips it.
func (s *declScanner) scanValue(d *declaration) error {
	if s.eof() {
		d.Value = valNone
		return nil
	}

	switch s.cur().Type {
	case TokenLBrace:
		d.Value = valTable
		return s.skipBraces()

	case TokenFunction:
		headerPos := s.cur().Pos
		s.pos++
		d.Value = valFunction
		params, err := s.scanParams()
		if err != nil {
			return err
		}
		d.Params = params
		return s.skipBody(headerPos)

	case TokenString, TokenNumber:
		d.Value = valLiteral
		d.ValueLit = s.cur().Literal
		s.pos++
		return nil

	case TokenIdent:
		var segments []string
		for !s.eof() && s.cur().Type == TokenIdent {
			segments = append(segments, s.cur().Literal)
			s.pos++
			if !s.eof() && s.cur().Type == TokenDot {
				s.pos++
				continue
			}
			break
		}
		ref := strings.Join(segments, ".")

		switch ref {
		case "true", "false", "nil":
			d.Value = valLiteral
			d.ValueLit = ref
			return nil
		}

		if !s.eof() && s.cur().Type == TokenLParen {
			d.Value = valCall
			d.ValueRef = ref
			return s.skipParens()
		}
		if !s.eof() && (s.cur().Type == TokenString || s.cur().Type == TokenLBrace) {
			// call sugar: require "x", setmetatable { ... }
			d.Value = valCall
			d.ValueRef = ref
			if s.cur().Type == TokenLBrace {
				return s.skipBraces()
			}
			s.pos++
			return nil
		}
		d.Value = valName
		d.ValueRef = ref
		return nil

	default:
		d.Value = valNone
		return nil
	}
}

// skipBraces advances past a balanced {...} region.
func (s *declScanner) skipBraces() error {
	return s.skipBalanced(TokenLBrace, TokenRBrace)
}

// skipParens advances past a balanced (...) region.
func (s *declScanner) skipParens() error {
	return s.skipBalanced(TokenLParen, TokenRParen)
}

func (s *declScanner) skipBalanced(open, close TokenType) error {
	if s.eof() || s.cur().Type != open {
		return nil
	}
	startPos := s.cur().Pos
	depth := 0
	for !s.eof() {
		switch s.cur().Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				s.pos++
				return nil
			}
		}
		s.pos++
	}
	return &StructureError{
		File: s.file,
		Pos:  startPos,
		Msg:  fmt.Sprintf("unbalanced %s", open),
	}
}
