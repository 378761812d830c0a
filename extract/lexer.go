package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for Lua declaration headers and comments
// ---------------------------------------------------------------------------

// Lexer tokenizes Lua source text. It recognizes comments, literals,
// identifiers, the keywords and punctuation needed to locate
// declarations, and passes everything else through as opaque tokens.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size

		if r == '\n' {
			l.line++
			l.col = 0
		} else {
			l.col++
		}
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '-' && l.peekChar() == '-':
		return l.readComment(pos)

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}

	case l.ch == '.':
		return l.readDots(pos)

	case l.ch == ':':
		l.readChar()
		if l.ch == ':' {
			// goto label ::name:: — opaque
			l.readChar()
			return Token{Type: TokenOpaque, Literal: "::", Pos: pos}
		}
		return Token{Type: TokenColon, Literal: ":", Pos: pos}

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenOpaque, Literal: "==", Pos: pos}
		}
		return Token{Type: TokenAssign, Literal: "=", Pos: pos}

	case l.ch == '\'' || l.ch == '"':
		return l.readString(pos)

	case l.ch == '[' && (l.peekChar() == '[' || l.peekChar() == '='):
		return l.readLongString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isLetter(l.ch) || l.ch == '_':
		return l.readIdentifier(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenOpaque, Literal: string(ch), Pos: pos}
	}
}

// skipWhitespace skips whitespace. Comments are not skipped: they are
// tokens, because doc blocks are built from them.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readComment reads a line or long comment starting at "--".
// "---" introduces a doc comment; "--[[" (with optional = levels) a long
// comment, skipped as plain; anything else is a plain line comment.
func (l *Lexer) readComment(pos Position) Token {
	l.readChar() // first -
	l.readChar() // second -

	// Long comment: --[[ ... ]] with optional = padding.
	if l.ch == '[' {
		if level, ok := l.peekLongBracket(); ok {
			body, terminated := l.readLongBracket(level)
			if !terminated {
				return Token{Type: TokenError, Literal: "unterminated long comment", Pos: pos}
			}
			return Token{Type: TokenComment, Literal: body, Pos: pos}
		}
	}

	isDoc := l.ch == '-'
	if isDoc {
		l.readChar() // third -
	}

	start := l.pos
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	text := l.input[start:l.pos]

	if isDoc {
		// A single leading space is part of the prefix, not the text.
		text = strings.TrimPrefix(text, " ")
		return Token{Type: TokenDocComment, Literal: text, Pos: pos}
	}
	return Token{Type: TokenComment, Literal: strings.TrimPrefix(text, " "), Pos: pos}
}

// peekLongBracket checks for a long-bracket opener at the current '[',
// returning its level (number of '=' signs) without consuming on failure.
func (l *Lexer) peekLongBracket() (int, bool) {
	if l.ch != '[' {
		return 0, false
	}
	level := 0
	for {
		r := l.peekAt(level + 1)
		if r == '=' {
			level++
			continue
		}
		if r == '[' {
			return level, true
		}
		return 0, false
	}
}

// peekAt returns the rune n bytes-of-runes ahead of the current char.
// Only used for ASCII bracket scanning.
func (l *Lexer) peekAt(n int) rune {
	idx := l.pos + n
	if idx >= len(l.input) {
		return 0
	}
	return rune(l.input[idx])
}

// readLongBracket consumes "[=*[" at the current position and reads until
// the matching "]=*]". Returns the body and whether it was terminated.
func (l *Lexer) readLongBracket(level int) (string, bool) {
	// consume [ =* [
	for i := 0; i < level+2; i++ {
		l.readChar()
	}
	// A newline immediately after the opener is not part of the body.
	if l.ch == '\n' {
		l.readChar()
	}

	closer := "]" + strings.Repeat("=", level) + "]"
	start := l.pos
	for l.ch != 0 {
		if l.ch == ']' && strings.HasPrefix(l.input[l.pos:], closer) {
			body := l.input[start:l.pos]
			for i := 0; i < len(closer); i++ {
				l.readChar()
			}
			return body, true
		}
		l.readChar()
	}
	return l.input[start:l.pos], false
}

// readDots reads ".", ".." or "...".
func (l *Lexer) readDots(pos Position) Token {
	l.readChar()
	if l.ch != '.' {
		return Token{Type: TokenDot, Literal: ".", Pos: pos}
	}
	l.readChar()
	if l.ch != '.' {
		return Token{Type: TokenOpaque, Literal: "..", Pos: pos}
	}
	l.readChar()
	return Token{Type: TokenVararg, Literal: "...", Pos: pos}
}

// readString reads a short string literal delimited by ' or ".
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	l.readChar() // consume opening quote

	var sb strings.Builder
	for l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			sb.WriteRune(l.ch)
			l.readChar()
			if l.ch != 0 {
				sb.WriteRune(l.ch)
				l.readChar()
			}
			continue
		}
		if l.ch == quote {
			l.readChar() // consume closing quote
			return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
}

// readLongString reads a long string literal [[...]] / [=[...]=].
func (l *Lexer) readLongString(pos Position) Token {
	level, ok := l.peekLongBracket()
	if !ok {
		ch := l.ch
		l.readChar()
		return Token{Type: TokenOpaque, Literal: string(ch), Pos: pos}
	}
	body, terminated := l.readLongBracket(level)
	if !terminated {
		return Token{Type: TokenError, Literal: "unterminated long string", Pos: pos}
	}
	return Token{Type: TokenString, Literal: body, Pos: pos}
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos

	// Hex: 0xFF, 0X1p4
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '.' || l.ch == 'p' || l.ch == 'P' {
			l.readChar()
		}
		return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

// readIdentifier reads an identifier or reserved word.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	literal := l.input[start:l.pos]

	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}
	return Token{Type: TokenIdent, Literal: literal, Pos: pos}
}

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Tokenize returns all tokens from the input, ending with EOF or the
// first lexical error.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
