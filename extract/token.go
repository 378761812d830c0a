package extract

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Lua declaration lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Comments
	TokenComment    // -- plain comment line
	TokenDocComment // --- doc comment line (literal holds text after the dashes)

	// Literals
	TokenString // 'hello', "hello", [[hello]]
	TokenNumber // 42, 0xFF, 3.14, 1e10
	TokenIdent  // foo, Bar

	// Keywords relevant to declaration scanning
	TokenFunction
	TokenLocal
	TokenReturn
	TokenEnd
	TokenIf
	TokenDo
	TokenWhile
	TokenFor
	TokenRepeat
	TokenUntil
	TokenThen

	// Punctuation needed to detect declaration headers
	TokenDot      // .
	TokenColon    // :
	TokenLParen   // (
	TokenRParen   // )
	TokenAssign   // =
	TokenLBrace   // {
	TokenRBrace   // }
	TokenComma    // ,
	TokenVararg   // ...

	// Anything else is passed through opaquely: Lua bodies are not fully
	// parsed, only declaration headers matter.
	TokenOpaque
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenComment:    "COMMENT",
	TokenDocComment: "DOC",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
	TokenIdent:      "IDENTIFIER",
	TokenFunction:   "function",
	TokenLocal:      "local",
	TokenReturn:     "return",
	TokenEnd:        "end",
	TokenIf:         "if",
	TokenDo:         "do",
	TokenWhile:      "while",
	TokenFor:        "for",
	TokenRepeat:     "repeat",
	TokenUntil:      "until",
	TokenThen:       "then",
	TokenDot:        ".",
	TokenColon:      ":",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenAssign:     "=",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenComma:      ",",
	TokenVararg:     "...",
	TokenOpaque:     "OPAQUE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text (comment text for comment tokens)
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types. Keywords that never start
// or delimit a declaration still get their own type so the scanner can
// track block structure when skipping bodies.
var reservedWords = map[string]TokenType{
	"function": TokenFunction,
	"local":    TokenLocal,
	"return":   TokenReturn,
	"end":      TokenEnd,
	"if":       TokenIf,
	"do":       TokenDo,
	"while":    TokenWhile,
	"for":      TokenFor,
	"repeat":   TokenRepeat,
	"until":    TokenUntil,
	"then":     TokenThen,
}
