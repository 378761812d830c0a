package extract

import "fmt"

// ---------------------------------------------------------------------------
// Error taxonomy
//
// Only lexical errors and an unmatched `end` for a function header are
// fatal for a file. Everything else degrades: doc comments in the wild
// are informal, and the extractor's value is best-effort documentation,
// not strict validation.
// ---------------------------------------------------------------------------

// LexError is a fatal lexical error (unterminated string or long
// comment). It aborts extraction of the file.
type LexError struct {
	File string
	Pos  Position
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// StructureError is a fatal structural error: a function header whose
// matching `end` was never found.
type StructureError struct {
	File string
	Pos  Position
	Msg  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// WarningKind classifies recovered errors.
type WarningKind int

const (
	// WarnTagSyntax: malformed tag header; the tag was skipped, the rest
	// of the doc block kept.
	WarnTagSyntax WarningKind = iota
	// WarnTypeParse: unparsable type expression; fell back to `any`.
	WarnTypeParse
	// WarnDeclMismatch: @param tags and formal parameters disagree; the
	// parameter list was padded or extended.
	WarnDeclMismatch
)

var warningKindNames = map[WarningKind]string{
	WarnTagSyntax:    "tag-syntax",
	WarnTypeParse:    "type-parse",
	WarnDeclMismatch: "decl-mismatch",
}

func (k WarningKind) String() string {
	if name, ok := warningKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("warning(%d)", k)
}

// Warning is a recovered error. Warnings never block the rest of the
// file from being processed.
type Warning struct {
	Kind WarningKind
	Pos  Position
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", w.Pos.Line, w.Pos.Column, w.Kind, w.Msg)
}
