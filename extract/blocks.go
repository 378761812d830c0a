package extract

import "strings"

// ---------------------------------------------------------------------------
// Doc-block extractor: groups contiguous doc-comment lines and binds each
// run to the statement that immediately follows it
// ---------------------------------------------------------------------------

// DocLine is one doc-comment line with the comment prefix stripped.
type DocLine struct {
	Text string
	Pos  Position
}

// DocBlock is a contiguous run of doc-comment lines. StmtIndex is the
// index (into the token slice) of the first token of the statement the
// block binds to, or -1 when no statement directly follows — a block can
// still declare entities on its own via @module or @function.
type DocBlock struct {
	Lines     []DocLine
	StmtIndex int
}

// Pos returns the position of the block's first line.
func (b *DocBlock) Pos() Position {
	if len(b.Lines) == 0 {
		return Position{}
	}
	return b.Lines[0].Pos
}

// HasTag reports whether any line of the block carries the given tag.
func (b *DocBlock) HasTag(name string) bool {
	for _, line := range b.Lines {
		trimmed := strings.TrimSpace(line.Text)
		if strings.HasPrefix(trimmed, "@"+name) {
			rest := trimmed[len(name)+1:]
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				return true
			}
		}
	}
	return false
}

// CollectBlocks groups doc-comment tokens into blocks. A run breaks on a
// blank line (line-number gap), on plain code, or on a plain -- comment.
// The run binds to the next statement only when the statement starts on
// the line directly after the last doc line.
func CollectBlocks(tokens []Token) []*DocBlock {
	var blocks []*DocBlock
	var run []DocLine

	flush := func(stmtIndex int) {
		if len(run) == 0 {
			return
		}
		blocks = append(blocks, &DocBlock{Lines: run, StmtIndex: stmtIndex})
		run = nil
	}

	for i, tok := range tokens {
		switch tok.Type {
		case TokenDocComment:
			if len(run) > 0 && tok.Pos.Line != run[len(run)-1].Pos.Line+1 {
				// blank line between doc comments: separate blocks
				flush(-1)
			}
			run = append(run, DocLine{Text: tok.Literal, Pos: tok.Pos})

		case TokenComment:
			flush(-1)

		case TokenEOF, TokenError:
			flush(-1)

		default:
			if len(run) > 0 && tok.Pos.Line == run[len(run)-1].Pos.Line+1 {
				flush(i)
			} else {
				flush(-1)
			}
		}
	}
	flush(-1)

	return blocks
}

// BlockForToken returns the block bound to the statement starting at
// token index i, or nil.
func BlockForToken(blocks []*DocBlock, i int) *DocBlock {
	for _, b := range blocks {
		if b.StmtIndex == i {
			return b
		}
	}
	return nil
}
