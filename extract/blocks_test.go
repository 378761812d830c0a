package extract

import (
	"testing"
)

func TestCollectBlocksBindsToNextStatement(t *testing.T) {
	source := `--- Adds two numbers.
--- @param a number
--- @param b number
function add(a, b) end
`
	tokens := Tokenize(source)
	blocks := CollectBlocks(tokens)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	b := blocks[0]
	if len(b.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(b.Lines))
	}
	if b.StmtIndex < 0 {
		t.Fatal("block not bound to a statement")
	}
	if tokens[b.StmtIndex].Type != TokenFunction {
		t.Errorf("bound token = %v, want FUNCTION", tokens[b.StmtIndex].Type)
	}
}

func TestCollectBlocksBlankLineSeparates(t *testing.T) {
	source := `--- First block.

--- Second block.
local x = 1
`
	blocks := CollectBlocks(Tokenize(source))
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	if blocks[0].StmtIndex != -1 {
		t.Errorf("first block bound, want unbound")
	}
	if blocks[1].StmtIndex == -1 {
		t.Errorf("second block unbound, want bound")
	}
}

func TestCollectBlocksPlainCommentBreaksRun(t *testing.T) {
	source := `--- Doc line.
-- plain comment
function f() end
`
	blocks := CollectBlocks(Tokenize(source))
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].StmtIndex != -1 {
		t.Error("block bound across a plain comment, want unbound")
	}
}

func TestCollectBlocksGapToStatementUnbinds(t *testing.T) {
	source := `--- Floating doc.

function f() end
`
	blocks := CollectBlocks(Tokenize(source))
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].StmtIndex != -1 {
		t.Error("block bound across a blank line, want unbound")
	}
}

func TestCollectBlocksTrailingDocAtEOF(t *testing.T) {
	blocks := CollectBlocks(Tokenize("--- Last words."))
	if len(blocks) != 1 || blocks[0].StmtIndex != -1 {
		t.Fatalf("blocks = %v", blocks)
	}
}

func TestDocBlockHasTag(t *testing.T) {
	b := &DocBlock{Lines: []DocLine{
		{Text: "Summary line."},
		{Text: "@module foo"},
		{Text: "@classmod bar"},
	}}
	if !b.HasTag("module") {
		t.Error("HasTag(module) = false")
	}
	if !b.HasTag("classmod") {
		t.Error("HasTag(classmod) = false")
	}
	// "class" must not match the "classmod" line
	if b.HasTag("class") {
		t.Error("HasTag(class) matched @classmod")
	}
}

func TestBlockForToken(t *testing.T) {
	source := `--- Documented.
local a = 1
local b = 2
`
	tokens := Tokenize(source)
	blocks := CollectBlocks(tokens)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	idx := blocks[0].StmtIndex
	if got := BlockForToken(blocks, idx); got != blocks[0] {
		t.Error("BlockForToken missed the bound block")
	}
	if got := BlockForToken(blocks, idx+1); got != nil {
		t.Error("BlockForToken matched an unbound index")
	}
}
