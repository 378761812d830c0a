// Package server exposes the extractor to editors over the Language
// Server Protocol.
package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/luadoc/doc"
	"github.com/chazu/luadoc/extract"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "luadoc-lsp"

// LspServer bridges LSP editor features to the documentation extractor.
// Every open document is re-extracted on change; hover, symbols and
// completion answer from the latest extraction.
type LspServer struct {
	dialect extract.Dialect

	mu      sync.Mutex
	docs    map[string]string      // URI → full document content
	modules map[string]*doc.Module // URI → latest successful extraction

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server using the given tag dialect.
func NewLSP(dialect extract.Dialect) *LspServer {
	s := &LspServer{
		dialect: dialect,
		docs:    make(map[string]string),
		modules: make(map[string]*doc.Module),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "luadoc LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", ":"},
	}

	capabilities.HoverProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.extractAndPublish(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.extractAndPublish(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	delete(s.modules, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Diagnostics ---

// extractAndPublish re-extracts a document and publishes its fatal error
// or recovered warnings as diagnostics.
func (s *LspServer) extractAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	p := extract.New(extract.Options{Dialect: s.dialect})
	mod, err := p.Parse(string(uri), text)

	diagnostics := []protocol.Diagnostic{}
	if err != nil {
		diagnostics = append(diagnostics, diagnosticFromError(err))
	} else {
		s.mu.Lock()
		s.modules[string(uri)] = mod
		s.mu.Unlock()

		for _, w := range p.Warnings() {
			severity := protocol.DiagnosticSeverityWarning
			source := lspName
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    rangeAt(w.Pos),
				Severity: &severity,
				Source:   &source,
				Message:  w.Msg,
			})
		}
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func diagnosticFromError(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lspName

	var pos extract.Position
	switch e := err.(type) {
	case *extract.LexError:
		pos = e.Pos
	case *extract.StructureError:
		pos = e.Pos
	}

	return protocol.Diagnostic{
		Range:    rangeAt(pos),
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}
}

// rangeAt converts a 1-based source position to a zero-length LSP range.
func rangeAt(pos extract.Position) protocol.Range {
	line := uint32(0)
	col := uint32(0)
	if pos.Line > 0 {
		line = uint32(pos.Line - 1)
	}
	if pos.Column > 0 {
		col = uint32(pos.Column - 1)
	}
	p := protocol.Position{Line: line, Character: col}
	return protocol.Range{Start: p, End: p}
}

// --- Language features ---

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	mod := s.modules[string(uri)]
	s.mu.Unlock()

	if !ok || mod == nil {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	markdown := hoverText(mod, word)
	if markdown == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: markdown,
		},
	}, nil
}

// hoverText renders the documentation of the named symbol as markdown.
func hoverText(mod *doc.Module, word string) string {
	for _, c := range mod.Classes {
		if c.Name == word || c.NameInSource == word {
			return classHover(c)
		}
		for _, m := range c.Methods {
			if m.Name == word {
				return functionHover(c.Name, m)
			}
		}
	}
	for _, fn := range mod.Functions {
		if fn.Name == word {
			return functionHover("", fn)
		}
	}
	for _, field := range mod.Data {
		if field.Name == word {
			return fmt.Sprintf("**%s**: %s\n\n%s", field.Name, field.Type, field.Desc)
		}
	}
	return ""
}

func classHover(c *doc.Class) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", c.Name)
	if len(c.InheritsFrom) > 0 {
		fmt.Fprintf(&b, " : %s", strings.Join(c.InheritsFrom, ", "))
	}
	b.WriteString("\n\n")

	if c.Desc != "" {
		b.WriteString(c.Desc)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%d methods, %d fields", len(c.Methods), len(c.Fields))
	return b.String()
}

func functionHover(className string, fn *doc.Function) string {
	var b strings.Builder

	b.WriteString("```lua\nfunction ")
	if className != "" {
		sep := ":"
		if fn.IsStatic {
			sep = "."
		}
		b.WriteString(className)
		b.WriteString(sep)
	}
	b.WriteString(fn.Name)
	b.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
	}
	b.WriteString(")\n```\n")

	if fn.ShortDesc != "" {
		b.WriteString("\n")
		b.WriteString(fn.ShortDesc)
		b.WriteString("\n")
	}
	if fn.Desc != "" {
		b.WriteString("\n")
		b.WriteString(fn.Desc)
		b.WriteString("\n")
	}

	for _, p := range fn.Params {
		fmt.Fprintf(&b, "\n- `%s` %s", p.Name, p.Type)
		if p.Desc != "" {
			b.WriteString(" — ")
			b.WriteString(p.Desc)
		}
	}
	for _, r := range fn.Returns {
		fmt.Fprintf(&b, "\n- returns %s", r.Type)
		if r.Desc != "" {
			b.WriteString(" — ")
			b.WriteString(r.Desc)
		}
	}
	return b.String()
}

func (s *LspServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI

	s.mu.Lock()
	mod := s.modules[string(uri)]
	s.mu.Unlock()

	if mod == nil {
		return nil, nil
	}

	var symbols []protocol.SymbolInformation
	add := func(name, container string, kind protocol.SymbolKind) {
		symbols = append(symbols, protocol.SymbolInformation{
			Name: name,
			Kind: kind,
			Location: protocol.Location{
				URI:   uri,
				Range: rangeAt(extract.Position{}),
			},
			ContainerName: &container,
		})
	}

	for _, fn := range mod.Functions {
		add(fn.Name, mod.Name, protocol.SymbolKindFunction)
	}
	for _, field := range mod.Data {
		add(field.Name, mod.Name, protocol.SymbolKindVariable)
	}
	for _, c := range mod.Classes {
		add(c.Name, mod.Name, protocol.SymbolKindClass)
		for _, m := range c.Methods {
			add(m.Name, c.Name, protocol.SymbolKindMethod)
		}
		for _, field := range c.Fields {
			add(field.Name, c.Name, protocol.SymbolKindField)
		}
	}

	return symbols, nil
}

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI

	s.mu.Lock()
	text, ok := s.docs[string(uri)]
	mod := s.modules[string(uri)]
	s.mu.Unlock()

	if !ok || mod == nil {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}

	return complete(mod, prefix), nil
}

// complete returns the module's symbols matching a name prefix.
func complete(mod *doc.Module, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)

	add := func(name, detail string, kind protocol.CompletionItemKind) {
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			return
		}
		nameCopy := name
		detailCopy := detail
		kindCopy := kind
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kindCopy,
			Detail:     &detailCopy,
			InsertText: &nameCopy,
		})
	}

	for _, c := range mod.Classes {
		detail := "class"
		if len(c.InheritsFrom) > 0 {
			detail = fmt.Sprintf("class (: %s)", strings.Join(c.InheritsFrom, ", "))
		}
		add(c.NameInSource, detail, protocol.CompletionItemKindClass)
		for _, m := range c.Methods {
			add(m.Name, "method of "+c.Name, protocol.CompletionItemKindMethod)
		}
		for _, field := range c.Fields {
			add(field.Name, "field of "+c.Name, protocol.CompletionItemKindField)
		}
	}
	for _, fn := range mod.Functions {
		add(fn.Name, "function", protocol.CompletionItemKindFunction)
	}
	for _, field := range mod.Data {
		add(field.Name, "module data", protocol.CompletionItemKindVariable)
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Find start
	start := col
	for start > 0 {
		ch := rune(line[start-1])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			start--
		} else {
			break
		}
	}

	// Find end
	end := col
	for end < len(line) {
		ch := rune(line[end])
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
			end++
		} else {
			break
		}
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
