package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/chazu/luadoc/doc"
)

// ---------------------------------------------------------------------------
// Model builder: merges tag-parser output with scanned declarations into
// the final entity tree
// ---------------------------------------------------------------------------

// Options configures a parse pipeline. Options are read-only once the
// pipeline is constructed, so independent pipelines can run concurrently.
type Options struct {
	// Dialect selects the tag vocabulary. Defaults to emmylua.
	Dialect Dialect
}

// Parser is a single-file extraction pipeline:
// tokenize → collect blocks → parse tags → scan declarations → build.
// A Parser may be reused sequentially; warnings reset on each Parse.
type Parser struct {
	opts     Options
	warnings []Warning
}

// New creates a parser with the given options.
func New(opts Options) *Parser {
	if opts.Dialect == "" {
		opts.Dialect = DialectEmmyLua
	}
	return &Parser{opts: opts}
}

// Warnings returns the recovered errors from the last Parse.
func (p *Parser) Warnings() []Warning { return p.warnings }

// ParseFile extracts the documentation model from a Lua source file.
func (p *Parser) ParseFile(path string) (*doc.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(path, string(data))
}

// Parse extracts the documentation model from source. filename is used
// for diagnostics and the module's Filename field only.
func (p *Parser) Parse(filename, source string) (*doc.Module, error) {
	p.warnings = nil

	tokens := Tokenize(source)
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, &LexError{File: filename, Pos: last.Pos, Msg: last.Literal}
	}

	blocks := CollectBlocks(tokens)
	decls, err := scanDeclarations(filename, tokens)
	if err != nil {
		return nil, err
	}

	b := &builder{
		dialect: p.opts.Dialect,
		warn:    func(w Warning) { p.warnings = append(p.warnings, w) },
	}
	mod := b.build(filename, blocks, decls)
	return mod, nil
}

// builder accumulates entities during the single top-to-bottom pass.
type builder struct {
	dialect Dialect
	warn    func(Warning)

	module    *doc.Module
	classes   []*doc.Class
	classMap  map[string]*doc.Class // name in source and declared name
	functions []*doc.Function
	data      []*doc.Field

	// overload signatures collected for the function being built; build
	// is strictly sequential so a single field suffices.
	overloads []*doc.TypeExpr
}

// event interleaves declarations and unbound doc blocks in source order.
type event struct {
	offset int
	decl   *declaration
	block  *DocBlock
}

func (b *builder) build(filename string, blocks []*DocBlock, decls []*declaration) *doc.Module {
	b.classMap = make(map[string]*doc.Class)

	byStmt := make(map[int]*DocBlock, len(blocks))
	for _, blk := range blocks {
		if blk.StmtIndex >= 0 {
			byStmt[blk.StmtIndex] = blk
		}
	}

	var events []event
	for _, d := range decls {
		events = append(events, event{offset: d.Pos.Offset, decl: d, block: byStmt[d.TokIndex]})
	}
	for _, blk := range blocks {
		if blk.StmtIndex < 0 {
			events = append(events, event{offset: blk.Pos().Offset, block: blk})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].offset < events[j].offset })

	for _, ev := range events {
		var bd *blockDoc
		if ev.block != nil {
			bd = parseBlock(ev.block, b.dialect, b.warn)
		}
		if ev.decl != nil {
			b.declaration(ev.decl, bd)
		} else if bd != nil {
			b.unbound(ev.block, bd)
		}
	}

	return b.finish(filename)
}

// unbound handles a doc block with no statement directly below it. Such
// a block can still declare the module or a pure-doc function or class.
func (b *builder) unbound(blk *DocBlock, bd *blockDoc) {
	if bd.Module != nil {
		b.setModule(bd)
	}
	if bd.Class != nil {
		b.addClass(bd, nil)
	}
	if bd.Function != nil {
		owner, base := splitOwner(bd.Function.Name)
		fn := b.buildFunction(base, nil, bd)
		b.place(fn, owner, false)
	}
}

// declaration merges one scanned declaration with its doc block.
func (b *builder) declaration(d *declaration, bd *blockDoc) {
	if bd != nil && bd.Module != nil {
		b.setModule(bd)
		return
	}

	if bd != nil && bd.Class != nil {
		b.addClass(bd, d)
		return
	}

	switch {
	case d.Kind == declFunction || d.Kind == declLocalFunction || d.Value == valFunction:
		b.addFunctionDecl(d, bd)

	case bd != nil && bd.Function != nil:
		// pure-doc function over a foreign assignment:
		// Car.get_speed = utils.measure_speed
		owner, name := d.Owner, d.Name
		if name == "" {
			owner, name = splitOwner(bd.Function.Name)
		}
		fn := b.buildFunction(name, nil, bd)
		b.place(fn, owner, false)

	case bd != nil:
		b.addDataDecl(d, bd)
	}
}

// setModule records the module header; the first @module wins.
func (b *builder) setModule(bd *blockDoc) {
	if b.module != nil {
		b.warn(Warning{
			Kind: WarnTagSyntax,
			Pos:  bd.Module.Pos,
			Msg:  "only one @module is allowed per file",
		})
		return
	}
	m := doc.NewModule(bd.Module.Name)
	m.IsClassMod = bd.Module.ClassMod
	m.ShortDesc = bd.ShortDesc
	m.Desc = bd.LongDesc
	m.Usage = bd.Usage
	b.module = m
}

// addClass creates a class from a @class header, using the declaration
// below it (when present) for the name in source.
func (b *builder) addClass(bd *blockDoc, d *declaration) {
	hdr := bd.Class
	nameInSource := hdr.Name
	if d != nil && d.Owner == "" && d.Name != "" {
		nameInSource = d.Name
	}

	c := doc.NewClass(hdr.Name, nameInSource)
	c.InheritsFrom = hdr.Parents
	c.Desc = joinDesc(bd.ShortDesc, bd.LongDesc)
	c.Usage = bd.Usage
	c.Fields = append(c.Fields, bd.Fields...)

	b.classes = append(b.classes, c)
	b.classMap[nameInSource] = c
	b.classMap[hdr.Name] = c
}

// autoClass returns the class registered under name, creating one when a
// method definition references an owner that was never declared.
func (b *builder) autoClass(name string) *doc.Class {
	if c, ok := b.classMap[name]; ok {
		return c
	}
	c := doc.NewClass(name, name)
	b.classes = append(b.classes, c)
	b.classMap[name] = c
	return c
}

// addFunctionDecl builds a function or method entity from a function
// declaration, merging formal parameters with @param tags.
func (b *builder) addFunctionDecl(d *declaration, bd *blockDoc) {
	name := d.Name
	if name == "" && bd != nil && bd.Function != nil {
		name = bd.Function.Name
	}

	fn := b.buildFunction(name, d, bd)

	if d.Kind == declFunction && !d.IsMethod && d.Owner != "" {
		fn.IsStatic = true
	}
	if d.Kind == declAssign && d.Owner != "" {
		fn.IsStatic = true
	}

	b.place(fn, d.Owner, d.IsMethod)
}

// place appends a function (and its overload variants) to its owning
// class or to the module's free functions. A method on an unknown owner
// auto-creates the class; a dot-call on an unknown owner stays a free
// function.
func (b *builder) place(fn *doc.Function, owner string, isMethod bool) {
	overloads := b.materializeOverloads(fn)

	if owner != "" {
		if c, ok := b.classMap[owner]; ok {
			c.Methods = append(c.Methods, fn)
			c.Methods = append(c.Methods, overloads...)
			return
		}
		if isMethod {
			c := b.autoClass(owner)
			c.Methods = append(c.Methods, fn)
			c.Methods = append(c.Methods, overloads...)
			return
		}
	}
	b.functions = append(b.functions, fn)
	b.functions = append(b.functions, overloads...)
}

// buildFunction assembles a Function entity from a declaration (may be
// nil for pure-doc functions) and its block doc (may be nil for
// undocumented declarations).
func (b *builder) buildFunction(name string, d *declaration, bd *blockDoc) *doc.Function {
	fn := doc.NewFunction(name)

	var tagged []*doc.Param
	if bd != nil {
		fn.ShortDesc = bd.ShortDesc
		fn.Desc = bd.LongDesc
		fn.Usage = bd.Usage
		fn.IsVirtual = bd.IsVirtual
		fn.IsAbstract = bd.IsAbstract
		fn.IsDeprecated = bd.IsDeprecated
		fn.IsStatic = bd.IsStatic
		if bd.Visibility != "" {
			fn.Visibility = bd.Visibility
		} else {
			fn.Visibility = defaultVisibility(name)
		}
		tagged = bd.Params
		fn.Returns = append(fn.Returns, bd.Returns...)
		b.overloads = bd.Overloads
	} else {
		fn.Visibility = defaultVisibility(name)
		b.overloads = nil
	}

	var pos Position
	if d != nil {
		pos = d.Pos
		fn.Params = b.mergeParams(name, d.Params, tagged, pos)
	} else {
		fn.Params = append(fn.Params, tagged...)
	}

	for _, param := range fn.Params {
		if param.Type == nil {
			param.Type = doc.Primitive("any")
		}
	}
	for _, ret := range fn.Returns {
		if ret.Type == nil {
			ret.Type = doc.Primitive("any")
		}
	}
	return fn
}

// materializeOverloads turns the @overload signatures collected for the
// last built function into extra Method entries sharing its name.
func (b *builder) materializeOverloads(base *doc.Function) []*doc.Function {
	var extra []*doc.Function
	for _, sig := range b.overloads {
		ov := doc.NewFunction(base.Name)
		ov.Visibility = base.Visibility
		for i, arg := range sig.Args {
			argName := arg.Name
			if argName == "" {
				argName = fmt.Sprintf("arg%d", i+1)
			}
			ov.Params = append(ov.Params, &doc.Param{Name: argName, Type: arg.Type})
		}
		for _, ret := range sig.Results {
			ov.Returns = append(ov.Returns, &doc.Return{Type: ret})
		}
		extra = append(extra, ov)
	}
	b.overloads = nil
	return extra
}

// mergeParams merges the function's formal parameter list with @param
// tags. The formal list is the canonical order: tags match by name,
// missing tags pad with an empty description and the any type, and extra
// tags append after the formals — recorded as mismatches, never fatal.
func (b *builder) mergeParams(fnName string, formals []string, tagged []*doc.Param, pos Position) []*doc.Param {
	params := []*doc.Param{}
	used := make([]bool, len(tagged))

	for _, formal := range formals {
		var match *doc.Param
		for i, tp := range tagged {
			if !used[i] && tp.Name == formal {
				used[i] = true
				match = tp
				break
			}
		}
		if match == nil {
			match = &doc.Param{Name: formal, Type: doc.Primitive("any")}
		}
		params = append(params, match)
	}

	for i, tp := range tagged {
		if used[i] {
			continue
		}
		b.warn(Warning{
			Kind: WarnDeclMismatch,
			Pos:  pos,
			Msg:  fmt.Sprintf("function %q: documented param %q not in function signature", fnName, tp.Name),
		})
		params = append(params, tp)
	}
	return params
}

// addDataDecl records a documented assignment that is neither a class
// nor a function: a class field when the owner is known, module data
// otherwise.
func (b *builder) addDataDecl(d *declaration, bd *blockDoc) {
	// standalone @field tags attach to the owner of the assignment
	if len(bd.Fields) > 0 {
		if c, ok := b.classMap[d.Owner]; ok {
			c.Fields = append(c.Fields, bd.Fields...)
		} else {
			b.data = append(b.data, bd.Fields...)
		}
		return
	}

	field := &doc.Field{
		Name:       d.Name,
		Desc:       joinDesc(bd.ShortDesc, bd.LongDesc),
		Type:       valueType(d),
		Visibility: defaultVisibility(d.Name),
	}
	if bd.Visibility != "" {
		field.Visibility = bd.Visibility
	}

	if c, ok := b.classMap[d.Owner]; ok && d.Owner != "" {
		c.Fields = append(c.Fields, field)
		return
	}
	b.data = append(b.data, field)
}

// valueType infers a field type from the assigned literal, if any.
func valueType(d *declaration) *doc.TypeExpr {
	if d.Value != valLiteral {
		return doc.Primitive("any")
	}
	switch d.ValueLit {
	case "true", "false":
		return doc.Primitive("boolean")
	case "nil":
		return doc.Primitive("nil")
	}
	if d.ValueLit != "" && d.ValueLit[0] >= '0' && d.ValueLit[0] <= '9' {
		return doc.Primitive("number")
	}
	return doc.Primitive("string")
}

// finish assembles the module, folding @classmod and attaching the
// collected entities.
func (b *builder) finish(filename string) *doc.Module {
	m := b.module
	if m == nil {
		m = doc.NewModule("unknown")
	}
	m.Filename = filename

	if m.IsClassMod && len(b.classes) > 0 {
		if len(b.classes) > 1 {
			b.warn(Warning{
				Kind: WarnTagSyntax,
				Msg:  "in a @classmod, only one class is allowed",
			})
		}
		c := b.classes[0]
		c.Name = m.Name
		if c.Desc == "" {
			c.Desc = joinDesc(m.ShortDesc, m.Desc)
		}
		if c.Usage == "" {
			c.Usage = m.Usage
		}
	}

	m.Classes = append(m.Classes, b.classes...)
	m.Functions = append(m.Functions, b.functions...)
	m.Data = append(m.Data, b.data...)
	return m
}

// splitOwner splits a dotted pure-doc function name into its owner and
// base parts.
func splitOwner(name string) (string, string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// joinDesc combines short and long descriptions into a single text.
func joinDesc(short, long string) string {
	switch {
	case short == "":
		return long
	case long == "":
		return short
	default:
		return short + "\n" + long
	}
}
