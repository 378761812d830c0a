package extract

import (
	"fmt"
	"strings"

	"github.com/chazu/luadoc/doc"
)

// ---------------------------------------------------------------------------
// Tag parser: consumes a doc block line by line, dispatching each @tag to
// a builder routine. Unrecognized tags are ignored so files mixing doc
// styles still parse.
// ---------------------------------------------------------------------------

// Dialect selects the doc-comment tag vocabulary. Both dialects accept
// the union of tag spellings; the dialect decides how the ambiguous tags
// (@param, @return) are read.
type Dialect string

const (
	DialectEmmyLua Dialect = "emmylua" // @param name type desc
	DialectLdoc    Dialect = "ldoc"    // @param name desc, @tparam type name desc
)

// classHeader is the partial annotation produced by @class.
type classHeader struct {
	Name    string
	Parents []string
	Pos     Position
}

// moduleHeader is the partial annotation produced by @module/@classmod.
type moduleHeader struct {
	Name     string
	ClassMod bool
	Pos      Position
}

// blockDoc is everything a single doc block declares.
type blockDoc struct {
	ShortDesc string
	LongDesc  string
	Usage     string

	Class    *classHeader
	Module   *moduleHeader
	Function *doc.Function // pure-doc @function declaration

	Params    []*doc.Param
	Returns   []*doc.Return
	Fields    []*doc.Field
	Overloads []*doc.TypeExpr

	IsVirtual    bool
	IsAbstract   bool
	IsDeprecated bool
	IsStatic     bool
	Visibility   doc.Visibility // empty when not declared
}

// tagParser holds per-block parse state.
type tagParser struct {
	dialect Dialect
	warn    func(Warning)

	out        blockDoc
	pending    []string // free-text lines seen so far
	usageLines []string
	inUsage    bool
}

type tagHandler func(p *tagParser, text string, pos Position)

// tagHandlers is the closed dispatch table, keyed by tag name with the
// leading @ stripped. Lookup is case-sensitive.
var tagHandlers = map[string]tagHandler{
	"class":       (*tagParser).parseClass,
	"type":        (*tagParser).parseClass,
	"module":      (*tagParser).parseModule,
	"classmod":    (*tagParser).parseClassMod,
	"field":       (*tagParser).parseField,
	"param":       (*tagParser).parseParam,
	"tparam":      (*tagParser).parseTParam,
	"tparam[opt]": (*tagParser).parseTParamOpt,
	"string":      (*tagParser).parseStringParam,
	"int":         (*tagParser).parseIntParam,
	"vararg":      (*tagParser).parseVararg,
	"return":      (*tagParser).parseReturn,
	"treturn":     (*tagParser).parseTReturn,
	"overload":    (*tagParser).parseOverload,
	"function":    (*tagParser).parseFunction,
	"usage":       (*tagParser).parseUsage,
	"deprecated":  (*tagParser).parseDeprecated,
	"virtual":     (*tagParser).parseVirtual,
	"abstract":    (*tagParser).parseAbstract,
	"static":      (*tagParser).parseStatic,
	"private":     (*tagParser).parsePrivate,
	"protected":   (*tagParser).parseProtected,
	"public":      (*tagParser).parsePublic,
}

// parseBlock runs the tag parser over one doc block.
func parseBlock(b *DocBlock, dialect Dialect, warn func(Warning)) *blockDoc {
	p := &tagParser{dialect: dialect, warn: warn}

	for _, line := range b.Lines {
		p.line(line)
	}

	if len(p.pending) > 0 {
		p.out.ShortDesc = p.pending[0]
		p.out.LongDesc = strings.Join(p.pending[1:], "\n")
	}
	if len(p.usageLines) > 0 {
		p.out.Usage = strings.Join(p.usageLines, "\n")
	}
	return &p.out
}

// line consumes one doc line: a tag line is dispatched, anything else
// accumulates as usage (after @usage) or description text.
func (p *tagParser) line(line DocLine) {
	trimmed := strings.TrimSpace(line.Text)

	if strings.HasPrefix(trimmed, "@") {
		name, rest := splitTag(trimmed)
		if handler, ok := tagHandlers[name]; ok {
			handler(p, rest, line.Pos)
		}
		// unknown tags are not an error
		return
	}

	if p.inUsage {
		p.usageLines = append(p.usageLines, line.Text)
		return
	}
	if trimmed != "" {
		p.pending = append(p.pending, trimmed)
	}
}

// splitTag splits "@name rest of line" into name (without @) and rest.
func splitTag(line string) (string, string) {
	body := line[1:]
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		return body[:i], strings.TrimSpace(body[i+1:])
	}
	return body, ""
}

// firstWord splits text into its first word and the trimmed remainder.
func firstWord(text string) (string, string) {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		return text[:i], strings.TrimSpace(text[i+1:])
	}
	return text, ""
}

// --- tag builders ---

func (p *tagParser) parseClass(text string, pos Position) {
	name, rest := firstWord(text)
	parents := []string{}

	// @class Name: Parent, Parent2 — the colon may touch the name.
	if i := strings.Index(name, ":"); i >= 0 {
		rest = strings.TrimSpace(name[i+1:] + " " + rest)
		name = name[:i]
	} else if strings.HasPrefix(rest, ":") {
		rest = strings.TrimSpace(rest[1:])
	} else {
		rest = ""
	}
	for _, parent := range strings.Split(rest, ",") {
		if parent = strings.TrimSpace(parent); parent != "" {
			parents = append(parents, parent)
		}
	}

	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@class must be followed by a class name"})
		return
	}
	p.out.Class = &classHeader{Name: name, Parents: parents, Pos: pos}
}

func (p *tagParser) parseModule(text string, pos Position) {
	name, _ := firstWord(text)
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@module must be followed by a module name"})
		return
	}
	p.out.Module = &moduleHeader{Name: name, Pos: pos}
}

func (p *tagParser) parseClassMod(text string, pos Position) {
	name, _ := firstWord(text)
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@classmod must be followed by a module name"})
		return
	}
	p.out.Module = &moduleHeader{Name: name, ClassMod: true, Pos: pos}
}

func (p *tagParser) parseField(text string, pos Position) {
	name, rest := firstWord(text)

	visibility := doc.Visibility("")
	switch name {
	case "public", "private", "protected":
		visibility = doc.Visibility(name)
		name, rest = firstWord(rest)
	}
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@field must be followed by a field name"})
		return
	}

	typ, desc := p.typeAndDesc(rest, pos)
	if visibility == "" {
		visibility = defaultVisibility(name)
	}
	p.out.Fields = append(p.out.Fields, &doc.Field{
		Name:       name,
		Desc:       desc,
		Type:       typ,
		Visibility: visibility,
	})
}

func (p *tagParser) parseParam(text string, pos Position) {
	name, rest := firstWord(text)
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@param expects a parameter name"})
		return
	}

	param := &doc.Param{Type: doc.Primitive("any")}

	// Optional forms: name?, [name], [name=default]
	if strings.HasSuffix(name, "?") {
		param.IsOpt = true
		name = strings.TrimSuffix(name, "?")
	} else if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		param.IsOpt = true
		name = name[1 : len(name)-1]
		if i := strings.Index(name, "="); i >= 0 {
			param.DefaultValue = name[i+1:]
			name = name[:i]
		}
	}
	param.Name = name

	if p.dialect == DialectLdoc {
		// ldoc @param carries no type
		param.Desc = rest
	} else {
		typ, opt, desc, err := ParseTypeString(rest)
		if err != nil && strings.TrimSpace(rest) != "" {
			p.warn(Warning{Kind: WarnTypeParse, Pos: pos, Msg: fmt.Sprintf("param %q: %v", name, err)})
		}
		param.Type = typ
		param.IsOpt = param.IsOpt || opt
		param.Desc = desc
	}

	// Trailing "(default X)" in the description carries the default.
	if param.DefaultValue == "" {
		param.Desc, param.DefaultValue = splitDefault(param.Desc)
	}

	p.out.Params = append(p.out.Params, param)
}

// splitDefault strips a trailing "(default X)" marker from a param
// description, returning the remaining text and the default value.
func splitDefault(desc string) (string, string) {
	const marker = "(default "
	i := strings.LastIndex(desc, marker)
	if i < 0 || !strings.HasSuffix(desc, ")") {
		return desc, ""
	}
	value := strings.TrimSpace(desc[i+len(marker) : len(desc)-1])
	if value == "" {
		return desc, ""
	}
	return strings.TrimSpace(desc[:i]), value
}

// parseTParam handles the ldoc @tparam form: type first, then name.
func (p *tagParser) parseTParam(text string, pos Position) {
	p.tparam(text, pos, false)
}

func (p *tagParser) parseTParamOpt(text string, pos Position) {
	p.tparam(text, pos, true)
}

func (p *tagParser) tparam(text string, pos Position, isOpt bool) {
	typ, opt, rest, err := ParseTypeString(text)
	if err != nil {
		p.warn(Warning{Kind: WarnTypeParse, Pos: pos, Msg: fmt.Sprintf("@tparam: %v", err)})
	}
	name, desc := firstWord(rest)
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@tparam expects a type and a name"})
		return
	}
	p.out.Params = append(p.out.Params, &doc.Param{
		Name:  name,
		Desc:  desc,
		Type:  typ,
		IsOpt: isOpt || opt,
	})
}

// parseStringParam and parseIntParam handle the ldoc typed shorthands.
func (p *tagParser) parseStringParam(text string, pos Position) {
	p.tparam("string "+text, pos, false)
}

func (p *tagParser) parseIntParam(text string, pos Position) {
	p.tparam("int "+text, pos, false)
}

func (p *tagParser) parseVararg(text string, pos Position) {
	typ, _, desc, err := ParseTypeString(text)
	if err != nil && strings.TrimSpace(text) != "" {
		p.warn(Warning{Kind: WarnTypeParse, Pos: pos, Msg: fmt.Sprintf("@vararg: %v", err)})
	}
	p.out.Params = append(p.out.Params, &doc.Param{
		Name: "...",
		Desc: desc,
		Type: typ,
	})
}

func (p *tagParser) parseReturn(text string, pos Position) {
	if p.dialect == DialectLdoc {
		p.out.Returns = append(p.out.Returns, &doc.Return{
			Desc: strings.TrimSpace(text),
			Type: doc.Primitive("any"),
		})
		return
	}
	p.treturn(text, pos)
}

func (p *tagParser) parseTReturn(text string, pos Position) {
	p.treturn(text, pos)
}

func (p *tagParser) treturn(text string, pos Position) {
	typ, _, desc, err := ParseTypeString(text)
	if err != nil && strings.TrimSpace(text) != "" {
		p.warn(Warning{Kind: WarnTypeParse, Pos: pos, Msg: fmt.Sprintf("@return: %v", err)})
	}
	p.out.Returns = append(p.out.Returns, &doc.Return{Desc: desc, Type: typ})
}

func (p *tagParser) parseOverload(text string, pos Position) {
	expr, err := ParseTypeExpr(text)
	if err != nil || expr.Kind != doc.KindCallable {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: fmt.Sprintf("@overload expects a fun(...) signature, got %q", text)})
		return
	}
	p.out.Overloads = append(p.out.Overloads, expr)
}

func (p *tagParser) parseFunction(text string, pos Position) {
	name, _ := firstWord(text)
	if name == "" {
		p.warn(Warning{Kind: WarnTagSyntax, Pos: pos, Msg: "@function must be followed by a function name"})
		return
	}
	p.out.Function = doc.NewFunction(name)
}

func (p *tagParser) parseUsage(text string, pos Position) {
	p.inUsage = true
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		p.usageLines = append(p.usageLines, trimmed)
	}
}

func (p *tagParser) parseDeprecated(string, Position) { p.out.IsDeprecated = true }
func (p *tagParser) parseVirtual(string, Position)    { p.out.IsVirtual = true }
func (p *tagParser) parseAbstract(string, Position)   { p.out.IsAbstract = true }
func (p *tagParser) parseStatic(string, Position)     { p.out.IsStatic = true }
func (p *tagParser) parsePrivate(string, Position)    { p.out.Visibility = doc.Private }
func (p *tagParser) parseProtected(string, Position)  { p.out.Visibility = doc.Protected }
func (p *tagParser) parsePublic(string, Position)     { p.out.Visibility = doc.Public }

// typeAndDesc parses a leading type expression, recording a warning on
// failure and falling back to any.
func (p *tagParser) typeAndDesc(text string, pos Position) (*doc.TypeExpr, string) {
	typ, _, desc, err := ParseTypeString(text)
	if err != nil && strings.TrimSpace(text) != "" {
		p.warn(Warning{Kind: WarnTypeParse, Pos: pos, Msg: err.Error()})
	}
	return typ, desc
}

// defaultVisibility applies the leading-underscore convention.
func defaultVisibility(name string) doc.Visibility {
	if strings.HasPrefix(name, "_") {
		return doc.Private
	}
	return doc.Public
}
