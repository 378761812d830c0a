// Package render generates static HTML API reference pages from
// extracted modules.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/luadoc/doc"
)

// ---------------------------------------------------------------------------
// View structures for template rendering
// ---------------------------------------------------------------------------

// moduleView holds all rendering data for a single module page.
type moduleView struct {
	Name      string
	Filename  string
	ShortDesc string
	Desc      string
	Usage     string
	Classes   []classView
	Functions []functionView
	Data      []fieldView
	RelPath   string // relative path for linking (e.g., "modules/pl.List.html")
}

type classView struct {
	Name         string
	NameInSource string
	Desc         string
	Usage        string
	InheritsFrom []string
	Methods      []functionView
	Fields       []fieldView
}

type functionView struct {
	Name      string
	Signature string
	ShortDesc string
	Desc      string
	Usage     string
	Params    []paramView
	Returns   []returnView
	Labels    []string // deprecated, virtual, abstract, static, private
}

type paramView struct {
	Name string
	Type string
	Desc string
}

type returnView struct {
	Type string
	Desc string
}

type fieldView struct {
	Name       string
	Type       string
	Desc       string
	Visibility string
}

// ---------------------------------------------------------------------------
// Rendering entry point
// ---------------------------------------------------------------------------

// Render writes an index page and one page per module into outputDir.
func Render(outputDir, title string, modules []*doc.Module) error {
	views := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, buildModuleView(m))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })

	if err := os.MkdirAll(filepath.Join(outputDir, "modules"), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeCSS(outputDir); err != nil {
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	if err := writeIndexPage(outputDir, title, views); err != nil {
		return fmt.Errorf("writing index page: %w", err)
	}
	for _, view := range views {
		if err := writeModulePage(outputDir, title, view); err != nil {
			return fmt.Errorf("writing page for %s: %w", view.Name, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// View construction
// ---------------------------------------------------------------------------

func buildModuleView(m *doc.Module) moduleView {
	view := moduleView{
		Name:      m.Name,
		Filename:  m.Filename,
		ShortDesc: m.ShortDesc,
		Desc:      m.Desc,
		Usage:     m.Usage,
		RelPath:   filepath.Join("modules", m.Name+".html"),
	}

	for _, fn := range m.Functions {
		view.Functions = append(view.Functions, buildFunctionView("", fn))
	}
	for _, field := range m.Data {
		view.Data = append(view.Data, buildFieldView(field))
	}
	for _, c := range m.Classes {
		cv := classView{
			Name:         c.Name,
			NameInSource: c.NameInSource,
			Desc:         c.Desc,
			Usage:        c.Usage,
			InheritsFrom: c.InheritsFrom,
		}
		for _, method := range c.Methods {
			cv.Methods = append(cv.Methods, buildFunctionView(c.Name, method))
		}
		for _, field := range c.Fields {
			cv.Fields = append(cv.Fields, buildFieldView(field))
		}
		view.Classes = append(view.Classes, cv)
	}

	return view
}

func buildFunctionView(className string, fn *doc.Function) functionView {
	view := functionView{
		Name:      fn.Name,
		Signature: Signature(className, fn),
		ShortDesc: fn.ShortDesc,
		Desc:      fn.Desc,
		Usage:     fn.Usage,
	}

	for _, p := range fn.Params {
		name := p.Name
		if p.IsOpt {
			name = "[" + name + "]"
		}
		view.Params = append(view.Params, paramView{
			Name: name,
			Type: p.Type.String(),
			Desc: p.Desc,
		})
	}
	for _, r := range fn.Returns {
		view.Returns = append(view.Returns, returnView{
			Type: r.Type.String(),
			Desc: r.Desc,
		})
	}

	if fn.IsDeprecated {
		view.Labels = append(view.Labels, "deprecated")
	}
	if fn.IsAbstract {
		view.Labels = append(view.Labels, "abstract")
	}
	if fn.IsVirtual {
		view.Labels = append(view.Labels, "virtual")
	}
	if fn.IsStatic {
		view.Labels = append(view.Labels, "static")
	}
	if fn.Visibility != doc.Public {
		view.Labels = append(view.Labels, string(fn.Visibility))
	}

	return view
}

func buildFieldView(f *doc.Field) fieldView {
	return fieldView{
		Name:       f.Name,
		Type:       f.Type.String(),
		Desc:       f.Desc,
		Visibility: string(f.Visibility),
	}
}

// Signature formats a function header the way it would appear in source.
func Signature(className string, fn *doc.Function) string {
	var b strings.Builder
	b.WriteString("function ")
	if className != "" {
		b.WriteString(className)
		if fn.IsStatic {
			b.WriteString(".")
		} else {
			b.WriteString(":")
		}
	}
	b.WriteString(fn.Name)
	b.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	return b.String()
}

// ---------------------------------------------------------------------------
// File writing
// ---------------------------------------------------------------------------

// writeCSS writes the stylesheet to the output directory.
func writeCSS(outputDir string) error {
	cssPath := filepath.Join(outputDir, "style.css")
	return os.WriteFile(cssPath, []byte(cssContent), 0644)
}

// writeIndexPage generates the index.html module listing.
func writeIndexPage(outputDir, title string, views []moduleView) error {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return fmt.Errorf("parsing index template: %w", err)
	}

	outPath := filepath.Join(outputDir, "index.html")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	data := struct {
		Title   string
		Modules []moduleView
	}{
		Title:   title,
		Modules: views,
	}

	return tmpl.Execute(f, data)
}

// writeModulePage generates an individual module HTML page.
func writeModulePage(outputDir, siteTitle string, view moduleView) error {
	funcMap := template.FuncMap{
		"join":       strings.Join,
		"paragraphs": paragraphsHTML,
	}

	tmpl, err := template.New("module").Funcs(funcMap).Parse(moduleTemplate)
	if err != nil {
		return fmt.Errorf("parsing module template: %w", err)
	}

	outPath := filepath.Join(outputDir, view.RelPath)
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	data := struct {
		SiteTitle string
		Module    moduleView
	}{
		SiteTitle: siteTitle,
		Module:    view,
	}

	return tmpl.Execute(f, data)
}

// paragraphsHTML wraps description text in paragraphs, splitting on
// blank lines.
func paragraphsHTML(text string) template.HTML {
	var buf strings.Builder
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		buf.WriteString("<p>")
		buf.WriteString(template.HTMLEscapeString(p))
		buf.WriteString("</p>\n")
	}
	return template.HTML(buf.String())
}
