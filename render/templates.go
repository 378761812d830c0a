package render

const cssContent = `/* luadoc API Documentation */
:root {
    --fg: #2d2d2d;
    --fg-muted: #6c6c6c;
    --bg: #ffffff;
    --bg-alt: #f6f6f4;
    --accent: #2a6db0;
    --border: #dcdcd8;
}

body {
    font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
    color: var(--fg);
    background: var(--bg);
    max-width: 56rem;
    margin: 0 auto;
    padding: 1.5rem;
    line-height: 1.55;
}

h1, h2, h3 { line-height: 1.2; }
h2 { border-bottom: 1px solid var(--border); padding-bottom: 0.3rem; }

a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

code, pre {
    font-family: "SF Mono", Menlo, Consolas, monospace;
    font-size: 0.92em;
}

pre {
    background: var(--bg-alt);
    border: 1px solid var(--border);
    border-radius: 4px;
    padding: 0.75rem;
    overflow-x: auto;
}

.module-list { list-style: none; padding-left: 0; }
.module-list li { margin: 0.35rem 0; }
.module-brief { color: var(--fg-muted); }

.breadcrumb { color: var(--fg-muted); margin-bottom: 1rem; }

.entity {
    border-top: 1px solid var(--border);
    padding: 0.75rem 0;
}
.entity-signature {
    font-family: "SF Mono", Menlo, Consolas, monospace;
    font-weight: 600;
}

.label {
    display: inline-block;
    font-size: 0.75em;
    padding: 0.05rem 0.45rem;
    margin-left: 0.4rem;
    border-radius: 3px;
    background: var(--bg-alt);
    border: 1px solid var(--border);
    color: var(--fg-muted);
    vertical-align: middle;
}

table.members {
    border-collapse: collapse;
    margin: 0.5rem 0;
}
table.members td, table.members th {
    border: 1px solid var(--border);
    padding: 0.25rem 0.6rem;
    text-align: left;
}
table.members th { background: var(--bg-alt); }

.inherits { color: var(--fg-muted); }

.footer {
    margin-top: 2.5rem;
    padding-top: 0.75rem;
    border-top: 1px solid var(--border);
    color: var(--fg-muted);
    font-size: 0.85em;
}
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="style.css">
</head>
<body>
    <h1>{{.Title}}</h1>

    <ul class="module-list">
{{range .Modules}}
        <li>
            <a href="{{.RelPath}}" class="module-name">{{.Name}}</a>
{{if .ShortDesc}}
            <span class="module-brief">&mdash; {{.ShortDesc}}</span>
{{end}}
        </li>
{{end}}
    </ul>

    <div class="footer">
        Generated by luadoc.
    </div>
</body>
</html>
`

const moduleTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Module.Name}} &mdash; {{.SiteTitle}}</title>
    <link rel="stylesheet" href="../style.css">
</head>
<body>
    <div class="breadcrumb">
        <a href="../index.html">{{.SiteTitle}}</a>
        &rsaquo; {{.Module.Name}}
    </div>

    <h1>{{.Module.Name}}</h1>
{{if .Module.ShortDesc}}
    {{paragraphs .Module.ShortDesc}}
{{end}}
{{if .Module.Desc}}
    {{paragraphs .Module.Desc}}
{{end}}
{{if .Module.Usage}}
    <pre><code>{{.Module.Usage}}</code></pre>
{{end}}

{{if .Module.Functions}}
    <h2>Functions</h2>
{{range .Module.Functions}}
    <div class="entity">
        <div class="entity-signature">{{.Signature}}{{range .Labels}}<span class="label">{{.}}</span>{{end}}</div>
{{if .ShortDesc}}
        {{paragraphs .ShortDesc}}
{{end}}
{{if .Desc}}
        {{paragraphs .Desc}}
{{end}}
{{if .Params}}
        <table class="members">
            <tr><th>Parameter</th><th>Type</th><th></th></tr>
{{range .Params}}
            <tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
        </table>
{{end}}
{{if .Returns}}
        <table class="members">
            <tr><th>Returns</th><th></th></tr>
{{range .Returns}}
            <tr><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
        </table>
{{end}}
{{if .Usage}}
        <pre><code>{{.Usage}}</code></pre>
{{end}}
    </div>
{{end}}
{{end}}

{{if .Module.Data}}
    <h2>Data</h2>
    <table class="members">
        <tr><th>Name</th><th>Type</th><th></th></tr>
{{range .Module.Data}}
        <tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
    </table>
{{end}}

{{range .Module.Classes}}
    <h2>{{.Name}}</h2>
{{if .InheritsFrom}}
    <div class="inherits">Inherits from: {{join .InheritsFrom ", "}}</div>
{{end}}
{{if .Desc}}
    {{paragraphs .Desc}}
{{end}}
{{if .Usage}}
    <pre><code>{{.Usage}}</code></pre>
{{end}}
{{if .Fields}}
    <table class="members">
        <tr><th>Field</th><th>Type</th><th></th></tr>
{{range .Fields}}
        <tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
    </table>
{{end}}
{{range .Methods}}
    <div class="entity">
        <div class="entity-signature">{{.Signature}}{{range .Labels}}<span class="label">{{.}}</span>{{end}}</div>
{{if .ShortDesc}}
        {{paragraphs .ShortDesc}}
{{end}}
{{if .Desc}}
        {{paragraphs .Desc}}
{{end}}
{{if .Params}}
        <table class="members">
            <tr><th>Parameter</th><th>Type</th><th></th></tr>
{{range .Params}}
            <tr><td><code>{{.Name}}</code></td><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
        </table>
{{end}}
{{if .Returns}}
        <table class="members">
            <tr><th>Returns</th><th></th></tr>
{{range .Returns}}
            <tr><td><code>{{.Type}}</code></td><td>{{.Desc}}</td></tr>
{{end}}
        </table>
{{end}}
{{if .Usage}}
        <pre><code>{{.Usage}}</code></pre>
{{end}}
    </div>
{{end}}
{{end}}

    <div class="footer">
        Generated by luadoc.
    </div>
</body>
</html>
`
