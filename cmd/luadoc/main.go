// luadoc CLI - extracts structured API documentation from Lua sources
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chazu/luadoc/doc"
	"github.com/chazu/luadoc/extract"
	"github.com/chazu/luadoc/manifest"
	"github.com/chazu/luadoc/render"
	"github.com/chazu/luadoc/server"
	"github.com/chazu/luadoc/store"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	pretty := flag.Bool("pretty", false, "Indent the JSON output")
	prefix := flag.String("prefix", "", "Prefix stripped from module names (e.g. 'pl.')")
	dialect := flag.String("dialect", "", "Tag dialect: emmylua or ldoc")
	jobs := flag.Int("j", 4, "Number of files extracted in parallel")
	output := flag.String("o", "", "Write JSON to this file instead of stdout")
	noCache := flag.Bool("no-cache", false, "Skip the extraction cache")
	configDir := flag.String("config", "", "Directory containing luadoc.toml")
	configGen := flag.Bool("config-generate", false, "Write a starter luadoc.toml and exit")
	htmlDir := flag.String("html", "", "Render HTML pages into this directory")
	htmlTitle := flag.String("title", "API Reference", "Title for rendered HTML pages")
	indexPath := flag.String("index", "", "Write a symbol index database to this path")
	search := flag.String("search", "", "Query an existing symbol index and exit (requires -index)")
	serveLSP := flag.Bool("serve-lsp", false, "Start a language server on stdio")
	inline := flag.String("s", "", "Extract from this Lua source string instead of files")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: luadoc [options] [paths...]\n\n")
		fmt.Fprintf(os.Stderr, "Extracts documentation from .lua files under the given paths and prints\n")
		fmt.Fprintf(os.Stderr, "one JSON document per module, as a single array, to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  luadoc ./lua                      # Extract a tree, JSON to stdout\n")
		fmt.Fprintf(os.Stderr, "  luadoc -pretty foo.lua bar.lua    # Two files, indented\n")
		fmt.Fprintf(os.Stderr, "  luadoc -dialect ldoc -prefix pl. ./lua/pl\n")
		fmt.Fprintf(os.Stderr, "  luadoc -pretty -s 'function greet(name) end'\n")
		fmt.Fprintf(os.Stderr, "  luadoc -html docs/api ./lua       # Also render HTML pages\n")
		fmt.Fprintf(os.Stderr, "  luadoc -index symbols.db ./lua    # Build a symbol index\n")
		fmt.Fprintf(os.Stderr, "  luadoc -index symbols.db -search append\n")
		fmt.Fprintf(os.Stderr, "  luadoc -serve-lsp                 # Language server on stdio\n")
	}
	flag.Parse()

	if *configGen {
		path, err := manifest.WriteDefault(".")
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	if *search != "" {
		if *indexPath == "" {
			fatal(fmt.Errorf("-search requires -index"))
		}
		if err := runSearch(*indexPath, *search); err != nil {
			fatal(err)
		}
		return
	}

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fatal(err)
	}

	// Flags override the manifest.
	if *dialect == "" && cfg != nil {
		*dialect = cfg.Source.Dialect
	}
	if *prefix == "" && cfg != nil {
		*prefix = cfg.Project.Prefix
	}
	if cfg != nil && !*pretty {
		*pretty = cfg.Output.Pretty
	}

	if *serveLSP {
		if err := server.NewLSP(extract.Dialect(*dialect)).Run(); err != nil {
			fatal(err)
		}
		return
	}

	if *inline != "" {
		p := extract.New(extract.Options{Dialect: extract.Dialect(*dialect)})
		mod, err := p.Parse("<inline>", *inline)
		if err != nil {
			fatal(err)
		}
		for _, w := range p.Warnings() {
			fmt.Fprintf(os.Stderr, "<inline>:%d:%d: warning: %s\n", w.Pos.Line, w.Pos.Column, w.Msg)
		}
		mod.Name = strings.TrimPrefix(mod.Name, *prefix)
		if err := writeJSON([]*doc.Module{mod}, *output, *pretty, cfg); err != nil {
			fatal(err)
		}
		return
	}

	paths := flag.Args()
	extensions := []string{".lua"}
	if len(paths) == 0 && cfg != nil {
		paths = cfg.SourceDirPaths()
		extensions = cfg.Source.Extensions
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	files, err := collectFiles(paths, extensions)
	if err != nil {
		fatal(err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "extracting %d files\n", len(files))
	}

	var cache *store.Cache
	if cfg != nil && !*noCache {
		cache, err = store.OpenCache(cfg.CacheDir())
		if err != nil {
			fatal(err)
		}
	}

	modules, ok := extractAll(files, extract.Dialect(*dialect), *jobs, cache)
	if !ok {
		os.Exit(1)
	}

	for _, m := range modules {
		m.Name = strings.TrimPrefix(m.Name, *prefix)
	}

	if err := writeJSON(modules, *output, *pretty, cfg); err != nil {
		fatal(err)
	}

	if dir := chooseHTMLDir(*htmlDir, cfg); dir != "" {
		if err := render.Render(dir, *htmlTitle, modules); err != nil {
			fatal(err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "rendered HTML to %s\n", dir)
		}
	}

	if path := chooseIndexPath(*indexPath, cfg); path != "" {
		if err := buildIndex(path, modules); err != nil {
			fatal(err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "indexed symbols to %s\n", path)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "luadoc: %v\n", err)
	os.Exit(1)
}

// loadConfig loads the manifest from dir, or walks up from the working
// directory when dir is empty. A missing manifest is not an error.
func loadConfig(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	return manifest.FindAndLoad(".")
}

// collectFiles expands the given paths into the Lua files beneath them.
// Files are returned sorted so output order is stable.
func collectFiles(paths, extensions []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	matches := func(name string) bool {
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && matches(d.Name()) && !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// extractAll runs extraction over the files with a fixed-size worker
// pool. Warnings go to stderr as they are found; fatal errors are
// reported per file and flip the ok result.
func extractAll(files []string, dialect extract.Dialect, jobs int, cache *store.Cache) ([]*doc.Module, bool) {
	if jobs < 1 {
		jobs = 1
	}

	type result struct {
		index  int
		module *doc.Module
		err    error
	}

	work := make(chan int)
	results := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				m, err := extractOne(files[i], dialect, cache)
				results <- result{index: i, module: m, err: err}
			}
		}()
	}

	go func() {
		for i := range files {
			work <- i
		}
		close(work)
		wg.Wait()
		close(results)
	}()

	modules := make([]*doc.Module, len(files))
	ok := true
	for r := range results {
		if r.err != nil {
			fmt.Fprintln(os.Stderr, r.err)
			ok = false
			continue
		}
		modules[r.index] = r.module
	}
	if !ok {
		return nil, false
	}

	out := make([]*doc.Module, 0, len(modules))
	for _, m := range modules {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, true
}

// extractOne parses a single file, going through the cache when one is
// configured.
func extractOne(path string, dialect extract.Dialect, cache *store.Cache) (*doc.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var key string
	if cache != nil {
		key = store.SourceKey(source)
		if m, err := cache.Get(key); err == nil && m != nil {
			m.Filename = path
			return m, nil
		}
	}

	p := extract.New(extract.Options{Dialect: dialect})
	m, err := p.Parse(path, string(source))
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings() {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: warning: %s\n", path, w.Pos.Line, w.Pos.Column, w.Msg)
	}

	if cache != nil {
		if err := cache.Put(key, m); err != nil {
			fmt.Fprintf(os.Stderr, "luadoc: cache write failed: %v\n", err)
		}
	}
	return m, nil
}

// writeJSON emits the module array to the configured destination.
func writeJSON(modules []*doc.Module, output string, pretty bool, cfg *manifest.Manifest) error {
	if output == "" && cfg != nil && cfg.Output.JSON != "" {
		output = filepath.Join(cfg.Dir, cfg.Output.JSON)
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(modules, "", "  ")
	} else {
		data, err = json.Marshal(modules)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	return os.WriteFile(output, data, 0644)
}

func chooseHTMLDir(flagDir string, cfg *manifest.Manifest) string {
	if flagDir != "" {
		return flagDir
	}
	if cfg != nil && cfg.Output.HTML != "" {
		return filepath.Join(cfg.Dir, cfg.Output.HTML)
	}
	return ""
}

func chooseIndexPath(flagPath string, cfg *manifest.Manifest) string {
	if flagPath != "" {
		return flagPath
	}
	if cfg != nil && cfg.Output.Index != "" {
		return filepath.Join(cfg.Dir, cfg.Output.Index)
	}
	return ""
}

// buildIndex refreshes the symbol index with the extracted modules.
func buildIndex(path string, modules []*doc.Module) error {
	ix, err := store.OpenIndex(path)
	if err != nil {
		return err
	}
	defer ix.Close()

	for _, m := range modules {
		if err := ix.IndexModule(m); err != nil {
			return err
		}
	}
	return nil
}

// runSearch queries an existing symbol index and prints the matches.
func runSearch(indexPath, query string) error {
	ix, err := store.OpenIndex(indexPath)
	if err != nil {
		return err
	}
	defer ix.Close()

	symbols, err := ix.Search(query)
	if err != nil {
		return err
	}
	for _, s := range symbols {
		name := s.Name
		if s.Class != "" {
			name = s.Class + ":" + s.Name
		}
		fmt.Printf("%s\t%s\t%s", s.Module, s.Kind, name)
		if s.ShortDesc != "" {
			fmt.Printf("\t%s", s.ShortDesc)
		}
		fmt.Println()
	}
	return nil
}
