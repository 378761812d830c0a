// Package manifest handles luadoc.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a luadoc.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Output  Output  `toml:"output"`

	// Dir is the directory containing the luadoc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`

	// Prefix is stripped from module names when rendering, so that
	// pl.List can display as List.
	Prefix string `toml:"prefix"`
}

// Source configures which files are scanned.
type Source struct {
	Dirs       []string `toml:"dirs"`
	Extensions []string `toml:"extensions"`

	// Dialect selects the tag vocabulary: "emmylua" or "ldoc".
	Dialect string `toml:"dialect"`
}

// Output configures where extraction results go.
type Output struct {
	// JSON is the path of the combined JSON document, or empty for stdout.
	JSON string `toml:"json"`

	// HTML is the directory HTML pages are rendered into.
	HTML string `toml:"html"`

	// Index is the path of the symbol index database.
	Index string `toml:"index"`

	Pretty bool `toml:"pretty"`
}

// Load parses a luadoc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "luadoc.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	applyDefaults(&m)
	return &m, nil
}

// FindAndLoad walks up from startDir to find a luadoc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "luadoc.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func applyDefaults(m *Manifest) {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"."}
	}
	if len(m.Source.Extensions) == 0 {
		m.Source.Extensions = []string{".lua"}
	}
	if m.Source.Dialect == "" {
		m.Source.Dialect = "emmylua"
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// CacheDir returns the path to the .luadoc cache directory.
func (m *Manifest) CacheDir() string {
	return filepath.Join(m.Dir, ".luadoc")
}

// defaultManifest is written by WriteDefault for new projects.
const defaultManifest = `[project]
name = "my-project"
version = "0.1.0"

[source]
dirs = ["."]
extensions = [".lua"]
dialect = "emmylua"

[output]
pretty = false
`

// WriteDefault creates a starter luadoc.toml in dir. It refuses to
// overwrite an existing file.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, "luadoc.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(defaultManifest), 0o644); err != nil {
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}
	return path, nil
}
