package store

import (
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "symbols.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexModuleAndSearch(t *testing.T) {
	ix := openTestIndex(t)

	if err := ix.IndexModule(sampleModule()); err != nil {
		t.Fatalf("IndexModule: %v", err)
	}

	results, err := ix.Search("append")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	s := results[0]
	if s.Module != "foo" || s.Class != "foo.List" || s.Kind != "method" {
		t.Errorf("symbol = %+v", s)
	}
	if s.File != "foo.lua" {
		t.Errorf("file = %q", s.File)
	}
}

func TestIndexSearchIsSubstring(t *testing.T) {
	ix := openTestIndex(t)
	if err := ix.IndexModule(sampleModule()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("gree")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "greet" {
		t.Errorf("results = %+v", results)
	}

	results, err = ix.Search("nomatch")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestIndexModuleReplacesRows(t *testing.T) {
	ix := openTestIndex(t)

	m := sampleModule()
	if err := ix.IndexModule(m); err != nil {
		t.Fatal(err)
	}

	// Re-index with the function removed: the old row must go away.
	m.Functions = m.Functions[:0]
	if err := ix.IndexModule(m); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("greet")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("stale rows survived re-index: %+v", results)
	}
}

func TestIndexFieldsAndData(t *testing.T) {
	ix := openTestIndex(t)
	if err := ix.IndexModule(sampleModule()); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Search("n")
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, s := range results {
		if s.Kind == "field" && s.Name == "n" && s.Class == "foo.List" {
			found = true
		}
	}
	if !found {
		t.Errorf("field n not indexed: %+v", results)
	}
}
