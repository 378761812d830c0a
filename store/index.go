package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/chazu/luadoc/doc"
)

// Symbol is one row of the searchable index.
type Symbol struct {
	Module    string
	Class     string // empty for free functions and module data
	Name      string
	Kind      string // "function", "method", "field", "data"
	ShortDesc string
	File      string
}

// Index is a SQLite-backed symbol index over extracted modules.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) a symbol index at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening index: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS symbols (
		module     TEXT NOT NULL,
		class      TEXT NOT NULL,
		name       TEXT NOT NULL,
		kind       TEXT NOT NULL,
		short_desc TEXT NOT NULL,
		file       TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating symbols table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS symbols_name ON symbols (name)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating name index: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// IndexModule replaces the index rows for a module with the symbols of
// its current extraction.
func (ix *Index) IndexModule(m *doc.Module) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin index update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM symbols WHERE module = ?`, m.Name); err != nil {
		return fmt.Errorf("store: clearing module rows: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO symbols (module, class, name, kind, short_desc, file)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: preparing insert: %w", err)
	}
	defer stmt.Close()

	insert := func(class, name, kind, short string) error {
		_, err := stmt.Exec(m.Name, class, name, kind, short, m.Filename)
		return err
	}

	for _, fn := range m.Functions {
		if err := insert("", fn.Name, "function", fn.ShortDesc); err != nil {
			return err
		}
	}
	for _, field := range m.Data {
		if err := insert("", field.Name, "data", field.Desc); err != nil {
			return err
		}
	}
	for _, c := range m.Classes {
		for _, method := range c.Methods {
			if err := insert(c.Name, method.Name, "method", method.ShortDesc); err != nil {
				return err
			}
		}
		for _, field := range c.Fields {
			if err := insert(c.Name, field.Name, "field", field.Desc); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Search returns symbols whose name contains query, case-insensitively.
func (ix *Index) Search(query string) ([]Symbol, error) {
	rows, err := ix.db.Query(`SELECT module, class, name, kind, short_desc, file
		FROM symbols WHERE name LIKE '%' || ? || '%'
		ORDER BY module, class, name`, query)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		var s Symbol
		if err := rows.Scan(&s.Module, &s.Class, &s.Name, &s.Kind, &s.ShortDesc, &s.File); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
