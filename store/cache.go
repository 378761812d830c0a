// Package store persists extraction results: a content-addressed module
// cache and a searchable symbol index.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/luadoc/doc"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding, so identical modules produce identical cache
// entries.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalModule serializes a Module to CBOR bytes.
func MarshalModule(m *doc.Module) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// UnmarshalModule deserializes a Module from CBOR bytes.
func UnmarshalModule(data []byte) (*doc.Module, error) {
	var m doc.Module
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("store: unmarshal module: %w", err)
	}
	return &m, nil
}

// SourceKey returns the cache key for a source text.
func SourceKey(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Cache is a directory of CBOR-encoded modules keyed by the hash of the
// source they were extracted from. A key never maps to stale data: if
// the source changes, so does the key.
type Cache struct {
	dir string
}

// OpenCache opens (creating if needed) a cache rooted at dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".cbor")
}

// Get returns the cached module for key, or nil on a miss. A corrupt
// entry counts as a miss.
func (c *Cache) Get(key string) (*doc.Module, error) {
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading cache entry: %w", err)
	}
	m, err := UnmarshalModule(data)
	if err != nil {
		return nil, nil
	}
	return m, nil
}

// Put stores a module under key.
func (c *Cache) Put(key string, m *doc.Module) error {
	data, err := MarshalModule(m)
	if err != nil {
		return fmt.Errorf("store: marshal module: %w", err)
	}

	// Write-then-rename so readers never see a partial entry.
	tmp, err := os.CreateTemp(c.dir, "put-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}
