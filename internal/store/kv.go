package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pbaille/soundbyte/internal/config"
)

// ErrNotFound is returned by Get when a key has never been written
var ErrNotFound = errors.New("key not found")

// KV is a durable key/value store holding whole serialized documents
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Open returns the KV backend named by the storage config
func Open(cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case config.BackendDisk:
		return NewDisk(cfg.Path)
	case config.BackendSQLite:
		return NewSQLite(SQLitePath(cfg.Path))
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("open store: unknown backend %q", cfg.Backend)
	}
}

// SQLiteFile is the database file name used inside a storage directory
const SQLiteFile = "soundbyte.db"

// SQLitePath resolves the database file for a storage path. A path ending in a
// database extension is used as is; any other path is the directory holding SQLiteFile.
func SQLitePath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return path
	}
	return filepath.Join(path, SQLiteFile)
}

// Close releases the backend if it holds resources
func Close(kv KV) error {
	if c, ok := kv.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Memory is an in-process KV, used in tests and for throwaway sessions
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory creates an empty Memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
