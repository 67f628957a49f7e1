package history

import (
	"context"
	"path/filepath"
	"strings"
)

const DefaultLimit = 2000

// Store persists identifiers of items delivered by earlier runs. Load never
// fails on missing or unreadable state; it returns an empty set instead.
type Store interface {
	Load(ctx context.Context) (*Seen, error)
	Save(ctx context.Context, ids []string, limit int) error
	Close() error
}

var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// Open picks the backend from the file extension: SQLite for .db, .sqlite
// and .sqlite3, a JSON array otherwise.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path), nil
	}
}
