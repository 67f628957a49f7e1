package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// JSONStore keeps history as a JSON array of strings in a single file.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load(ctx context.Context) (*Seen, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("History file not found, starting empty", "path", s.path)
		return NewSeen(), nil
	}
	if err != nil {
		slog.Warn("History file unreadable, starting empty", "path", s.path, "error", err)
		return NewSeen(), nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("History file corrupt, starting empty", "path", s.path, "error", err)
		return NewSeen(), nil
	}

	return NewSeen(ids...), nil
}

// Save writes the newest limit identifiers. The file is replaced by rename,
// so a crash mid-write leaves the previous contents in place.
func (s *JSONStore) Save(ctx context.Context, ids []string, limit int) error {
	data, err := json.MarshalIndent(Tail(ids, limit), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
