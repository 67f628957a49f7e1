package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a single-table SQLite database. Insertion
// order is the autoincrement sequence.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}
	return &SQLiteStore{path: path}, nil
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return err
	}
	if dirty {
		db.Close()
		return fmt.Errorf("database schema is dirty at version %d", version)
	}

	slog.Debug("History database ready", "path", s.path, "schema_version", version)
	s.db = db
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Seen, error) {
	if err := s.open(); err != nil {
		slog.Warn("History database unusable, starting empty", "path", s.path, "error", err)
		return NewSeen(), nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM history ORDER BY seq`)
	if err != nil {
		slog.Warn("History query failed, starting empty", "path", s.path, "error", err)
		return NewSeen(), nil
	}
	defer rows.Close()

	seen := NewSeen()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Warn("History row unreadable, starting empty", "path", s.path, "error", err)
			return NewSeen(), nil
		}
		seen.Add(id)
	}

	if err := rows.Err(); err != nil {
		slog.Warn("Error iterating history rows, starting empty", "path", s.path, "error", err)
		return NewSeen(), nil
	}

	return seen, nil
}

// Save replaces the stored history with the newest limit identifiers in a
// single transaction. A database that cannot be opened is moved aside and
// recreated.
func (s *SQLiteStore) Save(ctx context.Context, ids []string, limit int) error {
	if err := s.open(); err != nil {
		slog.Warn("History database unusable, recreating", "path", s.path, "error", err)
		if err := s.moveAside(); err != nil {
			return err
		}
		if err := s.open(); err != nil {
			return fmt.Errorf("failed to recreate history database: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO history (id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range Tail(ids, limit) {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) moveAside() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("failed to move corrupt history database: %w", err)
	}
	slog.Warn("Corrupt history database moved aside", "path", s.path, "moved_to", aside)
	return nil
}
