package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	seen, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if seen.Len() != 0 {
		t.Errorf("Expected empty history on a fresh database, got: %d", seen.Len())
	}

	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("https://example.com/%d", i)
	}

	if err := store.Save(ctx, ids, 5); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	got := loaded.IDs()
	if len(got) != 5 {
		t.Fatalf("Expected 5 ids, got: %d", len(got))
	}
	for i, id := range got {
		if id != ids[3+i] {
			t.Errorf("Expected %s at position %d, got: %s", ids[3+i], i, id)
		}
	}
}

func TestSQLiteStoreCorruptDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite database, just some bytes padding it out"), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	seen, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Expected corruption to be tolerated, got: %v", err)
	}
	if seen.Len() != 0 {
		t.Errorf("Expected empty history, got: %d", seen.Len())
	}

	if err := store.Save(ctx, []string{"https://example.com/1"}, 10); err != nil {
		t.Fatalf("Expected save to recreate the database, got: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Has("https://example.com/1") {
		t.Errorf("Expected saved id after recreation, got: %v", loaded.IDs())
	}
}
