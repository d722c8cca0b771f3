package store

import (
	"context"
	"path/filepath"
	"testing"

	"poimap/pkg/db"
)

func TestSQLiteStore(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	defer d.Close()

	store := NewSQLiteStore(d)
	ctx := context.Background()

	testState(t, ctx, store)
	testStateOverwrite(t, ctx, store)
	testStateDelete(t, ctx, store)
}

func testState(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("State", func(t *testing.T) {
		if _, hit := store.GetState(ctx, "missing"); hit {
			t.Error("Expected miss for unknown key")
		}
		if err := store.SetState(ctx, "my_key", "my_val"); err != nil {
			t.Errorf("SetState failed: %v", err)
		}
		sVal, sHit := store.GetState(ctx, "my_key")
		if !sHit {
			t.Error("Expected state hit")
		}
		if sVal != "my_val" {
			t.Errorf("Expected 'my_val', got '%s'", sVal)
		}
	})
}

func testStateOverwrite(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Overwrite", func(t *testing.T) {
		_ = store.SetState(ctx, "show_featured", "true")
		_ = store.SetState(ctx, "show_featured", "false")
		val, hit := store.GetState(ctx, "show_featured")
		if !hit || val != "false" {
			t.Errorf("Expected 'false', got '%s' (hit=%v)", val, hit)
		}
	})
}

func testStateDelete(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Delete", func(t *testing.T) {
		_ = store.SetState(ctx, "tmp", "1")
		if err := store.DeleteState(ctx, "tmp"); err != nil {
			t.Fatalf("DeleteState failed: %v", err)
		}
		if _, hit := store.GetState(ctx, "tmp"); hit {
			t.Error("Expected miss after delete")
		}
	})
}
