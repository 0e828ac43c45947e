package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mockup/internal/editor"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "designs.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	fileStore, err := OpenFileStore(filepath.Join(t.TempDir(), "designs"))
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	stores := map[string]Store{"sqlite": sqliteStore, "file": fileStore}
	t.Cleanup(func() {
		for name, s := range stores {
			if err := s.Close(); err != nil {
				t.Errorf("close %s: %v", name, err)
			}
		}
	})
	return stores
}

func TestStoreSaveLoad(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Save(ctx, "tee", editor.Document("v1")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Save(ctx, "tee", editor.Document("v2")); err != nil {
				t.Fatalf("save again: %v", err)
			}
			got, err := s.Load(ctx, "tee")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if string(got) != "v2" {
				t.Fatalf("load = %q, want v2", got)
			}
		})
	}
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(context.Background(), "nope")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreRejectsBadIDs(t *testing.T) {
	t.Parallel()

	for name, s := range openStores(t) {
		for _, id := range []string{"", "  ", "../escape", `a\b`, ".."} {
			if err := s.Save(context.Background(), id, editor.Document("x")); err == nil {
				t.Errorf("%s: save %q: expected error", name, id)
			}
		}
	}
}

func TestStoreHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range openStores(t) {
		if err := s.Save(ctx, "tee", editor.Document("x")); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", name, err)
		}
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	t.Parallel()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "designs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	if err := s.Save(ctx, "hoodie", editor.Document("abc")); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(time.Minute)
	if err := s.Save(ctx, "cap", editor.Document("abcdef")); err != nil {
		t.Fatalf("save: %v", err)
	}

	designs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(designs) != 2 {
		t.Fatalf("designs = %d, want 2", len(designs))
	}
	if designs[0].ID != "cap" || designs[0].Size != 6 || !designs[0].UpdatedAt.Equal(now) {
		t.Errorf("first = %+v", designs[0])
	}
	if designs[1].ID != "hoodie" {
		t.Errorf("second = %+v", designs[1])
	}
}

func TestFileStoreListSkipsStrayFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "mug", editor.Document("doc")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "tote", editor.Document("doc")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray: %v", err)
	}

	designs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(designs) != 2 {
		t.Fatalf("designs = %+v, want mug and tote", designs)
	}
	if got := s.Path("mug"); got != filepath.Join(dir, "mug.mockup.yaml") {
		t.Errorf("path = %q", got)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open("postgres", "x"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := OpenSQLite(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
