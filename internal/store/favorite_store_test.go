package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryFavoriteStore(t *testing.T) {
	s := NewMemoryFavoriteStore()

	if has, _ := s.Contains("s1"); has {
		t.Fatalf("new store must be empty")
	}
	if err := s.Add("s1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add("s1"); err != nil {
		t.Fatalf("repeated add must be idempotent: %v", err)
	}
	if err := s.Add(" "); err != nil {
		t.Fatalf("blank id must be ignored: %v", err)
	}
	if err := s.Add("s2"); err != nil {
		t.Fatalf("add: %v", err)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Fatalf("expected sorted [s1 s2], got %v", ids)
	}

	if err := s.Remove("s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if has, _ := s.Contains("s1"); has {
		t.Fatalf("expected s1 removed")
	}
	if err := s.Remove("missing"); err != nil {
		t.Fatalf("removing an absent id must not fail: %v", err)
	}
}

func TestFileFavoriteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favorites.json")

	s, err := NewFileFavoriteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Add("s1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add("s2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove("s2"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// Una segunda instancia sobre el mismo archivo ve lo persistido.
	reopened, err := NewFileFavoriteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	ids, err := reopened.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "s1" {
		t.Fatalf("expected [s1], got %v", ids)
	}
}

func TestFileFavoriteStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := NewFileFavoriteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("list must survive corruption: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("corrupt file must read as empty, got %v", ids)
	}
	// Y una escritura posterior deja el archivo sano de nuevo.
	if err := s.Add("s1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if has, _ := s.Contains("s1"); !has {
		t.Fatalf("expected s1 after rewrite")
	}
}

func TestFileFavoriteStoreRequiresPath(t *testing.T) {
	if _, err := NewFileFavoriteStore("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
