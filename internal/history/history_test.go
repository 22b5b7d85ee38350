package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Path: filepath.Join(t.TempDir(), "history.json")}
}

func TestLoadMissingFileYieldsEmpty(t *testing.T) {
	store := tempStore(t)
	if entries := store.Load(); len(entries) != 0 {
		t.Fatalf("expected empty history, got %v", entries)
	}
}

func TestLoadCorruptFileYieldsEmpty(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.Path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	if entries := store.Load(); len(entries) != 0 {
		t.Fatalf("expected empty history, got %v", entries)
	}
}

func TestTouchInsertsAtFront(t *testing.T) {
	store := tempStore(t)
	dirA := t.TempDir()
	dirB := t.TempDir()

	if err := store.Touch(dirA); err != nil {
		t.Fatalf("touch a: %v", err)
	}
	if err := store.Touch(dirB); err != nil {
		t.Fatalf("touch b: %v", err)
	}

	entries := store.Load()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	if entries[0] != dirB || entries[1] != dirA {
		t.Fatalf("expected most-recent-first order, got %v", entries)
	}
}

func TestTouchMovesExistingToFrontWithoutDuplicating(t *testing.T) {
	store := tempStore(t)
	dirA := t.TempDir()
	dirB := t.TempDir()

	for _, dir := range []string{dirA, dirB, dirA} {
		if err := store.Touch(dir); err != nil {
			t.Fatalf("touch %s: %v", dir, err)
		}
	}

	entries := store.Load()
	if len(entries) != 2 {
		t.Fatalf("expected 2 unique entries, got %v", entries)
	}
	if entries[0] != dirA || entries[1] != dirB {
		t.Fatalf("expected re-touched entry first, got %v", entries)
	}
}

func TestTouchCapsAtMaxEntries(t *testing.T) {
	store := tempStore(t)
	base := t.TempDir()

	for i := 0; i < MaxEntries+5; i++ {
		dir := filepath.Join(base, "dir"+strconv.Itoa(i))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := store.Touch(dir); err != nil {
			t.Fatalf("touch: %v", err)
		}
	}

	entries := store.Load()
	if len(entries) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[0] != filepath.Join(base, "dir"+strconv.Itoa(MaxEntries+4)) {
		t.Fatalf("expected newest entry first, got %v", entries[0])
	}
}

func TestLoadDropsRelativeAndDuplicateEntries(t *testing.T) {
	store := tempStore(t)
	abs := t.TempDir()

	data, err := json.Marshal([]string{abs, "relative/path", abs})
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := os.WriteFile(store.Path, data, 0o644); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	entries := store.Load()
	if len(entries) != 1 || entries[0] != abs {
		t.Fatalf("expected only the absolute entry, got %v", entries)
	}
}

func TestSaveIsPrettyPrintedJSON(t *testing.T) {
	store := tempStore(t)
	dir := t.TempDir()
	if err := store.Touch(dir); err != nil {
		t.Fatalf("touch: %v", err)
	}

	contents, err := os.ReadFile(store.Path)
	if err != nil {
		t.Fatalf("read history file: %v", err)
	}

	var entries []string
	if err := json.Unmarshal(contents, &entries); err != nil {
		t.Fatalf("expected valid JSON array: %v", err)
	}
	if string(contents[0]) != "[" {
		t.Fatalf("expected a top-level array, got %q", contents)
	}
}

func TestClearRemovesFile(t *testing.T) {
	store := tempStore(t)
	if err := store.Touch(t.TempDir()); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(store.Path); !os.IsNotExist(err) {
		t.Fatalf("expected history file removed, stat err=%v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear on missing file should be a no-op: %v", err)
	}
}
