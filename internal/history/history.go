package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// MaxEntries caps the number of remembered destination folders.
const MaxEntries = 10

// Store persists the most-recently-used destination folders as a JSON array
// of absolute paths, newest first.
type Store struct {
	Path   string
	Logger *log.Logger
}

// Load reads the history file. A missing or corrupt file yields an empty
// history; that is logged but never fatal.
func (s *Store) Load() []string {
	contents, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logf("read history: %v", err)
		}
		return nil
	}

	var entries []string
	if err := json.Unmarshal(contents, &entries); err != nil {
		s.logf("history file corrupt, starting fresh: %v", err)
		return nil
	}
	return normalize(entries)
}

// Touch records folder as the most recently used entry. An already-known
// folder moves to the front; the list is capped at MaxEntries. The write
// replaces the whole file atomically.
func (s *Store) Touch(folder string) error {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("resolve folder: %w", err)
	}
	abs = filepath.Clean(abs)

	entries := []string{abs}
	for _, entry := range s.Load() {
		if entry == abs {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	return s.save(entries)
}

// Clear removes the history file.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

func (s *Store) save(entries []string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// normalize drops relative paths and duplicates, preserving order, and
// enforces the entry cap. Guards against hand-edited files.
func normalize(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !filepath.IsAbs(entry) {
			continue
		}
		clean := filepath.Clean(entry)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

func (s *Store) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
