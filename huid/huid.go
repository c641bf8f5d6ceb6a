// Package huid persists the set of already imported Hibiscus record ids
// across runs, one id per line in an append-only file.
//
// The store is loaded fully into memory at run start, extended in memory
// during the run, and only the delta is appended at run end. Existing lines
// are never rewritten or compacted. Concurrent invocations against the same
// store are unsafe by design; the importer is a single-invocation batch tool.
package huid

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store holds the set of processed record ids backed by a line file.
type Store struct {
	path string
	seen map[string]struct{}
}

// Open loads the store at path. A missing file is fine (it is created on the
// first append), but a missing parent directory is a fatal configuration
// error.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("huid store directory: %w", err)
	}

	s := &Store{path: path, seen: make(map[string]struct{})}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("huid store: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		s.seen[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("huid store: %w", err)
	}

	return s, nil
}

// Contains reports whether the record id was already imported.
func (s *Store) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of known ids.
func (s *Store) Len() int {
	return len(s.seen)
}

// Append writes the given ids to the backing file, one per line, and records
// them in memory. Ids that are already known are skipped so that reruns never
// produce duplicate lines. The file is created empty first if it does not
// exist yet.
func (s *Store) Append(ids []string) error {
	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		fresh = append(fresh, id)
	}
	if len(fresh) == 0 {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("huid store: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, id := range fresh {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return fmt.Errorf("huid store: %w", err)
		}
		s.seen[id] = struct{}{}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("huid store: %w", err)
	}

	return nil
}
