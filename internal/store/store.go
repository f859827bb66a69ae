// Package store persists project records as flat JSON files, one
// <project>.json per project under a shared directory. The whole record is
// read and written in one piece; the file is the source of truth and the
// later of two concurrent writes wins in full.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imkarma/relay/internal/state"
)

// Store is the flat-file record store.
type Store struct {
	dir string
}

// Open creates the data directory if needed and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a record exists for the project.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Load reads a whole project record. Unknown projects wrap state.ErrNotFound.
func (s *Store) Load(id string) (*state.Project, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("project %q: %w", id, state.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read project %q: %w", id, err)
	}
	var p state.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %q: %w", id, err)
	}
	return &p, nil
}

// Save writes a whole project record, overwriting any previous version. The
// write goes to a temp file first and is renamed into place so readers never
// see a half-written record.
func (s *Store) Save(p *state.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project %q: %w", p.ID, err)
	}
	path := s.path(p.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write project %q: %w", p.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write project %q: %w", p.ID, err)
	}
	return nil
}

// Summary is one row of the project listing.
type Summary struct {
	ID     string
	Mode   state.Mode
	Status state.ProjectStatus
	Goal   string
	Done   int
	Total  int
	Err    bool // record exists but could not be read
}

// List returns a summary per project file, sorted by ID. Unreadable records
// are flagged rather than skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		p, err := s.Load(id)
		if err != nil {
			out = append(out, Summary{ID: id, Err: true})
			continue
		}
		done, total := p.Progress()
		out = append(out, Summary{
			ID:     id,
			Mode:   p.Mode,
			Status: p.Status,
			Goal:   p.Goal,
			Done:   done,
			Total:  total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
