// Package rubric loads and validates scoring rubrics from YAML files.
//
// Rubrics live on disk under <dir>/<project>/<version>.yaml and are validated
// once at load time. A rubric that fails validation never enters the store,
// so downstream scoring code can assume structural integrity.
package rubric

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// Store holds validated rubrics keyed by project and version.
type Store struct {
	mu      sync.RWMutex
	rubrics map[string]*domain.Rubric
}

// NewStore returns an empty rubric store.
func NewStore() *Store {
	return &Store{rubrics: make(map[string]*domain.Rubric)}
}

// LoadDir walks dir recursively and loads every .yaml/.yml file as a rubric.
// The first file that fails to parse or validate aborts the load.
func LoadDir(dir string) (*Store, error) {
	store := NewStore()

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		r, err := LoadFile(path)
		if err != nil {
			return err
		}
		return store.Add(r)
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// LoadFile parses and validates a single rubric file.
func LoadFile(path string) (*domain.Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses rubric YAML and validates it. The name is used in error
// messages only.
func Parse(data []byte, name string) (*domain.Rubric, error) {
	var r domain.Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, domain.NewSchemaError(name, "invalid YAML: %v", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Add validates and registers a rubric. Re-adding the same project/version
// replaces the previous entry.
func (s *Store) Add(r *domain.Rubric) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rubrics[r.Key()] = r
	return nil
}

// Get returns the rubric for a project and version.
func (s *Store) Get(project, version string) (*domain.Rubric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rubrics[project+"/"+version]
	if !ok {
		return nil, domain.NewInputError("no rubric for project %q version %q", project, version)
	}
	return r, nil
}

// Versions returns the loaded versions for a project, unordered.
func (s *Store) Versions(project string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := project + "/"
	var out []string
	for key := range s.rubrics {
		if strings.HasPrefix(key, prefix) {
			out = append(out, strings.TrimPrefix(key, prefix))
		}
	}
	return out
}
