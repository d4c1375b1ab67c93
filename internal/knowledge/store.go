// Package knowledge holds per-project ground-truth facts used to validate
// factual claims in evaluator responses.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/domain"
)

// Fact is one ground-truth value. Accepted lists alternative phrasings that
// count as a match alongside Value.
type Fact struct {
	Value    string   `json:"value"`
	Accepted []string `json:"accepted,omitempty"`
}

// Matches reports whether a claimed value agrees with the fact. Comparison is
// case-insensitive with surrounding whitespace ignored.
func (f Fact) Matches(claimed string) bool {
	c := normalize(claimed)
	if c == normalize(f.Value) {
		return true
	}
	for _, alt := range f.Accepted {
		if c == normalize(alt) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Store maps (project, key) to a fact. Lookups are O(1).
type Store struct {
	mu    sync.RWMutex
	facts map[string]Fact
}

// NewStore returns an empty knowledge store.
func NewStore() *Store {
	return &Store{facts: make(map[string]Fact)}
}

// LoadFile reads a JSON knowledge file shaped as
// {"project": {"key": {"value": "...", "accepted": [...]}}}.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file %s: %w", path, err)
	}

	var raw map[string]map[string]Fact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.NewSchemaError(path, "invalid knowledge JSON: %v", err)
	}

	s := NewStore()
	for project, facts := range raw {
		for key, fact := range facts {
			if strings.TrimSpace(fact.Value) == "" {
				return nil, domain.NewSchemaError(path, "project %q key %q has empty value", project, key)
			}
			s.Set(project, key, fact)
		}
	}
	return s, nil
}

// Set registers or replaces a fact.
func (s *Store) Set(project, key string, fact Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[project+"\x00"+key] = fact
}

// Lookup returns the fact for a project key, if present.
func (s *Store) Lookup(project, key string) (Fact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facts[project+"\x00"+key]
	return f, ok
}

// Keys returns all fact keys registered for a project, unordered.
func (s *Store) Keys(project string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := project + "\x00"
	var out []string
	for k := range s.facts {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	return out
}
