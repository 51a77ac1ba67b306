package learner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned when a store has no profile for the requested id.
var ErrNotFound = errors.New("student not found")

// Store supplies student profiles.
type Store interface {
	Get(ctx context.Context, id string) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
}

// MemoryStore is an in-memory Store, usually filled from the catalog's
// student progress records.
type MemoryStore struct {
	profiles map[string]Profile
	order    []string
	mu       sync.RWMutex
}

// NewMemoryStore creates a store holding the given profiles. Later duplicates
// of an id replace earlier ones but keep the first position.
func NewMemoryStore(profiles ...Profile) *MemoryStore {
	s := &MemoryStore{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		s.put(p)
	}
	return s
}

// Put adds or replaces a profile.
func (s *MemoryStore) Put(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(p)
}

func (s *MemoryStore) put(p Profile) {
	if _, ok := s.profiles[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.profiles[p.ID] = p.Clone()
}

func (s *MemoryStore) Get(_ context.Context, id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id].Clone())
	}
	return out, nil
}

// IDs returns the known student ids, sorted.
func IDs(ctx context.Context, s Store) ([]string, error) {
	profiles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids, nil
}
