package memory

import (
	"context"
	"sync"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Store implements ports.StampStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Stamp
	mu   sync.RWMutex
}

var _ ports.StampStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Stamp),
	}
}

func key(arch, recipe string) string {
	return arch + "/" + recipe
}

// Save records the stamp.
func (s *Store) Save(ctx context.Context, stamp domain.Stamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(stamp.Arch, stamp.Recipe)] = stamp
	return nil
}

// Load retrieves the stamp.
func (s *Store) Load(ctx context.Context, arch, recipe string) (domain.Stamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stamp, ok := s.data[key(arch, recipe)]
	if !ok {
		return domain.Stamp{}, domain.ErrStampNotFound
	}
	return stamp, nil
}

// Delete forgets the stamp.
func (s *Store) Delete(ctx context.Context, arch, recipe string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key(arch, recipe))
	return nil
}
