package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.StampStore using Redis, so several build hosts
// sharing a prefix cache agree on what was built.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.StampStore = (*Store)(nil)

type Option func(*Store)

// WithTTL sets the expiration for stamps.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stamps.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewClient opens a client for the given address.
func NewClient(address string) *backend.Client {
	return backend.NewClient(&backend.Options{Addr: address})
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "mpvbuild:stamp:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(arch, recipe string) string {
	return s.prefix + arch + ":" + recipe
}

// Save persists the stamp.
func (s *Store) Save(ctx context.Context, stamp domain.Stamp) error {
	data, err := json.Marshal(stamp)
	if err != nil {
		return fmt.Errorf("failed to marshal stamp: %w", err)
	}
	if err := s.client.Set(ctx, s.key(stamp.Arch, stamp.Recipe), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the stamp.
func (s *Store) Load(ctx context.Context, arch, recipe string) (domain.Stamp, error) {
	val, err := s.client.Get(ctx, s.key(arch, recipe)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Stamp{}, domain.ErrStampNotFound
		}
		return domain.Stamp{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var stamp domain.Stamp
	if err := json.Unmarshal([]byte(val), &stamp); err != nil {
		return domain.Stamp{}, fmt.Errorf("failed to unmarshal stamp: %w", err)
	}
	return stamp, nil
}

// Delete removes the stamp.
func (s *Store) Delete(ctx context.Context, arch, recipe string) error {
	return s.client.Del(ctx, s.key(arch, recipe)).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
