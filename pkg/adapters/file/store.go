package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/mpvbuild/internal/fsutil"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Store implements ports.StampStore using the local filesystem.
// It stores stamps as <BasePath>/<arch>/<recipe>.json.
type Store struct {
	BasePath string
}

var _ ports.StampStore = (*Store)(nil)

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "build/stamps".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join("build", "stamps")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(arch, recipe string) string {
	return filepath.Join(s.BasePath, arch, recipe+".json")
}

// Save persists the stamp atomically.
func (s *Store) Save(ctx context.Context, stamp domain.Stamp) error {
	if stamp.Arch == "" || stamp.Recipe == "" {
		return fmt.Errorf("stamp arch and recipe cannot be empty")
	}

	data, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stamp: %w", err)
	}

	if err := fsutil.WriteFileAtomic(s.path(stamp.Arch, stamp.Recipe), data, 0644); err != nil {
		return fmt.Errorf("failed to write stamp: %w", err)
	}
	return nil
}

// Load retrieves the stamp from its JSON file.
func (s *Store) Load(ctx context.Context, arch, recipe string) (domain.Stamp, error) {
	data, err := os.ReadFile(s.path(arch, recipe))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Stamp{}, domain.ErrStampNotFound
		}
		return domain.Stamp{}, fmt.Errorf("failed to read stamp: %w", err)
	}

	var stamp domain.Stamp
	if err := json.Unmarshal(data, &stamp); err != nil {
		return domain.Stamp{}, fmt.Errorf("failed to unmarshal stamp: %w", err)
	}
	return stamp, nil
}

// Delete removes the stamp file.
func (s *Store) Delete(ctx context.Context, arch, recipe string) error {
	err := os.Remove(s.path(arch, recipe))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete stamp: %w", err)
	}
	return nil
}
