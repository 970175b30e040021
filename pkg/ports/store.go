package ports

import (
	"context"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

// StampStore persists build stamps so unchanged native recipes can be skipped.
type StampStore interface {
	// Save records the stamp of a successful build.
	Save(ctx context.Context, stamp domain.Stamp) error

	// Load retrieves the stamp for recipe on arch.
	// Returns domain.ErrStampNotFound if none was recorded.
	Load(ctx context.Context, arch, recipe string) (domain.Stamp, error)

	// Delete forgets the stamp for recipe on arch.
	Delete(ctx context.Context, arch, recipe string) error
}
