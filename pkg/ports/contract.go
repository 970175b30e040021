package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStampStoreContract runs a suite of tests to verify that a StampStore implementation
// adheres to the defined interface contract.
func RunStampStoreContract(t *testing.T, store StampStore) {
	ctx := context.Background()
	arch := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		stamp := domain.Stamp{Recipe: "freetype", Arch: arch, Digest: "abc123", Revision: "deadbeef"}

		err := store.Save(ctx, stamp)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, arch, "freetype")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, stamp, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Stamp{Recipe: "fribidi", Arch: arch, Digest: "v1"}))
		require.NoError(t, store.Save(ctx, domain.Stamp{Recipe: "fribidi", Arch: arch, Digest: "v2"}))

		loaded, err := store.Load(ctx, arch, "fribidi")
		require.NoError(t, err)
		assert.Equal(t, "v2", loaded.Digest)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, arch, "non-existent")
		assert.ErrorIs(t, err, domain.ErrStampNotFound)
	})

	t.Run("Architectures Are Isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Stamp{Recipe: "harfbuzz", Arch: arch, Digest: "a"}))

		_, err := store.Load(ctx, arch+"-other", "harfbuzz")
		assert.ErrorIs(t, err, domain.ErrStampNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Stamp{Recipe: "libass", Arch: arch, Digest: "x"}))

		err := store.Delete(ctx, arch, "libass")
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, arch, "libass")
		assert.ErrorIs(t, err, domain.ErrStampNotFound, "Load after Delete should return ErrStampNotFound")

		assert.NoError(t, store.Delete(ctx, arch, "libass"), "Delete of a missing stamp is a no-op")
	})
}
