package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/mpvbuild/pkg/adapters/memory"
	"github.com/aretw0/mpvbuild/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStampStoreContract(t, store)
}

func TestMemoryLocker(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "arm64", time.Minute)
	require.NoError(t, err)

	t.Run("Contention Times Out", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(waitCtx, "arm64", time.Minute)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Other Keys Are Independent", func(t *testing.T) {
		other, err := locker.Lock(ctx, "x86", time.Minute)
		require.NoError(t, err)
		assert.NoError(t, other(ctx))
	})

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "double unlock is harmless")

	again, err := locker.Lock(ctx, "arm64", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, again(ctx))
}
