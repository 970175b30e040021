package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mpvbuild/internal/testutils"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cloningRunner simulates git: clone creates the destination with a .git dir
// and a clean tree whose origin is testSource.
func cloningRunner(rev string) *testutils.FakeRunner {
	runner := testutils.NewFakeRunner()
	runner.Outputs["git rev-parse"] = rev
	runner.Outputs["git remote"] = testSource.URL
	runner.OnRun = func(c ports.Command) error {
		if c.Name == "git" && c.Args[0] == "clone" {
			return os.MkdirAll(filepath.Join(c.Args[len(c.Args)-1], ".git"), 0755)
		}
		return nil
	}
	return runner
}

var testSource = domain.Source{URL: "https://example.com/mpv.git", Ref: "v0.39.0", EnvURL: domain.EnvMPVRepoURL}

func TestEnsure_ClonesAndPins(t *testing.T) {
	srcDir := t.TempDir()
	runner := cloningRunner("aaaa")
	f := New(runner, srcDir, WithLookupEnv(func(string) (string, bool) { return "", false }))

	dir, rev, err := f.Ensure(context.Background(), "mpv", testSource, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(srcDir, "mpv"), dir)
	assert.Equal(t, "aaaa", rev)

	clone := runner.Recorded()[0]
	assert.Equal(t, []string{"clone", "--depth", "1", "--branch", "v0.39.0", "https://example.com/mpv.git", dir}, clone.Args)
	assert.Contains(t, clone.Env, "GIT_TERMINAL_PROMPT=0")

	lock, err := ReadLock(f.LockPath())
	require.NoError(t, err)
	assert.Equal(t, LockEntry{URL: testSource.URL, Ref: "v0.39.0", Revision: "aaaa"}, lock.Sources["mpv"])
}

func TestEnsure_ReusesExistingTree(t *testing.T) {
	srcDir := t.TempDir()
	runner := cloningRunner("aaaa")
	f := New(runner, srcDir)
	ctx := context.Background()

	_, _, err := f.Ensure(ctx, "mpv", testSource, nil)
	require.NoError(t, err)
	_, _, err = f.Ensure(ctx, "mpv", testSource, nil)
	require.NoError(t, err)

	clones := 0
	for _, c := range runner.Recorded() {
		if c.Args[0] == "clone" {
			clones++
		}
	}
	assert.Equal(t, 1, clones)
}

func TestEnsure_EnvOverride(t *testing.T) {
	runner := cloningRunner("bbbb")
	f := New(runner, t.TempDir(), WithLookupEnv(func(key string) (string, bool) {
		if key == domain.EnvMPVRepoURL {
			return "https://mirror.local/mpv.git", true
		}
		return "", false
	}))

	_, _, err := f.Ensure(context.Background(), "mpv", testSource, nil)
	require.NoError(t, err)
	assert.Contains(t, runner.Recorded()[0].Args, "https://mirror.local/mpv.git")
}

func TestEnsure_Verification(t *testing.T) {
	ctx := context.Background()

	t.Run("Drift Is Tolerated By Default", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		_, rev, err := New(cloningRunner("cccc"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)
		assert.Equal(t, "cccc", rev)
	})

	t.Run("Drift Fails When Verifying", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		_, _, err = New(cloningRunner("cccc"), srcDir, WithVerify(true)).Ensure(ctx, "mpv", testSource, nil)
		assert.ErrorIs(t, err, domain.ErrSourceMismatch)
	})

	t.Run("Pinned Tree Passes Verification", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		runner := cloningRunner("aaaa")
		_, rev, err := New(runner, srcDir, WithVerify(true)).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)
		assert.Equal(t, "aaaa", rev)
		var inspected [][]string
		for _, c := range runner.Recorded() {
			inspected = append(inspected, c.Args)
		}
		assert.Contains(t, inspected, []string{"status", "--porcelain"})
		assert.Contains(t, inspected, []string{"remote", "get-url", "origin"})
	})

	t.Run("Local Modifications Fail When Verifying", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		dirty := cloningRunner("aaaa")
		dirty.Outputs["git status"] = " M player/main.c"
		_, _, err = New(dirty, srcDir, WithVerify(true)).Ensure(ctx, "mpv", testSource, nil)
		assert.ErrorIs(t, err, domain.ErrSourceMismatch)

		_, _, err = New(dirty, srcDir).Ensure(ctx, "mpv", testSource, nil)
		assert.NoError(t, err, "modifications are only checked when verifying")
	})

	t.Run("Changed URL Fails When Verifying", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		mirror := WithLookupEnv(func(key string) (string, bool) {
			return "https://mirror.local/mpv.git", key == domain.EnvMPVRepoURL
		})
		_, _, err = New(cloningRunner("aaaa"), srcDir, WithVerify(true), mirror).Ensure(ctx, "mpv", testSource, nil)
		assert.ErrorIs(t, err, domain.ErrSourceMismatch)

		_, _, err = New(cloningRunner("aaaa"), srcDir, mirror).Ensure(ctx, "mpv", testSource, nil)
		assert.NoError(t, err, "a changed URL only warns by default")
	})

	t.Run("Foreign Origin Fails When Verifying", func(t *testing.T) {
		srcDir := t.TempDir()
		_, _, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)

		foreign := cloningRunner("aaaa")
		foreign.Outputs["git remote"] = "https://elsewhere.example/mpv.git"
		_, _, err = New(foreign, srcDir, WithVerify(true)).Ensure(ctx, "mpv", testSource, nil)
		assert.ErrorIs(t, err, domain.ErrSourceMismatch)
	})

	t.Run("Plain Directory Fails When Verifying", func(t *testing.T) {
		srcDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "mpv"), 0755))

		_, _, err := New(cloningRunner("aaaa"), srcDir, WithVerify(true)).Ensure(ctx, "mpv", testSource, nil)
		assert.ErrorIs(t, err, domain.ErrSourceMismatch)

		dir, rev, err := New(cloningRunner("aaaa"), srcDir).Ensure(ctx, "mpv", testSource, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(srcDir, "mpv"), dir)
		assert.Empty(t, rev)
	})
}

func TestEnsure_FailedCloneLeavesNoTree(t *testing.T) {
	srcDir := t.TempDir()
	runner := testutils.NewFakeRunner()
	runner.OnRun = func(c ports.Command) error {
		return os.MkdirAll(c.Args[len(c.Args)-1], 0755)
	}
	runner.FailWhen = func(c ports.Command) bool { return c.Args[0] == "clone" }

	_, _, err := New(runner, srcDir).Ensure(context.Background(), "ffmpeg", domain.Source{URL: "https://example.com/ffmpeg.git"}, nil)

	var execErr *domain.BuildExecutionError
	require.ErrorAs(t, err, &execErr)
	_, statErr := os.Stat(filepath.Join(srcDir, "ffmpeg"))
	assert.True(t, os.IsNotExist(statErr))
}
