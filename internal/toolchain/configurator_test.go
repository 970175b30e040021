package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/mpvbuild/internal/testutils"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHostTag = "linux-x86_64"

func newTestConfigurator(t *testing.T, ndk string) (*Configurator, string) {
	t.Helper()
	prefixRoot := filepath.Join(t.TempDir(), "prefix")
	return New(testutils.NewFakeRunner(),
		WithPrefixRoot(prefixRoot),
		WithSDKRoot(ndk),
		WithAPI(24),
		WithHostTag(testHostTag),
	), prefixRoot
}

func TestConfigure_Mobile(t *testing.T) {
	ndk := testutils.FakeNDK(t, testHostTag)
	c, prefixRoot := newTestConfigurator(t, ndk)

	tc, err := c.Configure(context.Background(), "armv7")
	require.NoError(t, err)

	bin := filepath.Join(ndk, "toolchains", "llvm", "prebuilt", testHostTag, "bin")
	assert.Equal(t, filepath.Join(bin, "armv7a-linux-androideabi24-clang"), tc.CC)
	assert.Equal(t, filepath.Join(bin, "armv7a-linux-androideabi24-clang++"), tc.CXX)
	assert.Equal(t, filepath.Join(bin, "llvm-ar"), tc.AR)
	assert.Equal(t, "arm-linux-androideabi", tc.Arch.HostTriple)
	assert.Contains(t, tc.LDFlags, "-Wl,-z,max-page-size=16384")

	absRoot, _ := filepath.Abs(prefixRoot)
	assert.Equal(t, filepath.Join(absRoot, "armv7"), tc.Prefix)
	assert.True(t, strings.HasPrefix(tc.PkgConfigPath, filepath.Join(tc.Prefix, "lib", "pkgconfig")))
	assert.NotEmpty(t, tc.Fingerprint)

	cross, err := os.ReadFile(tc.CrossFile)
	require.NoError(t, err)
	assert.Contains(t, string(cross), "cpu_family = 'arm'")
	assert.Contains(t, string(cross), "system = 'android'")

	cmake, err := os.ReadFile(tc.ToolchainFile)
	require.NoError(t, err)
	assert.Contains(t, string(cmake), "CMAKE_ANDROID_ARCH_ABI armeabi-v7a")
}

func TestConfigure_Desktop(t *testing.T) {
	c, _ := newTestConfigurator(t, "")

	tc, err := c.Configure(context.Background(), DesktopArch)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/cc", tc.CC)
	assert.False(t, tc.Arch.Mobile)
	assert.NotContains(t, tc.LDFlags, "-Wl,-z,max-page-size=16384")
}

func TestConfigure_IsolationBetweenArchitectures(t *testing.T) {
	ndk := testutils.FakeNDK(t, testHostTag)
	c, _ := newTestConfigurator(t, ndk)
	ctx := context.Background()

	first, err := c.Configure(ctx, "arm64")
	require.NoError(t, err)

	_, err = c.Configure(ctx, "armv7")
	require.NoError(t, err)

	again, err := c.Configure(ctx, "arm64")
	require.NoError(t, err)

	assert.Equal(t, first, again, "configuring another architecture must not leak into arm64")

	env := again.Env([]string{"CC=/leaked/armv7-clang", "LDFLAGS=-Lnowhere", "HOME=/home/user"})
	cc, _ := testutils.EnvValue(env, "CC")
	assert.Equal(t, first.CC, cc)
	ldflags, _ := testutils.EnvValue(env, "LDFLAGS")
	assert.NotContains(t, ldflags, "nowhere")
	home, ok := testutils.EnvValue(env, "HOME")
	assert.True(t, ok)
	assert.Equal(t, "/home/user", home)
}

func TestConfigure_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown Architecture", func(t *testing.T) {
		c, _ := newTestConfigurator(t, "")
		_, err := c.Configure(ctx, "mips")
		assert.ErrorIs(t, err, domain.ErrUnknownArchitecture)
	})

	t.Run("NDK Unset", func(t *testing.T) {
		c, _ := newTestConfigurator(t, "")
		_, err := c.Configure(ctx, "arm64")

		var pre *domain.ToolingPreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Contains(t, err.Error(), domain.EnvNDKHome)
	})

	t.Run("NDK Without Toolchain", func(t *testing.T) {
		c, _ := newTestConfigurator(t, t.TempDir())
		_, err := c.Configure(ctx, "arm64")

		var pre *domain.ToolingPreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Equal(t, "NDK LLVM toolchain", pre.Tool)
	})

	t.Run("Missing pkg-config", func(t *testing.T) {
		runner := testutils.NewFakeRunner()
		runner.Missing["pkg-config"] = true
		c := New(runner, WithPrefixRoot(t.TempDir()))

		_, err := c.Configure(ctx, DesktopArch)
		var pre *domain.ToolingPreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Equal(t, "pkg-config", pre.Tool)
	})
}

func TestConfigure_DescriptorsWrittenOnlyWhenChanged(t *testing.T) {
	ndk := testutils.FakeNDK(t, testHostTag)
	c, _ := newTestConfigurator(t, ndk)
	ctx := context.Background()

	tc, err := c.Configure(ctx, "arm64")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(tc.CrossFile, past, past))

	_, err = c.Configure(ctx, "arm64")
	require.NoError(t, err)

	info, err := os.Stat(tc.CrossFile)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "unchanged descriptor must keep its mtime")
}

func TestEnsurePrefix_Idempotent(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "arm64")

	require.NoError(t, EnsurePrefix(prefix))
	require.NoError(t, EnsurePrefix(prefix), "second call must not fail on existing aliases")

	for _, name := range []string{"usr", "local", "lib64"} {
		info, err := os.Lstat(filepath.Join(prefix, name))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&os.ModeSymlink, "%s should be a symlink", name)
	}

	// Files installed through an alias land in the real prefix.
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "usr", "local", "lib64", "libx.a"), nil, 0644))
	_, err := os.Stat(filepath.Join(prefix, "lib", "libx.a"))
	assert.NoError(t, err)
}

func TestLookupAndABI(t *testing.T) {
	arch, err := ForABI("arm64-v8a")
	require.NoError(t, err)
	assert.Equal(t, "arm64", arch.ID)

	_, err = ForABI("mips")
	assert.ErrorIs(t, err, domain.ErrUnknownArchitecture)

	assert.Contains(t, IDs(), DesktopArch)
}
