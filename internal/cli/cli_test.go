package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mpvbuild/internal/config"
	"github.com/aretw0/mpvbuild/internal/deps"
	"github.com/aretw0/mpvbuild/pkg/adapters/file"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	return Options{
		DistDir: filepath.Join(root, "dist"),
		Env: config.Env{
			PrefixRoot: filepath.Join(root, "build", "prefix"),
			SourceDir:  filepath.Join(root, "build", "src"),
			DistDir:    filepath.Join(root, "env-dist"),
			AndroidAPI: domain.DefaultAndroidAPI,
			Jobs:       2,
		},
	}
}

func TestOptions(t *testing.T) {
	opts := testOptions(t)
	opts.Platforms = []string{"linux"}
	opts.Check = true

	sel := opts.Selection()
	assert.Equal(t, []string{"linux"}, sel.Platforms)
	assert.True(t, sel.CheckOnly)

	assert.Equal(t, deps.PolicyOnChange, opts.Policy())
	opts.Rebuild = true
	assert.Equal(t, deps.PolicyAlways, opts.Policy())

	assert.Equal(t, opts.DistDir, opts.distDir())
	opts.DistDir = ""
	assert.Equal(t, opts.Env.DistDir, opts.distDir())

	assert.Equal(t, filepath.Join(filepath.Dir(opts.Env.PrefixRoot), "stamps"), opts.stampDir())
}

func TestExecute_ListPrintsSupportedValues(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions(t)
	opts.List = true
	opts.Out = &out

	require.NoError(t, Execute(context.Background(), opts))

	text := out.String()
	assert.Contains(t, text, "platforms: linux (primary), windows, macos, android (mobile)")
	assert.Contains(t, text, "server [mpv-stt-server] (primary only)")
	assert.Contains(t, text, "stt_local_cpu [cpu] (default)")
	assert.Contains(t, text, "stt_local_cuda [cuda] (desktop only)")
	assert.Contains(t, text, "stt_remote_http [remote] (plugin only)")
	assert.Contains(t, text, "abis:      arm64-v8a, armeabi-v7a, x86, x86_64 (default: arm64-v8a, armeabi-v7a)")
	assert.NotContains(t, text, "jobs,")
}

func TestExecute_PlanListsJobs(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions(t)
	opts.Plan = true
	opts.Out = &out
	opts.Platforms = []string{"linux"}
	opts.Crates = []string{"plugin"}
	opts.Features = []string{"cpu", "remote"}

	require.NoError(t, Execute(context.Background(), opts))
	assert.Contains(t, out.String(), "linux/plugin/stt_local_cpu")
	assert.Contains(t, out.String(), "2 jobs, 0 skipped")
}

func TestExecute_PlanRejectsUnknownValues(t *testing.T) {
	opts := testOptions(t)
	opts.Plan = true
	opts.Out = &bytes.Buffer{}
	opts.Platforms = []string{"amiga"}

	err := Execute(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestExecute_PlanWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	opts := testOptions(t)
	opts.Plan = true
	opts.Out = &bytes.Buffer{}
	opts.RedisAddr = mr.Addr()
	opts.Platforms = []string{"linux"}

	assert.NoError(t, Execute(context.Background(), opts))
}

func TestExecuteDeps_UnknownNode(t *testing.T) {
	opts := testOptions(t)
	err := ExecuteDeps(context.Background(), opts, "zlib", "arm64")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestExecuteGraph(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, ExecuteGraph(ctx, &buf, opts, ""))
	assert.Contains(t, buf.String(), "libass --> mpv")
	assert.NotContains(t, buf.String(), "classDef")

	stamps := file.New(opts.stampDir())
	require.NoError(t, stamps.Save(ctx, domain.Stamp{Recipe: "ffmpeg", Arch: "arm64", Digest: "d"}))

	buf.Reset()
	require.NoError(t, ExecuteGraph(ctx, &buf, opts, "arm64"))
	assert.Contains(t, buf.String(), "class ffmpeg installed;")
	assert.NotContains(t, buf.String(), "class libass installed;")

	assert.ErrorIs(t, ExecuteGraph(ctx, &buf, opts, "sparc"), domain.ErrUnknownArchitecture)
}

func TestExecuteManifest(t *testing.T) {
	opts := testOptions(t)
	artifact := filepath.Join(opts.DistDir, "linux", "plugin", "libmpv_stt_plugin_cpu.so")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0755))
	require.NoError(t, os.WriteFile(artifact, []byte("so"), 0644))

	var buf bytes.Buffer
	require.NoError(t, ExecuteManifest(&buf, opts))
	assert.Contains(t, buf.String(), "libmpv_stt_plugin_cpu.so")

	_, err := os.Stat(filepath.Join(opts.DistDir, "MANIFEST.md"))
	assert.NoError(t, err)
}
