package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolchainEnv_StripsScopedVariables(t *testing.T) {
	tc := Toolchain{
		CC:            "/ndk/bin/aarch64-linux-android24-clang",
		Prefix:        "/build/prefix/arm64",
		PkgConfigPath: "/build/prefix/arm64/lib/pkgconfig",
		Arch:          Architecture{ID: "arm64", Mobile: true},
	}
	base := []string{
		"PATH=/usr/bin",
		"CC=/ndk/bin/armv7a-linux-androideabi24-clang",
		"CPATH=/leak/include",
		"MPV_PREFIX=/build/prefix/armv7",
	}

	env := tc.Env(base)

	assert.Contains(t, env, "PATH=/usr/bin")
	assert.Contains(t, env, "CC=/ndk/bin/aarch64-linux-android24-clang")
	assert.Contains(t, env, "MPV_PREFIX=/build/prefix/arm64")
	assert.Contains(t, env, "MPV_LIB_DIR=/build/prefix/arm64/lib")
	assert.Contains(t, env, "PKG_CONFIG_LIBDIR=/build/prefix/arm64/lib/pkgconfig")
	assert.NotContains(t, env, "CPATH=/leak/include")
	assert.NotContains(t, env, "MPV_PREFIX=/build/prefix/armv7")
	assert.Len(t, base, 4, "base must not be mutated")
}

func TestJob_Keys(t *testing.T) {
	desktop := Job{Platform: "linux", Crate: "plugin", Feature: "stt_local_cpu"}
	mobile := Job{Platform: "android", Crate: "plugin", Feature: "stt_local_cpu", ABI: "arm64-v8a"}

	assert.False(t, desktop.Mobile())
	assert.Equal(t, "linux", desktop.DistPlatform())
	assert.Equal(t, "linux/plugin/stt_local_cpu", desktop.Key())

	assert.True(t, mobile.Mobile())
	assert.Equal(t, "android/arm64-v8a", mobile.DistPlatform())
	assert.Equal(t, "android/arm64-v8a/plugin/stt_local_cpu", mobile.String())
}

func TestRunResult_Record(t *testing.T) {
	var r RunResult
	art := &Artifact{Path: "dist/linux/plugin/x.so"}

	r.Record(JobOutcome{Status: JobSucceeded, Artifact: art})
	r.Record(JobOutcome{Status: JobFailed, Err: errors.New("boom")})

	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	assert.False(t, r.OK())
	assert.Equal(t, []Artifact{*art}, r.Artifacts())
}

func TestErrors(t *testing.T) {
	t.Run("Cycle", func(t *testing.T) {
		err := &CycleError{Path: []string{"a", "b", "a"}}
		assert.ErrorIs(t, err, ErrCycle)
		assert.Contains(t, err.Error(), "a -> b -> a")
	})

	t.Run("Selection Aggregates", func(t *testing.T) {
		err := &SelectionValidationError{Invalid: []InvalidValue{
			{Field: "platform", Value: "beos", Allowed: []string{"linux"}},
			{Field: "feature", Value: "fast", Allowed: []string{"cpu"}},
		}}
		assert.Contains(t, err.Error(), "2 errors")
		assert.Contains(t, err.Error(), `unknown platform "beos"`)
		assert.Contains(t, err.Error(), `unknown feature "fast"`)
	})

	t.Run("Build Execution", func(t *testing.T) {
		cause := errors.New("exit status 2")
		err := &BuildExecutionError{Target: "ffmpeg@arm64", Command: "make", ExitCode: 2, Err: cause}
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "ffmpeg@arm64")
	})
}
