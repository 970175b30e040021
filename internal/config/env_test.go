package config

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFromEnvironment_Defaults(t *testing.T) {
	for _, k := range []string{domain.EnvPrefixRoot, domain.EnvSourceDir, domain.EnvDistDir, domain.EnvRedisAddr, domain.EnvNDKHome, domain.EnvNDKRoot, domain.EnvAndroidAPI} {
		t.Setenv(k, "")
	}

	env := FromEnvironment()
	assert.Equal(t, filepath.Join("build", "prefix"), env.PrefixRoot)
	assert.Equal(t, filepath.Join("build", "src"), env.SourceDir)
	assert.Equal(t, "dist", env.DistDir)
	assert.Empty(t, env.NDKHome)
	assert.Equal(t, domain.DefaultAndroidAPI, env.AndroidAPI)
	assert.Positive(t, env.Jobs)
}

func TestFromEnvironment_Overrides(t *testing.T) {
	t.Setenv(domain.EnvNDKHome, "")
	t.Setenv(domain.EnvNDKRoot, "/opt/ndk")
	t.Setenv(domain.EnvAndroidAPI, "29")
	t.Setenv(domain.EnvDistDir, "out")
	t.Setenv(domain.EnvJobs, "not-a-number")

	env := FromEnvironment()
	assert.Equal(t, "/opt/ndk", env.NDKHome, "ANDROID_NDK_ROOT is the fallback")
	assert.Equal(t, 29, env.AndroidAPI)
	assert.Equal(t, "out", env.DistDir)
	assert.Positive(t, env.Jobs, "invalid JOBS falls back")

	t.Setenv(domain.EnvNDKHome, "/sdk/ndk/27")
	assert.Equal(t, "/sdk/ndk/27", FromEnvironment().NDKHome)
}
