package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

// GetString retrieves an environment variable or returns a fallback when unset or empty.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}

// Env holds the environment inputs of a run.
type Env struct {
	PrefixRoot string
	SourceDir  string
	DistDir    string
	RedisAddr  string
	NDKHome    string
	AndroidAPI int
	Jobs       int
}

// FromEnvironment reads Env from the process environment.
func FromEnvironment() Env {
	return Env{
		PrefixRoot: GetString(domain.EnvPrefixRoot, filepath.Join("build", "prefix")),
		SourceDir:  GetString(domain.EnvSourceDir, filepath.Join("build", "src")),
		DistDir:    GetString(domain.EnvDistDir, "dist"),
		RedisAddr:  GetString(domain.EnvRedisAddr, ""),
		NDKHome:    GetString(domain.EnvNDKHome, GetString(domain.EnvNDKRoot, "")),
		AndroidAPI: GetInt(domain.EnvAndroidAPI, domain.DefaultAndroidAPI),
		Jobs:       GetInt(domain.EnvJobs, runtime.NumCPU()),
	}
}
