package domain

// Environment variables read by the orchestrator.
const (
	EnvNDKHome       = "ANDROID_NDK_HOME"
	EnvNDKRoot       = "ANDROID_NDK_ROOT"
	EnvAndroidAPI    = "ANDROID_API"
	EnvMPVRepoURL    = "MPV_REPO_URL"
	EnvFFmpegRepoURL = "FFMPEG_REPO_URL"
	EnvPrefixRoot    = "MPVBUILD_PREFIX_ROOT"
	EnvSourceDir     = "MPVBUILD_SRC_DIR"
	EnvDistDir       = "MPVBUILD_DIST_DIR"
	EnvRedisAddr     = "MPVBUILD_REDIS_ADDR"
	EnvJobs          = "JOBS"
)

// DefaultAndroidAPI is the minimum Android API level targeted when ANDROID_API is unset.
const DefaultAndroidAPI = 24

// PlayerCore is the recipe every mobile job needs in its prefix.
const PlayerCore = "mpv"

// ScopedEnvKeys lists the variables that belong to one architecture.
// They are never inherited from the parent process into a toolchain environment.
var ScopedEnvKeys = []string{
	"CC", "CXX", "AR", "RANLIB", "STRIP", "NM", "LD",
	"CFLAGS", "CXXFLAGS", "CPPFLAGS", "LDFLAGS",
	"CPATH", "C_INCLUDE_PATH", "CPLUS_INCLUDE_PATH", "LIBRARY_PATH",
	"PKG_CONFIG_PATH", "PKG_CONFIG_LIBDIR", "PKG_CONFIG_SYSROOT_DIR",
	"MPV_PREFIX", "MPV_LIB_DIR",
}
