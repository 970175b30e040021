package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Architecture is a target instruction set that needs its own compiler and library set.
type Architecture struct {
	ID          string // e.g. "arm64", "desktop-x64"
	ABI         string // Android ABI name, empty for desktop
	ClangTriple string // prefix of the NDK clang wrappers, e.g. "armv7a-linux-androideabi"
	HostTriple  string // GNU host triple passed to configure scripts
	RustTarget  string
	CPUFamily   string // meson cpu_family
	CPU         string // meson cpu
	Processor   string // CMAKE_SYSTEM_PROCESSOR
	Mobile      bool
}

// Toolchain is the compiler configuration derived for one Architecture.
// It is built from scratch for every job and never mutated afterwards.
type Toolchain struct {
	Arch      Architecture
	API       int
	SDKRoot   string
	Sysroot   string
	BinDir    string
	CC        string
	CXX       string
	AR        string
	Ranlib    string
	Strip     string
	NM        string
	LD        string
	PkgConfig string
	CFlags    []string
	LDFlags   []string

	Prefix        string
	PkgConfigPath string
	CrossFile     string
	ToolchainFile string

	Fingerprint string
}

// Vars returns the toolchain's architecture-scoped variables.
func (t Toolchain) Vars() map[string]string {
	vars := map[string]string{
		"CC":              t.CC,
		"CXX":             t.CXX,
		"AR":              t.AR,
		"RANLIB":          t.Ranlib,
		"STRIP":           t.Strip,
		"NM":              t.NM,
		"LD":              t.LD,
		"CFLAGS":          strings.Join(t.CFlags, " "),
		"CXXFLAGS":        strings.Join(t.CFlags, " "),
		"LDFLAGS":         strings.Join(t.LDFlags, " "),
		"PKG_CONFIG_PATH": t.PkgConfigPath,
		"MPV_PREFIX":      t.Prefix,
		"MPV_LIB_DIR":     t.Prefix + "/lib",
	}
	if t.Arch.Mobile {
		vars["PKG_CONFIG_LIBDIR"] = t.PkgConfigPath
		vars["PKG_CONFIG_SYSROOT_DIR"] = ""
	}
	return vars
}

// Env returns base with every architecture-scoped variable removed and the
// toolchain's own values appended, sorted by key for stable output.
func (t Toolchain) Env(base []string) []string {
	env := ScrubEnv(base)

	vars := t.Vars()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

// ScrubEnv returns a copy of base without any architecture-scoped variable.
func ScrubEnv(base []string) []string {
	scoped := make(map[string]bool, len(ScopedEnvKeys))
	for _, k := range ScopedEnvKeys {
		scoped[k] = true
	}

	env := make([]string, 0, len(base)+len(ScopedEnvKeys))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if !scoped[key] {
			env = append(env, kv)
		}
	}
	return env
}

// ExpandVars is the variable set available to recipe options.
func (t Toolchain) ExpandVars() map[string]string {
	vars := t.Vars()
	vars["PREFIX"] = t.Prefix
	vars["HOST"] = t.Arch.HostTriple
	vars["ARCH"] = t.Arch.ID
	vars["ABI"] = t.Arch.ABI
	vars["CPU_FAMILY"] = t.Arch.CPUFamily
	vars["CPU"] = t.Arch.CPU
	vars["API"] = strconv.Itoa(t.API)
	vars["SYSROOT"] = t.Sysroot
	vars["CROSS_FILE"] = t.CrossFile
	vars["TOOLCHAIN_FILE"] = t.ToolchainFile
	vars["SDK_ROOT"] = t.SDKRoot
	return vars
}
