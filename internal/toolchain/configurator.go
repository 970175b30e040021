package toolchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/aretw0/mpvbuild/internal/fsutil"
	"github.com/aretw0/mpvbuild/internal/logging"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Mobile link flags: safe identical-code-folding and 16 KiB page alignment.
var mobileLDFlags = []string{"-Wl,--icf=safe", "-Wl,-z,max-page-size=16384"}

// Configurator derives an isolated Toolchain for one architecture.
// It holds no per-architecture state between calls.
type Configurator struct {
	runner     ports.CommandRunner
	prefixRoot string
	sdkRoot    string
	api        int
	hostTag    string
	logger     *slog.Logger
}

// Option configures the Configurator.
type Option func(*Configurator)

// WithPrefixRoot sets the directory holding one install prefix per architecture.
func WithPrefixRoot(dir string) Option {
	return func(c *Configurator) {
		c.prefixRoot = dir
	}
}

// WithSDKRoot sets the Android NDK root.
func WithSDKRoot(dir string) Option {
	return func(c *Configurator) {
		c.sdkRoot = dir
	}
}

// WithAPI sets the Android API level.
func WithAPI(api int) Option {
	return func(c *Configurator) {
		c.api = api
	}
}

// WithHostTag overrides the NDK prebuilt host directory (e.g. "linux-x86_64").
func WithHostTag(tag string) Option {
	return func(c *Configurator) {
		c.hostTag = tag
	}
}

// WithLogger configures a logger for the Configurator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Configurator) {
		c.logger = logger
	}
}

// New creates a Configurator. The runner resolves host tools such as pkg-config.
func New(runner ports.CommandRunner, opts ...Option) *Configurator {
	c := &Configurator{
		runner:     runner,
		prefixRoot: filepath.Join("build", "prefix"),
		api:        domain.DefaultAndroidAPI,
		hostTag:    runtime.GOOS + "-x86_64",
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PrefixFor returns the install prefix of an architecture without creating it.
func (c *Configurator) PrefixFor(archID string) (string, error) {
	return filepath.Abs(filepath.Join(c.prefixRoot, archID))
}

// Configure derives the toolchain for archID, prepares its install prefix and
// regenerates the meson and CMake descriptors.
func (c *Configurator) Configure(ctx context.Context, archID string) (domain.Toolchain, error) {
	arch, err := Lookup(archID)
	if err != nil {
		return domain.Toolchain{}, err
	}

	prefix, err := c.PrefixFor(arch.ID)
	if err != nil {
		return domain.Toolchain{}, fmt.Errorf("invalid prefix root: %w", err)
	}

	tc := domain.Toolchain{
		Arch:          arch,
		Prefix:        prefix,
		PkgConfigPath: filepath.Join(prefix, "lib", "pkgconfig") + string(os.PathListSeparator) + filepath.Join(prefix, "share", "pkgconfig"),
		CrossFile:     filepath.Join(prefix, "crossfile.txt"),
		ToolchainFile: filepath.Join(prefix, "toolchain.cmake"),
		CFlags:        []string{"-fPIC", "-O2", "-I" + filepath.Join(prefix, "include")},
		LDFlags:       []string{"-L" + filepath.Join(prefix, "lib")},
	}

	if arch.Mobile {
		if err := c.deriveMobile(&tc); err != nil {
			return domain.Toolchain{}, err
		}
	} else {
		c.deriveDesktop(&tc)
	}

	pkgConfig, err := c.runner.LookPath("pkg-config")
	if err != nil {
		return domain.Toolchain{}, &domain.ToolingPreconditionError{
			Tool: "pkg-config",
			Hint: "install pkg-config or register it in tools.yaml",
			Err:  err,
		}
	}
	tc.PkgConfig = pkgConfig

	if err := EnsurePrefix(prefix); err != nil {
		return domain.Toolchain{}, err
	}

	tc.Fingerprint = fingerprint(tc)

	if err := c.writeDescriptors(tc); err != nil {
		return domain.Toolchain{}, err
	}

	c.logger.Debug("toolchain configured",
		"arch", arch.ID,
		"api", tc.API,
		"cc", tc.CC,
		"prefix", tc.Prefix,
		"fingerprint", tc.Fingerprint[:12],
	)
	return tc, nil
}

func (c *Configurator) deriveMobile(tc *domain.Toolchain) error {
	if c.sdkRoot == "" {
		return &domain.ToolingPreconditionError{
			Tool: "Android NDK",
			Hint: "set " + domain.EnvNDKHome + " to the NDK root directory",
		}
	}
	if info, err := os.Stat(c.sdkRoot); err != nil || !info.IsDir() {
		return &domain.ToolingPreconditionError{
			Tool: "Android NDK",
			Hint: domain.EnvNDKHome + "=" + c.sdkRoot + " is not a directory",
			Err:  err,
		}
	}

	prebuilt := filepath.Join(c.sdkRoot, "toolchains", "llvm", "prebuilt", c.hostTag)
	bin := filepath.Join(prebuilt, "bin")
	if info, err := os.Stat(bin); err != nil || !info.IsDir() {
		return &domain.ToolingPreconditionError{
			Tool: "NDK LLVM toolchain",
			Hint: "expected " + bin,
			Err:  err,
		}
	}

	api := strconv.Itoa(c.api)
	tc.API = c.api
	tc.SDKRoot = c.sdkRoot
	tc.Sysroot = filepath.Join(prebuilt, "sysroot")
	tc.BinDir = bin
	tc.CC = filepath.Join(bin, tc.Arch.ClangTriple+api+"-clang")
	tc.CXX = filepath.Join(bin, tc.Arch.ClangTriple+api+"-clang++")
	tc.AR = filepath.Join(bin, "llvm-ar")
	tc.Ranlib = filepath.Join(bin, "llvm-ranlib")
	tc.Strip = filepath.Join(bin, "llvm-strip")
	tc.NM = filepath.Join(bin, "llvm-nm")
	tc.LD = filepath.Join(bin, "ld.lld")
	tc.LDFlags = append(tc.LDFlags, mobileLDFlags...)
	return nil
}

func (c *Configurator) deriveDesktop(tc *domain.Toolchain) {
	resolve := func(name string) string {
		if path, err := c.runner.LookPath(name); err == nil {
			return path
		}
		return name
	}
	tc.CC = resolve("cc")
	tc.CXX = resolve("c++")
	tc.AR = resolve("ar")
	tc.Ranlib = resolve("ranlib")
	tc.Strip = resolve("strip")
	tc.NM = resolve("nm")
	tc.LD = resolve("ld")
}

func (c *Configurator) writeDescriptors(tc domain.Toolchain) error {
	for path, data := range map[string][]byte{
		tc.CrossFile:     CrossFile(tc),
		tc.ToolchainFile: CMakeToolchainFile(tc),
	} {
		written, err := fsutil.WriteIfChanged(path, data, 0644)
		if err != nil {
			return fmt.Errorf("failed to write descriptor: %w", err)
		}
		if written {
			c.logger.Debug("descriptor regenerated", "path", path)
		}
	}
	return nil
}

// fingerprint hashes every derived field so dependents can detect toolchain changes.
func fingerprint(tc domain.Toolchain) string {
	tc.Fingerprint = ""
	data, _ := json.Marshal(tc)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
