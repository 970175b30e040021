package deps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/aretw0/mpvbuild/internal/logging"
	"github.com/aretw0/mpvbuild/pkg/adapters/memory"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/observability"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Policy decides when an already-installed node is rebuilt.
type Policy int

const (
	// PolicyOnChange rebuilds a node only when its stamp digest changed or
	// its probe file is missing from the prefix.
	PolicyOnChange Policy = iota
	// PolicyAlways clean-rebuilds every node.
	PolicyAlways
)

func (p Policy) String() string {
	if p == PolicyAlways {
		return "always"
	}
	return "on-change"
}

// SourceFetcher makes a recipe's source tree available locally.
type SourceFetcher interface {
	Ensure(ctx context.Context, name string, src domain.Source, out io.Writer) (dir, revision string, err error)
}

// Builder builds a node of the graph and its prerequisites into a toolchain's prefix.
type Builder struct {
	graph     *Graph
	runner    ports.CommandRunner
	fetcher   SourceFetcher
	stamps    ports.StampStore
	systems   map[string]BuildSystem
	policy    Policy
	skipDeps  bool
	buildRoot string
	jobs      int
	baseEnv   []string
	out       io.Writer
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures the Builder.
type Option func(*Builder)

// WithStampStore sets where build stamps are persisted.
func WithStampStore(store ports.StampStore) Option {
	return func(b *Builder) {
		b.stamps = store
	}
}

// WithPolicy sets the rebuild policy.
func WithPolicy(p Policy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithSkipDeps builds only the requested node, assuming its prerequisites are installed.
func WithSkipDeps(skip bool) Option {
	return func(b *Builder) {
		b.skipDeps = skip
	}
}

// WithBuildRoot sets the directory holding per-architecture build trees.
func WithBuildRoot(dir string) Option {
	return func(b *Builder) {
		b.buildRoot = dir
	}
}

// WithJobs sets the parallelism passed to make and ninja.
func WithJobs(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.jobs = n
		}
	}
}

// WithBaseEnv sets the environment the toolchain variables are layered onto.
func WithBaseEnv(env []string) Option {
	return func(b *Builder) {
		b.baseEnv = env
	}
}

// WithOutput sets where build tool output is streamed.
func WithOutput(w io.Writer) Option {
	return func(b *Builder) {
		b.out = w
	}
}

// WithMetrics records per-node outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// WithSystems replaces the build system registry.
func WithSystems(systems map[string]BuildSystem) Option {
	return func(b *Builder) {
		b.systems = systems
	}
}

// WithLogger configures a logger for the Builder.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder over graph.
func NewBuilder(graph *Graph, runner ports.CommandRunner, fetcher SourceFetcher, opts ...Option) *Builder {
	b := &Builder{
		graph:     graph,
		runner:    runner,
		fetcher:   fetcher,
		stamps:    memory.NewStore(),
		systems:   Systems(),
		buildRoot: filepath.Join("build", "work"),
		jobs:      runtime.NumCPU(),
		baseEnv:   os.Environ(),
		out:       io.Discard,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build installs name and, unless skip-deps is set, its transitive
// prerequisites into tc's prefix. The first failure aborts the chain;
// nodes installed before it stay in the prefix.
func (b *Builder) Build(ctx context.Context, name string, tc domain.Toolchain) error {
	if _, err := b.graph.Recipe(name); err != nil {
		return err
	}

	order := []string{name}
	if !b.skipDeps {
		var err error
		if order, err = b.graph.Order(name); err != nil {
			return err
		}
	}

	b.logger.Info("building native dependencies", "target", name, "arch", tc.Arch.ID, "nodes", len(order), "policy", b.policy)

	digests := make(map[string]string, len(order))
	for _, node := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		digest, err := b.buildNode(ctx, node, tc, digests)
		if err != nil {
			return err
		}
		digests[node] = digest
	}
	return nil
}

func (b *Builder) buildNode(ctx context.Context, name string, tc domain.Toolchain, digests map[string]string) (string, error) {
	recipe, _ := b.graph.Recipe(name)
	arch := tc.Arch.ID
	logger := b.logger.With("node", name, "arch", arch)

	srcDir, revision, err := b.fetcher.Ensure(ctx, name, recipe.Source, b.out)
	if err != nil {
		b.metrics.ObserveNativeBuild(name, arch, observability.OutcomeFailed)
		return "", fmt.Errorf("failed to fetch %s: %w", name, err)
	}

	prereqs := make([]string, 0, len(recipe.Requires))
	for _, req := range recipe.Requires {
		d, ok := digests[req]
		if !ok {
			// Skip-deps: trust whatever was installed last.
			if stamp, err := b.stamps.Load(ctx, arch, req); err == nil {
				d = stamp.Digest
			}
		}
		prereqs = append(prereqs, req+"="+d)
	}
	digest := Digest(recipe, revision, tc.Fingerprint, prereqs)

	if b.policy == PolicyOnChange && b.upToDate(ctx, recipe, tc, digest) {
		logger.Debug("node up to date")
		b.metrics.ObserveNativeBuild(name, arch, observability.OutcomeSkipped)
		return digest, nil
	}

	if err := b.stamps.Delete(ctx, arch, name); err != nil {
		logger.Warn("failed to clear stamp", "error", err)
	}

	logger.Info("building node")
	if err := b.compile(ctx, recipe, tc, srcDir); err != nil {
		logger.Error("node failed", "error", err)
		b.metrics.ObserveNativeBuild(name, arch, observability.OutcomeFailed)
		return "", err
	}

	stamp := domain.Stamp{Recipe: name, Arch: arch, Digest: digest, Revision: revision}
	if err := b.stamps.Save(ctx, stamp); err != nil {
		return "", fmt.Errorf("failed to record stamp for %s: %w", name, err)
	}
	b.metrics.ObserveNativeBuild(name, arch, observability.OutcomeBuilt)
	return digest, nil
}

func (b *Builder) upToDate(ctx context.Context, r domain.Recipe, tc domain.Toolchain, digest string) bool {
	stamp, err := b.stamps.Load(ctx, tc.Arch.ID, r.Name)
	if err != nil {
		if !errors.Is(err, domain.ErrStampNotFound) {
			b.logger.Warn("failed to load stamp", "node", r.Name, "error", err)
		}
		return false
	}
	if stamp.Digest != digest {
		return false
	}
	if r.Probe == "" {
		return true
	}
	_, err = os.Stat(filepath.Join(tc.Prefix, r.Probe))
	return err == nil
}

func (b *Builder) compile(ctx context.Context, r domain.Recipe, tc domain.Toolchain, srcDir string) error {
	system, ok := b.systems[r.System]
	if !ok {
		return fmt.Errorf("recipe %s: unsupported build system %q", r.Name, r.System)
	}

	vars := tc.ExpandVars()
	vars["PKG_CONFIG"] = tc.PkgConfig
	vars["JOBS"] = strconv.Itoa(b.jobs)
	opts, err := DecodeOptions(r.Options, vars)
	if err != nil {
		return fmt.Errorf("recipe %s: %w", r.Name, err)
	}

	buildDir := filepath.Join(b.buildRoot, tc.Arch.ID, r.Name)
	if err := os.RemoveAll(buildDir); err != nil {
		return fmt.Errorf("failed to clean build directory: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	if buildDir, err = filepath.Abs(buildDir); err != nil {
		return err
	}

	step := &Step{
		Recipe:    r,
		Toolchain: tc,
		SourceDir: srcDir,
		BuildDir:  buildDir,
		Jobs:      b.jobs,
		Env:       tc.Env(b.baseEnv),
		Options:   opts,
		Out:       b.out,
		Runner:    b.runner,
	}

	fmt.Fprintf(b.out, "==> %s@%s (%s)\n", r.Name, tc.Arch.ID, r.System)
	for _, phase := range []func(context.Context, *Step) error{system.Configure, system.Build, system.Install} {
		if err := phase(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// Digest is the stamp of a recipe built from revision with a toolchain
// fingerprint on top of the given prerequisite digests.
func Digest(r domain.Recipe, revision, fingerprint string, prereqs []string) string {
	data, _ := json.Marshal(struct {
		Recipe      domain.Recipe
		Revision    string
		Fingerprint string
		Prereqs     []string
	}{r, revision, fingerprint, prereqs})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
