package matrix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/mpvbuild/internal/logging"
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/aretw0/mpvbuild/internal/toolchain"
	"github.com/aretw0/mpvbuild/pkg/adapters/memory"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/observability"
	"github.com/aretw0/mpvbuild/pkg/ports"
	"github.com/google/uuid"
)

// Configurer derives the toolchain of an architecture.
type Configurer interface {
	Configure(ctx context.Context, archID string) (domain.Toolchain, error)
}

// NativeBuilder installs a dependency graph node into a toolchain's prefix.
type NativeBuilder interface {
	Build(ctx context.Context, name string, tc domain.Toolchain) error
}

// lockTTL bounds how long a crashed orchestrator can hold a prefix. A live
// holder keeps extending it for as long as the job runs.
const lockTTL = 2 * time.Hour

// Orchestrator expands a selection into jobs and runs them one at a time.
type Orchestrator struct {
	catalog    *Catalog
	runner     ports.CommandRunner
	configurer Configurer
	natives    NativeBuilder
	packager   *packager.Packager
	locker     ports.DistributedLocker
	metrics    *observability.Metrics
	workspace  string
	baseEnv    []string
	log        io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithPackager sets the dist tree writer.
func WithPackager(p *packager.Packager) Option {
	return func(o *Orchestrator) {
		o.packager = p
	}
}

// WithLocker guards each architecture prefix while a mobile job uses it.
func WithLocker(l ports.DistributedLocker) Option {
	return func(o *Orchestrator) {
		o.locker = l
	}
}

// WithMetrics records job outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithWorkspace sets the cargo workspace root.
func WithWorkspace(dir string) Option {
	return func(o *Orchestrator) {
		o.workspace = dir
	}
}

// WithBaseEnv sets the environment jobs start from.
func WithBaseEnv(env []string) Option {
	return func(o *Orchestrator) {
		o.baseEnv = env
	}
}

// WithBuildLog sets the shared append-only build log.
func WithBuildLog(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.log = w
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator.
func New(catalog *Catalog, runner ports.CommandRunner, configurer Configurer, natives NativeBuilder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:    catalog,
		runner:     runner,
		configurer: configurer,
		natives:    natives,
		packager:   packager.New("dist"),
		locker:     memory.NewLocker(),
		workspace:  ".",
		baseEnv:    os.Environ(),
		log:        io.Discard,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Catalog returns the catalog jobs are expanded from.
func (o *Orchestrator) Catalog() *Catalog {
	return o.catalog
}

// Plan validates and expands sel without running anything.
func (o *Orchestrator) Plan(sel domain.Selection) ([]domain.Job, []domain.Warning, error) {
	if err := o.catalog.Validate(sel); err != nil {
		return nil, nil, err
	}
	jobs, warnings := o.catalog.Expand(sel)
	return jobs, warnings, nil
}

// Run executes the selection. Job failures are recorded in the result and
// do not stop later jobs; the returned error is reserved for a rejected
// selection, a failure to prepare the dist tree, or cancellation.
func (o *Orchestrator) Run(ctx context.Context, sel domain.Selection) (domain.RunResult, error) {
	result := domain.RunResult{RunID: uuid.NewString()}
	start := o.now()
	logger := o.logger.With("run_id", result.RunID)

	jobs, warnings, err := o.Plan(sel)
	if err != nil {
		return result, err
	}
	result.Skipped = warnings
	for _, w := range warnings {
		logger.Warn("combination skipped", "job", w.Job.Key(), "reason", w.Reason)
	}

	if sel.Clean {
		logger.Info("cleaning dist tree", "dir", o.packager.Root())
		if err := o.packager.Clean(); err != nil {
			return result, err
		}
	}

	mode := "build"
	if sel.CheckOnly {
		mode = "check"
	}
	fmt.Fprintf(o.log, "\n##### run %s %s (%s, %d jobs)\n", result.RunID, start.UTC().Format(time.RFC3339), mode, len(jobs))
	logger.Info("starting matrix run", "jobs", len(jobs), "skipped", len(warnings), "mode", mode)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			result.Duration = o.now().Sub(start)
			return result, err
		}

		fmt.Fprintf(o.log, "\n===== [%d/%d] %s\n", i+1, len(jobs), job)
		logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(jobs), job))

		outcome := o.runJob(ctx, job, sel)
		result.Record(outcome)
		o.metrics.ObserveJob(job, outcome.Status, outcome.Duration)

		if outcome.Err != nil {
			fmt.Fprintf(o.log, "----- %s failed: %v\n", job, outcome.Err)
			logger.Error("job failed", "job", job.Key(), "error", outcome.Err)
		} else {
			logger.Info("job succeeded", "job", job.Key(), "duration", outcome.Duration.Round(time.Millisecond))
		}
	}

	if !sel.CheckOnly {
		if _, err := packager.WriteManifest(o.packager.Root()); err != nil {
			logger.Error("failed to write manifest", "error", err)
		}
	}

	result.Duration = o.now().Sub(start)
	logger.Info("matrix run finished",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, ctx.Err()
}

func (o *Orchestrator) runJob(ctx context.Context, job domain.Job, sel domain.Selection) domain.JobOutcome {
	start := o.now()
	artifact, err := o.execute(ctx, job, sel)

	outcome := domain.JobOutcome{Job: job, Status: domain.JobSucceeded, Artifact: artifact, Duration: o.now().Sub(start)}
	if err != nil {
		outcome.Status = domain.JobFailed
		outcome.Err = err
		outcome.Artifact = nil
	}
	return outcome
}

func (o *Orchestrator) execute(ctx context.Context, job domain.Job, sel domain.Selection) (*domain.Artifact, error) {
	platform, _ := o.catalog.Platform(job.Platform)
	crate, _ := o.catalog.Crate(job.Crate)

	var (
		target string
		env    []string
	)

	if job.Mobile() {
		arch, err := toolchain.ForABI(job.ABI)
		if err != nil {
			return nil, err
		}

		unlock, err := o.locker.Lock(ctx, "prefix:"+arch.ID, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s prefix: %w", arch.ID, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				o.logger.Warn("failed to release prefix lock", "arch", arch.ID, "error", err)
			}
		}()

		tc, err := o.configurer.Configure(ctx, arch.ID)
		if err != nil {
			return nil, err
		}
		if !sel.SkipDeps {
			if err := o.natives.Build(ctx, domain.PlayerCore, tc); err != nil {
				return nil, err
			}
		}
		target = arch.RustTarget
		env = CargoEnv(tc, o.baseEnv)
	} else {
		target = platform.RustTarget
		env = domain.ScrubEnv(o.baseEnv)
	}

	err := o.runner.Run(ctx, ports.Command{
		Name:  "cargo",
		Args:  o.cargoArgs(job, crate, target, sel.CheckOnly),
		Dir:   o.workspace,
		Env:   env,
		Label: job.Key(),
	}, o.log)
	if err != nil {
		return nil, err
	}

	if sel.CheckOnly {
		return nil, nil
	}

	compiled := filepath.Join(o.workspace, "target", target, "release", OutputFile(crate, target))
	art, err := o.packager.Package(job, compiled, o.catalog.Suffix(job.Feature))
	if err != nil {
		return nil, err
	}
	return &art, nil
}

func (o *Orchestrator) cargoArgs(job domain.Job, crate Crate, target string, check bool) []string {
	args := []string{"build", "--release"}
	if check {
		args = []string{"check"}
	}
	args = append(args, "-p", crate.Package, "--target", target)
	if job.Feature != o.catalog.DefaultFeature().Name {
		args = append(args, "--no-default-features", "--features", job.Feature)
	}
	return args
}

// CargoEnv scrubs base and adds tc only through target-suffixed variables,
// so host-side build scripts keep the host compiler. The mpv prefix and
// pkg-config search path are exported for the crates' build script.
func CargoEnv(tc domain.Toolchain, base []string) []string {
	triple := tc.Arch.RustTarget
	under := strings.ReplaceAll(triple, "-", "_")
	cflags := strings.Join(tc.CFlags, " ")

	vars := map[string]string{
		"CARGO_TARGET_" + strings.ToUpper(under) + "_LINKER": tc.CC,
		"CC_" + under:                     tc.CC,
		"CXX_" + under:                    tc.CXX,
		"AR_" + under:                     tc.AR,
		"CFLAGS_" + under:                 cflags,
		"CXXFLAGS_" + under:               cflags,
		"PKG_CONFIG_" + under:             tc.PkgConfig,
		"PKG_CONFIG_PATH_" + under:        tc.PkgConfigPath,
		"PKG_CONFIG_LIBDIR_" + under:      tc.PkgConfigPath,
		"PKG_CONFIG_SYSROOT_DIR_" + under: "",
		"PKG_CONFIG_ALLOW_CROSS":          "1",
		"MPV_PREFIX":                      tc.Prefix,
		"MPV_LIB_DIR":                     tc.Prefix + "/lib",
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := domain.ScrubEnv(base)
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}

// IsValidation reports whether err rejected the whole selection.
func IsValidation(err error) bool {
	var verr *domain.SelectionValidationError
	return errors.As(err, &verr)
}
