package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/mpvbuild/internal/deps"
	"github.com/aretw0/mpvbuild/internal/fetch"
	"github.com/aretw0/mpvbuild/internal/matrix"
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/aretw0/mpvbuild/internal/toolchain"
	"github.com/aretw0/mpvbuild/pkg/adapters/file"
	"github.com/aretw0/mpvbuild/pkg/adapters/memory"
	"github.com/aretw0/mpvbuild/pkg/adapters/process"
	redisadapter "github.com/aretw0/mpvbuild/pkg/adapters/redis"
	"github.com/aretw0/mpvbuild/pkg/observability"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// stack is the fully wired orchestrator and the resources it holds.
type stack struct {
	logger       *slog.Logger
	runner       *process.Runner
	configurator *toolchain.Configurator
	graph        *deps.Graph
	builder      *deps.Builder
	orchestrator *matrix.Orchestrator
	stamps       ports.StampStore
	metrics      *observability.Metrics
	closers      []io.Closer
}

func (s *stack) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createRunner builds the process runner with the optional tools.yaml overrides.
func createRunner(opts Options) (*process.Runner, error) {
	runnerOpts := []process.RunnerOption{}
	if opts.Workspace != "" {
		runnerOpts = append(runnerOpts, process.WithBaseDir(opts.Workspace))
	}
	if opts.ToolsPath != "" {
		tools, err := process.LoadTools(opts.ToolsPath)
		if err != nil {
			return nil, err
		}
		runnerOpts = append(runnerOpts, process.WithRegistry(tools))
	}
	return process.NewRunner(runnerOpts...), nil
}

// newStack wires every component from opts. The caller must Close it.
func newStack(opts Options, logger *slog.Logger) (*stack, error) {
	s := &stack{logger: logger, metrics: observability.NewMetrics()}

	runner, err := createRunner(opts)
	if err != nil {
		return nil, err
	}
	s.runner = runner

	var locker ports.DistributedLocker = memory.NewLocker()
	s.stamps = file.New(opts.stampDir())
	if addr := opts.redisAddr(); addr != "" {
		client := redisadapter.NewClient(addr)
		s.stamps = redisadapter.NewFromClient(client)
		locker = redisadapter.NewLocker(client, "mpvbuild:")
		s.closers = append(s.closers, client)
		logger.Debug("using redis for stamps and prefix locks", "addr", addr)
	}

	buildLog := io.Writer(io.Discard)
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open build log: %w", err)
		}
		buildLog = f
		s.closers = append(s.closers, f)
	}

	s.configurator = toolchain.New(runner,
		toolchain.WithPrefixRoot(opts.Env.PrefixRoot),
		toolchain.WithSDKRoot(opts.Env.NDKHome),
		toolchain.WithAPI(opts.Env.AndroidAPI),
		toolchain.WithLogger(logger),
	)

	s.graph, err = deps.DefaultGraph()
	if err != nil {
		s.Close()
		return nil, err
	}

	fetcher := fetch.New(runner, opts.Env.SourceDir,
		fetch.WithVerify(opts.VerifySources),
		fetch.WithLogger(logger),
	)

	s.builder = deps.NewBuilder(s.graph, runner, fetcher,
		deps.WithStampStore(s.stamps),
		deps.WithPolicy(opts.Policy()),
		deps.WithSkipDeps(opts.SkipDeps),
		deps.WithBuildRoot(opts.workDir()),
		deps.WithJobs(opts.Env.Jobs),
		deps.WithOutput(buildLog),
		deps.WithMetrics(s.metrics),
		deps.WithLogger(logger),
	)

	catalog, err := matrix.LoadCatalog(opts.CatalogPath)
	if err != nil {
		s.Close()
		return nil, err
	}

	orchOpts := []matrix.Option{
		matrix.WithPackager(packager.New(opts.distDir())),
		matrix.WithLocker(locker),
		matrix.WithMetrics(s.metrics),
		matrix.WithBuildLog(buildLog),
		matrix.WithLogger(logger),
	}
	if opts.Workspace != "" {
		orchOpts = append(orchOpts, matrix.WithWorkspace(opts.Workspace))
	}
	s.orchestrator = matrix.New(catalog, runner, s.configurator, s.builder, orchOpts...)
	return s, nil
}
