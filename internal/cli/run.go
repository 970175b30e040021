package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/mpvbuild/internal/presentation/tui"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

// ErrRunFailed is returned when at least one job failed.
var ErrRunFailed = errors.New("one or more jobs failed")

// Execute runs the build matrix for opts. With --list it prints the
// supported values and with --plan the expanded jobs, running nothing.
func Execute(ctx context.Context, opts Options) error {
	logger := createLogger(opts.Debug)

	s, err := newStack(opts, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	sel := opts.Selection()
	out := opts.out()

	if opts.List {
		tui.PrintSupported(out, s.orchestrator.Catalog())
		return nil
	}

	if opts.Plan {
		jobs, warnings, err := s.orchestrator.Plan(sel)
		if err != nil {
			return err
		}
		tui.PrintPlan(out, jobs, warnings)
		return nil
	}

	if tui.IsTerminal(os.Stdout) && opts.Out == nil {
		tui.PrintBanner(out)
	}

	result, runErr := s.orchestrator.Run(ctx, sel)
	if runErr != nil && result.Total == 0 && !isInterrupted(runErr) {
		return runErr
	}

	tui.PrintSummary(out, result)
	if opts.LogFile != "" && result.Failed > 0 {
		printSystemMessage("Build output: %s", opts.LogFile)
	}

	if opts.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if !result.OK() {
		return fmt.Errorf("%w (%d of %d)", ErrRunFailed, result.Failed, result.Total)
	}
	return nil
}

// ExecuteDeps configures archID and builds node into its prefix.
func ExecuteDeps(ctx context.Context, opts Options, node, archID string) error {
	logger := createLogger(opts.Debug)

	s, err := newStack(opts, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.graph.Recipe(node); err != nil {
		return err
	}

	tc, err := s.configurator.Configure(ctx, archID)
	if err != nil {
		return err
	}
	if err := s.builder.Build(ctx, node, tc); err != nil {
		return err
	}

	if opts.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}
	printSystemMessage("%s installed into %s", node, tc.Prefix)
	return nil
}

// IsValidationError reports whether err rejected the selection as a whole.
func IsValidationError(err error) bool {
	var verr *domain.SelectionValidationError
	return errors.As(err, &verr)
}

// Interrupted reports whether err came from a cancelled context.
func Interrupted(err error, sig os.Signal) bool {
	if isInterrupted(err) {
		reportInterruption(err, sig)
		return true
	}
	return false
}
