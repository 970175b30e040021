package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/mpvbuild/internal/matrix"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintSummary writes the per-job outcome table and the aggregate counts of a run.
func PrintSummary(w io.Writer, r domain.RunResult) {
	out := termenv.NewOutput(w)
	ok := out.String("ok").Foreground(out.Color("#22c55e")).Bold()
	fail := out.String("FAIL").Foreground(out.Color("#ef4444")).Bold()
	skip := out.String("skip").Foreground(out.Color("#eab308"))

	fmt.Fprintln(w)
	for _, o := range r.Outcomes {
		switch o.Status {
		case domain.JobSucceeded:
			fmt.Fprintf(w, "  %s   %-48s %s\n", ok, o.Job, o.Duration.Round(time.Second))
		default:
			fmt.Fprintf(w, "  %s %-48s %v\n", fail, o.Job, o.Err)
		}
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "  %s %-48s %s\n", skip, s.Job, s.Reason)
	}

	status := out.String("SUCCESS").Foreground(out.Color("#22c55e")).Bold()
	if !r.OK() {
		status = out.String("FAILED").Foreground(out.Color("#ef4444")).Bold()
	}
	fmt.Fprintf(w, "\n%s  total=%d succeeded=%d failed=%d skipped=%d (%s)\n",
		status, r.Total, r.Succeeded, r.Failed, len(r.Skipped), r.Duration.Round(time.Second))
}

// PrintPlan lists the jobs a selection expands to, for --plan.
func PrintPlan(w io.Writer, jobs []domain.Job, warnings []domain.Warning) {
	for i, j := range jobs {
		fmt.Fprintf(w, "%3d  %s\n", i+1, j)
	}
	for _, s := range warnings {
		fmt.Fprintf(w, "skip %s: %s\n", s.Job, s.Reason)
	}
	fmt.Fprintf(w, "%d jobs, %d skipped\n", len(jobs), len(warnings))
}

// PrintSupported lists every value a selection may use, for --list.
// Features show their suffix alias in brackets.
func PrintSupported(w io.Writer, c *matrix.Catalog) {
	platforms := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		switch {
		case p.Primary:
			platforms = append(platforms, p.Name+" (primary)")
		case p.Mobile:
			platforms = append(platforms, p.Name+" (mobile)")
		default:
			platforms = append(platforms, p.Name)
		}
	}

	crates := make([]string, 0, len(c.Crates))
	for _, cr := range c.Crates {
		entry := cr.Name + " [" + cr.Package + "]"
		if cr.PrimaryOnly {
			entry += " (primary only)"
		}
		crates = append(crates, entry)
	}

	features := make([]string, 0, len(c.Features))
	for _, f := range c.Features {
		entry := f.Name + " [" + f.Suffix + "]"
		var notes []string
		if f.Default {
			notes = append(notes, "default")
		}
		if f.Accelerated {
			notes = append(notes, "desktop only")
		}
		if len(f.Crates) > 0 {
			notes = append(notes, strings.Join(f.Crates, ", ")+" only")
		}
		if len(notes) > 0 {
			entry += " (" + strings.Join(notes, "; ") + ")"
		}
		features = append(features, entry)
	}

	fmt.Fprintf(w, "platforms: %s\n", strings.Join(platforms, ", "))
	fmt.Fprintf(w, "crates:    %s\n", strings.Join(crates, ", "))
	fmt.Fprintf(w, "features:  %s\n", strings.Join(features, ", "))
	fmt.Fprintf(w, "abis:      %s (default: %s)\n",
		strings.Join(c.ABINames(), ", "), strings.Join(c.DefaultABIs(), ", "))
}
