package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned when a recipe name is not declared in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrCycle is returned when the declared dependency graph is not acyclic.
	ErrCycle = errors.New("dependency cycle detected")

	// ErrUnknownArchitecture is returned when an architecture identifier is not declared.
	ErrUnknownArchitecture = errors.New("unknown architecture")

	// ErrSourceMismatch is returned when a reused source tree differs from its recorded revision.
	ErrSourceMismatch = errors.New("source tree does not match recorded revision")

	// ErrStampNotFound is returned when no build stamp exists for a recipe.
	ErrStampNotFound = errors.New("stamp not found")
)

// InvalidValue is a single rejected selection value.
type InvalidValue struct {
	Field   string // platform, crate, feature, abi
	Value   string
	Allowed []string
}

func (v InvalidValue) String() string {
	return fmt.Sprintf("unknown %s %q (allowed: %s)", v.Field, v.Value, strings.Join(v.Allowed, ", "))
}

// SelectionValidationError reports every invalid value of a selection at once.
type SelectionValidationError struct {
	Invalid []InvalidValue
}

func (e *SelectionValidationError) Error() string {
	if len(e.Invalid) == 1 {
		return "invalid selection: " + e.Invalid[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid selection, %d errors:\n", len(e.Invalid))
	for i, v := range e.Invalid {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ToolingPreconditionError reports a missing SDK, tool or toolchain directory.
type ToolingPreconditionError struct {
	Tool string
	Hint string
	Err  error
}

func (e *ToolingPreconditionError) Error() string {
	msg := fmt.Sprintf("tooling precondition failed: %s", e.Tool)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ToolingPreconditionError) Unwrap() error { return e.Err }

// BuildExecutionError reports an external build process that exited unsuccessfully.
type BuildExecutionError struct {
	Target   string // job key or recipe@arch
	Command  string
	ExitCode int
	Err      error
}

func (e *BuildExecutionError) Error() string {
	return fmt.Sprintf("build of %s failed: %s exited with code %d", e.Target, e.Command, e.ExitCode)
}

func (e *BuildExecutionError) Unwrap() error { return e.Err }

// ArtifactCopyError reports a compiled output that could not be packaged.
type ArtifactCopyError struct {
	Path string
	Err  error
}

func (e *ArtifactCopyError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactCopyError) Unwrap() error { return e.Err }

// CycleError carries one witness path of a dependency cycle.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }
