package ports

import (
	"context"
	"io"
)

// Command is one invocation of an external tool.
type Command struct {
	Name string // tool name as registered, e.g. "cargo" or "meson"
	Args []string
	Dir  string
	Env  []string // full environment; nil inherits the parent's

	// Label identifies what is being built, used in errors and log headers.
	Label string
}

// CommandRunner executes external tools.
type CommandRunner interface {
	// Run executes cmd, streaming stdout and stderr into out.
	// A non-zero exit is reported as *domain.BuildExecutionError.
	Run(ctx context.Context, cmd Command, out io.Writer) error

	// Output executes cmd and returns its trimmed stdout.
	Output(ctx context.Context, cmd Command) (string, error)

	// LookPath resolves a tool name to an executable path.
	LookPath(name string) (string, error)
}
