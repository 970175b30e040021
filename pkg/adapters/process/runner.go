package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Runner implements ports.CommandRunner by executing local processes.
// It follows a Strict Registry pattern: only registered tool names can run.
type Runner struct {
	registry map[string]RegisteredTool
	baseDir  string
}

// RegisteredTool defines an allowed command execution.
type RegisteredTool struct {
	Command string
	Args    []string // prepended to the invocation's args
	Env     map[string]string
}

var _ ports.CommandRunner = (*Runner)(nil)

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry overrides or extends the allow-list from a loaded config.
func WithRegistry(tools map[string]ToolConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredTool{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for commands that do not set one.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a Runner with DefaultTools registered.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredTool),
	}
	for _, name := range DefaultTools {
		r.Register(name, name)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted tool to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredTool{
		Command: command,
		Args:    args,
	}
}

// Tools lists registered tool names.
func (r *Runner) Tools() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) command(ctx context.Context, c ports.Command) (*exec.Cmd, error) {
	tool, ok := r.registry[c.Name]
	if !ok {
		return nil, fmt.Errorf("tool not registered: %s", c.Name)
	}

	args := append(append([]string{}, tool.Args...), c.Args...)
	cmd := exec.CommandContext(ctx, tool.Command, args...)
	cmd.Dir = c.Dir
	if cmd.Dir == "" {
		cmd.Dir = r.baseDir
	}

	env := c.Env
	if env == nil {
		env = cmd.Environ()
	}
	for k, v := range tool.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env
	return cmd, nil
}

// Run executes the command, streaming its combined output into out.
func (r *Runner) Run(ctx context.Context, c ports.Command, out io.Writer) error {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return err
	}
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return execError(c, err)
	}
	return nil
}

// Output executes the command and returns its trimmed stdout.
func (r *Runner) Output(ctx context.Context, c ports.Command) (string, error) {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w. Stderr: %s", execError(c, err), strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath resolves a registered tool to an executable path.
func (r *Runner) LookPath(name string) (string, error) {
	tool, ok := r.registry[name]
	if !ok {
		return "", fmt.Errorf("tool not registered: %s", name)
	}
	return exec.LookPath(tool.Command)
}

func execError(c ports.Command, err error) error {
	label := c.Label
	if label == "" {
		label = c.Name
	}
	cmdline := strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.BuildExecutionError{
			Target:   label,
			Command:  cmdline,
			ExitCode: exitErr.ExitCode(),
			Err:      err,
		}
	}
	return &domain.BuildExecutionError{Target: label, Command: cmdline, ExitCode: -1, Err: err}
}
