package testutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
	"github.com/stretchr/testify/require"
)

// FakeRunner is an in-memory ports.CommandRunner. It records every command
// and lets tests script failures and side effects.
type FakeRunner struct {
	mu       sync.Mutex
	Commands []ports.Command

	// Missing lists tool names LookPath must fail for.
	Missing map[string]bool

	// FailWhen returns true for commands that must exit with code 1.
	FailWhen func(ports.Command) bool

	// OnRun is invoked for every successful Run, e.g. to create build outputs.
	OnRun func(ports.Command) error

	// Outputs maps "name arg0" to the stdout returned by Output.
	Outputs map[string]string
}

var _ ports.CommandRunner = (*FakeRunner)(nil)

// NewFakeRunner returns a runner where every tool resolves and every command succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Missing: map[string]bool{},
		Outputs: map[string]string{},
	}
}

func (f *FakeRunner) record(c ports.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = append(f.Commands, c)
}

func (f *FakeRunner) Run(ctx context.Context, c ports.Command, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record(c)
	if out != nil {
		fmt.Fprintf(out, "$ %s %s\n", c.Name, strings.Join(c.Args, " "))
	}
	if f.FailWhen != nil && f.FailWhen(c) {
		return &domain.BuildExecutionError{
			Target:   c.Label,
			Command:  c.Name + " " + strings.Join(c.Args, " "),
			ExitCode: 1,
		}
	}
	if f.OnRun != nil {
		return f.OnRun(c)
	}
	return nil
}

func (f *FakeRunner) Output(ctx context.Context, c ports.Command) (string, error) {
	if err := f.Run(ctx, c, nil); err != nil {
		return "", err
	}
	key := c.Name
	if len(c.Args) > 0 {
		key += " " + c.Args[0]
	}
	return f.Outputs[key], nil
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// Recorded returns a copy of the commands seen so far.
func (f *FakeRunner) Recorded() []ports.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Command(nil), f.Commands...)
}

// Labels returns the labels of recorded commands named name.
func (f *FakeRunner) Labels(name string) []string {
	var labels []string
	for _, c := range f.Recorded() {
		if c.Name == name {
			labels = append(labels, c.Label)
		}
	}
	return labels
}

// FakeNDK lays out the minimal directory structure of an Android NDK for
// the given prebuilt host tag and returns its root.
func FakeNDK(t *testing.T, hostTag string) string {
	t.Helper()

	root := t.TempDir()
	bin := filepath.Join(root, "toolchains", "llvm", "prebuilt", hostTag, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755), "Failed to create fake NDK")
	require.NoError(t, os.MkdirAll(filepath.Join(filepath.Dir(bin), "sysroot"), 0755))
	return root
}

// EnvValue returns the value of key in an environment list.
func EnvValue(env []string, key string) (string, bool) {
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}
