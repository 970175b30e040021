package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/mpvbuild/internal/logging"
	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
)

// Fetcher clones recipe sources into a shared source directory and pins the
// revision each one resolved to on first use.
type Fetcher struct {
	runner    ports.CommandRunner
	srcDir    string
	verify    bool
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)

	mu sync.Mutex
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithVerify makes a reused tree an error when it differs from its pin: another
// revision, another URL, or local modifications.
func WithVerify(verify bool) Option {
	return func(f *Fetcher) {
		f.verify = verify
	}
}

// WithLogger configures a logger for the Fetcher.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithLookupEnv replaces os.LookupEnv for URL overrides.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(f *Fetcher) {
		f.lookupEnv = fn
	}
}

// New creates a Fetcher rooted at srcDir.
func New(runner ports.CommandRunner, srcDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		runner:    runner,
		srcDir:    srcDir,
		logger:    logging.NewNop(),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dir returns where the source of name lives.
func (f *Fetcher) Dir(name string) string {
	return filepath.Join(f.srcDir, name)
}

// LockPath returns the location of the lock file.
func (f *Fetcher) LockPath() string {
	return filepath.Join(f.srcDir, LockFileName)
}

// URL resolves the clone URL of src, honoring its environment override.
func (f *Fetcher) URL(src domain.Source) string {
	if src.EnvURL != "" {
		if v, ok := f.lookupEnv(src.EnvURL); ok && v != "" {
			return v
		}
	}
	return src.URL
}

// Ensure makes the source of name available and returns its directory and
// resolved revision. An existing tree is reused as-is.
func (f *Fetcher) Ensure(ctx context.Context, name string, src domain.Source, out io.Writer) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dest := f.Dir(name)
	url := f.URL(src)

	if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
		if err := f.clone(ctx, name, url, src.Ref, dest, out); err != nil {
			return "", "", err
		}
	} else if err != nil {
		return "", "", fmt.Errorf("failed to inspect source %s: %w", dest, err)
	}

	if _, err := os.Stat(filepath.Join(dest, ".git")); err != nil {
		if f.verify {
			return "", "", fmt.Errorf("%w: %s is not a git checkout", domain.ErrSourceMismatch, dest)
		}
		f.logger.Warn("reusing source tree without revision", "node", name, "dir", dest)
		return dest, "", nil
	}

	rev, err := f.git(ctx, name, dest, "rev-parse", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve revision of %s: %w", name, err)
	}

	if f.verify {
		if err := f.checkTree(ctx, name, dest); err != nil {
			return "", "", err
		}
	}

	if err := f.pin(ctx, name, dest, url, src.Ref, rev); err != nil {
		return "", "", err
	}
	return dest, rev, nil
}

func (f *Fetcher) git(ctx context.Context, name, dir string, args ...string) (string, error) {
	return f.runner.Output(ctx, ports.Command{
		Name:  "git",
		Args:  args,
		Dir:   dir,
		Label: name,
	})
}

// checkTree rejects a checkout with local modifications.
func (f *Fetcher) checkTree(ctx context.Context, name, dest string) error {
	status, err := f.git(ctx, name, dest, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("failed to inspect working tree of %s: %w", name, err)
	}
	if status != "" {
		return fmt.Errorf("%w: %s has local modifications", domain.ErrSourceMismatch, name)
	}
	return nil
}

func (f *Fetcher) clone(ctx context.Context, name, url, ref, dest string, out io.Writer) error {
	if url == "" {
		return fmt.Errorf("source of %s has no URL", name)
	}
	if err := os.MkdirAll(f.srcDir, 0755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	args := []string{"clone", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, dest)

	f.logger.Info("fetching source", "node", name, "url", url, "ref", ref)
	err := f.runner.Run(ctx, ports.Command{
		Name:  "git",
		Args:  args,
		Env:   append(os.Environ(), "GIT_TERMINAL_PROMPT=0"),
		Label: name,
	}, out)
	if err != nil {
		// A partial clone would be reused on the next run.
		_ = os.RemoveAll(dest)
		return fmt.Errorf("git clone of %s failed: %w", name, err)
	}
	return nil
}

func (f *Fetcher) pin(ctx context.Context, name, dest, url, ref, rev string) error {
	lock, err := ReadLock(f.LockPath())
	if err != nil {
		return err
	}

	entry, ok := lock.Sources[name]
	if !ok {
		lock.Sources[name] = LockEntry{URL: url, Ref: ref, Revision: rev}
		f.logger.Debug("source pinned", "node", name, "revision", rev)
		return lock.Write(f.LockPath())
	}

	if entry.URL != url {
		if f.verify {
			return fmt.Errorf("%w: %s resolves to %s, pinned %s", domain.ErrSourceMismatch, name, url, entry.URL)
		}
		f.logger.Warn("source URL differs from pinned URL", "node", name, "url", url, "pinned", entry.URL)
	}

	if f.verify {
		origin, err := f.git(ctx, name, dest, "remote", "get-url", "origin")
		if err != nil {
			return fmt.Errorf("failed to read origin of %s: %w", name, err)
		}
		if origin != entry.URL {
			return fmt.Errorf("%w: %s was cloned from %s, pinned %s", domain.ErrSourceMismatch, name, origin, entry.URL)
		}
	}

	if entry.Revision != rev {
		if f.verify {
			return fmt.Errorf("%w: %s is at %s, pinned %s", domain.ErrSourceMismatch, name, rev, entry.Revision)
		}
		f.logger.Warn("source differs from pinned revision", "node", name, "revision", rev, "pinned", entry.Revision)
	}
	return nil
}
