package deps

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/aretw0/mpvbuild/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"mvdan.cc/sh/v3/shell"
)

// Options are the per-recipe build system settings. Strings may reference
// toolchain variables such as $PREFIX, $HOST or $CC.
type Options struct {
	Args      []string `mapstructure:"args"`
	CrossArgs []string `mapstructure:"cross_args"` // appended for mobile targets only
	Bootstrap []string `mapstructure:"bootstrap"`  // run in the source tree before configuring
}

// Step is the input of a build system invocation for one recipe.
type Step struct {
	Recipe    domain.Recipe
	Toolchain domain.Toolchain
	SourceDir string
	BuildDir  string
	Jobs      int
	Env       []string
	Options   Options
	Out       io.Writer
	Runner    ports.CommandRunner
}

func (s *Step) run(ctx context.Context, dir, name string, args ...string) error {
	return s.Runner.Run(ctx, ports.Command{
		Name:  name,
		Args:  args,
		Dir:   dir,
		Env:   s.Env,
		Label: s.Recipe.Name + "@" + s.Toolchain.Arch.ID,
	}, s.Out)
}

func (s *Step) args() []string {
	if s.Toolchain.Arch.Mobile {
		return append(append([]string(nil), s.Options.Args...), s.Options.CrossArgs...)
	}
	return s.Options.Args
}

// BuildSystem drives configure, build and install for one kind of source tree.
type BuildSystem interface {
	Configure(ctx context.Context, s *Step) error
	Build(ctx context.Context, s *Step) error
	Install(ctx context.Context, s *Step) error
}

// Systems is the default build system registry.
func Systems() map[string]BuildSystem {
	return map[string]BuildSystem{
		domain.BuildSystemMeson:     meson{},
		domain.BuildSystemAutotools: autotools{},
		domain.BuildSystemFFmpeg:    ffmpegConfigure{},
	}
}

type meson struct{}

func (meson) Configure(ctx context.Context, s *Step) error {
	args := []string{"setup", s.BuildDir, s.SourceDir,
		"--prefix", s.Toolchain.Prefix,
		"--libdir", "lib",
		"--buildtype", "release",
		"--default-library", "static",
		"--wrap-mode", "nodownload",
	}
	if s.Toolchain.Arch.Mobile {
		args = append(args, "--cross-file", s.Toolchain.CrossFile)
	}
	return s.run(ctx, s.SourceDir, "meson", append(args, s.args()...)...)
}

func (meson) Build(ctx context.Context, s *Step) error {
	return s.run(ctx, s.SourceDir, "ninja", "-C", s.BuildDir, "-j", strconv.Itoa(s.Jobs))
}

func (meson) Install(ctx context.Context, s *Step) error {
	return s.run(ctx, s.SourceDir, "ninja", "-C", s.BuildDir, "install")
}

type autotools struct{}

func (autotools) Configure(ctx context.Context, s *Step) error {
	if len(s.Options.Bootstrap) > 0 {
		if err := s.run(ctx, s.SourceDir, "sh", s.Options.Bootstrap...); err != nil {
			return err
		}
	}
	args := []string{filepath.Join(s.SourceDir, "configure"),
		"--prefix=" + s.Toolchain.Prefix,
		"--libdir=" + filepath.Join(s.Toolchain.Prefix, "lib"),
		"--enable-static",
		"--disable-shared",
		"--with-pic",
	}
	if s.Toolchain.Arch.Mobile {
		args = append(args, "--host="+s.Toolchain.Arch.HostTriple)
	}
	return s.run(ctx, s.BuildDir, "sh", append(args, s.args()...)...)
}

func (autotools) Build(ctx context.Context, s *Step) error {
	return s.run(ctx, s.BuildDir, "make", "-j"+strconv.Itoa(s.Jobs))
}

func (autotools) Install(ctx context.Context, s *Step) error {
	return s.run(ctx, s.BuildDir, "make", "install")
}

// ffmpegConfigure drives ffmpeg's hand-written configure script, which
// takes its cross settings as flags instead of a --host triple.
type ffmpegConfigure struct{}

func (ffmpegConfigure) Configure(ctx context.Context, s *Step) error {
	args := []string{filepath.Join(s.SourceDir, "configure"),
		"--prefix=" + s.Toolchain.Prefix,
		"--libdir=" + filepath.Join(s.Toolchain.Prefix, "lib"),
		"--pkg-config-flags=--static",
	}
	return s.run(ctx, s.BuildDir, "sh", append(args, s.args()...)...)
}

func (ffmpegConfigure) Build(ctx context.Context, s *Step) error {
	return s.run(ctx, s.BuildDir, "make", "-j"+strconv.Itoa(s.Jobs))
}

func (ffmpegConfigure) Install(ctx context.Context, s *Step) error {
	return s.run(ctx, s.BuildDir, "make", "install")
}

// DecodeOptions converts a recipe's raw options and expands every string
// against vars. Unknown variables expand to the empty string.
func DecodeOptions(raw map[string]any, vars map[string]string) (Options, error) {
	var opts Options
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("invalid build options: %w", err)
	}

	env := func(name string) string { return vars[name] }
	for _, list := range []*[]string{&opts.Args, &opts.CrossArgs, &opts.Bootstrap} {
		for i, arg := range *list {
			expanded, err := shell.Expand(arg, env)
			if err != nil {
				return Options{}, fmt.Errorf("failed to expand %q: %w", arg, err)
			}
			(*list)[i] = expanded
		}
	}
	return opts, nil
}
