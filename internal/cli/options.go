package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/mpvbuild/internal/config"
	"github.com/aretw0/mpvbuild/internal/deps"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Options carries every flag shared by the mpvbuild commands.
type Options struct {
	Platforms []string
	Crates    []string
	Features  []string
	ABIs      []string

	Check         bool
	Clean         bool
	List          bool // print the supported values
	Plan          bool // print the expanded jobs
	SkipDeps      bool
	Rebuild       bool
	VerifySources bool

	CatalogPath string
	ToolsPath   string
	LogFile     string
	DistDir     string
	MetricsFile string
	RedisAddr   string
	Workspace   string
	Debug       bool

	Env config.Env

	// Out receives user-facing output; nil means os.Stdout.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// Selection converts the flags into a matrix selection.
func (o Options) Selection() domain.Selection {
	return domain.Selection{
		Platforms: o.Platforms,
		Crates:    o.Crates,
		Features:  o.Features,
		ABIs:      o.ABIs,
		CheckOnly: o.Check,
		Clean:     o.Clean,
		SkipDeps:  o.SkipDeps,
	}
}

// Policy returns the native rebuild policy selected by --rebuild.
func (o Options) Policy() deps.Policy {
	if o.Rebuild {
		return deps.PolicyAlways
	}
	return deps.PolicyOnChange
}

// distDir prefers the flag over the environment.
func (o Options) distDir() string {
	if o.DistDir != "" {
		return o.DistDir
	}
	return o.Env.DistDir
}

// redisAddr prefers the flag over the environment.
func (o Options) redisAddr() string {
	if o.RedisAddr != "" {
		return o.RedisAddr
	}
	return o.Env.RedisAddr
}

// stampDir and workDir live next to the prefix root, e.g. build/stamps.
func (o Options) stampDir() string {
	return filepath.Join(filepath.Dir(o.Env.PrefixRoot), "stamps")
}

func (o Options) workDir() string {
	return filepath.Join(filepath.Dir(o.Env.PrefixRoot), "work")
}
