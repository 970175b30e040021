package packager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mpvbuild/internal/fsutil"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Packager copies compiled outputs into the dist tree.
type Packager struct {
	distRoot string
}

// New creates a Packager writing under distRoot.
func New(distRoot string) *Packager {
	return &Packager{distRoot: distRoot}
}

// Root returns the dist tree root.
func (p *Packager) Root() string {
	return p.distRoot
}

// Clean removes the whole dist tree.
func (p *Packager) Clean() error {
	if err := os.RemoveAll(p.distRoot); err != nil {
		return fmt.Errorf("failed to clean %s: %w", p.distRoot, err)
	}
	return nil
}

// ArtifactName inserts the feature suffix before the extension:
// libmpv_stt_plugin.so becomes libmpv_stt_plugin_cpu.so.
func ArtifactName(compiled, suffix string) string {
	base := filepath.Base(compiled)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + suffix + ext
}

// Destination returns where the output of job lands in the dist tree.
func (p *Packager) Destination(job domain.Job, compiled, suffix string) string {
	return filepath.Join(p.distRoot, filepath.FromSlash(job.DistPlatform()), job.Crate, ArtifactName(compiled, suffix))
}

// Package copies compiled to its dist location. The copy is atomic and
// keeps the source's file mode.
func (p *Packager) Package(job domain.Job, compiled, suffix string) (domain.Artifact, error) {
	info, err := os.Stat(compiled)
	if err != nil {
		return domain.Artifact{}, &domain.ArtifactCopyError{Path: compiled, Err: err}
	}
	if info.IsDir() {
		return domain.Artifact{}, &domain.ArtifactCopyError{Path: compiled, Err: errors.New("is a directory")}
	}

	dest := p.Destination(job, compiled, suffix)
	size, err := fsutil.CopyFileAtomic(compiled, dest)
	if err != nil {
		return domain.Artifact{}, &domain.ArtifactCopyError{Path: compiled, Err: err}
	}

	return domain.Artifact{
		Job:    job,
		Suffix: suffix,
		Source: compiled,
		Path:   dest,
		Size:   size,
	}, nil
}
