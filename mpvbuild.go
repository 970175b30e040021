package mpvbuild

import (
	"github.com/aretw0/mpvbuild/internal/matrix"
	"github.com/aretw0/mpvbuild/internal/packager"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Version is the release of the build tool. Overridden at link time with
// -ldflags "-X github.com/aretw0/mpvbuild.Version=...".
var Version = "0.1.0"

// Plan validates sel against the built-in matrix catalog and returns the
// jobs a run would execute, plus the combinations dropped by policy.
func Plan(sel domain.Selection) ([]domain.Job, []domain.Warning, error) {
	catalog, err := matrix.DefaultCatalog()
	if err != nil {
		return nil, nil, err
	}
	if err := catalog.Validate(sel); err != nil {
		return nil, nil, err
	}
	jobs, warnings := catalog.Expand(sel)
	return jobs, warnings, nil
}

// Manifest summarises the artifacts under distRoot without rewriting MANIFEST.md.
func Manifest(distRoot string) (packager.Manifest, error) {
	return packager.GenerateManifest(distRoot)
}
