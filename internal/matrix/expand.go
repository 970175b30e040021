package matrix

import (
	"fmt"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Validate checks every value of sel against the catalog and reports all
// unknown values at once.
func (c *Catalog) Validate(sel domain.Selection) error {
	var invalid []domain.InvalidValue
	for _, p := range sel.Platforms {
		if _, ok := c.Platform(p); !ok {
			invalid = append(invalid, domain.InvalidValue{Field: "platform", Value: p, Allowed: c.PlatformNames()})
		}
	}
	for _, cr := range sel.Crates {
		if _, ok := c.Crate(cr); !ok {
			invalid = append(invalid, domain.InvalidValue{Field: "crate", Value: cr, Allowed: c.CrateNames()})
		}
	}
	for _, f := range sel.Features {
		if _, ok := c.Feature(f); !ok {
			invalid = append(invalid, domain.InvalidValue{Field: "feature", Value: f, Allowed: c.FeatureNames()})
		}
	}
	for _, a := range sel.ABIs {
		if !c.HasABI(a) {
			invalid = append(invalid, domain.InvalidValue{Field: "abi", Value: a, Allowed: c.ABINames()})
		}
	}
	if len(invalid) > 0 {
		return &domain.SelectionValidationError{Invalid: invalid}
	}
	return nil
}

// Expand turns a validated selection into the ordered, de-duplicated job
// list. Combinations excluded by policy are returned as warnings when the
// user asked for them explicitly; implicit ones are dropped silently.
func (c *Catalog) Expand(sel domain.Selection) ([]domain.Job, []domain.Warning) {
	platforms := dedup(sel.Platforms)
	if len(platforms) == 0 {
		platforms = c.PlatformNames()
	}
	crates := dedup(sel.Crates)
	if len(crates) == 0 {
		crates = c.CrateNames()
	}
	abis := dedup(sel.ABIs)
	if len(abis) == 0 {
		abis = c.DefaultABIs()
	}

	var features []Feature
	seen := map[string]bool{}
	for _, token := range sel.Features {
		f, _ := c.Feature(token)
		if !seen[f.Name] {
			seen[f.Name] = true
			features = append(features, f)
		}
	}
	explicitFeatures := len(features) > 0

	var (
		jobs     []domain.Job
		warnings []domain.Warning
	)
	warn := func(j domain.Job, explicit bool, format string, args ...any) {
		if explicit {
			warnings = append(warnings, domain.Warning{Job: j, Reason: fmt.Sprintf(format, args...)})
		}
	}

	pairWarned := map[string]bool{}
	for _, pname := range platforms {
		platform, _ := c.Platform(pname)
		targets := []string{""}
		if platform.Mobile {
			targets = abis
		}

		for _, abi := range targets {
			for _, cname := range crates {
				crate, _ := c.Crate(cname)

				if crate.PrimaryOnly && !platform.Primary {
					// One warning per platform and crate, whatever the features and ABIs.
					if !pairWarned[platform.Name+"/"+crate.Name] {
						pairWarned[platform.Name+"/"+crate.Name] = true
						warn(domain.Job{Platform: platform.Name, Crate: crate.Name},
							len(sel.Crates) > 0 || len(sel.Platforms) > 0,
							"%s is only built for the primary platform", crate.Name)
					}
					continue
				}

				candidates := features
				if !explicitFeatures {
					candidates = c.featuresFor(crate.Name)
				}

				for _, f := range candidates {
					job := domain.Job{Platform: platform.Name, Crate: crate.Name, Feature: f.Name, ABI: abi}

					switch {
					case f.Accelerated && platform.Mobile:
						warn(job, explicitFeatures, "%s needs a desktop GPU runtime", f.Name)
					case !f.AllowedFor(crate.Name):
						warn(job, explicitFeatures, "%s is not available for %s", f.Name, crate.Name)
					default:
						jobs = append(jobs, job)
					}
				}
			}
		}
	}
	return jobs, warnings
}

func (c *Catalog) featuresFor(crate string) []Feature {
	var out []Feature
	for _, f := range c.Features {
		if f.AllowedFor(crate) {
			out = append(out, f)
		}
	}
	return out
}

func dedup(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
