package matrix

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Platform is an operating system target of the matrix.
type Platform struct {
	Name       string `yaml:"name"`
	RustTarget string `yaml:"rust_target,omitempty"` // mobile targets come from the ABI
	Primary    bool   `yaml:"primary,omitempty"`
	Mobile     bool   `yaml:"mobile,omitempty"`
}

// Crate is a workspace package producing one artifact.
type Crate struct {
	Name        string `yaml:"name"`
	Package     string `yaml:"package"`
	Kind        string `yaml:"kind"` // cdylib or bin
	PrimaryOnly bool   `yaml:"primary_only,omitempty"`
}

// Feature is a mutually exclusive cargo feature selecting the inference backend.
type Feature struct {
	Name        string   `yaml:"name"`
	Suffix      string   `yaml:"suffix"`
	Default     bool     `yaml:"default,omitempty"`
	Accelerated bool     `yaml:"accelerated,omitempty"` // needs a desktop GPU runtime
	Crates      []string `yaml:"crates,omitempty"`      // empty means every crate
}

// AllowedFor reports whether the feature can be built into crate.
func (f Feature) AllowedFor(crate string) bool {
	return len(f.Crates) == 0 || slices.Contains(f.Crates, crate)
}

// ABI is an Android ABI name.
type ABI struct {
	Name    string `yaml:"name"`
	Default bool   `yaml:"default,omitempty"`
}

// Catalog declares every value a selection may use.
type Catalog struct {
	Platforms []Platform `yaml:"platforms"`
	Crates    []Crate    `yaml:"crates"`
	Features  []Feature  `yaml:"features"`
	ABIs      []ABI      `yaml:"abis"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) check() error {
	if len(c.Platforms) == 0 || len(c.Crates) == 0 || len(c.Features) == 0 {
		return fmt.Errorf("platforms, crates and features must not be empty")
	}
	if _, ok := c.primary(); !ok {
		return fmt.Errorf("no primary platform")
	}
	defaults := 0
	for _, f := range c.Features {
		if f.Suffix == "" {
			return fmt.Errorf("feature %s has no suffix", f.Name)
		}
		if f.Default {
			defaults++
		}
	}
	if defaults != 1 {
		return fmt.Errorf("exactly one default feature required, found %d", defaults)
	}
	for _, p := range c.Platforms {
		if !p.Mobile && p.RustTarget == "" {
			return fmt.Errorf("platform %s has no rust_target", p.Name)
		}
	}
	return nil
}

func (c *Catalog) primary() (Platform, bool) {
	for _, p := range c.Platforms {
		if p.Primary {
			return p, true
		}
	}
	return Platform{}, false
}

// Platform looks a platform up by name.
func (c *Catalog) Platform(name string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// Crate looks a crate up by name.
func (c *Catalog) Crate(name string) (Crate, bool) {
	for _, cr := range c.Crates {
		if cr.Name == name {
			return cr, true
		}
	}
	return Crate{}, false
}

// Feature resolves a feature token given either by name or by suffix alias.
func (c *Catalog) Feature(token string) (Feature, bool) {
	for _, f := range c.Features {
		if f.Name == token || f.Suffix == token {
			return f, true
		}
	}
	return Feature{}, false
}

// DefaultFeature is the feature cargo enables without flags.
func (c *Catalog) DefaultFeature() Feature {
	for _, f := range c.Features {
		if f.Default {
			return f
		}
	}
	return Feature{}
}

// Suffix maps a feature name to its artifact suffix. Unknown names pass through.
func (c *Catalog) Suffix(feature string) string {
	if f, ok := c.Feature(feature); ok {
		return f.Suffix
	}
	return feature
}

// HasABI reports whether abi is declared.
func (c *Catalog) HasABI(abi string) bool {
	for _, a := range c.ABIs {
		if a.Name == abi {
			return true
		}
	}
	return false
}

// DefaultABIs lists the ABIs built when none are requested.
func (c *Catalog) DefaultABIs() []string {
	var out []string
	for _, a := range c.ABIs {
		if a.Default {
			out = append(out, a.Name)
		}
	}
	return out
}

// PlatformNames lists declared platforms in catalog order.
func (c *Catalog) PlatformNames() []string {
	return names(c.Platforms, func(p Platform) string { return p.Name })
}

func (c *Catalog) CrateNames() []string {
	return names(c.Crates, func(cr Crate) string { return cr.Name })
}

func (c *Catalog) FeatureNames() []string {
	return names(c.Features, func(f Feature) string { return f.Name })
}

func (c *Catalog) ABINames() []string {
	return names(c.ABIs, func(a ABI) string { return a.Name })
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

// OutputFile is the file name cargo gives crate when compiled for rustTarget.
func OutputFile(crate Crate, rustTarget string) string {
	stem := crate.Package
	windows := strings.Contains(rustTarget, "windows")
	if crate.Kind == "bin" {
		if windows {
			return stem + ".exe"
		}
		return stem
	}

	stem = strings.ReplaceAll(stem, "-", "_")
	switch {
	case windows:
		return stem + ".dll"
	case strings.Contains(rustTarget, "apple"):
		return "lib" + stem + ".dylib"
	default:
		return "lib" + stem + ".so"
	}
}
