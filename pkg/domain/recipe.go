package domain

// Build systems understood by the native graph builder.
const (
	BuildSystemMeson     = "meson"
	BuildSystemAutotools = "autotools"
	BuildSystemFFmpeg    = "ffmpeg"
)

// Source locates the upstream tree of a recipe.
type Source struct {
	URL    string `yaml:"url" json:"url"`
	Ref    string `yaml:"ref" json:"ref"`
	EnvURL string `yaml:"env_url,omitempty" json:"env_url,omitempty"` // env var overriding URL
}

// Recipe is one buildable native library (a node of the dependency graph).
type Recipe struct {
	Name     string         `yaml:"name" json:"name"`
	Requires []string       `yaml:"requires,omitempty" json:"requires,omitempty"`
	Source   Source         `yaml:"source" json:"source"`
	System   string         `yaml:"system" json:"system"`
	Options  map[string]any `yaml:"options,omitempty" json:"options,omitempty"`

	// Probe is a path relative to the install prefix whose presence proves
	// the recipe is installed (usually its pkg-config file).
	Probe string `yaml:"probe" json:"probe"`
}

// Stamp records the inputs of the last successful build of a recipe for one architecture.
type Stamp struct {
	Recipe   string `json:"recipe"`
	Arch     string `json:"arch"`
	Digest   string `json:"digest"`
	Revision string `json:"revision,omitempty"`
}
