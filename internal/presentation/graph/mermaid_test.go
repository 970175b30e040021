package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/mpvbuild/internal/presentation/graph"
	"github.com/aretw0/mpvbuild/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		recipes  []domain.Recipe
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes By Build System",
			recipes: []domain.Recipe{
				{Name: "mpv", System: domain.BuildSystemMeson},
				{Name: "libass", System: domain.BuildSystemAutotools},
				{Name: "ffmpeg", System: domain.BuildSystemFFmpeg},
				{Name: "fribidi", System: domain.BuildSystemMeson},
			},
			contains: []string{
				`mpv(("mpv"))`,
				`libass[["libass"]]`,
				`ffmpeg{{"ffmpeg"}}`,
				`fribidi["fribidi"]`,
			},
		},
		{
			name: "Edges Point To Dependents",
			recipes: []domain.Recipe{
				{Name: "freetype"},
				{Name: "harfbuzz", Requires: []string{"freetype"}},
			},
			contains: []string{"freetype --> harfbuzz"},
			excludes: []string{"harfbuzz --> freetype"},
		},
		{
			name:     "Ref Label And Sanitized ID",
			recipes:  []domain.Recipe{{Name: "lib-foo.x", Source: domain.Source{Ref: "v1.2"}}},
			contains: []string{`lib_foo_x["lib-foo.x <br/> v1.2"]`},
		},
		{
			name:    "Overlay",
			recipes: []domain.Recipe{{Name: "freetype"}, {Name: "mpv"}},
			overlay: &graph.Overlay{Installed: []string{"freetype", "freetype"}, Target: "mpv"},
			contains: []string{
				"classDef installed",
				"class freetype installed;",
				"class mpv target;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.recipes, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("missing header in:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q", unwanted)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class freetype installed;") != 1 {
				t.Errorf("installed nodes must be styled once")
			}
		})
	}
}
