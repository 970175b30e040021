package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mpvbuild/pkg/domain"
)

// Overlay contains build state to visualize on the graph.
type Overlay struct {
	Installed []string // nodes with a current stamp
	Target    string
}

// GenerateMermaid produces a Mermaid flowchart of the native dependency graph.
// Edges point from a prerequisite to its dependent. Shapes follow the build system:
// - Player core: ((Circle))
// - autotools: [[Subroutine]]
// - ffmpeg configure: {{Hexagon}}
// - meson: [Rectangle]
func GenerateMermaid(recipes []domain.Recipe, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, r := range recipes {
		id := sanitizeMermaidID(r.Name)

		opener, closer := "[", "]"
		switch {
		case r.Name == domain.PlayerCore:
			opener, closer = "((", "))"
		case r.System == domain.BuildSystemAutotools:
			opener, closer = "[[", "]]"
		case r.System == domain.BuildSystemFFmpeg:
			opener, closer = "{{", "}}"
		}

		label := r.Name
		if r.Source.Ref != "" {
			label = fmt.Sprintf("%s <br/> %s", r.Name, r.Source.Ref)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		for _, req := range r.Requires {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(req), id)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef installed fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Installed {
			id := sanitizeMermaidID(name)
			if !seen[id] && id != "" {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s installed;\n", id)
			}
		}
		if overlay.Target != "" {
			fmt.Fprintf(&sb, "    class %s target;\n", sanitizeMermaidID(overlay.Target))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", "+", "_").Replace(id)
}
