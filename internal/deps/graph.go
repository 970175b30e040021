package deps

import (
	_ "embed"
	"fmt"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var defaultRecipes []byte

type recipeFile struct {
	Recipes []domain.Recipe `yaml:"recipes"`
}

// Graph is the declared native dependency graph.
type Graph struct {
	recipes map[string]domain.Recipe
	order   []string // declaration order
}

// DefaultGraph returns the embedded player-core graph.
func DefaultGraph() (*Graph, error) {
	return ParseGraph(defaultRecipes)
}

// ParseGraph decodes a recipes document and validates it.
func ParseGraph(data []byte) (*Graph, error) {
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	return NewGraph(file.Recipes)
}

// NewGraph builds a graph from recipes and validates it.
func NewGraph(recipes []domain.Recipe) (*Graph, error) {
	g := &Graph{recipes: make(map[string]domain.Recipe, len(recipes))}
	for _, r := range recipes {
		if r.Name == "" {
			return nil, fmt.Errorf("recipe without name")
		}
		if _, dup := g.recipes[r.Name]; dup {
			return nil, fmt.Errorf("duplicate recipe %q", r.Name)
		}
		g.recipes[r.Name] = r
		g.order = append(g.order, r.Name)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that every prerequisite is declared and the graph is acyclic.
func (g *Graph) Validate() error {
	w := newWalk(g)
	for _, name := range g.order {
		if err := w.visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// Names lists recipes in declaration order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.order...)
}

// Recipe returns the recipe declared under name.
func (g *Graph) Recipe(name string) (domain.Recipe, error) {
	r, ok := g.recipes[name]
	if !ok {
		return domain.Recipe{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, name)
	}
	return r, nil
}

// Order returns name and its transitive prerequisites, prerequisites first,
// following the declared order of each node's requirements.
func (g *Graph) Order(name string) ([]string, error) {
	if _, err := g.Recipe(name); err != nil {
		return nil, err
	}
	w := newWalk(g)
	if err := w.visit(name, nil); err != nil {
		return nil, err
	}
	return w.done, nil
}

type nodeState int

const (
	unvisited nodeState = iota
	inProgress
	finished
)

// walk is a depth-first traversal with per-call node state.
type walk struct {
	g     *Graph
	state map[string]nodeState
	done  []string
}

func newWalk(g *Graph) *walk {
	return &walk{g: g, state: make(map[string]nodeState, len(g.recipes))}
}

func (w *walk) visit(name string, path []string) error {
	switch w.state[name] {
	case finished:
		return nil
	case inProgress:
		return &domain.CycleError{Path: cyclePath(path, name)}
	}

	r, ok := w.g.recipes[name]
	if !ok {
		if len(path) > 0 {
			return fmt.Errorf("%w: %q required by %q", domain.ErrNodeNotFound, name, path[len(path)-1])
		}
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, name)
	}

	w.state[name] = inProgress
	path = append(path, name)
	for _, req := range r.Requires {
		if err := w.visit(req, path); err != nil {
			return err
		}
	}
	w.state[name] = finished
	w.done = append(w.done, name)
	return nil
}

func cyclePath(path []string, back string) []string {
	for i, n := range path {
		if n == back {
			cycle := append([]string(nil), path[i:]...)
			return append(cycle, back)
		}
	}
	return append(append([]string(nil), path...), back)
}
