package deps

import (
	"testing"

	"github.com/aretw0/mpvbuild/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGraph(t *testing.T) {
	g, err := DefaultGraph()
	require.NoError(t, err)

	order, err := g.Order(domain.PlayerCore)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ffmpeg", "freetype", "fribidi", "harfbuzz", "libunibreak", "libass", "libplacebo", "mpv",
	}, order)

	index := map[string]int{}
	for i, n := range order {
		index[n] = i
	}
	for _, n := range order {
		r, _ := g.Recipe(n)
		for _, req := range r.Requires {
			assert.Less(t, index[req], index[n], "%s must precede %s", req, n)
		}
	}
}

func TestGraph_Order(t *testing.T) {
	g, err := NewGraph([]domain.Recipe{
		{Name: "a"},
		{Name: "b", Requires: []string{"a"}},
		{Name: "c", Requires: []string{"a", "b"}},
	})
	require.NoError(t, err)

	order, err := g.Order("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order, "shared prerequisites appear once")

	order, err = g.Order("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)

	_, err = g.Order("zlib")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestGraph_Validation(t *testing.T) {
	t.Run("Cycle", func(t *testing.T) {
		_, err := NewGraph([]domain.Recipe{
			{Name: "a", Requires: []string{"b"}},
			{Name: "b", Requires: []string{"c"}},
			{Name: "c", Requires: []string{"a"}},
		})
		require.ErrorIs(t, err, domain.ErrCycle)

		var cycle *domain.CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "b", "c", "a"}, cycle.Path)
	})

	t.Run("Self Reference", func(t *testing.T) {
		_, err := NewGraph([]domain.Recipe{{Name: "a", Requires: []string{"a"}}})
		assert.ErrorIs(t, err, domain.ErrCycle)
	})

	t.Run("Undeclared Prerequisite", func(t *testing.T) {
		_, err := NewGraph([]domain.Recipe{{Name: "a", Requires: []string{"ghost"}}})
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
		assert.Contains(t, err.Error(), `required by "a"`)
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := NewGraph([]domain.Recipe{{Name: "a"}, {Name: "a"}})
		assert.Error(t, err)
	})

	t.Run("Diamond Is Not A Cycle", func(t *testing.T) {
		_, err := NewGraph([]domain.Recipe{
			{Name: "base"},
			{Name: "left", Requires: []string{"base"}},
			{Name: "right", Requires: []string{"base"}},
			{Name: "top", Requires: []string{"left", "right"}},
		})
		assert.NoError(t, err)
	})
}

func TestParseGraph(t *testing.T) {
	g, err := ParseGraph([]byte(`
recipes:
  - name: zlib
    system: autotools
    source: {url: https://example.com/zlib.git, ref: v1.3}
    probe: lib/pkgconfig/zlib.pc
`))
	require.NoError(t, err)

	r, err := g.Recipe("zlib")
	require.NoError(t, err)
	assert.Equal(t, "v1.3", r.Source.Ref)
	assert.Equal(t, domain.BuildSystemAutotools, r.System)

	_, err = ParseGraph([]byte("recipes: [oops"))
	assert.Error(t, err)
}
