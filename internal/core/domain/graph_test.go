package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/zerr"
)

func unit(name string, imports ...string) *domain.SourceUnit {
	return &domain.SourceUnit{ID: "/src/" + name, Name: name, Imports: imports}
}

func buildGraph(t *testing.T, units []*domain.SourceUnit, edges map[string][]string) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, u := range units {
		require.NoError(t, g.AddUnit(u))
	}
	for from, tos := range edges {
		for _, to := range tos {
			require.NoError(t, g.AddEdge("/src/"+from, "/src/"+to))
		}
	}
	return g
}

func TestGraph_AddUnit(t *testing.T) {
	g := domain.NewGraph()
	u := unit("a.html.js")

	require.NoError(t, g.AddUnit(u))

	err := g.AddUnit(u)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnitAlreadyExists)

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "a.html.js", zErr.Metadata()["module"])
}

func TestGraph_AddEdge_Missing(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddUnit(unit("a.html.js")))

	err := g.AddEdge("/src/a.html.js", "/src/ghost.js")
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestGraph_Validate_Cycle(t *testing.T) {
	tests := []struct {
		name      string
		units     []string
		edges     map[string][]string
		entry     string
		wantCycle string
	}{
		{
			name:      "self import",
			units:     []string{"a"},
			edges:     map[string][]string{"a": {"a"}},
			entry:     "a",
			wantCycle: "a -> a",
		},
		{
			name:      "two node cycle",
			units:     []string{"a", "b"},
			edges:     map[string][]string{"a": {"b"}, "b": {"a"}},
			entry:     "a",
			wantCycle: "a -> b -> a",
		},
		{
			name:      "cycle below a clean prefix",
			units:     []string{"entry", "x", "y", "z"},
			edges:     map[string][]string{"entry": {"x"}, "x": {"y"}, "y": {"z"}, "z": {"x"}},
			entry:     "entry",
			wantCycle: "x -> y -> z -> x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := make([]*domain.SourceUnit, 0, len(tt.units))
			for _, n := range tt.units {
				units = append(units, unit(n))
			}
			g := buildGraph(t, units, tt.edges)

			err := g.Validate("/src/" + tt.entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCycleDetected)
			assert.Equal(t, tt.wantCycle, domain.Metadata(err)["cycle"])

			count := 0
			for range g.Walk() {
				count++
			}
			assert.Zero(t, count, "a failed validation must not expose an order")
		})
	}
}

func TestGraph_Walk(t *testing.T) {
	// a -> b -> c, a -> c, d is disconnected
	g := buildGraph(t,
		[]*domain.SourceUnit{unit("a"), unit("b"), unit("c"), unit("d")},
		map[string][]string{"a": {"b", "c"}, "b": {"c"}},
	)

	require.NoError(t, g.Validate("/src/a"))

	var order []string
	for u := range g.Walk() {
		order = append(order, u.Name)
	}

	assert.Equal(t, []string{"c", "b", "a", "d"}, order)
	assert.Equal(t, "a", g.Entry().Name)
	assert.Len(t, order, g.Len(), "no module may be dropped")
}

func TestGraph_Walk_Deterministic(t *testing.T) {
	build := func() []string {
		g := buildGraph(t,
			[]*domain.SourceUnit{unit("root"), unit("l1"), unit("l2"), unit("l3"), unit("shared")},
			map[string][]string{
				"root": {"l1", "l2", "l3"},
				"l1":   {"shared"},
				"l2":   {"shared"},
				"l3":   {"shared"},
			},
		)
		require.NoError(t, g.Validate("/src/root"))
		var order []string
		for u := range g.Walk() {
			order = append(order, u.Name)
		}
		return order
	}

	first := build()
	for range 20 {
		assert.Equal(t, first, build())
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := buildGraph(t,
		[]*domain.SourceUnit{unit("a"), unit("b"), unit("c")},
		map[string][]string{"a": {"c", "b"}, "b": {"c"}},
	)

	deps := g.Dependencies("/src/a")
	require.Len(t, deps, 2)
	assert.Equal(t, "c", deps[0].Name)
	assert.Equal(t, "b", deps[1].Name)

	assert.Equal(t, []string{"/src/a", "/src/b"}, g.Dependents("/src/c"))
	assert.True(t, g.Has("/src/b"))
	assert.False(t, g.Has("/src/zzz"))
}

func TestGraph_Validate_UnknownEntry(t *testing.T) {
	g := domain.NewGraph()
	err := g.Validate("/src/missing")
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestGraph_Link(t *testing.T) {
	g := buildGraph(t, []*domain.SourceUnit{unit("a"), unit("b")}, nil)

	require.NoError(t, g.Link("/src/a", "./b", "/src/b"))
	require.NoError(t, g.Link("/src/a", "./b.js", "/src/b"))

	assert.Equal(t, map[string]string{"./b": "/src/b", "./b.js": "/src/b"}, g.Imports("/src/a"))
	assert.Len(t, g.Dependencies("/src/a"), 1, "two specifiers for one module make one edge")
	assert.Empty(t, g.Imports("/src/b"))

	err := g.Link("/src/a", "./missing", "/src/missing")
	require.ErrorIs(t, err, domain.ErrMissingDependency)
	assert.Equal(t, "./missing", domain.Metadata(err)["specifier"])
}
