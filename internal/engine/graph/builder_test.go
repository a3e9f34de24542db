package graph_test

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/adapters/telemetry"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports/mocks"
	"go.trai.ch/spool/internal/engine/graph"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// fakeResolver serves units by bare name; "./x" and "x" both resolve to /src/x.
type fakeResolver struct {
	units map[string]*domain.SourceUnit
	calls atomic.Int32
}

func newFakeResolver(modules map[string][]string) *fakeResolver {
	r := &fakeResolver{units: make(map[string]*domain.SourceUnit)}
	for name, imports := range modules {
		kind, asset := domain.AssetKindOf(name)
		r.units[name] = &domain.SourceUnit{
			ID:      "/src/" + name,
			Name:    name,
			Imports: imports,
			Kind:    kind,
			Asset:   asset,
		}
	}
	return r
}

func (r *fakeResolver) Resolve(_ context.Context, ref domain.ModuleRef) (*domain.SourceUnit, error) {
	r.calls.Add(1)
	name := strings.TrimPrefix(ref.Specifier, "./")
	u, ok := r.units[name]
	if !ok {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrNotFound, "cannot resolve"), "specifier", ref.Specifier), "importer", ref.Base)
	}
	return u, nil
}

func (r *fakeResolver) Forget(...string) {}

func names(g *domain.Graph) []string {
	var out []string
	for u := range g.Walk() {
		out = append(out, u.Name)
	}
	return out
}

func TestBuilder_TopologicalOrder(t *testing.T) {
	r := newFakeResolver(map[string][]string{
		"index.html.js":   {"./_layout.html.js", "./nav.js"},
		"_layout.html.js": {"./nav.js"},
		"nav.js":          nil,
	})
	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())

	g, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "index.html.js"})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"nav.js", "_layout.html.js", "index.html.js"}, names(g))
	assert.Equal(t, "index.html.js", g.Entry().Name)
	assert.Equal(t, map[string]string{
		"./_layout.html.js": "/src/_layout.html.js",
		"./nav.js":          "/src/nav.js",
	}, g.Imports("/src/index.html.js"))
}

func TestBuilder_ImportOrderKeptForDependencies(t *testing.T) {
	r := newFakeResolver(map[string][]string{
		"index.html.js": {"./c.js", "./a.js", "./b.js"},
		"a.js":          nil,
		"b.js":          nil,
		"c.js":          nil,
	})
	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())

	for range 10 {
		g, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "index.html.js"})
		require.NoError(t, err)

		var deps []string
		for _, d := range g.Dependencies("/src/index.html.js") {
			deps = append(deps, d.Name)
		}
		assert.Equal(t, []string{"c.js", "a.js", "b.js"}, deps)
	}
}

func TestBuilder_Cycle(t *testing.T) {
	r := newFakeResolver(map[string][]string{
		"a.html.js": {"./b.html.js"},
		"b.html.js": {"./a.html.js"},
	})
	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())

	g, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "a.html.js"})
	require.ErrorIs(t, err, domain.ErrCycleDetected)
	assert.Nil(t, g)
	assert.Equal(t, "a.html.js -> b.html.js -> a.html.js", domain.Metadata(err)["cycle"])
	assert.Equal(t, domain.KindCycle, domain.KindOf(err))
}

func TestBuilder_ResolutionFailureNamesImporter(t *testing.T) {
	r := newFakeResolver(map[string][]string{
		"index.html.js": {"./ok.js"},
		"ok.js":         {"./missing.js"},
	})
	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())

	_, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "index.html.js"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	meta := domain.Metadata(err)
	assert.Equal(t, "./missing.js", meta["specifier"])
	assert.Equal(t, "/src/ok.js", meta["importer"])
}

func TestBuilder_MissingEntry(t *testing.T) {
	b := graph.NewBuilder(newFakeResolver(nil), telemetry.NewNoOpTracer())

	_, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "nope.html.js"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuilder_SharedDependencyResolvedPerImporter(t *testing.T) {
	r := newFakeResolver(map[string][]string{
		"index.html.js": {"./a.js", "./b.js"},
		"a.js":          {"./shared.js"},
		"b.js":          {"./shared.js"},
		"shared.js":     nil,
	})
	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())

	g, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "index.html.js"})
	require.NoError(t, err)

	order := names(g)
	assert.Len(t, order, 4, "no module is dropped or duplicated")
	assert.Less(t, slices.Index(order, "shared.js"), slices.Index(order, "a.js"))
	assert.Less(t, slices.Index(order, "shared.js"), slices.Index(order, "b.js"))
	assert.Equal(t, []string{"/src/a.js", "/src/b.js"}, g.Dependents("/src/shared.js"))
	assert.Equal(t, int32(5), r.calls.Load())
}

func TestBuilder_ImportsResolvedAgainstImporter(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockModuleResolver(ctrl)

	entry := &domain.SourceUnit{ID: "/src/index.html.js", Name: "index.html.js", Imports: []string{"./a.js"}}
	r.EXPECT().Resolve(gomock.Any(), domain.ModuleRef{Specifier: "index.html.js"}).Return(entry, nil)
	r.EXPECT().Resolve(gomock.Any(), domain.ModuleRef{Specifier: "./a.js", Base: "/src/index.html.js"}).
		Return(nil, zerr.Wrap(domain.ErrInsecureScheme, "http://cdn"))

	b := graph.NewBuilder(r, telemetry.NewNoOpTracer())
	g, err := b.Build(t.Context(), domain.ModuleRef{Specifier: "index.html.js"})
	assert.Nil(t, g)
	assert.ErrorIs(t, err, domain.ErrInsecureScheme)
}
