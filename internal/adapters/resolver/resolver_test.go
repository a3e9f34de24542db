package resolver_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/adapters/resolver"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type project struct {
	root string
	src  string
}

func newProject(t *testing.T, files map[string]string) project {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
	return project{root: root, src: filepath.Join(root, "src")}
}

func (p project) path(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

func newResolver(t *testing.T, p project, opts resolver.Options) (*resolver.Resolver, *mocks.MockRemoteFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockRemoteFetcher(ctrl)
	opts.SourceDir = p.src
	return resolver.New(fetcher, fs.NewHasher(), opts), fetcher
}

func TestResolver_Local(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/a/index.html.js": `import util from "../lib/util.js"
export default util("a")`,
		"src/lib/util.js": `export default (s) => "<p>" + s + "</p>"`,
	})
	r, _ := newResolver(t, p, resolver.Options{})
	ctx := t.Context()

	entry, err := r.Resolve(ctx, domain.ModuleRef{Specifier: p.path("src/a/index.html.js")})
	require.NoError(t, err)
	assert.Equal(t, "a/index.html.js", entry.Name)
	assert.Equal(t, domain.OriginLocal, entry.Origin)
	assert.True(t, entry.Asset)
	assert.Equal(t, domain.KindHTML, entry.Kind)
	assert.Equal(t, []string{"../lib/util.js"}, entry.Imports)
	assert.NotEmpty(t, entry.ContentHash)

	util, err := r.Resolve(ctx, domain.ModuleRef{Specifier: "../lib/util.js", Base: entry.ID})
	require.NoError(t, err)
	assert.Equal(t, "lib/util.js", util.Name)
	assert.False(t, util.Asset)

	tests := []struct {
		name string
		ref  domain.ModuleRef
	}{
		{name: "rooted at source dir", ref: domain.ModuleRef{Specifier: "/lib/util.js", Base: entry.ID}},
		{name: "extensionless", ref: domain.ModuleRef{Specifier: "./lib/util"}},
		{name: "relative to source root", ref: domain.ModuleRef{Specifier: "./lib/util.js"}},
		{name: "absolute path", ref: domain.ModuleRef{Specifier: p.path("src/lib/util.js")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.ref)
			require.NoError(t, err)
			assert.Same(t, util, got, "equal locations must share one unit")
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	p := newProject(t, map[string]string{"src/a.html.js": `export default ""`})
	r, _ := newResolver(t, p, resolver.Options{})
	base := p.path("src/a.html.js")

	tests := []struct {
		name    string
		spec    string
		wantErr error
	}{
		{name: "missing file", spec: "./missing.js", wantErr: domain.ErrNotFound},
		{name: "missing package", spec: "left-pad", wantErr: domain.ErrNotFound},
		{name: "plain http", spec: "http://cdn.example.com/x.js", wantErr: domain.ErrInsecureScheme},
		{name: "other scheme", spec: "data:text/javascript,1", wantErr: domain.ErrInvalidSpecifier},
		{name: "empty", spec: "  ", wantErr: domain.ErrInvalidSpecifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(t.Context(), domain.ModuleRef{Specifier: tt.spec, Base: base})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, base, domain.Metadata(err)["importer"])
		})
	}
}

func TestResolver_Remote(t *testing.T) {
	p := newProject(t, map[string]string{"src/a.html.js": `export default ""`})
	const pinned = "sha384-pinned"
	r, fetcher := newResolver(t, p, resolver.Options{
		ImportMap: map[string]string{"lit": "https://cdn.example.com/lit/index.js"},
		Integrity: func(url string) string {
			if url == "https://cdn.example.com/lit/index.js" {
				return pinned
			}
			return ""
		},
	})
	ctx := t.Context()

	lit := &domain.SourceUnit{ID: "https://cdn.example.com/lit/index.js", Origin: domain.OriginRemote}
	dep := &domain.SourceUnit{ID: "https://cdn.example.com/lit/dep.js", Origin: domain.OriginRemote}
	root := &domain.SourceUnit{ID: "https://cdn.example.com/shared.js", Origin: domain.OriginRemote}

	fetcher.EXPECT().Fetch(gomock.Any(), lit.ID, pinned).Return(lit, nil).Times(1)
	fetcher.EXPECT().Fetch(gomock.Any(), dep.ID, "").Return(dep, nil).Times(1)
	fetcher.EXPECT().Fetch(gomock.Any(), root.ID, "").Return(root, nil).Times(1)

	got, err := r.Resolve(ctx, domain.ModuleRef{Specifier: "lit", Base: p.path("src/a.html.js")})
	require.NoError(t, err)
	assert.Same(t, lit, got)

	got, err = r.Resolve(ctx, domain.ModuleRef{Specifier: lit.ID})
	require.NoError(t, err)
	assert.Same(t, lit, got, "remote units are memoized by URL")

	got, err = r.Resolve(ctx, domain.ModuleRef{Specifier: "./dep.js", Base: lit.ID})
	require.NoError(t, err)
	assert.Same(t, dep, got)

	got, err = r.Resolve(ctx, domain.ModuleRef{Specifier: "../shared.js#frag", Base: lit.ID})
	require.NoError(t, err)
	assert.Same(t, root, got)

	got, err = r.Resolve(ctx, domain.ModuleRef{Specifier: "lit", Base: dep.ID})
	require.NoError(t, err)
	assert.Same(t, lit, got, "remote importers use the import map")

	_, err = r.Resolve(ctx, domain.ModuleRef{Specifier: "left-pad", Base: dep.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound, "remote importers never search node_modules")
}

func TestResolver_ImportMapPrefix(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/a.html.js":            `export default ""`,
		"src/vendor/ui/button.js":  `export default "button"`,
		"node_modules/preact/x.js": `export default "x"`,
	})
	r, _ := newResolver(t, p, resolver.Options{
		ImportMap: map[string]string{
			"ui/":   "./vendor/ui/",
			"react": "preact/x.js",
		},
	})

	got, err := r.Resolve(t.Context(), domain.ModuleRef{Specifier: "ui/button.js", Base: p.path("src/a.html.js")})
	require.NoError(t, err)
	assert.Equal(t, "vendor/ui/button.js", got.Name)

	got, err = r.Resolve(t.Context(), domain.ModuleRef{Specifier: "react", Base: p.path("src/a.html.js")})
	require.NoError(t, err)
	assert.Equal(t, p.path("node_modules/preact/x.js"), got.ID)
}

func TestResolver_NodeModules(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/pages/a.html.js":                 `export default ""`,
		"node_modules/exp/package.json":       `{"exports": {".": {"import": "./esm/index.js", "require": "./cjs/index.js"}}, "main": "./cjs/index.js"}`,
		"node_modules/exp/esm/index.js":       `export default "esm"`,
		"node_modules/str/package.json":       `{"exports": "./lib/str.js"}`,
		"node_modules/str/lib/str.js":         `export default "str"`,
		"node_modules/mod/package.json":       `{"module": "dist/mod.mjs", "main": "dist/mod.cjs"}`,
		"node_modules/mod/dist/mod.mjs":       `export default "mod"`,
		"node_modules/main/package.json":      `{"main": "main.js"}`,
		"node_modules/main/main.js":           `module.exports = "main"`,
		"node_modules/bare/index.js":          `export default "bare"`,
		"node_modules/@scope/pkg/sub/file.js": `export default "scoped"`,
		"src/node_modules/near/index.js":      `export default "near"`,
	})
	r, _ := newResolver(t, p, resolver.Options{})
	base := p.path("src/pages/a.html.js")

	tests := []struct {
		spec string
		want string
	}{
		{spec: "exp", want: "node_modules/exp/esm/index.js"},
		{spec: "str", want: "node_modules/str/lib/str.js"},
		{spec: "mod", want: "node_modules/mod/dist/mod.mjs"},
		{spec: "main", want: "node_modules/main/main.js"},
		{spec: "bare", want: "node_modules/bare/index.js"},
		{spec: "@scope/pkg/sub/file.js", want: "node_modules/@scope/pkg/sub/file.js"},
		{spec: "near", want: "src/node_modules/near/index.js"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := r.Resolve(t.Context(), domain.ModuleRef{Specifier: tt.spec, Base: base})
			require.NoError(t, err)
			assert.Equal(t, p.path(tt.want), got.ID)
		})
	}
}

func TestResolver_Forget(t *testing.T) {
	p := newProject(t, map[string]string{"src/a.html.js": `export default "one"`})
	r, _ := newResolver(t, p, resolver.Options{})
	ref := domain.ModuleRef{Specifier: p.path("src/a.html.js")}

	first, err := r.Resolve(t.Context(), ref)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p.path("src/a.html.js"), []byte(`export default "two"`), domain.FilePerm))

	same, err := r.Resolve(t.Context(), ref)
	require.NoError(t, err)
	assert.Same(t, first, same, "the memo holds until forgotten")

	r.Forget(p.path("src/a.html.js"))

	fresh, err := r.Resolve(t.Context(), ref)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, `export default "two"`, fresh.Content)
	assert.NotEqual(t, first.ContentHash, fresh.ContentHash)
}

func TestResolver_ConcurrentResolutionsShareUnit(t *testing.T) {
	p := newProject(t, map[string]string{"src/a.html.js": `export default ""`})
	r, _ := newResolver(t, p, resolver.Options{})
	ref := domain.ModuleRef{Specifier: "./a.html.js"}

	const n = 16
	units := make([]*domain.SourceUnit, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := r.Resolve(t.Context(), ref)
			assert.NoError(t, err)
			units[i] = u
		}()
	}
	wg.Wait()

	for _, u := range units[1:] {
		assert.Same(t, units[0], u)
	}
}

func TestResolver_CancelledWaiterLeavesSharedRead(t *testing.T) {
	p := newProject(t, map[string]string{"src/a.html.js": `export default ""`})
	const url = "https://cdn.example.com/x.js"
	ref := domain.ModuleRef{Specifier: url}

	synctest.Test(t, func(t *testing.T) {
		r, fetcher := newResolver(t, p, resolver.Options{})
		unit := &domain.SourceUnit{ID: url, Origin: domain.OriginRemote}
		release := make(chan struct{})
		fetcher.EXPECT().Fetch(gomock.Any(), url, "").
			DoAndReturn(func(ctx context.Context, _, _ string) (*domain.SourceUnit, error) {
				<-release
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return unit, nil
			}).
			Times(1)

		ctx, cancel := context.WithCancel(t.Context())
		errFirst := make(chan error, 1)
		go func() {
			_, err := r.Resolve(ctx, ref)
			errFirst <- err
		}()
		synctest.Wait()

		type result struct {
			unit *domain.SourceUnit
			err  error
		}
		second := make(chan result, 1)
		go func() {
			u, err := r.Resolve(t.Context(), ref)
			second <- result{unit: u, err: err}
		}()
		synctest.Wait()

		cancel()
		require.ErrorIs(t, <-errFirst, context.Canceled)

		close(release)
		res := <-second
		require.NoError(t, res.err)
		assert.Same(t, unit, res.unit)
	})
}
