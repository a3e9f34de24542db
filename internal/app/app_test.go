package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/adapters/cas"
	"go.trai.ch/spool/internal/adapters/config"
	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/adapters/linear"
	"go.trai.ch/spool/internal/adapters/telemetry"
	"go.trai.ch/spool/internal/app"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	app    *app.App
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	h := &harness{dir: dir, stdout: new(bytes.Buffer), stderr: new(bytes.Buffer)}
	h.app = app.New(
		config.NewLoader(log),
		log,
		fs.NewWalker(),
		fs.NewHasher(),
		fs.NewWriter(),
		&cas.Factory{},
		telemetry.NewOTelTracer("test"),
		linear.NewRenderer(h.stdout, h.stderr),
	)
	return h
}

func (h *harness) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestApp_Build(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/a/index.html.js": `export default "<p>ok</p>"`,
		"src/style.css.js":    `console.log("styling"); export default "p{}"`,
	})

	err := h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir})
	require.NoError(t, err)

	assert.Equal(t, "<p>ok</p>", h.read(t, "dist/a/index.html"))
	assert.Equal(t, "p{}", h.read(t, "dist/style.css"))
	assert.FileExists(t, filepath.Join(h.dir, "dist", domain.ManifestFileName))

	assert.Contains(t, h.stdout.String(), "[build style.css.js] styling")
	assert.Contains(t, h.stdout.String(), "2 entries: 2 succeeded (0 cached), 0 failed")
	assert.Contains(t, h.stderr.String(), "Building 2 asset module(s)")
}

func TestApp_Build_FailureIsReported(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/good.html.js": `export default "good"`,
		"src/bad.html.js":  `throw new Error("boom")`,
	})
	reportPath := filepath.Join(h.dir, "report.json")

	err := h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir, ReportPath: reportPath})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	assert.Equal(t, "good", h.read(t, "dist/good.html"))

	var report domain.BuildReport
	require.NoError(t, json.Unmarshal([]byte(h.read(t, "report.json")), &report))
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "bad.html.js", report.Entries[0].EntryPath)
	assert.Equal(t, domain.StatusFailed, report.Entries[0].Status)
	assert.Equal(t, domain.KindThrown, report.Entries[0].ErrorKind)
	assert.Equal(t, domain.StatusSuccess, report.Entries[1].Status)

	assert.Contains(t, h.stdout.String(), "1 failed")
}

func TestApp_Build_SelectedEntries(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/one.html.js": `export default "1"`,
		"src/two.html.js": `export default "2"`,
	})

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir, Entries: []string{"two.html"}}))
	assert.Equal(t, "2", h.read(t, "dist/two.html"))
	assert.NoFileExists(t, filepath.Join(h.dir, "dist", "one.html"))

	err := h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir, Entries: []string{"three.html.js"}})
	require.ErrorIs(t, err, domain.ErrNotAnEntry)
}

func TestApp_Build_NoEntries(t *testing.T) {
	h := newHarness(t, map[string]string{"src/_partial.js": `export default 1`})

	err := h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir})
	require.ErrorIs(t, err, domain.ErrNoEntries)
}

func TestApp_Build_UsesConfig(t *testing.T) {
	h := newHarness(t, map[string]string{
		"spool.yaml": `version: "1"
source: pages
output: public
release: v2
publish:
  versioned: true
imports:
  greeting: ./lib/greeting.js
`,
		"pages/index.html.js":   `import g from "greeting"; export default g`,
		"pages/lib/greeting.js": `export default "hi"`,
	})

	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Dir: filepath.Join(h.dir, "pages")}))
	assert.Equal(t, "hi", h.read(t, "public/index.html"))
	assert.Equal(t, "hi", h.read(t, "public/v2/index.html"))
}

func TestApp_Clean(t *testing.T) {
	h := newHarness(t, map[string]string{"src/index.html.js": `export default "x"`})
	require.NoError(t, h.app.Build(t.Context(), app.BuildOptions{Dir: h.dir}))

	store := filepath.Join(h.dir, domain.DefaultStorePath())
	require.DirExists(t, store)

	require.NoError(t, h.app.Clean(t.Context(), app.CleanOptions{Dir: h.dir}))
	assert.NoDirExists(t, store)
	assert.FileExists(t, filepath.Join(h.dir, "dist", "index.html"))

	require.NoError(t, h.app.Clean(t.Context(), app.CleanOptions{Dir: h.dir, All: true}))
	assert.NoDirExists(t, filepath.Join(h.dir, "dist"))
	assert.NoDirExists(t, filepath.Join(h.dir, domain.SpoolDirName))
}

func TestApp_Serve(t *testing.T) {
	h := newHarness(t, map[string]string{
		"src/index.html.js": `import n from "./_name.js"; export default "<p>" + n + "</p>"`,
		"src/_name.js":      `export default "one"`,
	})

	ctx, cancel := context.WithCancel(t.Context())
	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- h.app.Serve(ctx, app.ServeOptions{
			Dir:      h.dir,
			Addr:     "127.0.0.1:0",
			Watch:    true,
			OnListen: func(addr string) { addrCh <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("serve stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	fetch := func(path string) (int, string) {
		resp, err := http.Get("http://" + addr + path) //nolint:noctx // test helper
		if err != nil {
			return 0, ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	status, body := fetch("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<p>one</p>", body)

	status, _ = fetch("/no/such/file")
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "src", "_name.js"), []byte(`export default "two"`), 0o644))
	assert.Eventually(t, func() bool {
		_, body := fetch("/")
		return body == "<p>two</p>"
	}, 5*time.Second, 20*time.Millisecond, "changed import is picked up")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
