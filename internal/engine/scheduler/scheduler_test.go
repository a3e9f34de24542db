package scheduler_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/adapters/cas"
	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/adapters/resolver"
	"go.trai.ch/spool/internal/adapters/sandbox"
	"go.trai.ch/spool/internal/adapters/telemetry"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/core/ports/mocks"
	"go.trai.ch/spool/internal/engine/cache"
	"go.trai.ch/spool/internal/engine/pipeline"
	"go.trai.ch/spool/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	project *domain.Project
	walker  *fs.Walker
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	project := &domain.Project{
		Root:      root,
		SourceDir: filepath.Join(root, "src"),
		OutputDir: filepath.Join(root, "dist"),
		Manifest:  true,
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(project.SourceDir, filepath.FromSlash(rel)), content)
	}
	return &fixture{project: project, walker: fs.NewWalker()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run builds every entry with a fresh engine over shared on-disk state, as
// separate invocations of the CLI would.
func (f *fixture) run(t *testing.T, opts scheduler.Options) (*domain.BuildReport, error) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	hasher := fs.NewHasher()
	tracer := telemetry.NewNoOpTracer()
	res := resolver.New(nil, hasher, resolver.Options{SourceDir: f.project.SourceDir})
	sb := sandbox.New(nil, log, sandbox.Options{Timeout: 5 * time.Second})
	p := pipeline.New(res, hasher, sb, cache.New(0), tracer)

	s := scheduler.NewScheduler(p, cas.NewStore(f.project.Root), hasher, fs.NewWriter(), tracer, log)

	entries, err := f.walker.Discover(f.project.SourceDir, f.project.OutputDir)
	require.NoError(t, err)
	return s.Run(t.Context(), f.project, entries, opts)
}

func (f *fixture) output(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.project.OutputDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestScheduler_WritesMirroredOutput(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a/index.html.js": `export default "<p>ok</p>"`,
		"style.css.js":    `import { color } from "./_theme.js"; export default "p{color:" + color + "}"`,
		"_theme.js":       `export const color = "red"`,
	})

	report, err := f.run(t, scheduler.Options{})
	require.NoError(t, err)

	assert.Equal(t, "<p>ok</p>", f.output(t, "a/index.html"))
	assert.Equal(t, "p{color:red}", f.output(t, "style.css"))

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "a/index.html.js", report.Entries[0].EntryPath)
	assert.Equal(t, "a/index.html", report.Entries[0].OutputPath)
	assert.Equal(t, domain.KindHTML, report.Entries[0].Kind)
	assert.False(t, report.Entries[0].Fingerprint.IsZero())
	assert.True(t, report.OK())
}

func TestScheduler_FailureDoesNotStopSiblings(t *testing.T) {
	f := newFixture(t, map[string]string{
		"good.html.js": `export default "<p>good</p>"`,
		"bad.html.js":  `throw new Error("boom")`,
	})

	report, err := f.run(t, scheduler.Options{Concurrency: 1})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	require.ErrorIs(t, err, domain.ErrThrown)

	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, report.Failed())

	bad := report.Entries[0]
	assert.Equal(t, "bad.html.js", bad.EntryPath)
	assert.Equal(t, domain.StatusFailed, bad.Status)
	assert.Equal(t, domain.KindThrown, bad.ErrorKind)
	assert.Contains(t, bad.Cause, "boom")
	assert.Empty(t, bad.OutputPath)

	assert.Equal(t, "<p>good</p>", f.output(t, "good.html"))
	assert.NoFileExists(t, filepath.Join(f.project.OutputDir, "bad.html"))
}

func TestScheduler_CycleIsReported(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.html.js": `import b from "./b.html.js"; export default b`,
		"b.html.js": `import a from "./a.html.js"; export default a`,
	})

	report, err := f.run(t, scheduler.Options{})
	require.ErrorIs(t, err, domain.ErrCycleDetected)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, domain.KindCycle, report.Entries[0].ErrorKind)
	assert.Equal(t, "a.html.js -> b.html.js -> a.html.js", report.Entries[0].Cause)
}

func TestScheduler_Incremental(t *testing.T) {
	f := newFixture(t, map[string]string{
		"index.html.js": `import n from "./_name.js"; export default "<p>" + n + "</p>"`,
		"_name.js":      `export default "one"`,
	})

	_, err := f.run(t, scheduler.Options{})
	require.NoError(t, err)

	report, err := f.run(t, scheduler.Options{})
	require.NoError(t, err)
	assert.True(t, report.Entries[0].Cached, "unchanged entry keeps its output")
	assert.Equal(t, 1, report.Cached())

	report, err = f.run(t, scheduler.Options{NoCache: true})
	require.NoError(t, err)
	assert.False(t, report.Entries[0].Cached)

	// A tampered output is rebuilt.
	writeFile(t, filepath.Join(f.project.OutputDir, "index.html"), "stale")
	report, err = f.run(t, scheduler.Options{})
	require.NoError(t, err)
	assert.False(t, report.Entries[0].Cached)
	assert.Equal(t, "<p>one</p>", f.output(t, "index.html"))

	// A changed import changes the fingerprint of the entry.
	writeFile(t, filepath.Join(f.project.SourceDir, "_name.js"), `export default "two"`)
	report, err = f.run(t, scheduler.Options{})
	require.NoError(t, err)
	assert.False(t, report.Entries[0].Cached)
	assert.Equal(t, "<p>two</p>", f.output(t, "index.html"))
}

func TestScheduler_Publish(t *testing.T) {
	f := newFixture(t, map[string]string{
		"index.html.js": `export default "<p>ok</p>"`,
		"bad.css.js":    `export default 42`,
	})
	f.project.Versioned = true
	f.project.Release = "v1"

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	s := scheduler.NewScheduler(nil, nil, nil, fs.NewWriter(), telemetry.NewNoOpTracer(), log)

	report, _ := f.run(t, scheduler.Options{})
	manifest, err := s.Publish(f.project, report)
	require.NoError(t, err)

	require.Len(t, manifest.Assets, 1, "failed entries are not published")
	asset := manifest.Assets["index.html"]
	assert.Equal(t, "v1/index.html", asset.VersionedPath)
	assert.Equal(t, report.Entries[1].Fingerprint, asset.Fingerprint)
	integrity, err := domain.ComputeIntegrity("sha384", []byte("<p>ok</p>"))
	require.NoError(t, err)
	assert.Equal(t, integrity, asset.Integrity)
	assert.Equal(t, "text/html; charset=utf-8", asset.ContentType)

	assert.Equal(t, "<p>ok</p>", f.output(t, "v1/index.html"))

	var onDisk domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(f.output(t, domain.ManifestFileName)), &onDisk))
	assert.Equal(t, *manifest, onDisk)
}

func TestScheduler_PublishDisabled(t *testing.T) {
	f := newFixture(t, map[string]string{"index.html.js": `export default "x"`})
	f.project.Manifest = false

	s := scheduler.NewScheduler(nil, nil, nil, fs.NewWriter(), telemetry.NewNoOpTracer(), nil)
	report, err := f.run(t, scheduler.Options{})
	require.NoError(t, err)

	manifest, err := s.Publish(f.project, report)
	require.NoError(t, err)
	assert.Empty(t, manifest.Assets)
	assert.NoFileExists(t, filepath.Join(f.project.OutputDir, domain.ManifestFileName))
}

func TestScheduler_WriteFailureIsReported(t *testing.T) {
	f := newFixture(t, map[string]string{"index.html.js": `export default "<p>ok</p>"`})
	entries, err := f.walker.Discover(f.project.SourceDir, f.project.OutputDir)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	store := mocks.NewMockBuildInfoStore(ctrl)
	writer := mocks.NewMockArtifactWriter(ctrl)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)

	tracer.EXPECT().EmitPlan(gomock.Any(), []string{"index.html.js"})
	tracer.EXPECT().Start(gomock.Any(), "build index.html.js", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		})
	span.EXPECT().SetAttribute("spool.fingerprint", gomock.Any())
	span.EXPECT().RecordError(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrOutputWriteFailed)
	})
	span.EXPECT().End()

	// Unreadable build info only costs a rebuild.
	store.EXPECT().Get("index.html.js").Return(nil, errors.New("corrupt"))
	log.EXPECT().Warn(gomock.Any())
	writer.EXPECT().WriteArtifact(f.project.OutputDir, "index.html", []byte("<p>ok</p>")).
		Return("", zerr.Wrap(domain.ErrOutputWriteFailed, "disk full"))

	hasher := fs.NewHasher()
	noop := telemetry.NewNoOpTracer()
	res := resolver.New(nil, hasher, resolver.Options{SourceDir: f.project.SourceDir})
	sb := sandbox.New(nil, log, sandbox.Options{Timeout: 5 * time.Second})
	p := pipeline.New(res, hasher, sb, cache.New(0), noop)
	s := scheduler.NewScheduler(p, store, hasher, writer, tracer, log)

	report, err := s.Run(t.Context(), f.project, entries, scheduler.Options{})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrOutputWriteFailed)

	require.Len(t, report.Entries, 1)
	e := report.Entries[0]
	assert.Equal(t, domain.StatusFailed, e.Status)
	assert.Empty(t, e.OutputPath)
	assert.NotEmpty(t, e.Fingerprint)
}
