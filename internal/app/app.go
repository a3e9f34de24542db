// Package app implements the application layer for spool.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/spool/internal/adapters/cas"
	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/adapters/telemetry"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	walker       *fs.Walker
	hasher       ports.Fingerprinter
	writer       ports.ArtifactWriter
	stores       *cas.Factory
	tracer       *telemetry.OTelTracer
	renderer     ports.Renderer
	newWatcher   func() (ports.Watcher, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	walker *fs.Walker,
	hasher ports.Fingerprinter,
	writer ports.ArtifactWriter,
	stores *cas.Factory,
	tracer *telemetry.OTelTracer,
	renderer ports.Renderer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		walker:       walker,
		hasher:       hasher,
		writer:       writer,
		stores:       stores,
		tracer:       tracer,
		renderer:     renderer,
		newWatcher:   defaultWatcher(log),
	}
}

// WithWatcher replaces the file watcher used by Serve.
func (a *App) WithWatcher(newWatcher func() (ports.Watcher, error)) *App {
	a.newWatcher = newWatcher
	return a
}

// SetJSONLogs switches the logger to JSON records when it supports that.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Dir is the working directory; empty means the process working directory.
	Dir        string
	ConfigPath string
	// Entries limits the build to these entries, given by source or output path.
	Entries     []string
	NoCache     bool
	Concurrency int
	// ReportPath receives the build report as JSON when set.
	ReportPath string
}

// Build renders every entry of the project into the output directory.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	// 1. Load the project
	project, err := a.load(opts.Dir, opts.ConfigPath)
	if err != nil {
		return err
	}

	// 2. Discover entries
	entries, err := a.walker.Discover(project.SourceDir, project.OutputDir)
	if err != nil {
		return err
	}
	entries, err = selectEntries(entries, opts.Entries)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrNoEntries, "nothing to build"), "source", project.SourceDir)
	}

	// 3. Assemble the engine
	eng, err := a.newEngine(project)
	if err != nil {
		return err
	}
	stop := a.startTelemetry()

	sched := scheduler.NewScheduler(
		eng.pipeline,
		a.stores.BuildInfo(project.Root),
		a.hasher,
		a.writer,
		a.tracer,
		a.logger,
	)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = project.Concurrency
	}

	// 4. Run
	report, runErr := sched.Run(ctx, project, entries, scheduler.Options{
		Concurrency: concurrency,
		NoCache:     opts.NoCache,
	})
	stop(ctx)

	// 5. Publish and report
	if _, err := sched.Publish(project, report); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if opts.ReportPath != "" {
		if err := writeReport(opts.ReportPath, report); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	a.renderer.RenderReport(report)

	if err := eng.saveLock(); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Dir        string
	ConfigPath string
	// Remote also drops cached remote modules.
	Remote bool
	// All removes all spool state and the output directory.
	All bool
}

// Clean removes cached state and build artifacts based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	project, err := a.load(options.Dir, options.ConfigPath)
	if err != nil {
		return err
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	switch {
	case options.All:
		remove(filepath.Join(project.Root, domain.DefaultSpoolPath()), "spool state")
		remove(project.OutputDir, "output directory")
	case options.Remote:
		remove(filepath.Join(project.Root, domain.DefaultStorePath()), "build info store")
		remove(filepath.Join(project.Root, domain.DefaultRemoteCachePath()), "remote module cache")
	default:
		remove(filepath.Join(project.Root, domain.DefaultStorePath()), "build info store")
	}
	return errs
}

func (a *App) load(dir, configPath string) (*domain.Project, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}
	project, err := a.configLoader.Load(dir, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

// startTelemetry routes spans and console output to the renderer. The
// returned function drains pending output.
func (a *App) startTelemetry() func(context.Context) {
	a.tracer.WithRenderer(a.renderer)
	shutdown := telemetry.InstallProvider(a.renderer)
	return func(ctx context.Context) {
		ctx = context.WithoutCancel(ctx)
		_ = a.tracer.Shutdown(ctx)
		_ = shutdown(ctx)
		_ = a.renderer.Stop()
	}
}

// selectEntries keeps the entries named by source or output path. No names
// keeps everything.
func selectEntries(entries []domain.Entry, names []string) ([]domain.Entry, error) {
	if len(names) == 0 {
		return entries, nil
	}

	var selected []domain.Entry
	for _, name := range names {
		name = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "./")
		found := false
		for _, e := range entries {
			if e.Source == name || e.Output == name {
				if !slices.Contains(selected, e) {
					selected = append(selected, e)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotAnEntry, "unknown entry"), "entry", name)
		}
	}
	return selected, nil
}

func writeReport(path string, report *domain.BuildReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode build report")
	}
	if err := os.WriteFile(path, append(data, '\n'), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write build report"), "path", path)
	}
	return nil
}
