// Package scheduler runs static builds: every discovered entry is rendered,
// written to the output directory and reported, concurrently and
// independently of its siblings.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options control one run.
type Options struct {
	// Concurrency bounds the entries built at once. Zero means NumCPU.
	Concurrency int
	// NoCache renders every entry even when its output is up to date.
	NoCache bool
}

// Scheduler builds entries of a project.
type Scheduler struct {
	pipeline *pipeline.Pipeline
	store    ports.BuildInfoStore
	hasher   ports.Fingerprinter
	writer   ports.ArtifactWriter
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	p *pipeline.Pipeline,
	store ports.BuildInfoStore,
	hasher ports.Fingerprinter,
	writer ports.ArtifactWriter,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		pipeline: p,
		store:    store,
		hasher:   hasher,
		writer:   writer,
		tracer:   tracer,
		logger:   logger,
	}
}

// Run builds entries and returns a report covering every one of them. A
// failed entry never stops its siblings; the returned error wraps
// ErrBuildExecutionFailed and joins the failures of all entries.
func (s *Scheduler) Run(
	ctx context.Context,
	project *domain.Project,
	entries []domain.Entry,
	opts Options,
) (*domain.BuildReport, error) {
	start := time.Now()

	planned := make([]string, len(entries))
	for i, e := range entries {
		planned[i] = e.Source
	}
	s.tracer.EmitPlan(ctx, planned)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	state := newRunState(entries)
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, e := range entries {
		eg.Go(func() error {
			rep, err := s.buildEntry(ctx, project, e, opts.NoCache)
			state.finish(i, rep, err)
			return nil
		})
	}
	_ = eg.Wait()

	report := &domain.BuildReport{Entries: state.reports, Duration: time.Since(start)}
	report.Sort()

	if err := state.err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scheduler) buildEntry(
	ctx context.Context,
	project *domain.Project,
	e domain.Entry,
	noCache bool,
) (rep domain.EntryReport, err error) {
	ctx, span := s.tracer.Start(ctx, "build "+e.Source, ports.AsRoot())
	defer span.End()

	start := time.Now()
	rep = domain.EntryReport{EntryPath: e.Source, Kind: e.Kind, Status: domain.StatusSuccess}
	defer func() {
		rep.Duration = time.Since(start)
		if err != nil {
			span.RecordError(err)
			rep.Status = domain.StatusFailed
			rep.ErrorKind = domain.KindOf(err)
			rep.Cause = domain.Detail(err)
			if rep.Cause == "" {
				rep.Cause = err.Error()
			}
		}
	}()

	plan, err := s.pipeline.Prepare(ctx, domain.ModuleRef{Specifier: "/" + e.Source})
	if err != nil {
		return rep, err
	}
	fp := plan.Fingerprint()
	rep.Fingerprint = fp
	span.SetAttribute("spool.fingerprint", fp)

	target := filepath.Join(project.OutputDir, filepath.FromSlash(e.Output))
	if !noCache && s.upToDate(e, fp, target) {
		span.SetAttribute("spool.cached", true)
		rep.OutputPath = e.Output
		rep.Cached = true
		return rep, nil
	}

	res, _, err := s.pipeline.Execute(ctx, plan)
	if err != nil {
		return rep, err
	}

	path, err := s.writer.WriteArtifact(project.OutputDir, e.Output, []byte(res.Text))
	if err != nil {
		return rep, err
	}
	rep.OutputPath = e.Output

	s.remember(e, fp, path)
	return rep, nil
}

// upToDate reports whether the last build of e had fingerprint fp and its
// output is still on disk unchanged.
func (s *Scheduler) upToDate(e domain.Entry, fp domain.Fingerprint, target string) bool {
	info, err := s.store.Get(e.Source)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("ignoring build info of %s: %v", e.Source, err))
		return false
	}
	if info == nil || info.Fingerprint != fp {
		return false
	}
	hash, err := s.hasher.OutputHash(target)
	if err != nil {
		return false
	}
	return hash == info.OutputHash
}

// remember stores the build info of a written entry. Failing to do so only
// costs a rebuild next time.
func (s *Scheduler) remember(e domain.Entry, fp domain.Fingerprint, path string) {
	hash, err := s.hasher.OutputHash(path)
	if err == nil {
		err = s.store.Put(domain.BuildInfo{
			Entry:       e.Source,
			Fingerprint: fp,
			OutputHash:  hash,
			Timestamp:   time.Now(),
		})
	}
	if err != nil {
		s.logger.Warn(fmt.Sprintf("could not record build info of %s: %v", e.Source, err))
	}
}

// runState collects the outcome of concurrently built entries. Each index
// is written by one worker only.
type runState struct {
	reports []domain.EntryReport
	errs    []error
}

func newRunState(entries []domain.Entry) *runState {
	return &runState{
		reports: make([]domain.EntryReport, len(entries)),
		errs:    make([]error, len(entries)),
	}
}

func (st *runState) finish(i int, rep domain.EntryReport, err error) {
	st.reports[i] = rep
	if err != nil {
		st.errs[i] = zerr.With(zerr.Wrap(err, domain.ErrEntryFailed.Error()), "entry", rep.EntryPath)
	}
}

func (st *runState) err() error {
	var failed []error
	for _, err := range st.errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	summary := zerr.With(
		zerr.Wrap(domain.ErrBuildExecutionFailed, fmt.Sprintf("%d of %d entries failed", len(failed), len(st.errs))),
		"failed", len(failed),
	)
	return errors.Join(append([]error{summary}, failed...)...)
}
