package app

import (
	"context"
	"sync"

	"go.trai.ch/spool/internal/adapters/config"
	"go.trai.ch/spool/internal/adapters/remote"
	"go.trai.ch/spool/internal/adapters/resolver"
	"go.trai.ch/spool/internal/adapters/sandbox"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/engine/cache"
	"go.trai.ch/spool/internal/engine/pipeline"
)

// engine is the per-project render stack.
type engine struct {
	resolver *resolver.Resolver
	pipeline *pipeline.Pipeline
	lock     *lockRecorder
	lockPath string
}

func (a *App) newEngine(project *domain.Project) (*engine, error) {
	var fetcher ports.RemoteFetcher = remote.NewFetcher(a.hasher, a.logger, remote.Options{
		Timeout:   project.FetchTimeout,
		Attempts:  project.FetchAttempts,
		BaseDelay: project.FetchBaseDelay,
	}, remote.WithStore(a.stores.Remote(project.Root)))

	eng := &engine{}
	if project.Lock {
		eng.lockPath = config.LockfilePath(project)
		lock, err := config.ReadLockfile(eng.lockPath)
		if err != nil {
			return nil, err
		}
		eng.lock = &lockRecorder{next: fetcher, lock: lock}
		fetcher = eng.lock
	}

	eng.resolver = resolver.New(fetcher, a.hasher, resolver.Options{
		SourceDir: project.SourceDir,
		ImportMap: project.ImportMap,
		Integrity: func(url string) string {
			if integrity, ok := project.Integrity[url]; ok {
				return integrity
			}
			if eng.lock != nil {
				return eng.lock.integrity(url)
			}
			return ""
		},
	})

	box := sandbox.New(fetcher, a.logger, sandbox.Options{Timeout: project.ExecTimeout})
	eng.pipeline = pipeline.New(eng.resolver, a.hasher, box, cache.New(project.CacheCapacity), a.tracer)
	return eng, nil
}

// saveLock writes the lockfile when fetches pinned anything new.
func (e *engine) saveLock() error {
	if e.lock == nil || !e.lock.dirty() {
		return nil
	}
	return e.lock.save(e.lockPath)
}

// lockRecorder pins the integrity of every remote module fetched through it.
type lockRecorder struct {
	next ports.RemoteFetcher

	mu      sync.Mutex
	lock    *domain.Lockfile
	changed bool
}

func (l *lockRecorder) Fetch(ctx context.Context, url, integrity string) (*domain.SourceUnit, error) {
	unit, err := l.next.Fetch(ctx, url, integrity)
	if err != nil {
		return nil, err
	}
	sri, err := domain.ComputeIntegrity(domain.DefaultIntegrityAlgorithm, []byte(unit.Content))
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lock.Pin(url, sri) {
		l.changed = true
	}
	return unit, nil
}

func (l *lockRecorder) integrity(url string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	integrity, _ := l.lock.Integrity(url)
	return integrity
}

func (l *lockRecorder) dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changed
}

func (l *lockRecorder) save(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := config.WriteLockfile(path, l.lock); err != nil {
		return err
	}
	l.changed = false
	return nil
}
