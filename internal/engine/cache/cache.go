// Package cache implements the process-wide asset cache.
package cache

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.AssetCache = (*Cache)(nil)

// DefaultCapacity is the number of results kept when no capacity is configured.
const DefaultCapacity = 1024

// flight is one in-progress build of a fingerprint. Its context is cancelled
// when the last waiter leaves.
type flight struct {
	key     string
	ctx     context.Context //nolint:containedctx // owned by the flight, not a request
	cancel  context.CancelFunc
	waiters int

	// Set once the build returned, for waiters that join late.
	finished bool
	res      *domain.AssetResult
	err      error
}

// Cache implements ports.AssetCache. Results are keyed by fingerprint only
// and never expire; the least recently used result is evicted once capacity
// is reached.
type Cache struct {
	mu       sync.Mutex
	entries  *simplelru.LRU[domain.Fingerprint, *domain.AssetResult]
	inflight map[domain.Fingerprint]*flight
	seq      uint64
	group    singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	builds atomic.Uint64
}

// New creates a Cache holding at most capacity results. Zero means unbounded.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = math.MaxInt
	}
	entries, err := simplelru.NewLRU[domain.Fingerprint, *domain.AssetResult](capacity, nil)
	if err != nil {
		// NewLRU only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{
		entries:  entries,
		inflight: make(map[domain.Fingerprint]*flight),
	}
}

// Get returns the cached result for fp.
func (c *Cache) Get(fp domain.Fingerprint) (*domain.AssetResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.entries.Get(fp)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return res, ok
}

// Put stores a result under its fingerprint.
func (c *Cache) Put(result *domain.AssetResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(result.Fingerprint, result)
}

// Invalidate drops the result for fp.
func (c *Cache) Invalidate(fp domain.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(fp)
}

// Stats returns the current counters.
func (c *Cache) Stats() ports.CacheStats {
	c.mu.Lock()
	size := c.entries.Len()
	c.mu.Unlock()

	return ports.CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Builds: c.builds.Load(),
		Size:   size,
	}
}

// GetOrBuild returns the cached result for fp or waits for a build of it.
// Concurrent callers for one fingerprint share a single build. A caller whose
// ctx ends stops waiting; the build itself is cancelled only when no caller
// waits for it anymore. Failed builds are not cached.
func (c *Cache) GetOrBuild(
	ctx context.Context,
	fp domain.Fingerprint,
	build ports.BuildFunc,
) (*domain.AssetResult, bool, error) {
	f, res := c.join(ctx, fp)
	if res != nil {
		return res, true, nil
	}

	ch := c.group.DoChan(f.key, func() (any, error) {
		c.mu.Lock()
		if f.finished {
			c.mu.Unlock()
			return f.res, f.err
		}
		c.mu.Unlock()

		c.builds.Add(1)
		res, err := runBuild(f.ctx, build)

		c.mu.Lock()
		f.finished, f.res, f.err = true, res, err
		if err == nil && res != nil {
			c.entries.Add(fp, res)
		}
		if c.inflight[fp] == f {
			delete(c.inflight, fp)
		}
		c.mu.Unlock()
		f.cancel()

		return res, err
	})

	select {
	case r := <-ch:
		c.leave(fp, f)
		if r.Err != nil {
			return nil, false, r.Err
		}
		return r.Val.(*domain.AssetResult), false, nil //nolint:forcetypeassert // only results are returned
	case <-ctx.Done():
		c.leave(fp, f)
		return nil, false, context.Cause(ctx)
	}
}

// runBuild calls build on its own goroutine and turns a panic or an early
// goroutine exit into ErrBuildAborted, so the flight always finishes.
func runBuild(ctx context.Context, build ports.BuildFunc) (*domain.AssetResult, error) {
	type outcome struct {
		res *domain.AssetResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			err := zerr.Wrap(domain.ErrBuildAborted, "build exited without a result")
			if r := recover(); r != nil {
				err = zerr.With(zerr.Wrap(domain.ErrBuildAborted, "build panicked"), "panic", fmt.Sprint(r))
			}
			done <- outcome{err: err}
		}()
		res, err := build(ctx)
		returned = true
		done <- outcome{res: res, err: err}
	}()
	o := <-done
	return o.res, o.err
}

// join returns the cached result for fp, or registers the caller as a waiter
// of the build in flight, starting a new one if there is none.
func (c *Cache) join(ctx context.Context, fp domain.Fingerprint) (*flight, *domain.AssetResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res, ok := c.entries.Get(fp); ok {
		c.hits.Add(1)
		return nil, res
	}
	c.misses.Add(1)

	f, ok := c.inflight[fp]
	if !ok {
		c.seq++
		// The build keeps the values of the first caller's context, such as
		// its trace span, but not its cancellation.
		buildCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{
			key:    fp.String() + "#" + strconv.FormatUint(c.seq, 10),
			ctx:    buildCtx,
			cancel: cancel,
		}
		c.inflight[fp] = f
	}
	f.waiters++
	return f, nil
}

// leave unregisters a waiter. The last waiter to leave cancels the build and
// detaches it, so later callers start afresh.
func (c *Cache) leave(fp domain.Fingerprint, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	if c.inflight[fp] == f {
		delete(c.inflight, fp)
	}
	f.cancel()
}

// InFlight reports the number of builds currently running.
func (c *Cache) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}
