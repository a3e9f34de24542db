// Package remote implements the RemoteFetcher port over HTTPS with
// conditional revalidation, integrity checks and bounded retries.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const maxModuleSize = 32 << 20

var _ ports.RemoteFetcher = (*Fetcher)(nil)

// Options bound the network behaviour of a Fetcher.
type Options struct {
	// Timeout applies to dialing, the TLS handshake, response headers and the
	// request as a whole.
	Timeout time.Duration
	// Attempts is the total number of tries for retryable failures.
	Attempts int
	// BaseDelay is the first backoff interval.
	BaseDelay time.Duration
}

type cached struct {
	unit         *domain.SourceUnit
	etag         string
	lastModified string
}

// Fetcher implements ports.RemoteFetcher.
type Fetcher struct {
	client *http.Client
	store  ports.RemoteStore
	hasher ports.Fingerprinter
	logger ports.Logger
	opts   Options

	mu    sync.Mutex
	units map[string]*cached
	group singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client, mainly for tests against TLS test servers.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithStore persists fetched modules so later processes can revalidate them.
func WithStore(store ports.RemoteStore) Option {
	return func(f *Fetcher) { f.store = store }
}

// NewFetcher creates a Fetcher.
func NewFetcher(hasher ports.Fingerprinter, logger ports.Logger, opts Options, options ...Option) *Fetcher {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	f := &Fetcher{
		hasher: hasher,
		logger: logger,
		opts:   opts,
		units:  make(map[string]*cached),
	}
	for _, opt := range options {
		opt(f)
	}
	if f.client == nil {
		f.client = newClient(opts.Timeout)
	}
	return f
}

func newClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// Fetch returns the module served at rawURL. Concurrent calls for the same URL
// and integrity share one request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, integrity string) (*domain.SourceUnit, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	key := u.String()

	ch := f.group.DoChan(key+" "+integrity, func() (any, error) {
		return f.fetch(context.WithoutCancel(ctx), key, integrity)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		unit, _ := res.Val.(*domain.SourceUnit)
		return unit, nil
	case <-ctx.Done():
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "fetch abandoned"), "url", key)
	}
}

// ParseURL validates a remote module URL. Plain http is refused.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, err.Error()), "specifier", rawURL)
	}
	switch u.Scheme {
	case "https":
	case "http":
		return nil, zerr.With(zerr.Wrap(domain.ErrInsecureScheme, "refusing to fetch"), "specifier", rawURL)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "unsupported scheme"), "specifier", rawURL)
	}
	if u.Host == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "missing host"), "specifier", rawURL)
	}
	u.Fragment = ""
	return u, nil
}

type response struct {
	status       int
	body         []byte
	etag         string
	lastModified string
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "http status " + strconv.Itoa(e.code)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, integrity string) (*domain.SourceUnit, error) {
	prior := f.prior(rawURL)

	resp, err := f.requestWithRetry(ctx, rawURL, prior)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusNotModified {
		if err := verify(rawURL, integrity, []byte(prior.unit.Content)); err != nil {
			return nil, err
		}
		f.remember(rawURL, prior, false)
		return prior.unit, nil
	}

	if err := verify(rawURL, integrity, resp.body); err != nil {
		return nil, err
	}

	entry := &cached{etag: resp.etag, lastModified: resp.lastModified}
	contentHash := f.hasher.ContentHash(resp.body)
	if prior != nil && prior.unit.ContentHash == contentHash {
		entry.unit = prior.unit
	} else {
		entry.unit = f.newUnit(rawURL, string(resp.body), contentHash)
	}
	f.remember(rawURL, entry, true)
	return entry.unit, nil
}

func verify(rawURL, integrity string, content []byte) error {
	if err := domain.VerifyIntegrity(integrity, content); err != nil {
		return zerr.With(err, "url", rawURL)
	}
	return nil
}

func (f *Fetcher) newUnit(rawURL, content, contentHash string) *domain.SourceUnit {
	unit := &domain.SourceUnit{
		ID:          rawURL,
		Name:        rawURL,
		Origin:      domain.OriginRemote,
		Content:     content,
		ContentHash: contentHash,
		Imports:     domain.ScanImports(content),
	}
	if u, err := url.Parse(rawURL); err == nil {
		unit.Kind, unit.Asset = domain.AssetKindOf(path.Base(u.Path))
	}
	return unit
}

// prior returns the last known response for rawURL, from memory or disk.
func (f *Fetcher) prior(rawURL string) *cached {
	f.mu.Lock()
	entry, ok := f.units[rawURL]
	f.mu.Unlock()
	if ok {
		return entry
	}
	if f.store == nil {
		return nil
	}

	rec, err := f.store.Load(rawURL)
	if err != nil {
		f.logger.Warn(fmt.Sprintf("ignoring remote cache for %s: %v", rawURL, err))
		return nil
	}
	if rec == nil {
		return nil
	}
	contentHash := f.hasher.ContentHash([]byte(rec.Content))
	if rec.ContentHash != "" && rec.ContentHash != contentHash {
		return nil
	}
	return &cached{
		unit:         f.newUnit(rawURL, rec.Content, contentHash),
		etag:         rec.ETag,
		lastModified: rec.LastModified,
	}
}

func (f *Fetcher) remember(rawURL string, entry *cached, persist bool) {
	f.mu.Lock()
	f.units[rawURL] = entry
	f.mu.Unlock()

	if f.store == nil || !persist {
		return
	}
	rec := &domain.RemoteRecord{
		URL:          rawURL,
		ETag:         entry.etag,
		LastModified: entry.lastModified,
		Content:      entry.unit.Content,
		ContentHash:  entry.unit.ContentHash,
		FetchedAt:    time.Now().UTC(),
	}
	if err := f.store.Save(rec); err != nil {
		f.logger.Warn(fmt.Sprintf("could not cache %s: %v", rawURL, err))
	}
}

func (f *Fetcher) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(f.opts.BaseDelay),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.opts.Attempts-1)), ctx) //nolint:gosec // Attempts is at least 1
}

func (f *Fetcher) requestWithRetry(ctx context.Context, rawURL string, prior *cached) (*response, error) {
	attempt := 0
	op := func() (*response, error) {
		attempt++
		resp, err := f.do(ctx, rawURL, prior)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	notify := func(err error, next time.Duration) {
		f.logger.Warn(fmt.Sprintf("fetching %s failed (attempt %d/%d): %v, retrying in %s",
			rawURL, attempt, f.opts.Attempts, err, next.Round(time.Millisecond)))
	}

	resp, err := backoff.RetryNotifyWithData(op, f.newBackOff(ctx), notify)
	if err == nil {
		return resp, nil
	}

	var statusErr *statusError
	switch {
	case errors.As(err, &statusErr):
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrHTTPStatus, http.StatusText(statusErr.code)),
			"status_code", statusErr.code), "url", rawURL)
	case ctx.Err() != nil:
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "fetch interrupted"), "url", rawURL)
	case isFinal(err):
		return nil, err
	default:
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnreachable, "giving up after retries"),
			"cause", err.Error()), "url", rawURL)
	}
}

// isFinal reports whether err was produced by us rather than the transport.
func isFinal(err error) bool {
	var zErr *zerr.Error
	return errors.As(err, &zErr)
}

// do performs one request. Transport failures and 5xx are returned as
// retryable errors; everything else is final.
func (f *Fetcher) do(ctx context.Context, rawURL string, prior *cached) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, err.Error()), "specifier", rawURL))
	}
	req.Header.Set("Accept", "text/javascript, application/javascript, */*;q=0.1")
	if prior != nil {
		if prior.etag != "" {
			req.Header.Set("If-None-Match", prior.etag)
		}
		if prior.lastModified != "" {
			req.Header.Set("If-Modified-Since", prior.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotModified && prior != nil:
		return &response{status: resp.StatusCode}, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxModuleSize))
		return nil, &statusError{code: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(zerr.With(zerr.With(zerr.Wrap(domain.ErrHTTPStatus, http.StatusText(resp.StatusCode)),
			"status_code", resp.StatusCode), "url", rawURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxModuleSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxModuleSize {
		return nil, backoff.Permanent(zerr.With(zerr.Wrap(domain.ErrHTTPStatus, "module too large"), "url", rawURL))
	}
	return &response{
		status:       resp.StatusCode,
		body:         body,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
