// Package resolver implements the ModuleResolver port: it turns import
// specifiers into source units read from disk or fetched over HTTPS.
package resolver

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.ModuleResolver = (*Resolver)(nil)

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Options configure a Resolver for one project.
type Options struct {
	// SourceDir is the absolute source root. "/"-rooted specifiers and
	// relative import map targets resolve against it.
	SourceDir string
	// ImportMap maps bare specifiers, or prefixes ending in "/", to targets.
	ImportMap map[string]string
	// Integrity returns the expected integrity of a remote URL, or "".
	Integrity func(url string) string
}

// Resolver implements ports.ModuleResolver. Units are memoized by canonical
// location for the lifetime of the resolver.
type Resolver struct {
	opts    Options
	fetcher ports.RemoteFetcher
	hasher  ports.Fingerprinter

	mu    sync.Mutex
	memo  map[string]*domain.SourceUnit
	group singleflight.Group
}

// New creates a Resolver.
func New(fetcher ports.RemoteFetcher, hasher ports.Fingerprinter, opts Options) *Resolver {
	if opts.Integrity == nil {
		opts.Integrity = func(string) string { return "" }
	}
	return &Resolver{
		opts:    opts,
		fetcher: fetcher,
		hasher:  hasher,
		memo:    make(map[string]*domain.SourceUnit),
	}
}

// Resolve returns the unit ref points at.
func (r *Resolver) Resolve(ctx context.Context, ref domain.ModuleRef) (*domain.SourceUnit, error) {
	loc, err := r.locate(ref)
	if err != nil {
		return nil, zerr.With(err, "importer", displayBase(ref.Base))
	}

	if loc.remote {
		return r.load(ctx, loc.key, func(ctx context.Context) (*domain.SourceUnit, error) {
			return r.fetcher.Fetch(ctx, loc.key, r.opts.Integrity(loc.key))
		})
	}
	unit, err := r.load(ctx, loc.key, func(context.Context) (*domain.SourceUnit, error) {
		return r.readLocal(loc.key)
	})
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return nil, zerr.With(zerr.With(err, "specifier", ref.Specifier), "importer", displayBase(ref.Base))
	}
	return unit, err
}

// Forget drops memoized units for local paths, including every alias that
// resolved to them.
func (r *Resolver) Forget(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		path := filepath.Clean(p)
		delete(r.memo, path)
		for key, unit := range r.memo {
			if unit.ID == path {
				delete(r.memo, key)
			}
		}
	}
}

// load reads key once for all concurrent callers. The shared read runs
// detached from the caller that started it; each caller stops waiting on its
// own context.
func (r *Resolver) load(
	ctx context.Context,
	key string,
	read func(context.Context) (*domain.SourceUnit, error),
) (*domain.SourceUnit, error) {
	r.mu.Lock()
	if unit, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return unit, nil
	}
	r.mu.Unlock()

	ch := r.group.DoChan(key, func() (any, error) {
		unit, err := read(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		// Probing may land several keys on one file.
		if existing, ok := r.memo[unit.ID]; ok {
			unit = existing
		}
		r.memo[key] = unit
		r.memo[unit.ID] = unit
		return unit, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.SourceUnit), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type location struct {
	key    string
	remote bool
}

func (r *Resolver) locate(ref domain.ModuleRef) (location, error) {
	spec := strings.TrimSpace(ref.Specifier)
	if spec == "" {
		return location{}, zerr.Wrap(domain.ErrInvalidSpecifier, "empty specifier")
	}
	remoteBase := isRemote(ref.Base)

	if isBare(spec) {
		mapped, ok := r.mapImport(spec)
		switch {
		case ok && isBare(mapped):
			path, err := r.resolvePackage(mapped, r.opts.SourceDir)
			if err != nil {
				return location{}, err
			}
			return location{key: path}, nil
		case ok:
			// Relative targets resolve against the source root.
			return r.locate(domain.ModuleRef{Specifier: mapped})
		case remoteBase:
			return location{}, zerr.With(zerr.Wrap(domain.ErrNotFound, "bare specifier is not in the import map"), "specifier", spec)
		default:
			path, err := r.resolvePackage(spec, r.localDir(ref.Base))
			if err != nil {
				return location{}, err
			}
			return location{key: path}, nil
		}
	}

	if schemeRe.MatchString(spec) && !filepath.IsAbs(spec) {
		return remoteLocation(spec)
	}

	if remoteBase {
		base, err := url.Parse(ref.Base)
		if err != nil {
			return location{}, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, err.Error()), "specifier", ref.Base)
		}
		rel, err := url.Parse(spec)
		if err != nil {
			return location{}, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, err.Error()), "specifier", spec)
		}
		return remoteLocation(base.ResolveReference(rel).String())
	}

	if strings.HasPrefix(spec, "/") {
		if r.opts.SourceDir != "" && !within(r.opts.SourceDir, spec) {
			return location{key: filepath.Join(r.opts.SourceDir, filepath.FromSlash(spec))}, nil
		}
		return location{key: filepath.Clean(spec)}, nil
	}

	return location{key: filepath.Join(r.localDir(ref.Base), filepath.FromSlash(spec))}, nil
}

func remoteLocation(raw string) (location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return location{}, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, err.Error()), "specifier", raw)
	}
	switch u.Scheme {
	case "https":
		u.Fragment = ""
		return location{key: u.String(), remote: true}, nil
	case "http":
		return location{}, zerr.With(zerr.Wrap(domain.ErrInsecureScheme, "refusing to fetch"), "specifier", raw)
	default:
		return location{}, zerr.With(zerr.Wrap(domain.ErrInvalidSpecifier, "unsupported scheme"), "specifier", raw)
	}
}

// mapImport applies the import map: exact matches first, then the longest
// matching prefix entry.
func (r *Resolver) mapImport(spec string) (string, bool) {
	if target, ok := r.opts.ImportMap[spec]; ok {
		return target, true
	}
	best := ""
	for prefix := range r.opts.ImportMap {
		if strings.HasSuffix(prefix, "/") && strings.HasPrefix(spec, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return r.opts.ImportMap[best] + strings.TrimPrefix(spec, best), true
}

// localDir returns the directory relative specifiers of base resolve against.
// base is a module file; an empty base means the source root.
func (r *Resolver) localDir(base string) string {
	if base == "" {
		return r.opts.SourceDir
	}
	return filepath.Dir(base)
}

func (r *Resolver) readLocal(path string) (*domain.SourceUnit, error) {
	resolved, err := r.findFile(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is resolved from module specifiers of the project
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, err.Error()), "path", resolved)
	}

	content := string(data)
	unit := &domain.SourceUnit{
		ID:          resolved,
		Name:        r.displayName(resolved),
		Origin:      domain.OriginLocal,
		Content:     content,
		ContentHash: r.hasher.ContentHash(data),
		Imports:     domain.ScanImports(content),
	}
	unit.Kind, unit.Asset = domain.AssetKindOf(filepath.Base(resolved))
	return unit, nil
}

// findFile finds the file for path. Extensionless paths may name "<path>.js"
// or "<path>/index.js".
func (r *Resolver) findFile(path string) (string, error) {
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = append(candidates, path+".js", filepath.Join(path, "index.js"))
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrNotFound, err.Error()), "path", candidate)
		}
	}
	return "", zerr.With(zerr.Wrap(domain.ErrNotFound, "no such file"), "path", path)
}

func (r *Resolver) displayName(path string) string {
	if r.opts.SourceDir != "" {
		if rel, err := filepath.Rel(r.opts.SourceDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func isRemote(base string) bool {
	return strings.HasPrefix(base, "https://") || strings.HasPrefix(base, "http://")
}

// isBare reports whether spec is a package-style specifier.
func isBare(spec string) bool {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/") ||
		spec == "." || spec == ".." {
		return false
	}
	if filepath.IsAbs(spec) {
		return false
	}
	return !schemeRe.MatchString(spec)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func displayBase(base string) string {
	if base == "" {
		return "<root>"
	}
	return base
}
