// Package config loads spool.yaml and the remote integrity lockfile.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset configuration fields.
const (
	DefaultCacheCapacity  = 1024
	DefaultExecTimeout    = 5 * time.Second
	DefaultFetchTimeout   = 10 * time.Second
	DefaultFetchAttempts  = 3
	DefaultFetchBaseDelay = 200 * time.Millisecond
	DefaultServeAddr      = ":8080"
)

const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds spool.yaml by walking up from cwd, or reads configPath when given.
// Without a config file the project is rooted at cwd with defaults.
func (l *Loader) Load(cwd, configPath string) (*domain.Project, error) {
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		return l.loadSpoolfile(configPath)
	}

	found, ok := findConfiguration(cwd)
	if !ok {
		return buildProject(cwd, "", &Spoolfile{})
	}
	return l.loadSpoolfile(found)
}

func findConfiguration(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *Loader) loadSpoolfile(configPath string) (*domain.Project, error) {
	var file Spoolfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn("unknown config version " + file.Version + " in " + configPath + ", reading it as version " + supportedVersion)
	}

	return buildProject(filepath.Dir(configPath), configPath, &file)
}

func buildProject(root, configPath string, file *Spoolfile) (*domain.Project, error) {
	p := &domain.Project{
		Root:           root,
		ConfigPath:     configPath,
		SourceDir:      resolveDir(root, file.Source, domain.DefaultSourceDir),
		OutputDir:      resolveDir(root, file.Output, domain.DefaultOutputDir),
		Release:        file.Release,
		Concurrency:    file.Concurrency,
		Lock:           file.Lock,
		CacheCapacity:  DefaultCacheCapacity,
		ExecTimeout:    orDefault(file.Execution.Timeout, DefaultExecTimeout),
		FetchTimeout:   orDefault(file.Fetch.Timeout, DefaultFetchTimeout),
		FetchAttempts:  file.Fetch.Attempts,
		FetchBaseDelay: orDefault(file.Fetch.BaseDelay, DefaultFetchBaseDelay),
		ServeAddr:      file.Serve.Addr,
		Watch:          file.Serve.Watch,
		Manifest:       true,
		Versioned:      file.Publish.Versioned,
		ImportMap:      file.Imports,
		Integrity:      file.Integrity,
	}
	if file.Cache.Capacity != nil {
		p.CacheCapacity = *file.Cache.Capacity
	}
	if file.Publish.Manifest != nil {
		p.Manifest = *file.Publish.Manifest
	}
	if p.Concurrency == 0 {
		p.Concurrency = runtime.NumCPU()
	}
	if p.FetchAttempts == 0 {
		p.FetchAttempts = DefaultFetchAttempts
	}
	if p.ServeAddr == "" {
		p.ServeAddr = DefaultServeAddr
	}
	if p.ImportMap == nil {
		p.ImportMap = map[string]string{}
	}
	if p.Integrity == nil {
		p.Integrity = map[string]string{}
	}

	if err := validate(p); err != nil {
		if configPath != "" {
			err = zerr.With(err, "config", configPath)
		}
		return nil, err
	}
	return p, nil
}

func validate(p *domain.Project) error {
	invalid := func(field, reason string) error {
		return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, reason), "field", field)
	}

	switch {
	case p.Concurrency < 0:
		return invalid("concurrency", "must not be negative")
	case p.CacheCapacity < 0:
		return invalid("cache.capacity", "must not be negative")
	case p.ExecTimeout < 0:
		return invalid("execution.timeout", "must not be negative")
	case p.FetchTimeout < 0:
		return invalid("fetch.timeout", "must not be negative")
	case p.FetchAttempts < 1:
		return invalid("fetch.attempts", "must be at least 1")
	case p.FetchBaseDelay < 0:
		return invalid("fetch.baseDelay", "must not be negative")
	case p.SourceDir == p.OutputDir:
		return invalid("output", "must differ from the source directory")
	case strings.ContainsAny(p.Release, `/\`):
		return invalid("release", "must be a single path segment")
	}

	for specifier, target := range p.ImportMap {
		if specifier == "" || target == "" {
			return invalid("imports", "entries need a specifier and a target")
		}
		if strings.HasSuffix(specifier, "/") != strings.HasSuffix(target, "/") {
			return zerr.With(invalid("imports", "prefix entries must end in / on both sides"), "specifier", specifier)
		}
	}
	for url, integrity := range p.Integrity {
		if err := checkIntegrity(integrity); err != nil {
			return zerr.With(zerr.With(err, "field", "integrity"), "url", url)
		}
	}
	return nil
}

// checkIntegrity validates the syntax of an SRI string without any content.
func checkIntegrity(integrity string) error {
	for field := range strings.FieldsSeq(integrity) {
		algorithm, digest, ok := strings.Cut(field, "-")
		if !ok || digest == "" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidIntegrity, "malformed digest"), "integrity", field)
		}
		if _, err := domain.ComputeIntegrity(algorithm, nil); err != nil {
			return err
		}
	}
	return nil
}

func resolveDir(root, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}

func readAndUnmarshalYAML[T any](path string, target *T) error {
	// #nosec G304 -- path is the discovered or user-provided config file
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}

// isNotExist reports whether err is a missing-file error.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
