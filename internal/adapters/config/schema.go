package config

import "time"

// Spoolfile represents the structure of the spool.yaml configuration file.
type Spoolfile struct {
	Version     string            `yaml:"version"`
	Source      string            `yaml:"source"`
	Output      string            `yaml:"output"`
	Release     string            `yaml:"release"`
	Concurrency int               `yaml:"concurrency"`
	Lock        bool              `yaml:"lock"`
	Cache       CacheDTO          `yaml:"cache"`
	Execution   ExecutionDTO      `yaml:"execution"`
	Fetch       FetchDTO          `yaml:"fetch"`
	Serve       ServeDTO          `yaml:"serve"`
	Publish     PublishDTO        `yaml:"publish"`
	Imports     map[string]string `yaml:"imports"`
	Integrity   map[string]string `yaml:"integrity"`
}

// CacheDTO configures the in-memory asset cache.
type CacheDTO struct {
	// Capacity is a pointer so an explicit 0 (unbounded) differs from unset.
	Capacity *int `yaml:"capacity"`
}

// ExecutionDTO configures the module sandbox.
type ExecutionDTO struct {
	Timeout time.Duration `yaml:"timeout"`
}

// FetchDTO configures remote module fetching.
type FetchDTO struct {
	Timeout   time.Duration `yaml:"timeout"`
	Attempts  int           `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"baseDelay"`
}

// ServeDTO configures the development server.
type ServeDTO struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

// PublishDTO configures the artifacts written next to the static output.
type PublishDTO struct {
	Manifest  *bool `yaml:"manifest"`
	Versioned bool  `yaml:"versioned"`
}
