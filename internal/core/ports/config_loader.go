package ports

import "go.trai.ch/spool/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the project for the working directory cwd. An explicit
	// configPath overrides the upward search for spool.yaml.
	Load(cwd, configPath string) (*domain.Project, error)
}
