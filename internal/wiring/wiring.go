// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/spool/internal/adapters/cas"
	_ "go.trai.ch/spool/internal/adapters/config"
	_ "go.trai.ch/spool/internal/adapters/fs"
	_ "go.trai.ch/spool/internal/adapters/linear"
	_ "go.trai.ch/spool/internal/adapters/logger"
	_ "go.trai.ch/spool/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/spool/internal/app"
)
