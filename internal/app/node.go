package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/spool/internal/adapters/cas"
	"go.trai.ch/spool/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/spool/internal/adapters/fs"
	"go.trai.ch/spool/internal/adapters/linear"
	"go.trai.ch/spool/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/spool/internal/adapters/telemetry"
	"go.trai.ch/spool/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.WalkerNodeID,
			fs.HasherNodeID,
			fs.WriterNodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}

	stores, err := graft.Dep[*cas.Factory](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[*linear.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, walker, hasher, writer, stores, tracer, renderer), nil
}
