package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

// InstrumentationName names the tracer of all engine spans.
const InstrumentationName = "go.trai.ch/spool"

func init() {
	graft.Register(graft.Node[*OTelTracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*OTelTracer, error) {
			return NewOTelTracer(InstrumentationName), nil
		},
	})
}
