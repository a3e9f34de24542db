package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/spool/internal/core/ports"
)

// NodeID is the unique identifier for the store factory Graft node.
const NodeID graft.ID = "adapter.cas"

// Factory opens the stores of a project once its root is known.
type Factory struct{}

// BuildInfo opens the build info store of the project at root.
func (Factory) BuildInfo(root string) ports.BuildInfoStore {
	return NewStore(root)
}

// Remote opens the remote module cache of the project at root.
func (Factory) Remote(root string) ports.RemoteStore {
	return NewRemoteStore(root)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Factory, error) {
			return &Factory{}, nil
		},
	})
}
