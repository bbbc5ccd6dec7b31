package ports

import (
	"context"

	"github.com/eleven-am/searchnode/internal/domain"
)

// Node is a handle on a running embedded node. Implementations must allow
// concurrent status queries alongside a single Close call.
type Node interface {
	// Close releases every resource held by the node and blocks until done.
	// Calling it on an already closed node is a no-op.
	Close() error
	IsClosed() bool
	// Done is closed once the node has been closed, by Close or by itself.
	Done() <-chan struct{}
	ClusterHealth(ctx context.Context, req domain.HealthRequest) (domain.HealthResponse, error)
}

// NodeLauncher builds and starts a node from its settings. Launch returns once
// the node's own startup has completed.
type NodeLauncher interface {
	Launch(ctx context.Context, settings domain.NodeSettings) (Node, error)
}

type NodeLauncherFunc func(ctx context.Context, settings domain.NodeSettings) (Node, error)

func (f NodeLauncherFunc) Launch(ctx context.Context, settings domain.NodeSettings) (Node, error) {
	return f(ctx, settings)
}
