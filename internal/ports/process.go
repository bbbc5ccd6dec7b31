package ports

import (
	"context"

	"github.com/eleven-am/searchnode/internal/domain"
)

// Process is the contract a parent process manager drives. Start blocks for
// the lifetime of the supervised node; IsReady and Terminate may be called
// concurrently with it.
type Process interface {
	Start(ctx context.Context) error
	IsReady() bool
	Terminate()
	Settings() (domain.NodeSettings, bool)
}

// ReadinessChecker is the subset of Process consumed by health endpoints.
type ReadinessChecker interface {
	IsReady() bool
}
