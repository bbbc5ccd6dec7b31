package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/ports"
)

// Prober classifies a node as ready unless its cluster health is red. Probe
// failures of any kind count as not ready and are never returned.
type Prober struct {
	timeout time.Duration
	logger  *slog.Logger
	state   *Manager
	metrics ports.LifecycleMetrics
}

func NewProber(timeout time.Duration, state *Manager, metrics ports.LifecycleMetrics, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = domain.DefaultProbeTimeout
	}
	if state == nil {
		state = NewManager()
	}
	if metrics == nil {
		metrics = ports.NoopLifecycleMetrics{}
	}

	return &Prober{
		timeout: timeout,
		logger:  logger.With("component", "readiness-prober"),
		state:   state,
		metrics: metrics,
	}
}

func (p *Prober) State() *Manager {
	return p.state
}

func (p *Prober) Probe(ctx context.Context, node ports.Node) domain.ReadinessResult {
	start := time.Now()
	result := p.classify(ctx, node)

	p.state.SetResult(result)
	p.metrics.RecordProbe(result, time.Since(start))
	return result
}

func (p *Prober) classify(ctx context.Context, node ports.Node) (result domain.ReadinessResult) {
	result = domain.ReadinessNotReady

	if node == nil {
		p.logger.Debug("node is not ready yet", "reason", "not started")
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("node is not ready yet", "reason", fmt.Sprintf("health check panicked: %v", r))
			result = domain.ReadinessNotReady
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	health, err := node.ClusterHealth(probeCtx, domain.HealthRequest{
		WaitForStatus: domain.HealthYellow,
		Timeout:       p.timeout,
	})
	if err != nil {
		p.logger.Debug("node is not ready yet", "error", err)
		return domain.ReadinessNotReady
	}

	if health.Status == domain.HealthRed {
		p.logger.Debug("node is not ready yet", "status", health.Status.String(), "timed_out", health.TimedOut)
		return domain.ReadinessNotReady
	}
	return domain.ReadinessReady
}
