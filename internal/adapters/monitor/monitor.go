// Package monitor exposes the supervisor's readiness to a parent process
// through the standard gRPC health service.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/helpers/netutil"
	"github.com/eleven-am/searchnode/internal/ports"
	"github.com/eleven-am/searchnode/internal/readiness"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the empty (server-wide) service name.
const ServiceName = "searchnode.Node"

// readinessSource is implemented by checkers that keep their last probe
// result, such as the supervisor.
type readinessSource interface {
	Readiness() *readiness.Manager
}

// Monitor publishes readiness over gRPC health. When the checker keeps its
// last probe result, changes are pushed as they are observed and the checker
// is only probed once that result is older than the refresh interval.
type Monitor struct {
	checker  ports.ReadinessChecker
	state    *readiness.Manager
	port     int
	interval time.Duration
	logger   *slog.Logger

	health *health.Server

	mu       sync.Mutex
	server   *grpc.Server
	listener net.Listener
	last     grpc_health_v1.HealthCheckResponse_ServingStatus
}

func New(checker ports.ReadinessChecker, cfg domain.MonitorConfig, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = domain.DefaultMonitorConfig().RefreshInterval
	}

	var state *readiness.Manager
	if source, ok := checker.(readinessSource); ok {
		state = source.Readiness()
	}

	return &Monitor{
		checker:  checker,
		state:    state,
		port:     cfg.Port,
		interval: interval,
		logger:   logger.With("component", "monitor"),
		health:   health.NewServer(),
		last:     grpc_health_v1.HealthCheckResponse_UNKNOWN,
	}
}

// Start binds the listener and serves until ctx is done or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.server != nil {
		m.mu.Unlock()
		return domain.NewValidationError("monitor already started", domain.ErrAlreadyStarted)
	}

	listener, _, err := netutil.ListenTCP("", m.port, "monitor")
	if err != nil {
		m.mu.Unlock()
		return err
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(m.loggingInterceptor))
	grpc_health_v1.RegisterHealthServer(server, m.health)
	m.server = server
	m.listener = listener
	m.mu.Unlock()

	if m.state != nil {
		m.state.SetListener(func(result domain.ReadinessResult) {
			m.publish(result.IsReady())
		})
	}
	m.Refresh()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			m.logger.Error("monitor server error", "error", err)
		}
	}()
	go m.poll(ctx)

	m.logger.Info("monitor listening", "address", listener.Addr().String())
	return nil
}

func (m *Monitor) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

func (m *Monitor) poll(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-ticker.C:
			if m.stopped() {
				return
			}
			m.Refresh()
		}
	}
}

func (m *Monitor) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.server == nil
}

// Refresh re-reads readiness and publishes it.
func (m *Monitor) Refresh() grpc_health_v1.HealthCheckResponse_ServingStatus {
	return m.publish(m.ready())
}

func (m *Monitor) ready() bool {
	if m.state != nil {
		if checked := m.state.CheckedAt(); !checked.IsZero() && time.Since(checked) < m.interval {
			return m.state.IsReady()
		}
	}
	return m.checker != nil && m.checker.IsReady()
}

func (m *Monitor) publish(ready bool) grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ready {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}

	m.mu.Lock()
	changed := status != m.last
	m.last = status
	m.mu.Unlock()

	m.health.SetServingStatus("", status)
	m.health.SetServingStatus(ServiceName, status)
	if changed {
		m.logger.Info("serving status changed", "status", status.String())
	}
	return status
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	server := m.server
	m.server = nil
	m.mu.Unlock()

	if server == nil {
		return
	}
	if m.state != nil {
		m.state.SetListener(nil)
	}
	m.health.Shutdown()
	server.GracefulStop()
	m.logger.Info("monitor stopped")
}

func (m *Monitor) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	m.logger.Debug("grpc request", "method", info.FullMethod, "duration", time.Since(start), "error", err)
	return resp, err
}
