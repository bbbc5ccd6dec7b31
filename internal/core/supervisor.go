package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/searchnode/internal/config"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/ports"
	"github.com/eleven-am/searchnode/internal/readiness"
	"github.com/eleven-am/searchnode/internal/settings"
)

const supervisorComponent = "core.Supervisor"

type StateListener func(from, to domain.LifecycleState)

// Supervisor drives one node through configure, launch, run and terminate.
// It is single use: Start succeeds at most once.
type Supervisor struct {
	source   ports.PropertySource
	launcher ports.NodeLauncher
	prober   *readiness.Prober
	metrics  ports.LifecycleMetrics
	config   domain.SupervisorConfig
	logger   *slog.Logger

	// BuildSettings turns the resolved config into node settings.
	BuildSettings func(domain.NodeConfig) domain.NodeSettings

	mu                 sync.Mutex
	state              domain.LifecycleState
	node               ports.Node
	settings           domain.NodeSettings
	hasSettings        bool
	terminateRequested bool
	listeners          []StateListener

	terminateCh   chan struct{}
	terminateOnce sync.Once
	closeOnce     sync.Once
}

var _ ports.Process = (*Supervisor)(nil)

func NewSupervisor(source ports.PropertySource, launcher ports.NodeLauncher, cfg *domain.Config, metrics ports.LifecycleMetrics) *Supervisor {
	cfg = cfg.Normalized()
	if metrics == nil {
		metrics = ports.NoopLifecycleMetrics{}
	}

	logger := cfg.Logger.With("component", "supervisor")

	return &Supervisor{
		source:        source,
		launcher:      launcher,
		prober:        readiness.NewProber(cfg.Supervisor.ProbeTimeout, readiness.NewManager(), metrics, cfg.Logger),
		metrics:       metrics,
		config:        cfg.Supervisor,
		logger:        logger,
		BuildSettings: settings.Build,
		state:         domain.StateIdle,
		terminateCh:   make(chan struct{}),
	}
}

func (s *Supervisor) OnStateChange(listener StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Supervisor) State() domain.LifecycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) Node() ports.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node
}

// Metrics returns the recorder passed to NewSupervisor.
func (s *Supervisor) Metrics() ports.LifecycleMetrics {
	return s.metrics
}

// Readiness exposes the last probe outcome without probing again.
func (s *Supervisor) Readiness() *readiness.Manager {
	return s.prober.State()
}

func (s *Supervisor) Settings() (domain.NodeSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.hasSettings
}

// transitionLocked must be called with s.mu held. Listeners run after unlock
// via the returned func.
func (s *Supervisor) transitionLocked(to domain.LifecycleState) func() {
	from := s.state
	if from == to {
		return func() {}
	}
	if !domain.CanTransition(from, to) {
		s.logger.Error("invalid lifecycle transition", "from", from.String(), "to", to.String())
		return func() {}
	}

	s.state = to
	listeners := append([]StateListener(nil), s.listeners...)
	s.logger.Debug("lifecycle transition", "from", from.String(), "to", to.String())

	return func() {
		s.metrics.RecordTransition(from, to)
		for _, l := range listeners {
			l(from, to)
		}
	}
}

func (s *Supervisor) transition(to domain.LifecycleState) {
	s.mu.Lock()
	notify := s.transitionLocked(to)
	s.mu.Unlock()
	notify()
}

// Start resolves configuration, launches the node and blocks until the node
// is closed. Cancelling ctx is logged but does not stop the node; use
// Terminate for that.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != domain.StateIdle {
		state := s.state
		s.mu.Unlock()
		return domain.NewValidationError("supervisor already started", domain.ErrAlreadyStarted,
			domain.WithComponent(supervisorComponent), domain.WithContextDetail("state", state.String()))
	}
	notify := s.transitionLocked(domain.StateConfiguring)
	s.mu.Unlock()
	notify()

	cfg, err := config.Resolve(s.source)
	if err != nil {
		s.logger.Error("invalid node configuration", "error", err)
		s.transition(domain.StateFailed)
		return err
	}

	nodeSettings := s.BuildSettings(cfg)

	s.mu.Lock()
	s.settings = nodeSettings
	s.hasSettings = true
	if s.terminateRequested {
		notify = s.transitionLocked(domain.StateStopped)
		s.mu.Unlock()
		notify()
		s.logger.Info("terminated before launch")
		return nil
	}
	notify = s.transitionLocked(domain.StateLaunching)
	s.mu.Unlock()
	notify()

	s.logger.Info("launching node",
		"cluster", cfg.ClusterName,
		"home", cfg.HomeDirectory,
		"port", cfg.TransportPort,
		"http_debug", cfg.HTTPDebugEnabled)

	started := time.Now()
	node, err := s.launcher.Launch(ctx, nodeSettings)
	s.metrics.RecordLaunch(time.Since(started), err)
	if err == nil && node == nil {
		err = domain.ErrLaunchFailed
	}
	if err != nil {
		if !domain.IsLaunchError(err) {
			err = domain.NewLaunchError("failed to launch node", err, domain.WithComponent(supervisorComponent))
		}
		s.logger.Error("node launch failed", "error", err)
		s.transition(domain.StateFailed)
		return err
	}

	s.mu.Lock()
	s.node = node
	if s.terminateRequested {
		notify = s.transitionLocked(domain.StateTerminating)
		s.mu.Unlock()
		notify()
		s.closeNode(node)
		s.transition(domain.StateStopped)
		return nil
	}
	notify = s.transitionLocked(domain.StateRunning)
	s.mu.Unlock()
	notify()

	s.logger.Info("node running", "elapsed", time.Since(started))
	s.wait(ctx, node)

	s.mu.Lock()
	notify = s.transitionLocked(domain.StateTerminating)
	s.mu.Unlock()
	notify()

	s.closeNode(node)
	s.transition(domain.StateStopped)
	return nil
}

func (s *Supervisor) wait(ctx context.Context, node ports.Node) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	done := node.Done()
	terminate := s.terminateCh
	interrupted := ctx.Done()

	for !node.IsClosed() {
		select {
		case <-done:
			return
		case <-terminate:
			terminate = nil
		case <-interrupted:
			s.logger.Warn("node is being shut down", "cause", ctx.Err())
			interrupted = nil
		case <-ticker.C:
		}
	}
}

// IsReady probes the node. It never blocks longer than the probe timeout.
func (s *Supervisor) IsReady() bool {
	s.mu.Lock()
	node := s.node
	s.mu.Unlock()

	if node == nil || node.IsClosed() {
		s.prober.State().SetResult(domain.ReadinessNotReady)
		return false
	}
	return s.prober.Probe(context.Background(), node).IsReady()
}

// Terminate closes the node. It is a no-op before Start and after the node
// has stopped, and may be called any number of times.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	switch s.state {
	case domain.StateConfiguring, domain.StateLaunching:
		s.terminateRequested = true
		s.mu.Unlock()
		s.logger.Info("terminate requested during startup")
		s.signalTerminate()
		return
	case domain.StateRunning:
		node := s.node
		notify := s.transitionLocked(domain.StateTerminating)
		s.mu.Unlock()
		notify()

		s.logger.Info("terminating node")
		s.signalTerminate()
		s.closeNode(node)
		return
	default:
		s.mu.Unlock()
	}
}

func (s *Supervisor) signalTerminate() {
	s.terminateOnce.Do(func() { close(s.terminateCh) })
}

// closeNode calls Close even when the node already reports closed, since a
// node closing itself may still be releasing resources. It returns once the
// node's Done channel is closed.
func (s *Supervisor) closeNode(node ports.Node) {
	if node == nil {
		return
	}
	s.closeOnce.Do(func() {
		if err := node.Close(); err != nil {
			s.logger.Warn("node close reported errors", "error", err)
		}
	})
	<-node.Done()
}
