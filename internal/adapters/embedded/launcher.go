// Package embedded runs the search node in-process: a single-member raft
// cluster whose state machine stores JSON documents in badger.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/ports"
	"github.com/eleven-am/searchnode/internal/script"
	"github.com/eleven-am/searchnode/internal/script/listupdate"
	"github.com/google/uuid"
	"github.com/hashicorp/raft"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const launcherComponent = "adapters.embedded.Launcher"

// Launcher builds Nodes from settings. The zero value is usable.
type Launcher struct {
	// Registry resolves script.native.*.type settings. Defaults to a registry
	// holding the list update script.
	Registry *script.Registry
	// MetricsHandler is served on the debug HTTP /metrics route.
	MetricsHandler http.Handler
	Logger         *slog.Logger
	ApplyTimeout   time.Duration
}

var _ ports.NodeLauncher = (*Launcher)(nil)

func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{
		Registry: script.NewRegistry(listupdate.Factory{}),
		Logger:   logger,
	}
}

func newLaunchError(message string, cause error, opts ...domain.ErrorOption) *domain.DomainError {
	if cause == nil {
		cause = domain.ErrLaunchFailed
	} else {
		cause = fmt.Errorf("%w: %w", domain.ErrLaunchFailed, cause)
	}
	merged := append([]domain.ErrorOption{domain.WithComponent(launcherComponent)}, opts...)
	return domain.NewLaunchError(message, cause, merged...)
}

// Launch opens storage, bootstraps raft and starts the debug HTTP server when
// enabled. It returns once raft is running; leadership is reported through
// ClusterHealth. Anything already opened is released when a later step fails.
func (l *Launcher) Launch(ctx context.Context, settings domain.NodeSettings) (ports.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, newLaunchError("launch cancelled", err)
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := l.Registry
	if registry == nil {
		registry = script.NewRegistry(listupdate.Factory{})
	}
	applyTimeout := l.ApplyTimeout
	if applyTimeout <= 0 {
		applyTimeout = defaultApplyTimeout
	}

	name := settings.GetDefault(domain.SettingNodeName, "")
	cluster := settings.GetDefault(domain.SettingClusterName, domain.DefaultClusterName)
	if name == "" {
		return nil, newLaunchError("node name is required", domain.ErrInvalidInput)
	}
	logger = logger.With("node", name, "cluster", cluster)

	if settings.GetBool(domain.SettingMulticastEnabled, false) {
		return nil, newLaunchError("multicast discovery is not supported", domain.ErrMulticastDenied,
			domain.WithNodeName(name))
	}

	bindings, err := registry.Bind(settings)
	if err != nil {
		return nil, newLaunchError("failed to bind native scripts", err, domain.WithNodeName(name))
	}

	storageCfg := storageConfigFrom(settings)
	if !storageCfg.InMemory && settings.GetDefault(domain.SettingPathHome, "") == "" {
		return nil, newLaunchError("path.home is required", domain.ErrMissingHome, domain.WithNodeName(name))
	}

	storage, err := NewStorage(storageCfg, logger)
	if err != nil {
		return nil, newLaunchError("failed to open storage", err, domain.WithNodeName(name))
	}

	fsm, err := NewFSM(storage.StateDB(), bindings, cluster, logger)
	if err != nil {
		_ = storage.Close()
		return nil, newLaunchError("failed to initialise state machine", err, domain.WithNodeName(name))
	}

	local := settings.GetBool(domain.SettingNodeLocal, false)
	transport, closer, err := newTransport(settings, local)
	if err != nil {
		_ = storage.Close()
		return nil, newLaunchError("failed to create transport", err, domain.WithNodeName(name))
	}

	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID(name)
	raftConfig.Logger = newRaftLogger(logger)
	raftConfig.HeartbeatTimeout = 500 * time.Millisecond
	raftConfig.ElectionTimeout = 500 * time.Millisecond
	raftConfig.LeaderLeaseTimeout = 250 * time.Millisecond
	raftConfig.CommitTimeout = 50 * time.Millisecond

	cleanup := func() {
		_ = closer.Close()
		_ = storage.Close()
	}

	if !storage.HasExistingState() {
		configuration := raft.Configuration{
			Servers: []raft.Server{{
				ID:      raftConfig.LocalID,
				Address: transport.LocalAddr(),
			}},
		}
		err := raft.BootstrapCluster(raftConfig, storage.logStore, storage.stableStore, storage.snapshotStore, transport, configuration)
		if err != nil && !errors.Is(err, raft.ErrCantBootstrap) {
			cleanup()
			return nil, newLaunchError("failed to bootstrap cluster", err, domain.WithNodeName(name))
		}
	} else {
		logger.Debug("existing raft state found, skipping bootstrap")
	}

	r, err := raft.NewRaft(raftConfig, fsm, storage.logStore, storage.stableStore, storage.snapshotStore, transport)
	if err != nil {
		cleanup()
		return nil, newLaunchError("failed to start raft", err, domain.WithNodeName(name))
	}

	n := &Node{
		info: Info{
			ID:          uuid.NewString(),
			Name:        name,
			ClusterName: cluster,
			Address:     string(transport.LocalAddr()),
			Data:        storage.StateDB() != nil,
			Local:       local,
			StoreType:   settings.GetDefault(domain.SettingStoreType, "default"),
			StartedAt:   time.Now(),
		},
		settings:     settings,
		logger:       logger.With("component", "embedded.node"),
		raft:         r,
		transport:    closer,
		storage:      storage,
		fsm:          fsm,
		throttle:     newThrottle(settings),
		applyTimeout: applyTimeout,
		done:         make(chan struct{}),
	}
	n.info.Throttle = n.throttle.String()

	if settings.GetBool(domain.SettingHTTPEnabled, false) {
		metrics := l.MetricsHandler
		if metrics == nil {
			metrics = promhttp.Handler()
		}
		n.http = newDebugServer(n, metrics, logger)
		if err := n.http.Listen(settings.GetInt(domain.SettingHTTPPort, 9200)); err != nil {
			n.http = nil
			_ = n.Close()
			return nil, newLaunchError("failed to start debug http", err, domain.WithNodeName(name))
		}
	}

	go n.watch()

	n.logger.Info("node started",
		"id", n.info.ID,
		"address", n.info.Address,
		"data", n.info.Data,
		"throttle", n.info.Throttle)
	return n, nil
}

// newTransport returns an in-memory transport for node.local, otherwise a TCP
// transport on transport.tcp.port. Port 0 picks a free loopback port.
func newTransport(settings domain.NodeSettings, local bool) (raft.Transport, io.Closer, error) {
	if local {
		_, transport := raft.NewInmemTransport("")
		return transport, transport, nil
	}

	port := settings.GetInt(domain.SettingTransportPort, -1)
	if port < 0 {
		return nil, nil, fmt.Errorf("invalid %s: %w", domain.SettingTransportPort, domain.ErrMissingPort)
	}

	bind := net.JoinHostPort("0.0.0.0", strconv.Itoa(port))
	var advertise net.Addr
	if port == 0 {
		bind = net.JoinHostPort("127.0.0.1", "0")
	} else {
		addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			return nil, nil, err
		}
		advertise = addr
	}

	transport, err := raft.NewTCPTransport(bind, advertise, 3, 10*time.Second, io.Discard)
	if err != nil {
		return nil, nil, domain.NewNetworkError("failed to bind transport", err,
			domain.WithContextDetail("bind", bind))
	}
	return transport, transport, nil
}
