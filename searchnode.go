// Package searchnode supervises one embedded search node on behalf of a
// parent process manager.
//
// The supervisor reads esHome, esPort, esCluster and esDebug from a property
// source, launches the node with a fixed operational policy and blocks until
// the node is closed:
//
//	sup, err := searchnode.New(searchnode.Properties{"esHome": "/data/es", "esPort": "9001"}, logger)
//	go sup.Start(ctx)
//	...
//	sup.IsReady()
//	sup.Terminate()
package searchnode

import (
	"log/slog"
	"net/http"

	"github.com/eleven-am/searchnode/internal/adapters/embedded"
	"github.com/eleven-am/searchnode/internal/adapters/monitor"
	"github.com/eleven-am/searchnode/internal/core"
	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/metrics"
	"github.com/eleven-am/searchnode/internal/ports"
	"github.com/eleven-am/searchnode/internal/props"
)

// Supervisor implements the start / is-ready / terminate contract.
type Supervisor = core.Supervisor

// Process is the contract a parent process manager drives.
type Process = ports.Process

type Monitor = monitor.Monitor

type NodeConfig = domain.NodeConfig

type NodeSettings = domain.NodeSettings

type LifecycleState = domain.LifecycleState

const (
	StateIdle        = domain.StateIdle
	StateConfiguring = domain.StateConfiguring
	StateLaunching   = domain.StateLaunching
	StateRunning     = domain.StateRunning
	StateTerminating = domain.StateTerminating
	StateStopped     = domain.StateStopped
	StateFailed      = domain.StateFailed
)

type HealthStatus = domain.HealthStatus

const (
	HealthGreen  = domain.HealthGreen
	HealthYellow = domain.HealthYellow
	HealthRed    = domain.HealthRed
)

// PropertySource supplies the esHome, esPort, esCluster and esDebug properties.
type PropertySource = ports.PropertySource

// PropertyLister is a PropertySource that can enumerate its values.
type PropertyLister = ports.PropertyLister

// Properties is an in-memory PropertySource.
type Properties = props.Map

const (
	PropertyHome    = domain.PropertyHome
	PropertyPort    = domain.PropertyPort
	PropertyCluster = domain.PropertyCluster
	PropertyDebug   = domain.PropertyDebug
)

var (
	ErrMissingHome    = domain.ErrMissingHome
	ErrMissingPort    = domain.ErrMissingPort
	ErrLaunchFailed   = domain.ErrLaunchFailed
	ErrAlreadyStarted = domain.ErrAlreadyStarted
)

// IsFatal reports whether err should end the host process.
func IsFatal(err error) bool {
	return domain.IsFatal(err)
}

// EnvProperties reads properties from prefixed environment variables, so
// SEARCHNODE_ESHOME supplies esHome when prefix is "SEARCHNODE_".
func EnvProperties(prefix string) PropertySource {
	return props.NewEnv(prefix)
}

// LoadProperties reads a .properties, .yaml or .json file.
func LoadProperties(path string) (Properties, error) {
	return props.LoadFile(path)
}

// LayeredProperties consults later sources first.
func LayeredProperties(sources ...PropertySource) PropertySource {
	return props.NewLayered(sources...)
}

func New(source PropertySource, logger *slog.Logger) (*Supervisor, error) {
	return NewWithConfig(source, domain.NewConfigFromSimple(logger))
}

// NewWithConfig wires the embedded node launcher and, when enabled, the
// Prometheus collector served on the node's debug HTTP /metrics route.
func NewWithConfig(source PropertySource, cfg *Config) (*Supervisor, error) {
	cfg = cfg.Normalized()

	launcher := embedded.NewLauncher(cfg.Logger)

	var lifecycle ports.LifecycleMetrics = ports.NoopLifecycleMetrics{}
	if cfg.Metrics.Enabled {
		collector, err := metrics.NewCollector(cfg.Metrics)
		if err != nil {
			return nil, err
		}
		launcher.MetricsHandler = collector.Handler()
		lifecycle = collector
	}

	return core.NewSupervisor(source, launcher, cfg, lifecycle), nil
}

// NewMonitor returns the gRPC health monitor for sup, or nil when the
// monitor is disabled.
func NewMonitor(sup *Supervisor, cfg *Config) *Monitor {
	if cfg == nil || !cfg.Monitor.Enabled {
		return nil
	}
	cfg = cfg.Normalized()
	return monitor.New(sup, cfg.Monitor, cfg.Logger)
}

// MetricsHandler serves the supervisor's Prometheus metrics, or returns nil
// when metrics are disabled.
func MetricsHandler(sup *Supervisor) http.Handler {
	if sup == nil {
		return nil
	}
	if collector, ok := sup.Metrics().(*metrics.Collector); ok {
		return collector.Handler()
	}
	return nil
}
