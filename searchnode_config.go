package searchnode

import (
	"log/slog"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
)

type Config = domain.Config

type SupervisorConfig = domain.SupervisorConfig

type MonitorConfig = domain.MonitorConfig

type MetricsConfig = domain.MetricsConfig

func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

func DefaultSupervisorConfig() SupervisorConfig {
	return domain.DefaultSupervisorConfig()
}

func DefaultMonitorConfig() MonitorConfig {
	return domain.DefaultMonitorConfig()
}

type ConfigBuilder struct {
	config *Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: DefaultConfig()}
}

func (cb *ConfigBuilder) WithLogger(logger *slog.Logger) *ConfigBuilder {
	cb.config.Logger = logger
	return cb
}

func (cb *ConfigBuilder) WithPollInterval(interval time.Duration) *ConfigBuilder {
	cb.config.WithPollInterval(interval)
	return cb
}

func (cb *ConfigBuilder) WithProbeTimeout(timeout time.Duration) *ConfigBuilder {
	cb.config.WithProbeTimeout(timeout)
	return cb
}

// WithMonitor enables the gRPC health monitor on port; 0 disables it.
func (cb *ConfigBuilder) WithMonitor(port int) *ConfigBuilder {
	cb.config.WithMonitor(port)
	return cb
}

func (cb *ConfigBuilder) WithMonitorRefresh(interval time.Duration) *ConfigBuilder {
	cb.config.Monitor.RefreshInterval = interval
	return cb
}

func (cb *ConfigBuilder) WithMetrics(enabled bool) *ConfigBuilder {
	cb.config.WithMetrics(enabled)
	return cb
}

func (cb *ConfigBuilder) WithMetricsNamespace(namespace string) *ConfigBuilder {
	cb.config.Metrics.Namespace = namespace
	return cb
}

// Build returns a normalized copy, so the builder can be reused.
func (cb *ConfigBuilder) Build() *Config {
	return cb.config.Normalized()
}
