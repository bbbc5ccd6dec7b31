package domain

import (
	"log/slog"
	"time"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultProbeTimeout = 3 * time.Second
	DefaultMonitorPort  = 9300
)

func DefaultConfig() *Config {
	return &Config{
		Supervisor: DefaultSupervisorConfig(),
		Monitor:    DefaultMonitorConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		PollInterval: DefaultPollInterval,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:         false,
		Port:            DefaultMonitorPort,
		RefreshInterval: time.Second,
	}
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "searchnode",
	}
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		ClusterName:      DefaultClusterName,
		HTTPDebugEnabled: false,
	}
}

func NewConfigFromSimple(logger *slog.Logger) *Config {
	config := DefaultConfig()
	config.Logger = logger
	return config
}

// Normalized returns a normalized copy of c, or the defaults when c is nil.
func (c *Config) Normalized() *Config {
	if c == nil {
		c = DefaultConfig()
	}
	out := *c
	out.Normalize()
	return &out
}

// Normalize fills zero-valued durations with their defaults.
func (c *Config) Normalize() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Supervisor.PollInterval <= 0 {
		c.Supervisor.PollInterval = DefaultPollInterval
	}
	if c.Supervisor.ProbeTimeout <= 0 {
		c.Supervisor.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Monitor.RefreshInterval <= 0 {
		c.Monitor.RefreshInterval = time.Second
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "searchnode"
	}
}

func (c *Config) WithPollInterval(interval time.Duration) *Config {
	c.Supervisor.PollInterval = interval
	return c
}

func (c *Config) WithProbeTimeout(timeout time.Duration) *Config {
	c.Supervisor.ProbeTimeout = timeout
	return c
}

func (c *Config) WithMonitor(port int) *Config {
	c.Monitor.Enabled = port > 0
	c.Monitor.Port = port
	return c
}

func (c *Config) WithMetrics(enabled bool) *Config {
	c.Metrics.Enabled = enabled
	return c
}
