package domain

import (
	"log/slog"
	"time"
)

// Property keys read from the host's property source.
const (
	PropertyHome    = "esHome"
	PropertyPort    = "esPort"
	PropertyCluster = "esCluster"
	PropertyDebug   = "esDebug"
)

// PropertyKeys lists every property the resolver reads.
func PropertyKeys() []string {
	return []string{PropertyHome, PropertyPort, PropertyCluster, PropertyDebug}
}

const DefaultClusterName = "sonarqube"

// NodeConfig is the validated subset of host properties needed to launch a node.
type NodeConfig struct {
	ClusterName      string `json:"cluster_name" yaml:"cluster_name"`
	HomeDirectory    string `json:"home_directory" yaml:"home_directory"`
	TransportPort    int    `json:"transport_port" yaml:"transport_port"`
	HTTPDebugEnabled bool   `json:"http_debug_enabled" yaml:"http_debug_enabled"`
}

type Config struct {
	Logger *slog.Logger `json:"-" yaml:"-"`

	Supervisor SupervisorConfig `json:"supervisor" yaml:"supervisor"`
	Monitor    MonitorConfig    `json:"monitor" yaml:"monitor"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
}

type SupervisorConfig struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	ProbeTimeout time.Duration `json:"probe_timeout" yaml:"probe_timeout"`
}

type MonitorConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Port            int           `json:"port" yaml:"port"`
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval"`
}

type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
}
