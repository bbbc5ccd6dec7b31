// Package config extracts and validates the node configuration from an
// opaque property source. Missing required properties are fatal.
package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/ports"
)

const (
	component = "config.Resolver"
	maxPort   = 65535
)

// Resolve reads esHome, esPort, esCluster and esDebug from src.
func Resolve(src ports.PropertySource) (domain.NodeConfig, error) {
	cfg := domain.DefaultNodeConfig()
	if src == nil {
		return cfg, domain.NewConfigurationError(domain.MissingHomeMessage, domain.ErrMissingHome,
			domain.WithComponent(component))
	}

	home, ok := lookup(src, domain.PropertyHome)
	if !ok {
		return cfg, domain.NewConfigurationError(domain.MissingHomeMessage, domain.ErrMissingHome,
			domain.WithComponent(component),
			domain.WithContextDetail("property", domain.PropertyHome))
	}
	if abs, err := filepath.Abs(home); err == nil {
		home = abs
	}
	cfg.HomeDirectory = home

	rawPort, ok := lookup(src, domain.PropertyPort)
	if !ok {
		return cfg, domain.NewConfigurationError(domain.MissingPortMessage, domain.ErrMissingPort,
			domain.WithComponent(component),
			domain.WithContextDetail("property", domain.PropertyPort))
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 0 || port > maxPort {
		return cfg, domain.NewConfigurationError(domain.MissingPortMessage, domain.ErrMissingPort,
			domain.WithComponent(component),
			domain.WithContextDetail("property", domain.PropertyPort),
			domain.WithContextDetail("value", rawPort))
	}
	cfg.TransportPort = port

	if cluster, ok := lookup(src, domain.PropertyCluster); ok {
		cfg.ClusterName = cluster
	}

	if rawDebug, ok := lookup(src, domain.PropertyDebug); ok {
		if debug, err := strconv.ParseBool(rawDebug); err == nil {
			cfg.HTTPDebugEnabled = debug
		}
	}

	return cfg, nil
}

// lookup treats blank values as absent.
func lookup(src ports.PropertySource, key string) (string, bool) {
	v, ok := src.Lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
