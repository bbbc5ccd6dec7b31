package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/eleven-am/searchnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestParseOptions(t *testing.T) {
	t.Setenv("MONITOR_PORT", "7001")
	t.Setenv("METRICS_PORT", "7002")
	t.Setenv("LOG_LEVEL", "debug")

	opts, err := parseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, 7001, opts.monitorPort)
	assert.Equal(t, 7002, opts.metricsPort)
	assert.Equal(t, "debug", opts.logLevel)
	assert.True(t, opts.metrics)

	opts, err = parseOptions([]string{"-monitor-port", "0", "-metrics=false", "-props", "es.properties"})
	require.NoError(t, err)
	assert.Equal(t, 0, opts.monitorPort)
	assert.False(t, opts.metrics)
	assert.Equal(t, "es.properties", opts.propsFile)
}

func TestParseOptionsRejectsBadPort(t *testing.T) {
	t.Setenv("MONITOR_PORT", "nope")

	_, err := parseOptions(nil)
	assert.Error(t, err)
}

func TestLoadPropertiesEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.properties")
	require.NoError(t, os.WriteFile(path, []byte("esHome=/from/file\nesPort=9001\n"), 0o644))
	t.Setenv("SEARCHNODE_ESHOME", "/from/env")

	source, err := loadProperties(path)
	require.NoError(t, err)

	home, ok := source.Lookup("esHome")
	assert.True(t, ok)
	assert.Equal(t, "/from/env", home)

	port, ok := source.Lookup("esPort")
	assert.True(t, ok)
	assert.Equal(t, "9001", port)
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	_, err := loadProperties(filepath.Join(t.TempDir(), "missing.properties"))
	assert.Error(t, err)
}

func TestEffectivePropertiesMatchLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.properties")
	require.NoError(t, os.WriteFile(path, []byte("esHome=/from/file\nesPort=9001\n"), 0o644))
	t.Setenv("SEARCHNODE_ESHOME", "/from/env")

	source, err := loadProperties(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"esHome": "/from/env", "esPort": "9001"}, effectiveProperties(source))
}

func TestServeMetrics(t *testing.T) {
	sup, err := searchnode.NewWithConfig(searchnode.Properties{}, searchnode.NewConfigBuilder().WithMetrics(true).Build())
	require.NoError(t, err)
	require.Error(t, sup.Start(context.Background()))

	handler := searchnode.MetricsHandler(sup)
	require.NotNil(t, handler)

	server, addr, err := serveMetrics(handler, 0, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `searchnode_supervisor_transitions_total{from="configuring",to="failed"} 1`)
}
