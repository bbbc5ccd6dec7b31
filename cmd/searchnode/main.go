package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/eleven-am/searchnode"
	"github.com/eleven-am/searchnode/internal/helpers/netutil"
)

const envPrefix = "SEARCHNODE_"

type options struct {
	propsFile   string
	monitorPort int
	metrics     bool
	metricsPort int
	logLevel    string
	logFormat   string
}

func parseOptions(args []string) (options, error) {
	opts := options{
		logLevel:  os.Getenv("LOG_LEVEL"),
		logFormat: os.Getenv("LOG_FORMAT"),
	}

	var err error
	if opts.monitorPort, err = portFromEnv("MONITOR_PORT"); err != nil {
		return opts, err
	}
	if opts.metricsPort, err = portFromEnv("METRICS_PORT"); err != nil {
		return opts, err
	}

	fs := flag.NewFlagSet("searchnode", flag.ContinueOnError)
	fs.StringVar(&opts.propsFile, "props", os.Getenv("PROPS_FILE"), "properties file (.properties, .yaml or .json)")
	fs.IntVar(&opts.monitorPort, "monitor-port", opts.monitorPort, "gRPC health monitor port, 0 disables it")
	fs.BoolVar(&opts.metrics, "metrics", true, "collect Prometheus metrics, served on the debug HTTP port")
	fs.IntVar(&opts.metricsPort, "metrics-port", opts.metricsPort, "port serving /metrics from this process, 0 disables it")
	fs.StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", opts.logFormat, "text or json")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func portFromEnv(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return port, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(opts options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.logLevel)}
	if strings.EqualFold(opts.logFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
}

// loadProperties layers SEARCHNODE_* environment variables over the
// optional properties file.
func loadProperties(path string) (searchnode.PropertySource, error) {
	env := searchnode.EnvProperties(envPrefix)
	if path == "" {
		return env, nil
	}

	file, err := searchnode.LoadProperties(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return searchnode.LayeredProperties(file, env), nil
}

// effectiveProperties lists what the node will be configured from, when the
// source can enumerate it.
func effectiveProperties(source searchnode.PropertySource) map[string]string {
	lister, ok := source.(searchnode.PropertyLister)
	if !ok {
		return nil
	}
	return lister.Properties()
}

// serveMetrics binds port and serves handler on /metrics until Shutdown.
func serveMetrics(handler http.Handler, port int, logger *slog.Logger) (*http.Server, string, error) {
	listener, _, err := netutil.ListenTCP("", port, "cmd.metrics")
	if err != nil {
		return nil, "", err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return server, listener.Addr().String(), nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(opts)
	slog.SetDefault(logger)

	source, err := loadProperties(opts.propsFile)
	if err != nil {
		logger.Error("failed to load properties", "error", err)
		os.Exit(1)
	}
	logger.Info("effective properties", "properties", effectiveProperties(source))

	builder := searchnode.NewConfigBuilder().
		WithLogger(logger).
		WithMetrics(opts.metrics)
	if opts.monitorPort > 0 {
		builder = builder.WithMonitor(opts.monitorPort)
	}
	cfg := builder.Build()

	sup, err := searchnode.NewWithConfig(source, cfg)
	if err != nil {
		logger.Error("failed to create supervisor", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if mon := searchnode.NewMonitor(sup, cfg); mon != nil {
		if err := mon.Start(ctx); err != nil {
			logger.Error("failed to start health monitor", "error", err)
			os.Exit(1)
		}
		defer mon.Stop()
		logger.Info("health monitor listening", "addr", mon.Addr())
	}

	if handler := searchnode.MetricsHandler(sup); handler != nil && opts.metricsPort > 0 {
		server, addr, err := serveMetrics(handler, opts.metricsPort, logger)
		if err != nil {
			logger.Error("failed to start metrics server", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics listening", "addr", addr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig.String())
		sup.Terminate()
	}()

	if err := sup.Start(ctx); err != nil {
		logger.Error("search node exited", "error", err, "fatal", searchnode.IsFatal(err))
		os.Exit(1)
	}
	logger.Info("search node stopped")
}
