// Package metrics exposes supervisor lifecycle metrics to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var allStates = []domain.LifecycleState{
	domain.StateIdle,
	domain.StateConfiguring,
	domain.StateLaunching,
	domain.StateRunning,
	domain.StateTerminating,
	domain.StateStopped,
	domain.StateFailed,
}

// Collector implements ports.LifecycleMetrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	state          *prometheus.GaugeVec
	transitions    *prometheus.CounterVec
	probes         *prometheus.CounterVec
	probeDuration  prometheus.Histogram
	launchDuration *prometheus.HistogramVec
}

func NewCollector(cfg domain.MetricsConfig) (*Collector, error) {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = domain.DefaultMetricsConfig().Namespace
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "state",
			Help:      "1 for the supervisor's current lifecycle state, 0 otherwise.",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "transitions_total",
			Help:      "Lifecycle state transitions.",
		}, []string{"from", "to"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "probes_total",
			Help:      "Readiness probes by result.",
		}, []string{"result"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "probe_duration_seconds",
			Help:      "Time spent waiting on cluster health per probe.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 3, 5},
		}),
		launchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "node",
			Name:      "launch_duration_seconds",
			Help:      "Embedded node launch time by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}

	for _, collector := range []prometheus.Collector{c.state, c.transitions, c.probes, c.probeDuration, c.launchDuration} {
		if err := c.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	c.setState(domain.StateIdle)
	return c, nil
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *Collector) RecordTransition(from, to domain.LifecycleState) {
	c.transitions.With(prometheus.Labels{"from": from.String(), "to": to.String()}).Inc()
	c.setState(to)
}

func (c *Collector) RecordProbe(result domain.ReadinessResult, duration time.Duration) {
	c.probes.With(prometheus.Labels{"result": result.String()}).Inc()
	c.probeDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordLaunch(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.launchDuration.With(prometheus.Labels{"status": status}).Observe(duration.Seconds())
}

func (c *Collector) setState(current domain.LifecycleState) {
	for _, s := range allStates {
		v := 0.0
		if s == current {
			v = 1
		}
		c.state.With(prometheus.Labels{"state": s.String()}).Set(v)
	}
}
