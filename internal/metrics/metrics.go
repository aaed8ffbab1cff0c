// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package metrics holds the Prometheus collectors for the runner and the
// host adapter. A nil *Metrics records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webview"

type Metrics struct {
	commands       *prometheus.CounterVec
	frames         prometheus.Counter
	requests       prometheus.Counter
	fallthroughs   prometheus.Counter
	decodeErrors   prometheus.Counter
	launchFailures prometheus.Counter
	instances      prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_commands_total",
			Help:      "Commands processed by the runner, by kind.",
		}, []string{"kind"}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_frames_total",
			Help:      "Frames captured and sent to the host.",
		}),
		requests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Page requests forwarded to the host.",
		}),
		fallthroughs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_fallthrough_total",
			Help:      "Page requests that matched no registered event.",
		}),
		decodeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_decode_errors_total",
			Help:      "Page requests dropped because their params did not decode.",
		}),
		launchFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runner_launch_failures_total",
			Help:      "Launch commands that failed to create a window or engine.",
		}),
		instances: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runner_instances",
			Help:      "Live engine instances.",
		}),
	}
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Command(kind string) {
	if m != nil {
		m.commands.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Frame() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *Metrics) Request() {
	if m != nil {
		m.requests.Inc()
	}
}

func (m *Metrics) Fallthrough() {
	if m != nil {
		m.fallthroughs.Inc()
	}
}

func (m *Metrics) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

func (m *Metrics) LaunchFailure() {
	if m != nil {
		m.launchFailures.Inc()
	}
}

func (m *Metrics) Instances(n int) {
	if m != nil {
		m.instances.Set(float64(n))
	}
}
