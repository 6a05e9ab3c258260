// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blossom"

// Manager owns every collector the site exports.
type Manager struct {
	registry *prometheus.Registry

	pingbacks       *prometheus.CounterVec
	votes           *prometheus.CounterVec
	pointsCredited  prometheus.Counter
	nxCredited      prometheus.Counter
	gameAPIRequests *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var global = NewManager(prometheus.NewRegistry()) //nolint:gochecknoglobals // process-wide metrics

// NewManager registers all collectors, plus the Go runtime and process
// collectors, on registry.
func NewManager(registry *prometheus.Registry) *Manager {
	auto := promauto.With(registry)

	m := &Manager{registry: registry}

	m.pingbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "vote",
		Name:      "pingbacks_total",
		Help:      "Pingback notifications received, by payload shape and response status",
	}, []string{"shape", "status_code"})

	m.votes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "vote",
		Name:      "events_total",
		Help:      "Vote events processed, by outcome",
	}, []string{"outcome"})

	m.pointsCredited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "vote",
		Name:      "points_credited_total",
		Help:      "Vote points credited to users",
	})

	m.nxCredited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "vote",
		Name:      "nx_credited_total",
		Help:      "NX credit granted to users",
	})

	m.gameAPIRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gameapi",
		Name:      "requests_total",
		Help:      "Requests proxied to the game server, by endpoint and result",
	}, []string{"endpoint", "result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by path, method and status code",
	}, []string{"path", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method"})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) RecordPingback(shape string, statusCode int) {
	m.pingbacks.WithLabelValues(shape, strconv.Itoa(statusCode)).Inc()
}

func (m *Manager) RecordVote(outcome string) {
	m.votes.WithLabelValues(outcome).Inc()
}

func (m *Manager) RecordReward(points, nx int) {
	if points > 0 {
		m.pointsCredited.Add(float64(points))
	}
	if nx > 0 {
		m.nxCredited.Add(float64(nx))
	}
}

func (m *Manager) RecordGameAPI(endpoint, result string) {
	m.gameAPIRequests.WithLabelValues(endpoint, result).Inc()
}

func (m *Manager) ObserveRequest(path, method string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// Package-level helpers record on the process-wide manager.

func Handler() http.Handler { return global.Handler() }

func RecordPingback(shape string, statusCode int) { global.RecordPingback(shape, statusCode) }

func RecordVote(outcome string) { global.RecordVote(outcome) }

func RecordReward(points, nx int) { global.RecordReward(points, nx) }

func RecordGameAPI(endpoint, result string) { global.RecordGameAPI(endpoint, result) }

func ObserveRequest(path, method string, statusCode int, duration time.Duration) {
	global.ObserveRequest(path, method, statusCode, duration)
}
