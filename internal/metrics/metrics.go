// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package metrics exposes the engine's Prometheus counters: documents
// started, documents saved, translation failures, save failures, and
// queue-full events. A running translate command can optionally serve
// these over HTTP (--metrics-addr) for a cluster's existing Prometheus
// scrape setup.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the narrow counter surface the engine reports to, kept
// separate from *Metrics so engine tests can substitute a no-op.
type Recorder interface {
	TranslationStarted()
	TranslationSucceeded()
	TranslationFailed()
	SaveFailed()
	QueueFull()
}

// Metrics is the default Recorder, backed by a dedicated
// prometheus.Registry so a caller can serve it without colliding with
// the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	started   prometheus.Counter
	succeeded prometheus.Counter
	failed    prometheus.Counter
	saveFail  prometheus.Counter
	queueFull prometheus.Counter
}

// New builds a Metrics with all counters registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estranslator_documents_started_total",
			Help: "Documents handed to a worker for translation.",
		}),
		succeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estranslator_documents_saved_total",
			Help: "Documents successfully translated and saved.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estranslator_translation_failures_total",
			Help: "Per-document translation failures (non-fatal).",
		}),
		saveFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estranslator_save_failures_total",
			Help: "Cluster save failures (fatal, trips the engine's fatal cell).",
		}),
		queueFull: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estranslator_queue_full_total",
			Help: "Times the bounded work queue was full past pool_timeout.",
		}),
	}
	registry.MustRegister(m.started, m.succeeded, m.failed, m.saveFail, m.queueFull)
	return m
}

func (m *Metrics) TranslationStarted()   { m.started.Inc() }
func (m *Metrics) TranslationSucceeded() { m.succeeded.Inc() }
func (m *Metrics) TranslationFailed()    { m.failed.Inc() }
func (m *Metrics) SaveFailed()           { m.saveFail.Inc() }
func (m *Metrics) QueueFull()            { m.queueFull.Inc() }

// Handler returns the /metrics HTTP handler, exposed separately from
// Serve so tests can exercise it via httptest without binding a port.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes the metrics registry over HTTP at /metrics until ctx is
// canceled, the Go equivalent of the teacher's Prometheus wiring.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: m.Handler()}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// noop is a Recorder that discards every event, used when no Metrics is
// configured.
type noop struct{}

func (noop) TranslationStarted()   {}
func (noop) TranslationSucceeded() {}
func (noop) TranslationFailed()    {}
func (noop) SaveFailed()           {}
func (noop) QueueFull()            {}

// Noop is the zero-cost Recorder engines use when metrics aren't wired.
var Noop Recorder = noop{}
