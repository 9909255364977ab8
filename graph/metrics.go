/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package graph

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics of an Executor. A nil *Metrics records nothing.
type Metrics struct {
	// Loader metrics
	loadRequests *prometheus.CounterVec
	batchLoads   *prometheus.CounterVec
	batchSize    *prometheus.HistogramVec

	// Document cache metrics
	documentCache *prometheus.CounterVec

	// Execution metrics
	executions    *prometheus.CounterVec
	compensations *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		loadRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "socialgraph",
				Subsystem: "loader",
				Name:      "load_requests_total",
				Help:      "Total number of keys requested from a batch loader, cached or not",
			},
			[]string{"loader"},
		),
		batchLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "socialgraph",
				Subsystem: "loader",
				Name:      "batch_loads_total",
				Help:      "Total number of repository fetches issued by batch loaders",
			},
			[]string{"loader", "status"},
		),
		batchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "socialgraph",
				Subsystem: "loader",
				Name:      "batch_size",
				Help:      "Number of keys in one batch load",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
			[]string{"loader"},
		),
		documentCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "socialgraph",
				Subsystem: "executor",
				Name:      "document_cache_total",
				Help:      "Document cache lookups by result",
			},
			[]string{"result"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "socialgraph",
				Subsystem: "executor",
				Name:      "executions_total",
				Help:      "Total number of executed requests by outcome",
			},
			[]string{"outcome"},
		),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "socialgraph",
				Subsystem: "mutator",
				Name:      "compensations_total",
				Help:      "Compensating actions run after a failed graph mutation by status",
			},
			[]string{"op", "status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.loadRequests,
		m.batchLoads,
		m.batchSize,
		m.documentCache,
		m.executions,
		m.compensations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeLoadRequest(loader string) {
	if m == nil {
		return
	}
	m.loadRequests.WithLabelValues(loader).Inc()
}

func (m *Metrics) observeBatchLoad(loader string, size int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.batchLoads.WithLabelValues(loader, status).Inc()
	m.batchSize.WithLabelValues(loader).Observe(float64(size))
}

func (m *Metrics) observeDocumentCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.documentCache.WithLabelValues(result).Inc()
}

func (m *Metrics) observeExecution(outcome string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeCompensation(op Op, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.compensations.WithLabelValues(string(op), status).Inc()
}
