// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics exposes Prometheus counters and gauges for the Live
// Session Engine's hot path, scraped at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions tracks how many session actors are currently live.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quizforge_active_sessions",
		Help: "Number of live session actors in the registry.",
	})

	// ConnectedSubscribers tracks total attached WebSocket subscribers
	// across all sessions.
	ConnectedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quizforge_connected_subscribers",
		Help: "Number of attached WebSocket subscribers across all sessions.",
	})

	// AnswersScored counts every answer submission that was scored,
	// partitioned by correctness.
	AnswersScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizforge_answers_scored_total",
		Help: "Total number of scored answer submissions.",
	}, []string{"correct"})

	// CommandLatency measures how long a presenter command spends on the
	// session actor's mailbox, from enqueue to completion.
	CommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quizforge_command_latency_seconds",
		Help:    "Latency of session state-machine commands.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
)

// Handler returns the HTTP handler Prometheus scrapes.
func Handler() http.Handler {
	return promhttp.Handler()
}
