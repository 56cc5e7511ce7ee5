// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package throttle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK        = "ok"
	resultError     = "error"
	resultCancelled = "cancelled"
)

var (
	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locsync_throttle_queue_depth",
			Help: "Number of Localazy API requests waiting for admission",
		},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locsync_throttle_requests_total",
			Help: "Total number of throttled Localazy API requests by result",
		},
		[]string{"result"},
	)

	waitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "locsync_throttle_wait_seconds",
			Help:    "Time a request spent queued before admission",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	backoffs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "locsync_throttle_backoffs_total",
			Help: "Drain iterations that found a rate window exhausted",
		},
	)
)
