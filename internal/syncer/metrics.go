// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locsync_sync_runs_total",
		Help: "Synchronization invocations by operation and status",
	}, []string{"operation", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locsync_sync_duration_seconds",
		Help:    "Duration of synchronization invocations",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"operation"})

	keysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locsync_sync_keys_total",
		Help: "Keys moved between the content store and Localazy",
	}, []string{"direction"})
)

func (s *Service) finish(r *Report) {
	r.settle(s.deps.Now())

	runsTotal.WithLabelValues(r.Operation, string(r.Status)).Inc()
	runDuration.WithLabelValues(r.Operation).Observe(r.Duration.Seconds())
	keysTotal.WithLabelValues("exported").Add(float64(r.KeysExported))
	keysTotal.WithLabelValues("imported").Add(float64(r.KeysFetched))
	if r.Deprecation != nil {
		keysTotal.WithLabelValues("deprecated").Add(float64(r.Deprecation.Deprecated))
	}

	attrs := []any{
		"category", category(r.Operation),
		"run_id", r.RunID,
		"operation", r.Operation,
		"status", r.Status,
		"duration", r.Duration,
	}
	if r.Message != "" {
		attrs = append(attrs, "message", r.Message)
	}
	switch r.Status {
	case StatusFailed:
		s.logger.Error("sync finished", attrs...)
	case StatusPartial:
		s.logger.Warn("sync finished", attrs...)
	default:
		s.logger.Info("sync finished", attrs...)
	}
}

func category(operation string) string {
	switch operation {
	case OpImport:
		return "import"
	case OpDeprecateItems, OpDeprecateStrings:
		return "deprecation"
	default:
		return "export"
	}
}
