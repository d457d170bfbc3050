// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "proxy"
	metricsSubsystem = "stmt_registry"

	lblLabel  = "catalog"
	lblResult = "result"

	resultNew       = "new"
	resultReused    = "reused"
	resultCollision = "collision"
	resultDrift     = "drift"
	resultRetired   = "retired"
)

// Metrics holds the prometheus collectors for one StmtCatalog, following
// the Namespace/Subsystem/Name idiom this proxy uses for every other
// component's metrics.
type Metrics struct {
	CachedStatements prometheus.Gauge
	ClientBound      prometheus.Gauge
	ServerBound      prometheus.Gauge
	TotalClientRefs  prometheus.Gauge
	TotalServerRefs  prometheus.Gauge
	MaxGlobalIDSeen  prometheus.Gauge
	ResolveTotal     *prometheus.CounterVec
	RefCountErrors   prometheus.Counter
}

// NewMetrics builds a Metrics bound to the given catalog label. It does not
// register with any registerer; call Register to do that, or leave it
// unregistered for tests that only inspect values directly.
func NewMetrics(label string) *Metrics {
	constLabels := prometheus.Labels{lblLabel: label}
	return &Metrics{
		CachedStatements: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "cached_statements",
			Help:        "Number of distinct prepared statements currently cached.",
			ConstLabels: constLabels,
		}),
		ClientBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "client_bound_statements",
			Help:        "Number of statements with at least one client reference.",
			ConstLabels: constLabels,
		}),
		ServerBound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "server_bound_statements",
			Help:        "Number of statements with at least one backend reference.",
			ConstLabels: constLabels,
		}),
		TotalClientRefs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "total_client_refs",
			Help:        "Sum of ref_count_client across all cached statements.",
			ConstLabels: constLabels,
		}),
		TotalServerRefs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "total_server_refs",
			Help:        "Sum of ref_count_server across all cached statements.",
			ConstLabels: constLabels,
		}),
		MaxGlobalIDSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "max_global_id_seen",
			Help:        "Highest GlobalStmtID ever allocated by this catalog.",
			ConstLabels: constLabels,
		}),
		ResolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "resolve_total",
			Help:        "Count of ResolveOrInsert outcomes by result.",
			ConstLabels: constLabels,
		}, []string{lblResult}),
		RefCountErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "ref_count_errors_total",
			Help:        "Count of rejected ref count mutations (underflow).",
			ConstLabels: constLabels,
		}),
	}
}

// Register registers every collector with reg. Safe to call once per
// Metrics instance.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CachedStatements, m.ClientBound, m.ServerBound,
		m.TotalClientRefs, m.TotalServerRefs, m.MaxGlobalIDSeen,
		m.ResolveTotal, m.RefCountErrors,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
