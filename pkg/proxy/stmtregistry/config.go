// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

const (
	defaultInitialCapacity = 256
	defaultMetricsLabel    = "default"
)

// CatalogConfig configures a StmtCatalog. There is no file- or SQL-driven
// loader here (configuration loading is an external collaborator's
// concern); callers build one with NewDefaultCatalogConfig and the With...
// functional options, the same pattern used elsewhere in this proxy for
// per-component configuration.
type CatalogConfig struct {
	// InitialCapacity sizes the catalog's maps up front to avoid rehashing
	// during the initial burst of PREPAREs a new proxy process sees.
	InitialCapacity int
	// MetricsLabel distinguishes this catalog's metrics series when a
	// process runs more than one (e.g. one per listener).
	MetricsLabel string
}

// CatalogConfigFunc mutates a CatalogConfig; see WithInitialCapacity and
// WithMetricsLabel.
type CatalogConfigFunc func(*CatalogConfig)

// NewDefaultCatalogConfig returns the baseline configuration, which
// NewStmtCatalog also uses when given a nil config.
func NewDefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		InitialCapacity: defaultInitialCapacity,
		MetricsLabel:    defaultMetricsLabel,
	}
}

// WithInitialCapacity overrides the catalog's initial map capacity. Values
// less than 1 are ignored.
func WithInitialCapacity(n int) CatalogConfigFunc {
	return func(cfg *CatalogConfig) {
		if n > 0 {
			cfg.InitialCapacity = n
		}
	}
}

// WithMetricsLabel overrides the label used to distinguish this catalog's
// metrics series. Empty values are ignored.
func WithMetricsLabel(label string) CatalogConfigFunc {
	return func(cfg *CatalogConfig) {
		if label != "" {
			cfg.MetricsLabel = label
		}
	}
}
