// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import "sort"

// SnapshotRow is one row of the admin snapshot schema, in the documented
// column order: hostgroup, schema, user, digest, both ref counts, column
// and parameter counts, warning count, then the query text.
type SnapshotRow struct {
	Hostgroup      uint32
	SchemaName     string
	Username       string
	Digest         uint64
	RefCountClient int32
	RefCountServer int32
	NumColumns     uint16
	NumParams      uint16
	NumWarnings    uint16
	Query          string
}

// Snapshot returns a tabular view of every currently cached statement for
// the admin interface, ordered ascending by GlobalStmtID so output is
// deterministic. Grounded on the original ProxySQL
// get_prepared_statements_global_infos(), whose SQLite3_result* is this
// package's analogue of a plain row slice; there is no admin SQL surface
// in scope to hand a driver-specific result type to.
func (c *StmtCatalog) Snapshot() []SnapshotRow {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()

	ids := make([]GlobalStmtID, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]SnapshotRow, 0, len(ids))
	for _, id := range ids {
		info := c.byID[id]
		rows = append(rows, SnapshotRow{
			Hostgroup:      info.HostgroupID,
			SchemaName:     info.SchemaName,
			Username:       info.Username,
			Digest:         info.Digest,
			RefCountClient: info.RefCountClient,
			RefCountServer: info.RefCountServer,
			NumColumns:     info.NumColumns(),
			NumParams:      info.NumParams(),
			NumWarnings:    info.WarningCount,
			Query:          info.Query,
		})
	}
	return rows
}
