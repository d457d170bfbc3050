// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import "context"

// PreparedMeta is the tuple the backend driver returns from physically
// preparing a statement: a handle plus everything needed
// to populate a StmtInfo or to answer a lazy backend-side prepare.
type PreparedMeta struct {
	Handle       BackendHandle
	BackendStmt  BackendStmtID
	NumColumns   uint16
	NumParams    uint16
	WarningCount uint16
	Fields       []ColumnDescriptor
	ParamFields  []ColumnDescriptor
}

// BackendPreparer is the single narrow capability this package requires
// from the backend driver collaborator: given a connection and a query,
// physically prepare it and report back the opaque handle plus metadata.
// No other driver method is called from inside this package; everything
// else (routing, result forwarding, wire codec) is the caller's concern.
//
// Implementations must not be called while a StmtCatalog write lock is
// held: callers obtain results from BackendPreparer first, then hand them
// to StmtCatalog.ResolveOrInsert or BackendStmtTable.BackendInsert.
type BackendPreparer interface {
	PrepareStatement(ctx context.Context, conn any, query string) (*PreparedMeta, error)
}
