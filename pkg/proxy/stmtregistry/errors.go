// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import "github.com/mysqlproxy/stmtregistry/lib/util/errors"

var (
	// ErrUnknownClientStmt reports that a client referenced a ClientStmtID
	// its session never issued (EXECUTE/CLOSE on a stale or forged handle).
	// ClientStmtTable signals that case with a false result from
	// LookupGlobal or CloseClient; the caller reports it with this error.
	// It is a non-fatal protocol violation: the caller translates it into
	// a MySQL protocol error for the client.
	ErrUnknownClientStmt = errors.New("stmtregistry: unknown client statement id")

	// ErrRefCountUnderflow indicates a caller bug: a ref_client or
	// ref_server decrement was issued without a matching prior increment.
	// The catalog refuses the mutation rather than letting a counter go
	// negative; the caller decides whether this is process-fatal.
	ErrRefCountUnderflow = errors.New("stmtregistry: reference count underflow")

	// ErrFingerprintDrift is returned by StmtCatalog.ResolveOrInsert when
	// the fingerprint and full (hostgroup, user, schema, query) tuple of
	// an incoming PREPARE match a live StmtInfo, but the newly prepared
	// statement's column or parameter count differs from what is cached.
	// The stale entry is retired and a new one is allocated before this
	// error is returned; the caller should treat this as "re-prepare
	// required" rather than a failure.
	ErrFingerprintDrift = errors.New("stmtregistry: fingerprint drift, re-prepare required")

	// ErrCatalogExhausted is returned if allocating a new GlobalStmtID
	// would overflow uint64. Effectively unreachable, but must be a
	// defined, reportable error rather than a silent wraparound.
	ErrCatalogExhausted = errors.New("stmtregistry: catalog exhausted, no global ids left")

	// ErrWrongSessionMode describes a client-mode operation invoked on a
	// backend-mode table or vice versa. No function in this package
	// returns it: the distinct ClientStmtTable/BackendStmtTable types make
	// that case a compile-time impossibility.
	ErrWrongSessionMode = errors.New("stmtregistry: operation not valid for this session table's mode")
)
