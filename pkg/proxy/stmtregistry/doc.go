// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package stmtregistry implements the proxy-owned prepared statement
// registry that sits between many client connections and many backend
// connections in a MySQL-protocol proxy.
//
// A single logical statement may be physically prepared on several
// different backend connections, each assigning its own server-local
// statement handle, while clients keep long-lived session-local handles
// that must outlive any particular backend connection. This package
// coordinates the three handle spaces (client, global, backend) that
// result from that mismatch: StmtCatalog is the process-wide,
// concurrency-safe catalog of deduplicated statement metadata;
// ClientStmtTable, BackendStmtTable, LongDataBuffer and ExecMetaTable are
// session-affine and require no internal synchronization.
//
// Wire-protocol parsing, query routing, query digestion and the actual
// backend PREPARE round-trip live outside this package; see BackendPreparer
// for the single narrow capability this package requires from them.
package stmtregistry
