// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/go-mysql-org/go-mysql/mysql"
)

// ColumnDescriptor describes one result-set column or one bound parameter
// of a prepared statement. go-mysql-org/go-mysql's mysql.Field already
// carries everything COM_STMT_PREPARE's column/parameter definition
// packets need, so it is reused verbatim rather than re-declared.
type ColumnDescriptor = *mysql.Field

// CommandKind classifies which SQL verb family a prepared statement
// belongs to, used only for bookkeeping/metrics, never interpreted by the
// catalog itself.
type CommandKind uint8

const (
	CommandUnknown CommandKind = iota
	CommandSelect
	CommandInsert
	CommandUpdate
	CommandDelete
	CommandDDL
	CommandOther
)

// Properties are the per-statement knobs stored verbatim and interpreted
// by collaborators outside this package (the cache layer enforces
// cache_ttl, etc.).
type Properties struct {
	// CacheTTL is in milliseconds; -1 means "inherit the global default".
	CacheTTL int32
	// Timeout is in milliseconds; 0 means "no timeout".
	Timeout int32
	// Delay is in milliseconds; 0 means "no delay".
	Delay int32
}

// DefaultProperties returns the inherit-everything properties set.
func DefaultProperties() Properties {
	return Properties{CacheTTL: -1, Timeout: 0, Delay: 0}
}

// StmtInfo is the immutable-once-published metadata for one logical
// prepared statement. Only RefCountClient, RefCountServer and
// WarningCount may change after construction; every other field is fixed
// at first publication by the catalog. Callers must never mutate a
// *StmtInfo obtained from StmtCatalog directly; they own their
// ref-count contribution only, not the value itself.
type StmtInfo struct {
	GlobalID GlobalStmtID

	Fingerprint uint64
	Digest      uint64
	DigestText  string

	CommandKind CommandKind

	HostgroupID uint32
	Username    string
	SchemaName  string

	Query       string
	QueryLength uint32

	Fields      []ColumnDescriptor
	ParamFields []ColumnDescriptor

	WarningCount uint16

	Properties Properties

	IsSelectNotForUpdate bool

	// RefCountClient and RefCountServer are mutated only by StmtCatalog
	// under its write lock; they are exported for read access by
	// Snapshot and tests, never written to directly by callers.
	RefCountClient int32
	RefCountServer int32
}

// NumColumns returns the number of result-set columns, truncated to the
// wire's uint16 width. A prepared statement can never have more than 65535
// columns come off the wire, so the truncation never actually fires.
func (s *StmtInfo) NumColumns() uint16 {
	return uint16(len(s.Fields))
}

// NumParams returns the number of bound parameters, truncated to uint16
// for the same reason as NumColumns.
func (s *StmtInfo) NumParams() uint16 {
	return uint16(len(s.ParamFields))
}

// fingerprintTuple is the (hostgroup, user, schema, query) tuple hashed to
// produce a Fingerprint. Two StmtInfos with equal tuples are
// the same logical statement; two with equal Fingerprint but unequal
// tuples are a hash collision and must be told apart by comparing the
// tuple itself, never just the hash.
type fingerprintTuple struct {
	HostgroupID uint32
	Username    string
	SchemaName  string
	Query       string
}

func (t fingerprintTuple) equal(s *StmtInfo) bool {
	return t.HostgroupID == s.HostgroupID &&
		t.Username == s.Username &&
		t.SchemaName == s.SchemaName &&
		t.Query == s.Query
}

// computeFingerprint is a pure function of the tuple, using xxhash as the
// 64-bit non-cryptographic hash. Collisions are expected and must be
// resolved by the caller comparing the full tuple, never by trusting the
// hash alone.
func computeFingerprint(t fingerprintTuple) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatUint(uint64(t.HostgroupID), 10))
	_, _ = d.Write(fingerprintSep)
	_, _ = d.WriteString(t.Username)
	_, _ = d.Write(fingerprintSep)
	_, _ = d.WriteString(t.SchemaName)
	_, _ = d.Write(fingerprintSep)
	_, _ = d.WriteString(t.Query)
	return d.Sum64()
}

// fingerprintSep separates tuple fields in the hash input so that, e.g.,
// hostgroup=1,user="2x" cannot be confused with hostgroup=12,user="x".
var fingerprintSep = []byte{0}
