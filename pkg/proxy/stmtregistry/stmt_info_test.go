// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeFingerprintStable(t *testing.T) {
	tuple := fingerprintTuple{HostgroupID: 1, Username: "root", SchemaName: "test", Query: "select 1"}
	require.Equal(t, computeFingerprint(tuple), computeFingerprint(tuple))
}

func TestComputeFingerprintDistinguishesFields(t *testing.T) {
	base := fingerprintTuple{HostgroupID: 1, Username: "root", SchemaName: "test", Query: "select 1"}
	variants := []fingerprintTuple{
		{HostgroupID: 2, Username: "root", SchemaName: "test", Query: "select 1"},
		{HostgroupID: 1, Username: "app", SchemaName: "test", Query: "select 1"},
		{HostgroupID: 1, Username: "root", SchemaName: "other", Query: "select 1"},
		{HostgroupID: 1, Username: "root", SchemaName: "test", Query: "select 2"},
	}
	baseHash := computeFingerprint(base)
	for _, v := range variants {
		require.NotEqual(t, baseHash, computeFingerprint(v))
	}
}

func TestComputeFingerprintFieldBoundary(t *testing.T) {
	// hostgroup=1, user="2x" must not collide with hostgroup=12, user="x".
	a := fingerprintTuple{HostgroupID: 1, Username: "2x", SchemaName: "s", Query: "q"}
	b := fingerprintTuple{HostgroupID: 12, Username: "x", SchemaName: "s", Query: "q"}
	require.NotEqual(t, computeFingerprint(a), computeFingerprint(b))
}

func TestFingerprintTupleEqual(t *testing.T) {
	tuple := fingerprintTuple{HostgroupID: 1, Username: "root", SchemaName: "test", Query: "select 1"}
	info := &StmtInfo{HostgroupID: 1, Username: "root", SchemaName: "test", Query: "select 1"}
	require.True(t, tuple.equal(info))

	info.SchemaName = "other"
	require.False(t, tuple.equal(info))
}

func TestStmtInfoNumColumnsAndParams(t *testing.T) {
	info := &StmtInfo{
		Fields:      make([]ColumnDescriptor, 3),
		ParamFields: make([]ColumnDescriptor, 2),
	}
	require.EqualValues(t, 3, info.NumColumns())
	require.EqualValues(t, 2, info.NumParams())
}

func TestDefaultProperties(t *testing.T) {
	p := DefaultProperties()
	require.EqualValues(t, -1, p.CacheTTL)
	require.Zero(t, p.Timeout)
	require.Zero(t, p.Delay)
}
