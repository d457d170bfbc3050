// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotOrderedByGlobalID(t *testing.T) {
	c := newTestCatalog(t)
	_, _, _, err := c.ResolveOrInsert(basicRequest("select 1"))
	require.NoError(t, err)
	_, _, _, err = c.ResolveOrInsert(basicRequest("select 2"))
	require.NoError(t, err)
	_, _, _, err = c.ResolveOrInsert(basicRequest("select 3"))
	require.NoError(t, err)

	rows := c.Snapshot()
	require.Len(t, rows, 3)
	require.Equal(t, "select 1", rows[0].Query)
	require.Equal(t, "select 2", rows[1].Query)
	require.Equal(t, "select 3", rows[2].Query)
}

func TestSnapshotEmptyCatalog(t *testing.T) {
	c := newTestCatalog(t)
	require.Empty(t, c.Snapshot())
}

func TestSnapshotReflectsRefCounts(t *testing.T) {
	c := newTestCatalog(t)
	id, _, _, err := c.ResolveOrInsert(basicRequest("select 1"))
	require.NoError(t, err)
	require.NoError(t, c.RefServer(id, 2))

	rows := c.Snapshot()
	require.Len(t, rows, 1)
	require.EqualValues(t, 1, rows[0].RefCountClient)
	require.EqualValues(t, 2, rows[0].RefCountServer)
	require.EqualValues(t, 2, rows[0].NumColumns)
	require.EqualValues(t, 1, rows[0].NumParams)
}

func TestSnapshotExcludesRetiredEntries(t *testing.T) {
	c := newTestCatalog(t)
	id, _, _, err := c.ResolveOrInsert(basicRequest("select 1"))
	require.NoError(t, err)
	require.NoError(t, c.RefClient(id, -1))

	require.Empty(t, c.Snapshot())
}
