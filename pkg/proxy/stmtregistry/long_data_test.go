// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongDataBufferAddAccumulatesAndGet(t *testing.T) {
	b := NewLongDataBuffer()
	b.Add(ClientStmtID(1), 0, []byte("hello, "))
	b.Add(ClientStmtID(1), 0, []byte("world"))

	data, length, isNull, ok := b.Get(ClientStmtID(1), 0)
	require.True(t, ok)
	require.False(t, isNull)
	require.Equal(t, "hello, world", string(data))
	require.Equal(t, len(data), length)
}

func TestLongDataBufferGetAbsent(t *testing.T) {
	b := NewLongDataBuffer()
	_, _, _, ok := b.Get(ClientStmtID(1), 0)
	require.False(t, ok)
}

func TestLongDataBufferKeysAreIndependentPerParam(t *testing.T) {
	b := NewLongDataBuffer()
	b.Add(ClientStmtID(1), 0, []byte("a"))
	b.Add(ClientStmtID(1), 1, []byte("b"))

	data0, _, _, ok := b.Get(ClientStmtID(1), 0)
	require.True(t, ok)
	require.Equal(t, "a", string(data0))

	data1, _, _, ok := b.Get(ClientStmtID(1), 1)
	require.True(t, ok)
	require.Equal(t, "b", string(data1))
}

func TestLongDataBufferKeysAreIndependentPerStmt(t *testing.T) {
	b := NewLongDataBuffer()
	b.Add(ClientStmtID(1), 0, []byte("a"))
	b.Add(ClientStmtID(2), 0, []byte("b"))

	data1, _, _, _ := b.Get(ClientStmtID(1), 0)
	data2, _, _, _ := b.Get(ClientStmtID(2), 0)
	require.Equal(t, "a", string(data1))
	require.Equal(t, "b", string(data2))
}

func TestLongDataBufferReset(t *testing.T) {
	b := NewLongDataBuffer()
	b.Add(ClientStmtID(1), 0, []byte("a"))
	b.Add(ClientStmtID(1), 1, []byte("b"))
	b.Add(ClientStmtID(2), 0, []byte("c"))

	n := b.Reset(ClientStmtID(1))
	require.Equal(t, 2, n)

	_, _, _, ok := b.Get(ClientStmtID(1), 0)
	require.False(t, ok)
	_, _, _, ok = b.Get(ClientStmtID(1), 1)
	require.False(t, ok)

	data, _, _, ok := b.Get(ClientStmtID(2), 0)
	require.True(t, ok)
	require.Equal(t, "c", string(data))
}

func TestLongDataBufferResetUnknownStmtIsNoop(t *testing.T) {
	b := NewLongDataBuffer()
	require.Equal(t, 0, b.Reset(ClientStmtID(42)))
}
