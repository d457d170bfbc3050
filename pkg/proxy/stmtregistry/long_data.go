// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

// longDataKey identifies one bound parameter of one client-visible
// prepared statement within a single session.
type longDataKey struct {
	stmt  ClientStmtID
	param uint16
}

// LongDataBuffer accumulates COM_STMT_SEND_LONG_DATA chunks per
// (ClientStmtID, param) pair ahead of an EXECUTE. It is session-affine: one instance per client connection, touched only by the
// goroutine serving that connection, so it needs no internal locking.
type LongDataBuffer struct {
	chunks map[longDataKey][]byte
}

// NewLongDataBuffer returns an empty buffer.
func NewLongDataBuffer() *LongDataBuffer {
	return &LongDataBuffer{chunks: make(map[longDataKey][]byte)}
}

// Add appends chunk to whatever has already been accumulated for
// (stmt, param), starting a new accumulation if this is the first chunk
// seen for that pair. COM_STMT_SEND_LONG_DATA never errors on the wire:
// a bad stmt id is silently ignored by the server, so Add reports no
// failure; appending to an unknown pair simply begins tracking it.
func (b *LongDataBuffer) Add(stmt ClientStmtID, param uint16, chunk []byte) {
	key := longDataKey{stmt: stmt, param: param}
	existing := b.chunks[key]
	buf := make([]byte, len(existing)+len(chunk))
	copy(buf, existing)
	copy(buf[len(existing):], chunk)
	b.chunks[key] = buf
}

// Get returns the accumulated bytes for (stmt, param), their length, and
// whether the accumulation is empty (is_null, for a parameter whose only
// chunk was zero-length). ok is false when the pair was never added to at
// all, and the EXECUTE must fall back to whatever value accompanied the
// EXECUTE packet itself rather than treating it as long data.
func (b *LongDataBuffer) Get(stmt ClientStmtID, param uint16) (data []byte, length int, isNull bool, ok bool) {
	data, ok = b.chunks[longDataKey{stmt: stmt, param: param}]
	if !ok {
		return nil, 0, false, false
	}
	return data, len(data), len(data) == 0, true
}

// Reset discards every chunk accumulated for stmt across all of its
// parameters, as COM_STMT_EXECUTE and COM_STMT_RESET both require, and
// returns how many (stmt, param) entries were discarded.
func (b *LongDataBuffer) Reset(stmt ClientStmtID) int {
	n := 0
	for key := range b.chunks {
		if key.stmt == stmt {
			delete(b.chunks, key)
			n++
		}
	}
	return n
}
