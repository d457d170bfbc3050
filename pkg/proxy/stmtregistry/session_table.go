// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"go.uber.org/zap"
)

// ClientStmtTable is the client-mode half of the session statement table:
// one instance per client connection, mapping the
// client-visible ClientStmtID to the proxy's GlobalStmtID and allocating
// (with recycling) fresh client ids. It is not safe for concurrent use:
// it is owned by, and only ever touched from, the goroutine handling one
// client session.
type ClientStmtTable struct {
	catalog *StmtCatalog
	logger  *zap.Logger

	clientToGlobal map[ClientStmtID]GlobalStmtID
	globalToClient map[GlobalStmtID][]ClientStmtID

	freeClientIDs []ClientStmtID // LIFO
	nextClientID  uint32
}

// NewClientStmtTable returns an empty client-mode table bound to catalog.
func NewClientStmtTable(catalog *StmtCatalog, logger *zap.Logger) *ClientStmtTable {
	return &ClientStmtTable{
		catalog:        catalog,
		logger:         logger,
		clientToGlobal: make(map[ClientStmtID]GlobalStmtID),
		globalToClient: make(map[GlobalStmtID][]ClientStmtID),
		nextClientID:   1,
	}
}

// RegisterClient mints a fresh (or recycled) ClientStmtID bound to global.
// It does not itself touch the catalog's ref_count_client: the reference
// it represents was already created by the StmtCatalog.ResolveOrInsert
// call that produced global, so RegisterClient only records the
// session-local mapping. Explicitly one-to-many: calling this twice for
// the same global id from the same session (each preceded by its own
// ResolveOrInsert) yields two distinct, independently closeable client
// ids that both must eventually be closed to balance the two resolves.
func (t *ClientStmtTable) RegisterClient(global GlobalStmtID) ClientStmtID {
	var id ClientStmtID
	if n := len(t.freeClientIDs); n > 0 {
		id = t.freeClientIDs[n-1]
		t.freeClientIDs = t.freeClientIDs[:n-1]
	} else {
		id = ClientStmtID(t.nextClientID)
		t.nextClientID++
	}

	t.clientToGlobal[id] = global
	t.globalToClient[global] = append(t.globalToClient[global], id)
	return id
}

// LookupGlobal translates a client-visible id to its bound GlobalStmtID.
func (t *ClientStmtTable) LookupGlobal(client ClientStmtID) (GlobalStmtID, bool) {
	global, ok := t.clientToGlobal[client]
	return global, ok
}

// CloseClient releases client: removes its mapping, decrements the
// catalog's ref_count_client, and returns the id to the free list for
// LIFO reuse. Returns false if client was never registered (or was
// already closed) in this session, a non-fatal client protocol
// violation the caller reports upstream as ErrUnknownClientStmt.
func (t *ClientStmtTable) CloseClient(client ClientStmtID) bool {
	global, ok := t.clientToGlobal[client]
	if !ok {
		return false
	}
	delete(t.clientToGlobal, client)
	t.removeGlobalToClient(global, client)
	t.freeClientIDs = append(t.freeClientIDs, client)

	if err := t.catalog.RefClient(global, -1); err != nil && t.logger != nil {
		t.logger.Error("failed to decrement client ref count on close",
			zap.Uint32("client_stmt_id", uint32(client)),
			zap.Uint64("global_id", uint64(global)),
			zap.Error(err))
	}
	return true
}

func (t *ClientStmtTable) removeGlobalToClient(global GlobalStmtID, client ClientStmtID) {
	list := t.globalToClient[global]
	for i, c := range list {
		if c == client {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(t.globalToClient, global)
	} else {
		t.globalToClient[global] = list
	}
}

// Close tears down the table: for every client id still open, it
// decrements the catalog's ref_count_client so the session leaves no
// dangling references behind. This is the single recovery path for a
// session that dies with outstanding statements open, so it never
// returns an error; any per-id failure is logged and skipped.
func (t *ClientStmtTable) Close() {
	for client, global := range t.clientToGlobal {
		if err := t.catalog.RefClient(global, -1); err != nil && t.logger != nil {
			t.logger.Error("failed to release client ref count on teardown",
				zap.Uint32("client_stmt_id", uint32(client)),
				zap.Uint64("global_id", uint64(global)),
				zap.Error(err))
		}
	}
	t.clientToGlobal = make(map[ClientStmtID]GlobalStmtID)
	t.globalToClient = make(map[GlobalStmtID][]ClientStmtID)
}

// BackendStmtTable is the backend-mode half of the session statement
// table: one instance per backend connection, mapping the
// proxy's GlobalStmtID to the backend server's own BackendStmtID and the
// opaque BackendHandle backing it. Backend ids are never recycled here;
// recycling them is the backend server's own concern.
type BackendStmtTable struct {
	catalog *StmtCatalog
	logger  *zap.Logger

	backendToGlobal map[BackendStmtID]GlobalStmtID
	globalToBackend map[GlobalStmtID]BackendStmtID
	globalToHandle  map[GlobalStmtID]BackendHandle
}

// NewBackendStmtTable returns an empty backend-mode table bound to
// catalog.
func NewBackendStmtTable(catalog *StmtCatalog, logger *zap.Logger) *BackendStmtTable {
	return &BackendStmtTable{
		catalog:         catalog,
		logger:          logger,
		backendToGlobal: make(map[BackendStmtID]GlobalStmtID),
		globalToBackend: make(map[GlobalStmtID]BackendStmtID),
		globalToHandle:  make(map[GlobalStmtID]BackendHandle),
	}
}

// BackendInsert records that global is now physically prepared on this
// backend connection as backendLocal, owning handle, and increments the
// catalog's ref_count_server. If global was already recorded, the old
// handle is closed before being replaced (a lazy re-prepare after the
// backend connection was reset without tearing down the table).
func (t *BackendStmtTable) BackendInsert(global GlobalStmtID, handle BackendHandle, backendLocal BackendStmtID) error {
	if old, ok := t.globalToHandle[global]; ok {
		if oldLocal, ok := t.globalToBackend[global]; ok {
			delete(t.backendToGlobal, oldLocal)
		}
		if err := old.Close(); err != nil && t.logger != nil {
			t.logger.Warn("failed to close stale backend statement handle",
				zap.Uint64("global_id", uint64(global)), zap.Error(err))
		}
	} else if err := t.catalog.RefServer(global, 1); err != nil {
		return err
	}

	t.backendToGlobal[backendLocal] = global
	t.globalToBackend[global] = backendLocal
	t.globalToHandle[global] = handle
	return nil
}

// FindBackendHandle returns the opaque handle backing global on this
// connection, if it has been prepared here.
func (t *BackendStmtTable) FindBackendHandle(global GlobalStmtID) (BackendHandle, bool) {
	h, ok := t.globalToHandle[global]
	return h, ok
}

// FindGlobalByBackend translates this connection's own local statement
// id back to the proxy's GlobalStmtID.
func (t *BackendStmtTable) FindGlobalByBackend(backendLocal BackendStmtID) (GlobalStmtID, bool) {
	global, ok := t.backendToGlobal[backendLocal]
	return global, ok
}

// Close tears down the table: closes every backend handle it owns and
// decrements the catalog's ref_count_server so retiring connections leave
// no dangling references. Infallible; per-handle or per-ref errors are
// logged and skipped so the rest of teardown always completes.
func (t *BackendStmtTable) Close() {
	for global, handle := range t.globalToHandle {
		if err := handle.Close(); err != nil && t.logger != nil {
			t.logger.Warn("failed to close backend statement handle on teardown",
				zap.Uint64("global_id", uint64(global)), zap.Error(err))
		}
		if err := t.catalog.RefServer(global, -1); err != nil && t.logger != nil {
			t.logger.Error("failed to release server ref count on teardown",
				zap.Uint64("global_id", uint64(global)), zap.Error(err))
		}
	}
	t.backendToGlobal = make(map[BackendStmtID]GlobalStmtID)
	t.globalToBackend = make(map[GlobalStmtID]BackendStmtID)
	t.globalToHandle = make(map[GlobalStmtID]BackendHandle)
}
