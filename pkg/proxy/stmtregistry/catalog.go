// Copyright 2024 PingCAP, Inc.
// SPDX-License-Identifier: Apache-2.0

package stmtregistry

import (
	"sync"

	"github.com/mysqlproxy/stmtregistry/lib/util/errors"
	"go.uber.org/zap"
)

// ResolveRequest carries everything needed to resolve-or-insert a
// logical statement: the fingerprint tuple, the metadata a fresh backend
// PREPARE just returned (used to populate a new StmtInfo, or to detect
// drift against a cached one), and the statement's recorded properties.
type ResolveRequest struct {
	HostgroupID uint32
	Username    string
	SchemaName  string
	Query       string

	Digest      uint64
	DigestText  string
	CommandKind CommandKind

	Meta       *PreparedMeta
	Properties Properties

	IsSelectNotForUpdate bool
}

// CatalogMetrics is the tuple StmtCatalog.GetMetrics returns: a point-in-time
// census of how many statements are cached and how heavily referenced they
// are, for admin/observability consumption.
type CatalogMetrics struct {
	UniqueClientBound uint64
	TotalClientRefs   int64
	MaxGlobalIDSeen   GlobalStmtID
	CachedCount       uint64
	UniqueServerBound uint64
	TotalServerRefs   int64
}

// StmtCatalog is the process-global catalog of all StmtInfos. It is the
// only component in this package shared across goroutines; every other
// type here is session-affine. rwlock is the sole lock: read mode for
// pure lookups, write mode for any index or ref-count mutation. No
// external I/O and no call into a session structure happens while it is
// held.
type StmtCatalog struct {
	rwlock sync.RWMutex

	byID          map[GlobalStmtID]*StmtInfo
	byFingerprint map[uint64][]*StmtInfo // collision chain, insertion order

	freeStmtIDs  []GlobalStmtID // LIFO
	nextGlobalID GlobalStmtID

	maxGlobalIDSeen GlobalStmtID

	logger  *zap.Logger
	metrics *Metrics
}

// NewStmtCatalog constructs an empty catalog. cfg may be nil, in which
// case NewDefaultCatalogConfig is used.
func NewStmtCatalog(cfg *CatalogConfig, logger *zap.Logger) *StmtCatalog {
	if cfg == nil {
		cfg = NewDefaultCatalogConfig()
	}
	return &StmtCatalog{
		byID:          make(map[GlobalStmtID]*StmtInfo, cfg.InitialCapacity),
		byFingerprint: make(map[uint64][]*StmtInfo, cfg.InitialCapacity),
		nextGlobalID:  1,
		logger:        logger,
		metrics:       NewMetrics(cfg.MetricsLabel),
	}
}

// Metrics exposes the catalog's prometheus collectors so the caller can
// register them with a registerer of its choosing.
func (c *StmtCatalog) Metrics() *Metrics {
	return c.metrics
}

// ResolveOrInsert deduplicates an incoming PREPARE against the catalog by
// fingerprint. On a match it increments ref_count_client and returns the
// existing entry with wasNew == false. On no match it allocates a fresh
// GlobalStmtID, builds a StmtInfo from req, and returns it with
// wasNew == true.
//
// If the fingerprint and tuple match a live entry but req.Meta's column
// or parameter count differs from what is cached, the stale entry is
// force-retired (regardless of its current ref counts) and a new one is
// inserted; the returned error is ErrFingerprintDrift and the caller
// should treat the (possibly still valid-looking) id/info pair as
// "re-prepare required" rather than a failure; every ClientStmtID any
// session had bound to the retired GlobalStmtID is now dangling and it is
// the caller's responsibility to invalidate those sessions.
func (c *StmtCatalog) ResolveOrInsert(req ResolveRequest) (GlobalStmtID, *StmtInfo, bool, error) {
	tuple := fingerprintTuple{
		HostgroupID: req.HostgroupID,
		Username:    req.Username,
		SchemaName:  req.SchemaName,
		Query:       req.Query,
	}
	fp := computeFingerprint(tuple)

	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	chain := c.byFingerprint[fp]
	for _, info := range chain {
		if !tuple.equal(info) {
			continue
		}
		if req.Meta != nil && (info.NumColumns() != req.Meta.NumColumns || info.NumParams() != req.Meta.NumParams) {
			c.retireLocked(info)
			c.metrics.ResolveTotal.WithLabelValues(resultDrift).Inc()
			newInfo, id, err := c.insertLocked(fp, tuple, req)
			if err != nil {
				return 0, nil, false, err
			}
			return id, newInfo, true, ErrFingerprintDrift
		}
		info.RefCountClient++
		c.metrics.ResolveTotal.WithLabelValues(resultReused).Inc()
		return info.GlobalID, info, false, nil
	}

	if len(chain) > 0 {
		c.metrics.ResolveTotal.WithLabelValues(resultCollision).Inc()
	} else {
		c.metrics.ResolveTotal.WithLabelValues(resultNew).Inc()
	}
	newInfo, id, err := c.insertLocked(fp, tuple, req)
	if err != nil {
		return 0, nil, false, err
	}
	return id, newInfo, true, nil
}

// insertLocked allocates a fresh id and StmtInfo for tuple/req and adds it
// to both indexes. Caller must hold rwlock for writing.
func (c *StmtCatalog) insertLocked(fp uint64, tuple fingerprintTuple, req ResolveRequest) (*StmtInfo, GlobalStmtID, error) {
	id, err := c.allocateIDLocked()
	if err != nil {
		return nil, 0, err
	}

	info := &StmtInfo{
		GlobalID:             id,
		Fingerprint:          fp,
		Digest:               req.Digest,
		DigestText:           req.DigestText,
		CommandKind:          req.CommandKind,
		HostgroupID:          tuple.HostgroupID,
		Username:             tuple.Username,
		SchemaName:           tuple.SchemaName,
		Query:                tuple.Query,
		QueryLength:          uint32(len(tuple.Query)),
		Properties:           req.Properties,
		IsSelectNotForUpdate: req.IsSelectNotForUpdate,
		RefCountClient:       1,
		RefCountServer:       0,
	}
	if req.Meta != nil {
		info.Fields = req.Meta.Fields
		info.ParamFields = req.Meta.ParamFields
		info.WarningCount = req.Meta.WarningCount
	}

	c.byID[id] = info
	c.byFingerprint[fp] = append(c.byFingerprint[fp], info)
	return info, id, nil
}

// allocateIDLocked pops a retired id off the free list if one is
// available (LIFO, for cache locality, observable in tests but not part
// of wire behavior), otherwise post-increments nextGlobalID. Caller must hold
// rwlock for writing.
func (c *StmtCatalog) allocateIDLocked() (GlobalStmtID, error) {
	if n := len(c.freeStmtIDs); n > 0 {
		id := c.freeStmtIDs[n-1]
		c.freeStmtIDs = c.freeStmtIDs[:n-1]
		return id, nil
	}
	if c.nextGlobalID == 0 {
		return 0, ErrCatalogExhausted
	}
	id := c.nextGlobalID
	c.nextGlobalID++
	if id > c.maxGlobalIDSeen {
		c.maxGlobalIDSeen = id
	}
	return id, nil
}

// FindByID returns the StmtInfo for id, or false if it is not cached. The
// returned pointer must not be mutated by the caller; its RefCount*
// fields may be stale the instant the read lock is released.
func (c *StmtCatalog) FindByID(id GlobalStmtID) (*StmtInfo, bool) {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()
	info, ok := c.byID[id]
	return info, ok
}

// FindByFingerprint returns the first StmtInfo inserted under fp, or
// false if none is cached. When multiple tuples collide on fp, this
// returns whichever was inserted first; callers needing a specific tuple
// should use ResolveOrInsert, which compares the full tuple rather than
// just the hash.
func (c *StmtCatalog) FindByFingerprint(fp uint64) (*StmtInfo, bool) {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()
	chain := c.byFingerprint[fp]
	if len(chain) == 0 {
		return nil, false
	}
	return chain[0], true
}

// RefClient adjusts ref_count_client for id by delta. If the result would
// be negative the mutation is rejected and ErrRefCountUnderflow is
// returned; the caller decides whether that is process-fatal. If the
// adjustment brings both ref counts to zero, the entry is retired and its
// id returned to the free list.
func (c *StmtCatalog) RefClient(id GlobalStmtID, delta int32) error {
	return c.adjustRef(id, delta, true)
}

// RefServer adjusts ref_count_server for id by delta, with the same
// underflow and retirement semantics as RefClient.
func (c *StmtCatalog) RefServer(id GlobalStmtID, delta int32) error {
	return c.adjustRef(id, delta, false)
}

func (c *StmtCatalog) adjustRef(id GlobalStmtID, delta int32, client bool) error {
	c.rwlock.Lock()
	defer c.rwlock.Unlock()

	info, ok := c.byID[id]
	if !ok {
		return errors.Errorf("stmtregistry: ref count adjustment on unknown global id %d", id)
	}

	var newVal int32
	if client {
		newVal = info.RefCountClient + delta
	} else {
		newVal = info.RefCountServer + delta
	}
	if newVal < 0 {
		c.metrics.RefCountErrors.Inc()
		if c.logger != nil {
			c.logger.Error("reference count underflow",
				zap.Uint64("global_id", uint64(id)),
				zap.Bool("client", client),
				zap.Int32("delta", delta))
		}
		return ErrRefCountUnderflow
	}

	if client {
		info.RefCountClient = newVal
	} else {
		info.RefCountServer = newVal
	}
	if info.RefCountClient == 0 && info.RefCountServer == 0 {
		c.retireLocked(info)
	}
	return nil
}

// retireLocked removes info from both indexes and returns its id to the
// free list. Caller must hold rwlock for writing.
func (c *StmtCatalog) retireLocked(info *StmtInfo) {
	delete(c.byID, info.GlobalID)

	chain := c.byFingerprint[info.Fingerprint]
	for i, other := range chain {
		if other == info {
			chain = append(chain[:i], chain[i+1:]...)
			break
		}
	}
	if len(chain) == 0 {
		delete(c.byFingerprint, info.Fingerprint)
	} else {
		c.byFingerprint[info.Fingerprint] = chain
	}

	c.freeStmtIDs = append(c.freeStmtIDs, info.GlobalID)
	c.metrics.ResolveTotal.WithLabelValues(resultRetired).Inc()
}

// GetMetrics returns a point-in-time census of the catalog's size and
// aggregate reference counts.
func (c *StmtCatalog) GetMetrics() CatalogMetrics {
	c.rwlock.RLock()
	defer c.rwlock.RUnlock()

	var m CatalogMetrics
	m.MaxGlobalIDSeen = c.maxGlobalIDSeen
	m.CachedCount = uint64(len(c.byID))
	for _, info := range c.byID {
		if info.RefCountClient > 0 {
			m.UniqueClientBound++
		}
		if info.RefCountServer > 0 {
			m.UniqueServerBound++
		}
		m.TotalClientRefs += int64(info.RefCountClient)
		m.TotalServerRefs += int64(info.RefCountServer)
	}
	return m
}

// RefreshGauges pushes the current snapshot into the catalog's gauge
// collectors. Callers that scrape metrics periodically call this right
// before a prometheus scrape; it is not called implicitly on every
// mutation, to keep the write-lock hold time independent of how often
// gauges get scraped.
func (c *StmtCatalog) RefreshGauges() {
	m := c.GetMetrics()
	c.metrics.CachedStatements.Set(float64(m.CachedCount))
	c.metrics.ClientBound.Set(float64(m.UniqueClientBound))
	c.metrics.ServerBound.Set(float64(m.UniqueServerBound))
	c.metrics.TotalClientRefs.Set(float64(m.TotalClientRefs))
	c.metrics.TotalServerRefs.Set(float64(m.TotalServerRefs))
	c.metrics.MaxGlobalIDSeen.Set(float64(m.MaxGlobalIDSeen))
}
