// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
)

// stmtIDCount and dbIDCount generate unique cache IDs.
var stmtIDCount int64
var dbIDCount int64

type dbID = int64
type stmtID = int64

// statementCache caches the sql.Stmt objects prepared for each Statement. A
// Statement can correspond to one sql.Stmt per database it was run on. The
// cache is indexed by the Statement ID and the DB ID.
//
// Finalizers on Statement close its sql.Stmt values. Finalizers on DB close
// every statement prepared on it and then the sql.DB.
//
// The mutex must be held when accessing stmtDBCache or dbStmtCache.
type statementCache struct {
	stmtDBCache map[stmtID]map[dbID]*sql.Stmt
	dbStmtCache map[dbID]map[stmtID]bool
	mutex       sync.RWMutex
}

var once sync.Once
var singleStmtCache *statementCache

// newStatementCache returns the single instance of the statement cache.
func newStatementCache() *statementCache {
	once.Do(func() {
		singleStmtCache = &statementCache{
			stmtDBCache: map[stmtID]map[dbID]*sql.Stmt{},
			dbStmtCache: map[dbID]map[stmtID]bool{},
		}
	})
	return singleStmtCache
}

// newStatement returns a new Statement for query registered in the cache.
func (sc *statementCache) newStatement(query string) *Statement {
	cacheID := atomic.AddInt64(&stmtIDCount, 1)
	s := &Statement{sql: query, cacheID: cacheID}
	sc.mutex.Lock()
	sc.stmtDBCache[cacheID] = map[dbID]*sql.Stmt{}
	sc.mutex.Unlock()
	runtime.SetFinalizer(s, sc.removeAndCloseStmtFunc)
	return s
}

// newDB returns a new DB registered in the cache.
func (sc *statementCache) newDB(sqldb *sql.DB, backend Capability) *DB {
	cacheID := atomic.AddInt64(&dbIDCount, 1)
	sc.mutex.Lock()
	sc.dbStmtCache[cacheID] = map[stmtID]bool{}
	sc.mutex.Unlock()
	db := &DB{sqldb: sqldb, cacheID: cacheID, backend: backend}
	runtime.SetFinalizer(db, sc.removeAndCloseDBFunc)
	return db
}

// prepareSubstrate is an object that queries can be prepared on, e.g. a sql.DB
// or sql.Conn.
type prepareSubstrate interface {
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}

// prepareStmt returns the sql.Stmt of s on the database dbID, preparing it on
// ps if it is not cached. ps must belong to the same database.
func (sc *statementCache) prepareStmt(ctx context.Context, dbID dbID, ps prepareSubstrate, s *Statement) (*sql.Stmt, error) {
	if sqlstmt, ok := sc.lookupStmt(dbID, s); ok {
		return sqlstmt, nil
	}
	sqlstmt, err := ps.PrepareContext(ctx, s.sql)
	if err != nil {
		return nil, err
	}
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	// Someone else may have prepared the statement in the meantime.
	if sqlstmtAlt, ok := sc.stmtDBCache[s.cacheID][dbID]; ok {
		sqlstmt.Close()
		return sqlstmtAlt, nil
	}
	sc.stmtDBCache[s.cacheID][dbID] = sqlstmt
	sc.dbStmtCache[dbID][s.cacheID] = true
	return sqlstmt, nil
}

// lookupStmt returns the cached sql.Stmt of s on the database dbID.
func (sc *statementCache) lookupStmt(dbID dbID, s *Statement) (*sql.Stmt, bool) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	// The statement ID is only removed from the cache when the finalizer is
	// run, so it is always in stmtDBCache.
	sqlstmt, ok := sc.stmtDBCache[s.cacheID][dbID]
	return sqlstmt, ok
}

// removeAndCloseStmtFunc removes a Statement from the cache and closes its
// sql.Stmt values.
func (sc *statementCache) removeAndCloseStmtFunc(s *Statement) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	for dbCacheID, sqlstmt := range sc.stmtDBCache[s.cacheID] {
		sqlstmt.Close()
		delete(sc.dbStmtCache[dbCacheID], s.cacheID)
	}
	delete(sc.stmtDBCache, s.cacheID)
}

// removeAndCloseDBFunc closes and removes from the cache all sql.Stmt values
// prepared on the database, removes the database from the cache, then closes
// the sql.DB.
func (sc *statementCache) removeAndCloseDBFunc(db *DB) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	for statementCacheID := range sc.dbStmtCache[db.cacheID] {
		dbCache := sc.stmtDBCache[statementCacheID]
		dbCache[db.cacheID].Close()
		delete(dbCache, db.cacheID)
	}
	delete(sc.dbStmtCache, db.cacheID)
	db.sqldb.Close()
}
