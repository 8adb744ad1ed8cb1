// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-sqlite3"
)

// This file contains a wrapper sql.Driver over the SQLite driver which tracks
// the prepared statements it opens and closes, and counts the queries run on
// connections and on statements. The tests use it to check for statement
// leaks and for prepared statement reuse.

// openedStmts and closedStmts store the IDs of the opened and closed
// statements indexed by test name. IDs are stored instead of references so
// the statements can still be garbage collected, and they are never reused
// unlike addresses of collected statements.
var openedStmts = map[string]map[uint64]string{}
var closedStmts = map[string]map[uint64]bool{}
var stmtRegistryMutex sync.RWMutex

// stmtIDCount generates the statement IDs.
var stmtIDCount uint64

// dbQueriesRun and stmtQueriesRun count the queries run directly on a
// connection and the queries run through a prepared statement, indexed by
// test name. queriesRunMutex must be held when accessing them.
var dbQueriesRun = map[string]int{}
var stmtQueriesRun = map[string]int{}
var queriesRunMutex sync.RWMutex

func countQuery(counts map[string]int, testName string, err error) {
	if err != nil {
		return
	}
	queriesRunMutex.Lock()
	defer queriesRunMutex.Unlock()
	counts[testName]++
}

type trackingDriver struct {
	driver.Driver
}

type trackingConn struct {
	testName string
	*sqlite3.SQLiteConn
}

type trackingStmt struct {
	id       uint64
	testName string
	*sqlite3.SQLiteStmt
}

func (s *trackingStmt) Close() error {
	stmtRegistryMutex.Lock()
	defer stmtRegistryMutex.Unlock()
	if _, ok := closedStmts[s.testName]; !ok {
		closedStmts[s.testName] = map[uint64]bool{}
	}
	closedStmts[s.testName][s.id] = true
	return s.SQLiteStmt.Close()
}

func (c *trackingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	s, err := c.SQLiteConn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	sm, ok := s.(*sqlite3.SQLiteStmt)
	if !ok {
		panic(fmt.Sprintf("internal error: base driver is not SQLite, got %T", s))
	}
	sPtr := &trackingStmt{
		id:         atomic.AddUint64(&stmtIDCount, 1),
		SQLiteStmt: sm,
		testName:   c.testName,
	}

	stmtRegistryMutex.Lock()
	defer stmtRegistryMutex.Unlock()
	if _, ok := openedStmts[c.testName]; !ok {
		openedStmts[c.testName] = map[uint64]string{}
	}
	openedStmts[c.testName][sPtr.id] = query
	return sPtr, nil
}

func (c *trackingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *trackingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rows, err := c.SQLiteConn.QueryContext(ctx, query, args)
	countQuery(dbQueriesRun, c.testName, err)
	return rows, err
}

func (c *trackingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	res, err := c.SQLiteConn.ExecContext(ctx, query, args)
	countQuery(dbQueriesRun, c.testName, err)
	return res, err
}

func (s *trackingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	rows, err := s.SQLiteStmt.QueryContext(ctx, args)
	countQuery(stmtQueriesRun, s.testName, err)
	return rows, err
}

func (s *trackingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	res, err := s.SQLiteStmt.ExecContext(ctx, args)
	countQuery(stmtQueriesRun, s.testName, err)
	return res, err
}

const testNameTag = "testName"

// Open expects the DSN to carry the test name in the testName parameter.
func (d *trackingDriver) Open(name string) (driver.Conn, error) {
	var testName string
	if _, parameters, ok := strings.Cut(name, "?"); ok {
		for _, p := range strings.Split(parameters, "&") {
			if k, v, _ := strings.Cut(p, "="); k == testNameTag {
				testName = v
			}
		}
	}
	if testName == "" {
		panic("internal error: testName is not found in the db DSN")
	}

	baseConn, err := d.Driver.Open(name)
	if err != nil {
		return nil, err
	}
	conn, ok := baseConn.(*sqlite3.SQLiteConn)
	if !ok {
		panic("internal error: base driver is not SQLite")
	}
	return &trackingConn{SQLiteConn: conn, testName: testName}, nil
}

func init() {
	sql.Register("sqlite3_stmtChecked", &trackingDriver{
		&sqlite3.SQLiteDriver{},
	})
}
