// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
)

// stmtCache stores the driver prepared statements associated to the
// Statement objects.
var stmtCache = newStatementCache()

// Statement is a SQL statement ready to be run on any [DB]. Its parameters
// are written as positional placeholders and are bound, in order, from the
// parameters passed to [DB.Query].
type Statement struct {
	// cacheID is used to look up the driver prepared statements associated
	// with this Statement.
	cacheID int64
	sql     string
}

// Prepare returns a Statement for query.
func Prepare(query string) (*Statement, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("cannot prepare statement: empty query")
	}
	return stmtCache.newStatement(query), nil
}

// MustPrepare is the same as [Prepare] except that it panics on error.
func MustPrepare(query string) *Statement {
	s, err := Prepare(query)
	if err != nil {
		panic(err)
	}
	return s
}

// SQL returns the query text of the statement.
func (s *Statement) SQL() string {
	return s.sql
}

type DB struct {
	// cacheID is used to look up the cached driver prepared statements
	// prepared on this database.
	cacheID int64
	// sqldb is the underlying database/sql DB object.
	sqldb   *sql.DB
	backend Capability
}

// NewDB creates a new [DB] from a [sql.DB]. backend is the capability passed
// to [Column.ResultField] when resolving null policies for this database.
func NewDB(sqldb *sql.DB, backend Capability) *DB {
	if sqldb == nil {
		return nil
	}
	return stmtCache.newDB(sqldb, backend)
}

// PlainDB returns the underlying database object.
func (db *DB) PlainDB() *sql.DB {
	return db.sqldb
}

// Capability returns the backend capability of the database.
func (db *DB) Capability() Capability {
	return db.backend
}

// Query represents a query on a database. It is designed to be run once.
type Query struct {
	// query runs the Query against the DB or the TX and returns rows.
	query func(context.Context) (*sql.Rows, error)
	// exec runs the Query against the DB or the TX discarding rows.
	exec func(context.Context) (sql.Result, error)
	ctx  context.Context
	err  error
}

// Iterator is used to iterate over the results of the query. Every call to
// Next drives the validity of the result fields passed to [Query.Iter].
type Iterator struct {
	rows   *sql.Rows
	binder RowBinder
	fields []ResultBinder
	err    error
}

// bindParams writes params, in order, to the arguments of a query.
func bindParams(params []ParameterBinder) ([]any, error) {
	var b ArgBinder
	for i, p := range params {
		if err := p.Bind(&b, i); err != nil {
			return nil, fmt.Errorf("cannot bind parameter %d: %w", i, err)
		}
	}
	return b.Args()
}

// Query builds a new query from a context, a [Statement] and its parameters.
// The query is run on the database when one of [Query.Run], [Query.Exec],
// [Query.Get] or [Query.Iter] is executed.
func (db *DB) Query(ctx context.Context, s *Statement, params ...ParameterBinder) *Query {
	if ctx == nil {
		ctx = context.Background()
	}

	args, err := bindParams(params)
	if err != nil {
		return &Query{ctx: ctx, err: err}
	}

	query := func(innerCtx context.Context) (*sql.Rows, error) {
		sqlstmt, err := stmtCache.prepareStmt(ctx, db.cacheID, db.sqldb, s)
		if err != nil {
			return nil, err
		}
		return sqlstmt.QueryContext(innerCtx, args...)
	}
	exec := func(innerCtx context.Context) (sql.Result, error) {
		sqlstmt, err := stmtCache.prepareStmt(ctx, db.cacheID, db.sqldb, s)
		if err != nil {
			return nil, err
		}
		return sqlstmt.ExecContext(innerCtx, args...)
	}

	return &Query{query: query, exec: exec, ctx: ctx}
}

// Run is used to run a query on a database and disregard any results.
func (q *Query) Run() error {
	_, err := q.Exec()
	return err
}

// Exec runs the query and returns information about its execution.
func (q *Query) Exec() (sql.Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.exec(q.ctx)
}

// Get runs the query and binds its first row to fields. It returns
// [ErrNoRows] if fields were passed and there are no results. The fields stay
// valid after Get returns.
func (q *Query) Get(fields ...ResultBinder) error {
	iter := q.Iter(fields...)
	if !iter.Next() {
		err := iter.Close()
		if err == nil && len(fields) > 0 {
			err = ErrNoRows
		}
		return err
	}
	if err := iter.closeRows(); err != nil {
		iter.invalidate()
		return err
	}
	return nil
}

// Iter runs the query and returns an [Iterator] writing each row into
// fields, the n-th field receiving the n-th result column. Columns without a
// field are discarded. [Iterator.Close] must be run once iteration is
// finished.
func (q *Query) Iter(fields ...ResultBinder) *Iterator {
	for _, f := range fields {
		f.Invalidate()
	}
	if q.err != nil {
		return &Iterator{err: q.err}
	}

	iter := &Iterator{fields: fields}
	for i, f := range fields {
		if err := f.Bind(&iter.binder, i); err != nil {
			iter.err = fmt.Errorf("cannot bind result column %d: %w", i, err)
			return iter
		}
	}

	iter.rows, iter.err = q.query(q.ctx)
	return iter
}

// Next advances to the next row. The fields of the previous row are
// invalidated first; they are validated again only if a new row was read.
// If an error occurs during iteration it will be returned with
// [Iterator.Close].
func (iter *Iterator) Next() bool {
	iter.invalidate()
	if iter.err != nil || iter.rows == nil {
		return false
	}
	if !iter.rows.Next() {
		return false
	}
	if err := iter.binder.Scan(iter.rows); err != nil {
		iter.err = fmt.Errorf("cannot get result: %w", err)
		return false
	}
	for _, f := range iter.fields {
		f.Validate()
	}
	return true
}

// Close finishes the iteration and returns any errors encountered. Close can
// be called multiple times on the [Iterator] and the same error will be
// returned. The fields are left invalid.
func (iter *Iterator) Close() error {
	iter.invalidate()
	return iter.closeRows()
}

func (iter *Iterator) invalidate() {
	for _, f := range iter.fields {
		f.Invalidate()
	}
}

func (iter *Iterator) closeRows() error {
	if iter.rows == nil {
		return iter.err
	}
	err := iter.rows.Close()
	if err == nil {
		err = iter.rows.Err()
	}
	iter.rows = nil
	if iter.err == nil {
		iter.err = err
	}
	return iter.err
}

// TX represents a transaction on the database.
type TX struct {
	sqltx *sql.Tx
	db    *DB
	done  int32
}

func (tx *TX) isDone() bool {
	return atomic.LoadInt32(&tx.done) == 1
}

func (tx *TX) setDone() error {
	if !atomic.CompareAndSwapInt32(&tx.done, 0, 1) {
		return ErrTXDone
	}
	return nil
}

// Begin starts a transaction. A transaction must be ended
// with a [TX.Commit] or [TX.Rollback].
func (db *DB) Begin(ctx context.Context, opts *TXOptions) (*TX, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sqltx, err := db.sqldb.BeginTx(ctx, opts.plainTXOptions())
	if err != nil {
		return nil, err
	}
	return &TX{sqltx: sqltx, db: db}, nil
}

// Commit commits the transaction.
func (tx *TX) Commit() error {
	err := tx.setDone()
	if err == nil {
		err = tx.sqltx.Commit()
	}
	return err
}

// Rollback aborts the transaction.
func (tx *TX) Rollback() error {
	err := tx.setDone()
	if err == nil {
		err = tx.sqltx.Rollback()
	}
	return err
}

// TXOptions holds the transaction options to be used in [DB.Begin].
type TXOptions struct {
	// Isolation is the transaction isolation level.
	// If zero, the driver or database's default level is used.
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

func (txopts *TXOptions) plainTXOptions() *sql.TxOptions {
	if txopts == nil {
		return nil
	}
	return &sql.TxOptions{Isolation: txopts.Isolation, ReadOnly: txopts.ReadOnly}
}

// Query builds a new query on the transaction from a context, a [Statement]
// and its parameters.
func (tx *TX) Query(ctx context.Context, s *Statement, params ...ParameterBinder) *Query {
	if ctx == nil {
		ctx = context.Background()
	}
	if tx.isDone() {
		return &Query{ctx: ctx, err: ErrTXDone}
	}

	args, err := bindParams(params)
	if err != nil {
		return &Query{ctx: ctx, err: err}
	}

	query := func(innerCtx context.Context) (*sql.Rows, error) {
		if sqlstmt, ok := stmtCache.lookupStmt(tx.db.cacheID, s); ok {
			// The txstmt is closed by database/sql when the transaction is
			// commited or rolled back.
			return tx.sqltx.StmtContext(innerCtx, sqlstmt).QueryContext(innerCtx, args...)
		}
		return tx.sqltx.QueryContext(innerCtx, s.sql, args...)
	}
	exec := func(innerCtx context.Context) (sql.Result, error) {
		if sqlstmt, ok := stmtCache.lookupStmt(tx.db.cacheID, s); ok {
			return tx.sqltx.StmtContext(innerCtx, sqlstmt).ExecContext(innerCtx, args...)
		}
		return tx.sqltx.ExecContext(innerCtx, s.sql, args...)
	}

	return &Query{query: query, exec: exec, ctx: ctx}
}
