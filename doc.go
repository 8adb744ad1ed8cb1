// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package sqlval provides typed SQL values and expressions checked before they
reach the database.

Every value belongs to a domain from package domain. A domain fixes the Go
type of the value, its default and the operators it can be combined with.

# Parameters and result fields

A [Parameter] holds a value sent with a statement. It starts as NULL and is
changed with Set and SetNull. Reading a NULL parameter yields the domain
default.

A [ResultField] holds a value read from a result column. It is only readable
while a row is available:

	id := person.ID.ResultField(db.Capability())
	iter := db.Query(ctx, stmt).Iter(id)
	for iter.Next() {
		v, err := id.Value()
		...
	}
	err := iter.Close()

Outside of a row both IsNull and Value fail with [ErrRowNotAvailable]. For
NULL columns Value returns the domain default under the [Trivial] null policy
and fails with [ErrNullValueAccessed] under the [Strict] policy. The policy is
resolved once, when the field is created, from the backend [Capability] and
the [ColumnSpec] of the column.

# Expressions

Columns and literals combine into expression trees:

	adult := sqlval.And(person.Active.Expr, sqlval.Ge(person.Age.Expr, sqlval.Int(18)))
	where, args, err := sqlval.Render(adult)

The typed functions only accept operands of compatible Go types, so most
invalid combinations do not compile. Expressions built with [Binary] and
[Unary] are checked when they are built instead: raw Go values are lifted to
constants of the matching domain and rejected operands fail with an error
matching [ErrInvalidOperandType]. No node is ever built for an invalid
combination.

Compound assignments such as [AddAssign] only take a column as their target
and render as the SET clause of an UPDATE:

	set, args, err := sqlval.RenderAssignment(sqlval.AddAssign(person.Age, sqlval.Int(1)))
	// set == "age = (person.age + ?)"

# Running statements

[DB] wraps a [database/sql.DB]. Statements are prepared once per database and
cached. Parameters are bound to the positional placeholders of a statement in
the order they are passed to [DB.Query], and result fields to the result
columns in the order they are passed to [Query.Iter] or [Query.Get].
*/
package sqlval
