// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"database/sql"
	"errors"

	"github.com/canonical/sqlval/internal/expr"
)

// ErrRowNotAvailable is returned when a ResultField is read while no row is
// bound to it.
var ErrRowNotAvailable = errors.New("accessing field in non-existing row")

// ErrNullValueAccessed is returned when the value of a NULL field is read
// under the Strict null policy.
var ErrNullValueAccessed = errors.New("accessing value of NULL field")

// ErrInvalidOperandType is matched by the errors of operators applied to
// operands their domain does not accept. See [OperandError].
var ErrInvalidOperandType = expr.ErrInvalidOperandType

// OperandError describes an operand rejected when building an expression.
type OperandError = expr.OperandError

var ErrNoRows = sql.ErrNoRows
var ErrTXDone = sql.ErrTxDone
