// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/canonical/sqlval/domain"
	"github.com/canonical/sqlval/internal/expr"
)

// Node is an immutable node of an expression tree.
type Node = expr.Node

// Assignment pairs a column with the expression assigned to it.
type Assignment = expr.Assignment

// Operand is implemented by expressions, columns and nodes.
type Operand = expr.Operand

// Operator tags the operation of a node.
type Operator = expr.Op

const (
	OpEq        = expr.OpEq
	OpNe        = expr.OpNe
	OpLt        = expr.OpLt
	OpLe        = expr.OpLe
	OpGt        = expr.OpGt
	OpGe        = expr.OpGe
	OpAdd       = expr.OpAdd
	OpSub       = expr.OpSub
	OpMul       = expr.OpMul
	OpDiv       = expr.OpDiv
	OpMod       = expr.OpMod
	OpAnd       = expr.OpAnd
	OpOr        = expr.OpOr
	OpConcat    = expr.OpConcat
	OpNot       = expr.OpNot
	OpNeg       = expr.OpNeg
	OpPos       = expr.OpPos
	OpIsNull    = expr.OpIsNull
	OpIsNotNull = expr.OpIsNotNull
)

// Binary builds left op right. A right operand that is not an Operand is
// lifted to a constant of the domain inferred from its Go type. Operands the
// left domain does not accept are rejected with an error matching
// ErrInvalidOperandType and no node is built.
func Binary(op Operator, left Operand, right any) (*Node, error) {
	return expr.Binary(op, left, right)
}

// Unary builds op applied to operand.
func Unary(op Operator, operand Operand) (*Node, error) {
	return expr.Unary(op, operand)
}

// Assign builds target = value. The target must be a column.
func Assign(target Operand, value any) (*Assignment, error) {
	return expr.Assign(target, value)
}

// CompoundAssign builds target op= right, that is target = target op right.
// The target must be a column.
func CompoundAssign(op Operator, target Operand, right any) (*Assignment, error) {
	return expr.CompoundAssign(op, target, right)
}

// Render returns the SQL fragment of an expression and the arguments of its
// constants.
func Render(e Operand) (string, []any, error) {
	if e == nil {
		return "", nil, &OperandError{Reason: "nil expression"}
	}
	return expr.Render(e.ExprNode())
}

// RenderAssignment returns the SQL of an assignment as written in the SET
// clause of an UPDATE statement.
func RenderAssignment(a *Assignment) (string, []any, error) {
	return expr.RenderAssignment(a)
}

// Expr is an expression producing values of native type T. The operator
// functions of this package only combine expressions of compatible native
// types, so operand errors on built-in domains are caught by the compiler.
type Expr[T any] struct {
	node *expr.Node
}

// As converts a node built with the untyped functions to an Expr. The node
// domain must have native type T.
func As[T any](n *Node) (Expr[T], error) {
	var zero T
	if n == nil {
		return Expr[T]{}, &OperandError{Reason: "nil expression"}
	}
	if n.Domain().NativeType() != reflect.TypeOf(&zero).Elem() {
		return Expr[T]{}, &OperandError{Reason: fmt.Sprintf("cannot use %s expression as %T", n.Domain().Name(), zero)}
	}
	return Expr[T]{node: n}, nil
}

func (e Expr[T]) ExprNode() *expr.Node {
	return e.node
}

// Domain returns nil for the zero Expr.
func (e Expr[T]) Domain() domain.Domain {
	if e.node == nil {
		return nil
	}
	return e.node.Domain()
}

func (e Expr[T]) String() string {
	if e.node == nil {
		return "<nil>"
	}
	return e.node.String()
}

// Column is a column of a table holding values of native type T. Columns are
// the only valid targets of assignments, and they generate the parameters and
// result fields bound to them.
type Column[T any] struct {
	Expr[T]
	domain domain.Typed[T]
	spec   ColumnSpec
}

// NewColumn declares the column spec.Name of table in domain d.
func NewColumn[T any](d domain.Typed[T], table string, spec ColumnSpec) Column[T] {
	return Column[T]{
		Expr:   Expr[T]{node: expr.Column(d, table, spec.Name)},
		domain: d,
		spec:   spec,
	}
}

func (c Column[T]) Spec() ColumnSpec {
	return c.spec
}

// Parameter returns a new NULL parameter of the column domain.
func (c Column[T]) Parameter() *Parameter[T] {
	return NewParameter[T](c.domain)
}

// ResultField returns a new result field for the column with its null policy
// resolved against backend.
func (c Column[T]) ResultField(backend Capability) *ResultField[T] {
	return NewResultField[T](c.domain, ResolveNullPolicy(backend, c.spec))
}

// Lit returns the constant v of domain d.
func Lit[T any](d domain.Typed[T], v T) Expr[T] {
	n, err := expr.Constant(d, v)
	if err != nil {
		panic(err)
	}
	return Expr[T]{node: n}
}

func Bool(v bool) Expr[bool] {
	return Lit[bool](domain.Boolean, v)
}

func Int(v int64) Expr[int64] {
	return Lit[int64](domain.Integral, v)
}

func Float(v float64) Expr[float64] {
	return Lit[float64](domain.Floating, v)
}

func Dec(v decimal.Decimal) Expr[decimal.Decimal] {
	return Lit[decimal.Decimal](domain.Decimal, v)
}

func Text(v string) Expr[string] {
	return Lit[string](domain.Text, v)
}

func Timestamp(v time.Time) Expr[time.Time] {
	return Lit[time.Time](domain.Timestamp, v)
}

func ID(v uuid.UUID) Expr[uuid.UUID] {
	return Lit[uuid.UUID](domain.UUID, v)
}

// Ordered is the set of native types of the built-in domains with an
// ordering.
type Ordered interface {
	bool | int64 | float64 | decimal.Decimal | string | time.Time
}

// Number is the set of native types of the built-in numeric domains.
type Number interface {
	int64 | float64 | decimal.Decimal
}

// The typed operators below panic if the rules of the operand domains reject
// the combination. For the built-in domains this cannot happen; it is only
// possible for custom domains sharing a native type with a built-in one.

func And(l, r Expr[bool]) Expr[bool] {
	return binary[bool](OpAnd, l, r)
}

func Or(l, r Expr[bool]) Expr[bool] {
	return binary[bool](OpOr, l, r)
}

func Not(e Expr[bool]) Expr[bool] {
	return unary[bool](OpNot, e)
}

func Eq[T any](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpEq, l, r)
}

func Ne[T any](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpNe, l, r)
}

func Lt[T Ordered](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpLt, l, r)
}

func Le[T Ordered](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpLe, l, r)
}

func Gt[T Ordered](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpGt, l, r)
}

func Ge[T Ordered](l, r Expr[T]) Expr[bool] {
	return binary[bool](OpGe, l, r)
}

func Add[T Number](l, r Expr[T]) Expr[T] {
	return binary[T](OpAdd, l, r)
}

func Sub[T Number](l, r Expr[T]) Expr[T] {
	return binary[T](OpSub, l, r)
}

func Mul[T Number](l, r Expr[T]) Expr[T] {
	return binary[T](OpMul, l, r)
}

func Div[T Number](l, r Expr[T]) Expr[T] {
	return binary[T](OpDiv, l, r)
}

func Mod(l, r Expr[int64]) Expr[int64] {
	return binary[int64](OpMod, l, r)
}

func Neg[T Number](e Expr[T]) Expr[T] {
	return unary[T](OpNeg, e)
}

func Pos[T Number](e Expr[T]) Expr[T] {
	return unary[T](OpPos, e)
}

func Concat(l, r Expr[string]) Expr[string] {
	return binary[string](OpConcat, l, r)
}

func IsNull[T any](e Expr[T]) Expr[bool] {
	return unary[bool](OpIsNull, e)
}

func IsNotNull[T any](e Expr[T]) Expr[bool] {
	return unary[bool](OpIsNotNull, e)
}

// Set builds the assignment c = v.
func Set[T any](c Column[T], v Expr[T]) *Assignment {
	return assignment(expr.Assign(c, v))
}

// AddAssign builds c += r.
func AddAssign[T Number](c Column[T], r Expr[T]) *Assignment {
	return assignment(expr.CompoundAssign(OpAdd, c, r))
}

// SubAssign builds c -= r.
func SubAssign[T Number](c Column[T], r Expr[T]) *Assignment {
	return assignment(expr.CompoundAssign(OpSub, c, r))
}

// MulAssign builds c *= r.
func MulAssign[T Number](c Column[T], r Expr[T]) *Assignment {
	return assignment(expr.CompoundAssign(OpMul, c, r))
}

// DivAssign builds c /= r.
func DivAssign[T Number](c Column[T], r Expr[T]) *Assignment {
	return assignment(expr.CompoundAssign(OpDiv, c, r))
}

func binary[R any](op Operator, l, r Operand) Expr[R] {
	n, err := expr.Binary(op, l, r)
	if err != nil {
		panic(err)
	}
	return Expr[R]{node: n}
}

func unary[R any](op Operator, e Operand) Expr[R] {
	n, err := expr.Unary(op, e)
	if err != nil {
		panic(err)
	}
	return Expr[R]{node: n}
}

func assignment(a *Assignment, err error) *Assignment {
	if err != nil {
		panic(err)
	}
	return a
}
