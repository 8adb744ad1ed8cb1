// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package expr

import (
	"fmt"

	"github.com/canonical/sqlval/domain"
)

// Op tags the operator of a node.
type Op string

const (
	OpEq = Op("=")
	OpNe = Op("<>")
	OpLt = Op("<")
	OpLe = Op("<=")
	OpGt = Op(">")
	OpGe = Op(">=")

	OpAdd = Op("+")
	OpSub = Op("-")
	OpMul = Op("*")
	OpDiv = Op("/")
	OpMod = Op("%")

	OpAnd = Op("AND")
	OpOr  = Op("OR")

	OpConcat = Op("||")

	// Unary operators.
	OpNot       = Op("NOT")
	OpNeg       = Op("NEG")
	OpPos       = Op("POS")
	OpIsNull    = Op("IS NULL")
	OpIsNotNull = Op("IS NOT NULL")
)

var binaryCategory = map[Op]domain.Category{
	OpEq:     domain.Equality,
	OpNe:     domain.Equality,
	OpLt:     domain.Ordering,
	OpLe:     domain.Ordering,
	OpGt:     domain.Ordering,
	OpGe:     domain.Ordering,
	OpAdd:    domain.Arithmetic,
	OpSub:    domain.Arithmetic,
	OpMul:    domain.Arithmetic,
	OpDiv:    domain.Arithmetic,
	OpMod:    domain.Arithmetic,
	OpAnd:    domain.Logical,
	OpOr:     domain.Logical,
	OpConcat: domain.Concatenation,
}

// unaryCategory maps unary operators to the category whose self operand rule
// decides if the operand domain supports them. Null tests apply to every
// domain and are absent.
var unaryCategory = map[Op]domain.Category{
	OpNot: domain.Logical,
	OpNeg: domain.Arithmetic,
	OpPos: domain.Arithmetic,
}

// compoundOps are the operators usable in compound assignments.
var compoundOps = map[Op]bool{
	OpAdd: true,
	OpSub: true,
	OpMul: true,
	OpDiv: true,
}

// Lift wraps v as an expression node. Operands are used as they are, other
// values become constants of the domain inferred from their Go type by the
// default catalog.
func Lift(v any) (*Node, error) {
	return LiftWith(domain.Default(), v)
}

// LiftWith is Lift with an explicit catalog.
func LiftWith(cat *domain.Catalog, v any) (*Node, error) {
	if o, ok := v.(Operand); ok {
		n := o.ExprNode()
		if n == nil {
			return nil, &OperandError{Reason: "nil expression"}
		}
		return n, nil
	}
	d, nv, ok := cat.ForValue(v)
	if !ok {
		return nil, &OperandError{Value: v}
	}
	return &Node{kind: KindConstant, domain: d, value: nv}, nil
}

// Binary builds the node for left op right. The right operand is lifted if
// needed and must be accepted by the domain of left for the category of op.
func Binary(op Op, left Operand, right any) (*Node, error) {
	cat, ok := binaryCategory[op]
	if !ok {
		return nil, fmt.Errorf("internal error: %q is not a binary operator", op)
	}
	l, err := operandNode(left)
	if err != nil {
		return nil, err
	}
	r, err := Lift(right)
	if err != nil {
		if oe, ok := err.(*OperandError); ok {
			oe.Op = op
			oe.Left = l.domain
		}
		return nil, err
	}
	if !l.domain.Accepts(cat, r.domain) {
		return nil, &OperandError{Op: op, Left: l.domain, Right: r.domain}
	}
	return &Node{
		kind:     KindBinary,
		op:       op,
		domain:   l.domain.Result(cat, r.domain),
		operands: []*Node{l, r},
	}, nil
}

// Unary builds the node for op applied to operand.
func Unary(op Op, operand Operand) (*Node, error) {
	n, err := operandNode(operand)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpIsNull, OpIsNotNull:
		return &Node{kind: KindUnary, op: op, domain: domain.Boolean, operands: []*Node{n}}, nil
	}
	cat, ok := unaryCategory[op]
	if !ok {
		return nil, fmt.Errorf("internal error: %q is not a unary operator", op)
	}
	if !n.domain.Accepts(cat, n.domain) {
		return nil, &OperandError{Op: op, Right: n.domain}
	}
	return &Node{
		kind:     KindUnary,
		op:       op,
		domain:   n.domain.Result(cat, n.domain),
		operands: []*Node{n},
	}, nil
}

// Assign pairs the column target with value. The value domain must be
// comparable for equality with the column domain.
func Assign(target Operand, value any) (*Assignment, error) {
	t, err := columnNode(target, OpEq)
	if err != nil {
		return nil, err
	}
	v, err := Lift(value)
	if err != nil {
		if oe, ok := err.(*OperandError); ok {
			oe.Op = OpEq
			oe.Left = t.domain
		}
		return nil, err
	}
	if !t.domain.Accepts(domain.Equality, v.domain) {
		return nil, &OperandError{Op: OpEq, Left: t.domain, Right: v.domain}
	}
	return &Assignment{target: t, value: v}, nil
}

// CompoundAssign builds the assignment target = target op right, the
// expansion of target op= right.
func CompoundAssign(op Op, target Operand, right any) (*Assignment, error) {
	if !compoundOps[op] {
		return nil, fmt.Errorf("internal error: %q has no compound assignment", op)
	}
	t, err := columnNode(target, op)
	if err != nil {
		return nil, err
	}
	v, err := Binary(op, t, right)
	if err != nil {
		return nil, err
	}
	return &Assignment{target: t, value: v}, nil
}

func operandNode(o Operand) (*Node, error) {
	if o == nil {
		return nil, &OperandError{Reason: "nil expression"}
	}
	n := o.ExprNode()
	if n == nil {
		return nil, &OperandError{Reason: "nil expression"}
	}
	return n, nil
}

func columnNode(o Operand, op Op) (*Node, error) {
	n, err := operandNode(o)
	if err != nil {
		return nil, err
	}
	if n.kind != KindColumn {
		return nil, &OperandError{Reason: fmt.Sprintf("%s target must be a column, got %s", assignOp(op), n.kind)}
	}
	return n, nil
}

// assignOp returns the SQL spelling of the assignment operator for op.
func assignOp(op Op) string {
	if op == OpEq {
		return "="
	}
	return string(op) + "="
}
