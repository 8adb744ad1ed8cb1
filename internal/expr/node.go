// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package expr

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlval/domain"
)

// Kind distinguishes leaves from operator nodes.
type Kind int

const (
	KindColumn Kind = iota
	KindConstant
	KindUnary
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "Column"
	case KindConstant:
		return "Constant"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Operand is implemented by anything that can be used as an expression
// operand without lifting.
type Operand interface {
	ExprNode() *Node
}

// Node is an immutable node of a typed expression tree.
type Node struct {
	kind     Kind
	op       Op
	domain   domain.Domain
	operands []*Node

	// table and column are set on column leaves.
	table  string
	column string
	// value holds the native value of constant leaves.
	value any
}

// Column returns a leaf referencing column name of table. The table may be
// empty.
func Column(d domain.Domain, table, name string) *Node {
	return &Node{kind: KindColumn, domain: d, table: table, column: name}
}

// Constant returns a constant leaf of domain d. The value must be convertible
// to the native type of d.
func Constant(d domain.Domain, v any) (*Node, error) {
	nv, ok := d.Convert(v)
	if !ok {
		return nil, &OperandError{
			Reason: fmt.Sprintf("cannot use %T as %s constant", v, d.Name()),
		}
	}
	return &Node{kind: KindConstant, domain: d, value: nv}, nil
}

// ExprNode returns n, making every Node an Operand.
func (n *Node) ExprNode() *Node {
	return n
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Op is the operator tag of unary and binary nodes.
func (n *Node) Op() Op {
	return n.op
}

// Domain is the domain of the values the expression produces.
func (n *Node) Domain() domain.Domain {
	return n.domain
}

// Operands returns a copy of the ordered operands.
func (n *Node) Operands() []*Node {
	ops := make([]*Node, len(n.operands))
	copy(ops, n.operands)
	return ops
}

// Table is the table qualifier of a column leaf.
func (n *Node) Table() string {
	return n.table
}

// Column is the column name of a column leaf.
func (n *Node) Column() string {
	return n.column
}

// Value is the native value of a constant leaf.
func (n *Node) Value() any {
	return n.value
}

// String returns a description of the tree used in tests and error messages.
func (n *Node) String() string {
	switch n.kind {
	case KindColumn:
		return fmt.Sprintf("Column[%s %s]", n.qualifiedName(), n.domain.Name())
	case KindConstant:
		return fmt.Sprintf("Constant[%v %s]", n.value, n.domain.Name())
	}
	parts := []string{string(n.op), n.domain.Name()}
	for _, o := range n.operands {
		parts = append(parts, o.String())
	}
	return n.kind.String() + "[" + strings.Join(parts, " ") + "]"
}

func (n *Node) qualifiedName() string {
	if n.table == "" {
		return n.column
	}
	return n.table + "." + n.column
}

// Assignment pairs a column with the expression assigned to it.
type Assignment struct {
	target *Node
	value  *Node
}

// Target is the assigned column.
func (a *Assignment) Target() *Node {
	return a.target
}

// Value is the assigned expression.
func (a *Assignment) Value() *Node {
	return a.value
}

func (a *Assignment) String() string {
	return "Assignment[" + a.target.String() + " " + a.value.String() + "]"
}
