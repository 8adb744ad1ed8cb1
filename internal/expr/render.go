// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package expr

import (
	"bytes"
	"fmt"
)

// Render generates the SQL fragment for the expression tree rooted at n along
// with the query arguments for its constants, in placeholder order.
func Render(n *Node) (sql string, args []any, err error) {
	if n == nil {
		return "", nil, &OperandError{Reason: "nil expression"}
	}
	var b sqlBuilder
	if err := b.writeNode(n); err != nil {
		return "", nil, err
	}
	return b.getSQL(), b.args, nil
}

// RenderAssignment generates the SQL for an assignment as written in the SET
// clause of an UPDATE statement.
func RenderAssignment(a *Assignment) (sql string, args []any, err error) {
	var b sqlBuilder
	b.write(a.target.column)
	b.write(" = ")
	if err := b.writeNode(a.value); err != nil {
		return "", nil, err
	}
	return b.getSQL(), b.args, nil
}

// sqlBuilder is used to generate SQL string piece by piece using the struct
// methods.
type sqlBuilder struct {
	buf  bytes.Buffer
	args []any
}

func (b *sqlBuilder) writeNode(n *Node) error {
	switch n.kind {
	case KindColumn:
		b.write(n.qualifiedName())
	case KindConstant:
		v, err := n.domain.Encode(n.value)
		if err != nil {
			return err
		}
		b.args = append(b.args, v)
		b.write("?")
	case KindUnary:
		return b.writeUnary(n)
	case KindBinary:
		b.write("(")
		if err := b.writeNode(n.operands[0]); err != nil {
			return err
		}
		b.write(" " + string(n.op) + " ")
		if err := b.writeNode(n.operands[1]); err != nil {
			return err
		}
		b.write(")")
	default:
		return fmt.Errorf("internal error: unknown node kind %s", n.kind)
	}
	return nil
}

// writeUnary writes prefix operators before and null tests after their
// operand.
func (b *sqlBuilder) writeUnary(n *Node) error {
	b.write("(")
	switch n.op {
	case OpNot:
		b.write("NOT ")
	case OpNeg:
		b.write("-")
	case OpPos:
		b.write("+")
	}
	if err := b.writeNode(n.operands[0]); err != nil {
		return err
	}
	switch n.op {
	case OpIsNull, OpIsNotNull:
		b.write(" " + string(n.op))
	}
	b.write(")")
	return nil
}

// write writes the SQL to the sqlBuilder.
func (b *sqlBuilder) write(sql string) {
	b.buf.WriteString(sql)
}

// getSQL returns the generated SQL string
func (b *sqlBuilder) getSQL() string {
	return b.buf.String()
}
