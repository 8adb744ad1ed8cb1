// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package expr

import (
	"errors"
	"fmt"

	"github.com/canonical/sqlval/domain"
)

// ErrInvalidOperandType is matched by every error returned when an operator is
// applied to an operand it does not accept.
var ErrInvalidOperandType = errors.New("invalid operand type")

// OperandError describes a rejected operand.
type OperandError struct {
	Op Op
	// Left is the domain of the left operand.
	Left domain.Domain
	// Right is the domain of the rejected operand. It is nil when no domain
	// could be inferred for Value.
	Right domain.Domain
	Value any
	// Reason replaces the generated description when set.
	Reason string
}

func (e *OperandError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", ErrInvalidOperandType, e.Reason)
	case e.Right == nil:
		return fmt.Sprintf("%s: cannot infer domain of %T for %s", ErrInvalidOperandType, e.Value, e.Op)
	case e.Left == nil:
		return fmt.Sprintf("%s: %s operand for %s", ErrInvalidOperandType, e.Right.Name(), e.Op)
	}
	return fmt.Sprintf("%s: %s operand for %s %s", ErrInvalidOperandType, e.Right.Name(), e.Left.Name(), e.Op)
}

func (e *OperandError) Unwrap() error {
	return ErrInvalidOperandType
}
