// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"fmt"

	"github.com/canonical/sqlval/domain"
)

// ParameterBinder is a statement parameter that can write itself to a
// Binder slot.
type ParameterBinder interface {
	Bind(b Binder, slot int) error
}

// Parameter holds an outgoing value of domain T bound to a statement slot.
// A NULL parameter always holds the domain default.
//
// Parameters are owned by a single statement and must not be mutated
// concurrently.
type Parameter[T any] struct {
	domain domain.Typed[T]
	value  T
	isNull bool
}

// NewParameter returns a NULL parameter of domain d.
func NewParameter[T any](d domain.Typed[T]) *Parameter[T] {
	return &Parameter[T]{domain: d, value: d.Default(), isNull: true}
}

// Set stores v. The parameter is no longer NULL.
func (p *Parameter[T]) Set(v T) {
	p.value = v
	p.isNull = false
}

// SetNull makes the parameter NULL.
func (p *Parameter[T]) SetNull() {
	p.value = p.domain.Default()
	p.isNull = true
}

func (p *Parameter[T]) IsNull() bool {
	return p.isNull
}

// Value returns the stored value, the domain default if NULL. NULL
// parameters are an explicit choice of the application so this never fails.
func (p *Parameter[T]) Value() T {
	return p.value
}

func (p *Parameter[T]) Domain() domain.Domain {
	return p.domain
}

// Bind writes the parameter to slot of b. Errors from b are returned as they
// are.
func (p *Parameter[T]) Bind(b Binder, slot int) error {
	raw, err := p.domain.Encode(p.value)
	if err != nil {
		return err
	}
	return b.BindParameter(p.domain, slot, raw, p.isNull)
}

func (p *Parameter[T]) String() string {
	if p.isNull {
		return "NULL"
	}
	return fmt.Sprint(p.value)
}
