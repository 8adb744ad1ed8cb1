// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"fmt"

	"github.com/canonical/sqlval/domain"
)

// ResultBinder is a result field that can register its storage with a Binder
// and be gated row by row.
type ResultBinder interface {
	Bind(b Binder, column int) error
	Validate()
	Invalidate()
}

// ResultField holds an incoming value of domain T read from a result column.
//
// A field starts invalid. The owner of the result set binds it to a column,
// validates it once a row has been written to it and invalidates it when the
// row goes away. Reading an invalid field fails with ErrRowNotAvailable.
// Reading the value of a NULL field depends on the null policy resolved when
// the field was created.
type ResultField[T any] struct {
	domain domain.Typed[T]
	policy NullPolicy
	valid  bool
	isNull bool
	value  T
}

// NewResultField returns an invalid field of domain d.
func NewResultField[T any](d domain.Typed[T], policy NullPolicy) *ResultField[T] {
	return &ResultField[T]{domain: d, policy: policy, isNull: true, value: d.Default()}
}

// Bind asks b to write the current value and null flag of column into the
// field storage. It does not change the validity of the field.
func (f *ResultField[T]) Bind(b Binder, column int) error {
	return b.BindResult(f.domain, column, &f.value, &f.isNull)
}

// Validate makes the bound row readable.
func (f *ResultField[T]) Validate() {
	f.valid = true
}

// Invalidate makes the field unreadable until the next Validate and resets
// its storage.
func (f *ResultField[T]) Invalidate() {
	f.valid = false
	f.isNull = true
	f.value = f.domain.Default()
}

// Valid reports whether a row is available.
func (f *ResultField[T]) Valid() bool {
	return f.valid
}

func (f *ResultField[T]) Policy() NullPolicy {
	return f.policy
}

func (f *ResultField[T]) Domain() domain.Domain {
	return f.domain
}

// IsNull reports whether the column of the current row is NULL.
func (f *ResultField[T]) IsNull() (bool, error) {
	if !f.valid {
		return false, ErrRowNotAvailable
	}
	return f.isNull, nil
}

// Value returns the column value of the current row. For NULL columns it
// returns the domain default under the Trivial policy and fails with
// ErrNullValueAccessed under the Strict policy.
func (f *ResultField[T]) Value() (T, error) {
	if !f.valid {
		return f.domain.Default(), ErrRowNotAvailable
	}
	if f.isNull {
		if f.policy == Strict {
			return f.domain.Default(), ErrNullValueAccessed
		}
		return f.domain.Default(), nil
	}
	return f.value, nil
}

// Trivial returns a view reading the field without null checks. It is only
// available under the Trivial policy, strict fields must be read with Value.
func (f *ResultField[T]) Trivial() (TrivialField[T], bool) {
	if f.policy != Trivial {
		return TrivialField[T]{}, false
	}
	return TrivialField[T]{field: f}, true
}

func (f *ResultField[T]) String() string {
	switch {
	case !f.valid:
		return "<no row>"
	case f.isNull:
		return "NULL"
	}
	return fmt.Sprint(f.value)
}

// TrivialField reads a Trivial ResultField as a plain value.
type TrivialField[T any] struct {
	field *ResultField[T]
}

// Get returns the value of the field, the domain default for NULL. It panics
// if no row is available.
func (t TrivialField[T]) Get() T {
	v, err := t.field.Value()
	if err != nil {
		panic(err)
	}
	return v
}
