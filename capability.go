// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import "fmt"

// NullPolicy decides what reading the value of a NULL field does.
type NullPolicy int

const (
	// Trivial fields report the domain default for NULL.
	Trivial NullPolicy = iota
	// Strict fields fail with ErrNullValueAccessed for NULL.
	Strict
)

func (p NullPolicy) String() string {
	switch p {
	case Trivial:
		return "trivial"
	case Strict:
		return "strict"
	}
	return fmt.Sprintf("NullPolicy(%d)", int(p))
}

// Capability describes the null handling of a backend.
type Capability interface {
	// EnforceNullResultTreatment reports whether NULL results of nullable
	// columns must be handled explicitly by the application.
	EnforceNullResultTreatment() bool
}

// Backend is a named Capability.
type Backend struct {
	name        string
	strictNulls bool
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithStrictNulls makes the backend enforce null result treatment.
func WithStrictNulls() BackendOption {
	return func(b *Backend) {
		b.strictNulls = true
	}
}

// NewBackend returns a backend descriptor. Without options the backend does
// not enforce null result treatment.
func NewBackend(name string, opts ...BackendOption) *Backend {
	b := &Backend{name: name}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SQLite describes the go-sqlite3 driver with NULLs read as domain defaults.
var SQLite = NewBackend("sqlite3")

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) EnforceNullResultTreatment() bool {
	return b.strictNulls
}

func (b *Backend) String() string {
	return b.name
}

// ColumnSpec holds the per column facts relevant to null handling.
type ColumnSpec struct {
	Name string
	// CanBeNull is true for nullable columns.
	CanBeNull bool
	// NullIsTrivial is true when the application treats NULL and the domain
	// default as the same value for this column.
	NullIsTrivial bool
}

// ResolveNullPolicy computes the null policy of a column on a backend. A nil
// capability never enforces null result treatment.
func ResolveNullPolicy(c Capability, spec ColumnSpec) NullPolicy {
	if c != nil && c.EnforceNullResultTreatment() && spec.CanBeNull && !spec.NullIsTrivial {
		return Strict
	}
	return Trivial
}
