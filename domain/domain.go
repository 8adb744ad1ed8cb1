// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package domain

import (
	"database/sql/driver"
	"fmt"
	"reflect"
)

// Category groups operators that share operand rules.
type Category int

const (
	Equality Category = iota
	Ordering
	Arithmetic
	Logical
	Concatenation
)

func (c Category) String() string {
	switch c {
	case Equality:
		return "equality"
	case Ordering:
		return "ordering"
	case Arithmetic:
		return "arithmetic"
	case Logical:
		return "logical"
	case Concatenation:
		return "concatenation"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Family is a coarse classification of domains used by operand rules. It is
// open: new domains may introduce new families.
type Family string

const (
	FamilyBoolean    Family = "boolean"
	FamilyNumeric    Family = "numeric"
	FamilyText       Family = "text"
	FamilyTemporal   Family = "temporal"
	FamilyIdentifier Family = "identifier"
)

// Domain describes a scalar SQL value domain: its native Go representation
// and the operands it accepts for each operator category.
type Domain interface {
	// Name identifies the domain in the catalog.
	Name() string
	Family() Family
	// NativeType is the Go type holding values of the domain.
	NativeType() reflect.Type
	// DefaultValue is the value reported for NULL under the trivial null
	// policy, as an any holding the native type.
	DefaultValue() any
	// Accepts reports whether other is a valid right hand operand for
	// operators of category c applied to this domain.
	Accepts(c Category, other Domain) bool
	// Result is the domain of the expression built from an operator of
	// category c with this domain on the left and other on the right. It is
	// nil if the combination is not accepted.
	Result(c Category, other Domain) Domain
	// Convert lifts a Go value of a compatible type into the native type.
	Convert(v any) (any, bool)
	// Encode returns the raw value handed to a Binder for v, which must hold
	// the native type.
	Encode(v any) (driver.Value, error)
	// Scan decodes src, a raw driver value or nil, into dest which must be a
	// pointer to the native type. A nil src stores the default value.
	Scan(dest any, src any) error
}

// Typed is a Domain whose native type is T.
type Typed[T any] interface {
	Domain
	Default() T
}

// Rule holds the operand predicate and result mapping for one category.
type Rule struct {
	Accepts func(self, other Domain) bool
	// Result defaults to ResultSelf when nil.
	Result func(self, other Domain) Domain
}

// Spec is the generic Domain implementation. Each built-in domain is a Spec
// instantiated with its native type, and new domains are built the same way.
type Spec[T any] struct {
	name    string
	family  Family
	def     T
	rank    int
	typ     reflect.Type
	rules   map[Category]Rule
	convert func(v any) (T, bool)
	encode  func(v T) (driver.Value, error)
	decode  func(src any) (T, bool, error)
}

// Option configures a Spec.
type Option[T any] func(*Spec[T])

// WithRule sets the operand rule for category c.
func WithRule[T any](c Category, r Rule) Option[T] {
	return func(s *Spec[T]) {
		s.rules[c] = r
	}
}

// WithRank sets the width of a numeric domain. The wider of two numeric
// operands determines the result domain of arithmetic, see ResultWidest.
func WithRank[T any](rank int) Option[T] {
	return func(s *Spec[T]) {
		s.rank = rank
	}
}

// WithConverter sets the function lifting foreign Go values into T. By
// default only values of type T are accepted.
func WithConverter[T any](f func(v any) (T, bool)) Option[T] {
	return func(s *Spec[T]) {
		s.convert = f
	}
}

// WithEncoder sets the raw value encoding of T. By default values go through
// driver.DefaultParameterConverter.
func WithEncoder[T any](f func(v T) (driver.Value, error)) Option[T] {
	return func(s *Spec[T]) {
		s.encode = f
	}
}

// WithDecoder sets the function decoding raw driver values. It returns false
// when src represents NULL.
func WithDecoder[T any](f func(src any) (T, bool, error)) Option[T] {
	return func(s *Spec[T]) {
		s.decode = f
	}
}

// New builds a domain with native type T and default value def.
func New[T any](name string, family Family, def T, opts ...Option[T]) *Spec[T] {
	s := &Spec[T]{
		name:   name,
		family: family,
		def:    def,
		typ:    reflect.TypeOf(&def).Elem(),
		rules:  map[Category]Rule{},
	}
	s.convert = func(v any) (T, bool) {
		t, ok := v.(T)
		return t, ok
	}
	s.encode = func(v T) (driver.Value, error) {
		return driver.DefaultParameterConverter.ConvertValue(v)
	}
	s.decode = func(src any) (T, bool, error) {
		if src == nil {
			return s.def, false, nil
		}
		t, ok := src.(T)
		if !ok {
			return s.def, false, fmt.Errorf("cannot scan %T into %s", src, s.name)
		}
		return t, true, nil
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Spec[T]) Name() string {
	return s.name
}

func (s *Spec[T]) Family() Family {
	return s.family
}

func (s *Spec[T]) NativeType() reflect.Type {
	return s.typ
}

func (s *Spec[T]) Default() T {
	return s.def
}

func (s *Spec[T]) DefaultValue() any {
	return s.def
}

// Rank is the numeric width set with WithRank.
func (s *Spec[T]) Rank() int {
	return s.rank
}

func (s *Spec[T]) Accepts(c Category, other Domain) bool {
	r, ok := s.rules[c]
	if !ok || other == nil || r.Accepts == nil {
		return false
	}
	return r.Accepts(s, other)
}

func (s *Spec[T]) Result(c Category, other Domain) Domain {
	if !s.Accepts(c, other) {
		return nil
	}
	r := s.rules[c]
	if r.Result == nil {
		return s
	}
	return r.Result(s, other)
}

func (s *Spec[T]) Convert(v any) (any, bool) {
	t, ok := s.convert(v)
	if !ok {
		return nil, false
	}
	return t, true
}

func (s *Spec[T]) Encode(v any) (driver.Value, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("cannot encode %T as %s", v, s.name)
	}
	return s.encode(t)
}

func (s *Spec[T]) Scan(dest any, src any) error {
	p, ok := dest.(*T)
	if !ok {
		return fmt.Errorf("cannot scan %s into %T", s.name, dest)
	}
	t, valid, err := s.decode(src)
	if err != nil {
		return err
	}
	if !valid {
		t = s.def
	}
	*p = t
	return nil
}

func (s *Spec[T]) String() string {
	return s.name
}

// SameDomain accepts operands of exactly the left hand domain.
func SameDomain(self, other Domain) bool {
	return other.Name() == self.Name()
}

// SameFamily accepts operands sharing the family of the left hand domain.
func SameFamily(self, other Domain) bool {
	return other.Family() == self.Family()
}

// Families returns a predicate accepting operands of any of the families.
func Families(fs ...Family) func(self, other Domain) bool {
	return func(_, other Domain) bool {
		for _, f := range fs {
			if other.Family() == f {
				return true
			}
		}
		return false
	}
}

// ResultSelf maps to the left hand domain.
func ResultSelf(self, _ Domain) Domain {
	return self
}

// ResultOf returns a mapping to the fixed domain d.
func ResultOf(d Domain) func(self, other Domain) Domain {
	return func(_, _ Domain) Domain {
		return d
	}
}

// ranked is implemented by domains with a numeric width.
type ranked interface {
	Rank() int
}

// ResultWidest maps to the wider of the two operands. The left operand wins
// ties and operands without a rank.
func ResultWidest(self, other Domain) Domain {
	rs, ok := self.(ranked)
	if !ok {
		return self
	}
	ro, ok := other.(ranked)
	if !ok {
		return self
	}
	if ro.Rank() > rs.Rank() {
		return other
	}
	return self
}
