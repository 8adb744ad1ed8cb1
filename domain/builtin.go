// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package domain

import (
	"database/sql"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Numeric widths. Arithmetic over mixed numeric operands yields the domain of
// the wider one.
const (
	rankIntegral = 1 + iota
	rankDecimal
	rankFloating
)

// Boolean is the two state logical domain. Its operators only accept operands
// of the Boolean domain itself.
var Boolean = New[bool]("boolean", FamilyBoolean, false,
	WithRule[bool](Equality, Rule{Accepts: SameDomain}),
	WithRule[bool](Ordering, Rule{Accepts: SameDomain}),
	WithRule[bool](Logical, Rule{Accepts: SameDomain}),
	WithConverter(func(v any) (bool, bool) {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Bool {
			return false, false
		}
		return rv.Bool(), true
	}),
	WithDecoder(func(src any) (bool, bool, error) {
		var n sql.NullBool
		err := n.Scan(src)
		return n.Bool, n.Valid, err
	}),
)

// Integral holds 64 bit signed integers. It backs tinyint, smallint, integer
// and bigint columns alike.
var Integral = New[int64]("integral", FamilyNumeric, 0,
	append(numericRules[int64](rankIntegral),
		WithConverter(convertInt),
		WithDecoder(func(src any) (int64, bool, error) {
			var n sql.NullInt64
			err := n.Scan(src)
			return n.Int64, n.Valid, err
		}),
	)...,
)

// Floating holds double precision floating point numbers.
var Floating = New[float64]("floating", FamilyNumeric, 0,
	append(numericRules[float64](rankFloating),
		WithConverter(func(v any) (float64, bool) {
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Float32, reflect.Float64:
				return rv.Float(), true
			}
			return 0, false
		}),
		WithDecoder(func(src any) (float64, bool, error) {
			var n sql.NullFloat64
			err := n.Scan(src)
			return n.Float64, n.Valid, err
		}),
	)...,
)

// Decimal holds arbitrary precision decimal numbers.
var Decimal = New[decimal.Decimal]("decimal", FamilyNumeric, decimal.Decimal{},
	append(numericRules[decimal.Decimal](rankDecimal),
		WithDecoder(func(src any) (decimal.Decimal, bool, error) {
			var n decimal.NullDecimal
			err := n.Scan(src)
			return n.Decimal, n.Valid, err
		}),
	)...,
)

// Text holds character strings.
var Text = New[string]("text", FamilyText, "",
	WithRule[string](Equality, Rule{Accepts: SameFamily, Result: ResultOf(Boolean)}),
	WithRule[string](Ordering, Rule{Accepts: SameFamily, Result: ResultOf(Boolean)}),
	WithRule[string](Concatenation, Rule{Accepts: SameFamily}),
	WithConverter(func(v any) (string, bool) {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.String {
			return "", false
		}
		return rv.String(), true
	}),
	WithDecoder(func(src any) (string, bool, error) {
		var n sql.NullString
		err := n.Scan(src)
		return n.String, n.Valid, err
	}),
)

// Timestamp holds points in time.
var Timestamp = New[time.Time]("timestamp", FamilyTemporal, time.Time{},
	WithRule[time.Time](Equality, Rule{Accepts: SameFamily, Result: ResultOf(Boolean)}),
	WithRule[time.Time](Ordering, Rule{Accepts: SameFamily, Result: ResultOf(Boolean)}),
	WithDecoder(func(src any) (time.Time, bool, error) {
		var n sql.NullTime
		err := n.Scan(src)
		return n.Time, n.Valid, err
	}),
)

// UUID holds universally unique identifiers. They can only be compared for
// equality.
var UUID = New[uuid.UUID]("uuid", FamilyIdentifier, uuid.Nil,
	WithRule[uuid.UUID](Equality, Rule{Accepts: SameDomain, Result: ResultOf(Boolean)}),
	WithDecoder(func(src any) (uuid.UUID, bool, error) {
		var n uuid.NullUUID
		err := n.Scan(src)
		return n.UUID, n.Valid, err
	}),
)

// builtins lists the domains registered in the default catalog, in lookup
// order.
func builtins() []Domain {
	return []Domain{Boolean, Integral, Floating, Decimal, Text, Timestamp, UUID}
}

// numericRules returns the operand rules shared by numeric domains.
func numericRules[T any](rank int) []Option[T] {
	numeric := Families(FamilyNumeric)
	return []Option[T]{
		WithRank[T](rank),
		WithRule[T](Equality, Rule{Accepts: numeric, Result: ResultOf(Boolean)}),
		WithRule[T](Ordering, Rule{Accepts: numeric, Result: ResultOf(Boolean)}),
		WithRule[T](Arithmetic, Rule{Accepts: numeric, Result: ResultWidest}),
	}
}

// convertInt lifts any Go integer into an int64. Unsigned values that do not
// fit are rejected.
func convertInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}
