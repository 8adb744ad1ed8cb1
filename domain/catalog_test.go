// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package domain_test

import (
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	. "gopkg.in/check.v1"

	"github.com/canonical/sqlval/domain"
)

type CatalogSuite struct{}

var _ = Suite(&CatalogSuite{})

func (s *CatalogSuite) TestDefaultCatalog(c *C) {
	cat := domain.Default()
	c.Assert(cat, Equals, domain.Default())

	names := []string{}
	for _, d := range cat.Domains() {
		names = append(names, d.Name())
	}
	c.Check(names[:7], DeepEquals, []string{"boolean", "integral", "floating", "decimal", "text", "timestamp", "uuid"})

	d, ok := cat.Lookup("integral")
	c.Assert(ok, Equals, true)
	c.Check(d, Equals, domain.Integral)

	d, ok = cat.ForType(reflect.TypeOf(time.Time{}))
	c.Assert(ok, Equals, true)
	c.Check(d, Equals, domain.Timestamp)

	_, ok = cat.Lookup("money")
	c.Check(ok, Equals, false)
}

func (s *CatalogSuite) TestForValue(c *C) {
	type flag bool
	type name string
	var tests = []struct {
		summary   string
		value     any
		domain    domain.Domain
		converted any
	}{
		{"int64", int64(42), domain.Integral, int64(42)},
		{"int", 42, domain.Integral, int64(42)},
		{"int32", int32(-7), domain.Integral, int64(-7)},
		{"uint8", uint8(255), domain.Integral, int64(255)},
		{"max uint64 in range", uint64(math.MaxInt64), domain.Integral, int64(math.MaxInt64)},
		{"float32", float32(0.5), domain.Floating, float64(0.5)},
		{"bool", true, domain.Boolean, true},
		{"named bool", flag(true), domain.Boolean, true},
		{"string", "fred", domain.Text, "fred"},
		{"named string", name("fred"), domain.Text, "fred"},
	}
	for _, t := range tests {
		d, v, ok := domain.Default().ForValue(t.value)
		c.Assert(ok, Equals, true, Commentf("test %q", t.summary))
		c.Check(d, Equals, t.domain, Commentf("test %q", t.summary))
		c.Check(v, Equals, t.converted, Commentf("test %q", t.summary))
	}

	dec := decimal.NewFromInt(3)
	d, v, ok := domain.Default().ForValue(dec)
	c.Assert(ok, Equals, true)
	c.Check(d, Equals, domain.Decimal)
	c.Check(v.(decimal.Decimal).Equal(dec), Equals, true)
}

func (s *CatalogSuite) TestForValueUnknown(c *C) {
	var tests = []struct {
		summary string
		value   any
	}{
		{"nil", nil},
		{"overflowing uint64", uint64(math.MaxUint64)},
		{"slice", []int{1}},
		{"struct", struct{ A int }{1}},
	}
	for _, t := range tests {
		_, _, ok := domain.Default().ForValue(t.value)
		c.Check(ok, Equals, false, Commentf("test %q", t.summary))
	}
}

func (s *CatalogSuite) TestRegister(c *C) {
	type point struct{ X, Y float64 }
	geometry := domain.New[point]("point", "geometry", point{})

	cat := domain.NewCatalog()
	c.Assert(cat.Register(domain.Integral), IsNil)
	c.Assert(cat.Register(geometry), IsNil)

	d, v, ok := cat.ForValue(point{1, 2})
	c.Assert(ok, Equals, true)
	c.Check(d, Equals, geometry)
	c.Check(v, Equals, point{1, 2})

	// Booleans are unknown to this catalog.
	_, _, ok = cat.ForValue(true)
	c.Check(ok, Equals, false)

	err := cat.Register(domain.New[float32]("point", "geometry", 0))
	c.Assert(err, ErrorMatches, `domain "point" already registered`)

	err = cat.Register(domain.New[int64]("bigint", domain.FamilyNumeric, 0))
	c.Assert(err, ErrorMatches, `native type int64 already used by domain "integral"`)

	err = cat.Register(nil)
	c.Assert(err, ErrorMatches, `cannot register nil domain`)
}
