// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

/*
Package domain contains the catalog of scalar SQL value domains. A domain ties
a native Go type and a default value to the rules deciding which operands its
operators accept and which domain their results belong to.

Every domain, built-in or not, is a Spec built with New. Adding a domain never
requires editing an existing one:

	type Point struct{ X, Y float64 }

	var Geometry = domain.New[Point]("point", "geometry", Point{},
		domain.WithRule[Point](domain.Equality, domain.Rule{
			Accepts: domain.SameDomain,
			Result:  domain.ResultOf(domain.Boolean),
		}),
	)

	err := domain.Register(Geometry)

The default catalog is consulted when raw Go values are lifted into
expression constants.
*/
package domain
