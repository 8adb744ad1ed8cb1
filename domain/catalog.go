// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package domain

import (
	"fmt"
	"reflect"
	"sync"
)

// Catalog is a registry of domains indexed by name and by native type. It is
// safe for concurrent use.
type Catalog struct {
	mutex   sync.RWMutex
	domains []Domain
	byName  map[string]Domain
	byType  map[reflect.Type]Domain
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: map[string]Domain{},
		byType: map[reflect.Type]Domain{},
	}
}

var once sync.Once
var defaultCatalog *Catalog

// Default returns the process wide catalog. It holds the built-in domains and
// every domain added with Register.
func Default() *Catalog {
	once.Do(func() {
		c := NewCatalog()
		for _, d := range builtins() {
			if err := c.Register(d); err != nil {
				panic(fmt.Sprintf("internal error: %s", err))
			}
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Register adds d to the default catalog.
func Register(d Domain) error {
	return Default().Register(d)
}

// Register adds d to the catalog. Names and native types must be unique
// within a catalog.
func (c *Catalog) Register(d Domain) error {
	if d == nil {
		return fmt.Errorf("cannot register nil domain")
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, ok := c.byName[d.Name()]; ok {
		return fmt.Errorf("domain %q already registered", d.Name())
	}
	if other, ok := c.byType[d.NativeType()]; ok {
		return fmt.Errorf("native type %s already used by domain %q", d.NativeType(), other.Name())
	}
	c.domains = append(c.domains, d)
	c.byName[d.Name()] = d
	c.byType[d.NativeType()] = d
	return nil
}

// Lookup returns the domain registered under name.
func (c *Catalog) Lookup(name string) (Domain, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// ForType returns the domain whose native type is t.
func (c *Catalog) ForType(t reflect.Type) (Domain, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	d, ok := c.byType[t]
	return d, ok
}

// ForValue infers the domain of a Go value and returns the value converted to
// the native type of that domain. A domain with v's exact type as native type
// wins, otherwise the first registered domain able to convert v is used.
func (c *Catalog) ForValue(v any) (Domain, any, bool) {
	if v == nil {
		return nil, nil, false
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if d, ok := c.byType[reflect.TypeOf(v)]; ok {
		return d, v, true
	}
	for _, d := range c.domains {
		if nv, ok := d.Convert(v); ok {
			return d, nv, true
		}
	}
	return nil, nil, false
}

// Domains returns the registered domains in registration order.
func (c *Catalog) Domains() []Domain {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	ds := make([]Domain, len(c.domains))
	copy(ds, c.domains)
	return ds
}
