// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlval

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/canonical/sqlval/domain"
)

// Binder moves values between parameters and result fields and the storage
// of a backend. Calls are synchronous and may block.
type Binder interface {
	// BindParameter transmits the raw value of the parameter in slot.
	BindParameter(d domain.Domain, slot int, raw driver.Value, isNull bool) error
	// BindResult writes the value and null flag of column into value, a
	// pointer to the native type of d, and isNull.
	BindResult(d domain.Domain, column int, value any, isNull *bool) error
}

// ArgBinder is a Binder collecting parameters as positional database/sql
// query arguments.
type ArgBinder struct {
	args  []any
	bound []bool
}

// BindParameter stores raw, or nil for NULL, as argument number slot.
func (a *ArgBinder) BindParameter(d domain.Domain, slot int, raw driver.Value, isNull bool) error {
	if slot < 0 {
		return fmt.Errorf("invalid parameter slot %d", slot)
	}
	for len(a.args) <= slot {
		a.args = append(a.args, nil)
		a.bound = append(a.bound, false)
	}
	if isNull {
		raw = nil
	}
	a.args[slot] = raw
	a.bound[slot] = true
	return nil
}

// BindResult always fails, an ArgBinder has no result storage.
func (a *ArgBinder) BindResult(d domain.Domain, column int, _ any, _ *bool) error {
	return fmt.Errorf("cannot bind result column %d: no result set", column)
}

// Args returns the collected arguments. Every slot up to the highest bound
// one must have been bound.
func (a *ArgBinder) Args() ([]any, error) {
	for i, ok := range a.bound {
		if !ok {
			return nil, fmt.Errorf("parameter slot %d not bound", i)
		}
	}
	return a.args, nil
}

// RowBinder is a Binder registering result fields as scan destinations of
// database/sql rows. The registration is done once, every Scan then writes
// the current row into the fields. Columns without a field are discarded.
type RowBinder struct {
	targets []*resultTarget
	columns int
	checked bool
}

// BindParameter always fails, a RowBinder has no parameter storage.
func (r *RowBinder) BindParameter(d domain.Domain, slot int, _ driver.Value, _ bool) error {
	return fmt.Errorf("cannot bind parameter slot %d: no statement arguments", slot)
}

// BindResult registers value and isNull as the destination of column.
func (r *RowBinder) BindResult(d domain.Domain, column int, value any, isNull *bool) error {
	if column < 0 {
		return fmt.Errorf("invalid result column %d", column)
	}
	for len(r.targets) <= column {
		r.targets = append(r.targets, nil)
	}
	r.targets[column] = &resultTarget{domain: d, value: value, isNull: isNull}
	return nil
}

// Scan copies the current row of rows into the registered destinations.
func (r *RowBinder) Scan(rows *sql.Rows) error {
	if !r.checked {
		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		if len(r.targets) > len(cols) {
			return fmt.Errorf("result column %d bound but query returns %d columns", len(r.targets)-1, len(cols))
		}
		r.columns = len(cols)
		r.checked = true
	}
	ptrs := make([]any, r.columns)
	for i := range ptrs {
		if i < len(r.targets) && r.targets[i] != nil {
			ptrs[i] = r.targets[i]
		} else {
			var x any
			ptrs[i] = &x
		}
	}
	return rows.Scan(ptrs...)
}

// resultTarget is the sql.Scanner writing a column into result field
// storage.
type resultTarget struct {
	domain domain.Domain
	value  any
	isNull *bool
}

func (t *resultTarget) Scan(src any) error {
	*t.isNull = src == nil
	return t.domain.Scan(t.value, src)
}
