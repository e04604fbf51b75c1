package domain

import (
	"fmt"
	"math"
	"time"
)

// Table is a set of monthly indicator columns aligned on a shared date key.
// Rows are ordered by ascending date. Columns keep their insertion order.
// A table is never modified in place except by adding derived columns.
type Table struct {
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

// NewTable creates an empty table over the given dates
func NewTable(dates []time.Time) *Table {
	d := make([]time.Time, len(dates))
	for i, t := range dates {
		d[i] = MonthStart(t)
	}
	return &Table{
		dates:   d,
		names:   []string{},
		columns: make(map[string][]float64),
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.dates)
}

// Dates returns a copy of the row dates
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Columns returns the column names in insertion order
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// AddColumn appends a derived column. The name must be new and the length must match.
func (t *Table) AddColumn(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if _, exists := t.columns[name]; exists {
		return fmt.Errorf("column %s already exists", name)
	}
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.dates))
	}
	v := make([]float64, len(values))
	copy(v, values)
	t.names = append(t.names, name)
	t.columns[name] = v
	return nil
}

// Column returns a copy of the named column
func (t *Table) Column(name string) ([]float64, error) {
	v, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("column %s not found", name)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// Series projects one column as a series
func (t *Table) Series(name string) (*Series, error) {
	v, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	s := &Series{Name: name, Observations: make([]Observation, len(v))}
	for i := range v {
		s.Observations[i] = Observation{Date: t.dates[i], Value: v[i]}
	}
	return s, nil
}

// Filter returns the rows whose date is inside [start, end]
func (t *Table) Filter(start, end time.Time) *Table {
	keep := make([]int, 0, len(t.dates))
	for i, d := range t.dates {
		if d.Before(start) || d.After(end) {
			continue
		}
		keep = append(keep, i)
	}
	return t.rows(keep)
}

// Select returns a table with only the named columns
func (t *Table) Select(names ...string) (*Table, error) {
	out := NewTable(t.dates)
	for _, n := range names {
		v, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(n, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropMissing returns the rows where every named column has a value
func (t *Table) DropMissing(names ...string) (*Table, error) {
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, fmt.Errorf("column %s not found", n)
		}
	}
	keep := make([]int, 0, len(t.dates))
	for i := range t.dates {
		complete := true
		for _, n := range names {
			if math.IsNaN(t.columns[n][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return t.rows(keep), nil
}

func (t *Table) rows(idx []int) *Table {
	out := &Table{
		dates:   make([]time.Time, len(idx)),
		names:   append([]string{}, t.names...),
		columns: make(map[string][]float64, len(t.names)),
	}
	for j, i := range idx {
		out.dates[j] = t.dates[i]
	}
	for _, n := range t.names {
		src := t.columns[n]
		v := make([]float64, len(idx))
		for j, i := range idx {
			v[j] = src[i]
		}
		out.columns[n] = v
	}
	return out
}

// DateRange returns the first and last row dates. ok is false for an empty table.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	if len(t.dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.dates[0], t.dates[len(t.dates)-1], true
}

// InnerJoin joins tables on exact date equality. Only dates present in
// every operand survive. Duplicate column names are rejected.
func InnerJoin(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("inner join needs at least one table")
	}

	counts := make(map[time.Time]int)
	for _, t := range tables {
		seen := make(map[time.Time]bool, len(t.dates))
		for _, d := range t.dates {
			if seen[d] {
				return nil, fmt.Errorf("duplicate date %s in join operand", d.Format(DateLayout))
			}
			seen[d] = true
			counts[d]++
		}
	}

	base := tables[0]
	var dates []time.Time
	for _, d := range base.dates {
		if counts[d] == len(tables) {
			dates = append(dates, d)
		}
	}

	out := NewTable(dates)
	for _, t := range tables {
		index := make(map[time.Time]int, len(t.dates))
		for i, d := range t.dates {
			index[d] = i
		}
		for _, n := range t.names {
			v := make([]float64, len(dates))
			for j, d := range dates {
				v[j] = t.columns[n][index[d]]
			}
			if err := out.AddColumn(n, v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
