// starparser: a tool for manipulating RELION STAR files.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/starparser/blob/master/LICENSE.txt>.

package filters

import (
	"fmt"
	"log"
	"sort"

	psort "github.com/exascience/pargo/sort"
	"github.com/willf/bitset"

	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
)

// A RowSorter sorts a permutation of row indices.
type RowSorter struct {
	order []int
	less  func(i, j int) bool
}

func (s RowSorter) SequentialSort(i, j int) {
	order, less := s.order[i:j], s.less
	sort.SliceStable(order, func(i, j int) bool {
		return less(order[i], order[j])
	})
}

func (s RowSorter) NewTemp() psort.StableSorter {
	return RowSorter{make([]int, len(s.order)), s.less}
}

func (s RowSorter) Len() int {
	return len(s.order)
}

func (s RowSorter) Less(i, j int) bool {
	return s.less(s.order[i], s.order[j])
}

func (s RowSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.order, p.(RowSorter).order
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// StableOrder returns the row indices 0..n-1 in the order given by
// less, keeping equal rows in their original order.
func StableOrder(n int, less func(i, j int) bool) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	psort.StableSort(RowSorter{order, less})
	return order
}

// SortBy sorts the rows of a table by a column, as text or as numbers.
func SortBy(t *star.Table, column string, numeric bool) (*star.Table, error) {
	if numeric {
		values, err := NumericColumn(t, column)
		if err != nil {
			return nil, fmt.Errorf("%w (sort without the numeric option to sort as text)", err)
		}
		return t.Select(StableOrder(len(values), func(i, j int) bool {
			return values[i] < values[j]
		})), nil
	}
	values := t.Column(column)
	if values == nil {
		return nil, missingColumn(column)
	}
	if len(values) > 0 {
		if _, ok := internal.ParseFloat(values[0]); ok {
			log.Printf("Warning: %v looks numeric, but is sorted as text; use the numeric option to sort it as numbers", column)
		}
	}
	return t.Select(StableOrder(len(values), func(i, j int) bool {
		return values[i] < values[j]
	})), nil
}

// A Comparison compares a value against a limit.
type Comparison string

// The supported comparisons.
const (
	LessThan       Comparison = "lt"
	GreaterThan    Comparison = "gt"
	LessOrEqual    Comparison = "le"
	GreaterOrEqual Comparison = "ge"
)

// ParseComparison checks that s names a supported comparison.
func ParseComparison(s string) (Comparison, error) {
	switch cmp := Comparison(s); cmp {
	case LessThan, GreaterThan, LessOrEqual, GreaterOrEqual:
		return cmp, nil
	default:
		return "", fmt.Errorf("unknown comparison %v; use one of lt, gt, le, ge", s)
	}
}

func (cmp Comparison) holds(x, limit float64) bool {
	switch cmp {
	case LessThan:
		return x < limit
	case GreaterThan:
		return x > limit
	case LessOrEqual:
		return x <= limit
	case GreaterOrEqual:
		return x >= limit
	default:
		return false
	}
}

// Limit keeps the rows whose numeric value in the column satisfies the
// comparison with limit.
func Limit(t *star.Table, column string, cmp Comparison, limit float64) (*star.Table, error) {
	values, err := NumericColumn(t, column)
	if err != nil {
		return nil, err
	}
	set := bitset.New(uint(len(values)))
	for i, x := range values {
		if cmp.holds(x, limit) {
			set.Set(uint(i))
		}
	}
	if set.None() {
		return nil, fmt.Errorf("no value of %v is %v %v: %w", column, cmp, limit, ErrEmptyResult)
	}
	return SelectSet(t, set), nil
}
