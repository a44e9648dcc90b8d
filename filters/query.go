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
	"strings"

	"github.com/grafana/regexp"
	"github.com/willf/bitset"

	"github.com/exascience/starparser/star"
)

// RunContext carries the per-run settings that operators need. It is
// built once from the command line and passed explicitly.
type RunContext struct {
	// Exact selects string equality instead of substring matching.
	Exact bool

	// Relegate writes output without the optics table.
	Relegate bool

	// Opticsless means the input had no optics table of its own.
	Opticsless bool
}

// A Predicate decides whether a cell value matches a query.
type Predicate func(value string) bool

// ListSeparator separates the terms of a list on the command line. A
// ListEscape inside a term stands for a literal separator.
const (
	ListSeparator = "/"
	ListEscape    = ","
)

// ParseList splits a command-line list into its terms.
func ParseList(s string) []string {
	if s == "" {
		return nil
	}
	terms := strings.Split(s, ListSeparator)
	for i, term := range terms {
		terms[i] = strings.ReplaceAll(term, ListEscape, ListSeparator)
	}
	return terms
}

// SingleColumn returns the only column in the list.
func SingleColumn(columns []string) (string, error) {
	switch len(columns) {
	case 0:
		return "", fmt.Errorf("no column given")
	case 1:
		return columns[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrMultipleColumns, strings.Join(columns, ", "))
	}
}

// Columns whose values are small integer identifiers, for which
// substring matching is almost never what the user wants.
var categoricalColumns = map[string]bool{
	star.ClassNumber:    true,
	star.GroupNumber:    true,
	star.NrOfSigSamples: true,
	star.OpticsGroup:    true,
	star.HelicalTubeID:  true,
}

// ResolvePredicate builds the predicate for a query on a column.
//
// In exact mode a value matches when it equals one of the queries. In
// substring mode it matches when it contains one of them.
func ResolvePredicate(column string, queries []string, exact bool) (Predicate, error) {
	if len(queries) == 0 {
		return nil, ErrNoQuery
	}
	if exact {
		set := make(map[string]bool, len(queries))
		for _, q := range queries {
			set[q] = true
		}
		return func(value string) bool { return set[value] }, nil
	}
	if categoricalColumns[column] {
		log.Printf("Warning: %v holds categorical identifiers; substring matching %v may also match longer numbers (consider --e)", column, strings.Join(queries, ", "))
	}
	quoted := make([]string, len(queries))
	for i, q := range queries {
		quoted[i] = regexp.QuoteMeta(q)
	}
	pattern, err := regexp.Compile(strings.Join(quoted, "|"))
	if err != nil {
		return nil, err
	}
	return pattern.MatchString, nil
}

// Match returns the set of rows whose value in the given column
// satisfies the predicate.
func Match(t *star.Table, column string, pred Predicate) (*bitset.BitSet, error) {
	index := t.Index(column)
	if index < 0 {
		return nil, missingColumn(column)
	}
	set := bitset.New(uint(t.Len()))
	for i, row := range t.Rows {
		if pred(row[index]) {
			set.Set(uint(i))
		}
	}
	return set, nil
}

// SelectSet returns the rows that are in the set, in table order.
func SelectSet(t *star.Table, set *bitset.BitSet) *star.Table {
	indices := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		indices = append(indices, int(i))
	}
	return t.Select(indices)
}

// SelectClear returns the rows that are not in the set, in table
// order.
func SelectClear(t *star.Table, set *bitset.BitSet) *star.Table {
	indices := make([]int, 0, t.Len()-int(set.Count()))
	for i := 0; i < t.Len(); i++ {
		if !set.Test(uint(i)) {
			indices = append(indices, i)
		}
	}
	return t.Select(indices)
}

func query(t *star.Table, column string, queries []string, ctx RunContext) (*bitset.BitSet, error) {
	if !t.Has(column) {
		return nil, missingColumn(column)
	}
	pred, err := ResolvePredicate(column, queries, ctx.Exact)
	if err != nil {
		return nil, err
	}
	return Match(t, column, pred)
}

// Extract returns the rows that match the query.
func Extract(t *star.Table, column string, queries []string, ctx RunContext) (*star.Table, error) {
	set, err := query(t, column, queries, ctx)
	if err != nil {
		return nil, err
	}
	return SelectSet(t, set), nil
}

// Remove returns the rows that do not match the query.
func Remove(t *star.Table, column string, queries []string, ctx RunContext) (*star.Table, error) {
	set, err := query(t, column, queries, ctx)
	if err != nil {
		return nil, err
	}
	return SelectClear(t, set), nil
}

// Count returns the number of rows that match the query.
func Count(t *star.Table, column string, queries []string, ctx RunContext) (int, error) {
	set, err := query(t, column, queries, ctx)
	if err != nil {
		return 0, err
	}
	return int(set.Count()), nil
}
