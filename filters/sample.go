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
	"math/rand"
	"sort"
	"strconv"

	"github.com/exascience/starparser/star"
	"github.com/exascience/starparser/utils"
)

// ExtractRandom picks n different rows at random. The rows keep their
// order. The same seed always picks the same rows.
func ExtractRandom(t *star.Table, n int, seed int64) (*star.Table, error) {
	if n <= 0 || n > t.Len() {
		return nil, fmt.Errorf("cannot pick %v random rows out of %v", n, t.Len())
	}
	indices := rand.New(rand.NewSource(seed)).Perm(t.Len())[:n]
	sort.Ints(indices)
	return t.Select(indices), nil
}

// ExtractIndices picks rows by 1-based index, in the order given.
func ExtractIndices(t *star.Table, indices []string) (*star.Table, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("no indices given: %w", ErrEmptyResult)
	}
	rows := make([]int, len(indices))
	for i, s := range indices {
		index, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("index %v is not an integer", s)
		}
		if index < 1 || index > t.Len() {
			return nil, fmt.Errorf("index %v is out of range 1..%v", index, t.Len())
		}
		rows[i] = index - 1
	}
	return t.Select(rows), nil
}

// CountMics returns the number of distinct micrographs.
func CountMics(t *star.Table) (int, error) {
	names := t.Column(star.MicrographName)
	if names == nil {
		return 0, missingColumn(star.MicrographName)
	}
	return len(utils.NewStringSet(names)), nil
}

// ClassShare counts, for one class, the rows that match each query.
type ClassShare struct {
	Class   string
	Total   int
	Matches []int
}

// ClassProportion counts per class how many rows match each of the
// queries on the given column. Classes are in ascending numeric order.
func ClassProportion(t *star.Table, column string, queries []string, ctx RunContext) ([]ClassShare, error) {
	if len(queries) < 2 {
		return nil, fmt.Errorf("at least two queries are needed to compare proportions")
	}
	classes := t.Column(star.ClassNumber)
	if classes == nil {
		return nil, missingColumn(star.ClassNumber)
	}
	if !t.Has(column) {
		return nil, missingColumn(column)
	}
	groups := utils.GroupPositions(classes)
	keys := make([]string, groups.Len())
	for i, key := range groups.Keys {
		keys[i] = *key
	}
	if err := sortNumerically(keys, star.ClassNumber); err != nil {
		return nil, err
	}
	shares := make([]ClassShare, len(keys))
	for i, key := range keys {
		members := groups.Members[utils.Intern(key)]
		shares[i] = ClassShare{Class: key, Total: len(members), Matches: make([]int, len(queries))}
	}
	for q, term := range queries {
		set, err := query(t, column, []string{term}, ctx)
		if err != nil {
			return nil, err
		}
		for i, key := range keys {
			for _, row := range groups.Members[utils.Intern(key)] {
				if set.Test(uint(row)) {
					shares[i].Matches[q]++
				}
			}
		}
	}
	return shares, nil
}
