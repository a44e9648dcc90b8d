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

	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
	"github.com/exascience/starparser/utils"
)

// Regroup assigns group numbers in blocks of numPerGroup rows by
// ascending defocus. The last group absorbs the remainder. The rows
// keep their order, only the group columns change. It returns the new
// table and the number of groups.
func Regroup(t *star.Table, numPerGroup int) (*star.Table, int, error) {
	if numPerGroup < 1 {
		return nil, 0, fmt.Errorf("the number of particles per group must be positive, not %v", numPerGroup)
	}
	defocus, err := NumericColumn(t, star.DefocusU)
	if err != nil {
		return nil, 0, err
	}
	groups := len(defocus) / numPerGroup
	if groups == 0 {
		groups = 1
	}
	labels := make([]int, len(defocus))
	for rank, i := range StableOrder(len(defocus), func(i, j int) bool {
		return defocus[i] < defocus[j]
	}) {
		group := rank/numPerGroup + 1
		if group > groups {
			group = groups
		}
		labels[i] = group
	}
	numbers := make([]string, len(labels))
	for i, group := range labels {
		numbers[i] = internal.FormatInt(group)
	}
	result, err := t.WithColumn(star.GroupNumber, numbers)
	if err != nil {
		return nil, 0, err
	}
	if result.Has(star.GroupName) {
		names := make([]string, len(labels))
		for i, group := range labels {
			names[i] = fmt.Sprintf("group_%04d", group)
		}
		if result, err = result.WithColumn(star.GroupName, names); err != nil {
			return nil, 0, err
		}
	}
	return result, groups, nil
}

// SplitParts splits a table into n contiguous parts of nearly equal
// size. A part boundary never falls between two rows of the same
// micrograph: it is moved forward to the next micrograph, so parts
// can differ in size, and there can be fewer than n of them.
func SplitParts(t *star.Table, n int) ([]*star.Table, error) {
	rows := t.Len()
	if n < 2 || n > rows {
		return nil, fmt.Errorf("cannot split %v rows into %v parts", rows, n)
	}
	names := t.Column(star.MicrographName)
	if names == nil {
		return nil, missingColumn(star.MicrographName)
	}
	size := rows / n
	var parts []*star.Table
	start := 0
	for part := 1; part < n && start < rows; part++ {
		end := start + size
		if end > rows {
			end = rows
		}
		for end < rows && names[end] == names[end-1] {
			end++
		}
		parts = append(parts, t.Slice(start, end))
		start = end
	}
	if start < rows {
		parts = append(parts, t.Slice(start, rows))
	}
	return parts, nil
}

func sortNumerically(values []string, column string) error {
	numbers := make(map[string]float64, len(values))
	for i, value := range values {
		number, ok := internal.ParseFloat(value)
		if !ok {
			return &NonNumericError{Column: column, Row: i, Value: value}
		}
		numbers[value] = number
	}
	sort.SliceStable(values, func(i, j int) bool {
		return numbers[values[i]] < numbers[values[j]]
	})
	return nil
}

// A Part is one of the tables a Star is split into.
type Part struct {
	Key  string
	Star *star.Star
}

// SplitByClass splits a Star into one Star per class number, in
// ascending numeric order.
func SplitByClass(s *star.Star) ([]Part, error) {
	classes := s.Particles.Column(star.ClassNumber)
	if classes == nil {
		return nil, missingColumn(star.ClassNumber)
	}
	groups := utils.GroupPositions(classes)
	keys := make([]string, groups.Len())
	for i, key := range groups.Keys {
		keys[i] = *key
	}
	if err := sortNumerically(keys, star.ClassNumber); err != nil {
		return nil, err
	}
	parts := make([]Part, len(keys))
	for i, key := range keys {
		parts[i] = Part{
			Key:  key,
			Star: s.WithParticles(s.Particles.Select(groups.Members[utils.Intern(key)])),
		}
	}
	return parts, nil
}

// SplitByOptics splits a Star into one Star per optics group. The
// optics table of each part holds only the row of its group. Optics
// groups without particles are skipped. The key of each part is the
// optics group name.
func SplitByOptics(s *star.Star) ([]Part, error) {
	if s.Optics == nil {
		return nil, star.ErrNoOptics
	}
	ids := s.Optics.Column(star.OpticsGroup)
	if ids == nil {
		return nil, fmt.Errorf("optics table: %w", missingColumn(star.OpticsGroup))
	}
	names := s.Optics.Column(star.OpticsGroupName)
	if names == nil {
		return nil, fmt.Errorf("optics table: %w", missingColumn(star.OpticsGroupName))
	}
	assigned := s.Particles.Column(star.OpticsGroup)
	if assigned == nil {
		return nil, missingColumn(star.OpticsGroup)
	}
	groups := utils.GroupPositions(assigned)
	var parts []Part
	for i, id := range ids {
		members := groups.Members[utils.Intern(id)]
		if len(members) == 0 {
			log.Printf("Warning: optics group %v (%v) has no particles and is skipped", id, names[i])
			continue
		}
		part := s.WithParticles(s.Particles.Select(members))
		part.Optics = s.Optics.Select([]int{i})
		parts = append(parts, Part{Key: names[i], Star: part})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no particle belongs to any optics group: %w", ErrEmptyResult)
	}
	return parts, nil
}
