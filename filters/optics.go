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

	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
	"github.com/exascience/starparser/utils"
)

// Relegate prepares a Star for writing without optics table, for
// RELION 3.0 and older: the optics group column is dropped from the
// data table, and the version is set accordingly.
func Relegate(s *star.Star) (*star.Star, error) {
	particles := s.Particles
	if particles.Has(star.OpticsGroup) {
		var err error
		if particles, err = particles.DropColumns(star.OpticsGroup); err != nil {
			return nil, err
		}
	}
	result := s.WithParticles(particles)
	result.Optics = nil
	result.Version = append([]string(nil), star.RelegatedVersion...)
	return result, nil
}

func opticsIDs(s *star.Star) ([]string, error) {
	if s.Optics == nil {
		return nil, star.ErrNoOptics
	}
	ids := s.Optics.Column(star.OpticsGroup)
	if ids == nil {
		return nil, fmt.Errorf("optics table: %w", missingColumn(star.OpticsGroup))
	}
	return ids, nil
}

func nextOpticsID(ids []string) (int, error) {
	next := 1
	for i, id := range ids {
		n, ok := internal.ParseFloat(id)
		if !ok {
			return 0, &NonNumericError{Column: star.OpticsGroup, Row: i, Value: id}
		}
		if int(n) >= next {
			next = int(n) + 1
		}
	}
	return next, nil
}

// appendOpticsRow returns the optics table with a copy of template
// appended under the given group number and name. An empty name
// becomes opticsGroup<id>.
func appendOpticsRow(optics *star.Table, template []string, id int, name string) *star.Table {
	if name == "" {
		name = "opticsGroup" + internal.FormatInt(id)
	}
	row := append([]string(nil), template...)
	row[optics.Index(star.OpticsGroup)] = internal.FormatInt(id)
	if index := optics.Index(star.OpticsGroupName); index >= 0 {
		row[index] = name
	}
	result := optics.Clone()
	result.Rows = append(result.Rows, row)
	return result
}

// NewOpticsGroup adds an optics group named name, a copy of the last
// optics group with the next free group number, and moves the
// particles that match the query into it. It returns the new Star and
// the number of particles moved.
func NewOpticsGroup(s *star.Star, name, column string, queries []string, ctx RunContext) (*star.Star, int, error) {
	ids, err := opticsIDs(s)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, fmt.Errorf("the optics table is empty: %w", star.ErrNoOptics)
	}
	for _, existing := range s.Optics.Column(star.OpticsGroupName) {
		if existing == name {
			return nil, 0, fmt.Errorf("the optics group %v already exists", name)
		}
	}
	if !s.Particles.Has(star.OpticsGroup) {
		return nil, 0, missingColumn(star.OpticsGroup)
	}
	set, err := query(s.Particles, column, queries, ctx)
	if err != nil {
		return nil, 0, err
	}
	if set.None() {
		return nil, 0, fmt.Errorf("no particle matches %v in %v: %w", queries, column, ErrEmptyResult)
	}
	id, err := nextOpticsID(ids)
	if err != nil {
		return nil, 0, err
	}
	assigned := s.Particles.Column(star.OpticsGroup)
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		assigned[i] = internal.FormatInt(id)
	}
	particles, err := s.Particles.WithColumn(star.OpticsGroup, assigned)
	if err != nil {
		return nil, 0, err
	}
	result := s.WithParticles(particles)
	result.Optics = appendOpticsRow(s.Optics, s.Optics.Rows[len(ids)-1], id, name)
	return result, int(set.Count()), nil
}

// SwapOptics replaces the optics table of s with that of other. It
// returns the optics groups that the data table uses but the new
// optics table lacks.
func SwapOptics(s, other *star.Star) (*star.Star, []string, error) {
	if other.Optics == nil {
		return nil, nil, fmt.Errorf("second file: %w", star.ErrNoOptics)
	}
	result := s.WithOptics(other.Optics.Clone())
	return result, result.DanglingOpticsGroups(), nil
}

// InsertOpticsColumn adds a column with the same value for every
// optics group.
func InsertOpticsColumn(s *star.Star, column, value string) (*star.Star, error) {
	if s.Optics == nil {
		return nil, star.ErrNoOptics
	}
	if s.Optics.Has(column) {
		return nil, fmt.Errorf("optics table: %w", existingColumn(column))
	}
	values := make([]string, s.Optics.Len())
	for i := range values {
		values[i] = value
	}
	optics, err := s.Optics.WithColumn(column, values)
	if err != nil {
		return nil, err
	}
	return s.WithOptics(optics), nil
}

// ExtractOptics keeps the optics groups whose value in the given optics
// column matches the query, together with their particles.
func ExtractOptics(s *star.Star, column string, queries []string, ctx RunContext) (*star.Star, error) {
	ids, err := opticsIDs(s)
	if err != nil {
		return nil, err
	}
	set, err := query(s.Optics, column, queries, ctx)
	if err != nil {
		return nil, fmt.Errorf("optics table: %w", err)
	}
	if set.None() {
		return nil, fmt.Errorf("no optics group matches %v in %v: %w", queries, column, ErrEmptyResult)
	}
	keep := make(utils.StringSet)
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		keep.Add(ids[i])
	}
	particles, err := Match(s.Particles, star.OpticsGroup, keep.Contains)
	if err != nil {
		return nil, err
	}
	if particles.None() {
		return nil, fmt.Errorf("the selected optics groups have no particles: %w", ErrEmptyResult)
	}
	result := s.WithParticles(SelectSet(s.Particles, particles))
	result.Optics = SelectSet(s.Optics, set)
	return result, nil
}

// ExpandOptics splits the optics group with the given number into the
// optics groups that other assigns to the same micrographs. The optics
// rows of other are appended under new group numbers, in the order of
// the optics table of other. Particles of the group whose micrograph
// other does not have stay in the original group, which is removed if
// it ends up empty. It returns the new Star and the number of
// particles that were reassigned.
func ExpandOptics(s, other *star.Star, group string) (*star.Star, int, error) {
	ids, err := opticsIDs(s)
	if err != nil {
		return nil, 0, err
	}
	source := -1
	for i, id := range ids {
		if id == group {
			source = i
			break
		}
	}
	if source < 0 {
		return nil, 0, fmt.Errorf("there is no optics group %v", group)
	}
	otherIDs, err := opticsIDs(other)
	if err != nil {
		return nil, 0, fmt.Errorf("second file: %w", err)
	}
	micsOther, err := micrographKeys(other.Particles)
	if err != nil {
		return nil, 0, fmt.Errorf("second file: %w", err)
	}
	groupsOther := other.Particles.Column(star.OpticsGroup)
	if groupsOther == nil {
		return nil, 0, fmt.Errorf("second file: %w", missingColumn(star.OpticsGroup))
	}
	micGroup := make(map[string]string, len(micsOther))
	for i, mic := range micsOther {
		if _, ok := micGroup[mic]; !ok {
			micGroup[mic] = groupsOther[i]
		}
	}
	mics, err := micrographKeys(s.Particles)
	if err != nil {
		return nil, 0, err
	}
	assigned := s.Particles.Column(star.OpticsGroup)
	if assigned == nil {
		return nil, 0, missingColumn(star.OpticsGroup)
	}

	used := make(utils.StringSet)
	for i, id := range assigned {
		if id != group {
			continue
		}
		if otherGroup, ok := micGroup[mics[i]]; ok {
			used.Add(otherGroup)
		}
	}
	if len(used) == 0 {
		return nil, 0, fmt.Errorf("no micrograph of optics group %v occurs in the second file: %w", group, ErrEmptyResult)
	}

	next, err := nextOpticsID(ids)
	if err != nil {
		return nil, 0, err
	}
	optics := s.Optics
	renumber := make(map[string]string, len(used))
	for i, otherID := range otherIDs {
		if !used.Contains(otherID) {
			continue
		}
		name := ""
		if index := other.Optics.Index(star.OpticsGroupName); index >= 0 {
			name = other.Optics.Rows[i][index]
		}
		template := s.Optics.Rows[source]
		if sameColumns(s.Optics, other.Optics) {
			template = other.Optics.Rows[i]
		}
		optics = appendOpticsRow(optics, template, next, name)
		renumber[otherID] = internal.FormatInt(next)
		next++
	}

	moved, remaining := 0, 0
	for i, id := range assigned {
		if id != group {
			continue
		}
		if newID, ok := renumber[micGroup[mics[i]]]; ok {
			assigned[i] = newID
			moved++
		} else {
			remaining++
		}
	}
	particles, err := s.Particles.WithColumn(star.OpticsGroup, assigned)
	if err != nil {
		return nil, 0, err
	}
	if remaining == 0 {
		keep := make([]int, 0, optics.Len()-1)
		for i := 0; i < optics.Len(); i++ {
			if i != source {
				keep = append(keep, i)
			}
		}
		optics = optics.Select(keep)
	}
	result := s.WithParticles(particles)
	result.Optics = optics
	return result, moved, nil
}

func sameColumns(a, b *star.Table) bool {
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i, column := range a.Columns {
		if b.Columns[i] != column {
			return false
		}
	}
	return true
}
