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
	"path"

	"github.com/willf/bitset"

	"github.com/exascience/starparser/star"
	"github.com/exascience/starparser/utils"
)

// MicrographKey normalizes a micrograph name for matching between
// files: only the base name counts, so files from different project
// directories can be compared.
func MicrographKey(name string) string {
	return path.Base(name)
}

func micrographKeys(t *star.Table) ([]string, error) {
	names := t.Column(star.MicrographName)
	if names == nil {
		return nil, missingColumn(star.MicrographName)
	}
	for i, name := range names {
		names[i] = MicrographKey(name)
	}
	return names, nil
}

func matchSet(t *star.Table, column string, set utils.StringSet, key func(string) string) (*bitset.BitSet, error) {
	return Match(t, column, func(value string) bool {
		return set.Contains(key(value))
	})
}

func identity(s string) string { return s }

// FindShared splits the rows of a by whether their value in the given
// column also occurs in b. It also returns the number of rows of b
// whose value does not occur in a.
func FindShared(a, b *star.Table, column string) (shared, unique *star.Table, uniqueInB int, err error) {
	if !a.Has(column) {
		return nil, nil, 0, missingColumn(column)
	}
	valuesB := b.Column(column)
	if valuesB == nil {
		return nil, nil, 0, fmt.Errorf("second file: %w", missingColumn(column))
	}
	set, err := matchSet(a, column, utils.NewStringSet(valuesB), identity)
	if err != nil {
		return nil, nil, 0, err
	}
	valuesA := utils.NewStringSet(a.Column(column))
	for _, value := range valuesB {
		if !valuesA.Contains(value) {
			uniqueInB++
		}
	}
	return SelectSet(a, set), SelectClear(a, set), uniqueInB, nil
}

// MatchMics keeps the rows of a whose micrograph also occurs in b.
func MatchMics(a, b *star.Table) (*star.Table, error) {
	if !a.Has(star.MicrographName) {
		return nil, missingColumn(star.MicrographName)
	}
	keysB, err := micrographKeys(b)
	if err != nil {
		return nil, fmt.Errorf("second file: %w", err)
	}
	set, err := matchSet(a, star.MicrographName, utils.NewStringSet(keysB), MicrographKey)
	if err != nil {
		return nil, err
	}
	return SelectSet(a, set), nil
}

func micrographQuery(t *star.Table, mics []string) (*bitset.BitSet, error) {
	if len(mics) == 0 {
		return nil, fmt.Errorf("empty micrograph list: %w", ErrNoQuery)
	}
	return query(t, star.MicrographName, mics, RunContext{})
}

// RemoveMics removes the rows whose micrograph name contains any of
// the given names.
func RemoveMics(t *star.Table, mics []string) (*star.Table, error) {
	set, err := micrographQuery(t, mics)
	if err != nil {
		return nil, err
	}
	return SelectClear(t, set), nil
}

// KeepMics keeps the rows whose micrograph name contains any of the
// given names.
func KeepMics(t *star.Table, mics []string) (*star.Table, error) {
	set, err := micrographQuery(t, mics)
	if err != nil {
		return nil, err
	}
	return SelectSet(t, set), nil
}

// RemoveDuplicates keeps only the first row for each value of the
// given column, and returns the number of rows removed.
func RemoveDuplicates(t *star.Table, column string) (*star.Table, int, error) {
	values := t.Column(column)
	if values == nil {
		return nil, 0, missingColumn(column)
	}
	seen := make(utils.StringSet)
	set := bitset.New(uint(len(values)))
	for i, value := range values {
		if seen.Add(value) {
			set.Set(uint(i))
		}
	}
	return SelectSet(t, set), len(values) - int(set.Count()), nil
}

// ExtractWithMin keeps the rows of micrographs that have more than
// minimum rows, and returns the number of micrographs dropped.
func ExtractWithMin(t *star.Table, minimum int) (*star.Table, int, error) {
	names := t.Column(star.MicrographName)
	if names == nil {
		return nil, 0, missingColumn(star.MicrographName)
	}
	groups := utils.GroupPositions(names)
	set := bitset.New(uint(len(names)))
	dropped := 0
	for _, key := range groups.Keys {
		members := groups.Members[key]
		if len(members) <= minimum {
			dropped++
			continue
		}
		for _, i := range members {
			set.Set(uint(i))
		}
	}
	switch {
	case set.Count() == 0:
		return nil, dropped, fmt.Errorf("no micrograph has more than %v particles: %w", minimum, ErrNoneRetained)
	case dropped == 0:
		return nil, dropped, fmt.Errorf("every micrograph has more than %v particles: %w", minimum, ErrAllRetained)
	}
	return SelectSet(t, set), dropped, nil
}

func requireColumns(t *star.Table, columns []string, which string) error {
	for _, column := range columns {
		if !t.Has(column) {
			if which == "" {
				return missingColumn(column)
			}
			return fmt.Errorf("%v: %w", which, missingColumn(column))
		}
	}
	return nil
}

// importValues overwrites the given columns of a with values from the
// first row of b that has the same key. Rows of a without a matching
// key keep their values and are counted as unmatched.
func importValues(a, b *star.Table, keysA, keysB []string, columns []string) (*star.Table, int, error) {
	if err := requireColumns(a, columns, ""); err != nil {
		return nil, 0, err
	}
	if err := requireColumns(b, columns, "second file"); err != nil {
		return nil, 0, err
	}
	source := make(map[string]int, len(keysB))
	for i, key := range keysB {
		if _, ok := source[key]; !ok {
			source[key] = i
		}
	}
	unmatched := 0
	for _, key := range keysA {
		if _, ok := source[key]; !ok {
			unmatched++
		}
	}
	if unmatched == len(keysA) {
		return nil, unmatched, fmt.Errorf("no rows could be matched with the second file: %w", ErrNoneRetained)
	}
	result := a
	for _, column := range columns {
		values := a.Column(column)
		from := b.Index(column)
		for i, key := range keysA {
			if j, ok := source[key]; ok {
				values[i] = b.Rows[j][from]
			}
		}
		var err error
		if result, err = result.WithColumn(column, values); err != nil {
			return nil, 0, err
		}
	}
	return result, unmatched, nil
}

// ImportMicValues copies per-micrograph values of the given columns
// from b into a, matching micrographs by base name.
func ImportMicValues(a, b *star.Table, columns []string) (*star.Table, int, error) {
	keysA, err := micrographKeys(a)
	if err != nil {
		return nil, 0, err
	}
	keysB, err := micrographKeys(b)
	if err != nil {
		return nil, 0, fmt.Errorf("second file: %w", err)
	}
	return importValues(a, b, keysA, keysB, columns)
}

// ImportParticleValues copies values of the given columns from b into
// a, matching particles by image name.
func ImportParticleValues(a, b *star.Table, columns []string) (*star.Table, int, error) {
	keysA := a.Column(star.ImageName)
	if keysA == nil {
		return nil, 0, missingColumn(star.ImageName)
	}
	keysB := b.Column(star.ImageName)
	if keysB == nil {
		return nil, 0, fmt.Errorf("second file: %w", missingColumn(star.ImageName))
	}
	return importValues(a, b, keysA, keysB, columns)
}

// SwapColumns replaces the given columns of a with those of b, row by
// row. Both tables must have the same number of rows.
func SwapColumns(a, b *star.Table, columns []string) (*star.Table, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("%v rows versus %v rows in the second file: %w", a.Len(), b.Len(), ErrRowCountMismatch)
	}
	if err := requireColumns(a, columns, ""); err != nil {
		return nil, err
	}
	if err := requireColumns(b, columns, "second file"); err != nil {
		return nil, err
	}
	result := a
	for _, column := range columns {
		var err error
		if result, err = result.WithColumn(column, b.Column(column)); err != nil {
			return nil, err
		}
	}
	return result, nil
}
