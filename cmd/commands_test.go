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

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/starparser/filters"
)

func TestCommandNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, command := range Commands {
		assert.False(t, seen[command.Name], command.Name)
		seen[command.Name] = true
		assert.NotEmpty(t, command.Help, command.Name)
		assert.NotNil(t, command.Run, command.Name)
	}
	assert.Len(t, seen, 40)
}

func TestLookup(t *testing.T) {
	command, ok := Lookup("regroup")
	require.True(t, ok)
	assert.Equal(t, RegroupHelp, command.Help)

	_, ok = Lookup("filter")
	assert.False(t, ok)
}

func TestPrintHelp(t *testing.T) {
	var short, extended bytes.Buffer
	PrintHelp(&short, false)
	PrintHelp(&extended, true)
	assert.Contains(t, short.String(), "expand-optics")
	assert.NotContains(t, short.String(), SortByHelp)
	assert.Contains(t, extended.String(), SortByHelp)
}

func TestDerivedName(t *testing.T) {
	s := &session{output: "out/particles.star"}
	assert.Equal(t, "out/particles_far.star", s.derivedName("_far"))

	s.output = "particles.star.gz"
	assert.Equal(t, "particles_split2.star.gz", s.derivedName("_split2"))
}

func TestContext(t *testing.T) {
	s := &session{exact: true, opticsless: true}
	assert.Equal(t, filters.RunContext{Exact: true, Relegate: true, Opticsless: true}, s.context())

	s = &session{relegate: true}
	assert.Equal(t, filters.RunContext{Relegate: true}, s.context())
}

func TestSessionLists(t *testing.T) {
	s := &session{columns: "CoordinateX/_rlnCoordinateY", queries: "a,b/c"}
	columns, err := s.columnList()
	require.NoError(t, err)
	assert.Equal(t, []string{"_rlnCoordinateX", "_rlnCoordinateY"}, columns)

	_, err = s.column()
	assert.ErrorIs(t, err, filters.ErrMultipleColumns)

	queries, err := s.queryList()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "c"}, queries)

	_, err = (&session{}).queryList()
	assert.Error(t, err)
	_, err = (&session{}).secondFile()
	assert.Error(t, err)
}
