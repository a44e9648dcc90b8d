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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/starparser/star"
)

func numberedTable(n int) *star.Table {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i + 1)}
	}
	return star.NewTable([]string{star.ImageName}, rows)
}

func TestExtractRandom(t *testing.T) {
	particles := numberedTable(100)
	first, err := ExtractRandom(particles, 10, 42)
	require.NoError(t, err)
	second, err := ExtractRandom(particles, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 10, first.Len())

	previous := 0
	for _, value := range first.Column(star.ImageName) {
		n, err := strconv.Atoi(value)
		require.NoError(t, err)
		assert.Greater(t, n, previous)
		previous = n
	}

	_, err = ExtractRandom(particles, 0, 42)
	assert.Error(t, err)
	_, err = ExtractRandom(particles, 101, 42)
	assert.Error(t, err)
}

func TestExtractIndices(t *testing.T) {
	particles := numberedTable(5)
	result, err := ExtractIndices(particles, []string{"5", "1", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "1", "3"}, result.Column(star.ImageName))

	_, err = ExtractIndices(particles, []string{"0"})
	assert.Error(t, err)
	_, err = ExtractIndices(particles, []string{"6"})
	assert.Error(t, err)
	_, err = ExtractIndices(particles, []string{"x"})
	assert.Error(t, err)
}

func TestCountMics(t *testing.T) {
	count, err := CountMics(opticsStar().Particles)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = CountMics(numberedTable(1))
	assert.Error(t, err)
}

func TestClassProportion(t *testing.T) {
	s := opticsStar()
	shares, err := ClassProportion(s.Particles, star.OpticsGroup, []string{"1", "2"}, RunContext{Exact: true})
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.Equal(t, ClassShare{Class: "1", Total: 1, Matches: []int{1, 0}}, shares[0])
	assert.Equal(t, ClassShare{Class: "2", Total: 1, Matches: []int{1, 0}}, shares[1])
	assert.Equal(t, ClassShare{Class: "10", Total: 2, Matches: []int{1, 1}}, shares[2])

	_, err = ClassProportion(s.Particles, star.OpticsGroup, []string{"1"}, RunContext{Exact: true})
	assert.Error(t, err)
}
