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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/starparser/star"
)

func TestRegroupScenario(t *testing.T) {
	particles := table([]string{star.DefocusU, star.GroupNumber},
		[]string{"1000", "1"},
		[]string{"2000", "1"},
		[]string{"3000", "1"},
		[]string{"4000", "1"},
	)
	result, groups, err := Regroup(particles, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, groups)
	assert.Equal(t, []string{"1000", "2000", "3000", "4000"}, result.Column(star.DefocusU))
	assert.Equal(t, []string{"1", "1", "2", "2"}, result.Column(star.GroupNumber))
	assert.Equal(t, particles.Columns, result.Columns)
}

func TestRegroupKeepsOrder(t *testing.T) {
	particles := table([]string{star.ImageName, star.DefocusU, star.GroupName},
		[]string{"a", "5000", "x"},
		[]string{"b", "1000", "x"},
		[]string{"c", "3000", "x"},
		[]string{"d", "2000", "x"},
		[]string{"e", "4000", "x"},
	)
	result, groups, err := Regroup(particles, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, groups)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, result.Column(star.ImageName))
	assert.Equal(t, []string{"2", "1", "2", "1", "2"}, result.Column(star.GroupNumber))
	assert.Equal(t, []string{"group_0002", "group_0001", "group_0002", "group_0001", "group_0002"}, result.Column(star.GroupName))
	assert.Equal(t, []string{star.ImageName, star.DefocusU, star.GroupName, star.GroupNumber}, result.Columns)

	result, groups, err = Regroup(particles, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, groups)
	assert.Equal(t, []string{"1", "1", "1", "1", "1"}, result.Column(star.GroupNumber))

	_, _, err = Regroup(particles, 0)
	assert.Error(t, err)
}

func TestSplitParts(t *testing.T) {
	particles := table([]string{star.MicrographName, star.ImageName},
		[]string{"m1", "1"},
		[]string{"m1", "2"},
		[]string{"m1", "3"},
		[]string{"m2", "4"},
		[]string{"m3", "5"},
		[]string{"m3", "6"},
		[]string{"m4", "7"},
	)
	parts, err := SplitParts(particles, 3)
	require.NoError(t, err)
	total := 0
	seen := make(map[string]int)
	for p, part := range parts {
		total += part.Len()
		for _, mic := range part.Column(star.MicrographName) {
			if previous, ok := seen[mic]; ok {
				assert.Equal(t, previous, p, mic)
			}
			seen[mic] = p
		}
	}
	assert.Equal(t, particles.Len(), total)
	require.Len(t, parts, 3)
	assert.Equal(t, 3, parts[0].Len())
	assert.Equal(t, []string{"m2", "m3", "m3"}, parts[1].Column(star.MicrographName))
	assert.Equal(t, []string{"m4"}, parts[2].Column(star.MicrographName))

	single := table([]string{star.MicrographName, star.ImageName},
		[]string{"m1", "1"}, []string{"m1", "2"}, []string{"m1", "3"})
	parts, err = SplitParts(single, 2)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = SplitParts(particles, 1)
	assert.Error(t, err)
	_, err = SplitParts(particles, 8)
	assert.Error(t, err)
}

func opticsStar() *star.Star {
	return &star.Star{
		Metadata: star.Metadata{
			Version: []string{"#", "version", "30001"},
			Optics: table([]string{star.OpticsGroupName, star.OpticsGroup, star.Voltage},
				[]string{"opticsGroup1", "1", "300"},
				[]string{"opticsGroup2", "2", "200"},
				[]string{"opticsGroup3", "3", "300"},
			),
			TableName: "data_particles",
		},
		Particles: table([]string{star.MicrographName, star.ClassNumber, star.OpticsGroup},
			[]string{"job/m1.mrc", "10", "1"},
			[]string{"job/m1.mrc", "2", "1"},
			[]string{"job/m2.mrc", "10", "2"},
			[]string{"job/m3.mrc", "1", "1"},
		),
	}
}

func TestSplitByClass(t *testing.T) {
	parts, err := SplitByClass(opticsStar())
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "1", parts[0].Key)
	assert.Equal(t, "2", parts[1].Key)
	assert.Equal(t, "10", parts[2].Key)
	assert.Equal(t, 2, parts[2].Star.Particles.Len())
	assert.Equal(t, 3, parts[2].Star.Optics.Len())
}

func TestSplitByOptics(t *testing.T) {
	s := opticsStar()
	parts, err := SplitByOptics(s)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "opticsGroup1", parts[0].Key)
	assert.Equal(t, 3, parts[0].Star.Particles.Len())
	assert.Equal(t, [][]string{{"opticsGroup1", "1", "300"}}, parts[0].Star.Optics.Rows)
	assert.Equal(t, "opticsGroup2", parts[1].Key)
	assert.Equal(t, [][]string{{"opticsGroup2", "2", "200"}}, parts[1].Star.Optics.Rows)
	assert.Equal(t, 3, s.Optics.Len())
}
