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

var coordinateColumns = []string{star.MicrographName, star.CoordinateX, star.CoordinateY, star.ImageName}

func TestFindShared(t *testing.T) {
	a := table([]string{star.ImageName}, []string{"1"}, []string{"2"}, []string{"3"})
	b := table([]string{star.ImageName}, []string{"2"}, []string{"4"}, []string{"5"})
	shared, unique, uniqueInB, err := FindShared(a, b, star.ImageName)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, shared.Column(star.ImageName))
	assert.Equal(t, []string{"1", "3"}, unique.Column(star.ImageName))
	assert.Equal(t, a.Len(), shared.Len()+unique.Len())
	assert.Equal(t, 2, uniqueInB)

	_, _, _, err = FindShared(a, table([]string{star.MicrographName}), star.ImageName)
	assert.Error(t, err)
}

func TestMatchAndKeepMics(t *testing.T) {
	a := table([]string{star.MicrographName},
		[]string{"MotionCorr/job1/mic1.mrc"},
		[]string{"MotionCorr/job1/mic2.mrc"},
		[]string{"MotionCorr/job1/mic3.mrc"},
	)
	b := table([]string{star.MicrographName}, []string{"Other/mic2.mrc"})
	matched, err := MatchMics(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"MotionCorr/job1/mic2.mrc"}, matched.Column(star.MicrographName))

	kept, err := KeepMics(a, []string{"mic1", "mic3"})
	require.NoError(t, err)
	removed, err := RemoveMics(a, []string{"mic1", "mic3"})
	require.NoError(t, err)
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, []string{"MotionCorr/job1/mic2.mrc"}, removed.Column(star.MicrographName))

	_, err = RemoveMics(a, nil)
	assert.ErrorIs(t, err, ErrNoQuery)
}

func TestRemoveDuplicates(t *testing.T) {
	a := table([]string{star.ImageName, star.ClassNumber},
		[]string{"x", "1"}, []string{"y", "2"}, []string{"x", "3"})
	result, removed, err := RemoveDuplicates(a, star.ImageName)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"1", "2"}, result.Column(star.ClassNumber))
}

func TestExtractWithMin(t *testing.T) {
	a := table([]string{star.MicrographName},
		[]string{"m1"}, []string{"m1"}, []string{"m1"}, []string{"m2"}, []string{"m3"}, []string{"m3"})
	result, dropped, err := ExtractWithMin(a, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"m1", "m1", "m1", "m3", "m3"}, result.Column(star.MicrographName))

	_, _, err = ExtractWithMin(a, 3)
	assert.ErrorIs(t, err, ErrNoneRetained)
	_, _, err = ExtractWithMin(a, 0)
	assert.ErrorIs(t, err, ErrAllRetained)
}

func TestFindNearbyFar(t *testing.T) {
	core := table(coordinateColumns, []string{"mic1", "0", "0", "a"})
	near := table(coordinateColumns, []string{"mic1", "3", "4", "b"})
	result, err := FindNearby(core, near, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Close.Len())
	assert.Equal(t, 1, result.Far.Len())
	assert.Equal(t, 0, result.Unmatched.Len())
	assert.InDelta(t, 5.0, result.Distances[0], 1e-12)

	result, err = FindNearby(core, near, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Close.Len())
}

func TestFindNearbyConservation(t *testing.T) {
	core := table(coordinateColumns,
		[]string{"dir/mic1.mrc", "0", "0", "a"},
		[]string{"dir/mic1.mrc", "100", "100", "b"},
		[]string{"dir/mic2.mrc", "10", "10", "c"},
		[]string{"dir/mic3.mrc", "0", "0", "d"},
	)
	near := table(coordinateColumns,
		[]string{"other/mic1.mrc", "1", "1", "x"},
		[]string{"other/mic1.mrc", "90", "100", "y"},
		[]string{"other/mic3.mrc", "50", "50", "z"},
	)
	result, err := FindNearby(core, near, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Close.Column(star.ImageName))
	assert.Equal(t, []string{"b", "d"}, result.Far.Column(star.ImageName))
	assert.Equal(t, []string{"c"}, result.Unmatched.Column(star.ImageName))
	assert.Equal(t, core.Len(), result.Close.Len()+result.Far.Len()+result.Unmatched.Len())

	fetched, far, unmatched, err := FetchNearby(core, near, 15, []string{star.ImageName})
	require.NoError(t, err)
	assert.Equal(t, 1, far)
	assert.Equal(t, 1, unmatched)
	assert.Equal(t, []string{"x", "y"}, fetched.Column(star.ImageName))
	assert.Equal(t, []string{"0", "100"}, fetched.Column(star.CoordinateX))
	assert.Equal(t, "a", core.Rows[0][3])
}

func TestCluster(t *testing.T) {
	particles := table(coordinateColumns,
		[]string{"m1", "0", "0", "a"},
		[]string{"m1", "1", "0", "b"},
		[]string{"m1", "0", "1", "c"},
		[]string{"m1", "50", "50", "d"},
		[]string{"m2", "0", "0", "e"},
		[]string{"m2", "0", "0", "f"},
	)
	result, err := Cluster(particles, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Column(star.ImageName))

	_, err = Cluster(particles, 2, 5)
	assert.ErrorIs(t, err, ErrNoneRetained)

	_, err = Cluster(table(coordinateColumns), 2, 1)
	assert.Error(t, err)
}

func TestImportValues(t *testing.T) {
	a := table([]string{star.MicrographName, star.ImageName, star.DefocusU},
		[]string{"job/mic1.mrc", "1@p.mrcs", "0"},
		[]string{"job/mic2.mrc", "2@p.mrcs", "0"},
		[]string{"job/mic9.mrc", "3@p.mrcs", "0"},
	)
	b := table([]string{star.MicrographName, star.ImageName, star.DefocusU},
		[]string{"mic2.mrc", "2@p.mrcs", "200"},
		[]string{"mic1.mrc", "1@p.mrcs", "100"},
	)
	result, unmatched, err := ImportMicValues(a, b, []string{star.DefocusU})
	require.NoError(t, err)
	assert.Equal(t, 1, unmatched)
	assert.Equal(t, []string{"100", "200", "0"}, result.Column(star.DefocusU))

	result, unmatched, err = ImportParticleValues(a, b, []string{star.DefocusU})
	require.NoError(t, err)
	assert.Equal(t, 1, unmatched)
	assert.Equal(t, []string{"100", "200", "0"}, result.Column(star.DefocusU))

	_, _, err = ImportMicValues(a, b, []string{star.ClassNumber})
	assert.Error(t, err)
}

func TestSwapColumns(t *testing.T) {
	a := table([]string{star.ImageName, star.AngleRot}, []string{"x", "1"}, []string{"y", "2"})
	b := table([]string{star.AngleRot}, []string{"10"}, []string{"20"})
	result, err := SwapColumns(a, b, []string{star.AngleRot})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, result.Column(star.AngleRot))
	assert.Equal(t, []string{"1", "2"}, a.Column(star.AngleRot))

	_, err = SwapColumns(a, table([]string{star.AngleRot}, []string{"10"}), []string{star.AngleRot})
	assert.ErrorIs(t, err, ErrRowCountMismatch)
}
