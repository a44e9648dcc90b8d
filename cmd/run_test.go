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
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/starparser/filters"
	"github.com/exascience/starparser/star"
)

const opticsHeader = `
# version 30001

data_optics

loop_
_rlnOpticsGroupName #1
_rlnOpticsGroup #2
_rlnVoltage #3
`

const particlesHeader = `

# version 30001

data_particles

loop_
_rlnMicrographName #1
_rlnCoordinateX #2
_rlnCoordinateY #3
_rlnOpticsGroup #4
`

func writeStar(t *testing.T, dir, name, text string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(filename, []byte(text), 0666))
	return filename
}

func runCommand(command func() error, args ...string) error {
	saved := os.Args
	defer func() { os.Args = saved }()
	os.Args = append([]string{"starparser"}, args...)
	return command()
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func readStar(t *testing.T, name string) *star.Star {
	t.Helper()
	s, err := star.ReadFile(name, star.ParseOptions{})
	require.NoError(t, err)
	return s
}

func TestExtractIfNearbyUnmatched(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"job/mA.mrc\t10\t10\t1\njob/mA.mrc\t500\t500\t1\n")
	other := writeStar(t, dir, "b.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"job/mB.mrc\t10\t10\t1\n")
	out := filepath.Join(dir, "out.star")

	err := runCommand(ExtractIfNearby, "extract-if-nearby", input, "--f", other, "--distance", "5", "--o", out)
	assert.ErrorIs(t, err, filters.ErrEmptyResult)
	assert.Equal(t, []string{"a.star", "b.star"}, dirEntries(t, dir))
}

func TestExtractIfNearbyWritesFar(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"job/mA.mrc\t10\t10\t1\njob/mA.mrc\t500\t500\t1\n")
	other := writeStar(t, dir, "b.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"other/mA.mrc\t12\t10\t1\n")
	out := filepath.Join(dir, "out.star")

	require.NoError(t, runCommand(ExtractIfNearby, "extract-if-nearby", input, "--f", other, "--distance", "5", "--o", out))
	assert.Equal(t, []string{"a.star", "b.star", "out.star", "out_far.star"}, dirEntries(t, dir))
	assert.Equal(t, []string{"10"}, readStar(t, out).Particles.Column(star.CoordinateX))
	assert.Equal(t, []string{"500"}, readStar(t, filepath.Join(dir, "out_far.star")).Particles.Column(star.CoordinateX))
}

func TestFindSharedWritesUnique(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"mA.mrc\t1\t1\t1\nmA.mrc\t2\t2\t1\nmB.mrc\t3\t3\t1\n")
	other := writeStar(t, dir, "b.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"mA.mrc\t9\t9\t1\nmC.mrc\t9\t9\t1\n")
	out := filepath.Join(dir, "out.star")

	require.NoError(t, runCommand(FindShared, "find-shared", input, "--f", other, "--c", "MicrographName", "--o", out))
	assert.Equal(t, []string{"mA.mrc", "mA.mrc"}, readStar(t, out).Particles.Column(star.MicrographName))
	assert.Equal(t, []string{"mB.mrc"}, readStar(t, filepath.Join(dir, "out_unique.star")).Particles.Column(star.MicrographName))

	empty := writeStar(t, dir, "c.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+"mD.mrc\t9\t9\t1\n")
	shared := filepath.Join(dir, "shared.star")
	err := runCommand(FindShared, "find-shared", input, "--f", empty, "--c", "MicrographName", "--o", shared)
	assert.ErrorIs(t, err, filters.ErrEmptyResult)
	assert.NoFileExists(t, shared)
}

func TestMatchMicsOpticslessInput(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", "\ndata_images\n\nloop_\n_rlnMicrographName #1\n_rlnDefocusU #2\nmic1.mrc 1000\nmic2.mrc 2000\n")
	other := writeStar(t, dir, "b.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"job/mic2.mrc\t1\t1\t1\n")
	out := filepath.Join(dir, "out.star")

	require.NoError(t, runCommand(MatchMics, "match-mics", input, "--f", other, "--opticsless", "--o", out))
	text, err := star.ReadText(out)
	require.NoError(t, err)
	assert.Contains(t, text, "# version 30000")
	assert.NotContains(t, text, "data_optics")
	s, err := star.Parse(text, star.ParseOptions{Opticsless: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2000"}, s.Particles.Column(star.DefocusU))
}

func TestRemoveMicsFromList(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"og1\t1\t300\n"+particlesHeader+
		"job/m1.mrc\t1\t1\t1\njob/m2.mrc\t2\t2\t1\njob/m3.mrc\t3\t3\t1\n")
	list := writeStar(t, dir, "mics.txt", "m1.mrc 12 particles\n\n  m3.mrc\tbad\n")
	out := filepath.Join(dir, "out.star")

	require.NoError(t, runCommand(RemoveMics, "remove-mics", input, "--f", list, "--o", out))
	assert.Equal(t, []string{"job/m2.mrc"}, readStar(t, out).Particles.Column(star.MicrographName))

	kept := filepath.Join(dir, "kept.star")
	require.NoError(t, runCommand(KeepMics, "keep-mics", input, "--f", list, "--o", kept))
	assert.Equal(t, []string{"job/m1.mrc", "job/m3.mrc"}, readStar(t, kept).Particles.Column(star.MicrographName))
}

func TestSplitOpticsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"tilt\t1\t300\ntilt\t2\t300\n"+particlesHeader+
		"m1.mrc\t1\t1\t1\nm2.mrc\t2\t2\t2\n")

	err := runCommand(SplitOptics, "split-optics", input, "--o", filepath.Join(dir, "out.star"))
	assert.Error(t, err)
	assert.Equal(t, []string{"a.star"}, dirEntries(t, dir))
}

func TestSplitOptics(t *testing.T) {
	dir := t.TempDir()
	input := writeStar(t, dir, "a.star", opticsHeader+"tiltA\t1\t300\ntiltB\t2\t300\n"+particlesHeader+
		"m1.mrc\t1\t1\t1\nm2.mrc\t2\t2\t2\nm3.mrc\t3\t3\t1\n")

	require.NoError(t, runCommand(SplitOptics, "split-optics", input, "--o", filepath.Join(dir, "out.star")))
	assert.Equal(t, []string{"a.star", "tiltA.star", "tiltB.star"}, dirEntries(t, dir))
	part := readStar(t, filepath.Join(dir, "tiltA.star"))
	assert.Equal(t, []string{"m1.mrc", "m3.mrc"}, part.Particles.Column(star.MicrographName))
	assert.Equal(t, 1, part.Optics.Len())
}

func TestCheckDistance(t *testing.T) {
	assert.False(t, checkDistance("--distance", -1))
	assert.False(t, checkDistance("--distance", math.NaN()))
	assert.True(t, checkDistance("--distance", 0))
	assert.True(t, checkDistance("--distance", 5))
}
