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

func angleTable() *star.Table {
	return table([]string{star.ImageName, star.AngleRot, star.AngleTilt},
		[]string{"a", "10", "1.5"},
		[]string{"b", "-20", "2"},
		[]string{"c", "30.25", "4"},
	)
}

func TestParseOperation(t *testing.T) {
	column, op, value, err := ParseOperation("AngleRot*2")
	require.NoError(t, err)
	assert.Equal(t, star.AngleRot, column)
	assert.Equal(t, Multiply, op)
	assert.Equal(t, 2.0, value)

	column, op, value, err = ParseOperation("_rlnAngleTilt+-5")
	require.NoError(t, err)
	assert.Equal(t, star.AngleTilt, column)
	assert.Equal(t, Add, op)
	assert.Equal(t, -5.0, value)

	_, _, _, err = ParseOperation("AngleRot")
	assert.Error(t, err)
	_, _, _, err = ParseOperation("AngleRot*x")
	assert.Error(t, err)
	_, _, _, err = ParseOperation("AngleRot/0")
	assert.Error(t, err)

	a, b, op, result, err := ParseColumnOperation("AngleRot-AngleTilt=Difference")
	require.NoError(t, err)
	assert.Equal(t, star.AngleRot, a)
	assert.Equal(t, star.AngleTilt, b)
	assert.Equal(t, Subtract, op)
	assert.Equal(t, "_rlnDifference", result)

	_, _, _, _, err = ParseColumnOperation("AngleRot-AngleTilt")
	assert.Error(t, err)
}

func TestOperate(t *testing.T) {
	angles := angleTable()
	result, err := Operate(angles, star.AngleRot, Multiply, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"20", "-40", "60.5"}, result.Column(star.AngleRot))
	assert.Equal(t, angles.Columns, result.Columns)
	assert.Equal(t, []string{"10", "-20", "30.25"}, angles.Column(star.AngleRot))

	result, err = Operate(angles, star.AngleTilt, Divide, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.75", "1", "2"}, result.Column(star.AngleTilt))

	_, err = Operate(angles, star.ImageName, Add, 1)
	var nonNumeric *NonNumericError
	require.ErrorAs(t, err, &nonNumeric)
	assert.Equal(t, star.ImageName, nonNumeric.Column)
	assert.Equal(t, 0, nonNumeric.Row)
}

func TestOperateColumns(t *testing.T) {
	angles := angleTable()
	result, err := OperateColumns(angles, star.AngleRot, star.AngleTilt, Add, "_rlnSum")
	require.NoError(t, err)
	assert.Equal(t, []string{star.ImageName, star.AngleRot, star.AngleTilt, "_rlnSum"}, result.Columns)
	assert.Equal(t, []string{"11.5", "-18", "34.25"}, result.Column("_rlnSum"))

	_, err = OperateColumns(angles, star.AngleRot, star.AngleTilt, Add, star.AngleRot)
	var columnErr *ColumnError
	require.ErrorAs(t, err, &columnErr)
	assert.True(t, columnErr.Exists)

	_, err = OperateColumns(angles, star.AngleRot, "_rlnFoo", Add, "_rlnSum")
	assert.ErrorAs(t, err, &columnErr)
}

func TestDeleteColumns(t *testing.T) {
	angles := angleTable()
	result, err := DeleteColumns(angles, []string{star.AngleRot})
	require.NoError(t, err)
	assert.Equal(t, []string{star.ImageName, star.AngleTilt}, result.Columns)

	_, err = DeleteColumns(angles, []string{"_rlnFoo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_rlnFoo")
}

func TestCopyResetReplaceInsert(t *testing.T) {
	angles := angleTable()

	copied, err := CopyColumn(angles, star.AngleRot, "_rlnAnglePsi")
	require.NoError(t, err)
	assert.Equal(t, angles.Column(star.AngleRot), copied.Column("_rlnAnglePsi"))
	assert.Len(t, copied.Columns, 4)

	copied, err = CopyColumn(angles, star.AngleRot, star.AngleTilt)
	require.NoError(t, err)
	assert.Len(t, copied.Columns, 3)
	assert.Equal(t, angles.Column(star.AngleRot), copied.Column(star.AngleTilt))

	reset, err := ResetColumn(angles, star.AngleTilt, "0")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0", "0"}, reset.Column(star.AngleTilt))
	_, err = ResetColumn(angles, "_rlnFoo", "0")
	assert.Error(t, err)

	replaced, err := ReplaceColumn(angles, star.AngleTilt, []string{"7", "8", "9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8", "9"}, replaced.Column(star.AngleTilt))
	_, err = ReplaceColumn(angles, star.AngleTilt, []string{"7"})
	assert.ErrorIs(t, err, ErrRowCountMismatch)

	inserted, err := InsertColumn(angles, "_rlnAnglePsi", []string{"7", "8", "9"})
	require.NoError(t, err)
	assert.Equal(t, "_rlnAnglePsi", inserted.Columns[3])
	_, err = InsertColumn(angles, star.AngleTilt, []string{"7", "8", "9"})
	assert.Error(t, err)
}

func TestSortBy(t *testing.T) {
	particles := table([]string{star.ImageName, star.DefocusU},
		[]string{"a", "900"},
		[]string{"b", "10000"},
		[]string{"c", "900"},
		[]string{"d", "2000"},
	)
	numeric, err := SortBy(particles, star.DefocusU, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d", "b"}, numeric.Column(star.ImageName))

	text, err := SortBy(particles, star.DefocusU, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "a", "c"}, text.Column(star.ImageName))

	_, err = SortBy(particles, star.ImageName, true)
	var nonNumeric *NonNumericError
	assert.ErrorAs(t, err, &nonNumeric)
}

func TestLimit(t *testing.T) {
	angles := angleTable()
	for cmp, expected := range map[Comparison][]string{
		LessThan:       {"a", "b"},
		LessOrEqual:    {"a", "b"},
		GreaterThan:    {"c"},
		GreaterOrEqual: {"c"},
	} {
		result, err := Limit(angles, star.AngleRot, cmp, 20)
		require.NoError(t, err)
		assert.Equal(t, expected, result.Column(star.ImageName), string(cmp))
	}
	result, err := Limit(angles, star.AngleRot, GreaterOrEqual, 30.25)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())

	_, err = Limit(angles, star.AngleRot, GreaterThan, 100)
	assert.ErrorIs(t, err, ErrEmptyResult)

	_, err = ParseComparison("eq")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	particles := table([]string{star.DefocusU},
		[]string{"1"}, []string{"2"}, []string{"3"}, []string{"4"})
	summary, err := Describe(particles, star.DefocusU, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.InDelta(t, 2.5, summary.Mean, 1e-12)
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 4.0, summary.Max)
	assert.Len(t, summary.Dividers, 4)
	assert.Equal(t, []float64{1, 1, 2}, summary.Counts)

	constant := table([]string{star.DefocusU}, []string{"5"}, []string{"5"})
	summary, err = Describe(constant, star.DefocusU, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, summary.Counts)

	_, err = Describe(particles, star.DefocusU, 0)
	assert.Error(t, err)
}
