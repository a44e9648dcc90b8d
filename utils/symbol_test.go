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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntern(t *testing.T) {
	a := Intern("mic_001.mrc")
	b := Intern(string([]byte("mic_001.mrc")))
	assert.True(t, a == b)
	assert.Equal(t, "mic_001.mrc", *a)
	assert.False(t, a == Intern("mic_002.mrc"))
}

func TestGroupPositions(t *testing.T) {
	groups := GroupPositions([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, 3, groups.Len())
	assert.Equal(t, "b", *groups.Keys[0])
	assert.Equal(t, "a", *groups.Keys[1])
	assert.Equal(t, "c", *groups.Keys[2])
	assert.Equal(t, []int{0, 2}, groups.Members[Intern("b")])
	assert.Equal(t, []int{1, 4}, groups.Members[Intern("a")])
	assert.Equal(t, []int{3}, groups.Members[Intern("c")])
}

func TestStringSet(t *testing.T) {
	set := NewStringSet([]string{"x", "y"})
	assert.True(t, set.Contains("x"))
	assert.False(t, set.Contains("z"))
	assert.True(t, set.Add("z"))
	assert.False(t, set.Add("z"))
}
