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

// A StringSet is a set of strings.
type StringSet map[string]struct{}

// NewStringSet returns a set holding the given values.
func NewStringSet(values []string) StringSet {
	set := make(StringSet, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// Contains reports whether the value is in the set.
func (set StringSet) Contains(value string) bool {
	_, found := set[value]
	return found
}

// Add adds the value to the set, and reports whether it was new.
func (set StringSet) Add(value string) bool {
	if _, found := set[value]; found {
		return false
	}
	set[value] = struct{}{}
	return true
}
