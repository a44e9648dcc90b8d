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
	"github.com/exascience/pargo/sync"

	"github.com/exascience/starparser/internal"
)

type symbolName string

// A Symbol is a unique pointer to a string.
type Symbol *string

func (s symbolName) Hash() uint64 {
	return internal.StringHash(string(s))
}

var symbolTable = sync.NewMap(0)

/*
Intern returns a Symbol for the given string.

Equal strings always yield the same pointer, and different strings
yield different pointers, so micrograph names can be compared and used
as map keys without comparing their contents again. *Intern(s) == s
always holds.

It is safe for multiple goroutines to call Intern concurrently.
*/
func Intern(s string) Symbol {
	entry, _ := symbolTable.LoadOrStore(symbolName(s), Symbol(&s))
	return entry.(Symbol)
}

// Groups partitions the positions of a list of values by value.
type Groups struct {
	// Keys holds each distinct value once, in order of first
	// appearance.
	Keys []Symbol

	// Members maps each value to its positions, in ascending order.
	Members map[Symbol][]int
}

// GroupPositions interns the values and groups their positions.
func GroupPositions(values []string) *Groups {
	groups := &Groups{Members: make(map[Symbol][]int)}
	for i, value := range values {
		key := Intern(value)
		members, ok := groups.Members[key]
		if !ok {
			groups.Keys = append(groups.Keys, key)
		}
		groups.Members[key] = append(members, i)
	}
	return groups
}

// Len returns the number of distinct values.
func (groups *Groups) Len() int {
	return len(groups.Keys)
}
