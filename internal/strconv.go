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

package internal

import (
	"strconv"
	"strings"
)

// ParseFloat parses a cell value as a float64. Surrounding whitespace
// is ignored, and ok is false for anything strconv.ParseFloat rejects.
func ParseFloat(s string) (value float64, ok bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return value, err == nil
}

// FormatFloat formats a float64 with the shortest representation that
// parses back to the same value.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatInt formats an int as a decimal cell value.
func FormatInt(value int) string {
	return strconv.Itoa(value)
}
