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
	"path/filepath"
	"strings"
)

// CompressionExt returns ".gz" or ".zst" if the file name has one of
// those extensions, and "" otherwise.
func CompressionExt(filename string) string {
	switch ext := filepath.Ext(filename); ext {
	case ".gz", ".zst":
		return ext
	default:
		return ""
	}
}

// Stem returns the file name without its directory, compression
// extension, and file type extension, so that "dir/run_data.star.gz"
// yields "run_data".
func Stem(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, CompressionExt(base))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
