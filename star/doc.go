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

// Package star is a library for parsing and representing STAR files as
// written by RELION, and for writing them back in a form that RELION
// reads again.
//
// A STAR file handled by this package consists of exactly two tables:
// an optics table with one row per optics group, followed by a data
// table of particles, micrographs, or movies. Files that only have a
// data table (RELION 3.0 and older) can be read with
// ParseOptions.Opticsless, in which case a single-row optics table is
// synthesized.
//
// All cell values are kept as text. The filters package builds queries
// and transformations on top of the tables produced here, and never
// modifies a Table in place: every operation returns a new Table.
package star
