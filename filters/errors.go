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
	"errors"
	"fmt"
)

// A NonNumericError is returned when a column that an operation needs
// as numbers holds a value that does not parse as one.
type NonNumericError struct {
	Column string
	Row    int // 0-based
	Value  string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("the column %v has a non-numeric value %q in row %v", e.Column, e.Value, e.Row+1)
}

// A ColumnError is returned when a named column is missing, or is
// present where it must not be.
type ColumnError struct {
	Column string
	Exists bool
}

func (e *ColumnError) Error() string {
	if e.Exists {
		return fmt.Sprintf("the column %v already exists", e.Column)
	}
	return fmt.Sprintf("the column %v does not exist", e.Column)
}

func missingColumn(column string) error {
	return &ColumnError{Column: column}
}

func existingColumn(column string) error {
	return &ColumnError{Column: column, Exists: true}
}

var (
	// ErrNoneRetained is returned by partitioning filters that would
	// keep no rows at all.
	ErrNoneRetained = errors.New("no rows would be retained")

	// ErrAllRetained is returned by partitioning filters that would
	// keep every row, which means the parameters have no effect.
	ErrAllRetained = errors.New("all rows would be retained")

	// ErrEmptyResult is returned when a selection matches nothing.
	ErrEmptyResult = errors.New("the selection is empty")

	// ErrRowCountMismatch is returned when an external value list or a
	// second table does not have one value per row.
	ErrRowCountMismatch = errors.New("the number of values does not match the number of rows")

	// ErrMultipleColumns is returned when more than one column is
	// given where exactly one is expected.
	ErrMultipleColumns = errors.New("only one column can be given here")

	// ErrNoQuery is returned when a query has no terms.
	ErrNoQuery = errors.New("no query terms given")
)
