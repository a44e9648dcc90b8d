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

package star

import (
	"errors"
	"fmt"
	"strings"
)

// ParseErrorKind classifies why a STAR file could not be parsed.
type ParseErrorKind int

const (
	// Malformed means the table structure (loop_ blocks, headers)
	// could not be found.
	Malformed ParseErrorKind = iota

	// ColumnCountMismatch means the data tokens of a table cannot be
	// split into rows of the number of columns in its header.
	ColumnCountMismatch

	// MoreThanTwoTables means a column name or loop_ keyword showed up
	// inside what should be pure data.
	MoreThanTwoTables

	// HeaderScanLimit means a header block did not end inside the
	// configured header scan window.
	HeaderScanLimit
)

func (kind ParseErrorKind) String() string {
	switch kind {
	case Malformed:
		return "malformed structure"
	case ColumnCountMismatch:
		return "column count mismatch"
	case MoreThanTwoTables:
		return "more than two tables"
	case HeaderScanLimit:
		return "header scan limit exceeded"
	default:
		return "unknown parse error"
	}
}

// A ParseError is returned for every STAR file that cannot be parsed.
// There is no partial result.
type ParseError struct {
	Kind ParseErrorKind
	Name string // file name, if known
	Msg  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("Error parsing STAR file")
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	b.WriteString(" (")
	b.WriteString(e.Kind.String())
	b.WriteString("): ")
	b.WriteString(e.Msg)
	return b.String()
}

func parseError(kind ParseErrorKind, msg string) *ParseError {
	return &ParseError{Kind: kind, Msg: msg}
}

// IsParseError reports whether err is a *ParseError of the given kind.
func IsParseError(err error, kind ParseErrorKind) bool {
	var perr *ParseError
	return errors.As(err, &perr) && perr.Kind == kind
}

var (
	// ErrEmptyTable is returned when attempting to write a STAR file
	// without any data rows.
	ErrEmptyTable = errors.New("no particles to output")

	// ErrNoOptics is returned when an optics table is required but
	// missing.
	ErrNoOptics = errors.New("no optics table; relegate the output or pass --opticsless on input")
)

// A DanglingOpticsError lists the optics groups that the data table
// uses but the optics table lacks.
type DanglingOpticsError struct {
	Groups []string
}

func (e *DanglingOpticsError) Error() string {
	return fmt.Sprintf("optics groups %v are used by particles, but missing from the optics table", strings.Join(e.Groups, ", "))
}
