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
	"fmt"
	"strings"
)

// LoopKeyword starts every table in a STAR file.
const LoopKeyword = "loop_"

// DefaultVersion is used when a file has no "# version" line.
var DefaultVersion = []string{"#", "version", "30001"}

// RelegatedVersion is written for files without an optics table.
var RelegatedVersion = []string{"#", "version", "30000"}

// A Table is a row-oriented table of text cells. The columns are the
// header names in file order.
//
// Tables are treated as immutable values: operations return new
// tables, and rows of a table are never written to in place once the
// table has been handed out.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable returns a table with a copy of the given column names.
func NewTable(columns []string, rows [][]string) *Table {
	return &Table{Columns: append([]string(nil), columns...), Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the given column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table has the given column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Column returns a fresh slice with all values of the given column,
// or nil if there is no such column.
func (t *Table) Column(column string) []string {
	index := t.Index(column)
	if index < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[index]
	}
	return values
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return NewTable(t.Columns, rows)
}

// Select returns a new table with copies of the rows at the given
// indices, in the given order.
func (t *Table) Select(indices []int) *Table {
	rows := make([][]string, len(indices))
	for i, index := range indices {
		rows[i] = append([]string(nil), t.Rows[index]...)
	}
	return NewTable(t.Columns, rows)
}

// Slice returns a new table with copies of the rows in [low, high).
func (t *Table) Slice(low, high int) *Table {
	rows := make([][]string, 0, high-low)
	for _, row := range t.Rows[low:high] {
		rows = append(rows, append([]string(nil), row...))
	}
	return NewTable(t.Columns, rows)
}

// WithColumn returns a new table in which the given column holds the
// given values. An existing column keeps its position, a new column is
// appended at the end.
func (t *Table) WithColumn(column string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("column %v has %v values, but the table has %v rows", column, len(values), len(t.Rows))
	}
	index := t.Index(column)
	columns := t.Columns
	if index < 0 {
		index = len(columns)
		columns = append(append([]string(nil), columns...), column)
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make([]string, len(columns))
		copy(newRow, row)
		newRow[index] = values[i]
		rows[i] = newRow
	}
	return NewTable(columns, rows), nil
}

// DropColumns returns a new table without the given columns. The
// remaining columns keep their relative order. It is an error if any
// of the columns does not exist.
func (t *Table) DropColumns(columns ...string) (*Table, error) {
	drop := make(map[int]bool, len(columns))
	for _, column := range columns {
		index := t.Index(column)
		if index < 0 {
			return nil, fmt.Errorf("the column %v does not exist", column)
		}
		drop[index] = true
	}
	var keep []int
	var newColumns []string
	for i, column := range t.Columns {
		if !drop[i] {
			keep = append(keep, i)
			newColumns = append(newColumns, column)
		}
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make([]string, len(keep))
		for j, k := range keep {
			newRow[j] = row[k]
		}
		rows[i] = newRow
	}
	return NewTable(newColumns, rows), nil
}

// Materialize groups a flat run of data tokens into rows of
// len(headers) cells.
//
// A token that starts with the sigil or is a loop_ keyword means that
// a third table was swallowed into the data, and is reported instead
// of producing misaligned rows.
func Materialize(headers []string, tokens []string) (*Table, error) {
	width := len(headers)
	if width == 0 {
		return nil, parseError(Malformed, "table without column headers")
	}
	for _, token := range tokens {
		if strings.HasPrefix(token, Sigil) || token == LoopKeyword {
			return nil, parseError(MoreThanTwoTables, fmt.Sprintf("found %v inside table data; are there more than two tables?", token))
		}
	}
	if len(tokens)%width != 0 {
		return nil, parseError(ColumnCountMismatch, fmt.Sprintf("%v values cannot be split into rows of %v columns", len(tokens), width))
	}
	rows := make([][]string, len(tokens)/width)
	for i := range rows {
		low, high := i*width, (i+1)*width
		rows[i] = tokens[low:high:high]
	}
	return NewTable(headers, rows), nil
}

// Metadata is everything in a STAR file besides the data table. It is
// threaded through all operations so that the file can be written
// again.
type Metadata struct {
	Version   []string
	Optics    *Table
	TableName string
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	return Metadata{
		Version:   append([]string(nil), m.Version...),
		Optics:    m.Optics.Clone(),
		TableName: m.TableName,
	}
}

// OpticsHeaders returns the optics column names.
func (m Metadata) OpticsHeaders() []string {
	if m.Optics == nil {
		return nil
	}
	return m.Optics.Columns
}

// A Star is a parsed STAR file.
type Star struct {
	Metadata
	Particles *Table
}

// ParticleHeaders returns the data table column names.
func (s *Star) ParticleHeaders() []string {
	return s.Particles.Columns
}

// WithParticles returns a new Star with a copy of the metadata and the
// given data table.
func (s *Star) WithParticles(particles *Table) *Star {
	return &Star{Metadata: s.Metadata.Clone(), Particles: particles}
}

// WithOptics returns a new Star sharing the data table, but with the
// given optics table.
func (s *Star) WithOptics(optics *Table) *Star {
	metadata := s.Metadata.Clone()
	metadata.Optics = optics
	return &Star{Metadata: metadata, Particles: s.Particles}
}

// DanglingOpticsGroups returns the optics group identifiers used in
// the data table that have no row in the optics table, in order of
// first appearance.
func (s *Star) DanglingOpticsGroups() []string {
	if s.Optics == nil || !s.Particles.Has(OpticsGroup) {
		return nil
	}
	known := make(map[string]bool)
	for _, id := range s.Optics.Column(OpticsGroup) {
		known[id] = true
	}
	var dangling []string
	for _, id := range s.Particles.Column(OpticsGroup) {
		if !known[id] {
			known[id] = true
			dangling = append(dangling, id)
		}
	}
	return dangling
}

// Validate checks that every row has one cell per column, and that
// every optics group the data table uses has a row in the optics
// table. The latter is reported as a *DanglingOpticsError.
func (s *Star) Validate() error {
	if s.Optics != nil {
		for i, row := range s.Optics.Rows {
			if len(row) != len(s.Optics.Columns) {
				return fmt.Errorf("optics row %v has %v cells for %v columns", i+1, len(row), len(s.Optics.Columns))
			}
		}
	}
	for i, row := range s.Particles.Rows {
		if len(row) != len(s.Particles.Columns) {
			return fmt.Errorf("data row %v has %v cells for %v columns", i+1, len(row), len(s.Particles.Columns))
		}
	}
	if dangling := s.DanglingOpticsGroups(); len(dangling) > 0 {
		return &DanglingOpticsError{Groups: dangling}
	}
	return nil
}
