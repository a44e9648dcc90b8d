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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
)

// An Operator is one of the four arithmetic operators.
type Operator byte

// The arithmetic operators, in the order in which arguments are split.
const (
	Multiply Operator = '*'
	Divide   Operator = '/'
	Add      Operator = '+'
	Subtract Operator = '-'
)

var operators = []Operator{Multiply, Divide, Add, Subtract}

func (op Operator) String() string {
	return string(op)
}

// apply computes dst = dst op s element by element.
func (op Operator) apply(dst, s []float64) {
	switch op {
	case Multiply:
		floats.Mul(dst, s)
	case Divide:
		floats.Div(dst, s)
	case Add:
		floats.Add(dst, s)
	case Subtract:
		floats.Sub(dst, s)
	default:
		panic(fmt.Sprintf("unknown operator %q", byte(op)))
	}
}

// splitOperation splits an argument at the first operator that
// divides it into exactly two non-empty parts.
func splitOperation(arg string) (left, right string, op Operator, err error) {
	for _, op := range operators {
		parts := strings.Split(arg, string(op))
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], op, nil
		}
	}
	return "", "", 0, fmt.Errorf("%v is not of the form column*value; the operator must be one of * / + -", arg)
}

// ParseOperation parses an argument such as "CoordinateX*2".
func ParseOperation(arg string) (column string, op Operator, value float64, err error) {
	left, right, op, err := splitOperation(arg)
	if err != nil {
		return "", 0, 0, err
	}
	if column, err = star.CanonicalColumn(left); err != nil {
		return "", 0, 0, err
	}
	value, ok := internal.ParseFloat(right)
	if !ok {
		return "", 0, 0, fmt.Errorf("%v in %v is not a number", right, arg)
	}
	if op == Divide && value == 0 {
		return "", 0, 0, fmt.Errorf("division by zero in %v", arg)
	}
	return column, op, value, nil
}

// ParseColumnOperation parses an argument such as "AngleRot+AngleTilt=Sum".
func ParseColumnOperation(arg string) (a, b string, op Operator, result string, err error) {
	parts := strings.Split(arg, "=")
	if len(parts) != 2 || parts[1] == "" {
		return "", "", 0, "", fmt.Errorf("%v is not of the form column1*column2=result", arg)
	}
	left, right, op, err := splitOperation(parts[0])
	if err != nil {
		return "", "", 0, "", err
	}
	columns, err := star.CanonicalColumns([]string{left, right, parts[1]})
	if err != nil {
		return "", "", 0, "", err
	}
	return columns[0], columns[1], op, columns[2], nil
}

// NumericColumn returns the values of a column as numbers.
func NumericColumn(t *star.Table, column string) ([]float64, error) {
	index := t.Index(column)
	if index < 0 {
		return nil, missingColumn(column)
	}
	values := make([]float64, t.Len())
	for i, row := range t.Rows {
		value, ok := internal.ParseFloat(row[index])
		if !ok {
			return nil, &NonNumericError{Column: column, Row: i, Value: row[index]}
		}
		values[i] = value
	}
	return values, nil
}

func formatNumbers(column string, values []float64) ([]string, error) {
	result := make([]string, len(values))
	for i, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("the result for %v in row %v is not a finite number", column, i+1)
		}
		result[i] = internal.FormatFloat(value)
	}
	return result, nil
}

// Operate applies op with a constant to every value of a column.
func Operate(t *star.Table, column string, op Operator, value float64) (*star.Table, error) {
	values, err := NumericColumn(t, column)
	if err != nil {
		return nil, err
	}
	constant := make([]float64, len(values))
	for i := range constant {
		constant[i] = value
	}
	op.apply(values, constant)
	cells, err := formatNumbers(column, values)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(column, cells)
}

// OperateColumns computes a op b row by row and stores the outcome in
// a new column appended to the table.
func OperateColumns(t *star.Table, a, b string, op Operator, result string) (*star.Table, error) {
	if t.Has(result) {
		return nil, existingColumn(result)
	}
	x, err := NumericColumn(t, a)
	if err != nil {
		return nil, err
	}
	y, err := NumericColumn(t, b)
	if err != nil {
		return nil, err
	}
	op.apply(x, y)
	cells, err := formatNumbers(result, x)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(result, cells)
}

// DeleteColumns removes the given columns. Every column must exist.
func DeleteColumns(t *star.Table, columns []string) (*star.Table, error) {
	if err := requireColumns(t, columns, ""); err != nil {
		return nil, err
	}
	return t.DropColumns(columns...)
}

// CopyColumn copies the values of source into target, which is
// appended if it does not exist yet.
func CopyColumn(t *star.Table, source, target string) (*star.Table, error) {
	values := t.Column(source)
	if values == nil {
		return nil, missingColumn(source)
	}
	return t.WithColumn(target, values)
}

// ResetColumn sets every value of an existing column to value.
func ResetColumn(t *star.Table, column, value string) (*star.Table, error) {
	if !t.Has(column) {
		return nil, missingColumn(column)
	}
	values := make([]string, t.Len())
	for i := range values {
		values[i] = value
	}
	return t.WithColumn(column, values)
}

func checkRowCount(t *star.Table, values []string) error {
	if len(values) != t.Len() {
		return fmt.Errorf("%v values for %v rows: %w", len(values), t.Len(), ErrRowCountMismatch)
	}
	return nil
}

// ReplaceColumn replaces the values of an existing column with one
// value per row.
func ReplaceColumn(t *star.Table, column string, values []string) (*star.Table, error) {
	if !t.Has(column) {
		return nil, missingColumn(column)
	}
	if err := checkRowCount(t, values); err != nil {
		return nil, err
	}
	return t.WithColumn(column, values)
}

// InsertColumn appends a new column with one value per row.
func InsertColumn(t *star.Table, column string, values []string) (*star.Table, error) {
	if t.Has(column) {
		return nil, existingColumn(column)
	}
	if err := checkRowCount(t, values); err != nil {
		return nil, err
	}
	return t.WithColumn(column, values)
}

// ListColumns returns the values of each of the given columns.
func ListColumns(t *star.Table, columns []string) ([][]string, error) {
	if err := requireColumns(t, columns, ""); err != nil {
		return nil, err
	}
	lists := make([][]string, len(columns))
	for i, column := range columns {
		lists[i] = t.Column(column)
	}
	return lists, nil
}
