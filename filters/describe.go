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
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/exascience/starparser/star"
)

// A Summary describes the distribution of a numeric column. It is what
// plotting tools need to render a histogram of the column.
type Summary struct {
	Column           string
	Count            int
	Mean, StdDev     float64
	Min, Max         float64
	Dividers, Counts []float64
}

// Describe summarizes a numeric column with a histogram of the given
// number of equally wide bins.
func Describe(t *star.Table, column string, bins int) (*Summary, error) {
	if bins < 1 {
		return nil, fmt.Errorf("the number of bins must be positive, not %v", bins)
	}
	values, err := NumericColumn(t, column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%v: %w", column, ErrEmptyResult)
	}
	summary := &Summary{
		Column: column,
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
	summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		summary.StdDev = 0
	}
	if summary.Min == summary.Max {
		bins = 1
	}
	summary.Dividers = make([]float64, bins+1)
	floats.Span(summary.Dividers, summary.Min, summary.Max)
	// the last bin must include the maximum
	summary.Dividers[bins] = math.Nextafter(summary.Max, math.Inf(1))
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	summary.Counts = stat.Histogram(nil, summary.Dividers, sorted, nil)
	return summary, nil
}
