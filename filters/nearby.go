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

	"github.com/exascience/pargo/parallel"
	"github.com/willf/bitset"
	"gonum.org/v1/gonum/floats"

	"github.com/exascience/starparser/star"
	"github.com/exascience/starparser/utils"
)

type coordinates struct {
	x, y []float64
	mics *utils.Groups
}

func readCoordinates(t *star.Table) (*coordinates, error) {
	x, err := NumericColumn(t, star.CoordinateX)
	if err != nil {
		return nil, err
	}
	y, err := NumericColumn(t, star.CoordinateY)
	if err != nil {
		return nil, err
	}
	keys, err := micrographKeys(t)
	if err != nil {
		return nil, err
	}
	return &coordinates{x: x, y: y, mics: utils.GroupPositions(keys)}, nil
}

func (c *coordinates) distance(i int, other *coordinates, j int) float64 {
	return math.Hypot(c.x[i]-other.x[j], c.y[i]-other.y[j])
}

// nearestNeighbors finds for every row of core the closest row of near
// on the same micrograph. Rows on micrographs that near does not have
// get index -1 and distance NaN.
func nearestNeighbors(core, near *star.Table) (index []int, distance []float64, err error) {
	c, err := readCoordinates(core)
	if err != nil {
		return nil, nil, err
	}
	n, err := readCoordinates(near)
	if err != nil {
		return nil, nil, fmt.Errorf("second file: %w", err)
	}
	index = make([]int, core.Len())
	distance = make([]float64, core.Len())
	for i := range index {
		index[i] = -1
		distance[i] = math.NaN()
	}
	if c.mics.Len() == 0 {
		return index, distance, nil
	}
	parallel.Range(0, c.mics.Len(), 0, func(low, high int) {
		var dist []float64
		for g := low; g < high; g++ {
			key := c.mics.Keys[g]
			candidates := n.mics.Members[key]
			if len(candidates) == 0 {
				continue
			}
			if cap(dist) < len(candidates) {
				dist = make([]float64, len(candidates))
			}
			dist = dist[:len(candidates)]
			for _, i := range c.mics.Members[key] {
				for k, j := range candidates {
					dist[k] = c.distance(i, n, j)
				}
				k := floats.MinIdx(dist)
				index[i] = candidates[k]
				distance[i] = dist[k]
			}
		}
	})
	return index, distance, nil
}

// NearbyResult partitions the rows of a table by the distance to
// their nearest neighbor in another table.
type NearbyResult struct {
	// Close rows have a neighbor within the threshold.
	Close *star.Table

	// Far rows have their nearest neighbor beyond the threshold.
	Far *star.Table

	// Unmatched rows lie on micrographs the other table lacks.
	Unmatched *star.Table

	// Distances holds the nearest distance for every input row, or
	// NaN for unmatched rows.
	Distances []float64
}

// FindNearby splits the rows of core by whether a row of near on the
// same micrograph lies within threshold. Every row ends up in exactly
// one of the three result tables.
func FindNearby(core, near *star.Table, threshold float64) (*NearbyResult, error) {
	index, distance, err := nearestNeighbors(core, near)
	if err != nil {
		return nil, err
	}
	var closeRows, farRows, unmatchedRows []int
	for i, j := range index {
		switch {
		case j < 0:
			unmatchedRows = append(unmatchedRows, i)
		case distance[i] > threshold:
			farRows = append(farRows, i)
		default:
			closeRows = append(closeRows, i)
		}
	}
	return &NearbyResult{
		Close:     core.Select(closeRows),
		Far:       core.Select(farRows),
		Unmatched: core.Select(unmatchedRows),
		Distances: distance,
	}, nil
}

// FetchNearby keeps the rows of core that have a neighbor in near
// within threshold, and gives them the values of the given columns
// from that neighbor. Columns missing from core are appended. It also
// returns the number of far and unmatched rows that were dropped.
func FetchNearby(core, near *star.Table, threshold float64, columns []string) (result *star.Table, far, unmatched int, err error) {
	if err := requireColumns(near, columns, "second file"); err != nil {
		return nil, 0, 0, err
	}
	index, distance, err := nearestNeighbors(core, near)
	if err != nil {
		return nil, 0, 0, err
	}
	var keep, sources []int
	for i, j := range index {
		switch {
		case j < 0:
			unmatched++
		case distance[i] > threshold:
			far++
		default:
			keep = append(keep, i)
			sources = append(sources, j)
		}
	}
	if len(keep) == 0 {
		return nil, far, unmatched, fmt.Errorf("no particle has a neighbor within %v: %w", threshold, ErrNoneRetained)
	}
	result = core.Select(keep)
	for _, column := range columns {
		from := near.Index(column)
		values := make([]string, len(sources))
		for i, j := range sources {
			values[i] = near.Rows[j][from]
		}
		if result, err = result.WithColumn(column, values); err != nil {
			return nil, 0, 0, err
		}
	}
	return result, far, unmatched, nil
}

// Cluster keeps the particles that have at least minimum other
// particles on the same micrograph at a distance strictly between 0
// and radius. Keeping none or all of the particles is an error.
func Cluster(t *star.Table, radius float64, minimum int) (*star.Table, error) {
	c, err := readCoordinates(t)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, ErrEmptyResult
	}
	keep := make([]bool, t.Len())
	parallel.Range(0, c.mics.Len(), 0, func(low, high int) {
		for g := low; g < high; g++ {
			members := c.mics.Members[c.mics.Keys[g]]
			for _, i := range members {
				neighbors := 0
				for _, j := range members {
					if d := c.distance(i, c, j); d > 0 && d < radius {
						neighbors++
					}
				}
				keep[i] = neighbors >= minimum
			}
		}
	})
	set := bitset.New(uint(t.Len()))
	for i, k := range keep {
		if k {
			set.Set(uint(i))
		}
	}
	switch int(set.Count()) {
	case 0:
		return nil, fmt.Errorf("no particle has %v neighbors within %v: %w", minimum, radius, ErrNoneRetained)
	case t.Len():
		return nil, fmt.Errorf("every particle has %v neighbors within %v: %w", minimum, radius, ErrAllRetained)
	}
	return SelectSet(t, set), nil
}
