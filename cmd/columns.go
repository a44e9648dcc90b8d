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

package cmd

import (
	"fmt"
	"log"

	"github.com/exascience/starparser/filters"
	"github.com/exascience/starparser/star"
)

// RemoveColumnHelp is the help string for this command.
const RemoveColumnHelp = "Remove-column parameters:\n" +
	"starparser remove-column star-file\n" +
	"--c column1/column2/...\n" +
	outputHelp + inputHelp

// RemoveColumn implements the starparser remove-column command.
func RemoveColumn() error {
	s := newSession(RemoveColumnHelp, columnFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	particles, err := filters.DeleteColumns(s.star.Particles, columns)
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}

// OperateHelp is the help string for this command.
const OperateHelp = "Operate parameters:\n" +
	"starparser operate star-file\n" +
	"--op column[*/+-]value\n" +
	outputHelp + inputHelp

// Operate implements the starparser operate command.
func Operate() error {
	var operation string
	s := newSession(OperateHelp, outputFlags)
	s.flags.StringVar(&operation, "op", "", "operation such as CoordinateX*2")
	if err := s.start(); err != nil {
		return err
	}
	column, op, value, err := filters.ParseOperation(operation)
	if err != nil {
		return err
	}
	particles, err := filters.Operate(s.star.Particles, column, op, value)
	if err != nil {
		return err
	}
	log.Printf("Computed %v %v %v for %v particles.\n", column, op, value, particles.Len())
	return s.writeParticles(particles)
}

// OperateColumnsHelp is the help string for this command.
const OperateColumnsHelp = "Operate-columns parameters:\n" +
	"starparser operate-columns star-file\n" +
	"--op column1[*/+-]column2=result\n" +
	outputHelp + inputHelp

// OperateColumns implements the starparser operate-columns command.
func OperateColumns() error {
	var operation string
	s := newSession(OperateColumnsHelp, outputFlags)
	s.flags.StringVar(&operation, "op", "", "operation such as AngleRot+AngleTilt=Sum")
	if err := s.start(); err != nil {
		return err
	}
	a, b, op, result, err := filters.ParseColumnOperation(operation)
	if err != nil {
		return err
	}
	particles, err := filters.OperateColumns(s.star.Particles, a, b, op, result)
	if err != nil {
		return err
	}
	log.Printf("Computed %v = %v %v %v.\n", result, a, op, b)
	return s.writeParticles(particles)
}

// CopyColumnHelp is the help string for this command.
const CopyColumnHelp = "Copy-column parameters:\n" +
	"starparser copy-column star-file\n" +
	"--c source/target\n" +
	outputHelp + inputHelp

// CopyColumn implements the starparser copy-column command.
func CopyColumn() error {
	s := newSession(CopyColumnHelp, columnFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	if len(columns) != 2 {
		return fmt.Errorf("copy-column needs a source and a target column, not %v columns", len(columns))
	}
	particles, err := filters.CopyColumn(s.star.Particles, columns[0], columns[1])
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}

// ResetColumnHelp is the help string for this command.
const ResetColumnHelp = "Reset-column parameters:\n" +
	"starparser reset-column star-file\n" +
	"--c column\n" +
	"--value value\n" +
	outputHelp + inputHelp

// ResetColumn implements the starparser reset-column command.
func ResetColumn() error {
	var value string
	s := newSession(ResetColumnHelp, columnFlags|outputFlags)
	s.flags.StringVar(&value, "value", "", "new value of every row")
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	if value == "" {
		return fmt.Errorf("no value given; use --value")
	}
	particles, err := filters.ResetColumn(s.star.Particles, column, value)
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}

// ReplaceColumnHelp is the help string for this command.
const ReplaceColumnHelp = "Replace-column parameters:\n" +
	"starparser replace-column star-file\n" +
	"--c column\n" +
	"--f value-list\n" +
	outputHelp + inputHelp

// ReplaceColumn implements the starparser replace-column command.
func ReplaceColumn() error {
	return columnFromList(ReplaceColumnHelp, filters.ReplaceColumn)
}

// InsertColumnHelp is the help string for this command.
const InsertColumnHelp = "Insert-column parameters:\n" +
	"starparser insert-column star-file\n" +
	"--c column\n" +
	"--f value-list\n" +
	outputHelp + inputHelp

// InsertColumn implements the starparser insert-column command.
func InsertColumn() error {
	return columnFromList(InsertColumnHelp, filters.InsertColumn)
}

func columnFromList(help string, f func(*star.Table, string, []string) (*star.Table, error)) error {
	s := newSession(help, columnFlags|fileFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	values, err := s.readList()
	if err != nil {
		return err
	}
	particles, err := f(s.star.Particles, column, values)
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}

// SortByHelp is the help string for this command.
const SortByHelp = "Sort-by parameters:\n" +
	"starparser sort-by star-file\n" +
	"--c column\n" +
	"[--n]\n" +
	outputHelp + inputHelp

// SortBy implements the starparser sort-by command.
func SortBy() error {
	var numeric bool
	s := newSession(SortByHelp, columnFlags|outputFlags)
	s.flags.BoolVar(&numeric, "n", false, "sort numerically")
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	var particles *star.Table
	s.timedRun("Sorting by "+column, func() {
		particles, err = filters.SortBy(s.star.Particles, column, numeric)
	})
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}
