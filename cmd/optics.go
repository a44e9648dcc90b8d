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
	"strings"

	"github.com/exascience/starparser/filters"
)

// RelegateHelp is the help string for this command.
const RelegateHelp = "Relegate parameters:\n" +
	"starparser relegate star-file\n" +
	"[--o output.star]\n" +
	inputHelp

// Relegate implements the starparser relegate command. It writes the
// input without optics table, for RELION 3.0 and older.
func Relegate() error {
	s := newSession(RelegateHelp, outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	s.relegate = true
	return s.write(s.star)
}

// NewOpticsHelp is the help string for this command.
const NewOpticsHelp = "New-optics parameters:\n" +
	"starparser new-optics star-file\n" +
	"--name optics-group-name\n" +
	queryHelp + outputHelp + inputHelp

// NewOptics implements the starparser new-optics command.
func NewOptics() error {
	var name string
	s := newSession(NewOpticsHelp, queryFlags|outputFlags)
	s.flags.StringVar(&name, "name", "", "name of the new optics group")
	if err := s.start(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("no optics group name given; use --name")
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	result, moved, err := filters.NewOpticsGroup(s.star, name, column, queries, s.context())
	if err != nil {
		return err
	}
	log.Printf("Moved %v particles into the new optics group %v.\n", moved, name)
	return s.write(result)
}

// SwapOpticsHelp is the help string for this command.
const SwapOpticsHelp = "Swap-optics parameters:\n" +
	"starparser swap-optics star-file\n" +
	"--f second-star-file\n" +
	outputHelp + inputHelp

// SwapOptics implements the starparser swap-optics command.
func SwapOptics() error {
	s := newSession(SwapOpticsHelp, fileFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	result, dangling, err := filters.SwapOptics(s.star, other)
	if err != nil {
		return err
	}
	if len(dangling) > 0 {
		log.Printf("Warning: the optics table of %v lacks optics groups %v.\n", s.file, strings.Join(dangling, ", "))
	}
	return s.write(result)
}

// InsertOpticsColumnHelp is the help string for this command.
const InsertOpticsColumnHelp = "Insert-optics-column parameters:\n" +
	"starparser insert-optics-column star-file\n" +
	"--c column\n" +
	"--value value\n" +
	outputHelp + inputHelp

// InsertOpticsColumn implements the starparser insert-optics-column
// command.
func InsertOpticsColumn() error {
	var value string
	s := newSession(InsertOpticsColumnHelp, columnFlags|outputFlags)
	s.flags.StringVar(&value, "value", "", "value for every optics group")
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
	result, err := filters.InsertOpticsColumn(s.star, column, value)
	if err != nil {
		return err
	}
	return s.write(result)
}

// ExtractOpticsHelp is the help string for this command.
const ExtractOpticsHelp = "Extract-optics parameters:\n" +
	"starparser extract-optics star-file\n" +
	queryHelp + outputHelp + inputHelp

// ExtractOptics implements the starparser extract-optics command. The
// query is applied to a column of the optics table.
func ExtractOptics() error {
	s := newSession(ExtractOpticsHelp, queryFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	result, err := filters.ExtractOptics(s.star, column, queries, s.context())
	if err != nil {
		return err
	}
	log.Printf("Kept %v optics groups with %v particles.\n", result.Optics.Len(), result.Particles.Len())
	return s.write(result)
}

// ExpandOpticsHelp is the help string for this command.
const ExpandOpticsHelp = "Expand-optics parameters:\n" +
	"starparser expand-optics star-file\n" +
	"--f second-star-file\n" +
	"--group optics-group-number\n" +
	outputHelp + inputHelp

// ExpandOptics implements the starparser expand-optics command.
func ExpandOptics() error {
	var group string
	s := newSession(ExpandOpticsHelp, fileFlags|outputFlags)
	s.flags.StringVar(&group, "group", "", "optics group to expand")
	if err := s.start(); err != nil {
		return err
	}
	if group == "" {
		return fmt.Errorf("no optics group given; use --group")
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	result, moved, err := filters.ExpandOptics(s.star, other, group)
	if err != nil {
		return err
	}
	log.Printf("Reassigned %v particles of optics group %v.\n", moved, group)
	return s.write(result)
}
