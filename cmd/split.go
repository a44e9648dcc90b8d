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
	"log"
	"path/filepath"

	"github.com/exascience/starparser/filters"
	"github.com/exascience/starparser/internal"
)

// RegroupHelp is the help string for this command.
const RegroupHelp = "Regroup parameters:\n" +
	"starparser regroup star-file\n" +
	"--n particles-per-group\n" +
	outputHelp + inputHelp

// Regroup implements the starparser regroup command.
func Regroup() error {
	var n int
	s := newSession(RegroupHelp, outputFlags)
	s.flags.IntVar(&n, "n", 0, "number of particles per group")
	if err := s.start(); err != nil {
		return err
	}
	particles, groups, err := filters.Regroup(s.star.Particles, n)
	if err != nil {
		return err
	}
	log.Printf("Regrouped %v particles into %v groups by defocus.\n", particles.Len(), groups)
	return s.writeParticles(particles)
}

// SplitHelp is the help string for this command.
const SplitHelp = "Split parameters:\n" +
	"starparser split star-file\n" +
	"--n nr-of-parts\n" +
	outputHelp + inputHelp

// Split implements the starparser split command. The parts are
// written next to the output file, with a _split<i> suffix. Particles
// of the same micrograph always end up in the same part.
func Split() error {
	var n int
	s := newSession(SplitHelp, outputFlags)
	s.flags.IntVar(&n, "n", 0, "number of parts")
	if err := s.start(); err != nil {
		return err
	}
	var parts []*filters.Part
	tables, err := filters.SplitParts(s.star.Particles, n)
	if err != nil {
		return err
	}
	if len(tables) < n {
		log.Printf("Warning: only %v parts could be made without splitting micrographs.\n", len(tables))
	}
	for i, table := range tables {
		parts = append(parts, &filters.Part{Key: internal.FormatInt(i + 1), Star: s.star.WithParticles(table)})
	}
	return s.writeParts(parts, func(part *filters.Part) string {
		return s.derivedName("_split" + part.Key)
	})
}

// SplitClassesHelp is the help string for this command.
const SplitClassesHelp = "Split-classes parameters:\n" +
	"starparser split-classes star-file\n" +
	outputHelp + inputHelp

// SplitClasses implements the starparser split-classes command. Each
// class is written next to the output file, with a _class<nr> suffix.
func SplitClasses() error {
	s := newSession(SplitClassesHelp, outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	parts, err := filters.SplitByClass(s.star)
	if err != nil {
		return err
	}
	return s.writeParts(partPointers(parts), func(part *filters.Part) string {
		return s.derivedName("_class" + part.Key)
	})
}

// SplitOpticsHelp is the help string for this command.
const SplitOpticsHelp = "Split-optics parameters:\n" +
	"starparser split-optics star-file\n" +
	outputHelp + inputHelp

// SplitOptics implements the starparser split-optics command. Each
// optics group is written to a file named after the group, in the
// directory of the output file.
func SplitOptics() error {
	s := newSession(SplitOpticsHelp, outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	parts, err := filters.SplitByOptics(s.star)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.output)
	return s.writeParts(partPointers(parts), func(part *filters.Part) string {
		return filepath.Join(dir, part.Key+".star"+internal.CompressionExt(s.output))
	})
}

func partPointers(parts []filters.Part) []*filters.Part {
	result := make([]*filters.Part, len(parts))
	for i := range parts {
		result[i] = &parts[i]
	}
	return result
}

func (s *session) writeParts(parts []*filters.Part, name func(*filters.Part) string) error {
	outputs := make([]output, len(parts))
	for i, part := range parts {
		outputs[i] = output{name(part), part.Star}
	}
	if err := s.writeAll(outputs...); err != nil {
		return err
	}
	log.Printf("Wrote %v files.\n", len(parts))
	return nil
}
