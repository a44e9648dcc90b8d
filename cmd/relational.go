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

const secondFileHelp = "--f second-star-file\n"

// ExtractMinHelp is the help string for this command.
const ExtractMinHelp = "Extract-min parameters:\n" +
	"starparser extract-min star-file\n" +
	"--min nr\n" +
	outputHelp + inputHelp

// ExtractMin implements the starparser extract-min command.
func ExtractMin() error {
	var minimum int
	s := newSession(ExtractMinHelp, outputFlags)
	s.flags.IntVar(&minimum, "min", 0, "minimum number of particles per micrograph")
	if err := s.start(); err != nil {
		return err
	}
	particles, dropped, err := filters.ExtractWithMin(s.star.Particles, minimum)
	if err != nil {
		return err
	}
	log.Printf("Removed %v micrographs with at most %v particles; %v particles remain.\n", dropped, minimum, particles.Len())
	return s.writeParticles(particles)
}

// ExtractClustersHelp is the help string for this command.
const ExtractClustersHelp = "Extract-clusters parameters:\n" +
	"starparser extract-clusters star-file\n" +
	"--distance pixels\n" +
	"--min nr\n" +
	outputHelp + inputHelp

// ExtractClusters implements the starparser extract-clusters command.
func ExtractClusters() error {
	var minimum int
	s := newSession(ExtractClustersHelp, outputFlags|distanceFlags)
	s.flags.IntVar(&minimum, "min", 1, "minimum number of neighbors in a cluster")
	if err := s.start(); err != nil {
		return err
	}
	particles, err := filters.Cluster(s.star.Particles, s.distance, minimum)
	if err != nil {
		return err
	}
	log.Printf("Kept %v of %v particles with at least %v neighbors within %v pixels.\n", particles.Len(), s.star.Particles.Len(), minimum, s.distance)
	return s.writeParticles(particles)
}

// ExtractIfNearbyHelp is the help string for this command.
const ExtractIfNearbyHelp = "Extract-if-nearby parameters:\n" +
	"starparser extract-if-nearby star-file\n" +
	secondFileHelp +
	"--distance pixels\n" +
	outputHelp + inputHelp

// ExtractIfNearby implements the starparser extract-if-nearby command.
// Particles without a close neighbor are written next to the output
// file with a _far suffix.
func ExtractIfNearby() error {
	s := newSession(ExtractIfNearbyHelp, fileFlags|outputFlags|distanceFlags)
	if err := s.start(); err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	result, err := filters.FindNearby(s.star.Particles, other.Particles, s.distance)
	if err != nil {
		return err
	}
	log.Printf("%v particles are close, %v are far, and %v lie on micrographs missing from %v.\n",
		result.Close.Len(), result.Far.Len(), result.Unmatched.Len(), s.file)
	if result.Close.Len() == 0 {
		return fmt.Errorf("no particle lies within %v of a particle in %v (%v far, %v unmatched): %w",
			s.distance, s.file, result.Far.Len(), result.Unmatched.Len(), filters.ErrEmptyResult)
	}
	outputs := []output{{s.output, s.star.WithParticles(result.Close)}}
	if result.Far.Len() > 0 {
		outputs = append(outputs, output{s.derivedName("_far"), s.star.WithParticles(result.Far)})
	}
	return s.writeAll(outputs...)
}

// FetchFromNearbyHelp is the help string for this command.
const FetchFromNearbyHelp = "Fetch-from-nearby parameters:\n" +
	"starparser fetch-from-nearby star-file\n" +
	secondFileHelp +
	"--c column1/column2/...\n" +
	"--distance pixels\n" +
	outputHelp + inputHelp

// FetchFromNearby implements the starparser fetch-from-nearby command.
func FetchFromNearby() error {
	s := newSession(FetchFromNearbyHelp, fileFlags|columnFlags|outputFlags|distanceFlags)
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	particles, far, unmatched, err := filters.FetchNearby(s.star.Particles, other.Particles, s.distance, columns)
	if err != nil {
		return err
	}
	log.Printf("Fetched values for %v particles; dropped %v far and %v unmatched particles.\n", particles.Len(), far, unmatched)
	return s.writeParticles(particles)
}

// FindSharedHelp is the help string for this command.
const FindSharedHelp = "Find-shared parameters:\n" +
	"starparser find-shared star-file\n" +
	secondFileHelp +
	"--c column\n" +
	outputHelp + inputHelp

// FindShared implements the starparser find-shared command. Rows
// whose value is missing from the second file are written next to the
// output file with a _unique suffix.
func FindShared() error {
	s := newSession(FindSharedHelp, fileFlags|columnFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	shared, unique, uniqueInOther, err := filters.FindShared(s.star.Particles, other.Particles, column)
	if err != nil {
		return err
	}
	log.Printf("%v rows are shared, %v are unique to %v, and %v are unique to %v.\n",
		shared.Len(), unique.Len(), s.input, uniqueInOther, s.file)
	if shared.Len() == 0 {
		return fmt.Errorf("no value of %v in %v occurs in %v: %w", column, s.input, s.file, filters.ErrEmptyResult)
	}
	outputs := []output{{s.output, s.star.WithParticles(shared)}}
	if unique.Len() > 0 {
		outputs = append(outputs, output{s.derivedName("_unique"), s.star.WithParticles(unique)})
	}
	return s.writeAll(outputs...)
}

// MatchMicsHelp is the help string for this command.
const MatchMicsHelp = "Match-mics parameters:\n" +
	"starparser match-mics star-file\n" +
	secondFileHelp +
	outputHelp + inputHelp

// MatchMics implements the starparser match-mics command.
func MatchMics() error {
	s := newSession(MatchMicsHelp, fileFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	particles, err := filters.MatchMics(s.star.Particles, other.Particles)
	if err != nil {
		return err
	}
	log.Printf("Kept %v of %v particles on micrographs of %v.\n", particles.Len(), s.star.Particles.Len(), s.file)
	return s.writeParticles(particles)
}

// ImportMicValuesHelp is the help string for this command.
const ImportMicValuesHelp = "Import-mic-values parameters:\n" +
	"starparser import-mic-values star-file\n" +
	secondFileHelp +
	"--c column1/column2/...\n" +
	outputHelp + inputHelp

// ImportMicValues implements the starparser import-mic-values command.
func ImportMicValues() error {
	return importValues(ImportMicValuesHelp, "micrographs", filters.ImportMicValues)
}

// ImportParticleValuesHelp is the help string for this command.
const ImportParticleValuesHelp = "Import-particle-values parameters:\n" +
	"starparser import-particle-values star-file\n" +
	secondFileHelp +
	"--c column1/column2/...\n" +
	outputHelp + inputHelp

// ImportParticleValues implements the starparser import-particle-values
// command.
func ImportParticleValues() error {
	return importValues(ImportParticleValuesHelp, "particles", filters.ImportParticleValues)
}

func importValues(help, what string, f func(a, b *star.Table, columns []string) (*star.Table, int, error)) error {
	s := newSession(help, fileFlags|columnFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	particles, unmatched, err := f(s.star.Particles, other.Particles, columns)
	if err != nil {
		return err
	}
	if unmatched > 0 {
		log.Printf("Warning: %v particles have no matching %v in %v and keep their values.\n", unmatched, what, s.file)
	}
	return s.writeParticles(particles)
}

// SwapColumnsHelp is the help string for this command.
const SwapColumnsHelp = "Swap-columns parameters:\n" +
	"starparser swap-columns star-file\n" +
	secondFileHelp +
	"--c column1/column2/...\n" +
	outputHelp + inputHelp

// SwapColumns implements the starparser swap-columns command.
func SwapColumns() error {
	s := newSession(SwapColumnsHelp, fileFlags|columnFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	other, err := s.readSecond()
	if err != nil {
		return err
	}
	particles, err := filters.SwapColumns(s.star.Particles, other.Particles, columns)
	if err != nil {
		return err
	}
	return s.writeParticles(particles)
}
