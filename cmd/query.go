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
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/exascience/starparser/filters"
	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
)

// CountHelp is the help string for this command.
const CountHelp = "Count parameters:\n" +
	"starparser count star-file\n" +
	queryHelp + inputHelp

// Count implements the starparser count command.
func Count() error {
	s := newSession(CountHelp, queryFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	n, err := filters.Count(s.star.Particles, column, queries, s.context())
	if err != nil {
		return err
	}
	log.Printf("There are %v particles that match %v in %v.\n", n, strings.Join(queries, ", "), column)
	fmt.Println(n)
	return nil
}

// CountMicsHelp is the help string for this command.
const CountMicsHelp = "Count-mics parameters:\n" +
	"starparser count-mics star-file\n" +
	inputHelp

// CountMics implements the starparser count-mics command.
func CountMics() error {
	s := newSession(CountMicsHelp, 0)
	if err := s.start(); err != nil {
		return err
	}
	n, err := filters.CountMics(s.star.Particles)
	if err != nil {
		return err
	}
	log.Printf("There are %v unique micrographs in %v.\n", n, s.input)
	fmt.Println(n)
	return nil
}

// ExtractHelp is the help string for this command.
const ExtractHelp = "Extract parameters:\n" +
	"starparser extract star-file\n" +
	queryHelp + outputHelp + inputHelp

// Extract implements the starparser extract command.
func Extract() error {
	s := newSession(ExtractHelp, queryFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	particles, err := filters.Extract(s.star.Particles, column, queries, s.context())
	if err != nil {
		return err
	}
	log.Printf("Extracted %v of %v particles.\n", particles.Len(), s.star.Particles.Len())
	return s.writeParticles(particles)
}

// RemoveParticlesHelp is the help string for this command.
const RemoveParticlesHelp = "Remove-particles parameters:\n" +
	"starparser remove-particles star-file\n" +
	queryHelp + outputHelp + inputHelp

// RemoveParticles implements the starparser remove-particles command.
func RemoveParticles() error {
	s := newSession(RemoveParticlesHelp, queryFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	particles, err := filters.Remove(s.star.Particles, column, queries, s.context())
	if err != nil {
		return err
	}
	log.Printf("Removed %v of %v particles.\n", s.star.Particles.Len()-particles.Len(), s.star.Particles.Len())
	return s.writeParticles(particles)
}

// RemoveDuplicatesHelp is the help string for this command.
const RemoveDuplicatesHelp = "Remove-duplicates parameters:\n" +
	"starparser remove-duplicates star-file\n" +
	"[--c column]\n" +
	outputHelp + inputHelp

// RemoveDuplicates implements the starparser remove-duplicates command.
func RemoveDuplicates() error {
	s := newSession(RemoveDuplicatesHelp, columnFlags|outputFlags)
	s.columns = star.ImageName
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	particles, removed, err := filters.RemoveDuplicates(s.star.Particles, column)
	if err != nil {
		return err
	}
	log.Printf("Removed %v duplicate particles.\n", removed)
	return s.writeParticles(particles)
}

// RemoveMicsHelp is the help string for this command.
const RemoveMicsHelp = "Remove-mics parameters:\n" +
	"starparser remove-mics star-file\n" +
	"--f micrograph-list\n" +
	outputHelp + inputHelp

// RemoveMics implements the starparser remove-mics command.
func RemoveMics() error {
	return selectMics(RemoveMicsHelp, "Removed", filters.RemoveMics)
}

// KeepMicsHelp is the help string for this command.
const KeepMicsHelp = "Keep-mics parameters:\n" +
	"starparser keep-mics star-file\n" +
	"--f micrograph-list\n" +
	outputHelp + inputHelp

// KeepMics implements the starparser keep-mics command.
func KeepMics() error {
	return selectMics(KeepMicsHelp, "Kept", filters.KeepMics)
}

func selectMics(help, verb string, f func(*star.Table, []string) (*star.Table, error)) error {
	s := newSession(help, fileFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	mics, err := s.readList()
	if err != nil {
		return err
	}
	particles, err := f(s.star.Particles, mics)
	if err != nil {
		return err
	}
	log.Printf("%v particles on %v listed micrographs; %v of %v particles remain.\n", verb, len(mics), particles.Len(), s.star.Particles.Len())
	return s.writeParticles(particles)
}

// LimitHelp is the help string for this command.
const LimitHelp = "Limit parameters:\n" +
	"starparser limit star-file\n" +
	"--c column\n" +
	"--cmp [lt | gt | le | ge]\n" +
	"--value number\n" +
	outputHelp + inputHelp

// Limit implements the starparser limit command.
func Limit() error {
	var cmp, value string
	s := newSession(LimitHelp, columnFlags|outputFlags)
	s.flags.StringVar(&cmp, "cmp", "", "comparison")
	s.flags.StringVar(&value, "value", "", "limit to compare against")
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	comparison, err := filters.ParseComparison(cmp)
	if err != nil {
		return err
	}
	limit, ok := internal.ParseFloat(value)
	if !ok {
		return fmt.Errorf("invalid --value %q", value)
	}
	particles, err := filters.Limit(s.star.Particles, column, comparison, limit)
	if err != nil {
		return err
	}
	log.Printf("Kept %v of %v particles with %v %v %v.\n", particles.Len(), s.star.Particles.Len(), column, comparison, value)
	return s.writeParticles(particles)
}

// ExtractRandomHelp is the help string for this command.
const ExtractRandomHelp = "Extract-random parameters:\n" +
	"starparser extract-random star-file\n" +
	"--n number\n" +
	"[--seed number]\n" +
	outputHelp + inputHelp

// ExtractRandom implements the starparser extract-random command.
func ExtractRandom() error {
	var (
		n    int
		seed int64
	)
	s := newSession(ExtractRandomHelp, outputFlags)
	s.flags.IntVar(&n, "n", 0, "number of particles to extract")
	s.flags.Int64Var(&seed, "seed", 1, "seed of the random selection")
	if err := s.start(); err != nil {
		return err
	}
	particles, err := filters.ExtractRandom(s.star.Particles, n, seed)
	if err != nil {
		return err
	}
	log.Printf("Extracted %v random particles.\n", particles.Len())
	return s.writeParticles(particles)
}

// ExtractIndicesHelp is the help string for this command.
const ExtractIndicesHelp = "Extract-indices parameters:\n" +
	"starparser extract-indices star-file\n" +
	"--f index-list\n" +
	outputHelp + inputHelp

// ExtractIndices implements the starparser extract-indices command.
func ExtractIndices() error {
	s := newSession(ExtractIndicesHelp, fileFlags|outputFlags)
	if err := s.start(); err != nil {
		return err
	}
	indices, err := s.readList()
	if err != nil {
		return err
	}
	particles, err := filters.ExtractIndices(s.star.Particles, indices)
	if err != nil {
		return err
	}
	log.Printf("Extracted %v particles by index.\n", particles.Len())
	return s.writeParticles(particles)
}

// ClassProportionHelp is the help string for this command.
const ClassProportionHelp = "Class-proportion parameters:\n" +
	"starparser class-proportion star-file\n" +
	"--c column\n" +
	"--q query1/query2/...\n" +
	"[--e]\n" +
	inputHelp

// ClassProportion implements the starparser class-proportion command.
func ClassProportion() error {
	s := newSession(ClassProportionHelp, queryFlags)
	if err := s.start(); err != nil {
		return err
	}
	column, queries, err := s.query()
	if err != nil {
		return err
	}
	shares, err := filters.ClassProportion(s.star.Particles, column, queries, s.context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprint(w, "Class\tParticles")
	for _, q := range queries {
		fmt.Fprintf(w, "\t%v", q)
	}
	fmt.Fprintln(w)
	for _, share := range shares {
		fmt.Fprintf(w, "%v\t%v", share.Class, share.Total)
		for _, m := range share.Matches {
			fmt.Fprintf(w, "\t%.1f%%", 100*float64(m)/float64(share.Total))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// ListColumnHelp is the help string for this command.
const ListColumnHelp = "List-column parameters:\n" +
	"starparser list-column star-file\n" +
	"--c column1/column2/...\n" +
	"[--o output-directory]\n" +
	inputHelp

// ListColumn implements the starparser list-column command. Each
// column is written to a file named after it.
func ListColumn() error {
	var dir string
	s := newSession(ListColumnHelp, columnFlags)
	s.flags.StringVar(&dir, "o", ".", "output directory")
	if err := s.start(); err != nil {
		return err
	}
	columns, err := s.columnList()
	if err != nil {
		return err
	}
	lists, err := filters.ListColumns(s.star.Particles, columns)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	for i, column := range columns {
		name := filepath.Join(dir, star.BareName(column)+".txt")
		if err := star.WriteValueList(name, lists[i]); err != nil {
			return err
		}
		log.Printf("Wrote %v values of %v to %v.\n", len(lists[i]), column, name)
	}
	return nil
}

// DescribeHelp is the help string for this command.
const DescribeHelp = "Describe parameters:\n" +
	"starparser describe star-file\n" +
	"--c column\n" +
	"[--bins nr]\n" +
	inputHelp

// Describe implements the starparser describe command.
func Describe() error {
	var bins int
	s := newSession(DescribeHelp, columnFlags)
	s.flags.IntVar(&bins, "bins", 20, "number of histogram bins")
	if err := s.start(); err != nil {
		return err
	}
	column, err := s.column()
	if err != nil {
		return err
	}
	summary, err := filters.Describe(s.star.Particles, column, bins)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, summary)
	return nil
}

func printSummary(out io.Writer, summary *filters.Summary) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%v\t\n", summary.Column)
	fmt.Fprintf(w, "count\t%v\t\n", summary.Count)
	fmt.Fprintf(w, "mean\t%v\t\n", internal.FormatFloat(summary.Mean))
	fmt.Fprintf(w, "std\t%v\t\n", internal.FormatFloat(summary.StdDev))
	fmt.Fprintf(w, "min\t%v\t\n", internal.FormatFloat(summary.Min))
	fmt.Fprintf(w, "max\t%v\t\n", internal.FormatFloat(summary.Max))
	fmt.Fprintln(w, "\t\t")
	for i, count := range summary.Counts {
		fmt.Fprintf(w, "[%v, %v)\t%v\t\n",
			strconv.FormatFloat(summary.Dividers[i], 'g', 6, 64),
			strconv.FormatFloat(summary.Dividers[i+1], 'g', 6, 64),
			count)
	}
	_ = w.Flush()
}
