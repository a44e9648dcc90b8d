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
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/exascience/starparser/filters"
	"github.com/exascience/starparser/internal"
	"github.com/exascience/starparser/star"
)

type flagGroup int

const (
	outputFlags flagGroup = 1 << iota
	columnFlags
	queryFlags
	fileFlags
	distanceFlags
)

const inputHelp = "[--opticsless]\n" +
	"[--header-scan-limit nr]\n" +
	"[--log-path path]\n" +
	"[--timed]\n" +
	"[--profile prefix]\n"

const outputHelp = "[--o output.star]\n" +
	"[--relegate]\n"

const queryHelp = "--c column\n" +
	"--q query1/query2/...\n" +
	"[--e]\n"

// A session holds the command line settings and the input of one run
// of a command.
type session struct {
	help  string
	flags flag.FlagSet

	input, output, file, columns, queries string
	exact, opticsless, relegate           bool
	headerScanLimit                       int
	distance                              float64

	logPath, profile string
	timed            bool
	phase            int64

	star *star.Star
}

func newSession(help string, groups flagGroup) *session {
	s := &session{help: help}
	flags := &s.flags
	flags.BoolVar(&s.opticsless, "opticsless", false, "the input has no optics table")
	flags.IntVar(&s.headerScanLimit, "header-scan-limit", star.DefaultHeaderScanLimit, "number of tokens in which a header block must end")
	flags.StringVar(&s.logPath, "log-path", "", "write a log file below this directory")
	flags.BoolVar(&s.timed, "timed", false, "log the time of each phase")
	flags.StringVar(&s.profile, "profile", "", "write CPU profiles with this file prefix")
	if groups&outputFlags != 0 {
		flags.StringVar(&s.output, "o", "output.star", "output file")
		flags.BoolVar(&s.relegate, "relegate", false, "write the output without optics table")
	}
	if groups&columnFlags != 0 || groups&queryFlags != 0 {
		flags.StringVar(&s.columns, "c", "", "column names, separated by /")
	}
	if groups&queryFlags != 0 {
		flags.StringVar(&s.queries, "q", "", "query terms, separated by /")
		flags.BoolVar(&s.exact, "e", false, "match query terms exactly")
	}
	if groups&fileFlags != 0 {
		flags.StringVar(&s.file, "f", "", "second input file")
	}
	if groups&distanceFlags != 0 {
		flags.Float64Var(&s.distance, "distance", 0, "distance in pixels")
	}
	return s
}

func (s *session) fail() {
	fmt.Fprint(os.Stderr, s.help)
	os.Exit(1)
}

// start parses the command line, checks the files it names, and reads
// the input STAR file.
func (s *session) start() error {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		s.fail()
	}
	s.input = getFilename(os.Args[2], s.help)
	parseFlags(&s.flags, 3, s.help)

	if s.logPath != "" {
		if err := setLogOutput(s.logPath); err != nil {
			return err
		}
	}

	// sanity checks

	sanityChecksFailed := !checkExist("", s.input)
	if s.file != "" && !checkExist("--f", s.file) {
		sanityChecksFailed = true
	}
	if s.output != "" && !checkCreate("--o", s.output) {
		sanityChecksFailed = true
	}
	if s.headerScanLimit < 0 {
		log.Println("Error: Invalid header-scan-limit:", s.headerScanLimit)
		sanityChecksFailed = true
	}
	if !checkDistance("--distance", s.distance) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		s.fail()
	}

	log.Println("Executing command:\n", strings.Join(os.Args, " "))

	var err error
	s.timedRun("Reading "+s.input, func() {
		s.star, err = star.ReadFile(s.input, s.parseOptions())
	})
	if err != nil {
		return err
	}
	log.Printf("Read %v rows from %v.\n", s.star.Particles.Len(), s.input)
	return nil
}

func (s *session) timedRun(msg string, f func()) {
	s.phase++
	timedRun(s.timed, s.profile, msg, s.phase, f)
}

func (s *session) parseOptions() star.ParseOptions {
	return star.ParseOptions{Opticsless: s.opticsless, HeaderScanLimit: s.headerScanLimit}
}

func (s *session) context() filters.RunContext {
	return filters.RunContext{
		Exact:      s.exact,
		Relegate:   s.relegate || s.opticsless,
		Opticsless: s.opticsless,
	}
}

// columnList returns the canonical names of the columns given with --c.
func (s *session) columnList() ([]string, error) {
	if s.columns == "" {
		return nil, errors.New("no column given; use --c")
	}
	return star.CanonicalColumns(filters.ParseList(s.columns))
}

func (s *session) column() (string, error) {
	columns, err := s.columnList()
	if err != nil {
		return "", err
	}
	return filters.SingleColumn(columns)
}

func (s *session) queryList() ([]string, error) {
	if s.queries == "" {
		return nil, errors.New("no query given; use --q")
	}
	return filters.ParseList(s.queries), nil
}

// query returns the column and terms given with --c and --q.
func (s *session) query() (string, []string, error) {
	column, err := s.column()
	if err != nil {
		return "", nil, err
	}
	queries, err := s.queryList()
	return column, queries, err
}

func (s *session) secondFile() (string, error) {
	if s.file == "" {
		return "", errors.New("no second file given; use --f")
	}
	return s.file, nil
}

// readSecond reads the STAR file given with --f. It always has its
// own optics table, even when the main input has none.
func (s *session) readSecond() (result *star.Star, err error) {
	name, err := s.secondFile()
	if err != nil {
		return nil, err
	}
	s.timedRun("Reading "+name, func() {
		result, err = star.ReadFile(name, star.ParseOptions{HeaderScanLimit: s.headerScanLimit})
	})
	return result, err
}

// readList reads the value list given with --f.
func (s *session) readList() ([]string, error) {
	name, err := s.secondFile()
	if err != nil {
		return nil, err
	}
	return star.ReadValueList(name)
}

// derivedName returns a file name next to the output file, with the
// suffix added to its stem.
func (s *session) derivedName(suffix string) string {
	return filepath.Join(filepath.Dir(s.output), internal.Stem(s.output)+suffix+".star"+internal.CompressionExt(s.output))
}

// An output is a STAR file to be written by a command.
type output struct {
	name string
	star *star.Star
}

// prepare relegates a result when the run requires it, and checks it.
func (s *session) prepare(result *star.Star) (*star.Star, error) {
	if s.context().Relegate {
		return filters.Relegate(result)
	}
	if err := result.Validate(); err != nil {
		var dangling *star.DanglingOpticsError
		if !errors.As(err, &dangling) {
			return nil, err
		}
		log.Printf("Warning: %v.\n", err)
	}
	return result, nil
}

// writeAll writes the outputs of a command. All outputs are checked
// before the first one is written.
func (s *session) writeAll(outputs ...output) (err error) {
	seen := make(map[string]bool)
	prepared := make([]*star.Star, len(outputs))
	for i, out := range outputs {
		if seen[out.name] {
			return fmt.Errorf("two outputs would be written to %v", out.name)
		}
		seen[out.name] = true
		if out.star.Particles.Len() == 0 {
			return fmt.Errorf("%w for %v", star.ErrEmptyTable, out.name)
		}
		if prepared[i], err = s.prepare(out.star); err != nil {
			return err
		}
	}
	relegate := s.context().Relegate
	for i, out := range outputs {
		s.timedRun("Writing "+out.name, func() {
			err = star.WriteFile(out.name, prepared[i], relegate)
		})
		if err != nil {
			return err
		}
		log.Printf("Output star file: %v (%v rows)\n", out.name, prepared[i].Particles.Len())
	}
	return nil
}

func (s *session) writeAs(name string, result *star.Star) error {
	return s.writeAll(output{name, result})
}

func (s *session) write(result *star.Star) error {
	return s.writeAs(s.output, result)
}

func (s *session) writeParticles(particles *star.Table) error {
	return s.write(s.star.WithParticles(particles))
}
