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

// DefaultHeaderScanLimit is the default size of the token window in
// which a header block must end.
const DefaultHeaderScanLimit = 10000

// ParseOptions controls how STAR files are parsed.
type ParseOptions struct {
	// Opticsless marks files that only have a data table. A
	// single-row optics table is spliced in before parsing.
	Opticsless bool

	// HeaderScanLimit bounds the number of tokens, counted from a
	// loop_ keyword, that are searched for the end of a header block.
	// A block that does not end inside the window is an error, not a
	// truncation. Zero means DefaultHeaderScanLimit, negative means
	// unbounded.
	HeaderScanLimit int
}

type scanState int

const (
	awaitingLoop scanState = iota
	readingHeaders
	readingData
)

func (state scanState) String() string {
	switch state {
	case awaitingLoop:
		return "awaiting loop_"
	case readingHeaders:
		return "reading headers"
	case readingData:
		return "reading data"
	default:
		return "unknown"
	}
}

/*
A tokenScanner walks over the whitespace-separated tokens of a STAR
file and finds the table boundaries.

Like the line scanners for SAM files, it keeps the first error and
turns every later call into a no-op, so a sequence of steps can be
checked once at the end.
*/
type tokenScanner struct {
	tokens []string
	index  int
	state  scanState
	limit  int
	err    error
}

func newTokenScanner(tokens []string, limit int) *tokenScanner {
	switch {
	case limit == 0:
		limit = DefaultHeaderScanLimit
	case limit < 0:
		limit = 0
	}
	return &tokenScanner{tokens: tokens, limit: limit}
}

func (sc *tokenScanner) fail(kind ParseErrorKind, format string, args ...interface{}) {
	if sc.err == nil {
		sc.err = parseError(kind, fmt.Sprintf(format, args...))
	}
}

func (sc *tokenScanner) find(from int, token string) int {
	for i := from; i < len(sc.tokens); i++ {
		if sc.tokens[i] == token {
			return i
		}
	}
	return -1
}

// version returns the "# version N" triplet before the first table,
// or a copy of DefaultVersion.
func (sc *tokenScanner) version() []string {
	end := sc.find(0, LoopKeyword)
	if end < 0 {
		end = len(sc.tokens)
	}
	for i := 1; i+1 < end; i++ {
		if sc.tokens[i] == "version" {
			return append([]string(nil), sc.tokens[i-1:i+2]...)
		}
	}
	return append([]string(nil), DefaultVersion...)
}

// awaitLoop moves past the next loop_ keyword.
func (sc *tokenScanner) awaitLoop(what string) {
	if sc.err != nil {
		return
	}
	if sc.state != awaitingLoop {
		sc.fail(Malformed, "looking for loop_ while %v", sc.state)
		return
	}
	loop := sc.find(sc.index, LoopKeyword)
	if loop < 0 {
		sc.fail(Malformed, "could not find the %v table; if the file has no optics table, add --opticsless", what)
		return
	}
	sc.index = loop + 1
	sc.state = readingHeaders
}

func isColumnIndex(token string) bool {
	if len(token) < 2 || token[0] != '#' {
		return false
	}
	for _, c := range token[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// readHeaders collects column names until the first token that is
// neither a column name nor the #N index after one.
func (sc *tokenScanner) readHeaders(what string) (headers []string) {
	if sc.err != nil {
		return nil
	}
	start := sc.index
	afterHeader := false
	for i := start; i < len(sc.tokens); i++ {
		if sc.limit > 0 && i-start >= sc.limit {
			sc.fail(HeaderScanLimit, "the %v header block does not end within %v tokens; raise --header-scan-limit", what, sc.limit)
			return nil
		}
		token := sc.tokens[i]
		switch {
		case strings.HasPrefix(token, "_"):
			headers = append(headers, token)
			afterHeader = true
		case afterHeader && isColumnIndex(token):
			afterHeader = false
		default:
			sc.index = i
			sc.state = readingData
			if len(headers) == 0 {
				sc.fail(Malformed, "no column headers after loop_ in the %v table", what)
			}
			return headers
		}
	}
	sc.index = len(sc.tokens)
	sc.state = readingData
	if len(headers) == 0 {
		sc.fail(Malformed, "no column headers after loop_ in the %v table", what)
	}
	return headers
}

func isDelimiter(tokens []string, i int) bool {
	token := tokens[i]
	switch {
	case token == LoopKeyword:
		return true
	case strings.HasPrefix(token, "data_"):
		return true
	case token == "#" && i+1 < len(tokens) && tokens[i+1] == "version":
		return true
	default:
		return false
	}
}

// readOpticsData returns the optics data tokens and the name of the
// table that follows. The search covers the whole token stream, so a
// large optics table is never cut off.
func (sc *tokenScanner) readOpticsData() (data []string, tableName string) {
	if sc.err != nil {
		return nil, ""
	}
	if sc.state != readingData {
		sc.fail(Malformed, "looking for optics data while %v", sc.state)
		return nil, ""
	}
	start := sc.index
	end := start
	for end < len(sc.tokens) && !isDelimiter(sc.tokens, end) {
		end++
	}
	data = sc.tokens[start:end]
	loop := sc.find(end, LoopKeyword)
	if loop < 0 {
		sc.fail(Malformed, "could not find a second table; if the file has no optics table, add --opticsless")
		return nil, ""
	}
	tableName = sc.tokens[loop-1]
	for i := end; i < loop; i++ {
		if strings.HasPrefix(sc.tokens[i], "data_") {
			tableName = sc.tokens[i]
			break
		}
	}
	sc.index = end
	sc.state = awaitingLoop
	return data, tableName
}

// remaining returns all tokens after the current position.
func (sc *tokenScanner) remaining() []string {
	if sc.err != nil {
		return nil
	}
	data := sc.tokens[sc.index:]
	sc.index = len(sc.tokens)
	return data
}

// The single-row optics table for files that have none.
const syntheticOptics = "\n# version 30000\n\ndata_optics\n\nloop_\n" +
	"_rlnOpticsGroupName #1\n_rlnOpticsGroup #2\n_rlnVoltage #3\n_rlnImagePixelSize #4\n" +
	"opticsGroup1\t1\t300.000000\t1.000000\n\n\n# version 30000\n\n"

// spliceOptics prepends a synthetic optics table to a file that only
// has a data table, keeping the data_ keyword that names it.
func spliceOptics(text string) string {
	loop := strings.Index(text, LoopKeyword)
	if loop < 0 {
		return text
	}
	tableName := defaultTableName
	for _, token := range strings.Fields(text[:loop]) {
		if strings.HasPrefix(token, "data_") {
			tableName = token
		}
	}
	return syntheticOptics + tableName + "\n\n" + text[loop:]
}

// Parse parses the text of a STAR file.
func Parse(text string, options ParseOptions) (*Star, error) {
	if options.Opticsless {
		text = spliceOptics(text)
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, parseError(Malformed, "empty file")
	}
	sc := newTokenScanner(tokens, options.HeaderScanLimit)
	version := sc.version()
	sc.awaitLoop("optics")
	opticsHeaders := sc.readHeaders("optics")
	opticsTokens, tableName := sc.readOpticsData()
	sc.awaitLoop("data")
	particleHeaders := sc.readHeaders("data")
	particleTokens := sc.remaining()
	if sc.err != nil {
		return nil, sc.err
	}
	optics, err := Materialize(opticsHeaders, opticsTokens)
	if err != nil {
		return nil, err
	}
	particles, err := Materialize(particleHeaders, particleTokens)
	if err != nil {
		return nil, err
	}
	return &Star{
		Metadata: Metadata{
			Version:   version,
			Optics:    optics,
			TableName: tableName,
		},
		Particles: particles,
	}, nil
}
