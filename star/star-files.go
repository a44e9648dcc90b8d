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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/exascience/starparser/internal"
)

// IsStdin reports whether the given file name denotes standard input.
func IsStdin(name string) bool {
	return name == "-" || name == "/dev/stdin"
}

// IsStdout reports whether the given file name denotes standard output.
func IsStdout(name string) bool {
	return name == "-" || name == "/dev/stdout"
}

func mapFile(name string) (text string, err error) {
	file, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	info, err := file.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return "", err
	}
	// The mapping is released below, so the text must be a copy.
	text = string(mm)
	return text, mm.Unmap()
}

func readCompressed(name string, decompress func(io.Reader) (io.ReadCloser, error)) (text string, err error) {
	file, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	rc, err := decompress(bufio.NewReader(file))
	if err != nil {
		return "", err
	}
	defer func() {
		if nerr := rc.Close(); err == nil {
			err = nerr
		}
	}()
	var b strings.Builder
	if _, err = io.Copy(&b, rc); err != nil {
		return "", err
	}
	return b.String(), nil
}

func gzipReader(r io.Reader) (io.ReadCloser, error) {
	return pgzip.NewReader(r)
}

func zstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// ReadText returns the full text of a file. Files ending in .gz or
// .zst are decompressed, and "-" reads standard input.
func ReadText(name string) (string, error) {
	if IsStdin(name) {
		bytes, err := io.ReadAll(os.Stdin)
		return string(bytes), err
	}
	switch internal.CompressionExt(name) {
	case ".gz":
		return readCompressed(name, gzipReader)
	case ".zst":
		return readCompressed(name, zstdReader)
	default:
		return mapFile(name)
	}
}

// ReadFile parses the named STAR file.
func ReadFile(name string, options ParseOptions) (*Star, error) {
	text, err := ReadText(name)
	if err != nil {
		return nil, err
	}
	star, err := Parse(text, options)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Name = name
		}
		return nil, err
	}
	return star, nil
}

// ReadValueList reads a newline-separated list of values, as used for
// micrograph name lists and index lists. Only the first field of each
// line is used, and blank lines are skipped.
func ReadValueList(name string) ([]string, error) {
	text, err := ReadText(name)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, line := range strings.Split(text, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			values = append(values, fields[0])
		}
	}
	return values, nil
}

// An OutputFile is written to a temporary file next to its final
// destination, and only renamed into place by Close. Abort discards
// it, so a failed command never leaves a truncated STAR file behind.
type OutputFile struct {
	*bufio.Writer
	name, temp string
	file       *os.File
	compressor io.WriteCloser
}

// Create opens a new output file. Names ending in .gz or .zst are
// compressed, and "-" writes to standard output.
func Create(name string) (*OutputFile, error) {
	if IsStdout(name) {
		return &OutputFile{Writer: bufio.NewWriter(os.Stdout), name: name}, nil
	}
	dir, base := filepath.Split(name)
	temp := filepath.Join(dir, "."+base+"."+uuid.New().String()+".tmp")
	file, err := os.Create(temp)
	if err != nil {
		return nil, err
	}
	output := &OutputFile{name: name, temp: temp, file: file}
	switch internal.CompressionExt(name) {
	case ".gz":
		output.compressor = pgzip.NewWriter(file)
	case ".zst":
		enc, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			_ = os.Remove(temp)
			return nil, err
		}
		output.compressor = enc
	}
	if output.compressor != nil {
		output.Writer = bufio.NewWriter(output.compressor)
	} else {
		output.Writer = bufio.NewWriter(file)
	}
	return output, nil
}

// Name returns the final name of the output file.
func (output *OutputFile) Name() string {
	return output.name
}

// Close flushes all buffered data and moves the output file into
// place.
func (output *OutputFile) Close() error {
	if err := output.Flush(); err != nil {
		output.Abort()
		return err
	}
	if output.file == nil {
		return nil
	}
	if output.compressor != nil {
		if err := output.compressor.Close(); err != nil {
			output.Abort()
			return err
		}
	}
	if err := output.file.Close(); err != nil {
		_ = os.Remove(output.temp)
		return err
	}
	output.file = nil
	return os.Rename(output.temp, output.name)
}

// Abort discards the output file.
func (output *OutputFile) Abort() {
	if output.file == nil {
		return
	}
	_ = output.file.Close()
	_ = os.Remove(output.temp)
	output.file = nil
}

func appendVersion(buf []byte, version []string) []byte {
	for _, token := range version {
		buf = append(buf, token...)
		buf = append(buf, ' ')
	}
	return append(buf, "\n\n"...)
}

func appendTable(buf []byte, table *Table) []byte {
	buf = append(buf, LoopKeyword...)
	for i, column := range table.Columns {
		buf = append(buf, '\n')
		buf = append(buf, column...)
		buf = append(buf, " #"...)
		buf = strconv.AppendInt(buf, int64(i+1), 10)
	}
	buf = append(buf, '\n')
	for _, row := range table.Rows {
		for i, cell := range row {
			if i > 0 {
				buf = append(buf, '\t')
			}
			buf = append(buf, cell...)
		}
		buf = append(buf, '\n')
	}
	return buf
}

// AppendStar appends the textual form of a STAR file to buf. When
// relegate is true, or when there is no optics table, only the data
// table is written.
func AppendStar(buf []byte, star *Star, relegate bool) []byte {
	version := star.Version
	if len(version) == 0 {
		version = DefaultVersion
	}
	buf = append(buf, '\n')
	buf = appendVersion(buf, version)
	if !relegate && star.Optics != nil {
		buf = append(buf, opticsTableName...)
		buf = append(buf, "\n\n"...)
		buf = appendTable(buf, star.Optics)
		buf = append(buf, "\n\n"...)
		buf = appendVersion(buf, version)
	}
	tableName := star.TableName
	if tableName == "" {
		tableName = defaultTableName
	}
	buf = append(buf, tableName...)
	buf = append(buf, "\n\n"...)
	return appendTable(buf, star.Particles)
}

// Write writes a STAR file. An empty data table is an error, and
// nothing is written in that case.
func Write(w io.Writer, star *Star, relegate bool) error {
	if star.Particles.Len() == 0 {
		return ErrEmptyTable
	}
	buf := AppendStar(internal.ReserveByteBuffer(), star, relegate)
	defer internal.ReleaseByteBuffer(buf)
	_, err := w.Write(buf)
	return err
}

// WriteFile writes a STAR file to the named file.
func WriteFile(name string, star *Star, relegate bool) error {
	if star.Particles.Len() == 0 {
		return ErrEmptyTable
	}
	output, err := Create(name)
	if err != nil {
		return err
	}
	if err := Write(output, star, relegate); err != nil {
		output.Abort()
		return err
	}
	if err := output.Close(); err != nil {
		return fmt.Errorf("%w, while writing %v", err, name)
	}
	return nil
}

// WriteValueList writes one value per line to the named file.
func WriteValueList(name string, values []string) error {
	output, err := Create(name)
	if err != nil {
		return err
	}
	for _, value := range values {
		if _, err := output.WriteString(value); err != nil {
			output.Abort()
			return err
		}
		if err := output.WriteByte('\n'); err != nil {
			output.Abort()
			return err
		}
	}
	return output.Close()
}
