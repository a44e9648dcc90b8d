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

// Sigil is the prefix of every RELION column name.
const Sigil = "_rln"

// Column names with a fixed meaning for the operators in this
// module.
const (
	MicrographName   = "_rlnMicrographName"
	ImageName        = "_rlnImageName"
	CoordinateX      = "_rlnCoordinateX"
	CoordinateY      = "_rlnCoordinateY"
	DefocusU         = "_rlnDefocusU"
	GroupNumber      = "_rlnGroupNumber"
	GroupName        = "_rlnGroupName"
	ClassNumber      = "_rlnClassNumber"
	OpticsGroup      = "_rlnOpticsGroup"
	OpticsGroupName  = "_rlnOpticsGroupName"
	HelicalTubeID    = "_rlnHelicalTubeID"
	NrOfSigSamples   = "_rlnNrOfSignificantSamples"
	AngleRot         = "_rlnAngleRot"
	AngleTilt        = "_rlnAngleTilt"
	ImagePixelSize   = "_rlnImagePixelSize"
	Voltage          = "_rlnVoltage"
	opticsTableName  = "data_optics"
	defaultTableName = "data_images"
)

// CanonicalColumn returns the column name with the sigil prefix.
//
// Names that already carry the sigil are returned unchanged, and bare
// names get it prepended. A name that carries only part of the prefix
// ("_Foo", "rlnFoo", "_rlFoo") is rejected, because it is ambiguous
// whether the user meant the literal name or forgot part of the
// prefix.
func CanonicalColumn(name string) (string, error) {
	switch {
	case name == "":
		return "", fmt.Errorf("empty column name")
	case strings.HasPrefix(name, Sigil):
		if len(name) == len(Sigil) {
			return "", fmt.Errorf("column name %v has no name after the prefix", name)
		}
		return name, nil
	case strings.HasPrefix(name, "_"), strings.HasPrefix(name, "rln"):
		return "", fmt.Errorf("column name %v has a malformed prefix; use either %vName or Name", name, Sigil)
	default:
		return Sigil + name, nil
	}
}

// CanonicalColumns applies CanonicalColumn to each name.
func CanonicalColumns(names []string) ([]string, error) {
	result := make([]string, 0, len(names))
	for _, name := range names {
		column, err := CanonicalColumn(name)
		if err != nil {
			return nil, err
		}
		result = append(result, column)
	}
	return result, nil
}

// BareName strips the sigil from a column name, as used for naming
// per-column output files.
func BareName(column string) string {
	return strings.TrimPrefix(column, Sigil)
}
