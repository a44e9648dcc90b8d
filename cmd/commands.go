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
	"strings"
)

// A Command is one of the subcommands of the starparser binary.
type Command struct {
	Name string
	Help string
	Run  func() error
}

// Commands lists all subcommands, grouped by what they operate on.
var Commands = []Command{
	{"count", CountHelp, Count},
	{"count-mics", CountMicsHelp, CountMics},
	{"extract", ExtractHelp, Extract},
	{"remove-particles", RemoveParticlesHelp, RemoveParticles},
	{"remove-duplicates", RemoveDuplicatesHelp, RemoveDuplicates},
	{"remove-mics", RemoveMicsHelp, RemoveMics},
	{"keep-mics", KeepMicsHelp, KeepMics},
	{"limit", LimitHelp, Limit},
	{"extract-random", ExtractRandomHelp, ExtractRandom},
	{"extract-indices", ExtractIndicesHelp, ExtractIndices},
	{"class-proportion", ClassProportionHelp, ClassProportion},
	{"list-column", ListColumnHelp, ListColumn},
	{"describe", DescribeHelp, Describe},

	{"extract-min", ExtractMinHelp, ExtractMin},
	{"extract-clusters", ExtractClustersHelp, ExtractClusters},
	{"extract-if-nearby", ExtractIfNearbyHelp, ExtractIfNearby},
	{"fetch-from-nearby", FetchFromNearbyHelp, FetchFromNearby},
	{"find-shared", FindSharedHelp, FindShared},
	{"match-mics", MatchMicsHelp, MatchMics},
	{"import-mic-values", ImportMicValuesHelp, ImportMicValues},
	{"import-particle-values", ImportParticleValuesHelp, ImportParticleValues},
	{"swap-columns", SwapColumnsHelp, SwapColumns},

	{"remove-column", RemoveColumnHelp, RemoveColumn},
	{"operate", OperateHelp, Operate},
	{"operate-columns", OperateColumnsHelp, OperateColumns},
	{"copy-column", CopyColumnHelp, CopyColumn},
	{"reset-column", ResetColumnHelp, ResetColumn},
	{"replace-column", ReplaceColumnHelp, ReplaceColumn},
	{"insert-column", InsertColumnHelp, InsertColumn},
	{"sort-by", SortByHelp, SortBy},

	{"regroup", RegroupHelp, Regroup},
	{"split", SplitHelp, Split},
	{"split-classes", SplitClassesHelp, SplitClasses},
	{"split-optics", SplitOpticsHelp, SplitOptics},

	{"relegate", RelegateHelp, Relegate},
	{"new-optics", NewOpticsHelp, NewOptics},
	{"swap-optics", SwapOpticsHelp, SwapOptics},
	{"insert-optics-column", InsertOpticsColumnHelp, InsertOpticsColumn},
	{"extract-optics", ExtractOpticsHelp, ExtractOptics},
	{"expand-optics", ExpandOpticsHelp, ExpandOptics},
}

// Lookup returns the command with the given name.
func Lookup(name string) (Command, bool) {
	for _, command := range Commands {
		if command.Name == name {
			return command, true
		}
	}
	return Command{}, false
}

// PrintHelp prints the available commands, and with extended set, the
// parameters of each of them.
func PrintHelp(w io.Writer, extended bool) {
	names := make([]string, len(Commands))
	for i, command := range Commands {
		names[i] = command.Name
	}
	fmt.Fprintln(w, "Available commands:", strings.Join(names, ", "))
	if !extended {
		fmt.Fprintln(w, "Use help-extended for the parameters of each command.")
		return
	}
	fmt.Fprint(w, "\nCommon parameters:\n", inputHelp)
	for _, command := range Commands {
		fmt.Fprint(w, "\n", command.Help)
	}
}
