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

// starparser is a tool for manipulating RELION STAR files: it queries,
// filters, combines, and partitions the particle table of a STAR file,
// and edits its optics table.
//
// Please see https://github.com/exascience/starparser for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/starparser/cmd"
)

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		cmd.PrintHelp(os.Stderr, false)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "help", "-help", "--help", "-h", "--h":
		cmd.PrintHelp(os.Stderr, false)
	case "help-extended", "-help-extended", "--help-extended", "-he", "--he":
		cmd.PrintHelp(os.Stderr, true)
	default:
		command, ok := cmd.Lookup(os.Args[1])
		if !ok {
			log.Println("Unknown command:", os.Args[1])
			cmd.PrintHelp(os.Stderr, false)
			os.Exit(1)
		}
		err = command.Run()
	}
	if err != nil {
		log.Fatal(err)
	}
}
