// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/ICIJ/es-translator/internal/apertium"
	"github.com/ICIJ/es-translator/internal/bootstrap"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/ui"
)

// runPairs executes the 'pairs' command, listing either the language
// pairs already installed locally or the pairs available for download
// from the Apertium repository (§4.C).
func runPairs(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("pairs", flag.ExitOnError)
	local := fs.Bool("local", false, "List pairs installed locally")
	remote := fs.Bool("remote", false, "List pairs available for download")
	dataDir := fs.String("data-dir", "", "Writable directory for language packs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: estranslator pairs [--local|--remote] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if !*local && !*remote {
		*local = true
	}

	logger := newLogger(globals)
	packDir, err := bootstrap.EnsurePackDir(*dataDir, "APERTIUM")
	if err != nil {
		esterrors.FatalError(err, globals.JSON)
	}
	repo := apertium.NewRepository(packDir, logger)

	if *local {
		pairs, err := repo.LocalPairs()
		if err != nil {
			esterrors.FatalError(err, globals.JSON)
		}
		printPairs("Installed pairs", pairs)
	}
	if *remote {
		pairs, err := repo.RemotePairs()
		if err != nil {
			esterrors.FatalError(err, globals.JSON)
		}
		printPairs("Remote pairs", pairs)
	}
}

func printPairs(title string, pairs []string) {
	sort.Strings(pairs)
	ui.SubHeader(fmt.Sprintf("%s (%d)", title, len(pairs)))
	for _, p := range pairs {
		fmt.Println(p)
	}
}
