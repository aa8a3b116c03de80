// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package main implements the es-translator CLI: a configurable,
// bounded-parallel translation engine for full-text-search documents.
//
// Usage:
//
//	estranslator translate --url ... --index ... --source-language en --target-language es
//	estranslator pairs --local|--remote
//	estranslator tasks --broker-url redis://localhost:6379
//	estranslator monitor --broker-url redis://localhost:6379
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/ICIJ/es-translator/internal/ui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are recognized ahead of (and inherited by) every subcommand.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Emit machine-readable JSON instead of human output")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `es-translator - translate full-text-search documents in place

Usage:
  estranslator <command> [options]

Commands:
  translate   Run the translation engine to completion
  pairs       List available Apertium language pairs
  tasks       Consume deferred translation tasks from the durable queue
  monitor     Watch queue depth and worker throughput

Global Options:
  --json        Emit machine-readable JSON
  -q, --quiet   Suppress progress output
  --no-color    Disable colored output
  -v            Increase log verbosity (repeatable)
  -V, --version Show version and exit

Examples:
  estranslator translate --url http://localhost:9200 --index docs \
    --source-language en --target-language es --interpreter apertium
  estranslator pairs --remote
  estranslator tasks --broker-url redis://localhost:6379
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("estranslator version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	ui.InitColors(*noColor)
	globals := GlobalFlags{JSON: *jsonOutput, Quiet: *quiet || *jsonOutput, NoColor: *noColor, Verbose: *verbose}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "translate":
		runTranslate(cmdArgs, globals)
	case "pairs":
		runPairs(cmdArgs, globals)
	case "tasks":
		runTasks(cmdArgs, globals)
	case "monitor":
		runMonitor(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
