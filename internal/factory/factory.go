// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package factory resolves an interpreter name and a language pair into a
// ready-to-use interpreter.Interpreter, bootstrapping whatever on-disk
// resources that back end needs before handing it back to the caller.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ICIJ/es-translator/internal/apertium"
	apertiuminterp "github.com/ICIJ/es-translator/internal/interpreter/apertium"
	"github.com/ICIJ/es-translator/internal/interpreter/argos"

	"github.com/ICIJ/es-translator/internal/bootstrap"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/interpreter"
)

// Params are the inputs a factory New call needs to build an interpreter.
type Params struct {
	InterpreterName string
	Source          string
	Target          string
	Intermediary    string
	DataDir         string
	Device          string
	Logger          *slog.Logger
}

// New derives the interpreter's pack directory, looks its name up
// case-insensitively, and constructs it — performing whatever bootstrap
// (package download, mode registration, file locking) that back end
// requires. An unrecognized name is a configuration error.
func New(ctx context.Context, p Params) (interpreter.Interpreter, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pair := interpreter.Pair{Source: p.Source, Target: p.Target, Intermediary: p.Intermediary}
	name := strings.ToUpper(strings.TrimSpace(p.InterpreterName))

	switch name {
	case "APERTIUM":
		packDir, err := bootstrap.EnsurePackDir(p.DataDir, name)
		if err != nil {
			return nil, err
		}
		repo := apertium.NewRepository(packDir, logger)

		if pair.HasIntermediary() {
			return apertiuminterp.NewPipelined(ctx, pair, packDir, repo, logger)
		}

		direct, err := apertiuminterp.NewDirect(ctx, pair, packDir, repo, logger)
		if err != nil {
			return nil, err
		}
		if pair.HasPair() && !direct.IsPairAvailable() {
			// No direct package: fall back to an auto-discovered
			// intermediary pipeline the way the original implementation
			// did when no single pair package covered the languages.
			return apertiuminterp.NewPipelined(ctx, pair, packDir, repo, logger)
		}
		return direct, nil

	case "ARGOS":
		if p.DataDir != "" {
			logger.Warn("factory.argos.pack_dir.unsupported")
		}
		device := strings.ToLower(strings.TrimSpace(p.Device))
		if device == "" {
			device = "auto"
		}
		return argos.NewNeural(ctx, pair, os.TempDir(), device, logger)

	default:
		return nil, esterrors.NewConfigError(
			fmt.Sprintf("Unknown interpreter %q", p.InterpreterName),
			"the interpreter name didn't match any known translation back end",
			"use one of: apertium, argos",
			nil,
		)
	}
}
