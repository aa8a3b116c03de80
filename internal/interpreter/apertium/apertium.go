// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package apertium adapts the Apertium rule-based machine translation
// engine to the interpreter.Interpreter contract, by shelling out to the
// apertium binary the way the original implementation did through its
// shell wrapper.
//
// Two variants are exposed: Direct translates source-target in a single
// apertium invocation when a pair package exists; Pipelined chains two
// invocations through an intermediary language when it doesn't.
package apertium

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ICIJ/es-translator/internal/apertium"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/interpreter"
)

// Binary is the apertium executable looked up on PATH. Tests override it
// to exercise the command-building logic without a real apertium install.
var Binary = "apertium"

// Direct wraps a single apertium pair for which a package is already
// installed (or was just installed by the repository).
type Direct struct {
	interpreter.Pair
	PackDir string
	Logger  *slog.Logger
}

// NewDirect constructs a Direct interpreter, installing the pair package
// from repo if it isn't already present under packDir.
func NewDirect(ctx context.Context, pair interpreter.Pair, packDir string, repo *apertium.Repository, logger *slog.Logger) (*Direct, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Direct{Pair: pair, PackDir: packDir, Logger: logger}
	if !d.HasPair() {
		return d, nil
	}
	if d.IsPairAvailable() {
		logger.Info("apertium.interpreter.pair.cached", "pair", pair.String())
		return d, nil
	}

	pair3, err := pair.Alpha3()
	if err != nil {
		return nil, err
	}
	if _, err := repo.InstallPairPackage(pair3); err != nil {
		var unavailable *esterrors.PairUnavailableError
		if errors.As(err, &unavailable) {
			// No direct package for this pair: leave d with no pair
			// installed rather than failing outright, so the factory can
			// fall back to an auto-discovered intermediary pipeline.
			logger.Info("apertium.interpreter.pair.no_direct_package", "pair", pair.String())
			return d, nil
		}
		return nil, err
	}
	return d, nil
}

// Name identifies this interpreter in logs, config and factory lookups.
func (d *Direct) Name() string { return "APERTIUM" }

// IsPairAvailable reports whether apertium already knows this pair
// without needing to shell out: it checks for the pair's mode file under
// PackDir/modes, the same directory the repository imports mode files
// into.
func (d *Direct) IsPairAvailable() bool {
	pair3, err := d.Alpha3()
	if err != nil {
		return false
	}
	return modeFileExists(d.PackDir, pair3)
}

// Translate runs the apertium binary over text using this pair's mode.
func (d *Direct) Translate(ctx context.Context, text string) (string, error) {
	pair3, err := d.Alpha3()
	if err != nil {
		return "", err
	}
	return runApertium(ctx, d.PackDir, pair3, text)
}

func runApertium(ctx context.Context, packDir, mode, text string) (string, error) {
	cmd := exec.CommandContext(ctx, Binary, "-d", packDir, mode)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("apertium -d %s %s: %w: %s", packDir, mode, err, stderr.String())
	}
	return stdout.String(), nil
}

func modeFileExists(packDir, mode string) bool {
	_, err := modeFileStat(packDir, mode)
	return err == nil
}
