// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package argos adapts the Argos Open Tech neural machine translation
// engine to the interpreter.Interpreter contract.
//
// Argos itself ships as a Python library with no persistent daemon, so
// this package drives it through a small subprocess helper (Binary) that
// takes --from/--to flags and the text on stdin, and writes the
// translation on stdout — the same shape
// the original implementation got for free from an in-process Python
// import. Package downloads are guarded by a cross-process file lock
// (github.com/gofrs/flock) exactly as the original guarded concurrent
// installs of the same language pair with Python's filelock.
package argos

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/interpreter"
	"github.com/ICIJ/es-translator/internal/langcode"
)

// Binary is the helper executable used both to manage the local package
// index and to run translations. Tests override it with a stub.
var Binary = "argos-translate"

// LockTimeout bounds how long Neural waits to acquire the per-pair
// download lock before giving up, matching the original's 600-second
// (10-minute) filelock timeout.
const LockTimeout = 10 * time.Minute

// Neural wraps one Argos language pair. Unlike the Apertium variants it
// ignores any intermediary or custom pack directory: Argos resolves its
// own package store.
type Neural struct {
	interpreter.Pair
	LockDir string
	Device  string
	Logger  *slog.Logger
}

// NewNeural constructs a Neural interpreter, installing the pair's
// language package if it isn't already present. lockDir is the directory
// download locks are created in (the OS temp dir in production). device is
// one of "cpu", "cuda", or "auto" and is exported to the helper binary's
// environment on every invocation, since the original's contract requires
// the device to be configured before Argos imports its backing torch
// runtime, and here that import happens inside the subprocess itself.
func NewNeural(ctx context.Context, pair interpreter.Pair, lockDir, device string, logger *slog.Logger) (*Neural, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pair.HasIntermediary() {
		logger.Warn("argos.interpreter.intermediary.unsupported")
	}
	if device == "" {
		device = "auto"
	}
	n := &Neural{Pair: interpreter.Pair{Source: pair.Source, Target: pair.Target}, LockDir: lockDir, Device: device, Logger: logger}
	if !n.HasPair() {
		return n, nil
	}
	if n.IsPairAvailable() {
		logger.Info("argos.interpreter.pair.cached", "pair", n.String())
		return n, nil
	}
	if err := n.downloadNecessaryLanguage(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

// Name identifies this interpreter in logs, config and factory lookups.
func (n *Neural) Name() string { return "ARGOS" }

// IsPairAvailable asks the helper binary whether this pair's package is
// already installed.
func (n *Neural) IsPairAvailable() bool {
	alpha2Source, err := alpha2(n.Source)
	if err != nil {
		return false
	}
	alpha2Target, err := alpha2(n.Target)
	if err != nil {
		return false
	}
	cmd := exec.CommandContext(context.Background(), Binary, "is-installed", "--from", alpha2Source, "--to", alpha2Target)
	n.setDeviceEnv(cmd)
	return cmd.Run() == nil
}

// setDeviceEnv exports ARGOS_DEVICE_TYPE into the helper's environment
// before it starts, the subprocess equivalent of setting the device before
// the original's in-process torch import.
func (n *Neural) setDeviceEnv(cmd *exec.Cmd) {
	cmd.Env = append(os.Environ(), "ARGOS_DEVICE_TYPE="+n.Device)
}

func alpha2(code string) (string, error) {
	return langcode.ToAlpha2(code)
}

func (n *Neural) downloadNecessaryLanguage(ctx context.Context) error {
	alpha2Source, err := alpha2(n.Source)
	if err != nil {
		return err
	}
	alpha2Target, err := alpha2(n.Target)
	if err != nil {
		return err
	}

	lockPath := filepath.Join(n.LockDir, fmt.Sprintf("%s_%s.lock", alpha2Source, alpha2Target))
	lock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 500*time.Millisecond)
	if err != nil || !locked {
		return esterrors.NewDownloadLockTimeout(lockPath)
	}
	defer lock.Unlock()

	// Re-check now that we hold the lock: another process may have just
	// finished installing this exact pair.
	if n.IsPairAvailable() {
		return nil
	}

	n.Logger.Info("argos.interpreter.package.install", "source", alpha2Source, "target", alpha2Target)
	cmd := exec.CommandContext(ctx, Binary, "install", "--from", alpha2Source, "--to", alpha2Target)
	n.setDeviceEnv(cmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install argos package %s-%s: %w: %s", alpha2Source, alpha2Target, err, stderr.String())
	}
	return nil
}

// Translate runs text through the helper binary's translate subcommand.
func (n *Neural) Translate(ctx context.Context, text string) (string, error) {
	alpha2Source, err := alpha2(n.Source)
	if err != nil {
		return "", err
	}
	alpha2Target, err := alpha2(n.Target)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, Binary, "translate", "--from", alpha2Source, "--to", alpha2Target)
	n.setDeviceEnv(cmd)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("argos-translate %s-%s: %w: %s", alpha2Source, alpha2Target, err, stderr.String())
	}
	return stdout.String(), nil
}
