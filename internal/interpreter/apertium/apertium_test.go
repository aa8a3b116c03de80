// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ICIJ/es-translator/internal/interpreter"
)

func TestDirectIsPairAvailable(t *testing.T) {
	dir := t.TempDir()
	modesDir := filepath.Join(dir, "modes")
	if err := os.MkdirAll(modesDir, 0o755); err != nil {
		t.Fatalf("mkdir modes: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modesDir, "eng-spa.mode"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write mode file: %v", err)
	}

	d := &Direct{Pair: interpreter.Pair{Source: "en", Target: "es"}, PackDir: dir}
	if !d.IsPairAvailable() {
		t.Error("expected pair to be available once mode file exists")
	}

	d2 := &Direct{Pair: interpreter.Pair{Source: "en", Target: "de"}, PackDir: dir}
	if d2.IsPairAvailable() {
		t.Error("expected pair without a mode file to be unavailable")
	}
}

func TestRunApertiumUsesConfiguredBinary(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-apertium.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}

	original := Binary
	Binary = script
	defer func() { Binary = original }()

	out, err := runApertium(context.Background(), "/tmp", "eng-spa", "hello")
	if err != nil {
		t.Fatalf("runApertium() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("runApertium() = %q, want echo of stdin via fake binary", out)
	}
}
