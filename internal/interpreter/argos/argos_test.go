// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package argos

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ICIJ/es-translator/internal/interpreter"
)

func writeFakeBinary(t *testing.T, dir, script string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-argos-translate.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestNeuralTranslate(t *testing.T) {
	dir := t.TempDir()
	original := Binary
	Binary = writeFakeBinary(t, dir, "cat\n")
	defer func() { Binary = original }()

	n := &Neural{Pair: interpreter.Pair{Source: "en", Target: "es"}, LockDir: dir}
	out, err := n.Translate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Translate() = %q, want %q", out, "hello")
	}
}

func TestNeuralIsPairAvailable(t *testing.T) {
	dir := t.TempDir()
	original := Binary
	defer func() { Binary = original }()

	Binary = writeFakeBinary(t, dir, "exit 0\n")
	n := &Neural{Pair: interpreter.Pair{Source: "en", Target: "es"}, LockDir: dir}
	if !n.IsPairAvailable() {
		t.Error("expected pair to report available when helper exits 0")
	}

	Binary = writeFakeBinary(t, dir, "exit 1\n")
	if n.IsPairAvailable() {
		t.Error("expected pair to report unavailable when helper exits non-zero")
	}
}

func TestNewNeuralRejectsInvalidLanguage(t *testing.T) {
	dir := t.TempDir()
	original := Binary
	Binary = writeFakeBinary(t, dir, "exit 1\n")
	defer func() { Binary = original }()

	_, err := NewNeural(context.Background(), interpreter.Pair{Source: "xx", Target: "es"}, dir, "auto", nil)
	if err == nil {
		t.Error("expected error for invalid source language code")
	}
}
