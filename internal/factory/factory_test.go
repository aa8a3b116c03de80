// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package factory

import (
	"context"
	"testing"
)

func TestNewUnknownInterpreter(t *testing.T) {
	_, err := New(context.Background(), Params{InterpreterName: "NOPE", DataDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for unknown interpreter name")
	}
}

func TestNewApertiumWithoutPairDoesNotTouchNetwork(t *testing.T) {
	interp, err := New(context.Background(), Params{InterpreterName: "apertium", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if interp.HasPair() {
		t.Error("expected no pair to be set")
	}
	if interp.Name() != "APERTIUM" {
		t.Errorf("Name() = %q, want APERTIUM", interp.Name())
	}
}

func TestNewCaseInsensitiveName(t *testing.T) {
	_, err := New(context.Background(), Params{InterpreterName: "ApErTiUm", DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}
