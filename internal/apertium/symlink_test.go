// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateSymlink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "eng-spa")
	if err := os.Mkdir(source, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	target := filepath.Join(dir, "en-es")

	if err := CreateSymlink(source, target); err != nil {
		t.Fatalf("CreateSymlink() error = %v", err)
	}
	resolved, err := os.Readlink(target)
	if err != nil {
		t.Fatalf("expected symlink at %s: %v", target, err)
	}
	if resolved != source {
		t.Errorf("symlink target = %q, want %q", resolved, source)
	}

	// Re-running replaces the existing symlink instead of failing.
	if err := CreateSymlink(source, target); err != nil {
		t.Fatalf("CreateSymlink() second run error = %v", err)
	}
}

func TestCreateSymlinkMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CreateSymlink(filepath.Join(dir, "missing"), filepath.Join(dir, "alias"))
	if err != nil {
		t.Fatalf("expected no-op for missing source, got error: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dir, "alias")); !os.IsNotExist(err) {
		t.Error("expected no symlink to be created for a missing source")
	}
}

func TestAlternateForm(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"eng-spa", "en-es"},
		{"en-es", "eng-spa"},
		{"por-cat", "pt-ca"},
	}
	for _, tc := range cases {
		got, err := alternateForm(tc.in)
		if err != nil {
			t.Fatalf("alternateForm(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("alternateForm(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreatePairPackageAlias(t *testing.T) {
	dir := t.TempDir()
	r := testRepository()
	packageDir := filepath.Join(dir, "eng-spa")
	if err := os.Mkdir(packageDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := r.CreatePairPackageAlias(packageDir); err != nil {
		t.Fatalf("CreatePairPackageAlias() error = %v", err)
	}
	alias := filepath.Join(dir, "en-es")
	if _, err := os.Lstat(alias); err != nil {
		t.Fatalf("expected alias symlink at %s: %v", alias, err)
	}
}
