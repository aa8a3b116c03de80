// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PackDir derives the on-disk directory an interpreter uses to store its
// downloaded language packs: data_dir/packs/<interpreter-name-lowercased>.
func PackDir(dataDir, interpreterName string) string {
	return filepath.Join(dataDir, "packs", strings.ToLower(interpreterName))
}

// EnsurePackDir derives the pack directory for the given interpreter and
// creates it (and any missing parents) if it doesn't already exist.
func EnsurePackDir(dataDir, interpreterName string) (string, error) {
	dir := PackDir(dataDir, interpreterName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create pack dir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureDataDir creates the root data directory used to store language
// packs across all interpreters.
func EnsureDataDir(dataDir string) error {
	if dataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return nil
}
