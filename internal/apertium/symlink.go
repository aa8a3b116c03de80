// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ICIJ/es-translator/internal/langcode"
)

// CreateSymlink points target at source, replacing any existing symlink at
// target first. It is a no-op if source doesn't exist. Mirrors the
// force-replace semantics es-translator relies on to keep package aliases
// in sync across reinstalls.
func CreateSymlink(source, target string) error {
	info, err := os.Lstat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat symlink source %s: %w", source, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return nil
	}

	if existing, err := os.Lstat(target); err == nil && existing.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove existing symlink %s: %w", target, err)
		}
	}
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", target, source, err)
	}
	return nil
}

// CreatePairPackageAlias exposes an Apertium package directory named with
// alpha-3 codes (e.g. "eng-spa", or "apertium-eng-spa" as extracted) under
// its alpha-2 equivalent ("en-es", "apertium-en-es") and vice versa, so
// callers can look a pair up by either form. Mode files are not aliased.
func (r *Repository) CreatePairPackageAlias(packageDir string) error {
	base := filepath.Base(packageDir)
	parent := filepath.Dir(packageDir)
	prefix := ""
	if strings.HasPrefix(base, "apertium-") {
		prefix = "apertium-"
	}

	alias, err := alternateForm(strings.TrimPrefix(base, prefix))
	if err != nil {
		// Not a recognizable "src-tgt" directory name; nothing to alias.
		return nil
	}
	alias = prefix + alias
	if alias == base {
		return nil
	}
	return CreateSymlink(packageDir, filepath.Join(parent, alias))
}

// alternateForm converts a "src-tgt" directory name between its alpha-2 and
// alpha-3 forms: alpha-3 input yields the alpha-2 alias and vice versa.
func alternateForm(pairDir string) (string, error) {
	parts := strings.SplitN(pairDir, "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("not a pair directory name: %s", pairDir)
	}

	if len(parts[0]) == 3 {
		src, err := langcode.ToAlpha2(parts[0])
		if err != nil {
			return "", err
		}
		tgt, err := langcode.ToAlpha2(parts[1])
		if err != nil {
			return "", err
		}
		return src + "-" + tgt, nil
	}

	src, err := langcode.ToAlpha3(parts[0])
	if err != nil {
		return "", err
	}
	tgt, err := langcode.ToAlpha3(parts[1])
	if err != nil {
		return "", err
	}
	return src + "-" + tgt, nil
}
