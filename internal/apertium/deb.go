// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/ulikunitz/xz"
)

// modePathPrefix is the path apertium .deb packages install their data
// under on a real Debian system. Mode files reference it directly, so
// extraction rewrites it to point at the local pack directory instead.
const modePathPrefix = "/usr/share/apertium"

// ExtractDebPackage extracts the data.tar.xz member of the .deb archive at
// debPath into destDir, rewriting any "/usr/share/apertium" path references
// found in extracted mode files (*.mode) to destDir so the apertium binary
// can resolve them without the package actually being installed system-wide.
func ExtractDebPackage(debPath, destDir string) error {
	f, err := os.Open(debPath)
	if err != nil {
		return fmt.Errorf("open deb package: %w", err)
	}
	defer f.Close()

	reader := ar.NewReader(f)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return fmt.Errorf("deb package %s has no data.tar.xz member", debPath)
		}
		if err != nil {
			return fmt.Errorf("read ar header: %w", err)
		}
		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		if name != "data.tar.xz" {
			continue
		}
		return extractDataTarXz(reader, destDir)
	}
}

func extractDataTarXz(r io.Reader, destDir string) error {
	xzReader, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("open xz stream: %w", err)
	}
	tarReader := tar.NewReader(xzReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		relPath := stripDataPrefix(header.Name)
		if relPath == "" {
			continue
		}
		target := filepath.Join(destDir, relPath)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := extractRegularFile(tarReader, target, destDir, header); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
		}
	}
}

// stripDataPrefix normalizes a tar entry name like "./usr/share/apertium/..."
// into a path relative to the apertium data root, or "" if the entry falls
// outside it (e.g. "./usr/bin/apertium").
func stripDataPrefix(name string) string {
	cleaned := strings.TrimPrefix(name, "./")
	cleaned = "/" + strings.TrimPrefix(cleaned, "/")
	if !strings.HasPrefix(cleaned, modePathPrefix) {
		return ""
	}
	rel := strings.TrimPrefix(cleaned, modePathPrefix)
	return strings.TrimPrefix(rel, "/")
}

func extractRegularFile(r io.Reader, target, destDir string, header *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	mode := os.FileMode(header.Mode & 0o777)
	if strings.HasSuffix(target, ".mode") {
		content, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read mode file %s: %w", header.Name, err)
		}
		rewritten := bytes.ReplaceAll(content, []byte(modePathPrefix), []byte(destDir))
		return os.WriteFile(target, rewritten, mode)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return nil
}
