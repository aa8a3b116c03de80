// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/blakesmith/ar"
	"github.com/ulikunitz/xz"
)

// buildFakeDebPackage writes a minimal .deb-shaped ar archive containing a
// single data.tar.xz member with the given tar entries rooted under
// /usr/share/apertium.
func buildFakeDebPackage(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	for name, content := range entries {
		hdr := &tar.Header{
			Name: "./usr/share/apertium/" + name,
			Mode: 0o644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write tar content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatalf("new xz writer: %v", err)
	}
	if _, err := xw.Write(tarBuf.Bytes()); err != nil {
		t.Fatalf("write xz stream: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("close xz writer: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create deb file: %v", err)
	}
	defer f.Close()

	aw := ar.NewWriter(f)
	if err := aw.WriteGlobalHeader(); err != nil {
		t.Fatalf("write ar global header: %v", err)
	}
	header := &ar.Header{
		Name: "data.tar.xz",
		Size: int64(xzBuf.Len()),
		Mode: 0o644,
	}
	if err := aw.WriteHeader(header); err != nil {
		t.Fatalf("write ar header: %v", err)
	}
	if _, err := aw.Write(xzBuf.Bytes()); err != nil {
		t.Fatalf("write ar content: %v", err)
	}
}

func TestExtractDebPackage(t *testing.T) {
	dir := t.TempDir()
	debPath := filepath.Join(dir, "package.deb")
	destDir := filepath.Join(dir, "eng-spa")

	buildFakeDebPackage(t, debPath, map[string]string{
		"modes/eng-spa.mode": "/usr/share/apertium/eng-spa/data\n",
		"eng-spa/data.bin":   "binary-data",
	})

	if err := ExtractDebPackage(debPath, destDir); err != nil {
		t.Fatalf("ExtractDebPackage() error = %v", err)
	}

	modeContent, err := os.ReadFile(filepath.Join(destDir, "modes", "eng-spa.mode"))
	if err != nil {
		t.Fatalf("expected mode file to be extracted: %v", err)
	}
	if bytes.Contains(modeContent, []byte(modePathPrefix)) {
		t.Errorf("mode file still references %s: %q", modePathPrefix, modeContent)
	}
	if !bytes.Contains(modeContent, []byte(destDir)) {
		t.Errorf("mode file does not reference rewritten dest dir: %q", modeContent)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "eng-spa", "data.bin"))
	if err != nil {
		t.Fatalf("expected data file to be extracted: %v", err)
	}
	if string(data) != "binary-data" {
		t.Errorf("data.bin content = %q, want %q", data, "binary-data")
	}
}
