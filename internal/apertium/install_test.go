// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testRepositoryWithPackage(t *testing.T, baseURL, filename string) *Repository {
	t.Helper()
	r := &Repository{
		CacheDir:   t.TempDir(),
		Arch:       "amd64",
		BaseURL:    baseURL,
		Suite:      DefaultSuite,
		Logger:     slog.Default(),
		httpClient: &http.Client{},
	}
	r.packagesOnce.Do(func() {})
	r.packages = []Package{{Package: "apertium-eng-spa", Filename: filename}}
	return r
}

func TestDownloadPackagePrimaryURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "package contents")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := testRepositoryWithPackage(t, srv.URL, "pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb")
	path, err := r.DownloadPackage("apertium-eng-spa", false)
	if err != nil {
		t.Fatalf("DownloadPackage() error = %v", err)
	}
	if filepath.Base(path) != "package.deb" {
		t.Errorf("path = %q, want a package.deb file", path)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(contents) != "package contents" {
		t.Errorf("contents = %q", contents)
	}
}

func TestDownloadPackageFallsBackToPoolListing(t *testing.T) {
	mux := http.NewServeMux()
	// The Packages-file-derived URL 404s, as happens when the nightly
	// index has pruned this exact filename.
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb", func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	})
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `
<a href="apertium-eng-spa_1.0.0-1_all.deb">apertium-eng-spa_1.0.0-1_all.deb</a>
<a href="apertium-eng-spa_1.3.0-1_all.deb">apertium-eng-spa_1.3.0-1_all.deb</a>
<a href="apertium-eng-spa_1.2.0-1_all.deb">apertium-eng-spa_1.2.0-1_all.deb</a>
`)
	})
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/apertium-eng-spa_1.3.0-1_all.deb", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "newest package contents")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := testRepositoryWithPackage(t, srv.URL, "pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb")
	path, err := r.DownloadPackage("apertium-eng-spa", false)
	if err != nil {
		t.Fatalf("DownloadPackage() error = %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(contents) != "newest package contents" {
		t.Errorf("contents = %q, want the lexicographically last pool entry's contents", contents)
	}
}

func TestDownloadPackageFailsWhenPoolHasNoMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb", func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	})
	mux.HandleFunc("/pool/main/a/apertium-eng-spa/", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `<a href="apertium-por-cat_1.0.0-1_all.deb">apertium-por-cat_1.0.0-1_all.deb</a>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := testRepositoryWithPackage(t, srv.URL, "pool/main/a/apertium-eng-spa/apertium-eng-spa_1.2.0-1_all.deb")
	if _, err := r.DownloadPackage("apertium-eng-spa", false); err == nil {
		t.Fatal("expected an error when the pool directory has no matching package")
	}
}
