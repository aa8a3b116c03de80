// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	esterrors "github.com/ICIJ/es-translator/internal/errors"
)

// packageFilePath returns the on-disk location DownloadPackage stores a
// package under: cache_dir/<name>/package.deb.
func (r *Repository) packageFilePath(name string) string {
	return filepath.Join(r.CacheDir, name, "package.deb")
}

// DownloadPackage resolves name against the repository index and downloads
// its .deb file into the repository's cache directory, skipping the
// network round-trip when the file already exists unless force is set.
func (r *Repository) DownloadPackage(name string, force bool) (string, error) {
	pkg, err := r.FindPackage(name)
	if err != nil {
		return "", err
	}
	if pkg == nil {
		return "", esterrors.NewPairUnavailable(name)
	}

	packageDir := filepath.Join(r.CacheDir, name)
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return "", fmt.Errorf("create package dir %s: %w", packageDir, err)
	}
	packageFile := r.packageFilePath(name)

	if !force {
		if _, err := os.Stat(packageFile); err == nil {
			return packageFile, nil
		}
	}

	url := r.BaseURL + "/" + pkg.Filename
	r.Logger.Info("apertium.repository.download", "package", name, "url", url)
	if err := downloadFile(r.httpClient, url, packageFile); err != nil {
		r.Logger.Warn("apertium.repository.download.failed", "package", name, "url", url, "err", err)
		poolURL, findErr := r.findLatestPackageInPool(name, pkg.Filename)
		if findErr != nil {
			return "", fmt.Errorf("download package %s: %w", name, err)
		}
		r.Logger.Info("apertium.repository.download.pool", "package", name, "url", poolURL)
		if err := downloadFile(r.httpClient, poolURL, packageFile); err != nil {
			return "", fmt.Errorf("download package %s from pool: %w", name, err)
		}
	}
	return packageFile, nil
}

// findLatestPackageInPool lists the pool directory a package's Filename
// lives under and picks the lexicographically last "<name>_*.deb" anchor,
// the fallback the repository's Packages-file URL sometimes needs because
// nightly builds prune old entries from the index before the pool
// directory listing catches up.
func (r *Repository) findLatestPackageInPool(name, filename string) (string, error) {
	dir := filename
	if idx := strings.LastIndex(filename, "/"); idx >= 0 {
		dir = filename[:idx]
	} else {
		dir = ""
	}
	poolDirURL := r.BaseURL + "/" + dir + "/"

	resp, err := r.httpClient.Get(poolDirURL)
	if err != nil {
		return "", fmt.Errorf("list pool directory: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list pool directory: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read pool directory listing: %w", err)
	}

	pattern := regexp.MustCompile(`href="(` + regexp.QuoteMeta(name) + `_[^"]+\.deb)"`)
	matches := pattern.FindAllStringSubmatch(string(body), -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("could not find package %s in pool directory", name)
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	sort.Strings(names)
	latest := names[len(names)-1]
	return poolDirURL + latest, nil
}

func downloadFile(client *http.Client, url, dest string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// DownloadPairPackage resolves pair to its providing package and downloads
// it, as DownloadPackage would.
func (r *Repository) DownloadPairPackage(pair string, force bool) (string, error) {
	pkg, err := r.FindPairPackage(pair)
	if err != nil {
		return "", err
	}
	if pkg == nil {
		return "", esterrors.NewPairUnavailable(pair)
	}
	return r.DownloadPackage(pkg.Package, force)
}

// ExtractPairPackage extracts a downloaded .deb package file into its own
// package directory (cache_dir/<package-name>), returning that directory.
func (r *Repository) ExtractPairPackage(packageFile string) (string, error) {
	workdir := filepath.Dir(packageFile)
	if err := ExtractDebPackage(packageFile, workdir); err != nil {
		return "", fmt.Errorf("extract %s: %w", packageFile, err)
	}
	return workdir, nil
}

// InstallPairPackage downloads, extracts and registers the mode files for
// pair, returning the directory the package's data was extracted into.
// It is idempotent: re-running it re-uses any already downloaded package
// file, replaces the alias symlink and re-imports mode files into the
// existing mode registry without clearing it first.
func (r *Repository) InstallPairPackage(pair string) (string, error) {
	r.Logger.Info("apertium.repository.install", "pair", pair)
	packageFile, err := r.DownloadPairPackage(pair, false)
	if err != nil {
		return "", err
	}
	packageDir, err := r.ExtractPairPackage(packageFile)
	if err != nil {
		return "", err
	}
	if err := r.CreatePairPackageAlias(packageDir); err != nil {
		return "", err
	}
	if err := r.ImportModes(false); err != nil {
		return "", err
	}
	return packageDir, nil
}

// ClearModes removes the repository-wide modes directory.
func (r *Repository) ClearModes() error {
	return os.RemoveAll(filepath.Join(r.CacheDir, "modes"))
}

// ImportModes collects every "*.mode" file from each package directory
// under the cache directory into a single cache_dir/modes directory, so the
// apertium binary can discover all installed pairs from one -d location.
// When clear is true the modes directory is wiped first.
func (r *Repository) ImportModes(clear bool) error {
	if clear {
		if err := r.ClearModes(); err != nil {
			return err
		}
	}
	modesDir := filepath.Join(r.CacheDir, "modes")
	if err := os.MkdirAll(modesDir, 0o755); err != nil {
		return fmt.Errorf("create modes dir: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(r.CacheDir, "*", "modes", "*.mode"))
	if err != nil {
		return fmt.Errorf("glob mode files: %w", err)
	}
	for _, mode := range matches {
		dest := filepath.Join(modesDir, filepath.Base(mode))
		if err := copyFile(mode, dest); err != nil {
			return fmt.Errorf("copy mode file %s: %w", mode, err)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
