// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package apertium implements the Apertium package manager: resolving the
// remote package index, downloading ".deb" pair packages, extracting them,
// aliasing them under both 2- and 3-letter language forms, and registering
// their mode files so the apertium binary can find them.
//
// State is scoped to a Repository: a cache directory, an auto-detected
// architecture, and a memoized copy of the fetched package index. A
// Repository is safe for concurrent read-only use once its package index
// has been fetched once; Packages caches the result for the process
// lifetime using sync.Once so concurrent callers share a single fetch.
package apertium

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/langcode"
)

// DefaultRepositoryURL is the Apertium nightly APT repository used by the
// reference deployment.
const DefaultRepositoryURL = "https://apertium.projectjj.com/apt/nightly"

// DefaultSuite is the Debian suite the repository publishes packages under.
const DefaultSuite = "noble"

// Package is a parsed entry from the repository's "Packages" control file.
// Only the fields the package manager needs are recognized; everything else
// in the control block is ignored.
type Package struct {
	Package  string
	Provides string
	Filename string
	Version  string
}

// IsPairPackage reports whether this package provides a language pair, i.e.
// its Package field splits into exactly three dash-separated parts with the
// first equal to "apertium" (e.g. "apertium-eng-spa").
func (p Package) IsPairPackage() bool {
	parts := strings.Split(p.Package, "-")
	return len(parts) == 3 && parts[0] == "apertium"
}

// Repository is the Apertium package manager's client for one repository.
type Repository struct {
	CacheDir string
	Arch     string
	BaseURL  string
	Suite    string
	Logger   *slog.Logger

	httpClient *http.Client

	packagesOnce sync.Once
	packages     []Package
	packagesErr  error
}

// NewRepository builds a Repository rooted at cacheDir. Arch is always
// auto-detected from runtime.GOARCH: "i386" for 386/i386 machines, "amd64"
// otherwise.
func NewRepository(cacheDir string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		CacheDir:   cacheDir,
		Arch:       detectArch(),
		BaseURL:    DefaultRepositoryURL,
		Suite:      DefaultSuite,
		Logger:     logger,
		httpClient: &http.Client{},
	}
}

func detectArch() string {
	switch runtime.GOARCH {
	case "386":
		return "i386"
	default:
		return "amd64"
	}
}

// PackagesFileURL returns the URL of the repository's Packages control file
// for the configured suite and architecture.
func (r *Repository) PackagesFileURL() string {
	return fmt.Sprintf("%s/dists/%s/main/binary-%s/Packages", r.BaseURL, r.Suite, r.Arch)
}

// Packages fetches and parses the repository's Packages file, caching the
// result for the lifetime of the Repository. A fetch failure is returned to
// the caller without poisoning the cache: a later call will retry.
func (r *Repository) Packages() ([]Package, error) {
	r.packagesOnce.Do(func() {
		r.packages, r.packagesErr = r.fetchPackages()
	})
	if r.packagesErr != nil {
		// Don't let a failed fetch stick: reset so the next call retries.
		err := r.packagesErr
		r.packagesOnce = sync.Once{}
		r.packagesErr = nil
		return nil, err
	}
	return r.packages, nil
}

func (r *Repository) fetchPackages() ([]Package, error) {
	r.Logger.Info("apertium.repository.packages.fetch", "url", r.PackagesFileURL())
	resp, err := r.httpClient.Get(r.PackagesFileURL())
	if err != nil {
		return nil, fmt.Errorf("fetch packages file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch packages file: unexpected status %d", resp.StatusCode)
	}

	var sb strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read packages file: %w", err)
	}

	return parseControlBlocks(sb.String()), nil
}

// parseControlBlocks splits a deb822-style control file on blank lines and
// parses the recognized fields out of each block.
func parseControlBlocks(content string) []Package {
	blocks := strings.Split(content, "\n\n")
	packages := make([]Package, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		packages = append(packages, parseControlBlock(block))
	}
	return packages
}

func parseControlBlock(block string) Package {
	var pkg Package
	lines := strings.Split(block, "\n")
	var currentField, currentValue string
	flush := func() {
		switch currentField {
		case "Package":
			pkg.Package = strings.TrimSpace(currentValue)
		case "Provides":
			pkg.Provides = strings.TrimSpace(currentValue)
		case "Filename":
			pkg.Filename = strings.TrimSpace(currentValue)
		case "Version":
			pkg.Version = strings.TrimSpace(currentValue)
		}
	}
	for _, line := range lines {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			// Continuation of the current field's value.
			currentValue += " " + strings.TrimSpace(line)
			continue
		}
		flush()
		key, value, found := strings.Cut(line, ":")
		if !found {
			currentField = ""
			currentValue = ""
			continue
		}
		currentField = strings.TrimSpace(key)
		currentValue = value
	}
	flush()
	return pkg
}

// PairPackages returns Packages() filtered to those providing a language
// pair (see Package.IsPairPackage).
func (r *Repository) PairPackages() ([]Package, error) {
	all, err := r.Packages()
	if err != nil {
		return nil, err
	}
	var pairs []Package
	for _, p := range all {
		if p.IsPairPackage() {
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

// LocalPairs lists the "src-tgt" pairs this repository has mode files
// registered for under CacheDir/modes, i.e. the pairs usable without a
// further download.
func (r *Repository) LocalPairs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.CacheDir, "modes", "*.mode"))
	if err != nil {
		return nil, fmt.Errorf("list local modes: %w", err)
	}
	pairs := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		pairs = append(pairs, strings.TrimSuffix(name, ".mode"))
	}
	return pairs, nil
}

// FindPackage returns the first package whose Package or Provides field
// equals name, or nil if none match.
func (r *Repository) FindPackage(name string) (*Package, error) {
	all, err := r.Packages()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Package == name || all[i].Provides == name {
			return &all[i], nil
		}
	}
	r.Logger.Warn("apertium.repository.package.not_found", "package", name)
	return nil, nil
}

// FindPairPackage canonicalizes pair to alpha-3 and returns the first
// pair package whose Package name ends with that pair or its reverse.
func (r *Repository) FindPairPackage(pair string) (*Package, error) {
	pair3, err := langcode.ToAlpha3Pair(pair)
	if err != nil {
		return nil, err
	}
	reversed := reversePair(pair3)

	pairs, err := r.PairPackages()
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		if strings.HasSuffix(pairs[i].Package, pair3) || strings.HasSuffix(pairs[i].Package, reversed) {
			return &pairs[i], nil
		}
	}
	return nil, nil
}

func reversePair(pair string) string {
	parts := strings.SplitN(pair, "-", 2)
	if len(parts) != 2 {
		return pair
	}
	return parts[1] + "-" + parts[0]
}

// RemotePairs returns every "src-tgt" pair string advertised by the
// repository's pair packages, read from both their Package and Provides
// fields (a single package can provide aliases in Provides).
func (r *Repository) RemotePairs() ([]string, error) {
	pairs, err := r.PairPackages()
	if err != nil {
		return nil, err
	}
	var result []string
	for _, p := range pairs {
		for _, attr := range []string{p.Package, p.Provides} {
			for _, name := range strings.Split(attr, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				if pair := packageNameToPair(name); pair != "" {
					result = append(result, pair)
				}
			}
		}
	}
	return result, nil
}

// packageNameToPair extracts the trailing "src-tgt" pair from a package
// name like "apertium-eng-spa", returning its last two dash-separated
// segments.
func packageNameToPair(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[len(parts)-2:], "-")
}

// NewPairUnavailableError is a convenience wrapper so callers across this
// package raise a consistently typed error.
func NewPairUnavailableError(pair string) error {
	return esterrors.NewPairUnavailable(pair)
}
