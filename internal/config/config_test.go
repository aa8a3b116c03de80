// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestParseMaxContentLength(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"-1", -1},
		{"0", 0},
		{"100", 100},
		{"1K", 1024},
		{"1k", 1024},
		{"2M", 2 * 1024 * 1024},
		{"19G", 19 * 1024 * 1024 * 1024},
		{"", -1},
	}
	for _, tt := range tests {
		got, err := ParseMaxContentLength(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseMaxContentLengthRejectsGarbage(t *testing.T) {
	_, err := ParseMaxContentLength("not-a-size")
	assert.Error(t, err)
}

func TestDefaultsFallBackWhenEnvUnset(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, DefaultElasticsearchURL, cfg.URL)
	assert.Equal(t, DefaultElasticsearchIndex, cfg.Index)
	assert.Equal(t, DefaultInterpreter, cfg.Interpreter)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, int64(19)<<30, cfg.MaxContentLength)
	assert.Equal(t, DefaultDevice, cfg.Device)
}

func TestDefaultsHonorsEnvironment(t *testing.T) {
	t.Setenv("ES_TRANSLATOR_ELASTICSEARCH_URL", "http://cluster.example:9200")
	t.Setenv("ES_TRANSLATOR_POOL_SIZE", "4")
	t.Setenv("ES_TRANSLATOR_MAX_CONTENT_LENGTH", "8")

	cfg, err := Defaults()
	require.NoError(t, err)

	assert.Equal(t, "http://cluster.example:9200", cfg.URL)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, int64(8), cfg.MaxContentLength)
}

func TestValidateRequiresURL(t *testing.T) {
	cfg := Config{Index: "docs", SourceLanguage: "en", TargetLanguage: "es", PoolSize: 1, Interpreter: "APERTIUM"}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRequiresLanguagePair(t *testing.T) {
	cfg := Config{URL: "http://x", Index: "docs", PoolSize: 1, Interpreter: "APERTIUM"}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := Config{
		URL: "http://x", Index: "docs", SourceLanguage: "en", TargetLanguage: "es",
		PoolSize: 2, Interpreter: "APERTIUM",
	}
	assert.NoError(t, cfg.Validate())
}

func TestApplyFileOverlaysOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, writeFile(path, "index: translated-docs\npool_size: 8\n"))

	base := Config{URL: "http://base", Index: "docs", PoolSize: 1, SourceField: "content"}
	merged, err := ApplyFile(base, path)
	require.NoError(t, err)

	assert.Equal(t, "http://base", merged.URL, "unset fields keep the base value")
	assert.Equal(t, "translated-docs", merged.Index)
	assert.Equal(t, 8, merged.PoolSize)
	assert.Equal(t, "content", merged.SourceField)
}

func TestApplyFileRejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, writeFile(path, "index: [unterminated\n"))

	_, err := ApplyFile(Config{}, path)
	assert.Error(t, err)
}

func TestApplyFileRejectsMissingFile(t *testing.T) {
	_, err := ApplyFile(Config{}, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
