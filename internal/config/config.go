// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads and validates the translation engine's options
// (spec §6), the same way the original's config.py centralized defaults
// behind ES_TRANSLATOR_* environment variables. Flag parsing lives in
// cmd/estranslator; this package only knows how to build, default, and
// validate a Config value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	esterrors "github.com/ICIJ/es-translator/internal/errors"
)

// Defaults mirror config.py's DEFAULT_* constants exactly, including the
// "19G" max-content-length sentinel the original used as an effectively
// unlimited value.
const (
	DefaultElasticsearchURL   = "http://localhost:9200"
	DefaultElasticsearchIndex = "local-datashare"
	DefaultRedisURL           = "redis://localhost:6379"
	DefaultInterpreter        = "ARGOS"
	DefaultSourceField        = "content"
	DefaultTargetField        = "content_translated"
	DefaultMaxContentLength   = "19G"
	DefaultPoolSize           = 1
	DefaultPoolTimeout        = 30 * time.Minute
	DefaultScanScroll         = "5m"
	DefaultDevice             = "auto"
)

// Config is the full set of options the engine consumes, per spec §6.
type Config struct {
	URL                  string
	Index                string
	SourceLanguage       string
	TargetLanguage       string
	IntermediaryLanguage string
	SourceField          string
	TargetField          string
	QueryString          string
	DataDir              string
	ScanScroll           string
	DryRun               bool
	Force                bool
	PoolSize             int
	PoolTimeout          time.Duration
	Throttle             time.Duration
	Interpreter          string
	MaxContentLength     int64
	Device               string
	Plan                 bool
	BrokerURL            string
}

// Defaults returns a Config seeded from ES_TRANSLATOR_* environment
// variables, falling back to the original's hard-coded defaults when a
// variable is unset. Values a caller passes on the command line should
// overwrite these afterwards.
func Defaults() (Config, error) {
	redisURL := envOr("ES_TRANSLATOR_REDIS_URL", DefaultRedisURL)
	maxContentLength, err := ParseMaxContentLength(envOr("ES_TRANSLATOR_MAX_CONTENT_LENGTH", DefaultMaxContentLength))
	if err != nil {
		return Config{}, err
	}

	poolSize, err := strconv.Atoi(envOr("ES_TRANSLATOR_POOL_SIZE", strconv.Itoa(DefaultPoolSize)))
	if err != nil {
		return Config{}, esterrors.NewConfigError(
			"Invalid ES_TRANSLATOR_POOL_SIZE value",
			err.Error(),
			"set ES_TRANSLATOR_POOL_SIZE to a positive integer",
			err,
		)
	}

	poolTimeoutSeconds, err := strconv.Atoi(envOr("ES_TRANSLATOR_POOL_TIMEOUT", strconv.Itoa(int(DefaultPoolTimeout.Seconds()))))
	if err != nil {
		return Config{}, esterrors.NewConfigError(
			"Invalid ES_TRANSLATOR_POOL_TIMEOUT value",
			err.Error(),
			"set ES_TRANSLATOR_POOL_TIMEOUT to a number of seconds",
			err,
		)
	}

	return Config{
		URL:              envOr("ES_TRANSLATOR_ELASTICSEARCH_URL", DefaultElasticsearchURL),
		Index:            envOr("ES_TRANSLATOR_ELASTICSEARCH_INDEX", DefaultElasticsearchIndex),
		SourceField:      envOr("ES_TRANSLATOR_SOURCE_FIELD", DefaultSourceField),
		TargetField:      envOr("ES_TRANSLATOR_TARGET_FIELD", DefaultTargetField),
		ScanScroll:       envOr("ES_TRANSLATOR_SCAN_SCROLL", DefaultScanScroll),
		Interpreter:      envOr("ES_TRANSLATOR_INTERPRETER", DefaultInterpreter),
		MaxContentLength: maxContentLength,
		Device:           envOr("ES_TRANSLATOR_DEVICE", DefaultDevice),
		PoolSize:         poolSize,
		PoolTimeout:      time.Duration(poolTimeoutSeconds) * time.Second,
		BrokerURL:        envOr("ES_TRANSLATOR_BROKER_URL", redisURL),
	}, nil
}

// fileOverrides is the subset of Config a YAML project file may override,
// the same role the teacher's project.yaml plays for its own CLI: CLI
// flags still win, env vars set the baseline, and the file fills the
// middle so a recurring translation job doesn't need a long flag line.
type fileOverrides struct {
	URL                  *string `yaml:"url"`
	Index                *string `yaml:"index"`
	SourceLanguage       *string `yaml:"source_language"`
	TargetLanguage       *string `yaml:"target_language"`
	IntermediaryLanguage *string `yaml:"intermediary_language"`
	SourceField          *string `yaml:"source_field"`
	TargetField          *string `yaml:"target_field"`
	QueryString          *string `yaml:"query_string"`
	DataDir              *string `yaml:"data_dir"`
	ScanScroll           *string `yaml:"scan_scroll"`
	DryRun               *bool   `yaml:"dry_run"`
	Force                *bool   `yaml:"force"`
	PoolSize             *int    `yaml:"pool_size"`
	Interpreter          *string `yaml:"interpreter"`
	MaxContentLength     *string `yaml:"max_content_length"`
	Device               *string `yaml:"device"`
	Plan                 *bool   `yaml:"plan"`
	BrokerURL            *string `yaml:"broker_url"`
}

// ApplyFile reads a YAML project file at path and overlays any field it
// sets onto cfg, returning the merged Config. A missing field in the file
// leaves cfg's existing value (env default or prior override) untouched.
func ApplyFile(cfg Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	var overrides fileOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return cfg, esterrors.NewConfigError(
			fmt.Sprintf("Invalid config file %q", path),
			err.Error(),
			"fix the YAML syntax or remove the offending field",
			err,
		)
	}

	if overrides.URL != nil {
		cfg.URL = *overrides.URL
	}
	if overrides.Index != nil {
		cfg.Index = *overrides.Index
	}
	if overrides.SourceLanguage != nil {
		cfg.SourceLanguage = *overrides.SourceLanguage
	}
	if overrides.TargetLanguage != nil {
		cfg.TargetLanguage = *overrides.TargetLanguage
	}
	if overrides.IntermediaryLanguage != nil {
		cfg.IntermediaryLanguage = *overrides.IntermediaryLanguage
	}
	if overrides.SourceField != nil {
		cfg.SourceField = *overrides.SourceField
	}
	if overrides.TargetField != nil {
		cfg.TargetField = *overrides.TargetField
	}
	if overrides.QueryString != nil {
		cfg.QueryString = *overrides.QueryString
	}
	if overrides.DataDir != nil {
		cfg.DataDir = *overrides.DataDir
	}
	if overrides.ScanScroll != nil {
		cfg.ScanScroll = *overrides.ScanScroll
	}
	if overrides.DryRun != nil {
		cfg.DryRun = *overrides.DryRun
	}
	if overrides.Force != nil {
		cfg.Force = *overrides.Force
	}
	if overrides.PoolSize != nil {
		cfg.PoolSize = *overrides.PoolSize
	}
	if overrides.Interpreter != nil {
		cfg.Interpreter = *overrides.Interpreter
	}
	if overrides.MaxContentLength != nil {
		maxLen, err := ParseMaxContentLength(*overrides.MaxContentLength)
		if err != nil {
			return cfg, err
		}
		cfg.MaxContentLength = maxLen
	}
	if overrides.Device != nil {
		cfg.Device = *overrides.Device
	}
	if overrides.Plan != nil {
		cfg.Plan = *overrides.Plan
	}
	if overrides.BrokerURL != nil {
		cfg.BrokerURL = *overrides.BrokerURL
	}
	return cfg, nil
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

// ParseMaxContentLength accepts the CLI forms spec §6 lists: a bare
// integer, or an integer suffixed with K, M, or G (case-insensitive,
// base 1024). "-1" (or any negative value) means unlimited.
func ParseMaxContentLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return -1, nil
	}

	multiplier := int64(1)
	numeric := s
	if last := s[len(s)-1]; last == 'k' || last == 'K' || last == 'm' || last == 'M' || last == 'g' || last == 'G' {
		numeric = s[:len(s)-1]
		switch last {
		case 'k', 'K':
			multiplier = 1 << 10
		case 'm', 'M':
			multiplier = 1 << 20
		case 'g', 'G':
			multiplier = 1 << 30
		}
	}

	value, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, esterrors.NewConfigError(
			fmt.Sprintf("Invalid max_content_length %q", s),
			err.Error(),
			`use an integer, or a K/M/G-suffixed size such as "19G"`,
			err,
		)
	}
	if value < 0 {
		return -1, nil
	}
	return value * multiplier, nil
}

// Validate checks the option combinations the engine cannot run without,
// returning a UserError describing the first problem found.
func (c Config) Validate() error {
	if c.URL == "" {
		return esterrors.NewConfigError("Missing cluster URL", "no url was configured", "pass --url or set ES_TRANSLATOR_ELASTICSEARCH_URL", nil)
	}
	if c.Index == "" {
		return esterrors.NewConfigError("Missing index", "no index was configured", "pass --index", nil)
	}
	if c.SourceLanguage == "" || c.TargetLanguage == "" {
		return esterrors.NewConfigError("Missing language pair", "source_language and target_language are both required", "pass --source-language and --target-language", nil)
	}
	if c.PoolSize <= 0 {
		return esterrors.NewConfigError("Invalid pool_size", "pool_size must be positive", "pass a positive --pool-size", nil)
	}
	if c.Interpreter == "" {
		return esterrors.NewConfigError("Missing interpreter", "no interpreter backend was configured", "pass --interpreter apertium|argos", nil)
	}
	return nil
}
