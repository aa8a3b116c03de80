// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package apertium

import (
	"context"
	"log/slog"

	apertiumpkg "github.com/ICIJ/es-translator/internal/apertium"
	esterrors "github.com/ICIJ/es-translator/internal/errors"
	"github.com/ICIJ/es-translator/internal/interpreter"
)

// Pipelined chains two Apertium invocations through an intermediary
// language when no direct source-target package is published. If the
// pair was constructed without an explicit intermediary, one is
// auto-discovered from the repository's remote pair list.
type Pipelined struct {
	interpreter.Pair
	PackDir string
	Logger  *slog.Logger
}

// NewPipelined resolves (auto-discovering if necessary) and installs the
// two intermediary pair packages required to translate source to target
// through pair.Intermediary.
func NewPipelined(ctx context.Context, pair interpreter.Pair, packDir string, repo *apertiumpkg.Repository, logger *slog.Logger) (*Pipelined, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipelined{Pair: pair, PackDir: packDir, Logger: logger}
	if !p.HasPair() {
		return p, nil
	}

	if p.Intermediary == "" {
		remotePairs, err := repo.RemotePairs()
		if err != nil {
			return nil, err
		}
		source3, err := p.Pair.Alpha3()
		if err != nil {
			return nil, err
		}
		// Alpha3() joins with "-"; split back out for the tree search.
		sourceLang := source3[:3]
		targetLang := source3[len(source3)-3:]
		intermediary := apertiumpkg.FindIntermediary(sourceLang, targetLang, remotePairs)
		if intermediary == "" {
			return nil, esterrors.NewPairUnavailable(pair.String())
		}
		p.Intermediary = intermediary
	}

	sourcePair, err := p.IntermediarySourcePair()
	if err != nil {
		return nil, err
	}
	targetPair, err := p.IntermediaryTargetPair()
	if err != nil {
		return nil, err
	}
	for _, leg := range []string{sourcePair, targetPair} {
		if modeFileExists(packDir, leg) {
			continue
		}
		if _, err := repo.InstallPairPackage(leg); err != nil {
			return nil, esterrors.NewPairUnavailable(leg)
		}
	}
	return p, nil
}

// Name identifies this interpreter in logs, config and factory lookups.
func (p *Pipelined) Name() string { return "APERTIUM" }

// IsPairAvailable reports whether both pipeline legs have installed mode
// files.
func (p *Pipelined) IsPairAvailable() bool {
	sourcePair, err := p.IntermediarySourcePair()
	if err != nil {
		return false
	}
	targetPair, err := p.IntermediaryTargetPair()
	if err != nil {
		return false
	}
	return modeFileExists(p.PackDir, sourcePair) && modeFileExists(p.PackDir, targetPair)
}

// Translate runs text through the source-to-intermediary apertium mode,
// then the intermediary-to-target mode.
func (p *Pipelined) Translate(ctx context.Context, text string) (string, error) {
	sourcePair, err := p.IntermediarySourcePair()
	if err != nil {
		return "", err
	}
	targetPair, err := p.IntermediaryTargetPair()
	if err != nil {
		return "", err
	}

	intermediate, err := runApertium(ctx, p.PackDir, sourcePair, text)
	if err != nil {
		return "", err
	}
	return runApertium(ctx, p.PackDir, targetPair, intermediate)
}
