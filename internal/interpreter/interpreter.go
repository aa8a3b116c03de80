// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package interpreter defines the common contract every translation back end
// implements, and the derived language-pair properties shared by all of
// them.
//
// Concrete variants live in sibling packages: apertium.Direct and
// apertium.Pipelined wrap the Apertium rule-based engine, argos.Neural wraps
// the Argos neural engine. internal/factory selects one by name.
package interpreter

import (
	"context"
	"fmt"

	"github.com/ICIJ/es-translator/internal/langcode"
)

// Interpreter is the capability set every translation back end exposes.
// Constructors install whatever local resources their pair needs. A
// successful constructor call does not guarantee HasPair (a constructor
// given no source/target pair succeeds with HasPair false), nor
// IsPairAvailable (apertium.NewDirect succeeds with the pair uninstalled
// when no direct package exists; internal/factory then falls back to
// apertium.Pipelined).
type Interpreter interface {
	// Name is a stable uppercase identifier, e.g. "APERTIUM" or "ARGOS".
	Name() string

	// SourceName is the display name of the source language, e.g. "English".
	SourceName() (string, error)

	// TargetName is the display name of the target language, e.g. "Spanish".
	TargetName() (string, error)

	// HasPair reports whether both source and target languages are set.
	HasPair() bool

	// IsPairAvailable reports whether the pair is usable without further
	// download.
	IsPairAvailable() bool

	// Translate translates text from the source to the target language.
	// It is total on the interpreter's declared pair; back-end failures are
	// returned as errors.
	Translate(ctx context.Context, text string) (string, error)
}

// Pair holds the ordered (source, target) languages an interpreter was
// constructed with, plus an optional intermediary, and derives the string
// forms used throughout the pipeline.
type Pair struct {
	Source       string
	Target       string
	Intermediary string
}

// HasPair reports whether both Source and Target are set.
func (p Pair) HasPair() bool {
	return p.Source != "" && p.Target != ""
}

// HasIntermediary reports whether an intermediary language was set.
func (p Pair) HasIntermediary() bool {
	return p.Intermediary != ""
}

// String returns the "src-tgt" pair string in the codes' original form.
func (p Pair) String() string {
	return fmt.Sprintf("%s-%s", p.Source, p.Target)
}

// Alpha3 returns the pair string with both sides converted to alpha-3 form.
func (p Pair) Alpha3() (string, error) {
	return langcode.ToAlpha3Pair(p.String())
}

// Inverse returns the "tgt-src" pair string in the codes' original form.
func (p Pair) Inverse() string {
	return fmt.Sprintf("%s-%s", p.Target, p.Source)
}

// SourceName resolves the source language's display name.
func (p Pair) SourceName() (string, error) {
	alpha2, err := langcode.ToAlpha2(p.Source)
	if err != nil {
		return "", err
	}
	return langcode.ToName(alpha2)
}

// TargetName resolves the target language's display name.
func (p Pair) TargetName() (string, error) {
	alpha2, err := langcode.ToAlpha2(p.Target)
	if err != nil {
		return "", err
	}
	return langcode.ToName(alpha2)
}

// IntermediarySourcePair returns the alpha-3 "src-int" pair string, valid
// only when HasIntermediary is true.
func (p Pair) IntermediarySourcePair() (string, error) {
	src3, err := langcode.ToAlpha3(p.Source)
	if err != nil {
		return "", err
	}
	int3, err := langcode.ToAlpha3(p.Intermediary)
	if err != nil {
		return "", err
	}
	return src3 + "-" + int3, nil
}

// IntermediaryTargetPair returns the alpha-3 "int-tgt" pair string, valid
// only when HasIntermediary is true.
func (p Pair) IntermediaryTargetPair() (string, error) {
	int3, err := langcode.ToAlpha3(p.Intermediary)
	if err != nil {
		return "", err
	}
	tgt3, err := langcode.ToAlpha3(p.Target)
	if err != nil {
		return "", err
	}
	return int3 + "-" + tgt3, nil
}
