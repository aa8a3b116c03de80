// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package langcode normalizes ISO 639 language codes between their 2-letter
// (alpha-2), 3-letter (alpha-3) and display-name forms.
//
// The canonical internal form used throughout es-translator is the 2-letter
// code; the 3-letter and display-name forms are derived from it on demand.
// Conversion is total on the recognized ISO 639 set and fails with a typed
// error (internal/errors.InvalidLanguageCodeError) on anything else — there
// are no partial successes.
package langcode

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	esterrors "github.com/ICIJ/es-translator/internal/errors"
)

// ToAlpha2 converts a 2- or 3-letter ISO 639 code to its 2-letter form.
// A 2-letter input is validated and returned unchanged; a 3-letter input is
// looked up and converted. Codes with no 2-letter representation (e.g. some
// ISO 639-3-only languages) fail as InvalidLanguageCode.
func ToAlpha2(code string) (string, error) {
	switch len(code) {
	case 2:
		if _, err := language.ParseBase(strings.ToLower(code)); err != nil {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		return strings.ToLower(code), nil
	case 3:
		base, err := language.ParseBase(strings.ToLower(code))
		if err != nil {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		alpha2 := base.String()
		if len(alpha2) != 2 {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		return alpha2, nil
	default:
		return "", esterrors.NewInvalidLanguageCode(code)
	}
}

// ToAlpha3 converts a 2- or 3-letter ISO 639 code to its 3-letter form.
// A 3-letter input is validated and returned unchanged; a 2-letter input is
// looked up and converted.
func ToAlpha3(code string) (string, error) {
	switch len(code) {
	case 3:
		if _, err := language.ParseBase(strings.ToLower(code)); err != nil {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		return strings.ToLower(code), nil
	case 2:
		base, err := language.ParseBase(strings.ToLower(code))
		if err != nil {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		alpha3 := base.ISO3()
		if len(alpha3) != 3 {
			return "", esterrors.NewInvalidLanguageCode(code)
		}
		return alpha3, nil
	default:
		return "", esterrors.NewInvalidLanguageCode(code)
	}
}

// ToName returns the English display name for a 2-letter language code,
// e.g. "en" -> "English".
func ToName(alpha2 string) (string, error) {
	tag, err := language.Parse(strings.ToLower(alpha2))
	if err != nil {
		return "", esterrors.NewInvalidLanguageCode(alpha2)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return "", esterrors.NewInvalidLanguageCode(alpha2)
	}
	return name, nil
}

// ToAlpha3Pair converts a "src-tgt" pair string to its 3-letter form on
// both sides, e.g. "en-es" -> "eng-spa". ToAlpha3Pair is idempotent:
// applying it twice yields the same result as applying it once.
func ToAlpha3Pair(pair string) (string, error) {
	parts := strings.SplitN(pair, "-", 2)
	if len(parts) != 2 {
		return "", esterrors.NewInvalidLanguageCode(pair)
	}
	source, err := ToAlpha3(parts[0])
	if err != nil {
		return "", err
	}
	target, err := ToAlpha3(parts[1])
	if err != nil {
		return "", err
	}
	return source + "-" + target, nil
}
