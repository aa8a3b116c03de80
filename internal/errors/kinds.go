// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import "fmt"

// InvalidLanguageCodeError is raised when a language code cannot be mapped
// to its alpha-2, alpha-3 or display-name form.
type InvalidLanguageCodeError struct {
	Code string
}

func (e *InvalidLanguageCodeError) Error() string {
	return fmt.Sprintf("invalid language code %q", e.Code)
}

// NewInvalidLanguageCode builds an InvalidLanguageCodeError for the given code.
func NewInvalidLanguageCode(code string) error {
	return &InvalidLanguageCodeError{Code: code}
}

// PairUnavailableError is raised when an interpreter cannot resolve a
// source/target pair, either locally or for download.
type PairUnavailableError struct {
	Pair string
}

func (e *PairUnavailableError) Error() string {
	return fmt.Sprintf("language pair %q is not available", e.Pair)
}

// NewPairUnavailable builds a PairUnavailableError for the given pair string.
func NewPairUnavailable(pair string) error {
	return &PairUnavailableError{Pair: pair}
}

// DownloadLockTimeoutError is raised when a cross-process package download
// lock could not be acquired within its deadline.
type DownloadLockTimeoutError struct {
	LockKey string
}

func (e *DownloadLockTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for download lock %q", e.LockKey)
}

// NewDownloadLockTimeout builds a DownloadLockTimeoutError for the given lock key.
func NewDownloadLockTimeout(lockKey string) error {
	return &DownloadLockTimeoutError{LockKey: lockKey}
}

// TranslationFailureError wraps a back-end failure for a single document.
// It is always a per-document, non-fatal condition.
type TranslationFailureError struct {
	DocumentID string
	Err        error
}

func (e *TranslationFailureError) Error() string {
	return fmt.Sprintf("translation failed for document %q: %v", e.DocumentID, e.Err)
}

func (e *TranslationFailureError) Unwrap() error { return e.Err }

// NewTranslationFailure builds a TranslationFailureError for the given document.
func NewTranslationFailure(documentID string, err error) error {
	return &TranslationFailureError{DocumentID: documentID, Err: err}
}

// SaveFailureError wraps a cluster-side update rejection. Raising this
// always sets the engine's shared fatal cell.
type SaveFailureError struct {
	DocumentID string
	Err        error
}

func (e *SaveFailureError) Error() string {
	return fmt.Sprintf("failed to save translation for document %q: %v", e.DocumentID, e.Err)
}

func (e *SaveFailureError) Unwrap() error { return e.Err }

// NewSaveFailure builds a SaveFailureError for the given document.
func NewSaveFailure(documentID string, err error) error {
	return &SaveFailureError{DocumentID: documentID, Err: err}
}

// QueueFullError is raised when the producer could not enqueue a work item
// within pool_timeout. It is always non-fatal; the producer simply retries.
type QueueFullError struct {
	TimeoutSeconds float64
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("queue full: timed out after %.2fs", e.TimeoutSeconds)
}

// NewQueueFull builds a QueueFullError for the given timeout.
func NewQueueFull(timeoutSeconds float64) error {
	return &QueueFullError{TimeoutSeconds: timeoutSeconds}
}

// FatalTranslationError is surfaced by the producer once it observes the
// engine's shared fatal cell set by a worker.
type FatalTranslationError struct {
	Err error
}

func (e *FatalTranslationError) Error() string {
	return fmt.Sprintf("translation engine terminated: %v", e.Err)
}

func (e *FatalTranslationError) Unwrap() error { return e.Err }

// NewFatalTranslation builds a FatalTranslationError wrapping the error that
// set the fatal cell.
func NewFatalTranslation(err error) error {
	return &FatalTranslationError{Err: err}
}

// ToUserError maps a domain error kind to a CLI-facing UserError with the
// appropriate exit code. Unrecognized errors are wrapped as internal errors.
func ToUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UserError); ok {
		return ue
	}

	switch e := err.(type) {
	case *InvalidLanguageCodeError:
		return NewInputError(
			"Unrecognized language code",
			e.Error(),
			"Use an ISO 639-1 (2-letter) or ISO 639-3 (3-letter) code",
		)
	case *PairUnavailableError:
		return NewNotFoundError(
			"Language pair is not available",
			e.Error(),
			"Check that the pair exists in the interpreter's package repository",
		)
	case *DownloadLockTimeoutError:
		return NewNetworkError(
			"Timed out downloading a language pack",
			e.Error(),
			"Another process may be downloading the same pair; retry later",
			err,
		)
	case *FatalTranslationError:
		return NewInternalError(
			"Translation engine terminated due to a fatal error",
			e.Error(),
			"Check cluster connectivity and retry",
			err,
		)
	case *SaveFailureError:
		return NewNetworkError(
			"Failed to save a translated document",
			e.Error(),
			"Check cluster connectivity and permissions",
			err,
		)
	default:
		return NewInternalError(
			"Unexpected error",
			err.Error(),
			"This may be a bug; please report it",
			err,
		)
	}
}
