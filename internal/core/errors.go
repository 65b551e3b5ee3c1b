// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package core defines the error kinds shared across the service.
//
// Every layer wraps its failures in exactly one of these sentinels so the
// HTTP surface can map errors to status codes with errors.Is instead of
// string matching, and so retry policies can distinguish caller mistakes
// from transient infrastructure faults.
package core

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap with the helpers below; match with errors.Is.
var (
	// ErrValidation marks malformed or out-of-range caller input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup for an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrState marks an operation that is valid in general but not in the
	// entity's current lifecycle state, such as picking in a finished round.
	ErrState = errors.New("invalid state")

	// ErrModelNotReady marks scoring requests made before the recommender
	// has a feature space, typically because the catalog is still empty.
	ErrModelNotReady = errors.New("model not ready")

	// ErrSchema marks a persistent-data shape violation. Schema errors are
	// fatal at startup; they never occur on the request path.
	ErrSchema = errors.New("schema error")

	// ErrTransientExternal marks a retryable upstream failure such as a
	// TMDB 5xx or a network timeout.
	ErrTransientExternal = errors.New("transient external error")
)

// Validationf wraps a formatted message as a validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps a formatted message as a not-found error.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Statef wraps a formatted message as a lifecycle-state error.
func Statef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// ModelNotReadyf wraps a formatted message as a model-readiness error.
func ModelNotReadyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrModelNotReady, fmt.Sprintf(format, args...))
}

// Schemaf wraps a formatted message as a schema error.
func Schemaf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// TransientExternalf wraps a formatted message as a transient upstream error.
func TransientExternalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransientExternal, fmt.Sprintf(format, args...))
}

// Transient reports whether err should be retried.
func Transient(err error) bool {
	return errors.Is(err, ErrTransientExternal)
}
