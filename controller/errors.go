// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package controller

import "errors"

// Error taxonomy, spec.md §7. Each is a sentinel error value; BeginStep
// and FieldSet return them unwrapped, so callers can compare with == or
// errors.Is. Errors from lower layers (stepper.ErrStabilityViolation) are
// wrapped with fmt.Errorf("...: %w", ...) by Tick, following the
// teacher's error-wrapping convention (cmd/hwygen/generator.go).
var (
	// ErrAlreadyStepping is returned by BeginStep when a generation is
	// already in progress.
	ErrAlreadyStepping = errors.New("controller: already stepping")

	// ErrBusyStepping is returned by FieldSet while a generation is in
	// progress; writes are forbidden mid-step.
	ErrBusyStepping = errors.New("controller: busy stepping")

	// ErrAllocationFailure is returned by BeginStep if the snapshot or
	// destination buffer cannot be obtained. Go's allocator does not
	// expose a recoverable out-of-memory signal, so this is reserved
	// for future allocator-aware backends; it is never returned today.
	ErrAllocationFailure = errors.New("controller: allocation failure")
)
