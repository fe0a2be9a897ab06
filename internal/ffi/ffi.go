// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package ffi is the pure-Go half of the foreign binary interface: an
// opaque handle table over controller.Controller plus the exact entry
// points of the core's C ABI table, each converting flat integer and
// pointer arguments into controller calls and back to the mandated
// return codes. cmd/voxelcabi re-exports these across a real cgo
// boundary; this package never imports "C" itself, so it stays
// testable with ordinary Go tooling.
package ffi

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/latticeforge/voxeldiffusion/controller"
)

// Return codes for BeginStep / Tick, matching spec.md §6 exactly.
const (
	BeginStepOK             int32 = 0
	BeginStepAlreadyStepping int32 = 1

	TickNotDone int32 = 0
	TickDone    int32 = 1
)

var (
	tableMu sync.Mutex
	table   = map[uintptr]*controller.Controller{}
	nextID  uintptr
	lastErr error
)

// register assigns a fresh non-zero handle to c. Zero is reserved so
// CreateController's null-handle failure path is a real zero value the
// host can test for.
func register(c *controller.Controller) uintptr {
	tableMu.Lock()
	defer tableMu.Unlock()
	nextID++
	id := nextID
	table[id] = c
	return id
}

func lookup(handle uintptr) *controller.Controller {
	tableMu.Lock()
	defer tableMu.Unlock()
	return table[handle]
}

func unregister(handle uintptr) {
	tableMu.Lock()
	defer tableMu.Unlock()
	delete(table, handle)
}

// HandleCount reports the number of live controllers, for leak
// diagnostics and tests.
func HandleCount() int {
	tableMu.Lock()
	defer tableMu.Unlock()
	return len(table)
}

// liveHandles is an atomic counter mirrored alongside the table so
// diagnostic builds can sample it without taking tableMu.
var liveHandles int64

// LiveHandleCount reports the same count as HandleCount but without
// taking tableMu, for a diagnostic host that samples it frequently (for
// example on every voxelctl invocation) and would rather not contend
// with field_set/field_get traffic on a busy controller.
func LiveHandleCount() int64 {
	return atomic.LoadInt64(&liveHandles)
}

// CreateController is the create_controller entry point. It returns 0
// on failure (invalid extents, invalid rate, or allocation failure),
// matching "controller handle or null" in spec.md §6.
func CreateController(w, h, d int16, rate uint8, threads uint8) uintptr {
	c, err := controller.New(w, h, d, rate, int(threads))
	if err != nil {
		// Wrap for the diagnostic cause chain LastError exposes to
		// cmd/voxelctl; the ABI boundary itself only ever sees the
		// zero handle.
		tableMu.Lock()
		lastErr = errors.Wrap(err, "ffi: create_controller")
		tableMu.Unlock()
		return 0
	}
	tableMu.Lock()
	lastErr = nil
	tableMu.Unlock()
	handle := register(c)
	atomic.AddInt64(&liveHandles, 1)
	return handle
}

// LastError returns the cause chain behind the most recent
// CreateController failure, or nil if the last call succeeded or none
// has been made yet. The flat C ABI never sees this; it exists for a
// diagnostic host-side build to print what create_controller's null
// return did not explain.
func LastError() error {
	tableMu.Lock()
	defer tableMu.Unlock()
	return lastErr
}

// DestroyController is the destroy_controller entry point. It is a
// no-op on an unknown or already-destroyed handle.
func DestroyController(handle uintptr) {
	c := lookup(handle)
	if c == nil {
		return
	}
	c.Close()
	unregister(handle)
	atomic.AddInt64(&liveHandles, -1)
}

// FieldSet is the field_set entry point. Out-of-bounds coordinates and
// a busy (Stepping) controller are both silent no-ops per spec.md §7.
func FieldSet(handle uintptr, x, y, z int16, value uint32) {
	c := lookup(handle)
	if c == nil {
		return
	}
	_ = c.FieldSet(x, y, z, value)
}

// FieldGet is the field_get entry point. An unknown handle or
// out-of-bounds coordinate both return zero, matching field.Field's
// own out-of-bounds convention.
func FieldGet(handle uintptr, x, y, z int16) uint32 {
	c := lookup(handle)
	if c == nil {
		return 0
	}
	return c.FieldGet(x, y, z)
}

// FieldGetGeneration is the field_get_generation entry point.
func FieldGetGeneration(handle uintptr) uint64 {
	c := lookup(handle)
	if c == nil {
		return 0
	}
	return c.FieldGetGeneration()
}

// BeginStep is the begin_step entry point.
func BeginStep(handle uintptr) int32 {
	c := lookup(handle)
	if c == nil {
		return BeginStepAlreadyStepping
	}
	if err := c.BeginStep(); err != nil {
		return BeginStepAlreadyStepping
	}
	return BeginStepOK
}

// Tick is the tick entry point. A StabilityViolation aborts the
// generation inside controller.Controller; the ABI boundary only
// reports not-done, since §7 has no dedicated tick failure code beyond
// the done/not-done pair — a host wanting the failure detail should
// poll IsStepping, which will report false after an aborted
// generation even though Tick itself returned TickNotDone on the call
// that aborted it.
func Tick(handle uintptr, budgetUs uint64) int32 {
	c := lookup(handle)
	if c == nil {
		return TickDone
	}
	done, err := c.Tick(budgetUs)
	if err != nil {
		return TickNotDone
	}
	if done {
		return TickDone
	}
	return TickNotDone
}

// IsStepping is the is_stepping entry point.
func IsStepping(handle uintptr) int32 {
	c := lookup(handle)
	if c == nil {
		return 0
	}
	if c.IsStepping() {
		return 1
	}
	return 0
}

// StepBlocking is the step_blocking entry point. Per spec.md §6 it
// returns void; a StabilityViolation still aborts the generation and
// leaves the field at its prior generation, observable via
// FieldGetGeneration.
func StepBlocking(handle uintptr) {
	c := lookup(handle)
	if c == nil {
		return
	}
	_ = c.StepBlocking()
}
