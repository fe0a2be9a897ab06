// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Command voxelcabi is the cgo shim that re-exposes internal/ffi's
// handle table across a real C ABI, built with -buildmode=c-archive so
// a host engine can link the resulting .a/.h pair directly, per
// spec.md §6's foreign-binary-interface table.
//
//	go build -buildmode=c-archive -o libvoxelcabi.a ./cmd/voxelcabi
//
// package main exports no Go-callable API of its own; every exported
// symbol below is a thin cgo-typed wrapper around the matching
// internal/ffi function, converting machine-level C types to and from
// Go's.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"github.com/latticeforge/voxeldiffusion/internal/ffi"
)

//export create_controller
func create_controller(w, h, d C.int16_t, rate C.uint8_t, threads C.uint8_t) C.uintptr_t {
	handle := ffi.CreateController(int16(w), int16(h), int16(d), uint8(rate), uint8(threads))
	return C.uintptr_t(handle)
}

//export destroy_controller
func destroy_controller(handle C.uintptr_t) {
	ffi.DestroyController(uintptr(handle))
}

//export field_set
func field_set(handle C.uintptr_t, x, y, z C.int16_t, value C.uint32_t) {
	ffi.FieldSet(uintptr(handle), int16(x), int16(y), int16(z), uint32(value))
}

//export field_get
func field_get(handle C.uintptr_t, x, y, z C.int16_t) C.uint32_t {
	return C.uint32_t(ffi.FieldGet(uintptr(handle), int16(x), int16(y), int16(z)))
}

//export field_get_generation
func field_get_generation(handle C.uintptr_t) C.uint64_t {
	return C.uint64_t(ffi.FieldGetGeneration(uintptr(handle)))
}

//export begin_step
func begin_step(handle C.uintptr_t) C.int32_t {
	return C.int32_t(ffi.BeginStep(uintptr(handle)))
}

//export tick
func tick(handle C.uintptr_t, budget_us C.uint64_t) C.int32_t {
	return C.int32_t(ffi.Tick(uintptr(handle), uint64(budget_us)))
}

//export is_stepping
func is_stepping(handle C.uintptr_t) C.int32_t {
	return C.int32_t(ffi.IsStepping(uintptr(handle)))
}

//export step_blocking
func step_blocking(handle C.uintptr_t) {
	ffi.StepBlocking(uintptr(handle))
}

// main is required by package main but is never invoked: a
// c-archive build never runs Go's main, only the exported symbols
// above, linked into a host binary.
func main() {}
