// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package topology picks a default worker-pool width for the tile
// scheduler's multi-threaded tick mode when the caller passes a
// threads-hint of zero, and reports the hardware topology behind that
// choice for diagnostics. It reuses golang.org/x/sys/cpu, the teacher's
// dependency for runtime hardware introspection, repurposed from "which
// SIMD instruction set is present" to "what does cmd/voxelbench print
// about the machine running the benchmark."
package topology

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// DefaultThreads returns the worker-pool width to use when a step
// controller is constructed with a threads-hint of zero: the detected
// logical CPU count, floored at 1.
func DefaultThreads() int {
	if n := runtime.NumCPU(); n >= 1 {
		return n
	}
	return 1
}

// Summary returns a one-line description of the detected CPU, printed by
// cmd/voxelbench when it is run without a subcommand.
func Summary() string {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		return fmt.Sprintf("amd64 cpus=%d avx2=%v avx512=%v", runtime.NumCPU(), cpu.X86.HasAVX2, cpu.X86.HasAVX512F)
	case "arm64":
		return fmt.Sprintf("arm64 cpus=%d neon=%v", runtime.NumCPU(), cpu.ARM64.HasASIMD)
	default:
		return fmt.Sprintf("%s cpus=%d", arch, runtime.NumCPU())
	}
}
