// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package stepper implements the fused diffusion step: a pure function
// from an immutable cell snapshot to a next-generation accumulation,
// computing per-pair flows along all three axes from the same snapshot
// and accumulating them commutatively into one destination.
//
// Every exported function here is free of side effects on its inputs;
// the tile scheduler drives this package's Accumulator across tiles to
// get the same result incrementally that StepField computes in one pass.
package stepper

import (
	"errors"
	"fmt"
)

// ErrStabilityViolation is returned when a cell's final signed
// accumulation would be negative — a diffusion-rate configuration
// inconsistent with the input, not a clamp-worthy rounding artifact.
var ErrStabilityViolation = errors.New("stepper: stability violation")

// FlowOnAxis computes the signed flow from the lower-index cell a to the
// higher-index cell b along one axis: g = a - b in signed 64-bit
// arithmetic, f = g / 2^rate truncated toward zero (the magnitude is
// shifted, the sign kept). FlowOnAxis(b, a, rate) is therefore exactly
// -FlowOnAxis(a, b, rate), so the flow between two cells does not depend
// on which of them has the lower index.
//
// Callers apply the result as D[a] -= f; D[b] += f, which is what
// Accumulator.Apply does.
func FlowOnAxis(a, b uint32, rate uint8) int64 {
	g := int64(a) - int64(b)
	if g < 0 {
		return -(-g >> rate)
	}
	return g >> rate
}

// Accumulator holds the in-progress signed accumulation for one
// generation. It starts seeded from a snapshot and is mutated by Apply
// calls; Commit converts it back to cells, or reports a stability
// violation if any cell would commit negative.
type Accumulator struct {
	values []int64
}

// NewAccumulator seeds an accumulator from a snapshot's cell values widened
// to signed 64-bit integers, so all further accumulation happens in a
// range that can transiently go negative without wrapping.
func NewAccumulator(snapshot []uint32) Accumulator {
	values := make([]int64, len(snapshot))
	for i, v := range snapshot {
		values[i] = int64(v)
	}
	return Accumulator{values: values}
}

// Len returns the number of cells the accumulator covers.
func (acc Accumulator) Len() int { return len(acc.values) }

// Apply computes the flow between snapshot cells at lowerIdx and
// upperIdx (lowerIdx's value treated as the "a" side of FlowOnAxis) and
// applies it symmetrically: values[lowerIdx] -= f, values[upperIdx] += f.
// snapshot must be the same snapshot the accumulator was seeded from;
// reads always come from snapshot, never from the mutating accumulator,
// which is what keeps the three axes order-independent.
func (acc Accumulator) Apply(snapshot []uint32, lowerIdx, upperIdx int, rate uint8) {
	f := FlowOnAxis(snapshot[lowerIdx], snapshot[upperIdx], rate)
	acc.values[lowerIdx] -= f
	acc.values[upperIdx] += f
}

// Commit converts the accumulator to a committed cell array. A cell whose
// final accumulation is negative is a stability violation: the core must
// not clamp it to zero, since doing so would create mass.
func (acc Accumulator) Commit() ([]uint32, error) {
	out := make([]uint32, len(acc.values))
	for i, v := range acc.values {
		if v < 0 {
			return nil, fmt.Errorf("%w: cell %d accumulated to %d", ErrStabilityViolation, i, v)
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// StepField computes one full generation over an entire field shape in a
// single pass, enumerating every axis-adjacent cell pair exactly once.
// It is the reference the tile scheduler's partitioned, incremental
// computation must reproduce bit-for-bit (spec.md §8, property 2).
func StepField(snapshot []uint32, width, height, depth int16, rate uint8) ([]uint32, error) {
	if len(snapshot) != int(width)*int(height)*int(depth) {
		return nil, fmt.Errorf("stepper: snapshot length %d does not match shape %dx%dx%d", len(snapshot), width, height, depth)
	}
	acc := NewAccumulator(snapshot)
	idx := func(x, y, z int16) int {
		return (int(z)*int(height)+int(y))*int(width) + int(x)
	}
	for z := int16(0); z < depth; z++ {
		for y := int16(0); y < height; y++ {
			for x := int16(0); x < width; x++ {
				here := idx(x, y, z)
				if x+1 < width {
					acc.Apply(snapshot, here, idx(x+1, y, z), rate)
				}
				if y+1 < height {
					acc.Apply(snapshot, here, idx(x, y+1, z), rate)
				}
				if z+1 < depth {
					acc.Apply(snapshot, here, idx(x, y, z+1), rate)
				}
			}
		}
	}
	return acc.Commit()
}
