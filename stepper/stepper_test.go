// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package stepper

import (
	"errors"
	"testing"
)

func TestFlowOnAxisSign(t *testing.T) {
	t.Run("positive gradient", func(t *testing.T) {
		if f := FlowOnAxis(100, 0, 2); f != 25 {
			t.Errorf("FlowOnAxis(100,0,2) = %d, want 25", f)
		}
	})
	t.Run("negative gradient", func(t *testing.T) {
		if f := FlowOnAxis(0, 100, 2); f != -25 {
			t.Errorf("FlowOnAxis(0,100,2) = %d, want -25", f)
		}
	})
	t.Run("zero gradient", func(t *testing.T) {
		if f := FlowOnAxis(50, 50, 3); f != 0 {
			t.Errorf("FlowOnAxis(50,50,3) = %d, want 0", f)
		}
	})
}

func TestUniformFieldIsFixedPoint(t *testing.T) {
	const w, h, d = 4, 4, 4
	snapshot := make([]uint32, w*h*d)
	for i := range snapshot {
		snapshot[i] = 100
	}
	out, err := StepField(snapshot, w, h, d, 2)
	if err != nil {
		t.Fatalf("StepField() error = %v", err)
	}
	for i, v := range out {
		if v != 100 {
			t.Errorf("out[%d] = %d, want 100 (uniform field must be a fixed point)", i, v)
		}
	}
}

func TestPointSourceInteriorCellLoses6xFlow(t *testing.T) {
	const w, h, d = 5, 5, 5
	snapshot := make([]uint32, w*h*d)
	idx := func(x, y, z int) int { return (z*h+y)*w + x }
	const v = 1_000_000
	const rate = 4 // divisor 16: keeps the isolated 6-neighbor interior cell stable
	snapshot[idx(2, 2, 2)] = v

	out, err := StepField(snapshot, w, h, d, rate)
	if err != nil {
		t.Fatalf("StepField() error = %v", err)
	}

	flow := int64(v) >> rate
	center := out[idx(2, 2, 2)]
	wantCenter := uint32(v - 6*flow)
	if center != wantCenter {
		t.Errorf("center = %d, want %d", center, wantCenter)
	}

	neighbors := [][3]int{
		{1, 2, 2}, {3, 2, 2},
		{2, 1, 2}, {2, 3, 2},
		{2, 2, 1}, {2, 2, 3},
	}
	for _, n := range neighbors {
		got := out[idx(n[0], n[1], n[2])]
		if int64(got) != flow {
			t.Errorf("neighbor %v = %d, want %d", n, got, flow)
		}
	}
}

// TestUnstableRateIsRejectedNotClamped documents the resolution of the
// open question in spec.md §9: a diffusion rate whose divisor is small
// enough that an interior cell's six outgoing flows can exceed its own
// value must surface as StabilityViolation rather than silently clamp
// to zero, since clamping fabricates mass.
func TestUnstableRateIsRejectedNotClamped(t *testing.T) {
	const w, h, d = 5, 5, 5
	snapshot := make([]uint32, w*h*d)
	idx := func(x, y, z int) int { return (z*h+y)*w + x }
	snapshot[idx(2, 2, 2)] = 1_000_000

	_, err := StepField(snapshot, w, h, d, 2)
	if err == nil {
		t.Fatalf("StepField() error = nil, want ErrStabilityViolation (6x(v>>2) > v)")
	}
	if !errors.Is(err, ErrStabilityViolation) {
		t.Fatalf("StepField() error = %v, want wrapping ErrStabilityViolation", err)
	}
}

func TestConservationAcrossGenerations(t *testing.T) {
	const w, h, d = 6, 6, 6
	snapshot := make([]uint32, w*h*d)
	idx := func(x, y, z int) int { return (z*h+y)*w + x }
	snapshot[idx(3, 3, 3)] = 500_000

	sum := func(cells []uint32) uint64 {
		var s uint64
		for _, c := range cells {
			s += uint64(c)
		}
		return s
	}

	before := sum(snapshot)
	cur := snapshot
	for gen := 0; gen < 4; gen++ {
		next, err := StepField(cur, w, h, d, 3)
		if err != nil {
			t.Fatalf("generation %d: StepField() error = %v", gen, err)
		}
		if after := sum(next); after != before {
			t.Fatalf("generation %d: total mass = %d, want %d", gen, after, before)
		}
		cur = next
	}
}

// TestRotationalSymmetry covers spec.md §8 property 4 and concrete
// scenario 5: stepping an arbitrarily rotated cube, then rotating the
// result back, must match stepping the original directly. The fused
// stepper treats all three axes identically, so it must commute with
// every orientation-preserving cubic rotation.
func TestRotationalSymmetry(t *testing.T) {
	rotations := CubeRotations()
	if len(rotations) != 24 {
		t.Fatalf("CubeRotations() produced %d matrices, want 24", len(rotations))
	}

	cases := []struct {
		n    int
		rate uint8
		seed func(n int) []uint32
	}{
		{n: 2, rate: 3, seed: func(n int) []uint32 {
			return []uint32{10, 20, 30, 40, 50, 60, 70, 80}
		}},
		{n: 4, rate: 3, seed: func(n int) []uint32 {
			out := make([]uint32, n*n*n)
			for i := range out {
				if i%5 == 0 {
					out[i] = uint32(10 + i)
				}
			}
			return out
		}},
	}

	for _, tc := range cases {
		snapshot := tc.seed(tc.n)
		want, err := StepField(snapshot, int16(tc.n), int16(tc.n), int16(tc.n), tc.rate)
		if err != nil {
			t.Fatalf("n=%d: reference StepField() error = %v", tc.n, err)
		}

		for ri, m := range rotations {
			rotated := RotateCube(snapshot, tc.n, m)
			steppedRotated, err := StepField(rotated, int16(tc.n), int16(tc.n), int16(tc.n), tc.rate)
			if err != nil {
				t.Fatalf("n=%d rotation %d: StepField() error = %v", tc.n, ri, err)
			}
			unrotated := RotateCube(steppedRotated, tc.n, Invert(m))

			for i := range want {
				if unrotated[i] != want[i] {
					t.Fatalf("n=%d rotation %d: cell %d = %d, want %d", tc.n, ri, i, unrotated[i], want[i])
				}
			}
		}
	}
}

func TestStabilityViolationNotClamped(t *testing.T) {
	// A 1-D-like strip where the gradient's flow would overdraw a cell if
	// multiple axes contributed negative flow beyond the cell's balance.
	// Two adjacent cells, an extreme rate of 0 (no shift) forces the full
	// gradient to move in one step, which a single pair never destabilizes
	// (conservation holds pairwise); we construct the violation directly
	// against the Accumulator to document the contract without relying on
	// a specific field shape that triggers it.
	acc := NewAccumulator([]uint32{0, 0})
	acc.values[0] = -1
	if _, err := acc.Commit(); err == nil {
		t.Fatalf("Commit() error = nil, want ErrStabilityViolation")
	}
}
