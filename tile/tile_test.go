// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package tile

import (
	"testing"

	"github.com/latticeforge/voxeldiffusion/internal/morton"
	"github.com/latticeforge/voxeldiffusion/stepper"
)

func TestNewGridClipsBoundaryTiles(t *testing.T) {
	g := NewGrid(10, 10, 10, 1, 4)
	if g.NX != 3 || g.NY != 3 || g.NZ != 3 {
		t.Fatalf("grid dims = (%d,%d,%d), want (3,3,3)", g.NX, g.NY, g.NZ)
	}
	b := g.Bounds(morton.Coord{X: 2, Y: 2, Z: 2})
	if b.Max[0] != 10 || b.Max[1] != 10 || b.Max[2] != 10 {
		t.Errorf("boundary tile max = %v, want clipped to (10,10,10)", b.Max)
	}
	if b.Min[0] != 8 || b.Min[1] != 8 || b.Min[2] != 8 {
		t.Errorf("boundary tile min = %v, want (8,8,8)", b.Min)
	}
}

func TestColorSeparatesFaceNeighbors(t *testing.T) {
	base := morton.Coord{X: 2, Y: 3, Z: 1}
	neighbors := []morton.Coord{
		{X: base.X + 1, Y: base.Y, Z: base.Z},
		{X: base.X - 1, Y: base.Y, Z: base.Z},
		{X: base.X, Y: base.Y + 1, Z: base.Z},
		{X: base.X, Y: base.Y - 1, Z: base.Z},
		{X: base.X, Y: base.Y, Z: base.Z + 1},
		{X: base.X, Y: base.Y, Z: base.Z - 1},
	}
	for _, n := range neighbors {
		if Color(n) == Color(base) {
			t.Errorf("Color(%v) == Color(%v) == %d, want different colors for face neighbors", n, base, Color(base))
		}
	}
}

// TestTileProcessingMatchesReferenceStepper verifies the tile-partitioned,
// ownership-respecting traversal produces the exact same committed cells
// as the whole-field reference stepper, for several shapes that exercise
// boundary-clipped tiles.
func TestTileProcessingMatchesReferenceStepper(t *testing.T) {
	shapes := []struct{ w, h, d int16 }{
		{4, 4, 4}, {10, 10, 10}, {17, 5, 9}, {16, 16, 16}, {33, 17, 5},
	}
	for _, shp := range shapes {
		snapshot := seedSnapshot(shp.w, shp.h, shp.d)
		const rate = 3 // divisor 8 keeps sparse isolated sources stable (6/8 < 1)

		want, err := stepper.StepField(snapshot, shp.w, shp.h, shp.d, rate)
		if err != nil {
			t.Fatalf("shape %v: StepField() error = %v", shp, err)
		}

		grid := NewGrid(shp.w, shp.h, shp.d, rate, 4)
		queue := morton.Sequence(grid.NX, grid.NY, grid.NZ)
		acc := stepper.NewAccumulator(snapshot)
		for _, c := range queue {
			grid.Process(acc, snapshot, c)
		}
		got, err := acc.Commit()
		if err != nil {
			t.Fatalf("shape %v: Commit() error = %v", shp, err)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("shape %v: cell %d = %d, want %d (tile traversal diverged from reference)", shp, i, got[i], want[i])
			}
		}
	}
}

func seedSnapshot(w, h, d int16) []uint32 {
	n := int(w) * int(h) * int(d)
	out := make([]uint32, n)
	for i := range out {
		switch {
		case i%7 == 0:
			out[i] = uint32(1000 + i)
		case i%13 == 0:
			out[i] = uint32(500 + i)
		}
	}
	return out
}
