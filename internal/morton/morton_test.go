// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package morton

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct{ x, y, z uint32 }{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{7, 3, 5}, {255, 255, 255}, {1023, 0, 1023},
	}
	for _, c := range cases {
		key := Encode(c.x, c.y, c.z)
		gx, gy, gz := Decode(key)
		if gx != c.x || gy != c.y || gz != c.z {
			t.Errorf("Decode(Encode(%d,%d,%d)) = (%d,%d,%d)", c.x, c.y, c.z, gx, gy, gz)
		}
	}
}

func TestSequenceCoversAllCoordsExactlyOnce(t *testing.T) {
	nx, ny, nz := 3, 4, 2
	seq := Sequence(nx, ny, nz)
	if len(seq) != nx*ny*nz {
		t.Fatalf("len(Sequence) = %d, want %d", len(seq), nx*ny*nz)
	}
	seen := make(map[Coord]bool)
	for _, c := range seq {
		if seen[c] {
			t.Errorf("duplicate coord %v", c)
		}
		seen[c] = true
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if !seen[Coord{x, y, z}] {
					t.Errorf("missing coord {%d,%d,%d}", x, y, z)
				}
			}
		}
	}
}

func TestSequenceIsAscendingByKey(t *testing.T) {
	seq := Sequence(4, 4, 4)
	prev := uint64(0)
	for i, c := range seq {
		key := Encode(uint32(c.X), uint32(c.Y), uint32(c.Z))
		if i > 0 && key < prev {
			t.Errorf("sequence not ascending at %d: key %d < prev %d", i, key, prev)
		}
		prev = key
	}
}
