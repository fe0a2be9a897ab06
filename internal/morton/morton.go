// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package morton provides Z-order (Morton) interleaving for 3-D tile
// coordinates. It is a small integer transform in the spirit of the
// teacher's algo-transform helpers, paired with the stdlib sort package
// for ordering the resulting keys (a dedicated SIMD sort is not adopted
// here: tile counts per generation are small enough that a general
// comparison sort is never the bottleneck; see the root DESIGN.md).
package morton

import "sort"

// Encode interleaves the bits of three non-negative coordinates (each
// expected to fit in 16 bits; with the default tile edge, the voxel
// field's maximum extent needs tile coordinates up to 2047 per axis) into
// a single 48-bit Morton key.
func Encode(x, y, z uint32) uint64 {
	return spread(x) | spread(y)<<1 | spread(z)<<2
}

// spread inserts two zero bits after every bit of v, up to 16 input bits,
// so that three spread values can be OR'd together (shifted by 0, 1, 2)
// to interleave them.
func spread(v uint32) uint64 {
	x := uint64(v) & 0xffff
	x = (x | x<<16) & 0x1f0000ff0000ff
	x = (x | x<<8) & 0x100f00f00f00f00f
	x = (x | x<<4) & 0x10c30c30c30c30c3
	x = (x | x<<2) & 0x1249249249249249
	return x
}

// Decode reverses Encode, recovering the three coordinates from a Morton
// key. It is provided for diagnostics and tests; the scheduler never
// needs it on the hot path since it generates tiles directly in Morton
// order via Sequence.
func Decode(key uint64) (x, y, z uint32) {
	return uint32(compact(key)), uint32(compact(key >> 1)), uint32(compact(key >> 2))
}

func compact(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x | x>>2) & 0x10c30c30c30c30c3
	x = (x | x>>4) & 0x100f00f00f00f00f
	x = (x | x>>8) & 0x1f0000ff0000ff
	x = (x | x>>16) & 0xffff
	return x
}

// Coord is a tile coordinate triple.
type Coord struct {
	X, Y, Z int
}

// Sequence returns every tile coordinate in [0,nx) x [0,ny) x [0,nz),
// ordered by ascending Morton key. Morton order is chosen purely for
// cache locality (spec.md §4.3); correctness never depends on traversal
// order because every read is from an immutable snapshot and every write
// commutes.
func Sequence(nx, ny, nz int) []Coord {
	n := nx * ny * nz
	coords := make([]Coord, 0, n)
	keys := make([]uint64, 0, n)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				coords = append(coords, Coord{x, y, z})
				keys = append(keys, Encode(uint32(x), uint32(y), uint32(z)))
			}
		}
	}
	sort.Sort(&byKey{coords: coords, keys: keys})
	return coords
}

// byKey sorts coords and their parallel Morton keys together by key.
type byKey struct {
	coords []Coord
	keys   []uint64
}

func (b *byKey) Len() int           { return len(b.keys) }
func (b *byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b *byKey) Swap(i, j int) {
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
	b.coords[i], b.coords[j] = b.coords[j], b.coords[i]
}
