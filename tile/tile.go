// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package tile partitions a field into fixed-size cubic tiles, iterated in
// Morton order, and processes each tile as a self-contained unit against
// a shared stepper.Accumulator: every interior pair plus the three
// outgoing-face pair sets toward the tile's higher-index neighbors.
//
// Pair ownership: the tile with the lower linear tile index owns every
// pair that straddles its three high-index faces, so each globally
// adjacent cell pair is enumerated exactly once (spec.md §4.3).
package tile

import (
	"github.com/latticeforge/voxeldiffusion/internal/morton"
	"github.com/latticeforge/voxeldiffusion/stepper"
)

// DefaultEdge is the recommended cubic tile edge length.
const DefaultEdge = 16

// Bounds is the half-open cell-coordinate range [Min, Max) a tile covers.
type Bounds struct {
	Min, Max [3]int16
}

// Grid describes how a field of the given extents is partitioned into
// tiles of edge Edge, clipped at the field boundary.
type Grid struct {
	Width, Height, Depth int16
	Rate                 uint8
	Edge                 int
	NX, NY, NZ           int
}

// NewGrid computes the tile-grid dimensions for a field shape and edge
// length.
func NewGrid(width, height, depth int16, rate uint8, edge int) Grid {
	if edge <= 0 {
		edge = DefaultEdge
	}
	ceilDiv := func(n int16, e int) int {
		return (int(n) + e - 1) / e
	}
	return Grid{
		Width: width, Height: height, Depth: depth, Rate: rate, Edge: edge,
		NX: ceilDiv(width, edge), NY: ceilDiv(height, edge), NZ: ceilDiv(depth, edge),
	}
}

// TileCount returns the total number of tiles in the grid.
func (g Grid) TileCount() int { return g.NX * g.NY * g.NZ }

// Bounds returns the clipped cell-coordinate range covered by tile c.
func (g Grid) Bounds(c morton.Coord) Bounds {
	clip := func(tileCoord, edge int, extent int16) (int16, int16) {
		min := int16(tileCoord * edge)
		max := min + int16(edge)
		if max > extent {
			max = extent
		}
		return min, max
	}
	var b Bounds
	b.Min[0], b.Max[0] = clip(c.X, g.Edge, g.Width)
	b.Min[1], b.Max[1] = clip(c.Y, g.Edge, g.Height)
	b.Min[2], b.Max[2] = clip(c.Z, g.Edge, g.Depth)
	return b
}

// Color returns a 2-coloring of tile c such that any two tiles sharing a
// face always receive different colors: a shared face implies the tile
// coordinates differ by exactly 1 along one axis, which always flips
// (x+y+z) mod 2. Two same-colored tiles can still write the same
// destination cell (tiles (1,0,0) and (0,1,0) both write the edge cells
// of tile (1,1,0)), so the scheduler's parallel path groups tiles by the
// parity of each coordinate rather than by Color.
func Color(c morton.Coord) int {
	return (c.X + c.Y + c.Z) % 2
}

// index converts a 3-D cell coordinate within a field of the grid's
// shape to a row-major linear index.
func (g Grid) index(x, y, z int16) int {
	return (int(z)*int(g.Height)+int(y))*int(g.Width) + int(x)
}

// Process applies every pair this tile owns — its interior pairs along
// all three axes, plus its three outgoing-face pair sets toward
// higher-index neighbors — to acc, reading exclusively from snapshot.
func (g Grid) Process(acc stepper.Accumulator, snapshot []uint32, c morton.Coord) {
	b := g.Bounds(c)
	minX, maxX := b.Min[0], b.Max[0]
	minY, maxY := b.Min[1], b.Max[1]
	minZ, maxZ := b.Min[2], b.Max[2]

	for z := minZ; z < maxZ; z++ {
		for y := minY; y < maxY; y++ {
			for x := minX; x < maxX; x++ {
				here := g.index(x, y, z)
				if x+1 < maxX {
					acc.Apply(snapshot, here, g.index(x+1, y, z), g.Rate)
				}
				if y+1 < maxY {
					acc.Apply(snapshot, here, g.index(x, y+1, z), g.Rate)
				}
				if z+1 < maxZ {
					acc.Apply(snapshot, here, g.index(x, y, z+1), g.Rate)
				}
			}
		}
	}

	if maxX < g.Width {
		for z := minZ; z < maxZ; z++ {
			for y := minY; y < maxY; y++ {
				acc.Apply(snapshot, g.index(maxX-1, y, z), g.index(maxX, y, z), g.Rate)
			}
		}
	}
	if maxY < g.Height {
		for z := minZ; z < maxZ; z++ {
			for x := minX; x < maxX; x++ {
				acc.Apply(snapshot, g.index(x, maxY-1, z), g.index(x, maxY, z), g.Rate)
			}
		}
	}
	if maxZ < g.Depth {
		for y := minY; y < maxY; y++ {
			for x := minX; x < maxX; x++ {
				acc.Apply(snapshot, g.index(x, y, maxZ-1), g.index(x, y, maxZ), g.Rate)
			}
		}
	}
}
