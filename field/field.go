// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

// Package field owns the dense three-dimensional cell array that the
// diffusion core operates on, plus the geometric parameters and generation
// counter that travel with it.
//
// Field instances should not be created directly; use New instead.
package field

import (
	"errors"
	"fmt"
)

// ErrInvalidExtents is returned by New when any of width, height, or depth
// is not in [1, 32767].
var ErrInvalidExtents = errors.New("field: invalid extents")

// ErrInvalidRate is returned by New when the diffusion-rate shift exceeds
// the maximum representable shift for a 32-bit cell.
var ErrInvalidRate = errors.New("field: invalid diffusion rate")

// MaxExtent is the largest value allowed for any of width, height, or depth.
const MaxExtent = 32767

// MaxDiffusionRate is the largest allowed diffusion-rate shift.
const MaxDiffusionRate = 31

// Field is a dense row-major array of unsigned 32-bit cells with a fixed
// shape, a diffusion-rate shift, and a generation counter.
//
// The zero value is not usable; construct with New.
type Field struct {
	width, height, depth int16
	rate                 uint8
	generation           uint64
	cells                []uint32
}

// New allocates a zeroed field of the given extents and diffusion-rate
// shift. The cell array has length width*height*depth and the generation
// counter starts at zero.
func New(width, height, depth int16, rate uint8) (*Field, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d depth=%d", ErrInvalidExtents, width, height, depth)
	}
	if rate > MaxDiffusionRate {
		return nil, fmt.Errorf("%w: rate=%d", ErrInvalidRate, rate)
	}
	n := int(width) * int(height) * int(depth)
	return &Field{
		width:  width,
		height: height,
		depth:  depth,
		rate:   rate,
		cells:  make([]uint32, n),
	}, nil
}

// Width returns the field's extent along X.
func (f *Field) Width() int16 { return f.width }

// Height returns the field's extent along Y.
func (f *Field) Height() int16 { return f.height }

// Depth returns the field's extent along Z.
func (f *Field) Depth() int16 { return f.depth }

// Rate returns the diffusion-rate shift.
func (f *Field) Rate() uint8 { return f.rate }

// Generation returns the number of completed generations.
func (f *Field) Generation() uint64 { return f.generation }

// Bounds returns the inclusive-exclusive coordinate range [min, max) that
// the field covers: min is always the origin and max is (width, height,
// depth). It is a derived accessor; it does not change the Field's
// contract.
func (f *Field) Bounds() (min, max [3]int16) {
	return [3]int16{0, 0, 0}, [3]int16{f.width, f.height, f.depth}
}

// Len returns the number of cells in the field.
func (f *Field) Len() int { return len(f.cells) }

// Index computes the row-major linear index for (x, y, z). It does not
// bounds-check; callers that need bounds checking should use InBounds
// first.
func (f *Field) Index(x, y, z int16) int {
	return (int(z)*int(f.height)+int(y))*int(f.width) + int(x)
}

// InBounds reports whether (x, y, z) lies within the field's extents.
func (f *Field) InBounds(x, y, z int16) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height && z >= 0 && z < f.depth
}

// Set writes one cell. Out-of-bounds coordinates are silently ignored,
// favoring host-script robustness over strictness (spec §4.1).
func (f *Field) Set(x, y, z int16, value uint32) {
	if !f.InBounds(x, y, z) {
		return
	}
	f.cells[f.Index(x, y, z)] = value
}

// Get reads one cell. Out-of-bounds coordinates return zero.
func (f *Field) Get(x, y, z int16) uint32 {
	if !f.InBounds(x, y, z) {
		return 0
	}
	return f.cells[f.Index(x, y, z)]
}

// Cells returns the field's backing cell array. Callers that mutate the
// returned slice bypass bounds checks and generation bookkeeping; this is
// intended for the stepper and tile scheduler, which own the commit path.
func (f *Field) Cells() []uint32 { return f.cells }

// CloneCells returns a fresh copy of the cell array, used by the step
// controller to take an immutable snapshot at begin_step.
func (f *Field) CloneCells() []uint32 {
	out := make([]uint32, len(f.cells))
	copy(out, f.cells)
	return out
}

// Commit replaces the cell array with next and advances the generation
// counter by one. It is the sole mutator used by the step controller's
// end-of-step commit; it never allocates.
func (f *Field) Commit(next []uint32) {
	if len(next) != len(f.cells) {
		panic(fmt.Sprintf("field: commit shape mismatch: have %d want %d", len(next), len(f.cells)))
	}
	f.cells = next
	f.generation++
}

// TotalMass returns the 64-bit sum of all cells, the quantity the fused
// stepper is required to conserve exactly across successful generations.
func (f *Field) TotalMass() uint64 {
	var sum uint64
	for _, c := range f.cells {
		sum += uint64(c)
	}
	return sum
}

// Checksum returns an FNV-1a hash over the cell array, for the external
// diagnostics spec.md §6 explicitly permits beyond total mass.
func (f *Field) Checksum() uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range f.cells {
		for shift := 0; shift < 32; shift += 8 {
			h ^= uint64(byte(c >> shift))
			h *= prime64
		}
	}
	return h
}

// ImportRegion bulk-sets a half-open rectangular region [min, max) from a
// linearly laid-out source buffer in (x fastest, then y, then z) order.
// Returns 0 and writes nothing if the region is out of bounds, malformed,
// or the source buffer is too short; otherwise returns the number of
// cells written.
func (f *Field) ImportRegion(in []uint32, min, max [3]int16) int {
	n, ok := f.regionSize(min, max)
	if !ok || len(in) < n {
		return 0
	}
	i := 0
	for z := min[2]; z < max[2]; z++ {
		for y := min[1]; y < max[1]; y++ {
			for x := min[0]; x < max[0]; x++ {
				f.cells[f.Index(x, y, z)] = in[i]
				i++
			}
		}
	}
	return n
}

// ExtractRegion bulk-reads a half-open rectangular region [min, max) into
// a linearly laid-out destination buffer in (x fastest, then y, then z)
// order. Returns 0 and writes nothing if the region is out of bounds,
// malformed, or the destination buffer is too short; otherwise returns
// the number of cells written.
func (f *Field) ExtractRegion(out []uint32, min, max [3]int16) int {
	n, ok := f.regionSize(min, max)
	if !ok || len(out) < n {
		return 0
	}
	i := 0
	for z := min[2]; z < max[2]; z++ {
		for y := min[1]; y < max[1]; y++ {
			for x := min[0]; x < max[0]; x++ {
				out[i] = f.cells[f.Index(x, y, z)]
				i++
			}
		}
	}
	return n
}

// regionSize validates [min, max) against the field's extents and returns
// the cell count it covers.
func (f *Field) regionSize(min, max [3]int16) (int, bool) {
	for i := range 3 {
		if min[i] < 0 || max[i] < min[i] {
			return 0, false
		}
	}
	if max[0] > f.width || max[1] > f.height || max[2] > f.depth {
		return 0, false
	}
	n := int(max[0]-min[0]) * int(max[1]-min[1]) * int(max[2]-min[2])
	return n, true
}
