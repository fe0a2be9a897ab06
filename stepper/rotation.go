// Copyright 2025 The voxeldiffusion Authors. SPDX-License-Identifier: Apache-2.0

package stepper

// CubeRotation is a signed permutation matrix: each row has exactly one
// nonzero entry, +1 or -1. The 24 matrices with determinant +1 are
// exactly the orientation-preserving symmetries of a cube.
type CubeRotation [3][3]int

// CubeRotations returns all 24 orientation-preserving rotations of a
// cube, found by brute-force enumeration of the 48 signed permutation
// matrices and filtering for determinant +1. Used to exercise the fused
// stepper's rotational symmetry (spec.md §8 property 4): since the
// per-pair flow formula treats all three axes identically, stepping
// must commute with every one of these.
func CubeRotations() []CubeRotation {
	perms := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	signs := [][3]int{
		{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
		{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
	}
	var out []CubeRotation
	for _, p := range perms {
		for _, s := range signs {
			var m CubeRotation
			for row := 0; row < 3; row++ {
				m[row][p[row]] = s[row]
			}
			if det3(m) == 1 {
				out = append(out, m)
			}
		}
	}
	return out
}

func det3(m CubeRotation) int {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// RotateCoord maps (x,y,z) in a size-n cube through m, rotating about
// the cube's center. Doubling coordinates before applying m keeps the
// arithmetic exact for both odd and even n.
func RotateCoord(m CubeRotation, x, y, z, n int) (int, int, int) {
	c := [3]int{2*x - n + 1, 2*y - n + 1, 2*z - n + 1}
	var rc [3]int
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rc[row] += m[row][col] * c[col]
		}
	}
	return (rc[0] + n - 1) / 2, (rc[1] + n - 1) / 2, (rc[2] + n - 1) / 2
}

// RotateCube applies m to every cell of a size-n cube snapshot
// (row-major, z-major layout matching StepField) and returns the
// rotated array.
func RotateCube(snapshot []uint32, n int, m CubeRotation) []uint32 {
	out := make([]uint32, len(snapshot))
	idx := func(x, y, z int) int { return (z*n+y)*n + x }
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				rx, ry, rz := RotateCoord(m, x, y, z, n)
				out[idx(rx, ry, rz)] = snapshot[idx(x, y, z)]
			}
		}
	}
	return out
}

// Invert returns the inverse of rotation m. A cube rotation matrix is
// orthogonal, so its inverse is its transpose.
func Invert(m CubeRotation) CubeRotation {
	var inv CubeRotation
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			inv[col][row] = m[row][col]
		}
	}
	return inv
}
