package geom

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// ErrSingularMatrix is returned when a matrix has no inverse
var ErrSingularMatrix = errors.New("singular matrix in inverse")

// Matrix is a row-major 4x4 matrix. Points and vectors are treated as
// column vectors, so m.Mul(n) applies n first and m second.
type Matrix [4][4]float32

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// FromColumnMajor builds a matrix from 16 values listed column by column,
// the layout used by the Transform and ConcatTransform directives.
func FromColumnMajor(v []float32) (Matrix, error) {
	if len(v) != 16 {
		return Matrix{}, fmt.Errorf("matrix needs 16 values, got %d", len(v))
	}
	var m Matrix
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[r][c] = v[c*4+r]
		}
	}
	return m, nil
}

// Translate returns a translation by d
func Translate(d Vector3) Matrix {
	return Matrix{
		{1, 0, 0, d.X},
		{0, 1, 0, d.Y},
		{0, 0, 1, d.Z},
		{0, 0, 0, 1},
	}
}

// Scale returns a non-uniform scale
func Scale(x, y, z float32) Matrix {
	return Matrix{
		{x, 0, 0, 0},
		{0, y, 0, 0},
		{0, 0, z, 0},
		{0, 0, 0, 1},
	}
}

// Rotate returns a rotation of angle degrees around axis
func Rotate(angle float32, axis Vector3) Matrix {
	a := axis.Normalize()
	theta := angle * math32.Pi / 180
	s := math32.Sin(theta)
	c := math32.Cos(theta)

	m := Identity()
	m[0][0] = a.X*a.X + (1-a.X*a.X)*c
	m[0][1] = a.X*a.Y*(1-c) - a.Z*s
	m[0][2] = a.X*a.Z*(1-c) + a.Y*s

	m[1][0] = a.X*a.Y*(1-c) + a.Z*s
	m[1][1] = a.Y*a.Y + (1-a.Y*a.Y)*c
	m[1][2] = a.Y*a.Z*(1-c) - a.X*s

	m[2][0] = a.X*a.Z*(1-c) - a.Y*s
	m[2][1] = a.Y*a.Z*(1-c) + a.X*s
	m[2][2] = a.Z*a.Z + (1-a.Z*a.Z)*c
	return m
}

// LookAt returns the world-to-camera matrix for a camera at eye looking at
// target. The camera space is left-handed with +z pointing at the target.
func LookAt(eye, target, up Vector3) (Matrix, error) {
	dir := target.Sub(eye).Normalize()
	if dir.IsZero() {
		return Identity(), errors.New("LookAt eye and target are the same point")
	}
	right := up.Normalize().Cross(dir)
	if right.Length() == 0 {
		return Identity(), fmt.Errorf("up vector %v and viewing direction %v are parallel", up, dir)
	}
	right = right.Normalize()
	newUp := dir.Cross(right)

	camToWorld := Matrix{
		{right.X, newUp.X, dir.X, eye.X},
		{right.Y, newUp.Y, dir.Y, eye.Y},
		{right.Z, newUp.Z, dir.Z, eye.Z},
		{0, 0, 0, 1},
	}
	return camToWorld.Inverse()
}

// SwapAxes returns the identity with rows a1 and a2 exchanged
// (0 = x, 1 = y, 2 = z).
func SwapAxes(a1, a2 int) Matrix {
	m := Identity()
	m[a1], m[a2] = m[a2], m[a1]
	return m
}

// Mul returns m * n
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j] + m[i][3]*n[3][j]
		}
	}
	return r
}

func (m Matrix) Transpose() Matrix {
	var r Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Inverse computes the inverse with Gauss-Jordan elimination and full pivoting
func (m Matrix) Inverse() (Matrix, error) {
	var indxc, indxr [4]int
	var ipiv [4]int
	minv := m

	for i := 0; i < 4; i++ {
		irow, icol := 0, 0
		big := float32(0)
		for j := 0; j < 4; j++ {
			if ipiv[j] == 1 {
				continue
			}
			for k := 0; k < 4; k++ {
				if ipiv[k] == 0 {
					if a := math32.Abs(minv[j][k]); a >= big {
						big = a
						irow = j
						icol = k
					}
				} else if ipiv[k] > 1 {
					return Identity(), ErrSingularMatrix
				}
			}
		}
		ipiv[icol]++
		if irow != icol {
			minv[irow], minv[icol] = minv[icol], minv[irow]
		}
		indxr[i] = irow
		indxc[i] = icol
		if minv[icol][icol] == 0 {
			return Identity(), ErrSingularMatrix
		}

		pivinv := 1 / minv[icol][icol]
		minv[icol][icol] = 1
		for j := 0; j < 4; j++ {
			minv[icol][j] *= pivinv
		}

		for j := 0; j < 4; j++ {
			if j == icol {
				continue
			}
			save := minv[j][icol]
			minv[j][icol] = 0
			for k := 0; k < 4; k++ {
				minv[j][k] -= minv[icol][k] * save
			}
		}
	}

	for j := 3; j >= 0; j-- {
		if indxr[j] == indxc[j] {
			continue
		}
		for k := 0; k < 4; k++ {
			minv[k][indxr[j]], minv[k][indxc[j]] = minv[k][indxc[j]], minv[k][indxr[j]]
		}
	}
	return minv, nil
}

// TransformPoint applies m to p with w = 1
func (m Matrix) TransformPoint(p Vector3) Vector3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 1 || w == 0 {
		return Vector3{x, y, z}
	}
	return Vector3{x / w, y / w, z / w}
}

// TransformVector applies the linear part of m to v (w = 0)
func (m Matrix) TransformVector(v Vector3) Vector3 {
	return Vector3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// IsIdentity reports whether m equals the identity exactly
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// ApproxEqual compares two matrices component-wise within eps
func (m Matrix) ApproxEqual(n Matrix, eps float32) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math32.Abs(m[i][j]-n[i][j]) > eps {
				return false
			}
		}
	}
	return true
}
