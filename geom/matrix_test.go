package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func assertVec(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x of %v", got)
	assert.InDelta(t, want.Y, got.Y, tol, "y of %v", got)
	assert.InDelta(t, want.Z, got.Z, tol, "z of %v", got)
}

func TestTranslateScale(t *testing.T) {
	m := Translate(Vec3(1, 2, 3)).Mul(Scale(2, 2, 2))
	assertVec(t, Vec3(3, 4, 5), m.TransformPoint(Vec3(1, 1, 1)))
	// vectors ignore translation
	assertVec(t, Vec3(2, 2, 2), m.TransformVector(Vec3(1, 1, 1)))
}

func TestRotate(t *testing.T) {
	m := Rotate(90, Vec3(0, 0, 1))
	assertVec(t, Vec3(0, 1, 0), m.TransformPoint(Vec3(1, 0, 0)))

	m = Rotate(90, Vec3(0, 1, 0))
	assertVec(t, Vec3(0, 0, -1), m.TransformPoint(Vec3(1, 0, 0)))
}

func TestFromColumnMajor(t *testing.T) {
	m, err := FromColumnMajor([]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	})
	require.NoError(t, err)
	assert.Equal(t, Translate(Vec3(5, 6, 7)), m)

	_, err = FromColumnMajor([]float32{1, 2, 3})
	assert.Error(t, err)
}

func TestInverse(t *testing.T) {
	m := Translate(Vec3(1, -2, 3)).Mul(Rotate(33, Vec3(1, 1, 0))).Mul(Scale(2, 3, 4))
	inv, err := m.Inverse()
	require.NoError(t, err)
	assert.True(t, m.Mul(inv).ApproxEqual(Identity(), tol))

	_, err = Scale(0, 1, 1).Inverse()
	assert.ErrorIs(t, err, ErrSingularMatrix)
}

func TestLookAt(t *testing.T) {
	worldToCam, err := LookAt(Vec3(0, 0, -5), Vec3(0, 0, 0), Vec3(0, 1, 0))
	require.NoError(t, err)

	// the target lies on the camera's +z axis
	assertVec(t, Vec3(0, 0, 5), worldToCam.TransformPoint(Vec3(0, 0, 0)))

	camToWorld, err := worldToCam.Inverse()
	require.NoError(t, err)
	assertVec(t, Vec3(0, 0, -5), camToWorld.TransformPoint(Vec3(0, 0, 0)))

	_, err = LookAt(Vec3(0, 0, 0), Vec3(0, 1, 0), Vec3(0, 1, 0))
	assert.Error(t, err)
}

func TestSwapAxes(t *testing.T) {
	m := SwapAxes(0, 2)
	assertVec(t, Vec3(3, 2, 1), m.TransformPoint(Vec3(1, 2, 3)))
	assert.True(t, m.Mul(m).IsIdentity())
}

func TestCoordinateSystem(t *testing.T) {
	for _, v := range []Vector3{Vec3(1, 0, 0), Vec3(0, 1, 0), Vec3(0, 0, 1), Vec3(1, 2, 3).Normalize()} {
		v2, v3 := CoordinateSystem(v)
		assert.InDelta(t, 0, v.Dot(v2), tol)
		assert.InDelta(t, 0, v.Dot(v3), tol)
		assert.InDelta(t, 0, v2.Dot(v3), tol)
		assert.InDelta(t, 1, v2.Length(), tol)
	}
}
