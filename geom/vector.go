package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Vector3 is a point, direction or normal in scene space
type Vector3 struct {
	X, Y, Z float32
}

// Vec3 creates a new vector
func Vec3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Add returns v + o
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul scales every component by s
func (v Vector3) Mul(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Negate flips the vector
func (v Vector3) Negate() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vector3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// IsZero reports whether all components are zero
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Component returns the i-th component (0 = x, 1 = y, 2 = z)
func (v Vector3) Component(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Array returns the components as a fixed array, handy for JSON output
func (v Vector3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// CoordinateSystem builds two vectors that together with v1 form an
// orthogonal basis. v1 must be normalized.
func CoordinateSystem(v1 Vector3) (Vector3, Vector3) {
	var v2 Vector3
	if math32.Abs(v1.X) > math32.Abs(v1.Y) {
		invLen := 1 / math32.Sqrt(v1.X*v1.X+v1.Z*v1.Z)
		v2 = Vector3{-v1.Z * invLen, 0, v1.X * invLen}
	} else {
		invLen := 1 / math32.Sqrt(v1.Y*v1.Y+v1.Z*v1.Z)
		v2 = Vector3{0, v1.Z * invLen, -v1.Y * invLen}
	}
	return v2, v1.Cross(v2)
}
