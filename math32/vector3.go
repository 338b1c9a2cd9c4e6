package math32

import (
	"fmt"

	m32 "github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vector3 represents a 3D vector.
type Vector3 struct {
	X float32 `json:"x" toml:"x" yaml:"x"`
	Y float32 `json:"y" toml:"y" yaml:"y"`
	Z float32 `json:"z" toml:"z" yaml:"z"`
}

var (
	// Zero is the zero vector.
	Zero = Vector3{}
	// Up is the world up axis, the rest orientation of a branch ring.
	Up = Vector3{0, 1, 0}
)

// Vec3 returns a new Vector3.
func Vec3(x, y, z float32) Vector3 {
	return Vector3{x, y, z}
}

// Add adds two vectors.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts two vectors.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul multiplies a vector by a scalar.
func (v Vector3) Mul(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Div divides a vector by a scalar.
func (v Vector3) Div(s float32) Vector3 {
	return Vector3{v.X / s, v.Y / s, v.Z / s}
}

// Abs returns the per-component absolute value.
func (v Vector3) Abs() Vector3 {
	return Vector3{m32.Abs(v.X), m32.Abs(v.Y), m32.Abs(v.Z)}
}

// Distance calculates the distance between two vectors.
func (v Vector3) Distance(other Vector3) float32 {
	return m32.Sqrt(v.DistanceSquared(other))
}

// DistanceSquared calculates the squared distance between two vectors.
func (v Vector3) DistanceSquared(other Vector3) float32 {
	diff := v.Sub(other)
	return diff.X*diff.X + diff.Y*diff.Y + diff.Z*diff.Z
}

// LengthSquared calculates the squared length of a vector.
func (v Vector3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length calculates the length of a vector.
func (v Vector3) Length() float32 {
	return m32.Sqrt(v.LengthSquared())
}

// Dot calculates the dot product of two vectors.
func (v Vector3) Dot(other Vector3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the cross product of two vectors.
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Normalize normalizes a vector. The zero vector stays zero.
func (v Vector3) Normalize() Vector3 {
	n, _ := v.TryNormalize()
	return n
}

// TryNormalize normalizes a vector and reports false when its length is zero
// or not finite, in which case the zero vector is returned.
func (v Vector3) TryNormalize() (Vector3, bool) {
	l := v.Length()
	if l == 0 || m32.IsNaN(l) || m32.IsInf(l, 0) {
		return Zero, false
	}
	return v.Mul(1.0 / l), true
}

// Lerp linearly interpolates from v to other by t.
func (v Vector3) Lerp(other Vector3, t float32) Vector3 {
	return Vector3{
		v.X + (other.X-v.X)*t,
		v.Y + (other.Y-v.Y)*t,
		v.Z + (other.Z-v.Z)*t,
	}
}

// Min returns the per-component minimum.
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{Min(v.X, other.X), Min(v.Y, other.Y), Min(v.Z, other.Z)}
}

// Max returns the per-component maximum.
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{Max(v.X, other.X), Max(v.Y, other.Y), Max(v.Z, other.Z)}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for i := 0; i < 3; i++ {
		c := v.Get(i)
		if m32.IsNaN(c) || m32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Mgl converts to a mathgl vector.
func (v Vector3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a mathgl vector.
func FromMgl(v mgl32.Vec3) Vector3 {
	return Vector3{v[0], v[1], v[2]}
}

// String returns a string representation of the vector.
func (v Vector3) String() string {
	return fmt.Sprintf("[%2f,%2f,%2f]", v.X, v.Y, v.Z)
}

// Get returns the value of the vector at the given index.
func (v Vector3) Get(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	return 0
}
