package math32

import (
	m32 "github.com/chewxy/math32"
)

const (
	// Pi as float32.
	Pi = float32(m32.Pi)
	// MaxFloat32 is the largest finite float32.
	MaxFloat32 = float32(m32.MaxFloat32)
)

// Min returns the minimum of two values.
func Min[T float32 | int32 | int](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two values.
func Max[T float32 | int32 | int](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts a to [lo, hi].
func Clamp(a, lo, hi float32) float32 {
	return Max(lo, Min(a, hi))
}

// Abs returns the absolute value of a float32.
func Abs(a float32) float32 {
	return m32.Abs(a)
}

// Sqrt returns the square root of a float32.
func Sqrt(a float32) float32 {
	return m32.Sqrt(a)
}

// Pow returns x**y.
func Pow(x, y float32) float32 {
	return m32.Pow(x, y)
}

// Sin returns the sine of the radian argument.
func Sin(a float32) float32 {
	return m32.Sin(a)
}

// Cos returns the cosine of the radian argument.
func Cos(a float32) float32 {
	return m32.Cos(a)
}

// Cbrt returns the cube root of a float32.
func Cbrt(a float32) float32 {
	return m32.Cbrt(a)
}
