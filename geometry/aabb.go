package geometry

import "github.com/o0olele/sctree-go/math32"

// AABB is axis-aligned bounding box
type AABB struct {
	Min math32.Vector3 `json:"min"`
	Max math32.Vector3 `json:"max"`
}

// EmptyAABB returns an inverted box that any ExpandByPoint will overwrite.
func EmptyAABB() AABB {
	return AABB{
		Min: math32.Vec3(math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32),
		Max: math32.Vec3(-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32),
	}
}

// Contains checks if the point is inside the AABB
func (aabb AABB) Contains(point math32.Vector3) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y &&
		point.Z >= aabb.Min.Z && point.Z <= aabb.Max.Z
}

// Overlaps is an inclusive interval test on every axis.
func (aabb AABB) Overlaps(other AABB) bool {
	return aabb.Min.X <= other.Max.X && other.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= other.Max.Y && other.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= other.Max.Z && other.Min.Z <= aabb.Max.Z
}

// Split returns the i-th of the eight boxes cut by the planes through split.
// Bit 0 of i selects +X, bit 1 +Y and bit 2 +Z. Neighbouring parts share
// split exactly, so no point between them is lost to rounding.
func (aabb AABB) Split(split math32.Vector3, i int) AABB {
	out := aabb
	if i&1 != 0 {
		out.Min.X = split.X
	} else {
		out.Max.X = split.X
	}
	if i&2 != 0 {
		out.Min.Y = split.Y
	} else {
		out.Max.Y = split.Y
	}
	if i&4 != 0 {
		out.Min.Z = split.Z
	} else {
		out.Max.Z = split.Z
	}
	return out
}

// ExpandByPoint grows the box to include point.
func (aabb *AABB) ExpandByPoint(point math32.Vector3) {
	aabb.Min = aabb.Min.Min(point)
	aabb.Max = aabb.Max.Max(point)
}

// ExpandByScalar grows the box by s on every side.
func (aabb AABB) ExpandByScalar(s float32) AABB {
	d := math32.Vec3(s, s, s)
	return AABB{Min: aabb.Min.Sub(d), Max: aabb.Max.Add(d)}
}

// AABBFromPoints returns the tightest box holding every point. An empty
// slice yields EmptyAABB.
func AABBFromPoints(points []math32.Vector3) AABB {
	b := EmptyAABB()
	for _, p := range points {
		b.ExpandByPoint(p)
	}
	return b
}
