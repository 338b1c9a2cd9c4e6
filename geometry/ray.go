package geometry

import "github.com/o0olele/sctree-go/math32"

// RayAABB checks if the ray intersects with the AABB (slab method), returns [tmin, tmax] and whether it intersects.
// Hits behind the origin are rejected and tmin is clamped to 0 when the origin is inside.
func RayAABB(origin, dir math32.Vector3, aabb AABB) (float32, float32, bool) {
	const eps = 1e-6
	tmin := -math32.MaxFloat32
	tmax := math32.MaxFloat32

	for axis := 0; axis < 3; axis++ {
		o, d := origin.Get(axis), dir.Get(axis)
		lo, hi := aabb.Min.Get(axis), aabb.Max.Get(axis)
		if math32.Abs(d) < eps {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}

	if tmax < 0 {
		return 0, 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, tmax, true
}
