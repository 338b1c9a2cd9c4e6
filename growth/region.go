package growth

import (
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

// DefaultPointerDistance is how far in front of the viewer a pointer region
// sits.
const DefaultPointerDistance float32 = 20

// PointerRegion turns a pointing device orientation (radians) into a cubic
// region of interest. A zero distance uses DefaultPointerDistance.
func PointerRegion(yaw, pitch, distance, radius float32) geometry.BoundingBox {
	if distance == 0 {
		distance = DefaultPointerDistance
	}
	center := math32.Vec3(
		distance*math32.Sin(yaw),
		-distance*math32.Sin(pitch),
		distance*math32.Cos(yaw),
	)
	return geometry.NewCube(center, radius)
}

// Box returns the cube enclosing the region sphere.
func (r RegionParams) Box() geometry.BoundingBox {
	return geometry.NewCube(r.Center, r.Radius)
}
