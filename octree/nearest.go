package octree

import (
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

// Nearest finds the point closest to pos no farther than maxDist. The cube
// query only prefilters; the winner is picked by exact distance, ties going
// to the first candidate visited.
func (o *Octree) Nearest(pos math32.Vector3, maxDist float32) (id int, dist float32, ok bool) {
	best := maxDist * maxDist
	o.Visit(geometry.NewCube(pos, maxDist), func(e Entry) bool {
		d := pos.DistanceSquared(e.Position)
		if d > best || (ok && d == best) {
			return true
		}
		id, best, ok = e.ID, d, true
		return true
	})
	if !ok {
		return -1, 0, false
	}
	return id, math32.Sqrt(best), true
}

// AnyWithin reports whether some point lies strictly closer than dist to pos.
func (o *Octree) AnyWithin(pos math32.Vector3, dist float32) bool {
	limit := dist * dist
	found := false
	o.Visit(geometry.NewCube(pos, dist), func(e Entry) bool {
		if pos.DistanceSquared(e.Position) < limit {
			found = true
			return false
		}
		return true
	})
	return found
}
