package growth

import (
	"golang.org/x/exp/rand"

	"github.com/o0olele/sctree-go/math32"
)

// Attractor is a target point. ID is its index in the initial set and its
// key in the attractor octree.
type Attractor struct {
	ID       int            `json:"id"`
	Position math32.Vector3 `json:"position"`
}

// GenerateAttractors scatters count points inside the sphere of the given
// radius around center.
func GenerateAttractors(rng *rand.Rand, count int, center math32.Vector3, radius float32, dist Distribution) []Attractor {
	out := make([]Attractor, count)
	for i := range out {
		dir := math32.RandomUnitVector(rng)
		u := rng.Float32()
		var d float32
		switch dist {
		case DistributionUniform:
			d = math32.Cbrt(u)
		default:
			d = math32.Pow(math32.Sin(u*math32.Pi/2), 0.8)
		}
		out[i] = Attractor{ID: i, Position: center.Add(dir.Mul(d * radius))}
	}
	return out
}

func attractorPositions(list []Attractor) []math32.Vector3 {
	out := make([]math32.Vector3, len(list))
	for i, a := range list {
		out[i] = a.Position
	}
	return out
}
