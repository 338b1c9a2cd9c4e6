package geometry

import (
	"github.com/o0olele/sctree-go/math32"
)

// Triangle is a triangle geometry
type Triangle struct {
	A math32.Vector3 `json:"a"`
	B math32.Vector3 `json:"b"`
	C math32.Vector3 `json:"c"`
}

// WeightedNormal returns the unnormalized face normal, whose length is twice
// the triangle area. Winding is counter-clockwise when seen from the front.
func (t Triangle) WeightedNormal() math32.Vector3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}
