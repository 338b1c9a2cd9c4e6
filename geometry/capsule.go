package geometry

import (
	"github.com/o0olele/sctree-go/math32"
)

// Capsule is a segment swept by a sphere. A branch between a node and its
// parent is reported as one capsule for debug overlays.
type Capsule struct {
	Start  math32.Vector3 `json:"start"`
	End    math32.Vector3 `json:"end"`
	Radius float32        `json:"radius"`
}
