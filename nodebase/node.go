package nodebase

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/o0olele/sctree-go/math32"
)

// NoParent is the parent index of a root node.
const NoParent = -1

// DefaultJitter weighs the random unit vector added to every attracted
// growth direction.
const DefaultJitter float32 = 0.1

// ErrDegenerateDirection is returned when the attractor pull sums to a zero
// vector. The previous direction is returned alongside it.
var ErrDegenerateDirection = errors.New("degenerate growth direction")

// Node is a skeleton vertex.
type Node struct {
	Position  math32.Vector3 `json:"position"`
	Direction math32.Vector3 `json:"direction"`
	// Parent indexes the owning Skeleton; it is fixed once the node exists.
	Parent int `json:"parent"`

	// Attractors bound to this node during the current cycle.
	Attractors []math32.Vector3 `json:"-"`

	IsTrunk bool `json:"is_trunk"`
	// Depth is the longest chain of descendants below this node.
	Depth  int     `json:"depth"`
	Radius float32 `json:"radius"`
	// IsGrowing is set only during the cycle that created the node.
	IsGrowing bool `json:"is_growing"`
	// VertexStart is scratch for the mesh builder.
	VertexStart int `json:"-"`
}

// NewNode returns a growing node. Pass NoParent for a root.
func NewNode(position, direction math32.Vector3, parent int) Node {
	return Node{
		Position:  position,
		Direction: direction,
		Parent:    parent,
		IsGrowing: true,
	}
}

// HasParent reports whether the node is not a root.
func (n *Node) HasParent() bool {
	return n.Parent != NoParent
}

// GrowthDirection returns the heading for the next child. Without bound
// attractors the stored direction is returned unchanged. Otherwise it is the
// normalized mean of the pulls towards every attractor plus one random unit
// vector scaled by jitter.
func (n *Node) GrowthDirection(rng *rand.Rand, jitter float32) (math32.Vector3, error) {
	if len(n.Attractors) == 0 {
		return n.Direction, nil
	}

	var v math32.Vector3
	for _, a := range n.Attractors {
		v = v.Add(a.Sub(n.Position))
	}
	v = v.Add(math32.RandomUnitVector(rng).Mul(jitter))
	v = v.Div(float32(len(n.Attractors) + 1))

	dir, ok := v.TryNormalize()
	if !ok {
		return n.Direction, ErrDegenerateDirection
	}
	return dir, nil
}

// UpdateRadius derives the ring radius from Depth so nodes carrying larger
// subtrees are thicker.
func (n *Node) UpdateRadius(base float32) {
	n.Radius = base + math32.Pow(float32(n.Depth), 1.1)/500
}
