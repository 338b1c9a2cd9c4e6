package octree

import "github.com/o0olele/sctree-go/geometry"

const (
	// 1bit isLeaf 1bit isOccupied
	FlagsDefault  uint8 = 0b10
	FlagsLeaf     uint8 = 0b10
	FlagsOccupied uint8 = 0b01
)

// noChild marks an unset child slot.
const noChild int32 = -1

// OctreeNode is one cell of the arena. A leaf holds entry indices; an
// internal node holds none and addresses its eight octants by arena index.
// Cell is the exact region routed to this node: children share the parent's
// center as their common face, whereas Bounds is rounded and only reported.
type OctreeNode struct {
	Bounds   geometry.BoundingBox `json:"bounds"`
	Cell     geometry.AABB        `json:"-"`
	Flags    uint8                `json:"flags"` // 1bit isLeaf 1bit isOccupied
	Depth    uint8                `json:"depth"`
	Items    []int32              `json:"-"`
	Children [8]int32             `json:"children,omitempty"`
}

func newLeaf(bounds geometry.BoundingBox, cell geometry.AABB, depth uint8) OctreeNode {
	return OctreeNode{
		Bounds:   bounds,
		Cell:     cell,
		Flags:    FlagsDefault,
		Depth:    depth,
		Children: [8]int32{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild},
	}
}

func (node *OctreeNode) SetOccupied(occupied bool) {
	if occupied {
		node.Flags |= FlagsOccupied
	} else {
		node.Flags &^= FlagsOccupied
	}
}

func (node *OctreeNode) SetLeaf(isLeaf bool) {
	if isLeaf {
		node.Flags |= FlagsLeaf
	} else {
		node.Flags &^= FlagsLeaf
	}
}

func (node *OctreeNode) IsLeaf() bool {
	return node.Flags&FlagsLeaf == FlagsLeaf
}

// IsOccupied reports whether this node or any descendant holds a point.
func (node *OctreeNode) IsOccupied() bool {
	return node.Flags&FlagsOccupied == FlagsOccupied
}
