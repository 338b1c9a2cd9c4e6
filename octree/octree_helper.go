package octree

import (
	"encoding/json"

	"github.com/o0olele/sctree-go/geometry"
)

// OctreeExport is the JSON form of the tree structure, for debug overlays.
type OctreeExport struct {
	Root     *OctreeNodeExport `json:"root"`
	Capacity int               `json:"capacity"`
	MaxDepth uint8             `json:"max_depth"`
	Points   int               `json:"points"`
}

type OctreeNodeExport struct {
	Bounds     geometry.BoundingBox `json:"bounds"`
	Children   []*OctreeNodeExport  `json:"children,omitempty"`
	IsLeaf     bool                 `json:"is_leaf"`
	IsOccupied bool                 `json:"is_occupied"`
	Depth      uint8                `json:"depth"`
	Points     []Entry              `json:"points,omitempty"`
}

// Export builds the nested export tree.
func (o *Octree) Export() *OctreeExport {
	return &OctreeExport{
		Root:     o.nodeToExport(0),
		Capacity: o.capacity,
		MaxDepth: o.maxDepth,
		Points:   len(o.entries),
	}
}

// ToJSON 导出八叉树为JSON
func (o *Octree) ToJSON() ([]byte, error) {
	return json.Marshal(o.Export())
}

func (o *Octree) nodeToExport(ni int32) *OctreeNodeExport {
	node := &o.nodes[ni]
	export := &OctreeNodeExport{
		Bounds:     node.Bounds,
		IsLeaf:     node.IsLeaf(),
		IsOccupied: node.IsOccupied(),
		Depth:      node.Depth,
	}

	if node.IsLeaf() {
		for _, e := range node.Items {
			export.Points = append(export.Points, o.entries[e])
		}
		return export
	}

	for _, child := range node.Children {
		export.Children = append(export.Children, o.nodeToExport(child))
	}
	return export
}
