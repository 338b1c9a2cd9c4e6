package octree

import (
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/math32"
)

const (
	// DefaultCapacity is the number of points a leaf holds before it splits.
	DefaultCapacity = 4
	// DefaultMaxDepth bounds subdivision; leaves at this depth accept points
	// over capacity so coincident points cannot recurse forever.
	DefaultMaxDepth = 16
)

// Entry is a stored point and the caller's identifier for it.
type Entry struct {
	ID       int            `json:"id"`
	Position math32.Vector3 `json:"position"`
}

// Octree is a point octree kept in a flat arena. Node 0 is the root.
// Points are never removed and nodes never merge.
type Octree struct {
	nodes    []OctreeNode
	entries  []Entry
	capacity int
	maxDepth uint8
}

// NewOctree creates an octree covering boundary. A capacity below one falls
// back to DefaultCapacity and a zero maxDepth to DefaultMaxDepth.
func NewOctree(boundary geometry.BoundingBox, capacity int, maxDepth uint8) *Octree {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Octree{
		nodes:    []OctreeNode{newLeaf(boundary, boundary.AABB(), 0)},
		capacity: capacity,
		maxDepth: maxDepth,
	}
}

// Bounds returns the root boundary.
func (o *Octree) Bounds() geometry.BoundingBox {
	return o.nodes[0].Bounds
}

// Len returns the number of stored points.
func (o *Octree) Len() int {
	return len(o.entries)
}

// NodeCount returns the number of arena nodes, leaves included.
func (o *Octree) NodeCount() int {
	return len(o.nodes)
}

// Insert stores pos under id. It returns false, leaving the tree untouched,
// when pos lies outside the root boundary.
func (o *Octree) Insert(id int, pos math32.Vector3) bool {
	if !o.nodes[0].Cell.Contains(pos) {
		return false
	}
	e := int32(len(o.entries))
	o.entries = append(o.entries, Entry{ID: id, Position: pos})
	o.insert(0, e)
	return true
}

func (o *Octree) insert(ni int32, e int32) {
	for {
		node := &o.nodes[ni]
		node.SetOccupied(true)
		if node.IsLeaf() {
			if len(node.Items) < o.capacity || node.Depth >= o.maxDepth {
				node.Items = append(node.Items, e)
				return
			}
			o.subdivide(ni)
		}
		ni = o.childFor(ni, o.entries[e].Position)
	}
}

// subdivide splits a full leaf into its eight octants and moves the points
// it held into them. The arena may grow, so callers must not keep node
// pointers across this call.
func (o *Octree) subdivide(ni int32) {
	bounds, cell, depth := o.nodes[ni].Bounds, o.nodes[ni].Cell, o.nodes[ni].Depth
	base := int32(len(o.nodes))
	for i := 0; i < 8; i++ {
		o.nodes = append(o.nodes, newLeaf(bounds.Octant(i), cell.Split(bounds.Center, i), depth+1))
	}

	node := &o.nodes[ni]
	items := node.Items
	node.Items = nil
	node.SetLeaf(false)
	for i := range node.Children {
		node.Children[i] = base + int32(i)
	}

	for _, e := range items {
		o.insert(o.childFor(ni, o.entries[e].Position), e)
	}
}

// childFor picks the octant of an internal node that owns pos. Points on a
// split plane go to the positive side, whose cell starts exactly at the
// center.
func (o *Octree) childFor(ni int32, pos math32.Vector3) int32 {
	node := &o.nodes[ni]
	c := node.Bounds.Center
	i := 0
	if pos.X >= c.X {
		i |= 1
	}
	if pos.Y >= c.Y {
		i |= 2
	}
	if pos.Z >= c.Z {
		i |= 4
	}
	return node.Children[i]
}

// Query returns the IDs of every point inside r. Order follows a pre-order
// walk of the tree and insertion order within a leaf.
func (o *Octree) Query(r geometry.BoundingBox) []int {
	var found []int
	o.Visit(r, func(e Entry) bool {
		found = append(found, e.ID)
		return true
	})
	return found
}

// Visit calls fn for every point inside r until fn returns false.
func (o *Octree) Visit(r geometry.BoundingBox, fn func(Entry) bool) {
	o.visit(0, r, r.AABB(), fn)
}

func (o *Octree) visit(ni int32, r geometry.BoundingBox, cull geometry.AABB, fn func(Entry) bool) bool {
	node := &o.nodes[ni]
	if !node.IsOccupied() || !node.Cell.Overlaps(cull) {
		return true
	}
	for _, e := range node.Items {
		if entry := o.entries[e]; r.Contains(entry.Position) {
			if !fn(entry) {
				return false
			}
		}
	}
	if node.IsLeaf() {
		return true
	}
	for _, c := range node.Children {
		if !o.visit(c, r, cull, fn) {
			return false
		}
	}
	return true
}

// Depth returns the deepest level reached by any node.
func (o *Octree) Depth() uint8 {
	var d uint8
	for i := range o.nodes {
		if o.nodes[i].Depth > d {
			d = o.nodes[i].Depth
		}
	}
	return d
}
