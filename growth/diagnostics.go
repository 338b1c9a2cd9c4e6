package growth

import (
	"github.com/o0olele/sctree-go/geometry"
	"github.com/o0olele/sctree-go/nodebase"
	"github.com/o0olele/sctree-go/octree"
)

// Stats summarizes a grower for logs and the host API.
type Stats struct {
	State                State `json:"state"`
	Cycles               int   `json:"cycles"`
	Nodes                int   `json:"nodes"`
	InitialAttractors    int   `json:"initial_attractors"`
	Attractors           int   `json:"attractors"`
	PrunedAttractors     int   `json:"pruned_attractors"`
	DiscardedAttractors  int   `json:"discarded_attractors"`
	ActiveAttractors     int   `json:"active_attractors"`
	NodeOctreeNodes      int   `json:"node_octree_nodes"`
	NodeOctreeDepth      uint8 `json:"node_octree_depth"`
	Vertices             int   `json:"vertices"`
	Triangles            int   `json:"triangles"`
	DegenerateDirections int   `json:"degenerate_directions"`
	NodesOutsideOctree   int   `json:"nodes_outside_octree"`
}

// Stats returns current counters.
func (g *Grower) Stats() Stats {
	return Stats{
		State:                g.state,
		Cycles:               g.cycles,
		Nodes:                g.skel.Len(),
		InitialAttractors:    len(g.initial),
		Attractors:           g.live.Count(),
		PrunedAttractors:     g.pruned,
		DiscardedAttractors:  g.discarded,
		ActiveAttractors:     len(g.active),
		NodeOctreeNodes:      g.nodeTree.NodeCount(),
		NodeOctreeDepth:      g.nodeTree.Depth(),
		Vertices:             g.mesh.GetVertexCount(),
		Triangles:            g.mesh.GetTriangleCount(),
		DegenerateDirections: g.degenerate,
		NodesOutsideOctree:   g.outside,
	}
}

// Attractors returns a copy of the live attractor list.
func (g *Grower) Attractors() []Attractor {
	return append([]Attractor(nil), g.attractors...)
}

// ActiveAttractors returns the attractors bound to a node in the last
// cycle.
func (g *Grower) ActiveAttractors() []Attractor {
	out := make([]Attractor, len(g.active))
	for i, id := range g.active {
		out[i] = g.initial[id]
	}
	return out
}

// Nodes returns a copy of the skeleton without the per-cycle attractor
// bindings.
func (g *Grower) Nodes() []nodebase.Node {
	out := make([]nodebase.Node, g.skel.Len())
	copy(out, g.skel.Nodes)
	for i := range out {
		out[i].Attractors = nil
	}
	return out
}

// Segments returns one capsule per branch segment, parent to child, sized by
// the child's radius.
func (g *Grower) Segments() []geometry.Capsule {
	segments := make([]geometry.Capsule, 0, g.skel.Len())
	for i := range g.skel.Nodes {
		node := &g.skel.Nodes[i]
		if !node.HasParent() {
			continue
		}
		segments = append(segments, geometry.Capsule{
			Start:  g.skel.Get(node.Parent).Position,
			End:    node.Position,
			Radius: node.Radius,
		})
	}
	return segments
}

// NodeOctree exports the node index for debug overlays.
func (g *Grower) NodeOctree() *octree.OctreeExport {
	return g.nodeTree.Export()
}

// AttractorOctree exports the attractor index.
func (g *Grower) AttractorOctree() *octree.OctreeExport {
	return g.attractorTree.Export()
}
