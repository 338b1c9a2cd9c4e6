package nodebase

import "fmt"

// Skeleton is the append-only node arena. Indices stay valid for the whole
// run since nodes are never removed.
type Skeleton struct {
	Nodes []Node
}

// NewSkeleton creates an empty skeleton.
func NewSkeleton() *Skeleton {
	return &Skeleton{}
}

// Add appends node and returns its index. A parent must already exist.
func (s *Skeleton) Add(node Node) int {
	if node.Parent != NoParent && (node.Parent < 0 || node.Parent >= len(s.Nodes)) {
		panic(fmt.Sprintf("nodebase: parent %d not in skeleton of %d nodes", node.Parent, len(s.Nodes)))
	}
	s.Nodes = append(s.Nodes, node)
	return len(s.Nodes) - 1
}

// Len returns the node count.
func (s *Skeleton) Len() int {
	return len(s.Nodes)
}

// Get returns the node at i.
func (s *Skeleton) Get(i int) *Node {
	return &s.Nodes[i]
}

// Roots counts nodes without a parent.
func (s *Skeleton) Roots() int {
	n := 0
	for i := range s.Nodes {
		if !s.Nodes[i].HasParent() {
			n++
		}
	}
	return n
}

// Trunk returns the index of the trunk tip, or -1, and how many nodes carry
// the trunk flag.
func (s *Skeleton) Trunk() (index, count int) {
	index = -1
	for i := range s.Nodes {
		if s.Nodes[i].IsTrunk {
			if index < 0 {
				index = i
			}
			count++
		}
	}
	return index, count
}

// TrunkCount returns how many nodes carry the trunk flag. A running tree
// has exactly one.
func (s *Skeleton) TrunkCount() int {
	_, n := s.Trunk()
	return n
}

// PropagateDepth raises the depth of every ancestor of child: the parent is
// at least 1, the grandparent at least 2 and so on. The walk stops at the
// first ancestor that is already deep enough, since everything above it is
// too.
func (s *Skeleton) PropagateDepth(child int) {
	d := 1
	for i := s.Nodes[child].Parent; i != NoParent; i = s.Nodes[i].Parent {
		if s.Nodes[i].Depth >= d {
			return
		}
		s.Nodes[i].Depth = d
		d++
	}
}

// PathToRoot lists node indices from i up to its root, i first.
func (s *Skeleton) PathToRoot(i int) []int {
	var path []int
	for ; i != NoParent; i = s.Nodes[i].Parent {
		path = append(path, i)
		if len(path) > len(s.Nodes) {
			panic(fmt.Sprintf("nodebase: parent cycle through node %d", i))
		}
	}
	return path
}

// ClearAttractors empties every node's bound attractor set.
func (s *Skeleton) ClearAttractors() {
	for i := range s.Nodes {
		s.Nodes[i].Attractors = s.Nodes[i].Attractors[:0]
	}
}
