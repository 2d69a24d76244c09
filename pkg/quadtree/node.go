// Package quadtree implements the recursive 4-ary subdivision shared by the
// coverage map and the reverse index. The subdivision logic lives once in
// Node; each tree variant plugs its own per-node state in through the type
// parameter and a ChildFactory.
package quadtree

import "geosampler/pkg/geo"

// DefaultMaxLevel bounds the depth of a tree when callers do not choose one.
const DefaultMaxLevel = 8

// Quadrant indexes a child of a subdivided node. The order is fixed and
// relied upon by persisted trees.
type Quadrant int

const (
	NorthWest Quadrant = iota // upper-left
	NorthEast                 // upper-right
	SouthWest                 // lower-left
	SouthEast                 // lower-right
)

func (q Quadrant) String() string {
	switch q {
	case NorthWest:
		return "nw"
	case NorthEast:
		return "ne"
	case SouthWest:
		return "sw"
	case SouthEast:
		return "se"
	}
	return "invalid"
}

// ChildFactory produces the state of a new child from its parent.
type ChildFactory[T any] func(parent *Node[T]) T

// Node is one square of the subdivision. It owns either no children or
// exactly four.
type Node[T any] struct {
	Area     geo.Area
	Level    int
	MaxLevel int
	Children []*Node[T]
	Data     T
}

// NewRoot creates a level-0 node covering the box between p1 and p2.
func NewRoot[T any](p1, p2 geo.Point, maxLevel int, data T) *Node[T] {
	return &Node[T]{
		Area:     geo.NewArea(p1, p2),
		Level:    0,
		MaxLevel: maxLevel,
		Data:     data,
	}
}

func (n *Node[T]) HasChildren() bool { return len(n.Children) > 0 }

// IsLeafLevel reports whether the node sits at the deepest permitted level.
func (n *Node[T]) IsLeafLevel() bool { return n.Level >= n.MaxLevel }

// Child returns the child in quadrant q, or nil if the node is not subdivided.
func (n *Node[T]) Child(q Quadrant) *Node[T] {
	if !n.HasChildren() {
		return nil
	}
	return n.Children[q]
}

// MakeSubtrees splits the node at its midpoint into four children one level
// deeper. It does nothing if the node is already subdivided.
func (n *Node[T]) MakeSubtrees(newData ChildFactory[T]) {
	if n.HasChildren() {
		return
	}

	sw, ne := n.Area.SW, n.Area.NE
	mid := n.Area.Center()

	n.Children = []*Node[T]{
		n.newChild(geo.Point{Lat: mid.Lat, Lng: sw.Lng}, geo.Point{Lat: ne.Lat, Lng: mid.Lng}, newData),
		n.newChild(mid, ne, newData),
		n.newChild(sw, mid, newData),
		n.newChild(geo.Point{Lat: sw.Lat, Lng: mid.Lng}, geo.Point{Lat: mid.Lat, Lng: ne.Lng}, newData),
	}
}

// DropSubtrees discards all children.
func (n *Node[T]) DropSubtrees() {
	n.Children = nil
}

func (n *Node[T]) newChild(p1, p2 geo.Point, newData ChildFactory[T]) *Node[T] {
	child := &Node[T]{
		Area:     geo.NewArea(p1, p2),
		Level:    n.Level + 1,
		MaxLevel: n.MaxLevel,
	}
	if newData != nil {
		child.Data = newData(n)
	}
	return child
}

// Walk visits the node and its descendants depth first, parents before
// children, in quadrant order. Returning false from fn skips the subtree.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node[T]) Count() int {
	count := 0
	n.Walk(func(*Node[T]) bool {
		count++
		return true
	})
	return count
}
