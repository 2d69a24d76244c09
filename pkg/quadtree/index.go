package quadtree

import "geosampler/pkg/geo"

// Entry is a reference point stored in a ReverseIndex.
type Entry[M any] struct {
	Point geo.Point
	Meta  M
}

// Bucket is the per-node state of a ReverseIndex. Only nodes at MaxLevel
// hold entries. A positive MaxLen evicts the oldest entry on overflow.
type Bucket[M any] struct {
	Entries []Entry[M]
	MaxLen  int
}

func (b *Bucket[M]) add(e Entry[M]) {
	if b.MaxLen > 0 && len(b.Entries) >= b.MaxLen {
		b.Entries = append(b.Entries[:0:0], b.Entries[len(b.Entries)-b.MaxLen+1:]...)
	}
	b.Entries = append(b.Entries, e)
}

// ReverseIndex maps coordinates to the metadata of nearby reference points.
//
// Search is approximate by construction: it only looks inside the subtree
// reached by descending through the quadrants that contain the query, so a
// closer point just across a quadrant boundary can be missed.
type ReverseIndex[M any] struct {
	Root *Node[Bucket[M]]
}

// NewReverseIndex creates an empty index over the box between p1 and p2.
// maxLen bounds every leaf bucket; zero means unbounded.
func NewReverseIndex[M any](p1, p2 geo.Point, maxLevel, maxLen int) *ReverseIndex[M] {
	return &ReverseIndex[M]{Root: NewRoot(p1, p2, maxLevel, Bucket[M]{MaxLen: maxLen})}
}

func (ix *ReverseIndex[M]) Area() geo.Area { return ix.Root.Area }

// Insert stores meta at p in the leaf containing p, subdividing down to
// MaxLevel on the way. It returns false if p lies outside the index.
func (ix *ReverseIndex[M]) Insert(p geo.Point, meta M) bool {
	if !ix.Root.Area.Contains(p) {
		return false
	}
	return insert(ix.Root, Entry[M]{Point: p, Meta: meta})
}

// Search returns the metadata of the closest candidate to q, or false if no
// candidate is reachable.
func (ix *ReverseIndex[M]) Search(q geo.Point) (M, bool) {
	candidates := closeTo(ix.Root, q)
	if len(candidates) == 0 {
		var zero M
		return zero, false
	}

	best := candidates[0]
	bestDist := geo.Distance(best.Point, q)
	for _, c := range candidates[1:] {
		if d := geo.Distance(c.Point, q); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best.Meta, true
}

// Len returns the number of stored entries.
func (ix *ReverseIndex[M]) Len() int {
	return len(allEntries(ix.Root, nil))
}

func childBucket[M any](parent *Node[Bucket[M]]) Bucket[M] {
	return Bucket[M]{MaxLen: parent.Data.MaxLen}
}

func insert[M any](n *Node[Bucket[M]], e Entry[M]) bool {
	if n.IsLeafLevel() {
		n.Data.add(e)
		return true
	}

	n.MakeSubtrees(childBucket[M])
	for _, child := range n.Children {
		if child.Area.Contains(e.Point) {
			return insert(child, e)
		}
	}
	return false
}

// closeTo collects the candidates for q: the entries of the deepest node
// reached by containment descent, widening to the whole subtree of each
// ancestor while the result is still empty.
func closeTo[M any](n *Node[Bucket[M]], q geo.Point) []Entry[M] {
	if n.IsLeafLevel() {
		return n.Data.Entries
	}

	result := n.Data.Entries
	for _, child := range n.Children {
		if child.Area.Contains(q) {
			result = closeTo(child, q)
			break
		}
	}
	if len(result) > 0 {
		return result
	}
	return allEntries(n, nil)
}

func allEntries[M any](n *Node[Bucket[M]], acc []Entry[M]) []Entry[M] {
	n.Walk(func(node *Node[Bucket[M]]) bool {
		acc = append(acc, node.Data.Entries...)
		return true
	})
	return acc
}
