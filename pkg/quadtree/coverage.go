package quadtree

import (
	"math"

	"geosampler/pkg/geo"
)

// edgeProbes is the number of points checked on a circle's circumference by
// FilledAtCircleEdge.
const edgeProbes = 10

// Coverage is the per-node state of a CoverageMap. A full node never has
// children.
type Coverage struct {
	Full bool
}

func newCoverage(*Node[Coverage]) Coverage { return Coverage{} }

// CoverageMap records the parts of a territory that lie within at least one
// drawn circle. Drawing is depth limited: a leaf touched by a circle is
// rounded up to fully covered.
type CoverageMap struct {
	Root *Node[Coverage]
}

// NewCoverageMap creates an empty map over the box between p1 and p2.
func NewCoverageMap(p1, p2 geo.Point, maxLevel int) *CoverageMap {
	return &CoverageMap{Root: NewRoot(p1, p2, maxLevel, Coverage{})}
}

func (m *CoverageMap) Area() geo.Area { return m.Root.Area }

// DrawCircle marks everything inside c as covered.
func (m *CoverageMap) DrawCircle(c geo.Circle) {
	drawCircle(m.Root, c)
}

// CircleAddsArea reports whether drawing c would cover anything new. It
// does not modify the map.
func (m *CoverageMap) CircleAddsArea(c geo.Circle) bool {
	return circleAddsArea(m.Root, c)
}

// FilledAt reports whether p is covered.
func (m *CoverageMap) FilledAt(p geo.Point) bool {
	return filledAt(m.Root, p)
}

// FilledAtCircleEdge probes edgeProbes evenly spaced points on the
// circumference of c and reports whether any of them is covered. It is a
// cheap boundary-touch check, not an exact perimeter test.
func (m *CoverageMap) FilledAtCircleEdge(c geo.Circle) bool {
	step := 2 * math.Pi / edgeProbes
	for a := 0; a < edgeProbes; a++ {
		angle := float64(a) * step
		dlat := c.RadiusKm * math.Sin(angle)
		dlng := c.RadiusKm * math.Cos(angle)
		if m.FilledAt(c.Center.Step(dlat, dlng)) {
			return true
		}
	}
	return false
}

// SetFull marks the whole map as covered.
func (m *CoverageMap) SetFull() {
	setFull(m.Root)
}

// DrawFunc receives the bounds of one covered region.
type DrawFunc func(x, y, width, height float64)

// Visualize calls draw for every covered region, mapping the root onto the
// rectangle (x, y, width, height). y grows downwards, so the north-west
// quadrant is drawn at the origin.
func (m *CoverageMap) Visualize(x, y, width, height float64, draw DrawFunc) {
	visualize(m.Root, x, y, width, height, draw)
}

// CoverageStats summarises the shape of a map.
type CoverageStats struct {
	Nodes     int
	FullNodes int
	MaxDepth  int
}

func (m *CoverageMap) Stats() CoverageStats {
	var s CoverageStats
	m.Root.Walk(func(n *Node[Coverage]) bool {
		s.Nodes++
		if n.Data.Full {
			s.FullNodes++
		}
		s.MaxDepth = max(s.MaxDepth, n.Level)
		return true
	})
	return s
}

func drawCircle(n *Node[Coverage], c geo.Circle) {
	if n.Data.Full {
		return
	}

	if n.HasChildren() && allFull(n.Children) {
		setFull(n)
		return
	}

	corners := n.Area.Corners()
	if c.ContainsAll(corners[:]...) {
		setFull(n)
		return
	}

	if !n.Area.IntersectsCircle(c) {
		return
	}

	if n.Level == n.MaxLevel {
		setFull(n)
		return
	}

	n.MakeSubtrees(newCoverage)
	for _, child := range n.Children {
		drawCircle(child, c)
	}
}

func circleAddsArea(n *Node[Coverage], c geo.Circle) bool {
	if n.Data.Full {
		return false
	}
	for _, child := range n.Children {
		if circleAddsArea(child, c) {
			return true
		}
	}
	return n.Area.IntersectsCircle(c)
}

// filledAt checks containment before the flag so that a full sibling never
// answers for a point outside its own square.
func filledAt(n *Node[Coverage], p geo.Point) bool {
	if !n.Area.Contains(p) {
		return false
	}
	if n.Data.Full {
		return true
	}
	for _, child := range n.Children {
		if filledAt(child, p) {
			return true
		}
	}
	return false
}

func setFull(n *Node[Coverage]) {
	n.DropSubtrees()
	n.Data.Full = true
}

func allFull(nodes []*Node[Coverage]) bool {
	for _, n := range nodes {
		if !n.Data.Full {
			return false
		}
	}
	return true
}

func visualize(n *Node[Coverage], x, y, width, height float64, draw DrawFunc) {
	if n.Data.Full {
		draw(x, y, width, height)
		return
	}
	if !n.HasChildren() {
		return
	}

	hw, hh := width/2, height/2
	mx, my := x+hw, y+hh

	visualize(n.Children[NorthWest], x, y, hw, hh, draw)
	visualize(n.Children[NorthEast], mx, y, hw, hh, draw)
	visualize(n.Children[SouthWest], x, my, hw, hh, draw)
	visualize(n.Children[SouthEast], mx, my, hw, hh, draw)
}
