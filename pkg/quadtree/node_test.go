package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosampler/pkg/geo"
)

func TestMakeSubtreesQuadrantOrder(t *testing.T) {
	root := NewRoot(geo.NewPoint(47, 6), geo.NewPoint(55, 14), 3, 0)
	root.MakeSubtrees(func(parent *Node[int]) int { return parent.Data + 1 })

	require.Len(t, root.Children, 4)

	want := map[Quadrant]geo.Area{
		NorthWest: {SW: geo.NewPoint(51, 6), NE: geo.NewPoint(55, 10)},
		NorthEast: {SW: geo.NewPoint(51, 10), NE: geo.NewPoint(55, 14)},
		SouthWest: {SW: geo.NewPoint(47, 6), NE: geo.NewPoint(51, 10)},
		SouthEast: {SW: geo.NewPoint(47, 10), NE: geo.NewPoint(51, 14)},
	}
	for q, area := range want {
		t.Run(q.String(), func(t *testing.T) {
			child := root.Child(q)
			require.NotNil(t, child)
			assert.Equal(t, area, child.Area)
			assert.Equal(t, 1, child.Level)
			assert.Equal(t, 3, child.MaxLevel)
			assert.Equal(t, 1, child.Data, "child factory must see the parent")
		})
	}
}

func TestMakeSubtreesTilesParent(t *testing.T) {
	root := NewRoot(geo.NewPoint(-10.5, 3.25), geo.NewPoint(20, 40), 2, struct{}{})
	root.MakeSubtrees(nil)

	var area float64
	for _, c := range root.Children {
		area += (c.Area.NE.Lat - c.Area.SW.Lat) * (c.Area.NE.Lng - c.Area.SW.Lng)
		assert.True(t, root.Area.Contains(c.Area.SW))
		assert.True(t, root.Area.Contains(c.Area.NE))
	}
	parent := (root.Area.NE.Lat - root.Area.SW.Lat) * (root.Area.NE.Lng - root.Area.SW.Lng)
	assert.InDelta(t, parent, area, 1e-9, "children must tile the parent without overlap")

	// Shared edges meet exactly at the midpoint.
	mid := root.Area.Center()
	assert.Equal(t, mid, root.Child(NorthEast).Area.SW)
	assert.Equal(t, mid, root.Child(SouthWest).Area.NE)
	assert.Equal(t, mid.Lng, root.Child(NorthWest).Area.NE.Lng)
	assert.Equal(t, mid.Lat, root.Child(SouthEast).Area.NE.Lat)
}

func TestMakeSubtreesIsIdempotent(t *testing.T) {
	root := NewRoot(geo.NewPoint(0, 0), geo.NewPoint(1, 1), 4, 0)
	calls := 0
	factory := func(*Node[int]) int { calls++; return calls }

	root.MakeSubtrees(factory)
	first := append([]*Node[int](nil), root.Children...)
	root.MakeSubtrees(factory)

	assert.Equal(t, 4, calls)
	assert.Equal(t, first, root.Children)
}

func TestChildOfLeafIsNil(t *testing.T) {
	root := NewRoot(geo.NewPoint(0, 0), geo.NewPoint(1, 1), 4, 0)
	assert.Nil(t, root.Child(NorthWest))
	assert.False(t, root.HasChildren())
}

func TestWalkOrderAndCount(t *testing.T) {
	root := NewRoot(geo.NewPoint(0, 0), geo.NewPoint(4, 4), 2, "")
	root.MakeSubtrees(nil)
	root.Child(SouthEast).MakeSubtrees(nil)

	var levels []int
	root.Walk(func(n *Node[string]) bool {
		levels = append(levels, n.Level)
		return true
	})
	assert.Equal(t, []int{0, 1, 1, 1, 1, 2, 2, 2, 2}, levels)
	assert.Equal(t, 9, root.Count())

	skipped := 0
	root.Walk(func(n *Node[string]) bool {
		skipped++
		return n.Level == 0
	})
	assert.Equal(t, 5, skipped)
}
