package service

import (
	"context"
	"testing"
	"time"

	"geosampler/internal/models"
	"geosampler/internal/territory"
	"geosampler/pkg/geo"
	"geosampler/pkg/quadtree"
)

var (
	testSW = geo.NewPoint(51.5, 12.5)
	testNE = geo.NewPoint(52.5, 13.5)
	berlin = models.Metadata{PostalCode: "10115", Name: "Berlin"}
)

// drawnTerritory returns trees for testSW..testNE with a single reference
// circle of radiusKm at center.
func drawnTerritory(key string, center geo.Point, radiusKm float64) *territory.Indexed {
	cov := quadtree.NewCoverageMap(testSW, testNE, quadtree.DefaultMaxLevel)
	idx := quadtree.NewReverseIndex[models.Metadata](testSW, testNE, quadtree.DefaultMaxLevel, 0)
	cov.DrawCircle(geo.Circle{Center: center, RadiusKm: radiusKm})
	idx.Insert(center, berlin)
	return &territory.Indexed{
		Territory: territory.Territory{Key: key, SouthWest: testSW, NorthEast: testNE},
		Coverage:  cov,
		Index:     idx,
	}
}

func collect(it *LocationIterator) []models.SampleCircle {
	var out []models.SampleCircle
	for {
		c, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func TestLocationIterator_SingleCircle(t *testing.T) {
	center := geo.NewPoint(52, 13)
	tr := drawnTerritory("de", center, 5)

	it, err := NewLocationIterator(tr.Coverage, tr.Index, 5)
	if err != nil {
		t.Fatalf("NewLocationIterator() failed: %v", err)
	}
	circles := collect(it)
	if len(circles) == 0 {
		t.Fatal("expected at least one sample circle")
	}

	prevLat := testSW.Lat
	for i, c := range circles {
		if !tr.Coverage.FilledAtCircleEdge(c.Circle) {
			t.Errorf("circle %d at %s does not touch covered area", i, c.Center)
		}
		if d := c.Center.Distance(center); d > 11 {
			t.Errorf("circle %d at %s is %.2fkm from the drawn circle", i, c.Center, d)
		}
		if c.RadiusKm != 5 {
			t.Errorf("circle %d has radius %f, want 5", i, c.RadiusKm)
		}
		if c.Center.Lat < prevLat {
			t.Errorf("circle %d moved south: %f < %f", i, c.Center.Lat, prevLat)
		}
		prevLat = c.Center.Lat
		if c.Meta == nil || *c.Meta != berlin {
			t.Errorf("circle %d has metadata %v, want %v", i, c.Meta, berlin)
		}
	}

	if _, ok := it.Next(); ok {
		t.Error("exhausted iterator yielded again")
	}
}

func TestLocationIterator_InvalidRadius(t *testing.T) {
	cov := quadtree.NewCoverageMap(testSW, testNE, 4)
	for _, r := range []float64{0, -1} {
		if _, err := NewLocationIterator(cov, nil, r); err == nil {
			t.Errorf("radius %f: expected an error", r)
		}
	}
}

func TestLocationIterator_EmptyMap(t *testing.T) {
	cov := quadtree.NewCoverageMap(testSW, testNE, 4)
	it, err := NewLocationIterator(cov, nil, 10)
	if err != nil {
		t.Fatalf("NewLocationIterator() failed: %v", err)
	}
	if circles := collect(it); len(circles) != 0 {
		t.Errorf("expected no circles for an empty map, got %d", len(circles))
	}
}

func TestLocationIterator_FullMapCoversRows(t *testing.T) {
	cov := quadtree.NewCoverageMap(testSW, testNE, 4)
	cov.SetFull()
	it, err := NewLocationIterator(cov, nil, 20)
	if err != nil {
		t.Fatalf("NewLocationIterator() failed: %v", err)
	}
	circles := collect(it)
	if len(circles) == 0 {
		t.Fatal("expected circles for a full map")
	}
	if circles[0].Center != testSW {
		t.Errorf("scan should start at the south-west corner, got %s", circles[0].Center)
	}
	for i, c := range circles {
		if c.Meta != nil {
			t.Errorf("circle %d has metadata without an index", i)
		}
		if c.Center.Lat > testNE.Lat {
			t.Errorf("circle %d is north of the map: %s", i, c.Center)
		}
	}
}

func TestLocationIterator_CirclesCancel(t *testing.T) {
	cov := quadtree.NewCoverageMap(testSW, testNE, 4)
	cov.SetFull()
	it, err := NewLocationIterator(cov, nil, 1)
	if err != nil {
		t.Fatalf("NewLocationIterator() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := it.Circles(ctx)
	if _, ok := <-ch; !ok {
		t.Fatal("expected a first circle")
	}
	cancel()

	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel was not closed after cancellation")
		}
	}
}

func TestBundleLocations_Chain(t *testing.T) {
	a := drawnTerritory("a", geo.NewPoint(51.7, 12.7), 5)
	b := drawnTerritory("b", geo.NewPoint(52.3, 13.3), 5)
	bundle := &territory.Bundle{Name: "test", Territories: []*territory.Indexed{a, b}}

	countA := mustCount(t, a)
	countB := mustCount(t, b)

	chain, err := BundleLocations(bundle, 5)
	if err != nil {
		t.Fatalf("BundleLocations() failed: %v", err)
	}
	var keys []string
	for {
		loc, ok := chain.Next()
		if !ok {
			break
		}
		keys = append(keys, loc.Territory)
	}
	if len(keys) != countA+countB {
		t.Fatalf("expected %d locations, got %d", countA+countB, len(keys))
	}
	for i, k := range keys {
		want := "a"
		if i >= countA {
			want = "b"
		}
		if k != want {
			t.Fatalf("location %d belongs to %q, want %q", i, k, want)
		}
	}

	only, err := BundleLocations(bundle, 5, "b")
	if err != nil {
		t.Fatalf("BundleLocations(b) failed: %v", err)
	}
	n := 0
	for range only.Locations(context.Background()) {
		n++
	}
	if n != countB {
		t.Errorf("expected %d locations for b, got %d", countB, n)
	}
}

func TestBundleLocations_Errors(t *testing.T) {
	bundle := &territory.Bundle{Name: "test", Territories: []*territory.Indexed{drawnTerritory("a", geo.NewPoint(52, 13), 5)}}
	if _, err := BundleLocations(bundle, 5, "zz"); err == nil {
		t.Error("expected an error for an unknown territory")
	}
	if _, err := BundleLocations(bundle, 0); err == nil {
		t.Error("expected an error for a zero radius")
	}
}

func mustCount(t *testing.T, tr *territory.Indexed) int {
	t.Helper()
	it, err := NewLocationIterator(tr.Coverage, tr.Index, 5)
	if err != nil {
		t.Fatalf("NewLocationIterator() failed: %v", err)
	}
	return len(collect(it))
}
