package service

import (
	"context"
	"fmt"

	"geosampler/internal/metrics"
	"geosampler/internal/models"
	"geosampler/internal/territory"
	"geosampler/pkg/geo"
	"geosampler/pkg/quadtree"
)

// probeDivisor sets the finer step used between covered samples.
const probeDivisor = 10.0

// LocationIterator raster-scans a coverage map from its south-west corner,
// west to east and then one row north, and yields a circle wherever the
// circle's edge touches covered area. After a yield it moves a full radius
// east; otherwise it probes radius/10 further. It is finite and one-shot.
type LocationIterator struct {
	coverage *quadtree.CoverageMap
	index    *quadtree.ReverseIndex[models.Metadata]
	radius   float64
	area     geo.Area
	circle   geo.Circle
	done     bool
}

// NewLocationIterator prepares a scan of coverage with circles of radiusKm.
// index may be nil, in which case circles carry no metadata.
func NewLocationIterator(coverage *quadtree.CoverageMap, index *quadtree.ReverseIndex[models.Metadata], radiusKm float64) (*LocationIterator, error) {
	if radiusKm <= 0 {
		return nil, fmt.Errorf("sample radius must be positive, got %f", radiusKm)
	}
	area := coverage.Area()
	return &LocationIterator{
		coverage: coverage,
		index:    index,
		radius:   radiusKm,
		area:     area,
		circle:   geo.Circle{Center: area.SW, RadiusKm: radiusKm},
	}, nil
}

// Next returns the next sample circle, or false once the scan has passed
// the north edge of the map.
func (it *LocationIterator) Next() (models.SampleCircle, bool) {
	for !it.done {
		if it.circle.Center.Lat > it.area.NE.Lat {
			it.done = true
			break
		}

		var out models.SampleCircle
		found := it.coverage.FilledAtCircleEdge(it.circle)
		if found {
			out = it.annotate(it.circle)
			it.circle = it.circle.Step(0, it.radius)
		} else {
			it.circle = it.circle.Step(0, it.radius/probeDivisor)
		}

		if it.circle.Center.Lng > it.area.NE.Lng {
			it.circle.Center.Lng = it.area.SW.Lng
			it.circle = it.circle.Step(it.radius, 0)
		}

		if found {
			return out, true
		}
	}
	return models.SampleCircle{}, false
}

// Circles streams the remaining sequence on a channel that is closed when
// the scan ends or ctx is cancelled.
func (it *LocationIterator) Circles(ctx context.Context) <-chan models.SampleCircle {
	out := make(chan models.SampleCircle)
	go func() {
		defer close(out)
		for {
			c, ok := it.Next()
			if !ok {
				return
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (it *LocationIterator) annotate(c geo.Circle) models.SampleCircle {
	out := models.SampleCircle{Circle: c}
	if it.index == nil {
		return out
	}
	if meta, ok := it.index.Search(c.Center); ok {
		out.Meta = &meta
	}
	return out
}

type territoryIterator struct {
	key string
	it  *LocationIterator
}

// Chain yields the locations of several territories one after another.
type Chain struct {
	iters []territoryIterator
	pos   int
}

// BundleLocations chains an iterator per territory of b. With no keys every
// territory is included in build order.
func BundleLocations(b *territory.Bundle, radiusKm float64, keys ...string) (*Chain, error) {
	if len(keys) == 0 {
		keys = b.Keys()
	}
	chain := &Chain{}
	for _, key := range keys {
		t, ok := b.Territory(key)
		if !ok {
			return nil, fmt.Errorf("unknown territory %q in bundle %s", key, b.Name)
		}
		it, err := NewLocationIterator(t.Coverage, t.Index, radiusKm)
		if err != nil {
			return nil, err
		}
		chain.iters = append(chain.iters, territoryIterator{key: key, it: it})
	}
	return chain, nil
}

func (c *Chain) Next() (models.SampleLocation, bool) {
	for c.pos < len(c.iters) {
		cur := c.iters[c.pos]
		if circle, ok := cur.it.Next(); ok {
			metrics.LocationsEmitted.WithLabelValues(cur.key).Inc()
			return models.NewSampleLocation(cur.key, circle), true
		}
		c.pos++
	}
	return models.SampleLocation{}, false
}

// Locations streams the chain on a channel, like LocationIterator.Circles.
func (c *Chain) Locations(ctx context.Context) <-chan *models.SampleLocation {
	out := make(chan *models.SampleLocation)
	go func() {
		defer close(out)
		for {
			loc, ok := c.Next()
			if !ok {
				return
			}
			select {
			case out <- &loc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
