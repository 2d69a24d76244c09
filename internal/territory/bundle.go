package territory

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"geosampler/internal/metrics"
	"geosampler/internal/models"
	"geosampler/internal/progress"
	"geosampler/internal/reference"
	"geosampler/pkg/geo"
	"geosampler/pkg/quadtree"
)

// Indexed holds the two trees built for one territory.
type Indexed struct {
	Territory Territory
	Coverage  *quadtree.CoverageMap
	Index     *quadtree.ReverseIndex[models.Metadata]
}

// Bundle is everything built for one cache entry. It is read-only once
// built.
type Bundle struct {
	Name        string
	Territories []*Indexed
}

// Territory returns the trees for key.
func (b *Bundle) Territory(key string) (*Indexed, bool) {
	for _, t := range b.Territories {
		if t.Territory.Key == key {
			return t, true
		}
	}
	return nil, false
}

// Keys lists the territory keys in build order.
func (b *Bundle) Keys() []string {
	out := make([]string, 0, len(b.Territories))
	for _, t := range b.Territories {
		out = append(out, t.Territory.Key)
	}
	return out
}

// BuildOptions tunes a bundle build.
type BuildOptions struct {
	MaxLevel          int
	ReferenceRadiusKm float64
	PointsMaxLen      int
	// Progress is called at most ProgressSteps times during the build.
	Progress      progress.Func
	ProgressSteps int
}

// DefaultBuildOptions mirrors the historical settings.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MaxLevel:          quadtree.DefaultMaxLevel,
		ReferenceRadiusKm: 10,
		ProgressSteps:     20,
	}
}

// LogProgress is a progress.Func that reports through the standard logger.
func LogProgress(pos, total int) {
	log.Printf("Building geo cache %.2f%% is complete.", progress.Percent(pos, total))
}

// BuildFunc produces a fresh bundle on a cache miss.
type BuildFunc func(ctx context.Context) (*Bundle, error)

// Builder returns a BuildFunc that loads src and draws every row into the
// first territory whose pattern matches its name.
func Builder(name string, territories []Territory, src reference.Source, opts BuildOptions) BuildFunc {
	return func(ctx context.Context) (*Bundle, error) {
		res, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference data: %w", err)
		}
		if len(res.Skipped) > 0 {
			log.Printf("Dropped %d malformed reference rows", len(res.Skipped))
		}
		return Build(ctx, name, territories, res.Rows, opts)
	}
}

// Build creates the coverage map and reverse index of every territory from
// rows. Each row becomes a circle of opts.ReferenceRadiusKm drawn into the
// map and a point inserted into the index.
func Build(ctx context.Context, name string, territories []Territory, rows []models.Row, opts BuildOptions) (*Bundle, error) {
	start := time.Now()
	if opts.MaxLevel <= 0 {
		opts.MaxLevel = quadtree.DefaultMaxLevel
	}

	bundle := &Bundle{Name: name}
	matchers := make([]*regexp.Regexp, len(territories))
	for i, t := range territories {
		re, err := t.compile()
		if err != nil {
			return nil, err
		}
		matchers[i] = re
		bundle.Territories = append(bundle.Territories, &Indexed{
			Territory: t,
			Coverage:  quadtree.NewCoverageMap(t.NorthEast, t.SouthWest, opts.MaxLevel),
			Index:     quadtree.NewReverseIndex[models.Metadata](t.NorthEast, t.SouthWest, opts.MaxLevel, opts.PointsMaxLen),
		})
	}

	tracer := progress.NewTracer(len(rows), opts.Progress, opts.ProgressSteps)
	unmatched, unindexed := 0, 0
	for i, row := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		target := -1
		for j, re := range matchers {
			if re.MatchString(row.Name) {
				target = j
				break
			}
		}
		if target < 0 {
			unmatched++
			continue
		}

		t := bundle.Territories[target]
		circle := geo.NewCircle(row.Latitude, row.Longitude, opts.ReferenceRadiusKm)
		// A circle centred just outside the box still covers its border.
		t.Coverage.DrawCircle(circle)
		if !t.Index.Insert(circle.Center, row.Metadata()) {
			unindexed++
		}
		tracer.Step()
	}

	elapsed := time.Since(start)
	metrics.BuildDurationSeconds.Observe(elapsed.Seconds())
	for _, t := range bundle.Territories {
		s := t.Coverage.Stats()
		log.Printf("Territory %s: %d reference points, %d coverage nodes (%d full, depth %d)",
			t.Territory.Key, t.Index.Len(), s.Nodes, s.FullNodes, s.MaxDepth)
	}
	log.Printf("Built geo bundle %s from %d rows (%d unmatched, %d outside their territory) in %s",
		name, len(rows), unmatched, unindexed, elapsed)
	return bundle, nil
}
