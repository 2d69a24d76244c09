// Package reference loads the reference points (postal code centroids) that
// a territory bundle is built from. Malformed rows are dropped and reported
// in the Result; they never fail a load.
package reference

import (
	"context"
	"log"

	"geosampler/internal/metrics"
	"geosampler/internal/models"
)

// Source produces the full set of reference rows for a build.
type Source interface {
	Load(ctx context.Context) (*Result, error)
}

// Skipped describes a dropped row.
type Skipped struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of a load.
type Result struct {
	Rows    []models.Row
	Skipped []Skipped
}

func (r *Result) accept(row models.Row) {
	r.Rows = append(r.Rows, row)
	metrics.ReferenceRowsLoaded.Inc()
}

func (r *Result) skip(source string, line int, reason string) {
	log.Printf("Skipping reference row %d from %s: %s", line, source, reason)
	r.Skipped = append(r.Skipped, Skipped{Line: line, Reason: reason})
	metrics.ReferenceRowsSkipped.WithLabelValues(source).Inc()
}

// StaticSource serves rows that are already in memory.
type StaticSource []models.Row

func (s StaticSource) Load(_ context.Context) (*Result, error) {
	res := &Result{}
	for i, row := range s {
		if err := row.Validate(); err != nil {
			res.skip("static", i+1, err.Error())
			continue
		}
		res.accept(row)
	}
	return res, nil
}
