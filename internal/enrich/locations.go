package enrich

import (
	"context"
	"fmt"

	"github.com/mmcloughlin/geohash"

	"geosampler/internal/models"
)

// DefaultGeohashPrecision gives cells of roughly 1.2km x 0.6km.
const DefaultGeohashPrecision = 6

// Geohash labels a sample location with the geohash cell of its centre.
func Geohash(precision uint) Step[models.SampleLocation] {
	return func(_ context.Context, loc *models.SampleLocation) error {
		if precision == 0 || precision > 12 {
			return fmt.Errorf("geohash precision %d out of range", precision)
		}
		loc.Geohash = geohash.EncodeWithPrecision(loc.Latitude, loc.Longitude, precision)
		return nil
	}
}

// RunID stamps every sample location with the id of the request that
// produced it.
func RunID(id string) Step[models.SampleLocation] {
	return func(_ context.Context, loc *models.SampleLocation) error {
		loc.RunID = id
		return nil
	}
}

// LocationPipeline is the default decoration applied before publishing.
func LocationPipeline(runID string) *Pipeline[models.SampleLocation] {
	return NewPipeline(NewStage(Geohash(DefaultGeohashPrecision), RunID(runID)))
}
