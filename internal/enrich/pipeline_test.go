package enrich

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"geosampler/internal/models"
)

func setTerritory(key string) Step[models.SampleLocation] {
	return func(_ context.Context, loc *models.SampleLocation) error {
		loc.Territory = key
		return nil
	}
}

func failing(_ context.Context, _ *models.SampleLocation) error {
	return errors.New("lookup failed")
}

func TestPipeline_Apply(t *testing.T) {
	tests := []struct {
		name   string
		stages []Stage[models.SampleLocation]
		want   models.SampleLocation
	}{
		{
			name:   "single step",
			stages: []Stage[models.SampleLocation]{NewStage(setTerritory("de"))},
			want:   models.SampleLocation{Latitude: 52, Longitude: 13, Territory: "de"},
		},
		{
			name: "parallel steps write disjoint fields",
			stages: []Stage[models.SampleLocation]{
				NewStage(setTerritory("de"), RunID("r1"), Geohash(3)),
			},
			want: models.SampleLocation{Latitude: 52, Longitude: 13, Territory: "de", RunID: "r1", Geohash: "u31"},
		},
		{
			name: "later stage sees earlier results",
			stages: []Stage[models.SampleLocation]{
				NewStage(RunID("r2")),
				NewStage(func(_ context.Context, loc *models.SampleLocation) error {
					loc.Territory = loc.RunID + "-territory"
					return nil
				}),
			},
			want: models.SampleLocation{Latitude: 52, Longitude: 13, RunID: "r2", Territory: "r2-territory"},
		},
		{
			name: "failing step does not stop the item",
			stages: []Stage[models.SampleLocation]{
				NewStage(failing),
				NewStage(setTerritory("at")),
			},
			want: models.SampleLocation{Latitude: 52, Longitude: 13, Territory: "at"},
		},
		{
			name: "no stages",
			want: models.SampleLocation{Latitude: 52, Longitude: 13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &models.SampleLocation{Latitude: 52, Longitude: 13}
			NewPipeline(tt.stages...).Apply(context.Background(), loc)
			if !reflect.DeepEqual(*loc, tt.want) {
				t.Errorf("got %+v, want %+v", *loc, tt.want)
			}
		})
	}
}

func TestPipeline_ProcessCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *models.SampleLocation)
	out := NewPipeline[models.SampleLocation]().Process(ctx, in)
	cancel()
	close(in)

	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("output channel was not closed")
	}
}

func TestPipeline_ProcessKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	in := make(chan *models.SampleLocation, 3)
	for i := 0; i < 3; i++ {
		in <- &models.SampleLocation{Latitude: 52 + float64(i), Longitude: 13}
	}
	close(in)

	var got []float64
	for loc := range LocationPipeline("run-1").Process(ctx, in) {
		if loc.RunID != "run-1" || loc.Geohash == "" {
			t.Fatalf("location not decorated: %+v", loc)
		}
		got = append(got, loc.Latitude)
	}
	if !reflect.DeepEqual(got, []float64{52, 53, 54}) {
		t.Fatalf("order = %v", got)
	}
}

func TestGeohashStep(t *testing.T) {
	loc := &models.SampleLocation{Latitude: 52.5200, Longitude: 13.4050}
	if err := Geohash(5)(context.Background(), loc); err != nil {
		t.Fatal(err)
	}
	if loc.Geohash != "u33dc" {
		t.Fatalf("Geohash = %q; want u33dc", loc.Geohash)
	}
	if err := Geohash(13)(context.Background(), loc); err == nil {
		t.Fatal("expected an error for precision 13")
	}
}
