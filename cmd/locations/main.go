package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"geosampler/internal/config"
	"geosampler/internal/env"
	"geosampler/internal/models"
	"geosampler/internal/service"
	"geosampler/internal/territory"
	"geosampler/pkg/graceful"
)

func main() {
	radius := flag.Float64("radius", 0, "sample radius in km (default from SAMPLER_SAMPLE_RADIUS_KM)")
	territories := flag.String("territories", "", "comma separated territory keys (default all)")
	runID := flag.String("run", "", "run id stamped on every location")
	flag.Parse()

	if err := env.Load(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open %s cache store: %v", cfg.Cache.Backend, err)
	}
	build, err := cfg.Builder()
	if err != nil {
		log.Fatal(err)
	}
	cache := territory.NewCache(store, cfg.Cache.Version)

	req := models.SampleRequest{ID: *runID, RadiusKm: *radius}
	if *territories != "" {
		req.Territories = strings.Split(*territories, ",")
	}

	sampler := service.NewSampler(
		service.CachedBundle(cache, cfg.Cache.Name, build),
		service.NewJSONLinesPublisher(os.Stdout),
		cfg.Sampler.SampleRadiusKm,
	).WithBatchSize(cfg.Sampler.BatchSize)

	n, err := sampler.Handle(ctx, req)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Printf("Wrote %d sample locations", n)
}
