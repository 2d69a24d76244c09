package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"geosampler/internal/config"
	"geosampler/internal/env"
	"geosampler/internal/storage"
	"geosampler/internal/territory"
	"geosampler/pkg/graceful"
)

func main() {
	force := flag.Bool("force", false, "rebuild even if a cached bundle exists")
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

	if *force {
		// Persist over whatever the store holds.
		store = overwrite{store}
	}

	start := time.Now()
	cache := territory.NewCache(store, cfg.Cache.Version)
	bundle, err := cache.Get(ctx, cfg.Cache.Name, build)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Bundle %s ready in %s\n", cache.Key(cfg.Cache.Name), time.Since(start))
	for _, t := range bundle.Territories {
		stats := t.Coverage.Stats()
		fmt.Printf("  %-6s %6d reference points, %7d nodes (%d full, depth %d)\n",
			t.Territory.Key, t.Index.Len(), stats.Nodes, stats.FullNodes, stats.MaxDepth)
	}
}

// overwrite hides existing entries so the cache always rebuilds.
type overwrite struct {
	storage.Store
}

func (overwrite) Get(context.Context, string) ([]byte, error) {
	return nil, storage.ErrNotFound
}
