package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"geosampler/internal/config"
	"geosampler/internal/env"
	"geosampler/internal/metrics"
	"geosampler/internal/models"
	"geosampler/internal/service"
	"geosampler/internal/territory"
	"geosampler/pkg/graceful"
	"geosampler/pkg/kafkaclient"
)

func main() {
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
	bundles := service.CachedBundle(cache, cfg.Cache.Name, build)

	// Warm the cache before taking requests.
	if _, err := bundles(ctx); err != nil && !errors.Is(err, territory.ErrCacheWrite) {
		log.Fatalf("Failed to prepare territory bundle: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("Serving metrics on %s", cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server failed: %v", err)
		}
	}()

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", cfg.Kafka.Broker, cfg.Kafka.RequestTopic, cfg.Kafka.GroupID)
	consumer, err := kafkaclient.NewKafkaConsumer(kafkaclient.ConsumerConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.RequestTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	if err != nil {
		log.Fatalf("Failed to create kafka consumer: %v", err)
	}
	producer, err := kafkaclient.NewKafkaProducer([]string{cfg.Kafka.Broker}, cfg.Kafka.LocationTopic)
	if err != nil {
		log.Fatalf("Failed to create kafka producer: %v", err)
	}

	sampler := service.NewSampler(bundles, service.NewKafkaPublisher(producer), cfg.Sampler.SampleRadiusKm).
		WithBatchSize(cfg.Sampler.BatchSize)

	consumer.StartConsuming(ctx)
	requests := service.NewIterator(consumer, service.DecodeJSON[models.SampleRequest])
	sampler.Run(ctx, requests.Objects(ctx))

	consumer.Stop()
	err = graceful.Shutdown(10*time.Second,
		srv.Shutdown,
		func(context.Context) error { producer.Close(); return nil },
	)
	if err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Sampler stopped, application exiting.")
}
