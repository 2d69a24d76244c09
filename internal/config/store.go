package config

import (
	"context"
	"fmt"

	"geosampler/internal/reference"
	"geosampler/internal/storage"
	"geosampler/internal/territory"
)

// OpenStore creates the cache store selected by Cache.Backend.
func (c *Config) OpenStore(ctx context.Context) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)
	switch c.Cache.Backend {
	case "file":
		store, err = storage.NewFileStore(c.Cache.Dir)
	case "s3":
		store, err = storage.NewS3Store(ctx, c.Cache.Bucket)
	case "redis":
		store, err = storage.NewRedisStore(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB, c.Cache.TTL)
	case "memory":
		store = storage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Territories loads TerritoriesFile, or returns the Germany territory when
// none is configured.
func (c *Config) Territories() ([]territory.Territory, error) {
	if c.TerritoriesFile == "" {
		return []territory.Territory{territory.Germany}, nil
	}
	return territory.LoadFile(c.TerritoriesFile)
}

// ReferenceSource picks Postgres when a database url is set and the CSV
// file otherwise. The returned close function releases the connection.
func (c *Config) ReferenceSource(ctx context.Context) (reference.Source, func(), error) {
	if c.Reference.DatabaseURL != "" {
		conn, err := reference.ConnectPostgres(ctx, c.Reference.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = conn.Close(context.Background()) }
		return reference.NewPostgresSource(conn, c.Reference.Table), closeFn, nil
	}
	if c.Reference.CSV == "" {
		return nil, nil, fmt.Errorf("no reference data configured: set REFERENCE_CSV or REFERENCE_DATABASE_URL")
	}
	return reference.NewCSVSource(c.Reference.CSV), func() {}, nil
}

// BuildOptions translates the sampler settings for territory.Build.
func (c *Config) BuildOptions() territory.BuildOptions {
	opts := territory.DefaultBuildOptions()
	opts.MaxLevel = c.Sampler.MaxLevel
	opts.ReferenceRadiusKm = c.Sampler.ReferenceRadiusKm
	opts.PointsMaxLen = c.Sampler.PointsMaxLen
	opts.Progress = territory.LogProgress
	return opts
}

// Builder returns the BuildFunc for Cache.Name. The reference source is
// opened only when a build actually runs.
func (c *Config) Builder() (territory.BuildFunc, error) {
	territories, err := c.Territories()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (*territory.Bundle, error) {
		src, closeFn, err := c.ReferenceSource(ctx)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		return territory.Builder(c.Cache.Name, territories, src, c.BuildOptions())(ctx)
	}, nil
}
