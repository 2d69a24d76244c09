// Package config assembles runtime settings from defaults, an optional
// config.yaml and the environment. Environment variables win; nested keys
// map to upper-case names joined by underscores, so sampler.max_level is
// read from SAMPLER_MAX_LEVEL.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Sampler   SamplerConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Reference ReferenceConfig
	Metrics   MetricsConfig
	// TerritoriesFile is optional; without it the Germany territory is used.
	TerritoriesFile string `mapstructure:"territories_file"`
}

type SamplerConfig struct {
	MaxLevel          int     `mapstructure:"max_level"`
	ReferenceRadiusKm float64 `mapstructure:"reference_radius_km"`
	SampleRadiusKm    float64 `mapstructure:"sample_radius_km"`
	PointsMaxLen      int     `mapstructure:"points_max_len"`
	BatchSize         int     `mapstructure:"batch_size"`
}

type CacheConfig struct {
	Name    string
	Version string
	// Backend is one of file, s3, redis or memory.
	Backend string
	Dir     string
	Bucket  string
	TTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Broker        string
	RequestTopic  string `mapstructure:"request_topic"`
	GroupID       string `mapstructure:"group_id"`
	LocationTopic string `mapstructure:"location_topic"`
}

type ReferenceConfig struct {
	CSV         string
	DatabaseURL string `mapstructure:"database_url"`
	Table       string
}

type MetricsConfig struct {
	Addr string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sampler.max_level", 8)
	v.SetDefault("sampler.reference_radius_km", 10.0)
	v.SetDefault("sampler.sample_radius_km", 10.0)
	v.SetDefault("sampler.points_max_len", 0)
	v.SetDefault("sampler.batch_size", 100)

	v.SetDefault("cache.name", "de_cache")
	v.SetDefault("cache.version", "1")
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "/tmp")
	v.SetDefault("cache.bucket", "geo-cache")
	v.SetDefault("cache.ttl", time.Duration(0))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.request_topic", "sample-requests")
	v.SetDefault("kafka.group_id", "geosampler")
	v.SetDefault("kafka.location_topic", "sample-locations")

	v.SetDefault("reference.csv", "")
	v.SetDefault("reference.database_url", "")
	v.SetDefault("reference.table", "postal_codes")

	v.SetDefault("metrics.addr", ":2112")
	v.SetDefault("territories_file", "")
}

// New returns a viper instance with defaults and environment binding
// applied. paths are searched for config.yaml.
func New(paths ...string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads config.yaml from the working directory if present and
// unmarshals the result.
func Load() (*Config, error) {
	return FromViper(New("."))
}

func FromViper(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Println("No config.yaml found, using defaults and environment.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Sampler.MaxLevel < 1 {
		return fmt.Errorf("sampler.max_level must be at least 1, got %d", c.Sampler.MaxLevel)
	}
	if c.Sampler.ReferenceRadiusKm <= 0 {
		return fmt.Errorf("sampler.reference_radius_km must be positive, got %f", c.Sampler.ReferenceRadiusKm)
	}
	if c.Sampler.SampleRadiusKm <= 0 {
		return fmt.Errorf("sampler.sample_radius_km must be positive, got %f", c.Sampler.SampleRadiusKm)
	}
	if c.Sampler.PointsMaxLen < 0 {
		return fmt.Errorf("sampler.points_max_len must not be negative, got %d", c.Sampler.PointsMaxLen)
	}
	switch c.Cache.Backend {
	case "file", "s3", "redis", "memory":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
