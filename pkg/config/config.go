// Package config loads, validates, and saves cachekit configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/cachekit/cachekit/pkg/cache"
	cacheerrors "github.com/cachekit/cachekit/pkg/errors"
	"github.com/cachekit/cachekit/pkg/types"
)

// Duration wraps time.Duration so YAML files can use Go duration strings
// ("5m", "250ms"); yaml.v2 cannot decode those into time.Duration itself.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Configuration represents the complete cachekit configuration
type Configuration struct {
	Cache   CacheConfig   `yaml:"cache"`
	Tier    TierConfig    `yaml:"tier"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CacheConfig represents flat store settings
type CacheConfig struct {
	Capacity       int      `yaml:"capacity"`
	EvictionPolicy string   `yaml:"eviction_policy"`
	DefaultTTL     Duration `yaml:"default_ttl"`
	SweepInterval  Duration `yaml:"sweep_interval"`
}

// TierConfig represents optional two-level cache settings
type TierConfig struct {
	Enabled    bool `yaml:"enabled"`
	L1Capacity int  `yaml:"l1_capacity"`
	L2Capacity int  `yaml:"l2_capacity"`
}

// MetricsConfig represents metrics endpoint settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// NewDefault returns a configuration with sensible defaults
func NewDefault() *Configuration {
	return &Configuration{
		Cache: CacheConfig{
			Capacity:       10000,
			EvictionPolicy: string(types.PolicyLRU),
			DefaultTTL:     Duration(5 * time.Minute),
			SweepInterval:  Duration(time.Minute),
		},
		Tier: TierConfig{
			Enabled:    false,
			L1Capacity: 1000,
			L2Capacity: 10000,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Port:      8080,
			Path:      "/metrics",
			Namespace: "cachekit",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return cacheerrors.NewConfigLoad(filename, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return cacheerrors.NewConfigLoad(filename, err)
	}

	return nil
}

// LoadFromEnv loads configuration overrides from environment variables
func (c *Configuration) LoadFromEnv() {
	if val := os.Getenv("CACHEKIT_CAPACITY"); val != "" {
		if capacity, err := strconv.Atoi(val); err == nil {
			c.Cache.Capacity = capacity
		}
	}
	if val := os.Getenv("CACHEKIT_EVICTION_POLICY"); val != "" {
		c.Cache.EvictionPolicy = strings.ToLower(val)
	}
	if val := os.Getenv("CACHEKIT_DEFAULT_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Cache.DefaultTTL = Duration(duration)
		}
	}
	if val := os.Getenv("CACHEKIT_METRICS_ENABLED"); val != "" {
		c.Metrics.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("CACHEKIT_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Metrics.Port = port
		}
	}
}

// SaveToFile saves the configuration to a YAML file
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return cacheerrors.NewError(cacheerrors.ErrCodeConfigValidation, "failed to marshal config").WithCause(err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return cacheerrors.NewConfigLoad(filename, err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return cacheerrors.NewConfigLoad(filename, err)
	}

	return nil
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if c.Cache.Capacity <= 0 {
		return cacheerrors.NewInvalidConfig("cache.capacity must be greater than 0, got %d", c.Cache.Capacity)
	}
	if !types.PolicyKind(c.Cache.EvictionPolicy).Valid() {
		return cacheerrors.NewInvalidConfig("invalid cache.eviction_policy: %s", c.Cache.EvictionPolicy)
	}
	if c.Tier.Enabled {
		if c.Tier.L1Capacity <= 0 || c.Tier.L2Capacity <= 0 {
			return cacheerrors.NewInvalidConfig("tier capacities must be greater than 0, got l1=%d l2=%d",
				c.Tier.L1Capacity, c.Tier.L2Capacity)
		}
		if c.Tier.L1Capacity > c.Tier.L2Capacity {
			return cacheerrors.NewInvalidConfig("tier.l1_capacity %d exceeds tier.l2_capacity %d",
				c.Tier.L1Capacity, c.Tier.L2Capacity)
		}
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return cacheerrors.NewInvalidConfig("metrics.port must be a valid port, got %d", c.Metrics.Port)
	}
	return nil
}

// StoreConfig translates the cache section into a store configuration.
func (c *Configuration) StoreConfig() *cache.StoreConfig {
	return &cache.StoreConfig{
		Capacity:      c.Cache.Capacity,
		Policy:        types.PolicyKind(c.Cache.EvictionPolicy),
		DefaultTTL:    c.Cache.DefaultTTL.Std(),
		SweepInterval: c.Cache.SweepInterval.Std(),
	}
}

// TieredConfig translates the tier section into a tiered configuration.
// Both levels share the cache section's policy and TTL settings.
func (c *Configuration) TieredConfig() *cache.TieredConfig {
	base := c.StoreConfig()
	l1 := *base
	l1.Capacity = c.Tier.L1Capacity
	l2 := *base
	l2.Capacity = c.Tier.L2Capacity
	return &cache.TieredConfig{L1: l1, L2: l2}
}
