// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads the shapecount configuration from an optional YAML
// file with SHAPECOUNT_* environment overrides on top.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "shapecount.yml"

// EnvPrefix marks environment overrides. SHAPECOUNT_SERVER_PORT sets
// server.port; the first underscore after the prefix separates the section.
const EnvPrefix = "SHAPECOUNT_"

// Config is the top-level configuration, corresponding to shapecount.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Storage    StorageConfig    `yaml:"storage" koanf:"storage"`
	Valkey     ValkeyConfig     `yaml:"valkey" koanf:"valkey"`
	Postgres   PostgresConfig   `yaml:"postgres" koanf:"postgres"`
	Classifier ClassifierConfig `yaml:"classifier" koanf:"classifier"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit" koanf:"ratelimit"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port string `yaml:"port" koanf:"port"`
	Env  string `yaml:"env" koanf:"env"` // "development", "production", "testing"
}

// StorageConfig selects where annotated result images are written. When the
// S3 endpoint and keys are set, S3 wins over the local directory.
type StorageConfig struct {
	Dir             string        `yaml:"dir" koanf:"dir"`
	S3Endpoint      string        `yaml:"s3_endpoint" koanf:"s3_endpoint"`
	S3Region        string        `yaml:"s3_region" koanf:"s3_region"`
	S3AccessKey     string        `yaml:"s3_access_key" koanf:"s3_access_key"`
	S3SecretKey     string        `yaml:"s3_secret_key" koanf:"s3_secret_key"`
	S3Bucket        string        `yaml:"s3_bucket" koanf:"s3_bucket"`
	S3PublicURL     string        `yaml:"s3_public_url" koanf:"s3_public_url"`
	JanitorTTL      time.Duration `yaml:"janitor_ttl" koanf:"janitor_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval" koanf:"janitor_interval"`
}

// UseS3 reports whether S3 credentials are configured.
func (s StorageConfig) UseS3() bool {
	return s.S3Endpoint != "" && s.S3AccessKey != "" && s.S3SecretKey != ""
}

// ValkeyConfig holds the cache connection. An empty host disables caching.
type ValkeyConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     string `yaml:"port" koanf:"port"`
	Password string `yaml:"password" koanf:"password"`
}

// PostgresConfig holds the solve history database. An empty DSN disables it.
type PostgresConfig struct {
	DSN string `yaml:"dsn" koanf:"dsn"`
}

// ClassifierConfig picks the image classifier. RemoteURL takes precedence
// over GeminiKey.
type ClassifierConfig struct {
	RemoteURL   string        `yaml:"remote_url" koanf:"remote_url"`
	GeminiKey   string        `yaml:"gemini_key" koanf:"gemini_key"`
	GeminiModel string        `yaml:"gemini_model" koanf:"gemini_model"`
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
}

// Configured reports whether any classifier backend is set.
func (c ClassifierConfig) Configured() bool {
	return c.RemoteURL != "" || c.GeminiKey != ""
}

// RateLimitConfig throttles the upload endpoints per client IP. A zero
// limit disables throttling.
type RateLimitConfig struct {
	Limit  int           `yaml:"limit" koanf:"limit"`
	Window time.Duration `yaml:"window" koanf:"window"`
}

// DefaultConfig returns the development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Env:  "development",
		},
		Storage: StorageConfig{
			Dir:             "generated",
			S3Region:        "us-east-1",
			JanitorTTL:      24 * time.Hour,
			JanitorInterval: time.Hour,
		},
		Valkey: ValkeyConfig{
			Port: "6379",
		},
		Classifier: ClassifierConfig{
			GeminiModel: "gemini-2.0-flash",
			Timeout:     60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Limit:  30,
			Window: time.Minute,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SHAPECOUNT_*). A missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps SHAPECOUNT_CLASSIFIER_GEMINI_KEY to classifier.gemini_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validEnvs = map[string]bool{
	"development": true,
	"production":  true,
	"testing":     true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if !validEnvs[c.Server.Env] {
		return fmt.Errorf("invalid server.env %q: must be one of development, production, testing", c.Server.Env)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if !c.Storage.UseS3() && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required when S3 is not configured")
	}
	if c.Storage.UseS3() && c.Storage.S3Bucket == "" {
		return fmt.Errorf("storage.s3_bucket is required when S3 is configured")
	}
	if c.Storage.JanitorTTL < 0 || c.Storage.JanitorInterval < 0 {
		return fmt.Errorf("storage janitor durations must be non-negative")
	}
	if c.Classifier.Timeout < 0 {
		return fmt.Errorf("classifier.timeout must be non-negative")
	}
	if c.RateLimit.Limit < 0 {
		return fmt.Errorf("ratelimit.limit must be non-negative")
	}
	if c.RateLimit.Limit > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive when a limit is set")
	}

	if c.Server.Env == "production" && !c.Classifier.Configured() {
		return fmt.Errorf("classifier.remote_url or classifier.gemini_key must be set in production")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Server.Env == "development"
}
