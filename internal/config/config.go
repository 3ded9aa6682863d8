// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package config loads Reelpick configuration.
//
// Values are layered, lowest priority first:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/reelpick/config.yaml)
//  3. Environment variables, with a .env file loaded into the environment first
//
// Example config.yaml:
//
//	recommender:
//	  url: http://localhost:8000
//	  timeout: 10s
//	display:
//	  fallback_poster: https://example.com/placeholder.png
//	logging:
//	  level: debug
//	  format: console
package config

import "time"

// Config is the complete Reelpick configuration.
type Config struct {
	Recommender RecommenderConfig `koanf:"recommender"`
	Display     DisplayConfig     `koanf:"display"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// RecommenderConfig describes the recommendation backend and how it is called.
type RecommenderConfig struct {
	// URL is the backend base URL, e.g. http://localhost:8000.
	URL string `koanf:"url" validate:"required,base_url"`

	// Timeout bounds each request. Default: 10s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit caps outbound requests per second. 0 disables pacing.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`

	// Burst is the limiter bucket size.
	Burst int `koanf:"burst" validate:"min=1"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the backend.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests" validate:"min=1"`

	// Interval is the closed-state counting window. 0 never resets counts.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests is the sample size needed before FailureRatio applies.
	MinRequests uint32 `koanf:"min_requests" validate:"min=1"`

	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	// FallbackPoster replaces a missing poster link. Empty leaves it blank.
	FallbackPoster string `koanf:"fallback_poster"`
}

// ServerConfig configures `reelpick serve`.
type ServerConfig struct {
	Host              string        `koanf:"host" validate:"required"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"log_level"`

	// Format is json or console. Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to every entry.
	Caller bool `koanf:"caller"`
}
