// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/reelpick/internal/validation"
)

// Validate checks struct tags, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateDisplay()
}

func (c *Config) validateServer() error {
	if c.Server.WriteTimeout < c.Recommender.Timeout {
		return fmt.Errorf("server.write_timeout (%s) must be at least recommender.timeout (%s)",
			c.Server.WriteTimeout, c.Recommender.Timeout)
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("cors origin %q must start with http:// or https://", origin)
		}
	}
	return nil
}

func (c *Config) validateDisplay() error {
	p := strings.TrimSpace(c.Display.FallbackPoster)
	if p == "" {
		return nil
	}
	if !strings.HasPrefix(p, "http://") && !strings.HasPrefix(p, "https://") && !strings.HasPrefix(p, "/") {
		return fmt.Errorf("display.fallback_poster must be an absolute URL or path, got %q", p)
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
