// Package bootstrap resolves the server's startup configuration from
// the environment variables of spec.md §6.3, with an optional local
// overrides file for instance-specific tuning.
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the fully-resolved startup configuration for
// cmd/vortex-config.
type Config struct {
	Host string
	Port string

	GitURI          string
	GitLocalPath    string
	GitDefaultLabel string
	GitSearchPaths  []string
	GitUsername     string
	GitPassword     string

	CacheEnabled     bool
	CacheTTLSeconds  int
	CacheMaxCapacity int
}

// Load resolves a Config from the environment, applying the defaults of
// spec.md §6.3 and validating GIT_URI / the GIT_USERNAME+GIT_PASSWORD
// pairing.
func Load() (*Config, error) {
	cfg := &Config{
		Host:             envOr("VORTEX_HOST", "0.0.0.0"),
		Port:             envOr("VORTEX_PORT", "8888"),
		GitURI:           os.Getenv("GIT_URI"),
		GitLocalPath:     envOr("GIT_LOCAL_PATH", "/var/lib/vortex/repos"),
		GitDefaultLabel:  envOr("GIT_DEFAULT_LABEL", "main"),
		GitSearchPaths:   splitNonEmpty(os.Getenv("GIT_SEARCH_PATHS"), ","),
		GitUsername:      os.Getenv("GIT_USERNAME"),
		GitPassword:      os.Getenv("GIT_PASSWORD"),
		CacheEnabled:     true,
		CacheTTLSeconds:  300,
		CacheMaxCapacity: 10000,
	}

	if v, ok := os.LookupEnv("VORTEX_CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: VORTEX_CACHE_ENABLED: %w", err)
		}
		cfg.CacheEnabled = b
	}
	if v, ok := os.LookupEnv("VORTEX_CACHE_TTL_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: VORTEX_CACHE_TTL_SECONDS: %w", err)
		}
		cfg.CacheTTLSeconds = n
	}
	if v, ok := os.LookupEnv("VORTEX_CACHE_MAX_CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: VORTEX_CACHE_MAX_CAPACITY: %w", err)
		}
		cfg.CacheMaxCapacity = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GitURI == "" {
		return fmt.Errorf("bootstrap: GIT_URI is required")
	}
	if (c.GitUsername == "") != (c.GitPassword == "") {
		return fmt.Errorf("bootstrap: GIT_USERNAME and GIT_PASSWORD must both be set or both be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
