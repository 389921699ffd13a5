package ratelimit

import (
	"time"

	"github.com/jonathan/matching-guru/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern: exact, "*" segment wildcard, or "/"-terminated prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds the limiter configuration from the service config.
func NewConfig(cfg config.RateLimitConfig) *Config {
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    cfg.DefaultLimit,
		DefaultWindow:   cfg.DefaultWindow,
		CleanupInterval: cfg.CleanupInterval,
		Whitelist:       toSet(cfg.Whitelist),
		Blacklist:       toSet(cfg.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: participant creation and session bootstrap hit the upstream API
		{Path: "/intake/sessions/*/submit", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/intake/sessions", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Tier 2: wizard navigation and answer edits
		{Path: "/intake/sessions/", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/intake/sessions/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/intake/sessions/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: dashboard proxies one upstream call per request
		{Path: "/dashboard", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},

		// Everything else falls back to the default limit; /health and /metrics are unlimited.
	}
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, item := range list {
		if item != "" {
			result[item] = true
		}
	}
	return result
}
