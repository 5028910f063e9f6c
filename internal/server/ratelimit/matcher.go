package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks requests that never consume tokens
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for path and method, or nil to use the default.
// Exact paths win over prefixes; a prefix is any configured path ending in "/".
// Health checks and CORS preflights are unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || (method == http.MethodGet && path == "/health") {
		match := unlimited
		return &match
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if prefix == nil && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			prefix = c
		}
	}
	return prefix
}
