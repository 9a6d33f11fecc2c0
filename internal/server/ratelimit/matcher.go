package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path patterns may contain {param} segments which match any single path
// segment (e.g., "/briefs/{id}/generate" matches "/briefs/123/generate").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Special case: health check endpoint is unlimited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{
			Limit:  0, // Unlimited
			Window: 0,
			Burst:  0,
		}
	}

	// Try exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Try pattern match for paths with {param} segments
	for i := range configs {
		config := &configs[i]
		if config.Method == method && matchPattern(config.Path, path) {
			return config
		}
	}

	// No match found
	return nil
}

// matchPattern reports whether path matches pattern segment by segment,
// treating {param} segments as single-segment wildcards.
func matchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, "{") {
		return false
	}
	patternSegments := strings.Split(pattern, "/")
	pathSegments := strings.Split(path, "/")
	if len(patternSegments) != len(pathSegments) {
		return false
	}
	for i, seg := range patternSegments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if pathSegments[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegments[i] {
			return false
		}
	}
	return true
}
