package ratelimit

import (
	"testing"
	"time"
)

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/briefs", Method: "POST", Limit: 100, Window: time.Minute},
		{Path: "/briefs/{id}/generate", Method: "POST", Limit: 10, Window: time.Hour},
		{Path: "/briefs/{id}/assumptions/{aid}", Method: "DELETE", Limit: 100, Window: time.Minute},
	}

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"exact match", "/briefs", "POST", 100, false},
		{"single param", "/briefs/abc123/generate", "POST", 10, false},
		{"two params", "/briefs/abc/assumptions/xyz", "DELETE", 100, false},
		{"method mismatch", "/briefs/abc123/generate", "GET", 0, true},
		{"extra segment", "/briefs/abc123/generate/more", "POST", 0, true},
		{"empty param segment", "/briefs//generate", "POST", 0, true},
		{"unknown path", "/nothing", "GET", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a match, got nil")
			}
			if got.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, got.Limit)
			}
		})
	}
}

func TestMatchEndpoint_HealthUnlimited(t *testing.T) {
	got := MatchEndpoint("/health", "GET", nil)
	if got == nil {
		t.Fatal("expected health config, got nil")
	}
	if got.Limit != 0 {
		t.Errorf("expected unlimited health endpoint, got limit %d", got.Limit)
	}
}
