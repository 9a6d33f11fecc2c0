package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewJWTConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_Expiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")

	tests := []struct {
		hours   string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"72", 72, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"not-a-number", 0, true},
	}
	for _, tt := range tests {
		t.Setenv("JWT_EXPIRATION_HOURS", tt.hours)
		cfg, err := NewJWTConfig()
		if tt.wantErr {
			assert.Error(t, err, "JWT_EXPIRATION_HOURS=%s", tt.hours)
			continue
		}
		require.NoError(t, err, "JWT_EXPIRATION_HOURS=%s", tt.hours)
		assert.Equal(t, tt.want, cfg.ExpirationHours)
	}
}
