package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry_DayShorthand(t *testing.T) {
	d, err := ParseExpiry("1d")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	d, err = ParseExpiry("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)
}

func TestParseExpiry_GoDurations(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"90s": 90 * time.Second,
		"10m": 10 * time.Minute,
		"24h": 24 * time.Hour,
	} {
		d, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d, in)
	}
}

func TestParseExpiry_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1d", "0d", "-5m", "1w"} {
		_, err := ParseExpiry(in)
		assert.Error(t, err, in)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, "users", cfg.DynamoTables.Users)
}

func TestLoad_SessionTTLFromEnv(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "2d")
	cfg := Load()
	assert.Equal(t, 48*time.Hour, cfg.SessionTokenTTL)
}
