package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cart", cfg.Cart.StorageKey)
	assert.Equal(t, "redis", cfg.Cart.Storage)
	assert.Equal(t, time.Duration(0), cfg.Cart.EntryExpiry)
	assert.Equal(t, "session_id", cfg.Cart.SessionCookie)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_STORAGE", "memory")
	t.Setenv("CART_STORAGE_KEY", "ruby-cart")
	t.Setenv("CART_SESSION_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UsesRedis())
	assert.Equal(t, "ruby-cart", cfg.Cart.StorageKey)
	assert.Equal(t, 5*time.Minute, cfg.Cart.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown storage", "CART_STORAGE", "cookie"},
		{"short secret", "JWT_SECRET", "too-short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
