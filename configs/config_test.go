package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_ALGORITHM", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("REDIS_HOST", "")

	cfg := LoadConfig()

	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "", cfg.RedisAddr())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("DEBUG", "true")

	cfg := LoadConfig()

	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.True(t, cfg.Debug)
}

func TestValidate(t *testing.T) {
	base := Config{
		JWTSecretKey:             "k",
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 30,
		HashCost:                 12,
		HashWorkers:              2,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"missing secret":   func(c *Config) { c.JWTSecretKey = "" },
		"rsa algorithm":    func(c *Config) { c.JWTAlgorithm = "RS256" },
		"zero ttl":         func(c *Config) { c.AccessTokenExpireMinutes = 0 },
		"weak cost":        func(c *Config) { c.HashCost = 4 },
		"cost above max":   func(c *Config) { c.HashCost = 32 },
		"no workers":       func(c *Config) { c.HashWorkers = 0 },
		"half admin creds": func(c *Config) { c.AdminEmail = "root@example.com" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	debug := base
	debug.Debug = true
	debug.HashCost = 4
	assert.NoError(t, debug.Validate())

	debug.HashCost = 32
	assert.Error(t, debug.Validate())
}
