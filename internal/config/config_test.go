package config_test

import (
	"testing"
	"time"

	"wfmuser/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "/api/wfm/user", cfg.APIPath)
	assert.False(t, cfg.RabbitMQEnabled)
	assert.Equal(t, "wfm_user_requests", cfg.UserQueue)
	assert.Equal(t, "bcrypt", cfg.HashAlgorithm)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 500*time.Millisecond, cfg.BackoffBaseDelay)
	assert.Zero(t, cfg.BackoffMaxDelay)
	assert.Equal(t, []string{"password"}, cfg.AuthResponseExclusionList)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("API_PATH", "users")
	t.Setenv("RABBITMQ_ENABLED", "true")
	t.Setenv("HASH_ALGORITHM", "argon2id")
	t.Setenv("BACKOFF_BASE_DELAY", "250ms")
	t.Setenv("BACKOFF_MAX_DELAY", "30s")
	t.Setenv("AUTH_RESPONSE_EXCLUSION_LIST", "banner, avatar ,")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "/users", cfg.APIPath)
	assert.True(t, cfg.RabbitMQEnabled)
	assert.Equal(t, "argon2id", cfg.HashAlgorithm)
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.BackoffMaxDelay)
	assert.Equal(t, []string{"banner", "avatar"}, cfg.AuthResponseExclusionList)
}

func TestLoad_Invalid(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("BACKOFF_BASE_DELAY", "-1s")
	_, err := config.Load(v)
	assert.Error(t, err)

	v = viper.New()
	config.SetDefaults(v)
	v.Set("SEED_DATABASE_DRIVER", "sqlite")
	_, err = config.Load(v)
	assert.Error(t, err)
}
