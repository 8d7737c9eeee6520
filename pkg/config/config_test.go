package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.BaseURL)
	assert.Equal(t, "https://back-ecolink-3.onrender.com/api/v1", cfg.API.URL())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.ReadRetries)
	assert.Equal(t, time.Second, cfg.API.RetryBackoff)
	assert.Equal(t, 20*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, time.Minute, cfg.Session.CheckInterval)
	assert.Equal(t, "sqlite", cfg.Session.Store)
}

func TestFromViper_EnvSobrescribe(t *testing.T) {
	v := viper.New()
	v.Set("API_URL", "http://localhost:3000/")
	v.Set("API_PREFIX", "api/v2")
	v.Set("SESSION_TIMEOUT_MINUTES", "5")
	v.Set("SESSION_STORE", "memory")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/v2", cfg.API.URL())
	assert.Equal(t, 5*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
}

func TestFromViper_StoreInvalido(t *testing.T) {
	v := viper.New()
	v.Set("SESSION_STORE", "redis")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_EnteroMalformadoUsaDefecto(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "abc")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTP.Addr())
}
