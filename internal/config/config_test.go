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
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorePostgres, cfg.Server.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.Server.StoreTimeout)
	assert.Equal(t, "USER", cfg.Keycloak.DefaultRole)
	assert.Equal(t, "membership.events", cfg.Messaging.Exchange)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("AUTH_ISSUER", "https://id.example/realms/membership")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Server.StoreBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.StoreTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://id.example/realms/membership", cfg.Auth.Issuer)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_InvalidStoreBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := Load()

	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "soon")

	_, err := Load()

	assert.Error(t, err)
}
