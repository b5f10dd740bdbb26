package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds token verification settings
type Config struct {
	Issuer      string        `env:"AUTH_ISSUER" envDefault:"http://localhost:8080/realms/membership"`
	JWKSURL     string        `env:"AUTH_JWKS_URL" envDefault:"http://localhost:8080/realms/membership/protocol/openid-connect/certs"`
	Audience    string        `env:"AUTH_AUD"`
	JWKSRefresh time.Duration `env:"AUTH_JWKS_REFRESH" envDefault:"15m"`
}

// LoadConfig reads AUTH_ISSUER, AUTH_JWKS_URL, AUTH_AUD and AUTH_JWKS_REFRESH.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
