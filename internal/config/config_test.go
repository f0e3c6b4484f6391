package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BCRYPT_COST", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, 8*time.Hour, cfg.JWT.TokenTTL())
	assert.Contains(t, cfg.Database.DSN(), "dbname=mqk")
}

func TestLoad_BcryptCostIsClamped(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	assert.Equal(t, 10, Load().Security.BcryptCost)

	t.Setenv("BCRYPT_COST", "12")
	assert.Equal(t, 12, Load().Security.BcryptCost)
}

func TestDSN_PrefersURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/mqk")
	cfg := Load()
	assert.Equal(t, "postgres://u:p@db:5432/mqk", cfg.Database.DSN())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	assert.Equal(t, 10*time.Minute, Load().Cache.TTL)
}
