package db

import (
	"testing"
	"time"

	"researchhub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolConfigFromFields(t *testing.T) {
	cfg, err := PoolConfig(config.DBConfig{
		Host:     "db.local",
		User:     "rh",
		Password: "p@ss word",
		Name:     "researchhub",
		MaxConns: 20,
		MinConns: 4,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), cfg.ConnConfig.Port)
	assert.Equal(t, "p@ss word", cfg.ConnConfig.Password)
	assert.Equal(t, "researchhub", cfg.ConnConfig.Database)
	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, int32(4), cfg.MinConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])
	assert.IsType(t, &SlowQueryTracer{}, cfg.ConnConfig.Tracer)
}

func TestPoolConfigPrefersURL(t *testing.T) {
	cfg, err := PoolConfig(config.DBConfig{
		URL:  "postgres://u:p@hosted.example.com:6543/app?sslmode=disable&application_name=migrator",
		Host: "ignored",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "hosted.example.com", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(6543), cfg.ConnConfig.Port)
	assert.Equal(t, "app", cfg.ConnConfig.Database)
	assert.Equal(t, "migrator", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(10), cfg.MaxConns)
}

func TestPoolConfigRejectsBadURL(t *testing.T) {
	_, err := PoolConfig(config.DBConfig{URL: "postgres://%zz"}, zap.NewNop())
	assert.Error(t, err)
}
