package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCUrl)
	assert.Equal(t, "https://api.jup.ag/swap/v1", cfg.JupiterBaseURL)
	assert.Equal(t, uint64(10_000), cfg.JitoTipLamports)
	assert.Equal(t, 30*time.Second, cfg.BatchPacing)
	assert.Equal(t, 0.001, cfg.DustThreshold)
	assert.Equal(t, 5, cfg.TrendingLimit)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "http://localhost:8899")
	t.Setenv("BATCH_PACING", "5s")
	t.Setenv("JITO_TIP_LAMPORTS", "50000")
	t.Setenv("TRENDING_LIMIT", "10")
	t.Setenv("DEV_MODE", "true")

	cfg := Load()

	assert.Equal(t, "http://localhost:8899", cfg.RPCUrl)
	assert.Equal(t, 5*time.Second, cfg.BatchPacing)
	assert.Equal(t, uint64(50_000), cfg.JitoTipLamports)
	assert.Equal(t, 10, cfg.TrendingLimit)
	assert.True(t, cfg.DevMode)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("BATCH_PACING", "not-a-duration")
	t.Setenv("JITO_TIP_LAMPORTS", "-5")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.BatchPacing)
	assert.Equal(t, uint64(10_000), cfg.JitoTipLamports)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.RPCUrl = ""
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.TrendingLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.BatchPacing = -time.Second
	assert.Error(t, cfg.Validate())
}
