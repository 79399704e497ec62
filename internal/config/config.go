package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Chain RPC settings
	RPCUrl     string
	Commitment string

	// Jupiter quote/instruction API
	JupiterBaseURL string
	JupiterAPIKey  string

	// Jito block engine
	JitoBaseURL     string
	JitoTipLamports uint64

	// BirdEye discovery feed
	BirdEyeBaseURL string
	BirdEyeAPIKey  string
	TrendingLimit  int

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Batch pacing between per-token pipeline starts
	BatchPacing time.Duration

	// Dust threshold below which held tokens are not sold (human units)
	DustThreshold float64

	// Notifier webhook (optional; falls back to log-only delivery)
	NotifyWebhookURL string

	// API server
	APIAddr string
	APIKey  string
	DevMode bool
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:     getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		Commitment: getEnv("SOLANA_COMMITMENT", "confirmed"),

		// Jupiter
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", "https://api.jup.ag/swap/v1"),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// Jito
		JitoBaseURL:     getEnv("JITO_BASE_URL", "https://mainnet.block-engine.jito.wtf/api/v1"),
		JitoTipLamports: getUint64Env("JITO_TIP_LAMPORTS", 10_000),

		// BirdEye
		BirdEyeBaseURL: getEnv("BIRDEYE_BASE_URL", "https://public-api.birdeye.so"),
		BirdEyeAPIKey:  getEnv("BIRDEYE_API_KEY", ""),
		TrendingLimit:  getIntEnv("TRENDING_LIMIT", 5),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solana"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// Batch
		BatchPacing:   getDurationEnv("BATCH_PACING", 30*time.Second),
		DustThreshold: getFloatEnv("DUST_THRESHOLD", 0.001),

		// Notifier
		NotifyWebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),

		// API server
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),
	}
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.JupiterBaseURL == "" {
		return fmt.Errorf("JUPITER_BASE_URL is required")
	}
	if c.JitoBaseURL == "" {
		return fmt.Errorf("JITO_BASE_URL is required")
	}
	if c.BatchPacing < 0 {
		return fmt.Errorf("BATCH_PACING must not be negative")
	}
	if c.TrendingLimit < 1 {
		return fmt.Errorf("TRENDING_LIMIT must be >= 1")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
