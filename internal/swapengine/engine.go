package swapengine

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/cache"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/chain"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/config"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/discovery"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jito"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/notify"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/rpc"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Engine bundles the full trading stack: wallet custody, quote and
// instruction services, the swap executor, and the batch orchestrator.
type Engine struct {
	Wallets      *wallet.Service
	WalletStore  *wallet.Store
	Executor     *Executor
	Orchestrator *Orchestrator
	Relay        *jito.Client
	Discovery    *discovery.BirdEyeClient
	Cache        *cache.RedisCache
	Attempts     *cache.ClickHouseStore

	redisClient *redis.Client
	logger      *logrus.Logger
}

// NewEngine wires the stack from configuration. Redis is required (wallet
// custody lives there); ClickHouse and the webhook notifier are optional.
func NewEngine(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	// 1. Chain RPC
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	chainClient, err := chain.NewClient(chain.ClientConfig{
		RPC:        rpcClient,
		Commitment: cfg.Commitment,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chain client: %w", err)
	}

	// 2. Redis: wallet store plus the recent-attempt cache on one client
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: 0})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	walletStore, err := wallet.NewStore(redisClient)
	if err != nil {
		return nil, err
	}
	attemptCache, err := cache.NewRedisCacheFromClient(redisClient)
	if err != nil {
		return nil, err
	}

	// 3. ClickHouse (optional)
	var attemptStore *cache.ClickHouseStore
	if cfg.ClickHouseAddr != "" {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		attemptStore = ch
	}

	// 4. External services
	jupiterClient := jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey)
	jitoClient, err := jito.NewClient(jito.ClientConfig{
		BaseURL:     cfg.JitoBaseURL,
		TipLamports: cfg.JitoTipLamports,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	birdeyeClient := discovery.NewBirdEyeClient(cfg.BirdEyeBaseURL, cfg.BirdEyeAPIKey)

	var notifier notify.Notifier = &notify.LogNotifier{Logger: logger}
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}

	// 5. Wallet lifecycle service
	walletSvc, err := wallet.NewService(walletStore, chainClient, logger)
	if err != nil {
		return nil, err
	}

	// 6. Executor and orchestrator
	deps := ExecutorDeps{
		Store:        walletStore,
		Quotes:       jupiterClient,
		Instructions: jupiterClient,
		Chain:        chainClient,
		Relay:        jitoClient,
		Notifier:     notifier,
		Cache:        attemptCache,
		Logger:       logger,
	}
	if attemptStore != nil {
		deps.Attempts = attemptStore
	}
	executor, err := NewExecutor(deps)
	if err != nil {
		return nil, err
	}

	orchestrator, err := NewOrchestrator(OrchestratorConfig{
		Runner:   executor,
		Trending: &BirdEyeTrendingSource{Client: birdeyeClient},
		Holdings: &WalletHoldingsSource{
			Store:         walletStore,
			Chain:         chainClient,
			DustThreshold: cfg.DustThreshold,
		},
		Pacing: cfg.BatchPacing,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		Wallets:      walletSvc,
		WalletStore:  walletStore,
		Executor:     executor,
		Orchestrator: orchestrator,
		Relay:        jitoClient,
		Discovery:    birdeyeClient,
		Cache:        attemptCache,
		Attempts:     attemptStore,
		redisClient:  redisClient,
		logger:       logger,
	}, nil
}

// Close releases storage connections. Safe to call once at shutdown.
func (e *Engine) Close() error {
	var firstErr error
	if e.Attempts != nil {
		if err := e.Attempts.Close(); err != nil {
			firstErr = err
		}
	}
	if e.redisClient != nil {
		if err := e.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
