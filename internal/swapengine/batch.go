package swapengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SwapRunner is the single-swap contract the orchestrator drives. Satisfied
// by *Executor.
type SwapRunner interface {
	ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapOutcome, error)
}

// TrendingSource yields the mints for a trending buy batch, already ranked.
type TrendingSource interface {
	TrendingMints(ctx context.Context, limit int) ([]BatchItem, error)
}

// HoldingsSource yields the wallet's current non-dust token positions for a
// sell batch.
type HoldingsSource interface {
	HeldItems(ctx context.Context, userID string) ([]BatchItem, error)
}

// Orchestrator fans a batch of swap items through the runner. Starts are
// paced: the first item starts immediately, each subsequent start waits for
// the pacing interval. Items run concurrently once started, and one item's
// failure never stops the others.
type Orchestrator struct {
	runner   SwapRunner
	trending TrendingSource
	holdings HoldingsSource

	pacing      time.Duration
	slippageBps uint16

	logger *logrus.Logger
}

type OrchestratorConfig struct {
	Runner   SwapRunner
	Trending TrendingSource
	Holdings HoldingsSource

	Pacing      time.Duration
	SlippageBps uint16

	Logger *logrus.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("swapengine: swap runner is required")
	}
	if cfg.Pacing <= 0 {
		return nil, fmt.Errorf("swapengine: pacing must be positive, got %v", cfg.Pacing)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.SlippageBps == 0 {
		cfg.SlippageBps = 100
	}

	return &Orchestrator{
		runner:      cfg.Runner,
		trending:    cfg.Trending,
		holdings:    cfg.Holdings,
		pacing:      cfg.Pacing,
		slippageBps: cfg.SlippageBps,
		logger:      cfg.Logger,
	}, nil
}

// BuyTrending buys solAmount worth of each trending mint for the user's
// wallet, SOL as the input leg.
func (o *Orchestrator) BuyTrending(ctx context.Context, userID string, limit int, solAmount float64) (*BatchResult, error) {
	if o.trending == nil {
		return nil, fmt.Errorf("swapengine: no trending source configured")
	}
	if solAmount <= 0 {
		return nil, fmt.Errorf("swapengine: buy amount must be > 0, got %v", solAmount)
	}

	items, err := o.trending.TrendingMints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending tokens: %w", err)
	}
	for i := range items {
		items[i].Index = i
		items[i].Amount = solAmount
	}

	return o.run(ctx, items, func(item BatchItem) SwapRequest {
		return SwapRequest{
			UserID:      userID,
			InputMint:   WrappedSOLMint,
			OutputMint:  item.Mint,
			Amount:      item.Amount,
			SlippageBps: o.slippageBps,
		}
	}), nil
}

// SellHeld sells every non-dust token the wallet holds back into SOL. Each
// item's amount is the full held balance of that mint.
func (o *Orchestrator) SellHeld(ctx context.Context, userID string) (*BatchResult, error) {
	if o.holdings == nil {
		return nil, fmt.Errorf("swapengine: no holdings source configured")
	}

	items, err := o.holdings.HeldItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate holdings: %w", err)
	}
	for i := range items {
		items[i].Index = i
	}

	return o.run(ctx, items, func(item BatchItem) SwapRequest {
		return SwapRequest{
			UserID:      userID,
			InputMint:   item.Mint,
			OutputMint:  WrappedSOLMint,
			Amount:      item.Amount,
			SlippageBps: o.slippageBps,
		}
	}), nil
}

// Run executes an explicit item list. Exported for callers that build their
// own batches.
func (o *Orchestrator) Run(ctx context.Context, userID string, items []BatchItem, buy bool) *BatchResult {
	return o.run(ctx, items, func(item BatchItem) SwapRequest {
		req := SwapRequest{UserID: userID, Amount: item.Amount, SlippageBps: o.slippageBps}
		if buy {
			req.InputMint, req.OutputMint = WrappedSOLMint, item.Mint
		} else {
			req.InputMint, req.OutputMint = item.Mint, WrappedSOLMint
		}
		return req
	})
}

func (o *Orchestrator) run(ctx context.Context, items []BatchItem, makeReq func(BatchItem) SwapRequest) *BatchResult {
	result := &BatchResult{Items: make([]BatchItemResult, len(items))}
	if len(items) == 0 {
		return result
	}

	// Burst 1 with a full initial bucket: the first start is immediate,
	// later starts are spaced by the pacing interval. Completion times are
	// free to overlap.
	limiter := rate.NewLimiter(rate.Every(o.pacing), 1)

	var wg sync.WaitGroup
	for i, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			// Context gone: every unstarted item gets a terminal failure.
			for j := i; j < len(items); j++ {
				result.Items[j] = BatchItemResult{
					Item: items[j],
					Err:  fmt.Errorf("batch canceled before start: %w", err),
					Outcome: &SwapOutcome{
						State:     StateFailed,
						FailStage: "batch",
						Err:       err,
					},
				}
			}
			break
		}

		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			started := time.Now()
			outcome, err := o.runner.ExecuteSwap(ctx, makeReq(item))
			result.Items[i] = BatchItemResult{
				Item:      item,
				Outcome:   outcome,
				Err:       err,
				StartedAt: started,
			}
		}(i, item)
	}
	wg.Wait()

	for _, r := range result.Items {
		if r.Outcome.Succeeded() {
			result.Submitted++
		} else {
			result.Failed++
		}
	}

	o.logger.WithFields(logrus.Fields{
		"items":     len(items),
		"submitted": result.Submitted,
		"failed":    result.Failed,
	}).Info("batch completed")

	return result
}
