package swapengine

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/discovery"
	"github.com/gagliardetto/solana-go"
)

// BirdEyeTrendingSource adapts the BirdEye trending feed into batch items.
// Mints that fail to parse are dropped rather than failing the batch.
type BirdEyeTrendingSource struct {
	Client *discovery.BirdEyeClient
}

func (s *BirdEyeTrendingSource) TrendingMints(ctx context.Context, limit int) ([]BatchItem, error) {
	tokens, err := s.Client.TrendingTokens(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(tokens))
	for _, t := range tokens {
		mint, err := solana.PublicKeyFromBase58(t.Address)
		if err != nil || mint.Equals(WrappedSOLMint) {
			continue
		}
		items = append(items, BatchItem{Mint: mint})
	}
	return items, nil
}

// WalletHoldingsSource enumerates a wallet's non-dust token positions for a
// sell batch. Each item carries the full held balance.
type WalletHoldingsSource struct {
	Store         WalletStore
	Chain         ChainService
	DustThreshold float64
}

func (s *WalletHoldingsSource) HeldItems(ctx context.Context, userID string) ([]BatchItem, error) {
	rec, err := s.Store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	owner, err := solana.PublicKeyFromBase58(rec.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wallet %s has invalid public key: %w", userID, err)
	}

	holdings, err := s.Chain.Holdings(ctx, owner, s.DustThreshold)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, 0, len(holdings))
	for _, h := range holdings {
		if h.Mint.Equals(WrappedSOLMint) {
			continue
		}
		items = append(items, BatchItem{Mint: h.Mint, Amount: h.Balance})
	}
	return items, nil
}
