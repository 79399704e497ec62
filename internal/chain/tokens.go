package chain

import (
	"context"
	"fmt"

	projectrpc "github.com/aman-zulfiqar/solana-trend-trader/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// Holding is a non-empty SPL token position owned by a wallet.
type Holding struct {
	Mint     solana.PublicKey
	Balance  float64 // human units
	Decimals uint8
}

// TokenDecimals reads the decimal precision of a mint from its parsed
// account state.
func (c *Client) TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	var resp struct {
		Result struct {
			Value *struct {
				Data struct {
					Parsed struct {
						Info struct {
							Decimals uint8 `json:"decimals"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		mint.String(),
		map[string]any{
			"encoding":   "jsonParsed",
			"commitment": c.commitment,
		},
	}

	if err := c.rpc.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return 0, fmt.Errorf("getAccountInfo RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getAccountInfo error: %s", resp.Error.Message)
	}
	if resp.Result.Value == nil {
		return 0, fmt.Errorf("mint %s not found", mint)
	}

	return resp.Result.Value.Data.Parsed.Info.Decimals, nil
}

// Holdings lists the SPL token accounts owned by a wallet with a balance
// above the dust threshold.
func (c *Client) Holdings(ctx context.Context, owner solana.PublicKey, dustThreshold float64) ([]Holding, error) {
	var resp struct {
		Result struct {
			Value []struct {
				Account struct {
					Data struct {
						Parsed struct {
							Info struct {
								Mint        string                 `json:"mint"`
								TokenAmount projectrpc.TokenAmount `json:"tokenAmount"`
							} `json:"info"`
						} `json:"parsed"`
					} `json:"data"`
				} `json:"account"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		owner.String(),
		map[string]any{"programId": solana.TokenProgramID.String()},
		map[string]any{
			"encoding":   "jsonParsed",
			"commitment": c.commitment,
		},
	}

	if err := c.rpc.Call(ctx, "getTokenAccountsByOwner", params, &resp); err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner error: %s", resp.Error.Message)
	}

	var holdings []Holding
	for _, entry := range resp.Result.Value {
		info := entry.Account.Data.Parsed.Info
		if info.TokenAmount.UIAmount <= dustThreshold {
			continue
		}
		mint, err := solana.PublicKeyFromBase58(info.Mint)
		if err != nil {
			c.logger.WithError(err).WithField("mint", info.Mint).Warn("skipping token account with bad mint")
			continue
		}
		holdings = append(holdings, Holding{
			Mint:     mint,
			Balance:  info.TokenAmount.UIAmount,
			Decimals: uint8(info.TokenAmount.Decimals),
		})
	}

	return holdings, nil
}
