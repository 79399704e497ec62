package chain

import (
	"context"
	"encoding/base64"
	"fmt"

	projectrpc "github.com/aman-zulfiqar/solana-trend-trader/internal/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Client exposes the subset of Solana RPC operations the swap pipeline needs.
// It is a thin typed layer over the retrying JSON-RPC client.
type Client struct {
	rpc        *projectrpc.Client
	commitment string
	logger     *logrus.Logger
}

type ClientConfig struct {
	RPC        *projectrpc.Client
	Commitment string // e.g. "confirmed"
	Logger     *logrus.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.RPC == nil {
		return nil, fmt.Errorf("chain: rpc client is required")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		rpc:        cfg.RPC,
		commitment: cfg.Commitment,
		logger:     cfg.Logger,
	}, nil
}

// Blockhash is a recent ledger checkpoint anchoring a transaction's validity window.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// LatestBlockhash fetches the most recent blockhash at finalized commitment.
func (c *Client) LatestBlockhash(ctx context.Context) (Blockhash, error) {
	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		map[string]any{"commitment": "finalized"},
	}

	if err := c.rpc.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return Blockhash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return Blockhash{}, fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return Blockhash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}

	return Blockhash{
		Hash:                 hash,
		LastValidBlockHeight: resp.Result.Value.LastValidBlockHeight,
	}, nil
}

// BalanceLamports returns the lamport balance of an account.
func (c *Client) BalanceLamports(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	var resp struct {
		Result struct {
			Value uint64 `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		pubkey.String(),
		map[string]any{"commitment": c.commitment},
	}

	if err := c.rpc.Call(ctx, "getBalance", params, &resp); err != nil {
		return 0, fmt.Errorf("getBalance RPC failed: %w", err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getBalance error: %s", resp.Error.Message)
	}

	return resp.Result.Value, nil
}

// SendTransaction submits a signed transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (string, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	var resp struct {
		Result string               `json:"result"`
		Error  *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		map[string]any{
			"encoding":            "base64",
			"skipPreflight":       false,
			"preflightCommitment": "processed",
		},
	}

	if err := c.rpc.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d, message=%s",
			resp.Error.Code, resp.Error.Message)
	}

	return resp.Result, nil
}
