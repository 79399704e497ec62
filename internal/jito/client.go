package jito

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/gagliardetto/solana-go"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"github.com/sirupsen/logrus"
)

// Canonical block-engine tip accounts. A tip to any one of them qualifies
// the bundle for inclusion; the submitter should rotate to spread load.
var tipAccounts = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}

// Client submits transaction bundles to a Jito block engine.
type Client struct {
	rpc         *jitorpc.JitoJsonRpcClient
	tipLamports uint64
	logger      *logrus.Logger
}

type ClientConfig struct {
	BaseURL     string
	UUID        string // optional block-engine auth uuid
	TipLamports uint64
	Logger      *logrus.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("jito: base URL is required")
	}
	if cfg.TipLamports == 0 {
		cfg.TipLamports = 10_000
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		rpc:         jitorpc.NewJitoJsonRpcClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.UUID),
		tipLamports: cfg.TipLamports,
		logger:      cfg.Logger,
	}, nil
}

// TipLamports returns the configured per-bundle tip.
func (c *Client) TipLamports() uint64 {
	return c.tipLamports
}

// RandomTipAccount picks one of the canonical tip accounts.
func (c *Client) RandomTipAccount() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(tipAccounts[rand.Intn(len(tipAccounts))])
}

// SubmitBundle sends signed transactions as one atomic bundle and returns
// the relay-assigned bundle id.
func (c *Client) SubmitBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", fmt.Errorf("jito: bundle is empty")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	encoded := make([]string, len(txs))
	for i, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("jito: failed to serialize bundle transaction %d: %w", i, err)
		}
		// SendBundle declares base64 encoding on the wire.
		encoded[i] = base64.StdEncoding.EncodeToString(raw)
	}

	raw, err := c.rpc.SendBundle([][]string{encoded})
	if err != nil {
		return "", fmt.Errorf("jito: sendBundle failed: %w", err)
	}

	var bundleID string
	if err := json.Unmarshal(raw, &bundleID); err != nil {
		return "", fmt.Errorf("jito: unexpected sendBundle response %s: %w", string(raw), err)
	}
	if bundleID == "" {
		return "", fmt.Errorf("jito: relay returned empty bundle id")
	}

	c.logger.WithFields(logrus.Fields{
		"bundle_id": bundleID,
		"txs":       len(txs),
	}).Info("bundle submitted")

	return bundleID, nil
}

// BundleStatuses fetches the relay's view of previously submitted bundles.
func (c *Client) BundleStatuses(ctx context.Context, bundleIDs []string) (*jitorpc.BundleStatusResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	statuses, err := c.rpc.GetBundleStatuses(bundleIDs)
	if err != nil {
		return nil, fmt.Errorf("jito: getBundleStatuses failed: %w", err)
	}
	return statuses, nil
}
