package server

import "github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// WalletResponse is the public view of a custody record. The private key
// never leaves the store.
type WalletResponse struct {
	UserID           string  `json:"user_id"`
	PublicKey        string  `json:"public_key"`
	BalanceSOL       float64 `json:"balance_sol"`
	FeeMicroLamports string  `json:"fee_micro_lamports,omitempty"`
}

func newWalletResponse(rec *wallet.Record) WalletResponse {
	return WalletResponse{
		UserID:           rec.UserID,
		PublicKey:        rec.PublicKey,
		BalanceSOL:       rec.BalanceSOL,
		FeeMicroLamports: rec.FeeMicroLamports,
	}
}

// KeyExportResponse carries the wallet's raw key material for migration
type KeyExportResponse struct {
	UserID        string `json:"user_id"`
	PrivateKeyHex string `json:"private_key_hex"`
}

// WalletCreateRequest creates a custody wallet for a user
type WalletCreateRequest struct {
	UserID string `json:"user_id"`
}

// FeeUpdateRequest sets the priority fee preference, microlamports per
// compute unit, as a decimal string
type FeeUpdateRequest struct {
	MicroLamports string `json:"micro_lamports"`
}

// WithdrawRequest moves SOL out of the custody wallet
type WithdrawRequest struct {
	Recipient string  `json:"recipient"`
	AmountSOL float64 `json:"amount_sol"`
}

// WithdrawResponse carries the transfer signature
type WithdrawResponse struct {
	Signature string `json:"signature"`
}

// SwapRequest triggers a single swap attempt
type SwapRequest struct {
	UserID      string  `json:"user_id"`
	InputMint   string  `json:"input_mint"`
	OutputMint  string  `json:"output_mint"`
	Amount      float64 `json:"amount"`
	SlippageBps uint16  `json:"slippage_bps"`
}

// SwapResponse is the terminal outcome of a swap attempt
type SwapResponse struct {
	State        string `json:"state"`
	FailStage    string `json:"fail_stage,omitempty"`
	Error        string `json:"error,omitempty"`
	BundleID     string `json:"bundle_id,omitempty"`
	Signature    string `json:"signature,omitempty"`
	ComputeUnits uint32 `json:"compute_units"`
	DurationMs   int64  `json:"duration_ms"`
}

// BuyTrendingRequest starts a paced buy batch over the trending feed
type BuyTrendingRequest struct {
	UserID    string  `json:"user_id"`
	Limit     int     `json:"limit"`
	AmountSOL float64 `json:"amount_sol"`
}

// SellHeldRequest starts a paced sell batch over the wallet's holdings
type SellHeldRequest struct {
	UserID string `json:"user_id"`
}

// BatchAcceptedResponse acknowledges a batch started in the background
type BatchAcceptedResponse struct {
	Accepted bool   `json:"accepted"`
	UserID   string `json:"user_id"`
}
