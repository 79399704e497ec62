package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/discovery"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jito"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/storage"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/swapengine"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Wallets      *wallet.Service          // Wallet lifecycle operations
	Executor     *swapengine.Executor     // Single-swap pipeline
	Orchestrator *swapengine.Orchestrator // Paced batch runs
	Cache        storage.AttemptCache     // Redis-backed recent attempts
	Jupiter      *jupiter.Client          // Quote passthrough (optional)
	Relay        *jito.Client             // Bundle status lookups (optional)
	Discovery    *discovery.BirdEyeClient // Token market overviews (optional)
	DevMode      bool                     // Enable detailed error responses in development
	Logger       *logrus.Logger           // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// WalletCreate generates a fresh custody keypair for a user
// Returns 409 if the user already has a wallet
func (h *Handlers) WalletCreate(c echo.Context) error {
	var req WalletCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := wallet.ValidateUserID(req.UserID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Wallets.Create(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, wallet.ErrAlreadyExists) {
			return h.err(c, http.StatusConflict, "wallet already exists", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to create wallet", nil)
	}
	return c.JSON(http.StatusCreated, newWalletResponse(rec))
}

// WalletGet returns the custody record with a freshly read on-chain balance
// Returns 404 if the user has no wallet
func (h *Handlers) WalletGet(c echo.Context) error {
	userID := c.Param("user_id")
	if err := wallet.ValidateUserID(userID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rec, err := h.Wallets.Refresh(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "wallet not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to refresh wallet", nil)
	}
	return c.JSON(http.StatusOK, newWalletResponse(rec))
}

// WalletSetFee stores the user's priority-fee preference
func (h *Handlers) WalletSetFee(c echo.Context) error {
	userID := c.Param("user_id")
	if err := wallet.ValidateUserID(userID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}
	var req FeeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Wallets.SetFee(ctx, userID, strings.TrimSpace(req.MicroLamports))
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "wallet not found", nil)
		}
		return h.err(c, http.StatusBadRequest, "invalid fee", map[string]any{"micro_lamports": err.Error()})
	}
	return c.JSON(http.StatusOK, newWalletResponse(rec))
}

// WalletExportKey returns the custody wallet's raw key material
// This is the one place the key leaves the store; it exists so users can
// migrate to self-custody
func (h *Handlers) WalletExportKey(c echo.Context) error {
	userID := c.Param("user_id")
	if err := wallet.ValidateUserID(userID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	key, err := h.Wallets.ExportKey(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "wallet not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to export key", nil)
	}
	return c.JSON(http.StatusOK, KeyExportResponse{UserID: userID, PrivateKeyHex: key})
}

// WalletWithdraw moves SOL from the custody wallet to an external address
func (h *Handlers) WalletWithdraw(c echo.Context) error {
	userID := c.Param("user_id")
	if err := wallet.ValidateUserID(userID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}
	var req WithdrawRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	sig, err := h.Wallets.Withdraw(ctx, userID, strings.TrimSpace(req.Recipient), req.AmountSOL)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "wallet not found", nil)
		}
		return h.err(c, http.StatusBadRequest, "withdraw failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, WithdrawResponse{Signature: sig})
}

// Swap runs a single swap attempt to its terminal state
// The outcome is returned whether it succeeded or failed; transport-level
// errors are distinguished from pipeline failures
func (h *Handlers) Swap(c echo.Context) error {
	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := wallet.ValidateUserID(req.UserID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}
	inputMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.InputMint))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid input mint", map[string]any{"input_mint": "must be base58"})
	}
	outputMint, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.OutputMint))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid output mint", map[string]any{"output_mint": "must be base58"})
	}
	if req.Amount <= 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be > 0"})
	}
	slippage := req.SlippageBps
	if slippage == 0 {
		slippage = 100
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	outcome, _ := h.Executor.ExecuteSwap(ctx, swapengine.SwapRequest{
		UserID:      req.UserID,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      req.Amount,
		SlippageBps: slippage,
	})

	resp := SwapResponse{
		State:        outcome.State,
		FailStage:    outcome.FailStage,
		BundleID:     outcome.BundleID,
		Signature:    outcome.Signature,
		ComputeUnits: outcome.ComputeUnits,
		DurationMs:   outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}

	status := http.StatusOK
	if !outcome.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, resp)
}

// BuyTrending starts a paced buy batch over the trending feed
// The batch runs in the background; per-item outcomes are delivered through
// the notifier and the attempt sinks
func (h *Handlers) BuyTrending(c echo.Context) error {
	var req BuyTrendingRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := wallet.ValidateUserID(req.UserID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}
	if req.AmountSOL <= 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount_sol": "must be > 0"})
	}
	if req.Limit < 1 {
		req.Limit = 5
	}

	go func() {
		if _, err := h.Orchestrator.BuyTrending(context.Background(), req.UserID, req.Limit, req.AmountSOL); err != nil {
			h.Logger.WithError(err).WithField("user_id", req.UserID).Error("buy batch failed to start")
		}
	}()

	return c.JSON(http.StatusAccepted, BatchAcceptedResponse{Accepted: true, UserID: req.UserID})
}

// SellHeld starts a paced sell batch over the wallet's non-dust holdings
func (h *Handlers) SellHeld(c echo.Context) error {
	var req SellHeldRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := wallet.ValidateUserID(req.UserID); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid user id", map[string]any{"user_id": "invalid format"})
	}

	go func() {
		if _, err := h.Orchestrator.SellHeld(context.Background(), req.UserID); err != nil {
			h.Logger.WithError(err).WithField("user_id", req.UserID).Error("sell batch failed to start")
		}
	}()

	return c.JSON(http.StatusAccepted, BatchAcceptedResponse{Accepted: true, UserID: req.UserID})
}

// BundleStatus returns the relay's view of a previously submitted bundle
func (h *Handlers) BundleStatus(c echo.Context) error {
	if h.Relay == nil {
		return h.err(c, http.StatusBadRequest, "bundle relay is not configured", nil)
	}
	bundleID := strings.TrimSpace(c.Param("bundle_id"))
	if bundleID == "" {
		return h.err(c, http.StatusBadRequest, "invalid bundle id", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	statuses, err := h.Relay.BundleStatuses(ctx, []string{bundleID})
	if err != nil {
		return h.err(c, http.StatusBadGateway, "bundle status lookup failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, statuses)
}

// TokenOverview returns the market panel for a token: price, percent
// changes, market cap, and supply
func (h *Handlers) TokenOverview(c echo.Context) error {
	if h.Discovery == nil {
		return h.err(c, http.StatusBadRequest, "token data feed is not configured", nil)
	}
	mint := strings.TrimSpace(c.Param("mint"))
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": "must be base58"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	overview, err := h.Discovery.TokenOverview(ctx, mint)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "token overview lookup failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, overview)
}

// RecentAttempts returns the most recent swap attempts with optional limit
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentAttempts(c echo.Context) error {
	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentAttempts(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get attempts", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
