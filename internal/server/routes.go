package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes and route-level middleware
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
		}))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)                   // Health check endpoint
	v1.GET("/quote", h.Quote)                     // Route preview without execution
	v1.GET("/attempts/recent", h.RecentAttempts)  // Recent swap attempts
	v1.GET("/bundles/:bundle_id", h.BundleStatus) // Relay bundle status
	v1.GET("/tokens/:mint", h.TokenOverview)      // Token market panel

	// Wallet lifecycle endpoints
	walletGroup := v1.Group("/wallets")
	walletGroup.POST("", h.WalletCreate)                     // Create custody wallet
	walletGroup.GET("/:user_id", h.WalletGet)                // Fetch with fresh balance
	walletGroup.GET("/:user_id/key", h.WalletExportKey)      // Export key for self-custody
	walletGroup.PUT("/:user_id/fee", h.WalletSetFee)         // Set priority fee preference
	walletGroup.POST("/:user_id/withdraw", h.WalletWithdraw) // Withdraw SOL

	// Trading endpoints with rate limiting: swaps move real funds
	tradeGroup := v1.Group("")
	tradeGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(0.5), // 1 request every 2 seconds
		Burst:     3,               // Allow burst of 3 requests
		ExpiresIn: 2 * time.Minute, // Rate limit window
	})))
	tradeGroup.POST("/swaps", h.Swap)              // Single swap to terminal state
	tradeGroup.POST("/batches/buy", h.BuyTrending) // Paced trending buy batch
	tradeGroup.POST("/batches/sell", h.SellHeld)   // Paced holdings sell batch

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
