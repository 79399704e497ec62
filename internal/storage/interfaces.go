package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/models"
)

// AttemptCache defines the interface for caching swap attempt outcomes
type AttemptCache interface {
	// AddRecentAttempt adds an attempt to the recent-attempts list
	AddRecentAttempt(ctx context.Context, attempt *models.SwapAttempt) error

	// GetRecentAttempts retrieves the most recent attempts
	GetRecentAttempts(ctx context.Context, limit int64) ([]*models.SwapAttempt, error)

	// PublishAttempt publishes an attempt to the Pub/Sub channels
	PublishAttempt(ctx context.Context, attempt *models.SwapAttempt) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// AttemptStore defines the interface for persistent attempt storage
type AttemptStore interface {
	// InsertAttempt inserts a swap attempt into the store
	InsertAttempt(ctx context.Context, attempt *models.SwapAttempt) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}
