package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/models"
)

// ClickHouseStore persists swap attempt outcomes for analysis.
type ClickHouseStore struct {
	conn driver.Conn
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

func (c *ClickHouseStore) InsertAttempt(ctx context.Context, attempt *models.SwapAttempt) error {
	query := `
		INSERT INTO swap_attempts (
			user_id, input_mint, output_mint, amount, amount_raw, timestamp,
			state, fail_stage, error, bundle_id, signature,
			compute_units, fee_micro_lamports, expected_out, price_impact_pct, route_hops
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		attempt.UserID,
		attempt.InputMint,
		attempt.OutputMint,
		attempt.Amount,
		attempt.AmountRaw,
		attempt.Timestamp,
		attempt.State,
		attempt.FailStage,
		attempt.Error,
		attempt.BundleID,
		attempt.Signature,
		attempt.ComputeUnits,
		attempt.FeeMicroLam,
		attempt.ExpectedOut,
		attempt.PriceImpactPct,
		attempt.RouteHops,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
