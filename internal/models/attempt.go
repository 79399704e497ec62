package models

import "time"

// SwapAttempt is the terminal record of one swap pipeline run.
type SwapAttempt struct {
	UserID     string    `json:"user_id"`
	InputMint  string    `json:"input_mint"`
	OutputMint string    `json:"output_mint"`
	Amount     float64   `json:"amount"` // human units of the input mint
	AmountRaw  uint64    `json:"amount_raw"`
	Timestamp  time.Time `json:"timestamp"`

	State     string `json:"state"` // SUBMITTED or FAILED
	FailStage string `json:"fail_stage,omitempty"`
	Error     string `json:"error,omitempty"`

	BundleID     string `json:"bundle_id,omitempty"`
	Signature    string `json:"signature,omitempty"`
	ComputeUnits uint64 `json:"compute_units"`
	FeeMicroLam  uint64 `json:"fee_micro_lamports"`

	ExpectedOut    string `json:"expected_out,omitempty"`
	PriceImpactPct string `json:"price_impact_pct,omitempty"`
	RouteHops      int    `json:"route_hops"`
}
