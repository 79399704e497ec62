package wallet

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a user has no custody record.
var ErrNotFound = errors.New("wallet not found")

// Record is the custody record for one user. PrivateKey is stored as a
// base58-encoded 64-byte ed25519 key (solana-keygen JSON arrays are accepted
// on input and normalized on save).
type Record struct {
	UserID           string    `json:"user_id"`
	PublicKey        string    `json:"public_key"`
	PrivateKey       string    `json:"private_key"`
	BalanceSOL       float64   `json:"balance_sol"`
	FeeMicroLamports string    `json:"fee_micro_lamports,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
