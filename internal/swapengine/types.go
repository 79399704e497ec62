package swapengine

import (
	"context"
	"errors"
	"time"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/chain"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/gagliardetto/solana-go"
)

// WrappedSOLMint is the native SOL wrapper used as the base leg of every
// trending buy and held-token sell.
var WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

var (
	// ErrNoRoute is returned when the quote service finds no route for a pair.
	ErrNoRoute = errors.New("no route available for swap")

	// ErrNoSwapInstruction is returned when the instruction service omits the
	// core swap instruction.
	ErrNoSwapInstruction = errors.New("instruction service returned no swap instruction")

	// ErrFeeOutOfRange is returned when a wallet's stored priority fee cannot
	// be represented as a bounded integer. This is a configuration fault, not
	// an upstream failure.
	ErrFeeOutOfRange = errors.New("priority fee out of representable range")
)

// Item pipeline states. Every attempt ends in StateSubmitted or StateFailed.
const (
	StatePending           = "PENDING"
	StateQuoteFetched      = "QUOTE_FETCHED"
	StateInstructionsBuilt = "INSTRUCTIONS_BUILT"
	StateSimulated         = "SIMULATED"
	StateSigned            = "SIGNED"
	StateSubmitted         = "SUBMITTED"
	StateFailed            = "FAILED"
)

// SwapRequest describes one swap attempt. Immutable once created.
type SwapRequest struct {
	UserID      string
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      float64 // human units, before decimal scaling
	SlippageBps uint16
}

// InstructionSet holds the deserialized swap instructions in their required
// relative order: setup, core, then optional cleanup.
type InstructionSet struct {
	Setup            []solana.Instruction
	Core             solana.Instruction
	Cleanup          solana.Instruction // nil when absent
	LookupTableAddrs []solana.PublicKey
}

// Ordered returns the final instruction order for the envelope: setup
// instructions in original order, core, cleanup if present. Never reordered,
// never deduplicated.
func (s *InstructionSet) Ordered() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(s.Setup)+2)
	out = append(out, s.Setup...)
	out = append(out, s.Core)
	if s.Cleanup != nil {
		out = append(out, s.Cleanup)
	}
	return out
}

// BudgetEstimate is the compute-unit budget for a transaction. Zero means
// "let the chain apply its default".
type BudgetEstimate struct {
	ComputeUnits uint32
}

// FeePolicy is the payer's priority-fee preference.
type FeePolicy struct {
	MicroLamportsPerCU uint64
}

// SwapOutcome is the terminal record of one pipeline run.
type SwapOutcome struct {
	State     string // StateSubmitted or StateFailed
	FailStage string // pipeline stage that failed, empty on success
	Err       error

	AmountRaw    uint64
	ComputeUnits uint32
	Fee          FeePolicy

	BundleID  string
	Signature string
	Quote     *jupiter.QuoteResponse

	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the attempt reached terminal success.
func (o *SwapOutcome) Succeeded() bool {
	return o != nil && o.State == StateSubmitted
}

// BatchItem is one asset inside a batch run; Index determines pacing order.
type BatchItem struct {
	Index  int
	Mint   solana.PublicKey
	Amount float64
}

// BatchItemResult pairs an item with its terminal outcome.
type BatchItemResult struct {
	Item      BatchItem
	Outcome   *SwapOutcome
	Err       error
	StartedAt time.Time
}

// BatchResult summarizes a full batch run. len(Items) always equals the
// number of input items.
type BatchResult struct {
	Items     []BatchItemResult
	Submitted int
	Failed    int
}

// Collaborator boundaries. Concrete adapters live in their own packages and
// are injected at construction.

type QuoteService interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error)
}

type InstructionService interface {
	SwapInstructions(ctx context.Context, req jupiter.SwapInstructionsRequest) (*jupiter.SwapInstructionsResponse, error)
}

type ChainService interface {
	LatestBlockhash(ctx context.Context) (chain.Blockhash, error)
	Simulate(ctx context.Context, tx *solana.Transaction) (*chain.SimulationResult, error)
	TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	Holdings(ctx context.Context, owner solana.PublicKey, dustThreshold float64) ([]chain.Holding, error)
	LookupTables(ctx context.Context, addrs []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error)
	BalanceLamports(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
}

type BundleRelay interface {
	TipLamports() uint64
	RandomTipAccount() solana.PublicKey
	SubmitBundle(ctx context.Context, txs []*solana.Transaction) (string, error)
}

type WalletStore interface {
	FindByUserID(ctx context.Context, userID string) (*wallet.Record, error)
	Save(ctx context.Context, rec *wallet.Record) error
}
