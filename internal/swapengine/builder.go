package swapengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/gagliardetto/solana-go"
)

// BuildParams carries everything the transaction builder needs to produce a
// signable envelope.
type BuildParams struct {
	Instructions *InstructionSet
	Payer        solana.PublicKey
	Blockhash    solana.Hash
	Budget       BudgetEstimate
	Fee          FeePolicy
	Tables       map[solana.PublicKey]solana.PublicKeySlice
}

// BuildTransaction assembles the unsigned versioned envelope. Budget
// configuration instructions lead; swap instructions keep their strict
// setup -> core -> cleanup order.
func BuildTransaction(p BuildParams) (*solana.Transaction, error) {
	if p.Instructions == nil || p.Instructions.Core == nil {
		return nil, fmt.Errorf("instruction set is incomplete")
	}

	ordered := p.Instructions.Ordered()
	ixs := make([]solana.Instruction, 0, len(ordered)+2)
	if p.Budget.ComputeUnits > 0 {
		ixs = append(ixs, NewSetComputeUnitLimitIx(p.Budget.ComputeUnits))
	}
	if p.Fee.MicroLamportsPerCU > 0 {
		ixs = append(ixs, NewSetComputeUnitPriceIx(p.Fee.MicroLamportsPerCU))
	}
	ixs = append(ixs, ordered...)

	tx, err := solana.NewTransaction(
		ixs,
		p.Blockhash,
		solana.TransactionPayer(p.Payer),
		solana.TransactionAddressTables(p.Tables),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// ParseFeePolicy reads the payer's stored priority-fee preference. An unset
// preference is a zero fee; a value that does not fit uint64 is a fatal
// configuration error for that wallet.
func ParseFeePolicy(rec *wallet.Record) (FeePolicy, error) {
	raw := strings.TrimSpace(rec.FeeMicroLamports)
	if raw == "" {
		return FeePolicy{}, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return FeePolicy{}, fmt.Errorf("%w: %q", ErrFeeOutOfRange, raw)
	}
	return FeePolicy{MicroLamportsPerCU: v}, nil
}
