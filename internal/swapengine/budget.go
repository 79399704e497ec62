package swapengine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// BudgetSimulator dry-runs an assembled instruction set to estimate its
// compute-unit cost. It never fails: any simulation error degrades to a
// zero estimate, which downstream means "use the chain default".
type BudgetSimulator struct {
	chain  ChainService
	logger *logrus.Logger
}

func NewBudgetSimulator(chainSvc ChainService, logger *logrus.Logger) *BudgetSimulator {
	if logger == nil {
		logger = logrus.New()
	}
	return &BudgetSimulator{chain: chainSvc, logger: logger}
}

// Estimate simulates the ordered instructions against current chain state.
// The probe transaction carries placeholder signatures; the node is told to
// skip signature verification and substitute a fresh blockhash.
func (b *BudgetSimulator) Estimate(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	tables map[solana.PublicKey]solana.PublicKeySlice,
	blockhash solana.Hash,
) BudgetEstimate {
	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(payer),
		solana.TransactionAddressTables(tables),
	)
	if err != nil {
		b.logger.WithError(err).Warn("budget probe build failed, using chain default budget")
		return BudgetEstimate{}
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	sim, err := b.chain.Simulate(ctx, tx)
	if err != nil {
		b.logger.WithError(err).Warn("budget simulation failed, using chain default budget")
		return BudgetEstimate{}
	}
	if !sim.Success || sim.UnitsConsumed == 0 {
		b.logger.WithFields(logrus.Fields{
			"sim_error": sim.Error,
			"units":     sim.UnitsConsumed,
		}).Warn("budget simulation returned no usable estimate, using chain default budget")
		return BudgetEstimate{}
	}

	// 20% headroom over the simulated cost, capped at the runtime ceiling.
	units := sim.UnitsConsumed + sim.UnitsConsumed/5
	if units > MaxComputeUnitLimit {
		units = MaxComputeUnitLimit
	}

	return BudgetEstimate{ComputeUnits: uint32(units)}
}
