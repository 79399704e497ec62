package swapengine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/chain"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/models"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/notify"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/storage"
	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const lamportsPerSOL = 1_000_000_000

// Executor drives one swap attempt through the full pipeline: wallet read,
// amount scaling, quote, instruction assembly, budget simulation,
// transaction build, signing, bundle submission, and attempt bookkeeping.
type Executor struct {
	store     WalletStore
	quotes    QuoteService
	assembler *Assembler
	chain     ChainService
	relay     BundleRelay
	simulator *BudgetSimulator
	notifier  notify.Notifier

	// best-effort sinks, may be nil
	cache    storage.AttemptCache
	attempts storage.AttemptStore

	logger *logrus.Logger
}

type ExecutorDeps struct {
	Store        WalletStore
	Quotes       QuoteService
	Instructions InstructionService
	Chain        ChainService
	Relay        BundleRelay
	Notifier     notify.Notifier
	Cache        storage.AttemptCache
	Attempts     storage.AttemptStore
	Logger       *logrus.Logger
}

func NewExecutor(deps ExecutorDeps) (*Executor, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("swapengine: wallet store is required")
	}
	if deps.Quotes == nil {
		return nil, fmt.Errorf("swapengine: quote service is required")
	}
	if deps.Instructions == nil {
		return nil, fmt.Errorf("swapengine: instruction service is required")
	}
	if deps.Chain == nil {
		return nil, fmt.Errorf("swapengine: chain service is required")
	}
	if deps.Relay == nil {
		return nil, fmt.Errorf("swapengine: bundle relay is required")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Notifier == nil {
		deps.Notifier = &notify.LogNotifier{Logger: deps.Logger}
	}

	return &Executor{
		store:     deps.Store,
		quotes:    deps.Quotes,
		assembler: NewAssembler(deps.Instructions),
		chain:     deps.Chain,
		relay:     deps.Relay,
		simulator: NewBudgetSimulator(deps.Chain, deps.Logger),
		notifier:  deps.Notifier,
		cache:     deps.Cache,
		attempts:  deps.Attempts,
		logger:    deps.Logger,
	}, nil
}

// ExecuteSwap runs the pipeline for one request. The returned outcome is
// always non-nil and terminal; err is non-nil exactly when the outcome is
// FAILED. No stage is retried here.
func (e *Executor) ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapOutcome, error) {
	outcome := &SwapOutcome{State: StatePending, StartedAt: time.Now()}
	log := e.logger.WithFields(logrus.Fields{
		"user_id":     req.UserID,
		"input_mint":  req.InputMint.String(),
		"output_mint": req.OutputMint.String(),
	})

	// (a) input validation: reject before any external call
	if req.Amount <= 0 {
		return e.fail(ctx, req, outcome, "validate", fmt.Errorf("amount must be > 0"), "")
	}
	if req.InputMint.IsZero() || req.OutputMint.IsZero() {
		return e.fail(ctx, req, outcome, "validate", fmt.Errorf("input/output mint required"), "")
	}
	if req.InputMint.Equals(req.OutputMint) {
		return e.fail(ctx, req, outcome, "validate", fmt.Errorf("input and output mint must differ"), "")
	}

	// Wallet record is read fresh for every attempt.
	rec, err := e.store.FindByUserID(ctx, req.UserID)
	if err != nil {
		return e.fail(ctx, req, outcome, "wallet", err,
			"No wallet found. Create one before swapping.")
	}
	signer, err := wallet.NewSigner(rec)
	if err != nil {
		return e.fail(ctx, req, outcome, "wallet", err,
			"Your wallet record is unusable. Contact support.")
	}
	payer := signer.PublicKey()

	e.send(ctx, req.UserID, fmt.Sprintf(
		"Starting swap: %s -> %s, amount %v, slippage %.2f%%",
		req.InputMint, req.OutputMint, req.Amount, float64(req.SlippageBps)/100))

	// Scale the human amount by the input mint's precision, exactly once.
	decimals, err := e.chain.TokenDecimals(ctx, req.InputMint)
	if err != nil {
		return e.fail(ctx, req, outcome, "decimals", err,
			"Could not inspect the input token. Please try again later.")
	}
	amountRaw := toRawAmount(req.Amount, decimals)
	if amountRaw == 0 {
		return e.fail(ctx, req, outcome, "validate",
			fmt.Errorf("amount %v has no raw representation at %d decimals", req.Amount, decimals), "")
	}
	outcome.AmountRaw = amountRaw

	slippage := req.SlippageBps
	quote, err := e.quotes.Quote(ctx, jupiter.QuoteRequest{
		InputMint:   req.InputMint.String(),
		OutputMint:  req.OutputMint.String(),
		Amount:      strconv.FormatUint(amountRaw, 10),
		SlippageBps: &slippage,
	})
	if err != nil {
		return e.fail(ctx, req, outcome, "quote", err,
			"Failed to retrieve a quote. Please try again later.")
	}
	if quote == nil || len(quote.RoutePlan) == 0 {
		return e.fail(ctx, req, outcome, "quote", ErrNoRoute,
			"Failed to retrieve a quote. Please try again later.")
	}
	outcome.Quote = quote
	outcome.State = StateQuoteFetched

	ixSet, err := e.assembler.Assemble(ctx, quote, payer)
	if err != nil {
		return e.fail(ctx, req, outcome, "instructions", err,
			"Failed to get swap instructions. Please try again later.")
	}
	outcome.State = StateInstructionsBuilt

	tables, err := e.chain.LookupTables(ctx, ixSet.LookupTableAddrs)
	if err != nil {
		return e.fail(ctx, req, outcome, "lookup-tables", err,
			"Failed to prepare the transaction. Please try again later.")
	}

	blockhash, err := e.chain.LatestBlockhash(ctx)
	if err != nil {
		return e.fail(ctx, req, outcome, "blockhash", err,
			"Failed to reach the network. Please try again later.")
	}

	// Best-effort: a failed simulation degrades to the chain default budget.
	budget := e.simulator.Estimate(ctx, ixSet.Ordered(), payer, tables, blockhash.Hash)
	outcome.ComputeUnits = budget.ComputeUnits
	outcome.State = StateSimulated

	fee, err := ParseFeePolicy(rec)
	if err != nil {
		// (d) fatal configuration, surfaced distinctly from upstream failures
		log.WithError(err).Error("wallet priority fee is misconfigured")
		return e.fail(ctx, req, outcome, "fee-config", err,
			"Your priority fee setting is invalid. Reset it with the fee command.")
	}
	outcome.Fee = fee

	tx, err := BuildTransaction(BuildParams{
		Instructions: ixSet,
		Payer:        payer,
		Blockhash:    blockhash.Hash,
		Budget:       budget,
		Fee:          fee,
		Tables:       tables,
	})
	if err != nil {
		return e.fail(ctx, req, outcome, "build", err,
			"Failed to prepare the transaction. Please try again later.")
	}

	if err := signer.Sign(tx); err != nil {
		return e.fail(ctx, req, outcome, "sign", err,
			"Failed to sign the transaction. Please try again later.")
	}
	outcome.State = StateSigned

	tipTx, err := e.buildTipTransaction(signer, blockhash.Hash)
	if err != nil {
		return e.fail(ctx, req, outcome, "submit", err,
			"Failed to submit the transaction. Please try again later.")
	}

	bundleID, err := e.relay.SubmitBundle(ctx, []*solana.Transaction{tx, tipTx})
	if err != nil {
		return e.fail(ctx, req, outcome, "submit", err,
			"Failed to submit the transaction. Please try again later.")
	}

	outcome.State = StateSubmitted
	outcome.BundleID = bundleID
	outcome.Signature = tx.Signatures[0].String()
	outcome.Duration = time.Since(outcome.StartedAt)

	log.WithFields(logrus.Fields{
		"bundle_id": bundleID,
		"signature": outcome.Signature,
		"duration":  outcome.Duration,
	}).Info("swap submitted")

	e.send(ctx, req.UserID, fmt.Sprintf(
		"Swap submitted. View on Solscan: https://solscan.io/tx/%s", outcome.Signature))

	// Write the wallet record back once, after submission.
	if lamports, err := e.chain.BalanceLamports(ctx, payer); err == nil {
		rec.BalanceSOL = float64(lamports) / lamportsPerSOL
		if err := e.store.Save(ctx, rec); err != nil {
			log.WithError(err).Warn("balance write-back failed")
		}
	}

	e.record(ctx, req, outcome)
	return outcome, nil
}

// fail marks the attempt terminal, notifies the user when a message is
// given, and records the outcome. Wallet state is never mutated on failure.
func (e *Executor) fail(ctx context.Context, req SwapRequest, outcome *SwapOutcome, stage string, err error, userMsg string) (*SwapOutcome, error) {
	outcome.State = StateFailed
	outcome.FailStage = stage
	outcome.Err = err
	outcome.Duration = time.Since(outcome.StartedAt)

	e.logger.WithError(err).WithFields(logrus.Fields{
		"user_id": req.UserID,
		"stage":   stage,
	}).Error("swap attempt failed")

	if userMsg != "" {
		e.send(ctx, req.UserID, userMsg)
	}

	e.record(ctx, req, outcome)
	return outcome, err
}

// send delivers a user-facing status message. Delivery failure is logged,
// never escalated.
func (e *Executor) send(ctx context.Context, recipient, text string) {
	if err := e.notifier.Send(ctx, recipient, text); err != nil {
		e.logger.WithError(err).WithField("recipient", recipient).Warn("notification delivery failed")
	}
}

// record publishes the terminal attempt to the configured sinks, best-effort.
func (e *Executor) record(ctx context.Context, req SwapRequest, outcome *SwapOutcome) {
	if e.cache == nil && e.attempts == nil {
		return
	}

	attempt := &models.SwapAttempt{
		UserID:       req.UserID,
		InputMint:    req.InputMint.String(),
		OutputMint:   req.OutputMint.String(),
		Amount:       req.Amount,
		AmountRaw:    outcome.AmountRaw,
		Timestamp:    outcome.StartedAt,
		State:        outcome.State,
		FailStage:    outcome.FailStage,
		BundleID:     outcome.BundleID,
		Signature:    outcome.Signature,
		ComputeUnits: uint64(outcome.ComputeUnits),
		FeeMicroLam:  outcome.Fee.MicroLamportsPerCU,
	}
	if outcome.Err != nil {
		attempt.Error = outcome.Err.Error()
	}
	if outcome.Quote != nil {
		attempt.ExpectedOut = outcome.Quote.OutAmount
		attempt.PriceImpactPct = outcome.Quote.PriceImpactPct
		attempt.RouteHops = len(outcome.Quote.RoutePlan)
	}

	if e.cache != nil {
		_ = e.cache.AddRecentAttempt(ctx, attempt)
		_ = e.cache.PublishAttempt(ctx, attempt)
	}
	if e.attempts != nil {
		_ = e.attempts.InsertAttempt(ctx, attempt)
	}
}

// buildTipTransaction creates and signs the relay tip transfer that rides
// alongside the swap in the same bundle.
func (e *Executor) buildTipTransaction(signer *wallet.Signer, blockhash solana.Hash) (*solana.Transaction, error) {
	tipIx := chain.NewSystemTransferIx(signer.PublicKey(), e.relay.RandomTipAccount(), e.relay.TipLamports())

	tx, err := solana.NewTransaction(
		[]solana.Instruction{tipIx},
		blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tip transaction: %w", err)
	}
	if err := signer.Sign(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// toRawAmount scales a human amount by the mint's precision. Zero means the
// amount is unusable: non-positive, NaN, rounds to nothing, or overflows the
// u64 the wire format carries.
func toRawAmount(amount float64, decimals uint8) uint64 {
	if amount <= 0 || math.IsNaN(amount) {
		return 0
	}
	scaled := math.Round(amount * math.Pow10(int(decimals)))
	if scaled >= math.MaxUint64 {
		return 0
	}
	return uint64(scaled)
}
