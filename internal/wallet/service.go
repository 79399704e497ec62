package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/chain"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const lamportsPerSOL = 1_000_000_000

// ErrAlreadyExists is returned when creating a wallet for a user that has one.
var ErrAlreadyExists = errors.New("wallet already exists")

var feeRe = regexp.MustCompile(`^[0-9]{1,40}$`)

// ChainClient is the subset of chain RPC the wallet service needs.
type ChainClient interface {
	BalanceLamports(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (chain.Blockhash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (string, error)
}

// Service implements wallet lifecycle operations on top of the store.
type Service struct {
	store  *Store
	chain  ChainClient
	logger *logrus.Logger
}

func NewService(store *Store, chainClient ChainClient, logger *logrus.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("wallet: store is required")
	}
	if chainClient == nil {
		return nil, fmt.Errorf("wallet: chain client is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{store: store, chain: chainClient, logger: logger}, nil
}

// Create generates and persists a fresh keypair for a user.
func (s *Service) Create(ctx context.Context, userID string) (*Record, error) {
	if _, err := s.store.FindByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec, err := NewRecord(userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"public_key": rec.PublicKey,
	}).Info("wallet created")

	return rec, nil
}

// Refresh re-reads the on-chain balance and writes it back if it drifted.
func (s *Service) Refresh(ctx context.Context, userID string) (*Record, error) {
	rec, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pub, err := solana.PublicKeyFromBase58(rec.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("wallet: corrupt public key for %s: %w", userID, err)
	}

	lamports, err := s.chain.BalanceLamports(ctx, pub)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	balance := float64(lamports) / lamportsPerSOL
	if balance != rec.BalanceSOL {
		rec.BalanceSOL = balance
		if err := s.store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// SetFee stores the user's priority-fee preference in microlamports per
// compute unit. The raw decimal string is kept as-is; range checking happens
// when a transaction is built.
func (s *Service) SetFee(ctx context.Context, userID, microLamports string) (*Record, error) {
	if !feeRe.MatchString(microLamports) {
		return nil, fmt.Errorf("fee must be a non-negative integer")
	}

	rec, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec.FeeMicroLamports = microLamports
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExportKey returns the wallet's raw key material, hex encoded. The caller
// owns keeping it out of logs and transcripts.
func (s *Service) ExportKey(ctx context.Context, userID string) (string, error) {
	rec, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	priv, err := ParsePrivateKey(rec.PrivateKey)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(priv), nil
}

// Withdraw moves SOL from the custody wallet to an external address.
func (s *Service) Withdraw(ctx context.Context, userID, toAddress string, amountSOL float64) (string, error) {
	if amountSOL <= 0 || math.IsNaN(amountSOL) {
		return "", fmt.Errorf("amount must be > 0")
	}
	scaled := math.Round(amountSOL * lamportsPerSOL)
	if scaled >= math.MaxUint64 {
		return "", fmt.Errorf("amount exceeds the lamport range")
	}
	to, err := solana.PublicKeyFromBase58(toAddress)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	rec, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if amountSOL > rec.BalanceSOL {
		return "", fmt.Errorf("insufficient balance: have %.4f SOL", rec.BalanceSOL)
	}

	signer, err := NewSigner(rec)
	if err != nil {
		return "", err
	}

	blockhash, err := s.chain.LatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	lamports := uint64(scaled)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{chain.NewSystemTransferIx(signer.PublicKey(), to, lamports)},
		blockhash.Hash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}
	if err := signer.Sign(tx); err != nil {
		return "", err
	}

	sig, err := s.chain.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	rec.BalanceSOL -= amountSOL
	if err := s.store.Save(ctx, rec); err != nil {
		// the transfer is already on-chain; surface the stale record instead of failing the op
		s.logger.WithError(err).WithField("user_id", userID).Error("withdraw succeeded but balance write-back failed")
	}

	return sig, nil
}
