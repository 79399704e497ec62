package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"math"
	"testing"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/chain"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChain struct{}

func (stubChain) BalanceLamports(context.Context, solana.PublicKey) (uint64, error) {
	return 0, nil
}

func (stubChain) LatestBlockhash(context.Context) (chain.Blockhash, error) {
	return chain.Blockhash{Hash: solana.Hash{1}}, nil
}

func (stubChain) SendTransaction(context.Context, *solana.Transaction) (string, error) {
	return "sig", nil
}

// offlineService builds a service whose store is never reached; only the
// pre-store validation paths may be exercised through it.
func offlineService(t *testing.T) *Service {
	t.Helper()
	store, err := NewStore(redis.NewClient(&redis.Options{Addr: "localhost:1"}))
	require.NoError(t, err)
	svc, err := NewService(store, stubChain{}, nil)
	require.NoError(t, err)
	return svc
}

func TestService_Withdraw_RejectsBadAmounts(t *testing.T) {
	svc := offlineService(t)
	recipient := solana.NewWallet().PublicKey().String()

	for _, amount := range []float64{0, -1, math.NaN()} {
		_, err := svc.Withdraw(context.Background(), "user-1", recipient, amount)
		assert.Error(t, err, "amount %v", amount)
	}
}

func TestService_Withdraw_RejectsLamportOverflow(t *testing.T) {
	svc := offlineService(t)
	recipient := solana.NewWallet().PublicKey().String()

	// 1e12 SOL scales past what a u64 lamport amount can carry.
	_, err := svc.Withdraw(context.Background(), "user-1", recipient, 1e12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lamport")
}

func TestService_ExportKey(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)
	svc, err := NewService(store, stubChain{}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	rec, err := svc.Create(ctx, "user-export")
	require.NoError(t, err)

	keyHex, err := svc.ExportKey(ctx, "user-export")
	require.NoError(t, err)

	raw, err := hex.DecodeString(keyHex)
	require.NoError(t, err)
	require.Len(t, raw, 64)
	assert.Equal(t, rec.PublicKey, solana.PrivateKey(raw).PublicKey().String())
}

func TestService_ExportKey_MissingWallet(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)
	svc, err := NewService(store, stubChain{}, nil)
	require.NoError(t, err)

	_, err = svc.ExportKey(context.Background(), "user-none")
	assert.True(t, errors.Is(err, ErrNotFound))
}
