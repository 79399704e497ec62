package swapengine

import (
	"testing"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstructionSet(t *testing.T, payer solana.PublicKey) *InstructionSet {
	t.Helper()
	meta := []*solana.AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true}}
	return &InstructionSet{
		Setup: []solana.Instruction{
			solana.NewInstruction(solana.SystemProgramID, meta, []byte{1}),
			solana.NewInstruction(solana.SystemProgramID, meta, []byte{2}),
		},
		Core:    solana.NewInstruction(solana.TokenProgramID, meta, []byte{3}),
		Cleanup: solana.NewInstruction(solana.TokenProgramID, meta, []byte{4}),
	}
}

// compiledPrograms resolves each compiled instruction back to its program id.
func compiledPrograms(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	out := make([]solana.PublicKey, len(tx.Message.Instructions))
	for i, ix := range tx.Message.Instructions {
		pk, err := tx.Message.Program(ix.ProgramIDIndex)
		require.NoError(t, err)
		out[i] = pk
	}
	return out
}

func TestBuildTransaction_InstructionOrder(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	tx, err := BuildTransaction(BuildParams{
		Instructions: testInstructionSet(t, payer),
		Payer:        payer,
		Blockhash:    solana.Hash{7},
		Budget:       BudgetEstimate{ComputeUnits: 200_000},
		Fee:          FeePolicy{MicroLamportsPerCU: 1_000},
	})
	require.NoError(t, err)

	programs := compiledPrograms(t, tx)
	require.Len(t, programs, 6)

	// Budget configuration leads: unit limit, then unit price.
	assert.Equal(t, computeBudgetProgramID, programs[0])
	assert.Equal(t, computeBudgetProgramID, programs[1])
	assert.Equal(t, byte(2), tx.Message.Instructions[0].Data[0])
	assert.Equal(t, byte(3), tx.Message.Instructions[1].Data[0])

	// Swap instructions keep setup -> core -> cleanup order.
	assert.Equal(t, []byte{1}, []byte(tx.Message.Instructions[2].Data))
	assert.Equal(t, []byte{2}, []byte(tx.Message.Instructions[3].Data))
	assert.Equal(t, []byte{3}, []byte(tx.Message.Instructions[4].Data))
	assert.Equal(t, []byte{4}, []byte(tx.Message.Instructions[5].Data))
}

func TestBuildTransaction_ZeroBudgetOmitsLimit(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	tx, err := BuildTransaction(BuildParams{
		Instructions: testInstructionSet(t, payer),
		Payer:        payer,
		Blockhash:    solana.Hash{7},
		Budget:       BudgetEstimate{},
		Fee:          FeePolicy{MicroLamportsPerCU: 500},
	})
	require.NoError(t, err)

	programs := compiledPrograms(t, tx)
	require.Len(t, programs, 5)

	// Only the unit price instruction precedes the swap set.
	assert.Equal(t, computeBudgetProgramID, programs[0])
	assert.Equal(t, byte(3), tx.Message.Instructions[0].Data[0])
	assert.NotEqual(t, computeBudgetProgramID, programs[1])
}

func TestBuildTransaction_ZeroFeeOmitsPrice(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	tx, err := BuildTransaction(BuildParams{
		Instructions: testInstructionSet(t, payer),
		Payer:        payer,
		Blockhash:    solana.Hash{7},
	})
	require.NoError(t, err)

	for _, pk := range compiledPrograms(t, tx) {
		assert.NotEqual(t, computeBudgetProgramID, pk)
	}
}

func TestBuildTransaction_RequiresCoreInstruction(t *testing.T) {
	_, err := BuildTransaction(BuildParams{})
	assert.Error(t, err)

	_, err = BuildTransaction(BuildParams{Instructions: &InstructionSet{}})
	assert.Error(t, err)
}

func TestParseFeePolicy(t *testing.T) {
	t.Run("unset means zero fee", func(t *testing.T) {
		fee, err := ParseFeePolicy(&wallet.Record{})
		require.NoError(t, err)
		assert.Zero(t, fee.MicroLamportsPerCU)
	})

	t.Run("valid value", func(t *testing.T) {
		fee, err := ParseFeePolicy(&wallet.Record{FeeMicroLamports: "25000"})
		require.NoError(t, err)
		assert.Equal(t, uint64(25_000), fee.MicroLamportsPerCU)
	})

	t.Run("max uint64", func(t *testing.T) {
		fee, err := ParseFeePolicy(&wallet.Record{FeeMicroLamports: "18446744073709551615"})
		require.NoError(t, err)
		assert.Equal(t, uint64(18446744073709551615), fee.MicroLamportsPerCU)
	})

	t.Run("overflow is a distinct fatal error", func(t *testing.T) {
		_, err := ParseFeePolicy(&wallet.Record{FeeMicroLamports: "18446744073709551616"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFeeOutOfRange)
	})
}

func TestComputeBudgetInstructionEncoding(t *testing.T) {
	limit := NewSetComputeUnitLimitIx(1_400_000)
	data, err := limit.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0xc0, 0x5c, 0x15, 0x00}, data)

	price := NewSetComputeUnitPriceIx(1)
	data, err = price.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1, 0, 0, 0, 0, 0, 0, 0}, data)
}
