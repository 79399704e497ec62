package swapengine

import (
	"context"
	"testing"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler_PreservesInstructionOrder(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	core := wireIx(solana.TokenProgramID, []byte{0xAA}, payer)
	cleanup := wireIx(solana.TokenProgramID, []byte{0xBB}, payer)
	svc := &fakeInstructions{resp: &jupiter.SwapInstructionsResponse{
		SetupInstructions: []jupiter.Instruction{
			wireIx(solana.SystemProgramID, []byte{1}, payer),
			wireIx(solana.SystemProgramID, []byte{2}, payer),
		},
		SwapInstruction:    &core,
		CleanupInstruction: &cleanup,
		AddressLookupTableAddresses: []string{
			"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
		},
	}}

	set, err := NewAssembler(svc).Assemble(context.Background(), testQuote(), payer)
	require.NoError(t, err)

	ordered := set.Ordered()
	require.Len(t, ordered, 4)
	assertIxData(t, ordered[0], []byte{1})
	assertIxData(t, ordered[1], []byte{2})
	assertIxData(t, ordered[2], []byte{0xAA})
	assertIxData(t, ordered[3], []byte{0xBB})

	require.Len(t, set.LookupTableAddrs, 1)
	assert.Equal(t, "96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5", set.LookupTableAddrs[0].String())
}

func TestAssembler_NoCleanupInstruction(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	core := wireIx(solana.TokenProgramID, []byte{0xAA}, payer)
	svc := &fakeInstructions{resp: &jupiter.SwapInstructionsResponse{
		SwapInstruction: &core,
	}}

	set, err := NewAssembler(svc).Assemble(context.Background(), testQuote(), payer)
	require.NoError(t, err)
	assert.Nil(t, set.Cleanup)
	assert.Len(t, set.Ordered(), 1)
}

func TestAssembler_MissingCoreInstruction(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	svc := &fakeInstructions{resp: &jupiter.SwapInstructionsResponse{
		SetupInstructions: []jupiter.Instruction{
			wireIx(solana.SystemProgramID, []byte{1}, payer),
		},
	}}

	_, err = NewAssembler(svc).Assemble(context.Background(), testQuote(), payer)
	assert.ErrorIs(t, err, ErrNoSwapInstruction)
}

func TestAssembler_RejectsMalformedWireData(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	payer := key.PublicKey()

	core := wireIx(solana.TokenProgramID, []byte{0xAA}, payer)
	core.Data = "not-base64***"
	svc := &fakeInstructions{resp: &jupiter.SwapInstructionsResponse{
		SwapInstruction: &core,
	}}

	_, err = NewAssembler(svc).Assemble(context.Background(), testQuote(), payer)
	assert.Error(t, err)
}

func assertIxData(t *testing.T, ix solana.Instruction, want []byte) {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, want, data)
}
