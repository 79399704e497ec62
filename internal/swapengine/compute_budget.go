package swapengine

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

var computeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// MaxComputeUnitLimit is the per-transaction compute-unit ceiling enforced
// by the runtime.
const MaxComputeUnitLimit = 1_400_000

// NewSetComputeUnitLimitIx builds a ComputeBudget SetComputeUnitLimit
// instruction.
func NewSetComputeUnitLimitIx(units uint32) solana.Instruction {
	// ComputeBudget instruction layout:
	// u8: instruction index (2 = SetComputeUnitLimit)
	// u32: units
	data := make([]byte, 1+4)
	data[0] = 2
	binary.LittleEndian.PutUint32(data[1:5], units)
	return solana.NewInstruction(computeBudgetProgramID, nil, data)
}

// NewSetComputeUnitPriceIx builds a ComputeBudget SetComputeUnitPrice
// instruction (priority fee in microlamports per compute unit).
func NewSetComputeUnitPriceIx(microLamports uint64) solana.Instruction {
	// u8: instruction index (3 = SetComputeUnitPrice)
	// u64: microlamports per compute unit
	data := make([]byte, 1+8)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:9], microLamports)
	return solana.NewInstruction(computeBudgetProgramID, nil, data)
}
