package swapengine

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aman-zulfiqar/solana-trend-trader/internal/jupiter"
	"github.com/gagliardetto/solana-go"
)

// Assembler converts a routed quote into the engine's instruction
// representation via the external instruction-build service.
type Assembler struct {
	svc InstructionService
}

func NewAssembler(svc InstructionService) *Assembler {
	return &Assembler{svc: svc}
}

// Assemble fetches and deserializes the swap instruction set for a quote.
// A missing core instruction is a hard failure; retries belong to the caller.
func (a *Assembler) Assemble(ctx context.Context, quote *jupiter.QuoteResponse, payer solana.PublicKey) (*InstructionSet, error) {
	resp, err := a.svc.SwapInstructions(ctx, jupiter.SwapInstructionsRequest{
		QuoteResponse:    quote,
		UserPublicKey:    payer.String(),
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return nil, fmt.Errorf("swap-instructions call failed: %w", err)
	}
	if resp == nil || resp.SwapInstruction == nil {
		return nil, ErrNoSwapInstruction
	}

	set := &InstructionSet{}

	for i, raw := range resp.SetupInstructions {
		ix, err := deserializeInstruction(raw)
		if err != nil {
			return nil, fmt.Errorf("setup instruction %d: %w", i, err)
		}
		set.Setup = append(set.Setup, ix)
	}

	core, err := deserializeInstruction(*resp.SwapInstruction)
	if err != nil {
		return nil, fmt.Errorf("swap instruction: %w", err)
	}
	set.Core = core

	if resp.CleanupInstruction != nil {
		cleanup, err := deserializeInstruction(*resp.CleanupInstruction)
		if err != nil {
			return nil, fmt.Errorf("cleanup instruction: %w", err)
		}
		set.Cleanup = cleanup
	}

	for _, addr := range resp.AddressLookupTableAddresses {
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return nil, fmt.Errorf("lookup table address %q: %w", addr, err)
		}
		set.LookupTableAddrs = append(set.LookupTableAddrs, pk)
	}

	return set, nil
}

// deserializeInstruction decodes one wire instruction into the opaque
// on-chain representation.
func deserializeInstruction(raw jupiter.Instruction) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(raw.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", raw.ProgramID, err)
	}

	accounts := make([]*solana.AccountMeta, len(raw.Accounts))
	for i, acc := range raw.Accounts {
		pk, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", acc.Pubkey, err)
		}
		accounts[i] = &solana.AccountMeta{
			PublicKey:  pk,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		}
	}

	data, err := base64.StdEncoding.DecodeString(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}
