package chain

import (
	"context"
	"encoding/base64"
	"fmt"

	projectrpc "github.com/aman-zulfiqar/solana-trend-trader/internal/rpc"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
)

// LookupTables resolves address lookup table accounts into the
// table-address -> contained-addresses map a versioned transaction needs.
// Unknown or undecodable tables fail the call; a transaction built against
// a partial table set would reference wrong account indexes.
func (c *Client) LookupTables(ctx context.Context, addrs []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addrs))
	if len(addrs) == 0 {
		return tables, nil
	}

	keys := make([]string, len(addrs))
	for i, a := range addrs {
		keys[i] = a.String()
	}

	var resp struct {
		Result struct {
			Value []*struct {
				Data []string `json:"data"` // [payload, encoding]
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		keys,
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	if err := c.rpc.Call(ctx, "getMultipleAccounts", params, &resp); err != nil {
		return nil, fmt.Errorf("getMultipleAccounts RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getMultipleAccounts error: %s", resp.Error.Message)
	}
	if len(resp.Result.Value) != len(addrs) {
		return nil, fmt.Errorf("lookup table response length mismatch: want %d, got %d",
			len(addrs), len(resp.Result.Value))
	}

	for i, entry := range resp.Result.Value {
		if entry == nil || len(entry.Data) == 0 {
			return nil, fmt.Errorf("lookup table %s not found", addrs[i])
		}
		raw, err := base64.StdEncoding.DecodeString(entry.Data[0])
		if err != nil {
			return nil, fmt.Errorf("lookup table %s: invalid account data: %w", addrs[i], err)
		}
		state, err := addresslookuptable.DecodeAddressLookupTableState(raw)
		if err != nil {
			return nil, fmt.Errorf("lookup table %s: decode failed: %w", addrs[i], err)
		}
		tables[addrs[i]] = state.Addresses
	}

	return tables, nil
}
