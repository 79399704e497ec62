package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Quote(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAPIKey = r.Header.Get("x-api-key")

		_ = json.NewEncoder(w).Encode(QuoteResponse{
			InputMint:  "So11111111111111111111111111111111111111112",
			OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			InAmount:   "10000",
			OutAmount:  "123",
			RoutePlan:  []RoutePlanStep{{Bps: 10000}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")

	slip := uint16(100)
	out, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:   "So11111111111111111111111111111111111111112",
		OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:      "10000",
		SlippageBps: &slip,
	})
	require.NoError(t, err)

	assert.Equal(t, "/quote", gotPath)
	assert.Equal(t, []string{"10000"}, gotQuery["amount"])
	assert.Equal(t, []string{"100"}, gotQuery["slippageBps"])
	assert.Equal(t, "secret", gotAPIKey)

	assert.Equal(t, "123", out.OutAmount)
	assert.Len(t, out.RoutePlan, 1)
}

func TestClient_Quote_RequiresFields(t *testing.T) {
	client := NewClient("http://unused", "")

	_, err := client.Quote(context.Background(), QuoteRequest{OutputMint: "x", Amount: "1"})
	assert.Error(t, err)

	_, err = client.Quote(context.Background(), QuoteRequest{InputMint: "x", Amount: "1"})
	assert.Error(t, err)

	_, err = client.Quote(context.Background(), QuoteRequest{InputMint: "x", OutputMint: "y"})
	assert.Error(t, err)
}

func TestClient_Quote_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no route"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	_, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:  "a",
		OutputMint: "b",
		Amount:     "1",
	})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestClient_SwapInstructions(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody SwapInstructionsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		core := Instruction{
			ProgramID: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			Data:      "qg==",
		}
		_ = json.NewEncoder(w).Encode(SwapInstructionsResponse{
			SwapInstruction:             &core,
			AddressLookupTableAddresses: []string{"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	out, err := client.SwapInstructions(context.Background(), SwapInstructionsRequest{
		QuoteResponse:    &QuoteResponse{InAmount: "10000"},
		UserPublicKey:    "96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
		WrapAndUnwrapSol: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/swap-instructions", gotPath)
	assert.True(t, gotBody.WrapAndUnwrapSol)
	require.NotNil(t, gotBody.QuoteResponse)
	assert.Equal(t, "10000", gotBody.QuoteResponse.InAmount)

	require.NotNil(t, out.SwapInstruction)
	assert.Len(t, out.AddressLookupTableAddresses, 1)
}

func TestClient_SwapInstructions_RequiresQuote(t *testing.T) {
	client := NewClient("http://unused", "")

	_, err := client.SwapInstructions(context.Background(), SwapInstructionsRequest{
		UserPublicKey: "x",
	})
	assert.Error(t, err)

	_, err = client.SwapInstructions(context.Background(), SwapInstructionsRequest{
		QuoteResponse: &QuoteResponse{},
	})
	assert.Error(t, err)
}
