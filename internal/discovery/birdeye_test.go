package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirdEyeClient_TrendingTokens(t *testing.T) {
	var gotChain, gotKey string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotChain = r.Header.Get("x-chain")
		gotKey = r.Header.Get("X-API-KEY")
		gotQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"tokens": [
					{"address": "mint1", "symbol": "AAA", "rank": 1},
					{"address": "mint2", "symbol": "BBB", "rank": 2}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := NewBirdEyeClient(srv.URL, "key123")

	tokens, err := client.TrendingTokens(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "solana", gotChain)
	assert.Equal(t, "key123", gotKey)
	assert.Equal(t, []string{"rank"}, gotQuery["sort_by"])
	assert.Equal(t, []string{"2"}, gotQuery["limit"])

	require.Len(t, tokens, 2)
	assert.Equal(t, "AAA", tokens[0].Symbol)
	assert.Equal(t, 1, tokens[0].Rank)
}

func TestBirdEyeClient_TokenOverview(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"address": "mint1",
				"name": "Token One",
				"symbol": "AAA",
				"decimals": 6,
				"price": 0.0421,
				"priceChange1hPercent": -1.5,
				"priceChange24hPercent": 12.25,
				"mc": 1500000,
				"fdv": 2100000,
				"supply": 50000000
			}
		}`))
	}))
	defer srv.Close()

	client := NewBirdEyeClient(srv.URL, "")

	overview, err := client.TokenOverview(context.Background(), "mint1")
	require.NoError(t, err)

	assert.Equal(t, "/defi/token_overview", gotPath)
	assert.Equal(t, []string{"mint1"}, gotQuery["address"])

	assert.Equal(t, "Token One", overview.Name)
	assert.Equal(t, "AAA", overview.Symbol)
	assert.EqualValues(t, 6, overview.Decimals)
	assert.InDelta(t, 0.0421, overview.Price, 1e-9)
	assert.InDelta(t, 12.25, overview.PriceChange24h, 1e-9)
	assert.InDelta(t, 1_500_000, overview.MarketCap, 1e-9)
}

func TestBirdEyeClient_TokenOverview_RequiresMint(t *testing.T) {
	client := NewBirdEyeClient("http://unused", "")

	_, err := client.TokenOverview(context.Background(), "  ")
	assert.Error(t, err)
}

func TestBirdEyeClient_UnsuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	client := NewBirdEyeClient(srv.URL, "")

	_, err := client.TrendingTokens(context.Background(), 5)
	assert.Error(t, err)
}

func TestBirdEyeClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewBirdEyeClient(srv.URL, "")

	_, err := client.TrendingTokens(context.Background(), 5)
	assert.Error(t, err)
}
