package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BirdEyeClient fetches trending token candidates and per-token market
// overviews from the BirdEye API.
type BirdEyeClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewBirdEyeClient(baseURL, apiKey string) *BirdEyeClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://public-api.birdeye.so"
	}
	return &BirdEyeClient{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

// TrendingToken is one candidate from the trending feed, rank-ordered.
type TrendingToken struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Rank     int     `json:"rank"`
	Price    float64 `json:"price"`
	Volume24 float64 `json:"volume24hUSD"`
}

type trendingResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Tokens []TrendingToken `json:"tokens"`
	} `json:"data"`
}

// TokenOverview is the market panel for one token.
type TokenOverview struct {
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Decimals       uint8   `json:"decimals"`
	Price          float64 `json:"price"`
	PriceChange1h  float64 `json:"priceChange1hPercent"`
	PriceChange6h  float64 `json:"priceChange6hPercent"`
	PriceChange24h float64 `json:"priceChange24hPercent"`
	MarketCap      float64 `json:"mc"`
	FDV            float64 `json:"fdv"`
	TotalSupply    float64 `json:"supply"`
}

type overviewResponse struct {
	Success bool          `json:"success"`
	Data    TokenOverview `json:"data"`
}

// TrendingTokens returns up to limit candidates sorted by ascending rank.
func (c *BirdEyeClient) TrendingTokens(ctx context.Context, limit int) ([]TrendingToken, error) {
	if limit < 1 {
		limit = 5
	}

	q := url.Values{}
	q.Set("sort_by", "rank")
	q.Set("sort_type", "asc")
	q.Set("offset", "0")
	q.Set("limit", fmt.Sprintf("%d", limit))

	var out trendingResponse
	if err := c.get(ctx, "/defi/token_trending", q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("birdeye returned success=false")
	}
	return out.Data.Tokens, nil
}

// TokenOverview fetches price, percent changes, and supply stats for a mint.
func (c *BirdEyeClient) TokenOverview(ctx context.Context, mint string) (*TokenOverview, error) {
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return nil, fmt.Errorf("mint address is required")
	}

	q := url.Values{}
	q.Set("address", mint)

	var out overviewResponse
	if err := c.get(ctx, "/defi/token_overview", q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("birdeye returned success=false")
	}
	return &out.Data, nil
}

func (c *BirdEyeClient) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-chain", "solana")
	if c.APIKey != "" {
		req.Header.Set("X-API-KEY", c.APIKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("birdeye http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode birdeye response: %w", err)
	}
	return nil
}
