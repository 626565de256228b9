package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// MarketSearchRequest carries the comparable-listing search parameters.
// The year window is always model year ±1; callers fill YearMin/YearMax.
type MarketSearchRequest struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Trim    string `json:"trim"`
	YearMin int    `json:"year_min"`
	YearMax int    `json:"year_max"`
}

// Listing is one comparable listing returned by the valuation engine.
type Listing struct {
	Price decimal.Decimal `json:"price"`
}

// MarketAPI talks to the valuation engine's MCP execute endpoint.
type MarketAPI struct {
	baseURL string
	client  *http.Client
}

func NewMarketAPI(baseURL string) *MarketAPI {
	return &MarketAPI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type mcpExecutePayload struct {
	ToolName  string              `json:"tool_name"`
	Arguments MarketSearchRequest `json:"arguments"`
}

type mcpExecuteResponse struct {
	Results []Listing `json:"results"`
}

// SearchListings returns comparable listings for the given search.
// Transport failures and non-2xx statuses are hard failures.
func (m *MarketAPI) SearchListings(ctx context.Context, req MarketSearchRequest) ([]Listing, error) {
	body, err := json.Marshal(mcpExecutePayload{
		ToolName:  "search_market_listings",
		Arguments: req,
	})
	if err != nil {
		return nil, fmt.Errorf("encode market search: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/mcp/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build market search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call valuation engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("valuation engine returned status %d", resp.StatusCode)
	}

	var out mcpExecuteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode valuation response: %w", err)
	}
	return out.Results, nil
}
