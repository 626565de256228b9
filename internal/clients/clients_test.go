package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarketSearchListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp/execute" {
			t.Errorf("path = %s, want /mcp/execute", r.URL.Path)
		}
		var payload struct {
			ToolName  string              `json:"tool_name"`
			Arguments MarketSearchRequest `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.ToolName != "search_market_listings" {
			t.Errorf("tool_name = %q", payload.ToolName)
		}
		if payload.Arguments.YearMin != 2018 || payload.Arguments.YearMax != 2020 {
			t.Errorf("year window = [%d, %d]", payload.Arguments.YearMin, payload.Arguments.YearMax)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"price":21000},{"price":"19500.50"}]}`))
	}))
	defer srv.Close()

	api := NewMarketAPI(srv.URL)
	listings, err := api.SearchListings(context.Background(), MarketSearchRequest{
		Make: "Mazda", Model: "MX-5", Trim: "Sport", YearMin: 2018, YearMax: 2020,
	})
	if err != nil {
		t.Fatalf("SearchListings() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}
	// Prices arrive as both bare numbers and quoted strings
	if !listings[1].Price.Equal(decimal.RequireFromString("19500.50")) {
		t.Fatalf("price = %s, want 19500.50", listings[1].Price)
	}
}

func TestMarketSearchNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer srv.Close()

	api := NewMarketAPI(srv.URL)
	if _, err := api.SearchListings(context.Background(), MarketSearchRequest{}); err == nil {
		t.Fatalf("SearchListings() = nil, want error on 502")
	}
}

func TestMarketSearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	api := NewMarketAPI(srv.URL)
	listings, err := api.SearchListings(context.Background(), MarketSearchRequest{})
	if err != nil {
		t.Fatalf("SearchListings() error = %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("listings = %d, want 0", len(listings))
	}
}

func TestOCRExtractReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr/process" {
			t.Errorf("path = %s, want /ocr/process", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file part missing: %v", err)
		}
		w.Write([]byte(`{"vendor":"Joe's Garage","total_cost":"128.40","confidence":0.93}`))
	}))
	defer srv.Close()

	api := NewOCRAPI(srv.URL)
	extraction, err := api.ExtractReceipt(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("ExtractReceipt() error = %v", err)
	}
	if extraction.Vendor == nil || *extraction.Vendor != "Joe's Garage" {
		t.Fatalf("vendor = %v", extraction.Vendor)
	}
	if extraction.Description != nil {
		t.Fatalf("description should be absent")
	}
	if extraction.TotalCost == nil || !extraction.TotalCost.Equal(decimal.RequireFromString("128.40")) {
		t.Fatalf("total_cost = %v", extraction.TotalCost)
	}
	// Raw payload preserved verbatim, unknown fields included
	if len(extraction.Raw) == 0 {
		t.Fatalf("raw payload missing")
	}
}

func TestOCRUnparseableBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	api := NewOCRAPI(srv.URL)
	if _, err := api.ExtractReceipt(context.Background(), []byte("jpeg")); err == nil {
		t.Fatalf("ExtractReceipt() = nil, want error on unparseable body")
	}
}
