package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/foodprices-project/backend/internal/models"
	"github.com/foodprices-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubMarkets struct {
	markets []models.Market
	err     error
}

func (s *stubMarkets) ListMarkets(context.Context) ([]models.Market, error) {
	return s.markets, s.err
}

func (s *stubMarkets) GetMarket(_ context.Context, id int64) (*models.Market, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.markets {
		if s.markets[i].MarketID == id {
			return &s.markets[i], nil
		}
	}
	return nil, services.ErrMarketNotFound
}

type stubCommodities struct {
	commodities []models.Commodity
	err         error
}

func (s *stubCommodities) ListCommodities(context.Context) ([]models.Commodity, error) {
	return s.commodities, s.err
}

func (s *stubCommodities) GetCommodity(_ context.Context, id int64) (*models.Commodity, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.commodities {
		if s.commodities[i].CommodityID == id {
			return &s.commodities[i], nil
		}
	}
	return nil, services.ErrCommodityNotFound
}

// stubPrices records the filter it was called with
type stubPrices struct {
	prices []models.Price
	err    error
	calls  int
	last   services.PriceFilter
}

func (s *stubPrices) FilteredPrices(_ context.Context, f services.PriceFilter) ([]models.Price, error) {
	s.calls++
	s.last = f
	return s.prices, s.err
}

func (s *stubPrices) LatestPrices(_ context.Context, f services.PriceFilter) ([]models.Price, error) {
	s.calls++
	s.last = f
	return s.prices, s.err
}

func newTestApp(markets *stubMarkets, commodities *stubCommodities, prices *stubPrices) *fiber.App {
	app := fiber.New()
	mh := NewMarketHandler(markets, commodities)
	ph := NewPriceHandler(prices)
	app.Get("/health", Health)
	app.Get("/", Home)
	app.Get("/markets", mh.ListMarkets)
	app.Get("/markets/:id", mh.GetMarket)
	app.Get("/commodities", mh.ListCommodities)
	app.Get("/commodities/:id", mh.GetCommodity)
	app.Get("/prices", ph.GetPrices)
	app.Get("/latest-prices", ph.GetLatestPrices)
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

var testMarket = models.Market{MarketID: 1, MarketName: "Test Market", Admin1: "X", Admin2: "Y", Country: "AFG"}

func TestHealthAndHome(t *testing.T) {
	app := newTestApp(&stubMarkets{}, &stubCommodities{}, &stubPrices{})

	status, body := get(t, app, "/health")
	if status != fiber.StatusOK || string(body) != `{"message":"WFP Food Prices API is running!"}` {
		t.Errorf("/health = %d %s", status, body)
	}

	status, body = get(t, app, "/")
	if status != fiber.StatusOK || string(body) != `{"message":"This is the WFP Food Prices API homepage!"}` {
		t.Errorf("/ = %d %s", status, body)
	}
}

func TestMarketsEndpoints(t *testing.T) {
	app := newTestApp(&stubMarkets{markets: []models.Market{testMarket}}, &stubCommodities{}, &stubPrices{})

	status, body := get(t, app, "/markets")
	if status != fiber.StatusOK {
		t.Fatalf("/markets status = %d", status)
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["market_name"] != "Test Market" {
		t.Errorf("/markets = %s", body)
	}
	for _, key := range []string{"market_id", "market_name", "admin1", "admin2", "country", "latitude", "longitude"} {
		if _, ok := list[0][key]; !ok {
			t.Errorf("market JSON missing %q", key)
		}
	}

	status, body = get(t, app, "/markets/1")
	if status != fiber.StatusOK {
		t.Errorf("/markets/1 status = %d body %s", status, body)
	}

	status, body = get(t, app, "/markets/999")
	if status != fiber.StatusNotFound {
		t.Fatalf("/markets/999 status = %d", status)
	}
	if string(body) != `{"detail":{"error_code":404,"message":"Market not found"}}` {
		t.Errorf("/markets/999 body = %s", body)
	}
}

func TestMarketsEmptyList(t *testing.T) {
	app := newTestApp(&stubMarkets{markets: []models.Market{}}, &stubCommodities{commodities: []models.Commodity{}}, &stubPrices{})

	for _, path := range []string{"/markets", "/commodities"} {
		status, body := get(t, app, path)
		if status != fiber.StatusOK || string(body) != "[]" {
			t.Errorf("%s = %d %s, want 200 []", path, status, body)
		}
	}
}

func TestCommodityNotFound(t *testing.T) {
	app := newTestApp(&stubMarkets{}, &stubCommodities{}, &stubPrices{})

	status, body := get(t, app, "/commodities/999")
	if status != fiber.StatusNotFound {
		t.Fatalf("status = %d", status)
	}
	if string(body) != `{"detail":{"error_code":404,"message":"Commodity not found"}}` {
		t.Errorf("body = %s", body)
	}
}

func TestPathIDValidation(t *testing.T) {
	markets := &stubMarkets{}
	app := newTestApp(markets, &stubCommodities{}, &stubPrices{})

	for _, path := range []string{"/markets/abc", "/commodities/1.5"} {
		status, body := get(t, app, path)
		if status != fiber.StatusUnprocessableEntity {
			t.Errorf("%s status = %d, want 422 (body %s)", path, status, body)
		}
	}
}

func TestPricesFilterParsing(t *testing.T) {
	prices := &stubPrices{prices: []models.Price{}}
	app := newTestApp(&stubMarkets{}, &stubCommodities{}, prices)

	status, body := get(t, app, "/prices?market_id=1&commodity_id=2&start_date=2025-01-01&end_date=2025-01-31")
	if status != fiber.StatusOK || string(body) != "[]" {
		t.Fatalf("status = %d body = %s", status, body)
	}
	f := prices.last
	if f.MarketID == nil || *f.MarketID != 1 || f.CommodityID == nil || *f.CommodityID != 2 {
		t.Errorf("ids not forwarded: %+v", f)
	}
	if f.StartDate == nil || f.StartDate.String() != "2025-01-01" || f.EndDate == nil || f.EndDate.String() != "2025-01-31" {
		t.Errorf("dates not forwarded: %+v", f)
	}

	get(t, app, "/prices")
	if prices.last.MarketID != nil || prices.last.StartDate != nil {
		t.Errorf("absent filters should be nil: %+v", prices.last)
	}
}

func TestPricesValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		loc    []string
	}{
		{"malformed start date", "/prices?start_date=2025-13-01", []string{"start_date"}},
		{"unparsable end date", "/prices?end_date=yesterday", []string{"end_date"}},
		{"non integer market", "/prices?market_id=abc", []string{"market_id"}},
		{"empty commodity", "/prices?commodity_id=", []string{"commodity_id"}},
		{"several at once", "/prices?market_id=x&start_date=01/02/2025", []string{"market_id", "start_date"}},
		{"latest non integer", "/latest-prices?commodity_id=wheat", []string{"commodity_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := &stubPrices{}
			app := newTestApp(&stubMarkets{}, &stubCommodities{}, prices)

			status, body := get(t, app, tt.target)
			if status != fiber.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (body %s)", status, body)
			}
			if prices.calls != 0 {
				t.Error("query engine reached with malformed input")
			}

			var resp struct {
				Detail []ValidationIssue `json:"detail"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Detail) != len(tt.loc) {
				t.Fatalf("issues = %+v, want %v", resp.Detail, tt.loc)
			}
			for i, name := range tt.loc {
				if got := resp.Detail[i].Loc; len(got) != 2 || got[0] != "query" || got[1] != name {
					t.Errorf("issue %d loc = %v, want [query %s]", i, got, name)
				}
			}
		})
	}
}

func TestLatestPricesIgnoresDateParams(t *testing.T) {
	prices := &stubPrices{prices: []models.Price{{MarketID: 1, CommodityID: 1, Date: models.NewDate(2025, 1, 2), Price: 12}}}
	app := newTestApp(&stubMarkets{}, &stubCommodities{}, prices)

	status, body := get(t, app, "/latest-prices?market_id=1&start_date=whenever")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body = %s", status, body)
	}
	if prices.last.StartDate != nil {
		t.Error("latest-prices must not forward date filters")
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["price"] != 12.0 || list[0]["date"] != "2025-01-02" {
		t.Errorf("body = %s", body)
	}
}

func TestStorageErrorsBecome500(t *testing.T) {
	boom := errors.New("connection refused")
	app := newTestApp(&stubMarkets{err: boom}, &stubCommodities{err: boom}, &stubPrices{err: boom})

	for _, path := range []string{"/markets", "/markets/1", "/commodities", "/commodities/1", "/prices", "/latest-prices"} {
		status, body := get(t, app, path)
		if status != fiber.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, status)
			continue
		}
		var resp struct {
			Detail struct {
				ErrorCode int    `json:"error_code"`
				Message   string `json:"message"`
			} `json:"detail"`
		}
		if err := json.Unmarshal(body, &resp); err != nil || resp.Detail.ErrorCode != 500 {
			t.Errorf("%s body = %s", path, body)
		}
	}
}
