package data

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

const chainFixture = `{
  "optionChain": {
    "result": [
      {
        "underlyingSymbol": "NVDA",
        "expirationDates": [1750377600, 1752969600],
        "quote": {"regularMarketPrice": 160.5},
        "options": [
          {
            "expirationDate": 1750377600,
            "calls": [
              {"contractSymbol": "NVDA250620C00170000", "strike": 170, "bid": 1.8, "ask": 2.0,
               "lastPrice": 1.9, "impliedVolatility": 0.41, "volume": 1200, "openInterest": 4000,
               "expiration": 1750377600, "inTheMoney": false}
            ],
            "puts": [
              {"contractSymbol": "NVDA250620P00150000", "strike": 150, "bid": 1.9, "ask": 2.1,
               "lastPrice": 2.0, "impliedVolatility": 0.40, "volume": 800, "openInterest": 3000,
               "expiration": 1750377600, "inTheMoney": false},
              {"contractSymbol": "NVDA250620P00145000", "strike": 145, "bid": 1.2, "ask": 1.4,
               "lastPrice": 1.3, "impliedVolatility": 0.42, "volume": 300, "openInterest": 900,
               "expiration": 1750377600, "inTheMoney": false}
            ]
          }
        ]
      }
    ]
  }
}`

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chainFixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooExpirations(t *testing.T) {
	prov := newYahooProvider(fixtureServer(t).URL)

	exps, err := prov.Expirations("NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exps) != 2 {
		t.Fatalf("expected 2 expirations, got %d", len(exps))
	}
	if !exps[0].Before(exps[1]) {
		t.Fatalf("expirations not ascending: %v", exps)
	}
}

func TestYahooSpot(t *testing.T) {
	prov := newYahooProvider(fixtureServer(t).URL)

	spot, err := prov.Spot("NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spot != 160.5 {
		t.Fatalf("spot = %f, want 160.5", spot)
	}
}

func TestYahooChain(t *testing.T) {
	prov := newYahooProvider(fixtureServer(t).URL)
	expiry := time.Unix(1750377600, 0).UTC()

	puts, err := prov.Chain("NVDA", expiry, scan.SellPut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(puts) != 2 {
		t.Fatalf("expected 2 put rows, got %d", len(puts))
	}
	row := puts[0]
	if row.Strike != 150 || row.Bid != 1.9 || row.Ask != 2.1 || row.ImpliedVol != 0.40 {
		t.Fatalf("put row mapped wrong: %+v", row)
	}
	if row.UnderlyingSpot != 160.5 {
		t.Fatalf("spot not attached to row: %+v", row)
	}
	if !row.Expiration.Equal(expiry) {
		t.Fatalf("expiration mapped wrong: %v", row.Expiration)
	}

	calls, err := prov.Chain("NVDA", expiry, scan.CoveredCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 || calls[0].Strike != 170 {
		t.Fatalf("call side mapped wrong: %+v", calls)
	}
}

func TestYahooHTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	prov := newYahooProvider(srv.URL)
	if _, err := prov.Spot("NVDA"); err == nil {
		t.Fatalf("expected error on HTTP 404")
	}
}
