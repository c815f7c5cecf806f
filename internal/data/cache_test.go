package data

import (
	"testing"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

// stubProvider returns canned data and counts calls, standing in for a
// live feed behind the cache.
type stubProvider struct {
	chainCalls int
}

func (s *stubProvider) Expirations(string) ([]time.Time, error) {
	return []time.Time{time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *stubProvider) Spot(string) (float64, error) { return 160.5, nil }

func (s *stubProvider) Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error) {
	s.chainCalls++
	return []scan.Row{{
		Ticker:     ticker,
		Strike:     150,
		Bid:        1.90,
		Ask:        2.10,
		ImpliedVol: 0.40,
		Expiration: expiry,
	}}, nil
}

func TestNewCachedProviderRejectsBadURL(t *testing.T) {
	if _, err := NewCachedProvider(&stubProvider{}, "not-a-url", time.Minute); err == nil {
		t.Fatalf("expected error for malformed redis url")
	}
}

// With no redis listening, every lookup must fall through to the inner
// provider instead of surfacing a cache error. The URL parses fine but
// nothing answers on port 1.
func TestCachedProviderDegradesWithoutRedis(t *testing.T) {
	inner := &stubProvider{}
	prov, err := NewCachedProvider(inner, "redis://127.0.0.1:1/0", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exps, err := prov.Expirations("NVDA")
	if err != nil || len(exps) != 1 {
		t.Fatalf("expirations did not degrade to inner: %v, %v", exps, err)
	}

	spot, err := prov.Spot("NVDA")
	if err != nil || spot != 160.5 {
		t.Fatalf("spot did not degrade to inner: %f, %v", spot, err)
	}

	june := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	rows, err := prov.Chain("NVDA", june, scan.SellPut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Strike != 150 {
		t.Fatalf("chain did not degrade to inner: %+v", rows)
	}
	if inner.chainCalls != 1 {
		t.Fatalf("inner chain called %d times, want 1", inner.chainCalls)
	}
}
