// Package testutil holds shared fixtures for package tests: a pinned
// valuation market and a small hand-built option chain with known
// defects.
package testutil

import (
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

// ValuationDate is the pinned "today" used by fixtures, so days-to-expiry
// in tests never depends on the wall clock.
var ValuationDate = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

// FixedMarket returns the market constants used across tests:
// spot 160, risk-free 5%, pinned valuation date.
func FixedMarket() scan.Market {
	return scan.Market{
		Spot:          160.0,
		RiskFreeRate:  0.05,
		ValuationDate: ValuationDate,
	}
}

// PutRow builds a valid put-side chain row expiring in `days` days.
func PutRow(strike, bid, ask, iv float64, days int) scan.Row {
	return scan.Row{
		Ticker:       "TEST",
		Strike:       strike,
		Bid:          bid,
		Ask:          ask,
		ImpliedVol:   iv,
		Volume:       500,
		OpenInterest: 1000,
		Expiration:   ValuationDate.AddDate(0, 0, days),
	}
}

// Chain returns a mixed-quality put chain: three clean rows, one with a
// crossed market, one with no market, and one missing its volatility.
func Chain() []scan.Row {
	rows := []scan.Row{
		PutRow(150, 1.90, 2.10, 0.40, 30),
		PutRow(155, 2.80, 3.00, 0.38, 30),
		PutRow(145, 1.20, 1.40, 0.42, 30),
	}

	crossed := PutRow(140, 1.50, 1.00, 0.40, 30)
	noMarket := PutRow(135, 0, 0, 0.40, 30)
	noVol := PutRow(130, 0.80, 1.00, 0, 30)

	return append(rows, crossed, noMarket, noVol)
}
