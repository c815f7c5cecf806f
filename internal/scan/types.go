// Package scan turns a raw option chain into a ranked shortlist of
// selling candidates. It enriches each chain row with model and trading
// metrics, filters the survivors through a configurable checklist, and
// ranks them by annualized return.
package scan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Side selects the selling strategy being screened. It drives the sign
// conventions and the return basis in every derived metric.
type Side string

const (
	// SellPut screens cash-secured short puts.
	SellPut Side = "sell_put"
	// CoveredCall screens short calls written against owned shares.
	CoveredCall Side = "covered_call"
)

// ErrInvalidQuote reports a malformed bid/ask pair (ask below bid, no
// market on either side, or a premium that makes the margin basis
// non-positive). Rows failing this way are excluded and reported, never
// ranked.
var ErrInvalidQuote = errors.New("invalid quote")

// ErrInvalidConfig reports a malformed Criteria or Market. Unlike the
// per-row errors it fails the whole scan call.
var ErrInvalidConfig = errors.New("invalid configuration")

// ParseSide maps user-facing spellings onto a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "put", "sellput", "sell_put", "csp":
		return SellPut, nil
	case "call", "coveredcall", "covered_call", "cc":
		return CoveredCall, nil
	}
	return "", fmt.Errorf("%w: unknown side %q", ErrInvalidConfig, s)
}

// IsCall reports whether the short leg being screened is a call.
func (s Side) IsCall() bool { return s == CoveredCall }

// Valid reports whether s is one of the two known strategies.
func (s Side) Valid() bool { return s == SellPut || s == CoveredCall }

// Row is one raw option-chain entry as delivered by a market-data
// provider: one strike on one expiration for one side of the chain.
// Provider-specific extras beyond these fields are dropped at the feed
// boundary.
type Row struct {
	Ticker         string    `json:"ticker,omitempty"`
	ContractSymbol string    `json:"contract_symbol,omitempty"`
	Strike         float64   `json:"strike"`
	Bid            float64   `json:"bid"`
	Ask            float64   `json:"ask"`
	// LastPrice is informational only; mid price is always derived from
	// bid/ask.
	LastPrice  float64 `json:"last_price,omitempty"`
	// ImpliedVol is the feed volatility as a decimal fraction. Zero or
	// negative means missing.
	ImpliedVol   float64   `json:"iv"`
	Volume       int       `json:"volume"`
	OpenInterest int       `json:"open_interest"`
	Expiration   time.Time `json:"expiration"`
	// UnderlyingSpot is the spot the provider saw when it fetched the
	// chain. Market.Spot takes precedence when set.
	UnderlyingSpot float64 `json:"underlying_spot,omitempty"`
}

// Market carries the scan-wide constants. Passed explicitly into every
// call so the engine stays a pure function of its arguments.
type Market struct {
	// Spot is the underlying price used in every formula. If zero, the
	// per-row UnderlyingSpot is used instead.
	Spot float64 `json:"spot" validate:"gte=0"`

	RiskFreeRate float64 `json:"risk_free_rate" validate:"gte=0,lte=1"`

	ValuationDate time.Time `json:"valuation_date"`

	// BackoutIV enables recovering a missing implied volatility from the
	// mid price via the pricing model. Off by default: a zero feed
	// volatility is then reported as a data-quality skip.
	BackoutIV bool `json:"backout_iv,omitempty"`
}

// spotFor resolves the effective spot for a row.
func (m Market) spotFor(r Row) float64 {
	if m.Spot > 0 {
		return m.Spot
	}
	return r.UnderlyingSpot
}

// Contract is a Row enriched with everything the checklist and the
// ranking need. It is a value derived deterministically from one Row plus
// the scan's Side and Market; it is never mutated after Enrich returns.
type Contract struct {
	Row
	Side Side `json:"side"`

	Mid       float64 `json:"mid"`
	Spread    float64 `json:"spread"`
	SpreadPct float64 `json:"spread_pct"`

	Delta   float64 `json:"delta"`    // signed; filters use |Delta|
	ITMProb float64 `json:"itm_prob"` // within [0,1]

	DaysToExpiry     int     `json:"days_to_exp"`
	SingleReturn     float64 `json:"single_return"`
	AnnualizedReturn float64 `json:"annualized_return"`

	// StrikeDiscountPct is set for SellPut: (spot-strike)/spot, positive
	// when the strike sits below spot.
	StrikeDiscountPct float64 `json:"strike_discount_pct,omitempty"`
	// StrikePremiumPct is set for CoveredCall: (strike-spot)/spot,
	// positive when there is upside room before assignment.
	StrikePremiumPct float64 `json:"strike_premium_pct,omitempty"`
	// MarginEstimate is the cash-secured requirement for SellPut,
	// (strike-mid)*100. Zero for CoveredCall (the shares are the
	// collateral).
	MarginEstimate float64 `json:"margin_estimate,omitempty"`
}

// Skip records one excluded row together with why it was dropped, so a
// scan never silently loses data-quality defects.
type Skip struct {
	Row    Row    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of one scan: the ranked survivors plus the skip
// report. Built fresh per call and never mutated after return.
type Result struct {
	Ticker    string     `json:"ticker,omitempty"`
	Side      Side       `json:"side"`
	Contracts []Contract `json:"contracts"`
	Skipped   []Skip     `json:"skipped,omitempty"`
}
