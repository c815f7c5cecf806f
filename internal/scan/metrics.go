package scan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/contactkeval/option-scan/internal/pricing"
)

// contractMultiplier is the US equity option share multiplier.
const contractMultiplier = 100

// Enrich derives all trading metrics for one chain row.
//
// Failure modes are per-row, never fatal to a scan:
//   - ErrInvalidQuote: ask < bid, no market on either side, or a mid at
//     or above strike on the put side (margin basis would be ≤ 0)
//   - pricing.ErrInvalidVolatility: missing/non-positive feed volatility
//     (unless Market.BackoutIV recovers one from the mid price)
//
// Any division in the metric formulas is guarded so that a defective row
// is excluded instead of leaking NaN or Inf into ranking.
func Enrich(row Row, side Side, mkt Market) (Contract, error) {
	if !side.Valid() {
		return Contract{}, fmt.Errorf("%w: unknown side %q", ErrInvalidConfig, side)
	}

	if row.Bid < 0 || row.Ask < 0 || row.Ask < row.Bid {
		return Contract{}, fmt.Errorf("%w: bid=%.4f ask=%.4f", ErrInvalidQuote, row.Bid, row.Ask)
	}
	if row.Bid == 0 && row.Ask == 0 {
		return Contract{}, fmt.Errorf("%w: no market (bid and ask both zero)", ErrInvalidQuote)
	}
	if row.Strike <= 0 {
		return Contract{}, fmt.Errorf("%w: non-positive strike %.4f", ErrInvalidQuote, row.Strike)
	}

	spot := mkt.spotFor(row)
	if spot <= 0 {
		return Contract{}, fmt.Errorf("%w: no usable spot price", ErrInvalidQuote)
	}

	mid := (row.Bid + row.Ask) / 2
	spread := row.Ask - row.Bid
	spreadPct := 0.0
	if mid > 0 {
		spreadPct = spread / mid
	}

	days := daysToExpiry(mkt.ValuationDate, row.Expiration)
	T := float64(days) / 365.0

	sigma := row.ImpliedVol
	if sigma <= 0 && mkt.BackoutIV && mid > 0 {
		iv, err := pricing.ImpliedVol(side.IsCall(), mid, spot, row.Strike, T, mkt.RiskFreeRate)
		if err != nil {
			return Contract{}, fmt.Errorf("%w: back-out from mid failed: %v", pricing.ErrInvalidVolatility, err)
		}
		sigma = iv
	}

	greeks, err := pricing.Model(side.IsCall(), spot, row.Strike, T, mkt.RiskFreeRate, sigma)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidVolatility) {
			return Contract{}, err
		}
		return Contract{}, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}

	c := Contract{
		Row:          row,
		Side:         side,
		Mid:          mid,
		Spread:       spread,
		SpreadPct:    spreadPct,
		Delta:        greeks.Delta,
		ITMProb:      greeks.ITMProb,
		DaysToExpiry: days,
	}
	c.ImpliedVol = sigma

	switch side {
	case SellPut:
		// Cash-secured basis: cash to buy 100 shares at strike, less the
		// premium collected up front.
		basis := row.Strike - mid
		if basis <= 0 {
			return Contract{}, fmt.Errorf("%w: mid %.4f leaves no margin basis at strike %.2f", ErrInvalidQuote, mid, row.Strike)
		}
		c.MarginEstimate = basis * contractMultiplier
		c.SingleReturn = mid / basis
		c.StrikeDiscountPct = (spot - row.Strike) / spot

	case CoveredCall:
		// The owned shares are the capital at work; premium yields
		// against their current value.
		c.SingleReturn = mid / spot
		c.StrikePremiumPct = (row.Strike - spot) / spot
	}

	c.AnnualizedReturn = c.SingleReturn * (365.0 / float64(days))

	if !isFinite(c.AnnualizedReturn) || !isFinite(c.SingleReturn) {
		return Contract{}, fmt.Errorf("%w: non-finite return", ErrInvalidQuote)
	}
	return c, nil
}

// daysToExpiry counts calendar days between the valuation date and the
// expiration, flooring at one so a same-day expiry never divides by zero.
func daysToExpiry(valuation, expiration time.Time) int {
	v := valuation.UTC().Truncate(24 * time.Hour)
	e := expiration.UTC().Truncate(24 * time.Hour)
	days := int(e.Sub(v).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
