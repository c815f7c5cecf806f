package scan

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Criteria is the trader's acceptability checklist. Every threshold is
// optional: a nil field disables that check, and a contract must pass
// every enabled check to survive.
//
// MaxSpread compares the absolute dollar spread (ask-bid), not the
// spread as a percentage of mid; the two differ in units and this choice
// is fixed here rather than configurable.
type Criteria struct {
	// DeltaLow/DeltaHigh bound |delta|, inclusive on both ends.
	DeltaLow  *float64 `json:"delta_low,omitempty" validate:"omitempty,gte=0,lte=1"`
	DeltaHigh *float64 `json:"delta_high,omitempty" validate:"omitempty,gte=0,lte=1"`

	MinAnnualReturn *float64 `json:"min_annual_return,omitempty"`

	// MaxSpread is in dollars per share, e.g. 0.10.
	MaxSpread *float64 `json:"max_spread,omitempty" validate:"omitempty,gte=0"`

	MinVolume       *int `json:"min_volume,omitempty" validate:"omitempty,gte=0"`
	MinOpenInterest *int `json:"min_open_interest,omitempty" validate:"omitempty,gte=0"`

	// IVMin/IVMax bound the implied volatility as a decimal fraction.
	IVMin *float64 `json:"iv_min,omitempty" validate:"omitempty,gte=0"`
	IVMax *float64 `json:"iv_max,omitempty" validate:"omitempty,gte=0"`

	// MinPremium is the minimum mid price in dollars per share.
	MinPremium *float64 `json:"min_premium,omitempty" validate:"omitempty,gte=0"`

	// Expr is an optional free-form predicate over the enriched fields,
	// e.g. "annualized_return > 0.15 && volume >= 100". It must evaluate
	// to a boolean.
	Expr string `json:"expr,omitempty"`

	compiled *govaluate.EvaluableExpression
}

// Validate checks the checklist for internal consistency and compiles
// the optional expression. Any defect is ErrInvalidConfig: a malformed
// checklist fails the whole scan, it is never silently corrected.
func (c *Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.DeltaLow != nil && c.DeltaHigh != nil && *c.DeltaLow > *c.DeltaHigh {
		return fmt.Errorf("%w: delta_low %.2f > delta_high %.2f", ErrInvalidConfig, *c.DeltaLow, *c.DeltaHigh)
	}
	if c.IVMin != nil && c.IVMax != nil && *c.IVMin > *c.IVMax {
		return fmt.Errorf("%w: iv_min %.2f > iv_max %.2f", ErrInvalidConfig, *c.IVMin, *c.IVMax)
	}
	if c.Expr != "" {
		expr, err := govaluate.NewEvaluableExpression(c.Expr)
		if err != nil {
			return fmt.Errorf("%w: bad expr %q: %v", ErrInvalidConfig, c.Expr, err)
		}
		c.compiled = expr
	}
	return nil
}

// Passes evaluates every enabled threshold against an enriched contract.
// All enabled checks must hold; with nothing configured the checklist is
// vacuously true. An expression evaluation failure is returned as an
// error so the caller can fail the scan rather than misreport a filter
// decision.
func (c *Criteria) Passes(k Contract) (bool, error) {
	absDelta := math.Abs(k.Delta)
	if c.DeltaLow != nil && absDelta < *c.DeltaLow {
		return false, nil
	}
	if c.DeltaHigh != nil && absDelta > *c.DeltaHigh {
		return false, nil
	}
	if c.MinAnnualReturn != nil && k.AnnualizedReturn < *c.MinAnnualReturn {
		return false, nil
	}
	if c.MaxSpread != nil && k.Spread > *c.MaxSpread {
		return false, nil
	}
	if c.MinVolume != nil && k.Volume < *c.MinVolume {
		return false, nil
	}
	if c.MinOpenInterest != nil && k.OpenInterest < *c.MinOpenInterest {
		return false, nil
	}
	if c.IVMin != nil && k.ImpliedVol < *c.IVMin {
		return false, nil
	}
	if c.IVMax != nil && k.ImpliedVol > *c.IVMax {
		return false, nil
	}
	if c.MinPremium != nil && k.Mid < *c.MinPremium {
		return false, nil
	}

	if c.Expr != "" {
		if c.compiled == nil {
			if err := c.Validate(); err != nil {
				return false, err
			}
		}
		out, err := c.compiled.Evaluate(exprParams(k))
		if err != nil {
			return false, fmt.Errorf("%w: expr %q: %v", ErrInvalidConfig, c.Expr, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return false, fmt.Errorf("%w: expr %q is not a boolean predicate", ErrInvalidConfig, c.Expr)
		}
		return ok, nil
	}
	return true, nil
}

// exprParams exposes the enriched fields to the expression evaluator
// under the same snake_case names used in reports. Counters are widened
// to float64 because govaluate only does arithmetic on floats.
func exprParams(k Contract) map[string]interface{} {
	return map[string]interface{}{
		"strike":              k.Strike,
		"bid":                 k.Bid,
		"ask":                 k.Ask,
		"mid":                 k.Mid,
		"spread":              k.Spread,
		"spread_pct":          k.SpreadPct,
		"delta":               math.Abs(k.Delta),
		"delta_signed":        k.Delta,
		"itm_prob":            k.ITMProb,
		"iv":                  k.ImpliedVol,
		"days_to_exp":         float64(k.DaysToExpiry),
		"single_return":       k.SingleReturn,
		"annualized_return":   k.AnnualizedReturn,
		"volume":              float64(k.Volume),
		"open_interest":       float64(k.OpenInterest),
		"margin_estimate":     k.MarginEstimate,
		"strike_discount_pct": k.StrikeDiscountPct,
		"strike_premium_pct":  k.StrikePremiumPct,
	}
}
