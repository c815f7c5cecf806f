package scan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/pricing"
)

// Skip reasons surfaced in Result.Skipped.
const (
	SkipInvalidQuote      = "invalid_quote"
	SkipInvalidVolatility = "invalid_volatility"
)

// Scan runs the whole pipeline over a raw chain: enrich every row,
// partition data-quality defects into the skip report, filter the valid
// contracts through the checklist, and rank the survivors.
//
// Ordering is deterministic: annualized return descending, then spread
// ascending, then strike ascending, applied with a stable sort. An empty
// result is a successful outcome; only a malformed Criteria or Market
// fails the call.
func Scan(rows []Row, side Side, crit Criteria, mkt Market) (*Result, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidConfig, side)
	}
	if err := validate.Struct(mkt); err != nil {
		return nil, fmt.Errorf("%w: market: %v", ErrInvalidConfig, err)
	}
	if err := crit.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Side: side, Ticker: chainTicker(rows)}

	for _, row := range rows {
		c, err := Enrich(row, side, mkt)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Row: row, Reason: skipReason(err)})
			logger.Debugf("skipping strike %.2f exp %s: %v", row.Strike, row.Expiration.Format("2006-01-02"), err)
			continue
		}

		ok, err := crit.Passes(c)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Contracts = append(res.Contracts, c)
		}
	}

	sort.SliceStable(res.Contracts, func(i, j int) bool {
		a, b := res.Contracts[i], res.Contracts[j]
		if a.AnnualizedReturn != b.AnnualizedReturn {
			return a.AnnualizedReturn > b.AnnualizedReturn
		}
		if a.Spread != b.Spread {
			return a.Spread < b.Spread
		}
		return a.Strike < b.Strike
	})

	logger.Infof("scan %s %s: %d in, %d matched, %d skipped",
		res.Ticker, side, len(rows), len(res.Contracts), len(res.Skipped))
	return res, nil
}

// Evaluate is the single-contract path used for ad-hoc inspection:
// identical enrichment to Scan, no filtering or ranking.
func Evaluate(row Row, side Side, mkt Market) (Contract, error) {
	if err := validate.Struct(mkt); err != nil {
		return Contract{}, fmt.Errorf("%w: market: %v", ErrInvalidConfig, err)
	}
	return Enrich(row, side, mkt)
}

// chainTicker labels the result with the chain's ticker. A chain should
// be homogeneous; if rows disagree the label stays blank rather than
// misattributing the result to whichever row came first.
func chainTicker(rows []Row) string {
	ticker := ""
	for _, r := range rows {
		if r.Ticker == "" {
			continue
		}
		if ticker == "" {
			ticker = r.Ticker
			continue
		}
		if r.Ticker != ticker {
			return ""
		}
	}
	return ticker
}

// skipReason classifies a per-row enrichment failure for the skip report.
func skipReason(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidVolatility):
		return SkipInvalidVolatility
	case errors.Is(err, ErrInvalidQuote):
		return SkipInvalidQuote
	default:
		return err.Error()
	}
}
