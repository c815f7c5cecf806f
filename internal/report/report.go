// Package report writes scan results to disk as JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contactkeval/option-scan/internal/scan"
)

// WriteJSON writes the full result, skip report included, to
// scan.json in outdir.
func WriteJSON(res *scan.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "scan.json"), b, 0644)
}

// WriteCSV writes the ranked contracts to scan.csv in outdir, one row
// per surviving contract in ranked order.
func WriteCSV(contracts []scan.Contract, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "scan.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{
		"ticker", "contract_symbol", "expiration", "strike", "bid", "ask",
		"mid", "spread", "iv", "delta", "itm_prob", "days_to_exp",
		"single_return", "annualized_return", "margin_estimate",
		"strike_discount_pct", "strike_premium_pct", "volume", "open_interest",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, c := range contracts {
		row := []string{
			c.Ticker,
			c.ContractSymbol,
			c.Expiration.Format("2006-01-02"),
			fmt.Sprintf("%.2f", c.Strike),
			fmt.Sprintf("%.2f", c.Bid),
			fmt.Sprintf("%.2f", c.Ask),
			fmt.Sprintf("%.3f", c.Mid),
			fmt.Sprintf("%.3f", c.Spread),
			fmt.Sprintf("%.4f", c.ImpliedVol),
			fmt.Sprintf("%.4f", c.Delta),
			fmt.Sprintf("%.4f", c.ITMProb),
			fmt.Sprintf("%d", c.DaysToExpiry),
			fmt.Sprintf("%.4f", c.SingleReturn),
			fmt.Sprintf("%.4f", c.AnnualizedReturn),
			fmt.Sprintf("%.2f", c.MarginEstimate),
			fmt.Sprintf("%.4f", c.StrikeDiscountPct),
			fmt.Sprintf("%.4f", c.StrikePremiumPct),
			fmt.Sprintf("%d", c.Volume),
			fmt.Sprintf("%d", c.OpenInterest),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
