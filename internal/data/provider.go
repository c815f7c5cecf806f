// Package data provides market data provider implementations.
//
// A Provider is the screener's view of the outside world: the listed
// expirations for a ticker, its current spot price, and the raw option
// chain for one (ticker, expiration, side). Everything downstream of
// this boundary is pure computation.
package data

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

// Provider supplies option-chain market data.
type Provider interface {
	// Expirations lists the available expiration dates for a ticker in
	// ascending order.
	Expirations(ticker string) ([]time.Time, error)

	// Spot returns the current underlying price.
	Spot(ticker string) (float64, error)

	// Chain returns the raw rows for one expiration and one side of the
	// chain (puts for SellPut, calls for CoveredCall).
	Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error)
}

// OptionSymbolFromParts formats an OCC-style option symbol (best-effort):
// <root><YYMMDD><C|P><strike*1000 padded to 8 digits>.
func OptionSymbolFromParts(underlying string, expiry time.Time, side scan.Side, strike float64) string {
	expDt := expiry.UTC().Format("060102")
	optType := "P"
	if side.IsCall() {
		optType = "C"
	}
	strikeInt := int(math.Round(strike * 1000))
	return fmt.Sprintf("%s%s%s%08d", strings.ToUpper(underlying), expDt, optType, strikeInt)
}
