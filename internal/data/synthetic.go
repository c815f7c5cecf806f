package data

import (
	"math"
	"math/rand"
	"time"

	"github.com/contactkeval/option-scan/internal/pricing"
	"github.com/contactkeval/option-scan/internal/scan"
)

// synthProvider generates a plausible option chain offline: strikes on a
// fixed grid around a seeded spot, premiums from the Black-Scholes price
// with a mild volatility smile, and a small random bid/ask spread.
// Useful for demos and for running the pipeline without network access.
type synthProvider struct {
	rng  *rand.Rand
	spot float64
}

// NewSyntheticProvider constructs a deterministic synthetic provider.
// The same seed always produces the same chain.
func NewSyntheticProvider(seed int64) Provider {
	rng := rand.New(rand.NewSource(seed))
	return &synthProvider{
		rng:  rng,
		spot: 100.0 + float64(rng.Intn(200)),
	}
}

func (s *synthProvider) Expirations(string) ([]time.Time, error) {
	base := time.Now().UTC().Truncate(24 * time.Hour)
	out := make([]time.Time, 0, 6)
	for _, days := range []int{7, 14, 30, 45, 60, 90} {
		out = append(out, base.AddDate(0, 0, days))
	}
	return out, nil
}

func (s *synthProvider) Spot(string) (float64, error) {
	return s.spot, nil
}

func (s *synthProvider) Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error) {
	days := int(expiry.Sub(time.Now().UTC()).Hours() / 24)
	if days < 1 {
		days = 1
	}
	T := float64(days) / 365.0
	const r = 0.05

	// Strike grid: ±30% of spot in 2.5% steps.
	step := math.Round(s.spot*0.025*100) / 100
	low := math.Round(s.spot*0.70/step) * step

	var rows []scan.Row
	for k := low; k <= s.spot*1.30; k += step {
		moneyness := math.Abs(math.Log(s.spot / k))
		sigma := 0.25 + 0.4*moneyness + s.rng.Float64()*0.02 // smile

		theo := pricing.Price(side.IsCall(), s.spot, k, T, r, sigma)
		if theo < 0.01 {
			continue
		}
		half := 0.01 + s.rng.Float64()*0.04
		bid := math.Max(0, theo-half)
		ask := theo + half

		rows = append(rows, scan.Row{
			Ticker:         ticker,
			ContractSymbol: OptionSymbolFromParts(ticker, expiry, side, k),
			Strike:         math.Round(k*100) / 100,
			Bid:            math.Round(bid*100) / 100,
			Ask:            math.Round(ask*100) / 100,
			LastPrice:      math.Round(theo*100) / 100,
			ImpliedVol:     sigma,
			Volume:         s.rng.Intn(5000),
			OpenInterest:   s.rng.Intn(20000),
			Expiration:     expiry,
			UnderlyingSpot: s.spot,
		})
	}
	return rows, nil
}
