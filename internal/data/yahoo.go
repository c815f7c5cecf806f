package data

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/scan"
)

const yahooBaseURL = "https://query2.finance.yahoo.com"

// yahooProvider implements Provider against the Yahoo Finance v7 options
// endpoint. Yahoo serves expirations, the underlying quote, and both
// sides of the chain from the same endpoint, so every method is one GET.
type yahooProvider struct {
	client *resty.Client
}

// NewYahooProvider constructs a Yahoo-backed data provider with retries
// and timeouts suitable for interactive use.
func NewYahooProvider() Provider {
	return newYahooProvider(yahooBaseURL)
}

func newYahooProvider(baseURL string) *yahooProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(800 * time.Millisecond).
		SetHeader("User-Agent", "Mozilla/5.0 (option-scan)").
		SetHeader("Accept", "application/json")
	return &yahooProvider{client: client}
}

// yahooQuoteRow is one strike entry in Yahoo's calls/puts arrays.
type yahooQuoteRow struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	LastPrice         float64 `json:"lastPrice"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Volume            int     `json:"volume"`
	OpenInterest      int     `json:"openInterest"`
	Expiration        int64   `json:"expiration"`
	InTheMoney        bool    `json:"inTheMoney"`
}

type yahooChainResp struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []yahooQuoteRow `json:"calls"`
				Puts           []yahooQuoteRow `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// fetch retrieves the chain document for a ticker; expiry 0 means "front
// expiration plus the full expirations list".
func (p *yahooProvider) fetch(ticker string, expiry int64) (*yahooChainResp, error) {
	out := &yahooChainResp{}
	req := p.client.R().SetResult(out)
	if expiry > 0 {
		req.SetQueryParam("date", strconv.FormatInt(expiry, 10))
	}
	resp, err := req.Get("/v7/finance/options/" + ticker)
	if err != nil {
		return nil, fmt.Errorf("yahoo options request for %s: %w", ticker, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo options request for %s: HTTP %d", ticker, resp.StatusCode())
	}
	if len(out.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("yahoo returned no option chain for %s", ticker)
	}
	return out, nil
}

func (p *yahooProvider) Expirations(ticker string) ([]time.Time, error) {
	doc, err := p.fetch(ticker, 0)
	if err != nil {
		return nil, err
	}
	epochs := doc.OptionChain.Result[0].ExpirationDates
	out := make([]time.Time, 0, len(epochs))
	for _, e := range epochs {
		out = append(out, time.Unix(e, 0).UTC())
	}
	return out, nil
}

func (p *yahooProvider) Spot(ticker string) (float64, error) {
	doc, err := p.fetch(ticker, 0)
	if err != nil {
		return 0, err
	}
	spot := doc.OptionChain.Result[0].Quote.RegularMarketPrice
	if spot <= 0 {
		return 0, fmt.Errorf("yahoo returned no usable spot for %s", ticker)
	}
	return spot, nil
}

func (p *yahooProvider) Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error) {
	doc, err := p.fetch(ticker, expiry.Unix())
	if err != nil {
		return nil, err
	}
	res := doc.OptionChain.Result[0]
	if len(res.Options) == 0 {
		return nil, fmt.Errorf("no chain for %s at %s", ticker, expiry.Format("2006-01-02"))
	}

	quotes := res.Options[0].Puts
	if side.IsCall() {
		quotes = res.Options[0].Calls
	}

	spot := res.Quote.RegularMarketPrice
	rows := make([]scan.Row, 0, len(quotes))
	for _, q := range quotes {
		exp := expiry.UTC()
		if q.Expiration > 0 {
			exp = time.Unix(q.Expiration, 0).UTC()
		}
		rows = append(rows, scan.Row{
			Ticker:         ticker,
			ContractSymbol: q.ContractSymbol,
			Strike:         q.Strike,
			Bid:            q.Bid,
			Ask:            q.Ask,
			LastPrice:      q.LastPrice,
			ImpliedVol:     q.ImpliedVolatility,
			Volume:         q.Volume,
			OpenInterest:   q.OpenInterest,
			Expiration:     exp,
			UnderlyingSpot: spot,
		})
	}
	logger.Debugf("yahoo chain %s %s %s: %d rows", ticker, expiry.Format("2006-01-02"), side, len(rows))
	return rows, nil
}
