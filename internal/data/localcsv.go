package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

// localCSVProvider serves a chain snapshot from a local CSV file, for
// offline runs against saved data. Expected header:
//
//	ticker,type,expiration,strike,bid,ask,last_price,iv,volume,open_interest,spot
//
// type is "call" or "put"; expiration is YYYY-MM-DD. Extra columns are
// ignored, missing numeric cells default to zero.
type localCSVProvider struct {
	path string

	// once guards the lazy parse: one provider may serve concurrent
	// scans (REST mode shares it across requests).
	once    sync.Once
	loadErr error
	rows    map[scan.Side][]scan.Row
	spot    float64
}

// NewLocalCSVProvider constructs a provider reading from path. The file
// is parsed lazily on first use and cached for subsequent calls.
func NewLocalCSVProvider(path string) Provider {
	return &localCSVProvider{path: path}
}

func (p *localCSVProvider) load() error {
	p.once.Do(func() { p.loadErr = p.parse() })
	return p.loadErr
}

func (p *localCSVProvider) parse() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open chain file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read chain csv: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("chain csv %s has no data rows", p.path)
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	getF := func(rec []string, name string) float64 {
		v, err := strconv.ParseFloat(get(rec, name), 64)
		if err != nil {
			return 0
		}
		return v
	}
	getI := func(rec []string, name string) int {
		v, err := strconv.Atoi(get(rec, name))
		if err != nil {
			return 0
		}
		return v
	}

	p.rows = map[scan.Side][]scan.Row{}
	for _, rec := range records[1:] {
		exp, err := time.Parse("2006-01-02", get(rec, "expiration"))
		if err != nil {
			continue
		}
		side := scan.SellPut
		if strings.EqualFold(get(rec, "type"), "call") {
			side = scan.CoveredCall
		}
		row := scan.Row{
			Ticker:         strings.ToUpper(get(rec, "ticker")),
			Strike:         getF(rec, "strike"),
			Bid:            getF(rec, "bid"),
			Ask:            getF(rec, "ask"),
			LastPrice:      getF(rec, "last_price"),
			ImpliedVol:     getF(rec, "iv"),
			Volume:         getI(rec, "volume"),
			OpenInterest:   getI(rec, "open_interest"),
			Expiration:     exp.UTC(),
			UnderlyingSpot: getF(rec, "spot"),
		}
		row.ContractSymbol = get(rec, "contract_symbol")
		if row.ContractSymbol == "" {
			row.ContractSymbol = OptionSymbolFromParts(row.Ticker, exp, side, row.Strike)
		}
		p.rows[side] = append(p.rows[side], row)
		if p.spot == 0 && row.UnderlyingSpot > 0 {
			p.spot = row.UnderlyingSpot
		}
	}

	return nil
}

func (p *localCSVProvider) Expirations(string) ([]time.Time, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	seen := map[time.Time]bool{}
	var out []time.Time
	for _, rows := range p.rows {
		for _, r := range rows {
			if !seen[r.Expiration] {
				seen[r.Expiration] = true
				out = append(out, r.Expiration)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (p *localCSVProvider) Spot(string) (float64, error) {
	if err := p.load(); err != nil {
		return 0, err
	}
	if p.spot <= 0 {
		return 0, fmt.Errorf("chain csv %s carries no spot column", p.path)
	}
	return p.spot, nil
}

func (p *localCSVProvider) Chain(ticker string, expiry time.Time, side scan.Side) ([]scan.Row, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	day := expiry.UTC().Truncate(24 * time.Hour)
	var out []scan.Row
	for _, r := range p.rows[side] {
		if r.Expiration.Truncate(24 * time.Hour).Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}
