package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-scan/internal/data"
	"github.com/contactkeval/option-scan/internal/logger"
	"github.com/contactkeval/option-scan/internal/report"
	"github.com/contactkeval/option-scan/internal/scan"
)

func main() {
	ticker := flag.String("ticker", "AAPL", "underlying ticker")
	sideStr := flag.String("side", "put", "strategy side: put (cash-secured put) or call (covered call)")
	expStr := flag.String("exp", "", "expiration date YYYY-MM-DD; empty scans all listed expirations")
	criteriaPath := flag.String("criteria", "", "path to JSON criteria file")
	spotOverride := flag.Float64("spot", 0, "override the underlying spot price")
	rate := flag.Float64("rate", 0.05, "annual risk-free rate as a decimal")
	backoutIV := flag.Bool("backout-iv", false, "recover missing implied vol from the mid price")
	csvPath := flag.String("csv", "", "read the chain from a local CSV snapshot instead of Yahoo")
	synthetic := flag.Bool("synthetic", false, "use the offline synthetic chain provider")
	outDir := flag.String("out", "./out", "report output directory")
	rest := flag.Bool("rest", false, "run as REST server (accept scan jobs)")
	port := flag.String("port", ":8080", "REST server listen address")
	verbosity := flag.Int("v", 1, "verbosity: 0=errors,1=info,2=debug,3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	// Optional .env for REDIS_URL etc.; absence is not an error.
	_ = godotenv.Load()

	side, err := scan.ParseSide(*sideStr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	crit, err := loadCriteria(*criteriaPath)
	if err != nil {
		log.Fatalf("criteria: %v", err)
	}

	prov := chooseProvider(*csvPath, *synthetic)

	if *rest {
		serveREST(prov, crit, *rate, *port)
		return
	}

	start := time.Now()
	res, err := runScan(prov, *ticker, side, crit, *expStr, *spotOverride, *rate, *backoutIV)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Printf("[warn] could not create output dir %s: %v", *outDir, err)
	}
	_ = report.WriteJSON(res, *outDir)
	_ = report.WriteCSV(res.Contracts, *outDir)

	printTop(res, 15)
	log.Printf("[done] finished in %v, %d candidates (%d skipped), reports in %s",
		time.Since(start), len(res.Contracts), len(res.Skipped), *outDir)
}

// chooseProvider picks the chain source and wraps it with the redis
// cache when REDIS_URL is set.
func chooseProvider(csvPath string, synthetic bool) data.Provider {
	var prov data.Provider
	switch {
	case csvPath != "":
		prov = data.NewLocalCSVProvider(csvPath)
		log.Printf("[info] local CSV provider enabled (%s)", csvPath)
	case synthetic:
		prov = data.NewSyntheticProvider(time.Now().UnixNano())
		log.Printf("[info] synthetic provider enabled")
	default:
		prov = data.NewYahooProvider()
		log.Printf("[info] yahoo provider enabled")
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		cached, err := data.NewCachedProvider(prov, url, 10*time.Minute)
		if err != nil {
			log.Printf("[warn] redis cache disabled: %v", err)
			return prov
		}
		log.Printf("[info] redis cache enabled")
		return cached
	}
	return prov
}

func loadCriteria(path string) (scan.Criteria, error) {
	var crit scan.Criteria
	if path == "" {
		return crit, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return crit, err
	}
	if err := json.Unmarshal(b, &crit); err != nil {
		return crit, fmt.Errorf("invalid criteria file: %w", err)
	}
	return crit, nil
}

// runScan gathers the chain (one expiration or all of them) and runs a
// single ranked scan over the union.
func runScan(prov data.Provider, ticker string, side scan.Side, crit scan.Criteria, expStr string, spotOverride, rate float64, backoutIV bool) (*scan.Result, error) {
	var expiries []time.Time
	if expStr != "" {
		exp, err := time.Parse("2006-01-02", expStr)
		if err != nil {
			return nil, fmt.Errorf("bad expiration %q: %w", expStr, err)
		}
		expiries = []time.Time{exp.UTC()}
	} else {
		var err error
		expiries, err = prov.Expirations(ticker)
		if err != nil {
			return nil, fmt.Errorf("listing expirations: %w", err)
		}
	}

	spot := spotOverride
	if spot <= 0 {
		var err error
		spot, err = prov.Spot(ticker)
		if err != nil {
			return nil, fmt.Errorf("fetching spot: %w", err)
		}
	}

	var rows []scan.Row
	for _, exp := range expiries {
		chain, err := prov.Chain(ticker, exp, side)
		if err != nil {
			logger.Errorf("chain %s %s: %v", ticker, exp.Format("2006-01-02"), err)
			continue
		}
		rows = append(rows, chain...)
	}

	mkt := scan.Market{
		Spot:          spot,
		RiskFreeRate:  rate,
		ValuationDate: time.Now().UTC(),
		BackoutIV:     backoutIV,
	}
	return scan.Scan(rows, side, crit, mkt)
}

// printTop renders the first n ranked candidates to stdout.
func printTop(res *scan.Result, n int) {
	fmt.Printf("%-22s %8s %8s %8s %8s %8s %6s %8s\n",
		"contract", "strike", "mid", "spread", "|delta|", "itm%", "dte", "annual%")
	for i, c := range res.Contracts {
		if i >= n {
			break
		}
		delta := c.Delta
		if delta < 0 {
			delta = -delta
		}
		fmt.Printf("%-22s %8.2f %8.2f %8.2f %8.3f %7.1f%% %6d %7.1f%%\n",
			c.ContractSymbol, c.Strike, c.Mid, c.Spread, delta,
			c.ITMProb*100, c.DaysToExpiry, c.AnnualizedReturn*100)
	}
}

// serveREST exposes the scanner over HTTP: /scan runs a batch scan,
// /health is a liveness probe.
func serveREST(prov data.Provider, crit scan.Criteria, rate float64, port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		side, err := scan.ParseSide(q.Get("side"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ticker := q.Get("ticker")
		if ticker == "" {
			http.Error(w, "missing ticker", http.StatusBadRequest)
			return
		}
		log.Printf("[info] received /scan request for %s %s", ticker, side)
		res, err := runScan(prov, ticker, side, crit, q.Get("exp"), 0, rate, q.Get("backout_iv") == "true")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	log.Printf("[info] starting REST server on %s", port)
	log.Fatal(http.ListenAndServe(port, mux))
}
