package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/contactkeval/option-scan/internal/scan"
)

const csvFixture = `ticker,type,expiration,strike,bid,ask,last_price,iv,volume,open_interest,spot
NVDA,put,2025-06-20,150,1.90,2.10,2.00,0.40,800,3000,160.5
NVDA,put,2025-06-20,145,1.20,1.40,1.30,0.42,300,900,160.5
NVDA,put,2025-07-18,140,2.50,2.70,2.60,0.45,150,500,160.5
NVDA,call,2025-06-20,170,1.80,2.00,1.90,0.41,1200,4000,160.5
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.csv")
	if err := os.WriteFile(path, []byte(csvFixture), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLocalCSVProvider(t *testing.T) {
	prov := NewLocalCSVProvider(writeFixture(t))

	exps, err := prov.Expirations("NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exps) != 2 {
		t.Fatalf("expected 2 expirations, got %v", exps)
	}
	if !exps[0].Before(exps[1]) {
		t.Fatalf("expirations not ascending: %v", exps)
	}

	spot, err := prov.Spot("NVDA")
	if err != nil || spot != 160.5 {
		t.Fatalf("spot = %f, %v", spot, err)
	}

	june := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	puts, err := prov.Chain("NVDA", june, scan.SellPut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(puts) != 2 {
		t.Fatalf("expected 2 june puts, got %d", len(puts))
	}
	if puts[0].ContractSymbol == "" {
		t.Fatalf("contract symbol not synthesized")
	}

	calls, err := prov.Chain("NVDA", june, scan.CoveredCall)
	if err != nil || len(calls) != 1 {
		t.Fatalf("expected 1 june call, got %v, %v", calls, err)
	}
	if calls[0].Strike != 170 {
		t.Fatalf("call strike = %f", calls[0].Strike)
	}
}

// One provider is shared across requests in REST mode, so the lazy
// parse must be safe under concurrent first use.
func TestLocalCSVConcurrentFirstUse(t *testing.T) {
	prov := NewLocalCSVProvider(writeFixture(t))
	june := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := prov.Chain("NVDA", june, scan.SellPut)
			if err != nil {
				errs <- err
				return
			}
			if len(rows) != 2 {
				errs <- fmt.Errorf("got %d rows, want 2", len(rows))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent chain read: %v", err)
	}
}

func TestLocalCSVMissingFile(t *testing.T) {
	prov := NewLocalCSVProvider(filepath.Join(t.TempDir(), "absent.csv"))
	if _, err := prov.Expirations("NVDA"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
