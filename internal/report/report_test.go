package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/contactkeval/option-scan/internal/scan"
	"github.com/contactkeval/option-scan/internal/testutil"
)

func rankedResult(t *testing.T) *scan.Result {
	t.Helper()
	res, err := scan.Scan(testutil.Chain(), scan.SellPut, scan.Criteria{}, testutil.FixedMarket())
	if err != nil {
		t.Fatalf("fixture scan failed: %v", err)
	}
	return res
}

func TestWriteJSON(t *testing.T) {
	res := rankedResult(t)
	dir := t.TempDir()

	if err := WriteJSON(res, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "scan.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	var back scan.Result
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(back.Contracts) != len(res.Contracts) {
		t.Fatalf("round trip lost contracts: %d vs %d", len(back.Contracts), len(res.Contracts))
	}
	if len(back.Skipped) != len(res.Skipped) {
		t.Fatalf("round trip lost skip report: %d vs %d", len(back.Skipped), len(res.Skipped))
	}
}

func TestWriteCSV(t *testing.T) {
	res := rankedResult(t)
	dir := t.TempDir()

	if err := WriteCSV(res.Contracts, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "scan.csv"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid CSV: %v", err)
	}
	if len(records) != len(res.Contracts)+1 {
		t.Fatalf("expected header plus %d rows, got %d records", len(res.Contracts), len(records))
	}
	if records[0][0] != "ticker" || records[0][3] != "strike" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}
