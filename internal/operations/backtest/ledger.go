package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteLedgerCSV writes every completed trade of a replay to a dated CSV
// file under dir and returns the file path.
func WriteLedgerCSV(dir string, results []SymbolResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create ledger directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("backtest_results_%s.csv", time.Now().Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create ledger file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"symbol", "side", "entry_time", "exit_time", "entry_price",
		"exit_price", "qty", "pnl", "pnl_pct", "exit_reason",
		"confidence", "risk_reward",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, r := range results {
		for _, t := range r.Trades {
			row := []string{
				t.Symbol,
				t.Side,
				t.EntryTime.Format(timeLayout),
				t.ExitTime.Format(timeLayout),
				fmt.Sprintf("%.2f", t.EntryPrice),
				fmt.Sprintf("%.2f", t.ExitPrice),
				fmt.Sprintf("%d", t.Qty),
				fmt.Sprintf("%.2f", t.PnL),
				fmt.Sprintf("%.2f", t.PnLPct),
				t.ExitReason,
				fmt.Sprintf("%.2f", t.Confidence),
				fmt.Sprintf("%.2f", t.RiskReward),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
