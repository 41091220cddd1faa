package backtest

import (
	"fmt"
	"io"
	"math"
)

// PrintReport writes a per-symbol replay summary followed by combined
// totals.
func PrintReport(w io.Writer, results []SymbolResult, days int) {
	fmt.Fprintf(w, "\n%s\n", separator)
	fmt.Fprintf(w, "BACKTEST RESULTS (%d days)\n", days)
	fmt.Fprintf(w, "%s\n", separator)

	var totalTrades, totalWins int
	var totalPnL float64

	for _, r := range results {
		fmt.Fprintf(w, "\n%s\n", r.Symbol)
		fmt.Fprintf(w, "  Trades:        %d\n", r.TotalTrades())
		if r.TotalTrades() == 0 {
			continue
		}
		fmt.Fprintf(w, "  Win rate:      %.1f%%\n", r.WinRate()*100)
		fmt.Fprintf(w, "  Total P&L:     $%.2f\n", r.TotalPnL())
		fmt.Fprintf(w, "  Avg win:       $%.2f\n", r.AvgWin())
		fmt.Fprintf(w, "  Avg loss:      $%.2f\n", r.AvgLoss())
		fmt.Fprintf(w, "  Profit factor: %s\n", formatFactor(r.ProfitFactor()))
		fmt.Fprintf(w, "  Max drawdown:  $%.2f\n", r.MaxDrawdown())

		totalTrades += r.TotalTrades()
		totalPnL += r.TotalPnL()
		for _, t := range r.Trades {
			if t.PnL > 0 {
				totalWins++
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", separator)
	fmt.Fprintf(w, "TOTAL: %d trades", totalTrades)
	if totalTrades > 0 {
		fmt.Fprintf(w, ", %.1f%% win rate", float64(totalWins)/float64(totalTrades)*100)
	}
	fmt.Fprintf(w, ", $%.2f P&L\n", totalPnL)
	fmt.Fprintf(w, "%s\n", separator)
}

const separator = "============================================================"

func formatFactor(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", f)
}
