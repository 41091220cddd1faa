package backtest

import (
	"math"
	"time"

	"TrendTradeBot/internal/services/detector"
	"TrendTradeBot/internal/services/risk"
)

// Config carries the replay parameters. Detector and Risk are shared with
// the live scanner so a backtest exercises the same decision path.
type Config struct {
	LookbackBars    int
	StartingBalance float64
	Detector        *detector.Detector
	Risk            *risk.Gate
}

// LedgerEntry is one completed round trip in a replay.
type LedgerEntry struct {
	Symbol     string
	Side       string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Qty        int
	PnL        float64
	PnLPct     float64
	ExitReason string
	Confidence float64
	RiskReward float64
}

// SymbolResult holds the completed trades of a single symbol's replay.
type SymbolResult struct {
	Symbol          string
	StartingBalance float64
	Trades          []LedgerEntry
}

func (r SymbolResult) TotalTrades() int { return len(r.Trades) }

func (r SymbolResult) TotalPnL() float64 {
	var total float64
	for _, t := range r.Trades {
		total += t.PnL
	}
	return total
}

// WinRate is the fraction of trades with positive pnl, 0 when no trades.
func (r SymbolResult) WinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range r.Trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r.Trades))
}

func (r SymbolResult) AvgWin() float64 {
	var sum float64
	n := 0
	for _, t := range r.Trades {
		if t.PnL > 0 {
			sum += t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (r SymbolResult) AvgLoss() float64 {
	var sum float64
	n := 0
	for _, t := range r.Trades {
		if t.PnL < 0 {
			sum += t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ProfitFactor is gross profit over gross loss, +Inf whenever gross loss
// is zero.
func (r SymbolResult) ProfitFactor() float64 {
	var grossProfit, grossLoss float64
	for _, t := range r.Trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else {
			grossLoss -= t.PnL
		}
	}
	if grossLoss == 0 {
		return math.Inf(1)
	}
	return grossProfit / grossLoss
}

// MaxDrawdown is the largest peak-to-trough decline of the realized
// equity curve.
func (r SymbolResult) MaxDrawdown() float64 {
	equity := r.StartingBalance
	peak := equity
	var maxDD float64
	for _, t := range r.Trades {
		equity += t.PnL
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
