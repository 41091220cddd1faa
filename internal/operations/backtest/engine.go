package backtest

import (
	"context"

	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/operations/price"
	"TrendTradeBot/internal/services/lifecycle"

	"github.com/rs/zerolog"
)

// Engine replays historical bars through the detector, the risk gate and
// a fresh position manager per symbol. Replays are deterministic: the
// same bars always produce the same ledger.
type Engine struct {
	cfg    Config
	source price.Source
	log    zerolog.Logger
}

func NewEngine(cfg Config, source price.Source, log zerolog.Logger) *Engine {
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = 100
	}
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = 100000
	}
	return &Engine{
		cfg:    cfg,
		source: source,
		log:    log.With().Str("component", "backtest").Logger(),
	}
}

// Run replays `days` of history for each symbol. A failed history fetch
// skips that symbol only; the other symbols still replay.
func (e *Engine) Run(ctx context.Context, symbols []string, days int) ([]SymbolResult, error) {
	results := make([]SymbolResult, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		bars, err := e.source.History(ctx, symbol, days)
		if err != nil {
			e.log.Error().Err(err).Str("symbol", symbol).Msg("failed to load history, skipping symbol")
			continue
		}
		if len(bars) < e.cfg.LookbackBars+10 {
			e.log.Warn().
				Str("symbol", symbol).
				Int("bars", len(bars)).
				Msg("not enough history, skipping symbol")
			continue
		}
		results = append(results, e.runSymbol(symbol, bars))
	}
	return results, nil
}

type entryMeta struct {
	confidence float64
	riskReward float64
}

func (e *Engine) runSymbol(symbol string, bars []models.Bar) SymbolResult {
	manager := lifecycle.NewManager(e.cfg.StartingBalance, e.log)
	meta := make(map[string]entryMeta)

	result := SymbolResult{
		Symbol:          symbol,
		StartingBalance: e.cfg.StartingBalance,
	}

	for i := e.cfg.LookbackBars; i < len(bars); i++ {
		bar := bars[i]

		// An open position is managed to exit before any new entry is
		// considered, and never replaced on the same bar.
		if manager.HasOpen(symbol) {
			closed := manager.CheckExits(symbol, bar, lifecycle.TouchIntrabar)
			for _, c := range closed {
				result.Trades = append(result.Trades, e.toEntry(c, meta))
			}
			continue
		}

		window := bars[i-e.cfg.LookbackBars+1 : i+1]
		sig := e.cfg.Detector.Detect(symbol, window, bar.OpenTime)
		if sig == nil {
			continue
		}

		// The replay holds at most one position and tracks no calendar
		// days, so open-trade and daily-loss limits never bind here.
		trade := e.cfg.Risk.Evaluate(*sig, manager.Cash(), 0, 0)
		if !trade.Approved {
			e.log.Debug().
				Str("symbol", symbol).
				Str("reason", trade.RejectionReason).
				Msg("replay signal rejected")
			continue
		}

		pos, err := manager.Open(trade, bar.OpenTime)
		if err != nil {
			e.log.Warn().Err(err).Str("symbol", symbol).Msg("replay entry failed")
			continue
		}
		meta[pos.OrderID] = entryMeta{confidence: sig.Confidence, riskReward: sig.RiskReward()}
	}

	// Anything still open is marked to the final close.
	if manager.OpenCount() > 0 {
		last := bars[len(bars)-1]
		for _, c := range manager.CloseAll(last.Close, last.OpenTime, models.ExitReasonEndOfData) {
			result.Trades = append(result.Trades, e.toEntry(c, meta))
		}
	}

	e.log.Info().
		Str("symbol", symbol).
		Int("trades", result.TotalTrades()).
		Float64("pnl", result.TotalPnL()).
		Msg("replay finished")

	return result
}

func (e *Engine) toEntry(c models.ClosedTrade, meta map[string]entryMeta) LedgerEntry {
	m := meta[c.OrderID]
	entry := LedgerEntry{
		Symbol:     c.Symbol,
		Side:       c.Side,
		EntryTime:  c.EntryTime,
		ExitTime:   c.ExitTime,
		EntryPrice: c.EntryPrice,
		ExitPrice:  c.ExitPrice,
		Qty:        c.Qty,
		PnL:        c.PnL,
		ExitReason: c.ExitReason,
		Confidence: m.confidence,
		RiskReward: m.riskReward,
	}
	if notional := c.EntryPrice * float64(c.Qty); notional > 0 {
		entry.PnLPct = c.PnL / notional * 100
	}
	return entry
}
