package handlers

import (
	"context"
	"time"

	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/operations/price"
	"TrendTradeBot/internal/operations/venue"
	"TrendTradeBot/internal/repositories"
	"TrendTradeBot/internal/services/detector"
	"TrendTradeBot/internal/services/lifecycle"
	"TrendTradeBot/internal/services/risk"

	"github.com/rs/zerolog"
)

// ScanHandler runs the live trading loop: each cycle it checks exits on
// open positions, then scans every configured symbol for a fresh signal
// and routes approved trades to the venue.
type ScanHandler struct {
	source   price.Source
	venue    venue.Venue
	manager  *lifecycle.Manager
	detector *detector.Detector
	gate     *risk.Gate

	// barRepo and tradeRepo are optional; a nil repo disables recording.
	barRepo   *repositories.BarRepository
	tradeRepo *repositories.TradeRepository

	symbols  []string
	interval time.Duration
	lookback int
	cooldown time.Duration

	now     func() time.Time
	lastDay string
	log     zerolog.Logger
}

type ScanConfig struct {
	Symbols      []string
	Interval     time.Duration
	LookbackBars int

	// ErrorCooldown is the wait before retrying a cycle that panicked,
	// shorter than the regular scan interval (default 30s).
	ErrorCooldown time.Duration
}

func NewScanHandler(
	cfg ScanConfig,
	source price.Source,
	vn venue.Venue,
	manager *lifecycle.Manager,
	det *detector.Detector,
	gate *risk.Gate,
	barRepo *repositories.BarRepository,
	tradeRepo *repositories.TradeRepository,
	log zerolog.Logger,
) *ScanHandler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = 100
	}
	if cfg.ErrorCooldown <= 0 {
		cfg.ErrorCooldown = 30 * time.Second
	}
	return &ScanHandler{
		source:    source,
		venue:     vn,
		manager:   manager,
		detector:  det,
		gate:      gate,
		barRepo:   barRepo,
		tradeRepo: tradeRepo,
		symbols:   cfg.Symbols,
		interval:  cfg.Interval,
		lookback:  cfg.LookbackBars,
		cooldown:  cfg.ErrorCooldown,
		now:       time.Now,
		log:       log.With().Str("component", "scanner").Logger(),
	}
}

// Run executes scan cycles until the context is cancelled. An in-progress
// cycle always finishes before Run returns.
func (h *ScanHandler) Run(ctx context.Context) {
	h.log.Info().
		Strs("symbols", h.symbols).
		Dur("interval", h.interval).
		Msg("scanner started")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.cycleWithRetry(ctx)
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("scanner stopped")
			return
		case <-ticker.C:
			h.cycleWithRetry(ctx)
		}
	}
}

// cycleWithRetry reruns a panicked cycle after the error cooldown rather
// than waiting out the full scan interval.
func (h *ScanHandler) cycleWithRetry(ctx context.Context) {
	for !h.runCycle(ctx) {
		h.log.Info().Dur("cooldown", h.cooldown).Msg("retrying cycle after cooldown")
		select {
		case <-ctx.Done():
			return
		case <-time.After(h.cooldown):
		}
	}
}

// runCycle is panic-safe: it reports false when the cycle died so the
// caller can schedule a retry.
func (h *ScanHandler) runCycle(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("scan cycle panicked")
		}
	}()

	h.rollDay()
	h.monitorPositions(ctx)

	for _, symbol := range h.symbols {
		if ctx.Err() != nil {
			return true
		}
		h.scanSymbol(ctx, symbol)
	}
	return true
}

// rollDay resets the realized-pnl accumulator when the calendar day
// changes between cycles.
func (h *ScanHandler) rollDay() {
	day := h.now().Format("2006-01-02")
	if h.lastDay != "" && day != h.lastDay {
		h.manager.ResetDay()
		h.log.Info().Str("day", day).Msg("daily pnl reset")
	}
	h.lastDay = day
}

// monitorPositions checks every open position against its symbol's latest
// close and records any exits.
func (h *ScanHandler) monitorPositions(ctx context.Context) {
	for _, symbol := range h.manager.Symbols() {
		bars, err := h.source.Bars(ctx, symbol, 1)
		if err != nil || len(bars) == 0 {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("no price for open position check")
			continue
		}

		closed := h.manager.CheckExits(symbol, bars[len(bars)-1], lifecycle.TouchClose)
		for _, c := range closed {
			h.log.Info().
				Str("order_id", c.OrderID).
				Str("symbol", c.Symbol).
				Str("reason", c.ExitReason).
				Float64("exit", c.ExitPrice).
				Float64("pnl", c.PnL).
				Msg("position closed")
			h.recordClose(c)
		}
	}
}

func (h *ScanHandler) scanSymbol(ctx context.Context, symbol string) {
	if h.manager.HasOpen(symbol) {
		return
	}

	bars, err := h.source.Bars(ctx, symbol, h.lookback)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("data unavailable, skipping symbol")
		return
	}

	if h.barRepo != nil {
		if err := h.barRepo.Upsert(bars); err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to record bars")
		}
	}

	sig := h.detector.Detect(symbol, bars, h.now())
	if sig == nil {
		return
	}

	trade := h.gate.Evaluate(*sig,
		h.venue.AccountBalance(ctx),
		h.venue.OpenTradeCount(ctx),
		h.venue.DailyPnL(ctx))

	if !trade.Approved {
		h.log.Info().
			Str("symbol", symbol).
			Str("side", sig.Side).
			Str("reason", trade.RejectionReason).
			Msg("signal rejected")
		h.recordTrade(trade, "", models.TradeStatusRejected)
		return
	}

	orderID, err := h.venue.Execute(ctx, trade, h.now())
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("order execution failed")
		h.recordTrade(trade, "", models.TradeStatusFailed)
		return
	}

	h.log.Info().
		Str("order_id", orderID).
		Str("symbol", symbol).
		Str("side", sig.Side).
		Int("qty", trade.PositionSize).
		Float64("entry", sig.EntryPrice).
		Float64("stop", sig.StopLoss).
		Float64("target", sig.TakeProfit).
		Float64("confidence", sig.Confidence).
		Msg("trade executed")
	h.recordTrade(trade, orderID, models.TradeStatusFilled)
}

func (h *ScanHandler) recordTrade(trade models.ApprovedTrade, orderID, status string) {
	if h.tradeRepo == nil {
		return
	}

	reason := trade.Signal.Reason
	if status == models.TradeStatusRejected {
		reason = trade.RejectionReason
	}

	record := &models.TradeRecord{
		Timestamp:  h.now(),
		Symbol:     trade.Signal.Symbol,
		Side:       trade.Signal.Side,
		Qty:        trade.PositionSize,
		EntryPrice: trade.Signal.EntryPrice,
		StopLoss:   trade.Signal.StopLoss,
		TakeProfit: trade.Signal.TakeProfit,
		DollarRisk: trade.DollarRisk,
		Confidence: trade.Signal.Confidence,
		Reason:     reason,
		OrderID:    orderID,
		Status:     status,
	}
	if err := h.tradeRepo.CreateTrade(record); err != nil {
		h.log.Warn().Err(err).Str("symbol", record.Symbol).Msg("failed to journal trade")
	}
}

func (h *ScanHandler) recordClose(c models.ClosedTrade) {
	if h.tradeRepo == nil {
		return
	}

	record := &models.CloseRecord{
		Timestamp:  c.ExitTime,
		OrderID:    c.OrderID,
		Symbol:     c.Symbol,
		Side:       c.Side,
		Qty:        c.Qty,
		EntryPrice: c.EntryPrice,
		ExitPrice:  c.ExitPrice,
		PnL:        c.PnL,
		ExitReason: c.ExitReason,
	}
	if err := h.tradeRepo.CreateClose(record); err != nil {
		h.log.Warn().Err(err).Str("order_id", c.OrderID).Msg("failed to journal close")
	}
}
