package detector

import (
	"fmt"
	"math"
	"time"

	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/services/swing"

	"github.com/rs/zerolog"
)

// Config holds the detector tunables. Zero values fall back to the
// defaults used throughout the system.
type Config struct {
	SwingHalfWindow      int     // bars each side for swing detection (default 5)
	RetracementTolerance float64 // retest zone width around the line (default 0.003)
	BreakoutLookback     int     // how far back to search for the crossing bar (default 10)
	TimeFrame            string  // stamped onto emitted signals (default "5m")
}

const minWindowBars = 30

// Detector finds trendline break-and-retest setups in a bar window. It is
// stateless per scan: every call recomputes swing points and lines from
// scratch, so the same window always yields the same decision.
type Detector struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Detector {
	if cfg.SwingHalfWindow <= 0 {
		cfg.SwingHalfWindow = 5
	}
	if cfg.RetracementTolerance <= 0 {
		cfg.RetracementTolerance = 0.003
	}
	if cfg.BreakoutLookback <= 0 {
		cfg.BreakoutLookback = 10
	}
	if cfg.TimeFrame == "" {
		cfg.TimeFrame = models.BarTimeFrame5m
	}
	return &Detector{
		cfg: cfg,
		log: log.With().Str("component", "detector").Logger(),
	}
}

// Detect returns at most one signal for the window: the long setup is
// checked first and wins ties with the short setup. The window must hold
// at least 30 bars. `at` is the evaluation timestamp supplied by the
// driver, which keeps replay runs deterministic.
func (d *Detector) Detect(symbol string, bars []models.Bar, at time.Time) *models.TradeSignal {
	if len(bars) < minWindowBars {
		d.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("insufficient data")
		return nil
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	if sig := d.checkLongSetup(symbol, highs, lows, closes, at); sig != nil {
		return sig
	}
	return d.checkShortSetup(symbol, highs, lows, closes, at)
}

// checkLongSetup looks for: downtrend resistance line through the last 3
// swing highs, a close back above it (breakout), a pullback into the
// retest zone and a confirmed bounce on the latest close.
func (d *Detector) checkLongSetup(symbol string, highs, lows, closes []float64, at time.Time) *models.TradeSignal {
	n := len(closes)

	swingHighs := swing.Points(highs, d.cfg.SwingHalfWindow, swing.High)
	if len(swingHighs) < 2 {
		return nil
	}
	line, ok := swing.FitLine(lastN(swingHighs, 3), highs)
	if !ok || line.Slope >= 0 {
		return nil // need a falling resistance line
	}

	breakoutBar := d.findCrossing(closes, line, func(prev, curr, linePrev, lineCurr float64) bool {
		return prev < linePrev && curr >= lineCurr
	})
	if breakoutBar < 0 {
		return nil
	}
	barsSince := n - 1 - breakoutBar
	if barsSince < 1 {
		return nil
	}

	breakoutHigh := maxOf(highs[breakoutBar:])
	retestLow := minOf(lows[breakoutBar:])
	lineNow := line.ValueAt(n - 1)
	tol := d.cfg.RetracementTolerance

	if retestLow > lineNow*(1+tol) {
		return nil // price never pulled back to the line
	}
	currentClose := closes[n-1]
	if currentClose < lineNow*(1-tol) {
		return nil // closed back below the line, setup invalidated
	}

	entry := currentClose
	stop := roundCents(retestLow * (1 - 0.002))
	target := roundCents(breakoutHigh)

	risk := entry - stop
	reward := target - entry
	if risk <= 0 || reward <= 0 {
		return nil
	}

	rr := reward / risk
	conf := confidence(rr, barsSince)
	d.log.Info().
		Str("symbol", symbol).
		Float64("entry", entry).
		Float64("stop", stop).
		Float64("target", target).
		Float64("rr", rr).
		Msg("long setup found")

	return &models.TradeSignal{
		Symbol:     symbol,
		Side:       models.SideBuy,
		EntryPrice: roundCents(entry),
		StopLoss:   stop,
		TakeProfit: target,
		Confidence: conf,
		Timestamp:  at,
		Reason: fmt.Sprintf("downtrend line break-and-retest | R:R %.1f:1 | %d bars post-break",
			rr, barsSince),
		TimeFrame: d.cfg.TimeFrame,
	}
}

// checkShortSetup is the exact mirror: rising support line through the
// last 3 swing lows, a close below it, a pullback up into the retest zone
// and a confirmed rejection.
func (d *Detector) checkShortSetup(symbol string, highs, lows, closes []float64, at time.Time) *models.TradeSignal {
	n := len(closes)

	swingLows := swing.Points(lows, d.cfg.SwingHalfWindow, swing.Low)
	if len(swingLows) < 2 {
		return nil
	}
	line, ok := swing.FitLine(lastN(swingLows, 3), lows)
	if !ok || line.Slope <= 0 {
		return nil // need a rising support line
	}

	breakdownBar := d.findCrossing(closes, line, func(prev, curr, linePrev, lineCurr float64) bool {
		return prev > linePrev && curr <= lineCurr
	})
	if breakdownBar < 0 {
		return nil
	}
	barsSince := n - 1 - breakdownBar
	if barsSince < 1 {
		return nil
	}

	breakdownLow := minOf(lows[breakdownBar:])
	retestHigh := maxOf(highs[breakdownBar:])
	lineNow := line.ValueAt(n - 1)
	tol := d.cfg.RetracementTolerance

	if retestHigh < lineNow*(1-tol) {
		return nil
	}
	currentClose := closes[n-1]
	if currentClose > lineNow*(1+tol) {
		return nil
	}

	entry := currentClose
	stop := roundCents(retestHigh * (1 + 0.002))
	target := roundCents(breakdownLow)

	risk := stop - entry
	reward := entry - target
	if risk <= 0 || reward <= 0 {
		return nil
	}

	rr := reward / risk
	conf := confidence(rr, barsSince)
	d.log.Info().
		Str("symbol", symbol).
		Float64("entry", entry).
		Float64("stop", stop).
		Float64("target", target).
		Float64("rr", rr).
		Msg("short setup found")

	return &models.TradeSignal{
		Symbol:     symbol,
		Side:       models.SideSell,
		EntryPrice: roundCents(entry),
		StopLoss:   stop,
		TakeProfit: target,
		Confidence: conf,
		Timestamp:  at,
		Reason: fmt.Sprintf("uptrend line break-and-retest | R:R %.1f:1 | %d bars post-break",
			rr, barsSince),
		TimeFrame: d.cfg.TimeFrame,
	}
}

// findCrossing scans lookback offsets 1..min(BreakoutLookback, n-1) from
// the most recent bar and returns the index of the most recent bar whose
// close crossed the line relative to its predecessor, or -1.
func (d *Detector) findCrossing(closes []float64, line swing.Line, crossed func(prev, curr, linePrev, lineCurr float64) bool) int {
	n := len(closes)
	maxBack := d.cfg.BreakoutLookback
	if n-1 < maxBack {
		maxBack = n - 1
	}
	for back := 1; back <= maxBack; back++ {
		prev := n - 1 - back
		curr := n - back
		if crossed(closes[prev], closes[curr], line.ValueAt(prev), line.ValueAt(curr)) {
			return curr
		}
	}
	return -1
}

// confidence rewards higher reward:risk and more recent breakouts,
// saturating at [0.30, 0.95].
func confidence(rr float64, barsSince int) float64 {
	score := 0.50 + math.Min(0.45, (rr-1.0)*0.15) + 0.10/math.Max(float64(barsSince), 1)
	score = math.Min(0.95, math.Max(0.30, score))
	return math.Round(score*100) / 100
}

func lastN(idx []int, n int) []int {
	if len(idx) <= n {
		return idx
	}
	return idx[len(idx)-n:]
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
