package risk

import (
	"fmt"
	"math"

	"TrendTradeBot/internal/models"

	"github.com/rs/zerolog"
)

// Config holds the gate thresholds. Zero values fall back to defaults.
type Config struct {
	MinRiskReward   float64 // minimum reward:risk (default 1.5)
	MaxOpenTrades   int     // max concurrent positions (default 3)
	MaxDailyLossPct float64 // daily loss cap as a fraction of balance (default 0.03)
	RiskPerTrade    float64 // fraction of balance risked per trade (default 0.01)
}

// Gate is the stateless risk check between detector and execution. All
// account context is passed per call; the gate never mutates anything.
type Gate struct {
	cfg Config
	log zerolog.Logger
}

func NewGate(cfg Config, log zerolog.Logger) *Gate {
	if cfg.MinRiskReward <= 0 {
		cfg.MinRiskReward = 1.5
	}
	if cfg.MaxOpenTrades <= 0 {
		cfg.MaxOpenTrades = 3
	}
	if cfg.MaxDailyLossPct <= 0 {
		cfg.MaxDailyLossPct = 0.03
	}
	if cfg.RiskPerTrade <= 0 {
		cfg.RiskPerTrade = 0.01
	}
	return &Gate{
		cfg: cfg,
		log: log.With().Str("component", "risk").Logger(),
	}
}

// Evaluate applies the five rules in order; the first failing rule sets
// the rejection reason. Rule 5 (the affordability cap) resizes instead of
// rejecting.
func (g *Gate) Evaluate(sig models.TradeSignal, balance float64, openCount int, dailyPnL float64) models.ApprovedTrade {
	// Rule 1: minimum reward:risk.
	rr := sig.RiskReward()
	if rr < g.cfg.MinRiskReward {
		return g.reject(sig, balance,
			fmt.Sprintf("R:R %.2f is below the minimum %.1f", rr, g.cfg.MinRiskReward))
	}

	// Rule 2: maximum concurrent positions.
	if openCount >= g.cfg.MaxOpenTrades {
		return g.reject(sig, balance,
			fmt.Sprintf("max open trades reached (%d/%d)", openCount, g.cfg.MaxOpenTrades))
	}

	// Rule 3: daily loss cap.
	if dailyPnL < 0 && balance > 0 {
		lossPct := -dailyPnL / balance
		if lossPct >= g.cfg.MaxDailyLossPct {
			return g.reject(sig, balance,
				fmt.Sprintf("daily loss limit hit: %.1f%% lost (limit %.0f%%)",
					lossPct*100, g.cfg.MaxDailyLossPct*100))
		}
	}

	// Rule 4: position sizing. A zero risk per share cannot reach this
	// point (it already failed rule 1 with R:R 0), but the guard keeps
	// the division safe for any caller that skips the earlier rules.
	riskPerShare := math.Abs(sig.EntryPrice - sig.StopLoss)
	if riskPerShare <= 0 {
		return g.reject(sig, balance, "invalid stop loss: risk per share is zero or negative")
	}
	dollarRisk := balance * g.cfg.RiskPerTrade
	size := int(dollarRisk / riskPerShare)
	if size < 1 {
		return g.reject(sig, balance,
			fmt.Sprintf("position size rounds to 0 ($%.2f risk / $%.4f per share)",
				dollarRisk, riskPerShare))
	}

	// Rule 5: affordability cap at 95% of balance. Clamps, never rejects.
	maxAffordable := int(balance * 0.95 / sig.EntryPrice)
	if size > maxAffordable {
		size = maxAffordable
		if size < 1 {
			size = 1
		}
		g.log.Debug().Str("symbol", sig.Symbol).Int("size", size).Msg("position capped by 95% cash limit")
	}

	actualRisk := math.Round(float64(size)*riskPerShare*100) / 100
	g.log.Info().
		Str("symbol", sig.Symbol).
		Int("size", size).
		Float64("dollar_risk", actualRisk).
		Float64("rr", rr).
		Msg("trade approved")

	return models.ApprovedTrade{
		Signal:         sig,
		PositionSize:   size,
		DollarRisk:     actualRisk,
		AccountBalance: balance,
		Approved:       true,
	}
}

func (g *Gate) reject(sig models.TradeSignal, balance float64, reason string) models.ApprovedTrade {
	g.log.Info().Str("symbol", sig.Symbol).Str("reason", reason).Msg("trade rejected")
	return models.ApprovedTrade{
		Signal:          sig,
		AccountBalance:  balance,
		Approved:        false,
		RejectionReason: reason,
	}
}
