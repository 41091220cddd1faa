package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"TrendTradeBot/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TouchGranularity selects how exit levels are tested against a bar.
//
// TouchClose compares the bar's close and fills exits at the close: the
// live monitor's behavior. TouchIntrabar compares the bar's high/low and
// fills at the breached stop or target level: the stricter replay
// behavior, where any intrabar touch counts. The divergence between the
// two is a deliberate configuration choice made by the driver.
type TouchGranularity int

const (
	TouchClose TouchGranularity = iota
	TouchIntrabar
)

// ErrInsufficientFunds is returned by Open when the trade value exceeds
// available cash. Balance may have moved between gate evaluation and
// execution, so this is an execution failure, not a gate concern.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Manager owns the account state and every open simulated position.
// Nothing else mutates them: callers read balances and feed bars in, and
// receive closed-trade records back. Positions are iterated in insertion
// order so identical inputs always produce identical output sequences.
type Manager struct {
	cash          float64
	realizedToday float64
	positions     map[string]*models.Position
	order         []string // order ids, insertion order
	newID         func() string
	log           zerolog.Logger
}

func NewManager(startingCash float64, log zerolog.Logger) *Manager {
	return &Manager{
		cash:      startingCash,
		positions: make(map[string]*models.Position),
		newID:     uuid.NewString,
		log:       log.With().Str("component", "lifecycle").Logger(),
	}
}

// Open fills an approved trade, debiting cash by the trade value and
// inserting a new position keyed by a fresh order id.
func (m *Manager) Open(trade models.ApprovedTrade, at time.Time) (*models.Position, error) {
	sig := trade.Signal
	value := float64(trade.PositionSize) * sig.EntryPrice
	if value > m.cash {
		return nil, fmt.Errorf("%w: trade value %.2f exceeds cash %.2f", ErrInsufficientFunds, value, m.cash)
	}

	m.cash -= value
	pos := &models.Position{
		OrderID:    m.newID(),
		Symbol:     sig.Symbol,
		Side:       sig.Side,
		Qty:        trade.PositionSize,
		EntryPrice: sig.EntryPrice,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		EntryTime:  at,
	}
	m.positions[pos.OrderID] = pos
	m.order = append(m.order, pos.OrderID)

	m.log.Info().
		Str("order_id", pos.OrderID).
		Str("symbol", pos.Symbol).
		Str("side", pos.Side).
		Int("qty", pos.Qty).
		Float64("entry", pos.EntryPrice).
		Msg("position opened")
	return pos, nil
}

// CheckExits marks every open position for the symbol against the bar and
// closes those whose stop or target is breached. The stop is always
// evaluated first: when a bar gaps through both levels the position exits
// as a stop-loss.
func (m *Manager) CheckExits(symbol string, bar models.Bar, g TouchGranularity) []models.ClosedTrade {
	var closed []models.ClosedTrade
	for _, id := range m.order {
		pos, ok := m.positions[id]
		if !ok || pos.Symbol != symbol {
			continue
		}
		pos.UnrealizedPnL = pnlAt(pos.Side, pos.EntryPrice, bar.Close, pos.Qty)

		exitPrice, reason, hit := evalExit(pos, bar, g)
		if hit {
			closed = append(closed, m.close(pos, exitPrice, bar.OpenTime, reason))
		}
	}
	m.compact()
	return closed
}

// CloseAll force-closes every open position at the given price. Used at
// the end of a replay run (END-OF-DATA).
func (m *Manager) CloseAll(price float64, at time.Time, reason string) []models.ClosedTrade {
	var closed []models.ClosedTrade
	for _, id := range m.order {
		if pos, ok := m.positions[id]; ok {
			closed = append(closed, m.close(pos, price, at, reason))
		}
	}
	m.compact()
	return closed
}

func (m *Manager) close(pos *models.Position, exitPrice float64, at time.Time, reason string) models.ClosedTrade {
	pnl := pnlAt(pos.Side, pos.EntryPrice, exitPrice, pos.Qty)

	if pos.Side == models.SideBuy {
		m.cash += exitPrice * float64(pos.Qty)
	} else {
		// Short closes return the notional margin plus the realized pnl.
		m.cash += pos.EntryPrice*float64(pos.Qty) + pnl
	}
	m.realizedToday += pnl
	delete(m.positions, pos.OrderID)

	m.log.Info().
		Str("order_id", pos.OrderID).
		Str("symbol", pos.Symbol).
		Str("reason", reason).
		Float64("exit", exitPrice).
		Float64("pnl", pnl).
		Msg("position closed")

	return models.ClosedTrade{
		OrderID:    pos.OrderID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Qty:        pos.Qty,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		PnL:        pnl,
		EntryTime:  pos.EntryTime,
		ExitTime:   at,
		ExitReason: reason,
	}
}

// compact drops order ids whose positions closed.
func (m *Manager) compact() {
	live := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.positions[id]; ok {
			live = append(live, id)
		}
	}
	m.order = live
}

func evalExit(pos *models.Position, bar models.Bar, g TouchGranularity) (float64, string, bool) {
	switch g {
	case TouchIntrabar:
		if pos.Side == models.SideBuy {
			if bar.Low <= pos.StopLoss {
				return pos.StopLoss, models.ExitReasonStopLoss, true
			}
			if bar.High >= pos.TakeProfit {
				return pos.TakeProfit, models.ExitReasonTakeProfit, true
			}
		} else {
			if bar.High >= pos.StopLoss {
				return pos.StopLoss, models.ExitReasonStopLoss, true
			}
			if bar.Low <= pos.TakeProfit {
				return pos.TakeProfit, models.ExitReasonTakeProfit, true
			}
		}
	default: // TouchClose
		price := bar.Close
		if pos.Side == models.SideBuy {
			if price <= pos.StopLoss {
				return price, models.ExitReasonStopLoss, true
			}
			if price >= pos.TakeProfit {
				return price, models.ExitReasonTakeProfit, true
			}
		} else {
			if price >= pos.StopLoss {
				return price, models.ExitReasonStopLoss, true
			}
			if price <= pos.TakeProfit {
				return price, models.ExitReasonTakeProfit, true
			}
		}
	}
	return 0, "", false
}

func pnlAt(side string, entry, price float64, qty int) float64 {
	if side == models.SideBuy {
		return (price - entry) * float64(qty)
	}
	return (entry - price) * float64(qty)
}

// Cash returns the current free cash balance.
func (m *Manager) Cash() float64 { return m.cash }

// RealizedToday returns today's realized pnl.
func (m *Manager) RealizedToday() float64 { return m.realizedToday }

// OpenCount returns the number of open positions.
func (m *Manager) OpenCount() int { return len(m.positions) }

// HasOpen reports whether any position is open for the symbol.
func (m *Manager) HasOpen(symbol string) bool {
	for _, pos := range m.positions {
		if pos.Symbol == symbol {
			return true
		}
	}
	return false
}

// Symbols returns the symbols with open positions, in position insertion
// order without duplicates.
func (m *Manager) Symbols() []string {
	seen := make(map[string]bool, len(m.positions))
	var out []string
	for _, id := range m.order {
		pos, ok := m.positions[id]
		if !ok || seen[pos.Symbol] {
			continue
		}
		seen[pos.Symbol] = true
		out = append(out, pos.Symbol)
	}
	return out
}

// Positions returns copies of the open positions in insertion order.
func (m *Manager) Positions() []models.Position {
	out := make([]models.Position, 0, len(m.positions))
	for _, id := range m.order {
		if pos, ok := m.positions[id]; ok {
			out = append(out, *pos)
		}
	}
	return out
}

// DailyPnL is today's realized pnl plus the unrealized pnl of every open
// position, as of the most recent marks.
func (m *Manager) DailyPnL() float64 {
	total := m.realizedToday
	for _, pos := range m.positions {
		total += pos.UnrealizedPnL
	}
	return total
}

// ResetDay clears the realized-today accumulator at a date rollover.
func (m *Manager) ResetDay() {
	m.realizedToday = 0
}
