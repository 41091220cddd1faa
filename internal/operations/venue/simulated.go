package venue

import (
	"context"
	"time"

	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/services/lifecycle"

	"github.com/rs/zerolog"
)

// SimulatedVenue fills orders instantly at the signal entry price against
// an in-memory account. It is the paper-trading venue.
type SimulatedVenue struct {
	manager *lifecycle.Manager
	log     zerolog.Logger
}

func NewSimulatedVenue(manager *lifecycle.Manager, log zerolog.Logger) *SimulatedVenue {
	return &SimulatedVenue{
		manager: manager,
		log:     log.With().Str("component", "simulated_venue").Logger(),
	}
}

func (v *SimulatedVenue) AccountBalance(_ context.Context) float64 {
	return v.manager.Cash()
}

func (v *SimulatedVenue) OpenTradeCount(_ context.Context) int {
	return v.manager.OpenCount()
}

func (v *SimulatedVenue) DailyPnL(_ context.Context) float64 {
	return v.manager.DailyPnL()
}

func (v *SimulatedVenue) Execute(_ context.Context, trade models.ApprovedTrade, at time.Time) (string, error) {
	pos, err := v.manager.Open(trade, at)
	if err != nil {
		return "", err
	}

	v.log.Info().
		Str("order_id", pos.OrderID).
		Str("symbol", pos.Symbol).
		Str("side", pos.Side).
		Int("qty", pos.Qty).
		Float64("entry", pos.EntryPrice).
		Msg("simulated fill")

	return pos.OrderID, nil
}
