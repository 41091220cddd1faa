package price

import (
	"context"

	"TrendTradeBot/internal/models"
)

// Source supplies candle data to the scanner and the backtest engine.
type Source interface {
	// Bars returns the most recent `limit` closed bars for a symbol in
	// ascending open-time order.
	Bars(ctx context.Context, symbol string, limit int) ([]models.Bar, error)

	// History returns all bars covering the last `days` days in ascending
	// open-time order.
	History(ctx context.Context, symbol string, days int) ([]models.Bar, error)
}
