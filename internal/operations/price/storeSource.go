package price

import (
	"context"
	"time"

	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/repositories"
)

// StoreSource serves candles from the bar repository. It lets the
// backtest engine replay previously recorded data without touching
// the exchange.
type StoreSource struct {
	bars      *repositories.BarRepository
	timeFrame string
}

func NewStoreSource(bars *repositories.BarRepository, timeFrame string) *StoreSource {
	if timeFrame == "" {
		timeFrame = models.BarTimeFrame5m
	}
	return &StoreSource{bars: bars, timeFrame: timeFrame}
}

func (s *StoreSource) Bars(_ context.Context, symbol string, limit int) ([]models.Bar, error) {
	return s.bars.Latest(symbol, s.timeFrame, limit)
}

func (s *StoreSource) History(_ context.Context, symbol string, days int) ([]models.Bar, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.bars.Range(symbol, s.timeFrame, start, end)
}
