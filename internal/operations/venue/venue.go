package venue

import (
	"context"
	"time"

	"TrendTradeBot/internal/models"
)

// Venue is where approved trades are placed and account state is read.
// The live scanner treats the simulated and real exchange the same way.
type Venue interface {
	// AccountBalance returns the available cash balance in quote currency.
	AccountBalance(ctx context.Context) float64

	// OpenTradeCount returns the number of currently open positions.
	OpenTradeCount(ctx context.Context) int

	// DailyPnL returns today's realized plus unrealized pnl.
	DailyPnL(ctx context.Context) float64

	// Execute places an approved trade and returns the venue order id.
	Execute(ctx context.Context, trade models.ApprovedTrade, at time.Time) (string, error)
}
