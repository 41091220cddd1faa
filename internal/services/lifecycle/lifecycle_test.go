package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"TrendTradeBot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

func newTestManager(cash float64) *Manager {
	m := NewManager(cash, zerolog.Nop())
	// Deterministic ids for assertions.
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("order-%d", n)
	}
	return m
}

func approvedBuy(symbol string, qty int, entry, stop, target float64) models.ApprovedTrade {
	return models.ApprovedTrade{
		Signal: models.TradeSignal{
			Symbol:     symbol,
			Side:       models.SideBuy,
			EntryPrice: entry,
			StopLoss:   stop,
			TakeProfit: target,
		},
		PositionSize: qty,
		Approved:     true,
	}
}

func approvedSell(symbol string, qty int, entry, stop, target float64) models.ApprovedTrade {
	t := approvedBuy(symbol, qty, entry, stop, target)
	t.Signal.Side = models.SideSell
	return t
}

func bar(symbol string, high, low, close float64) models.Bar {
	return models.Bar{Symbol: symbol, High: high, Low: low, Close: close, OpenTime: t0}
}

func TestOpenDebitsCash(t *testing.T) {
	m := newTestManager(10000)

	pos, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	assert.Equal(t, "order-1", pos.OrderID)
	assert.InDelta(t, 9000, m.Cash(), 1e-9)
	assert.Equal(t, 1, m.OpenCount())
	assert.True(t, m.HasOpen("AAPL"))
}

func TestOpenRefusedOnInsufficientFunds(t *testing.T) {
	m := newTestManager(500)

	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.InDelta(t, 500, m.Cash(), 1e-9)
	assert.Zero(t, m.OpenCount())
}

func TestStopLossCloseOnClosePrice(t *testing.T) {
	// Entry $100 x10 (cash debited $1,000), stop $96. Price $95 closes
	// the position: pnl (95-100)*10 = -$50, cash credited $950.
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)
	assert.InDelta(t, 9000, m.Cash(), 1e-9)

	closed := m.CheckExits("AAPL", bar("AAPL", 95.5, 94.5, 95), TouchClose)
	require.Len(t, closed, 1)

	assert.Equal(t, models.ExitReasonStopLoss, closed[0].ExitReason)
	assert.InDelta(t, -50, closed[0].PnL, 1e-9)
	assert.InDelta(t, 95, closed[0].ExitPrice, 1e-9)
	assert.InDelta(t, 9950, m.Cash(), 1e-9)
	assert.InDelta(t, -50, m.RealizedToday(), 1e-9)
	assert.Zero(t, m.OpenCount())
}

func TestTakeProfitCloseOnClosePrice(t *testing.T) {
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	closed := m.CheckExits("AAPL", bar("AAPL", 112, 109, 111), TouchClose)
	require.Len(t, closed, 1)

	assert.Equal(t, models.ExitReasonTakeProfit, closed[0].ExitReason)
	assert.InDelta(t, 110, closed[0].PnL, 1e-9)
	assert.InDelta(t, 10110, m.Cash(), 1e-9)
}

func TestIntrabarTouchFillsAtLevel(t *testing.T) {
	// Close never reached the target, but the high did: intrabar
	// granularity fills at the target level.
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	closed := m.CheckExits("AAPL", bar("AAPL", 110.5, 104, 105), TouchIntrabar)
	require.Len(t, closed, 1)

	assert.Equal(t, models.ExitReasonTakeProfit, closed[0].ExitReason)
	assert.InDelta(t, 110, closed[0].ExitPrice, 1e-9)
	assert.InDelta(t, 100, closed[0].PnL, 1e-9)
}

func TestCloseOnlyIgnoresIntrabarTouch(t *testing.T) {
	// The same bar under close granularity leaves the position open.
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	closed := m.CheckExits("AAPL", bar("AAPL", 110.5, 104, 105), TouchClose)
	assert.Empty(t, closed)
	assert.Equal(t, 1, m.OpenCount())
}

func TestGapThroughBothTakesStopFirst(t *testing.T) {
	// Bar spans both stop and target: the conservative tie-break exits
	// as a stop-loss.
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	closed := m.CheckExits("AAPL", bar("AAPL", 115, 95, 100), TouchIntrabar)
	require.Len(t, closed, 1)
	assert.Equal(t, models.ExitReasonStopLoss, closed[0].ExitReason)
	assert.InDelta(t, 96, closed[0].ExitPrice, 1e-9)
}

func TestShortCloseCashFlow(t *testing.T) {
	// Short 10 @ $100: margin $1,000 held. Target $90 touched: pnl
	// (100-90)*10 = +$100; the close returns margin plus pnl.
	m := newTestManager(10000)
	_, err := m.Open(approvedSell("TSLA", 10, 100, 105, 90), t0)
	require.NoError(t, err)
	assert.InDelta(t, 9000, m.Cash(), 1e-9)

	closed := m.CheckExits("TSLA", bar("TSLA", 92, 89, 91), TouchIntrabar)
	require.Len(t, closed, 1)

	assert.Equal(t, models.ExitReasonTakeProfit, closed[0].ExitReason)
	assert.InDelta(t, 100, closed[0].PnL, 1e-9)
	assert.InDelta(t, 10100, m.Cash(), 1e-9)
}

func TestShortStopOnClosePrice(t *testing.T) {
	m := newTestManager(10000)
	_, err := m.Open(approvedSell("TSLA", 10, 100, 105, 90), t0)
	require.NoError(t, err)

	closed := m.CheckExits("TSLA", bar("TSLA", 107, 104, 106), TouchClose)
	require.Len(t, closed, 1)

	assert.Equal(t, models.ExitReasonStopLoss, closed[0].ExitReason)
	assert.InDelta(t, -60, closed[0].PnL, 1e-9)
	assert.InDelta(t, 9940, m.Cash(), 1e-9)
}

func TestDailyPnLIdentity(t *testing.T) {
	// Daily pnl must equal realized-today plus the sum of unrealized
	// over open positions, after a mix of opens and closes.
	m := newTestManager(100000)

	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)
	_, err = m.Open(approvedBuy("MSFT", 5, 200, 190, 230), t0)
	require.NoError(t, err)

	// AAPL stops out at $95: realized -50.
	closed := m.CheckExits("AAPL", bar("AAPL", 96, 94, 95), TouchClose)
	require.Len(t, closed, 1)

	// MSFT marks to $210: unrealized +50.
	closed = m.CheckExits("MSFT", bar("MSFT", 211, 205, 210), TouchClose)
	assert.Empty(t, closed)

	var unrealized float64
	for _, pos := range m.Positions() {
		unrealized += pos.UnrealizedPnL
	}
	assert.InDelta(t, -50, m.RealizedToday(), 1e-9)
	assert.InDelta(t, 50, unrealized, 1e-9)
	assert.InDelta(t, m.RealizedToday()+unrealized, m.DailyPnL(), 1e-9)
}

func TestCheckExitsOnlyTouchesMatchingSymbol(t *testing.T) {
	m := newTestManager(100000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)
	_, err = m.Open(approvedBuy("MSFT", 5, 200, 190, 230), t0)
	require.NoError(t, err)

	closed := m.CheckExits("AAPL", bar("AAPL", 96, 90, 92), TouchClose)
	require.Len(t, closed, 1)
	assert.Equal(t, "AAPL", closed[0].Symbol)
	assert.True(t, m.HasOpen("MSFT"))
	assert.Equal(t, []string{"MSFT"}, m.Symbols())
}

func TestCloseAllEndOfData(t *testing.T) {
	m := newTestManager(100000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)

	closed := m.CloseAll(101.5, t0.Add(time.Hour), models.ExitReasonEndOfData)
	require.Len(t, closed, 1)
	assert.Equal(t, models.ExitReasonEndOfData, closed[0].ExitReason)
	assert.InDelta(t, 15, closed[0].PnL, 1e-9)
	assert.Zero(t, m.OpenCount())
}

func TestResetDay(t *testing.T) {
	m := newTestManager(10000)
	_, err := m.Open(approvedBuy("AAPL", 10, 100, 96, 110), t0)
	require.NoError(t, err)
	m.CheckExits("AAPL", bar("AAPL", 96, 94, 95), TouchClose)
	require.InDelta(t, -50, m.RealizedToday(), 1e-9)

	m.ResetDay()
	assert.Zero(t, m.RealizedToday())
}
