package venue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrendTradeBot/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedOrder struct {
	orderType     string
	side          string
	quantity      string
	stopPrice     string
	closePosition string
}

func newStubExchange(t *testing.T) (*futures.Client, *[]capturedOrder) {
	t.Helper()
	var orders []capturedOrder

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		orders = append(orders, capturedOrder{
			orderType:     r.FormValue("type"),
			side:          r.FormValue("side"),
			quantity:      r.FormValue("quantity"),
			stopPrice:     r.FormValue("stopPrice"),
			closePosition: r.FormValue("closePosition"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orderId": 4321, "symbol": "BTCUSDT"}`))
	}))
	t.Cleanup(srv.Close)

	client := futures.NewClient("test-key", "test-secret")
	client.BaseURL = srv.URL
	return client, &orders
}

func bracketTrade(side string) models.ApprovedTrade {
	return models.ApprovedTrade{
		Signal: models.TradeSignal{
			Symbol:     "BTCUSDT",
			Side:       side,
			EntryPrice: 100,
			StopLoss:   98,
			TakeProfit: 104,
		},
		PositionSize: 10,
		Approved:     true,
	}
}

func TestBinanceVenueExecutePlacesBracket(t *testing.T) {
	client, orders := newStubExchange(t)
	vn := NewBinanceVenue(client, zerolog.Nop())

	orderID, err := vn.Execute(context.Background(), bracketTrade(models.SideBuy), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "4321", orderID)

	require.Len(t, *orders, 3)

	entry := (*orders)[0]
	assert.Equal(t, "MARKET", entry.orderType)
	assert.Equal(t, "BUY", entry.side)
	assert.Equal(t, "10", entry.quantity)

	stop := (*orders)[1]
	assert.Equal(t, "STOP_MARKET", stop.orderType)
	assert.Equal(t, "SELL", stop.side)
	assert.Equal(t, "98.00", stop.stopPrice)
	assert.Equal(t, "true", stop.closePosition)

	target := (*orders)[2]
	assert.Equal(t, "TAKE_PROFIT_MARKET", target.orderType)
	assert.Equal(t, "SELL", target.side)
	assert.Equal(t, "104.00", target.stopPrice)
	assert.Equal(t, "true", target.closePosition)
}

func TestBinanceVenueExecuteShortBracketSides(t *testing.T) {
	client, orders := newStubExchange(t)
	vn := NewBinanceVenue(client, zerolog.Nop())

	_, err := vn.Execute(context.Background(), bracketTrade(models.SideSell), time.Now())
	require.NoError(t, err)

	require.Len(t, *orders, 3)
	assert.Equal(t, "SELL", (*orders)[0].side)
	assert.Equal(t, "BUY", (*orders)[1].side)
	assert.Equal(t, "BUY", (*orders)[2].side)
}

func TestBinanceVenueExecuteEntryFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": -2019, "msg": "Margin is insufficient."}`))
	}))
	t.Cleanup(srv.Close)

	client := futures.NewClient("test-key", "test-secret")
	client.BaseURL = srv.URL
	vn := NewBinanceVenue(client, zerolog.Nop())

	_, err := vn.Execute(context.Background(), bracketTrade(models.SideBuy), time.Now())
	require.Error(t, err)
}
