package venue

import (
	"context"
	"strconv"
	"time"

	"TrendTradeBot/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
)

// BinanceVenue places market orders on Binance futures and reads account
// state from the exchange. Read failures are logged and reported as zero
// values so one bad poll does not halt the scan loop.
type BinanceVenue struct {
	client *futures.Client
	log    zerolog.Logger
}

func NewBinanceVenue(client *futures.Client, log zerolog.Logger) *BinanceVenue {
	return &BinanceVenue{
		client: client,
		log:    log.With().Str("component", "binance_venue").Logger(),
	}
}

func (v *BinanceVenue) AccountBalance(ctx context.Context) float64 {
	account, err := v.client.NewGetAccountService().Do(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("failed to fetch account balance")
		return 0
	}
	balance, err := strconv.ParseFloat(account.AvailableBalance, 64)
	if err != nil {
		v.log.Error().Err(err).Str("value", account.AvailableBalance).Msg("failed to parse balance")
		return 0
	}
	return balance
}

func (v *BinanceVenue) OpenTradeCount(ctx context.Context) int {
	account, err := v.client.NewGetAccountService().Do(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("failed to fetch open positions")
		return 0
	}

	count := 0
	for _, p := range account.Positions {
		amt, err := strconv.ParseFloat(p.PositionAmt, 64)
		if err != nil {
			continue
		}
		if amt != 0 {
			count++
		}
	}
	return count
}

func (v *BinanceVenue) DailyPnL(ctx context.Context) float64 {
	account, err := v.client.NewGetAccountService().Do(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("failed to fetch account pnl")
		return 0
	}
	pnl, err := strconv.ParseFloat(account.TotalUnrealizedProfit, 64)
	if err != nil {
		v.log.Error().Err(err).Str("value", account.TotalUnrealizedProfit).Msg("failed to parse pnl")
		return 0
	}
	return pnl
}

// Execute places the entry as a market order, then the protective
// bracket: a STOP_MARKET at the stop loss and a TAKE_PROFIT_MARKET at
// the target, both closing the position from the opposite side. The
// exchange manages brokered exits, so these positions never enter the
// in-memory lifecycle manager.
func (v *BinanceVenue) Execute(ctx context.Context, trade models.ApprovedTrade, _ time.Time) (string, error) {
	sig := trade.Signal
	entrySide, exitSide := futures.SideTypeBuy, futures.SideTypeSell
	if sig.Side == models.SideSell {
		entrySide, exitSide = futures.SideTypeSell, futures.SideTypeBuy
	}

	order, err := v.client.NewCreateOrderService().
		Symbol(sig.Symbol).
		Side(entrySide).
		Type(futures.OrderTypeMarket).
		Quantity(strconv.Itoa(trade.PositionSize)).
		Do(ctx)
	if err != nil {
		return "", err
	}

	_, err = v.client.NewCreateOrderService().
		Symbol(sig.Symbol).
		Side(exitSide).
		Type(futures.OrderTypeStopMarket).
		StopPrice(formatPrice(sig.StopLoss)).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		v.log.Error().Err(err).
			Int64("order_id", order.OrderID).
			Str("symbol", sig.Symbol).
			Msg("failed to place stop-loss order, position is unprotected")
	}

	_, err = v.client.NewCreateOrderService().
		Symbol(sig.Symbol).
		Side(exitSide).
		Type(futures.OrderTypeTakeProfitMarket).
		StopPrice(formatPrice(sig.TakeProfit)).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		v.log.Error().Err(err).
			Int64("order_id", order.OrderID).
			Str("symbol", sig.Symbol).
			Msg("failed to place take-profit order")
	}

	v.log.Info().
		Int64("order_id", order.OrderID).
		Str("symbol", sig.Symbol).
		Str("side", sig.Side).
		Int("qty", trade.PositionSize).
		Float64("stop", sig.StopLoss).
		Float64("target", sig.TakeProfit).
		Msg("bracket placed")

	return strconv.FormatInt(order.OrderID, 10), nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
