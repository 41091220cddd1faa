package price

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"TrendTradeBot/internal/models"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Binance caps a single klines request at 500 candles.
const maxKlinesPerRequest = 500

// History switches from 5m to daily candles past this horizon so the
// request count stays reasonable.
const maxIntradayHistoryDays = 58

// BinanceSource fetches candles from Binance futures with rate limiting
// and retry on transient errors.
type BinanceSource struct {
	client      *futures.Client
	rateLimiter *rate.Limiter
	log         zerolog.Logger
}

func NewBinanceSource(apiKey, secretKey string, log zerolog.Logger) *BinanceSource {
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	client := futures.NewClient(apiKey, secretKey)
	client.HTTPClient = httpClient

	return &BinanceSource{
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(10), 20),
		log:         log.With().Str("component", "binance_source").Logger(),
	}
}

func (s *BinanceSource) Bars(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	klines, err := s.fetch(ctx, func(ctx context.Context) ([]*futures.Kline, error) {
		return s.client.NewKlinesService().
			Symbol(symbol).
			Interval(models.BarTimeFrame5m).
			Limit(limit).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}
	return s.toBars(symbol, models.BarTimeFrame5m, klines), nil
}

func (s *BinanceSource) History(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	timeFrame := models.BarTimeFrame5m
	if days > maxIntradayHistoryDays {
		timeFrame = models.BarTimeFrame1d
	}

	endTime := time.Now()
	startTime := endTime.AddDate(0, 0, -days)
	chunk := chunkDuration(timeFrame)

	var bars []models.Bar
	for currentStart := startTime; currentStart.Before(endTime); {
		currentEnd := currentStart.Add(chunk)
		if currentEnd.After(endTime) {
			currentEnd = endTime
		}

		startMs := currentStart.UnixNano() / int64(time.Millisecond)
		endMs := currentEnd.UnixNano() / int64(time.Millisecond)

		klines, err := s.fetch(ctx, func(ctx context.Context) ([]*futures.Kline, error) {
			return s.client.NewKlinesService().
				Symbol(symbol).
				Interval(timeFrame).
				StartTime(startMs).
				EndTime(endMs).
				Limit(maxKlinesPerRequest).
				Do(ctx)
		})
		if err != nil {
			return nil, err
		}

		bars = append(bars, s.toBars(symbol, timeFrame, klines)...)
		currentStart = currentEnd
	}

	s.log.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeFrame).
		Int("bars", len(bars)).
		Int("days", days).
		Msg("fetched history")

	return bars, nil
}

// fetch wraps a klines call with the shared rate limiter and
// exponential-backoff retries.
func (s *BinanceSource) fetch(ctx context.Context, call func(context.Context) ([]*futures.Kline, error)) ([]*futures.Kline, error) {
	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		klines, err := call(ctx)
		if err == nil {
			return klines, nil
		}
		if attempt == maxRetries {
			return nil, err
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * backoff
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func (s *BinanceSource) toBars(symbol, timeFrame string, klines []*futures.Kline) []models.Bar {
	bars := make([]models.Bar, 0, len(klines))
	for _, k := range klines {
		bars = append(bars, models.Bar{
			Symbol:    symbol,
			TimeFrame: timeFrame,
			OpenTime:  time.Unix(k.OpenTime/1000, 0),
			Open:      s.parseFloat(k.Open),
			High:      s.parseFloat(k.High),
			Low:       s.parseFloat(k.Low),
			Close:     s.parseFloat(k.Close),
			Volume:    s.parseFloat(k.Volume),
		})
	}
	return bars
}

func (s *BinanceSource) parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		s.log.Warn().Err(err).Str("value", v).Msg("failed to parse kline field")
		return 0
	}
	return f
}

func chunkDuration(timeFrame string) time.Duration {
	intervals := map[string]time.Duration{
		models.BarTimeFrame5m: 5 * time.Minute,
		models.BarTimeFrame1d: 24 * time.Hour,
	}
	return intervals[timeFrame] * maxKlinesPerRequest
}
