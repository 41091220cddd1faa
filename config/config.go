package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     envString("DB_HOST", "localhost"),
			Port:     envInt("DB_PORT", 5432),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Trading: TradingConfig{
			ScanIntervalSeconds:  envInt("SCAN_INTERVAL_SECONDS", 300),
			SwingHalfWindow:      envInt("SWING_HALF_WINDOW", 5),
			LookbackBars:         envInt("LOOKBACK_BARS", 100),
			RetracementTolerance: envFloat("RETRACEMENT_TOLERANCE", 0.003),
			MinRiskReward:        envFloat("MIN_RISK_REWARD", 1.5),
			MaxOpenTrades:        envInt("MAX_OPEN_TRADES", 3),
			MaxDailyLossPct:      envFloat("MAX_DAILY_LOSS_PCT", 0.03),
			RiskPerTrade:         envFloat("RISK_PER_TRADE", 0.01),
			StartingBalance:      envFloat("STARTING_BALANCE", 100000),
			Venue:                envString("VENUE", "simulated"),
			TradesDir:            envString("TRADES_DIR", "trades"),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "console"),
		},
		Symbols: getSymbols(),
	}, nil
}

// helper env(string) to int
func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// helper to get symbols
func getSymbols() []string {
	symbols := os.Getenv("TRADING_SYMBOLS")
	if symbols == "" {
		return []string{"BTCUSDT", "ETHUSDT"} // Default pairs if none specified
	}
	parts := strings.Split(symbols, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
