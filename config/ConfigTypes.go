package config

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Trading  TradingConfig
	Log      LogConfig
	Symbols  []string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// TradingConfig holds the strategy and risk scalars. Zero values are
// replaced with the documented defaults by Load.
type TradingConfig struct {
	ScanIntervalSeconds  int
	SwingHalfWindow      int
	LookbackBars         int
	RetracementTolerance float64
	MinRiskReward        float64
	MaxOpenTrades        int
	MaxDailyLossPct      float64
	RiskPerTrade         float64
	StartingBalance      float64
	Venue                string // "simulated" or "binance"
	TradesDir            string
}

type LogConfig struct {
	Level  string
	Format string // "console" or "json"
}
