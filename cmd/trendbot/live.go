package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"TrendTradeBot/config"
	"TrendTradeBot/internal/handlers"
	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/operations/price"
	"TrendTradeBot/internal/operations/venue"
	"TrendTradeBot/internal/repositories"
	"TrendTradeBot/internal/services/detector"
	"TrendTradeBot/internal/services/lifecycle"
	"TrendTradeBot/internal/services/risk"
	"TrendTradeBot/pkg/logger"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newLiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Run the live scan loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd)
		},
	}
}

func runLive(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	db, err := setupDatabase(cfg.Database)
	if err != nil {
		return err
	}

	barRepo := repositories.NewBarRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)

	source := price.NewBinanceSource(cfg.Exchange.APIKey, cfg.Exchange.SecretKey, log)
	manager := lifecycle.NewManager(cfg.Trading.StartingBalance, log)

	det := detector.New(detector.Config{
		SwingHalfWindow:      cfg.Trading.SwingHalfWindow,
		RetracementTolerance: cfg.Trading.RetracementTolerance,
	}, log)

	gate := risk.NewGate(risk.Config{
		MinRiskReward:   cfg.Trading.MinRiskReward,
		MaxOpenTrades:   cfg.Trading.MaxOpenTrades,
		MaxDailyLossPct: cfg.Trading.MaxDailyLossPct,
		RiskPerTrade:    cfg.Trading.RiskPerTrade,
	}, log)

	vn := selectVenue(cfg.Trading, cfg.Exchange, manager, log)

	handler := handlers.NewScanHandler(
		handlers.ScanConfig{
			Symbols:      cfg.Symbols,
			Interval:     time.Duration(cfg.Trading.ScanIntervalSeconds) * time.Second,
			LookbackBars: cfg.Trading.LookbackBars,
		},
		source, vn, manager, det, gate, barRepo, tradeRepo, log,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("venue", cfg.Trading.Venue).
		Float64("starting_balance", cfg.Trading.StartingBalance).
		Msg("starting live loop")

	// Run blocks until the context is cancelled; an in-progress scan
	// cycle finishes before it returns.
	handler.Run(ctx)

	log.Info().Msg("shutdown complete")
	return nil
}

func selectVenue(trading config.TradingConfig, exchange config.ExchangeConfig, manager *lifecycle.Manager, log zerolog.Logger) venue.Venue {
	if trading.Venue == "binance" {
		client := futures.NewClient(exchange.APIKey, exchange.SecretKey)
		return venue.NewBinanceVenue(client, log)
	}
	return venue.NewSimulatedVenue(manager, log)
}

func setupDatabase(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Bar{}, &models.TradeRecord{}, &models.CloseRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
