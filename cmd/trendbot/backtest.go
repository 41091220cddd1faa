package main

import (
	"fmt"

	"TrendTradeBot/config"
	"TrendTradeBot/internal/models"
	"TrendTradeBot/internal/operations/backtest"
	"TrendTradeBot/internal/operations/price"
	"TrendTradeBot/internal/repositories"
	"TrendTradeBot/internal/services/detector"
	"TrendTradeBot/internal/services/risk"
	"TrendTradeBot/pkg/logger"

	"github.com/spf13/cobra"
)

func newBacktestCommand() *cobra.Command {
	var days int
	var symbol string
	var offline bool

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay historical bars through the strategy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBacktest(cmd, days, symbol, offline)
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "days of history to replay")
	cmd.Flags().StringVar(&symbol, "symbol", "", "replay a single symbol instead of the configured list")
	cmd.Flags().BoolVar(&offline, "offline", false, "replay bars recorded by the live scanner instead of fetching from the exchange")

	return cmd
}

func runBacktest(cmd *cobra.Command, days int, symbol string, offline bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	symbols := cfg.Symbols
	if symbol != "" {
		symbols = []string{symbol}
	}

	var source price.Source
	if offline {
		db, err := setupDatabase(cfg.Database)
		if err != nil {
			return err
		}
		source = price.NewStoreSource(repositories.NewBarRepository(db), models.BarTimeFrame5m)
	} else {
		source = price.NewBinanceSource(cfg.Exchange.APIKey, cfg.Exchange.SecretKey, log)
	}

	engine := backtest.NewEngine(backtest.Config{
		LookbackBars:    cfg.Trading.LookbackBars,
		StartingBalance: cfg.Trading.StartingBalance,
		Detector: detector.New(detector.Config{
			SwingHalfWindow:      cfg.Trading.SwingHalfWindow,
			RetracementTolerance: cfg.Trading.RetracementTolerance,
		}, log),
		Risk: risk.NewGate(risk.Config{
			MinRiskReward:   cfg.Trading.MinRiskReward,
			MaxOpenTrades:   cfg.Trading.MaxOpenTrades,
			MaxDailyLossPct: cfg.Trading.MaxDailyLossPct,
			RiskPerTrade:    cfg.Trading.RiskPerTrade,
		}, log),
	}, source, log)

	results, err := engine.Run(cmd.Context(), symbols, days)
	if err != nil {
		// A replay always reports what it could; partial data failures
		// are not fatal to the command.
		log.Error().Err(err).Msg("replay aborted")
		fmt.Fprintln(cmd.OutOrStdout(), "Backtest produced no results.")
		return nil
	}

	backtest.PrintReport(cmd.OutOrStdout(), results, days)

	path, err := backtest.WriteLedgerCSV(cfg.Trading.TradesDir, results)
	if err != nil {
		log.Error().Err(err).Msg("failed to write trade ledger")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", path)
	return nil
}
