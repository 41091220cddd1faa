package models

import (
	"math"
	"time"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeSignal is a value object emitted by the detector. It is never
// mutated after construction and only exists when both risk and reward
// are positive.
type TradeSignal struct {
	Symbol     string
	Side       string
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Confidence float64
	Timestamp  time.Time
	Reason     string
	TimeFrame  string
}

// RiskReward returns reward/risk, or 0 when the stop is degenerate.
func (s TradeSignal) RiskReward() float64 {
	risk := math.Abs(s.EntryPrice - s.StopLoss)
	if risk <= 0 {
		return 0
	}
	return math.Abs(s.TakeProfit-s.EntryPrice) / risk
}

// ApprovedTrade is the risk gate's verdict on a signal. Created once per
// evaluation and never mutated.
type ApprovedTrade struct {
	Signal          TradeSignal
	PositionSize    int
	DollarRisk      float64
	AccountBalance  float64
	Approved        bool
	RejectionReason string
}
