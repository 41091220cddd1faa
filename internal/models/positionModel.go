package models

import "time"

// Position is a live simulated position. Owned exclusively by the
// lifecycle manager; UnrealizedPnL is the only field updated after open.
type Position struct {
	OrderID       string
	Symbol        string
	Side          string
	Qty           int
	EntryPrice    float64
	StopLoss      float64
	TakeProfit    float64
	EntryTime     time.Time
	UnrealizedPnL float64
}

const (
	ExitReasonStopLoss   = "STOP-LOSS"
	ExitReasonTakeProfit = "TAKE-PROFIT"
	ExitReasonEndOfData  = "END-OF-DATA"
)

// ClosedTrade is the realized record produced when a position exits.
type ClosedTrade struct {
	OrderID    string
	Symbol     string
	Side       string
	Qty        int
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	EntryTime  time.Time
	ExitTime   time.Time
	ExitReason string
}
