package models

import (
	"time"
)

// TradeRecord is the journal row written for every executed or rejected
// trade attempt.
type TradeRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"index;not null"`
	Symbol     string    `gorm:"index;not null"`
	Side       string    `gorm:"not null"`
	Qty        int
	EntryPrice float64 `gorm:"type:decimal(20,8)"`
	StopLoss   float64 `gorm:"type:decimal(20,8)"`
	TakeProfit float64 `gorm:"type:decimal(20,8)"`
	DollarRisk float64 `gorm:"type:decimal(20,8)"`
	Confidence float64 `gorm:"type:decimal(20,8)"`
	Reason     string
	OrderID    string `gorm:"index"`
	Status     string `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

const (
	TradeStatusFilled   = "filled"
	TradeStatusRejected = "rejected"
	TradeStatusFailed   = "failed"
)

func (TradeRecord) TableName() string {
	return "trade_records"
}

// CloseRecord is written once per position close.
type CloseRecord struct {
	ID         uint      `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"index;not null"`
	OrderID    string    `gorm:"index;not null"`
	Symbol     string    `gorm:"index;not null"`
	Side       string    `gorm:"not null"`
	Qty        int
	EntryPrice float64 `gorm:"type:decimal(20,8)"`
	ExitPrice  float64 `gorm:"type:decimal(20,8)"`
	PnL        float64 `gorm:"column:pnl;type:decimal(20,8)"`
	ExitReason string  `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CloseRecord) TableName() string {
	return "close_records"
}
