package models

import (
	"time"
)

type Bar struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"uniqueIndex:idx_bar_key;not null"`
	TimeFrame string    `gorm:"uniqueIndex:idx_bar_key;not null"`
	OpenTime  time.Time `gorm:"uniqueIndex:idx_bar_key;index;not null"`
	Open      float64   `gorm:"type:decimal(20,8)"`
	High      float64   `gorm:"type:decimal(20,8)"`
	Low       float64   `gorm:"type:decimal(20,8)"`
	Close     float64   `gorm:"type:decimal(20,8)"`
	Volume    float64   `gorm:"type:decimal(20,8)"`
}

const (
	BarTimeFrame5m = "5m"
	BarTimeFrame1d = "1d"
)

// TableName sets the table name for Bar model
func (Bar) TableName() string {
	return "bars"
}
