package repositories

import (
	"errors"
	"time"

	"TrendTradeBot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BarRepository struct {
	db *gorm.DB
}

// NewBarRepository creates a new instance of BarRepository
func NewBarRepository(db *gorm.DB) *BarRepository {
	return &BarRepository{db: db}
}

// Upsert stores a batch of bars, silently skipping rows whose
// (symbol, timeframe, open_time) key already exists. Bars are immutable
// once produced, so conflicts are never updated.
func (r *BarRepository) Upsert(bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&bars).Error
}

// Latest returns the most recent `limit` bars for a symbol and timeframe
// in ascending open-time order.
func (r *BarRepository) Latest(symbol, timeFrame string, limit int) ([]models.Bar, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var bars []models.Bar
	err := r.db.Where("symbol = ? AND time_frame = ?", symbol, timeFrame).
		Order("open_time DESC").
		Limit(limit).
		Find(&bars).Error
	if err != nil {
		return nil, err
	}

	// Reverse into ascending order.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// Range returns bars for a symbol and timeframe within [start, end] in
// ascending open-time order.
func (r *BarRepository) Range(symbol, timeFrame string, start, end time.Time) ([]models.Bar, error) {
	if symbol == "" || timeFrame == "" {
		return nil, errors.New("invalid symbol or timeframe")
	}

	var bars []models.Bar
	err := r.db.Where("symbol = ? AND time_frame = ? AND open_time BETWEEN ? AND ?",
		symbol, timeFrame, start, end).
		Order("open_time ASC").
		Find(&bars).Error
	return bars, err
}
