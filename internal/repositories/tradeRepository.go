package repositories

import (
	"errors"
	"time"

	"TrendTradeBot/internal/models"

	"gorm.io/gorm"
)

type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new instance of TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// CreateTrade appends a journal row for an executed or rejected trade.
func (r *TradeRepository) CreateTrade(record *models.TradeRecord) error {
	if record == nil {
		return errors.New("trade record cannot be nil")
	}
	return r.db.Create(record).Error
}

// CreateClose appends a close record for an exited position.
func (r *TradeRepository) CreateClose(record *models.CloseRecord) error {
	if record == nil {
		return errors.New("close record cannot be nil")
	}
	return r.db.Create(record).Error
}

// FindTradesByStatus retrieves journal rows with the given status.
func (r *TradeRepository) FindTradesByStatus(status string) ([]models.TradeRecord, error) {
	var records []models.TradeRecord
	err := r.db.Where("status = ?", status).Order("timestamp ASC").Find(&records).Error
	return records, err
}

// FindClosesByTimeRange retrieves close records within [start, end].
func (r *TradeRepository) FindClosesByTimeRange(start, end time.Time) ([]models.CloseRecord, error) {
	var records []models.CloseRecord
	err := r.db.Where("timestamp BETWEEN ? AND ?", start, end).
		Order("timestamp ASC").
		Find(&records).Error
	return records, err
}

// TotalPnL sums realized pnl over close records within a time range.
func (r *TradeRepository) TotalPnL(start, end time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&models.CloseRecord{}).
		Where("timestamp BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(pnl), 0)").
		Scan(&total).Error
	return total, err
}
