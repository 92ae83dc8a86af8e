package repository

import (
	"errors"

	"github.com/tradejournal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository handles trade data access
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create creates a new trade
func (r *TradeRepository) Create(trade *models.Trade) error {
	return r.db.Create(trade).Error
}

// FindByTicket retrieves the trade matching the (user, ticket, platform)
// natural key. At most one such row exists for bot-submitted trades.
func (r *TradeRepository) FindByTicket(userID uint, ticket, platform string) (*models.Trade, error) {
	var trade models.Trade
	result := r.db.Where("user_id = ? AND ticket = ? AND platform = ?", userID, ticket, platform).
		Limit(1).
		First(&trade)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, result.Error
	}
	return &trade, nil
}

// UpdateByID overwrites the given columns on one row identified by its
// primary key. The values map may contain nil entries; those columns are
// set to NULL rather than skipped.
func (r *TradeRepository) UpdateByID(id uint, values map[string]interface{}) error {
	result := r.db.Model(&models.Trade{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// ListRecent retrieves the most recent trades for a user, ordered by
// canonical timestamp descending
func (r *TradeRepository) ListRecent(userID uint, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&trades)
	return trades, result.Error
}

// ListByUserPaginated retrieves trades with pagination, newest first
func (r *TradeRepository) ListByUserPaginated(userID uint, page, pageSize int) ([]models.Trade, int64, error) {
	var trades []models.Trade
	var total int64

	if err := r.db.Model(&models.Trade{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := r.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&trades)

	return trades, total, result.Error
}

// ListAllAscending retrieves every trade for a user ordered by canonical
// timestamp ascending, the order aggregate computations walk in
func (r *TradeRepository) ListAllAscending(userID uint) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("user_id = ?", userID).Order("timestamp ASC").Find(&trades)
	return trades, result.Error
}

// Delete removes a trade owned by the given user
func (r *TradeRepository) Delete(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Trade{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// CountByTicket counts rows for a natural key. Used by tests to assert
// the reconciliation invariant.
func (r *TradeRepository) CountByTicket(userID uint, ticket, platform string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Trade{}).
		Where("user_id = ? AND ticket = ? AND platform = ?", userID, ticket, platform).
		Count(&count).Error
	return count, err
}
