package repository

import (
	"errors"
	"time"

	"github.com/tradejournal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// APIKeyRepository handles API key data access
type APIKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create creates a new API key
func (r *APIKeyRepository) Create(key *models.APIKey) error {
	return r.db.Create(key).Error
}

// GetByKey retrieves an API key by its secret string
func (r *APIKeyRepository) GetByKey(key string) (*models.APIKey, error) {
	var apiKey models.APIKey
	result := r.db.Where("key = ?", key).First(&apiKey)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, result.Error
	}
	return &apiKey, nil
}

// GetByIDAndUserID retrieves an API key owned by a specific user
func (r *APIKeyRepository) GetByIDAndUserID(id, userID uint) (*models.APIKey, error) {
	var apiKey models.APIKey
	result := r.db.Where("id = ? AND user_id = ?", id, userID).First(&apiKey)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, result.Error
	}
	return &apiKey, nil
}

// ListByUserID retrieves all API keys for a user, newest first
func (r *APIKeyRepository) ListByUserID(userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	result := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&keys)
	return keys, result.Error
}

// Revoke sets revoked_at on an active key. Revocation is permanent:
// an already-revoked key keeps its original revocation time.
func (r *APIKeyRepository) Revoke(id, userID uint, at time.Time) error {
	result := r.db.Model(&models.APIKey{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", id, userID).
		Update("revoked_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// TouchLastUsed updates the last-used timestamp. Last write wins; callers
// treat failures as non-fatal.
func (r *APIKeyRepository) TouchLastUsed(id uint, at time.Time) error {
	return r.db.Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", at).Error
}
