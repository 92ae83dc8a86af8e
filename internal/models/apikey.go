package models

import (
	"time"
)

// APIKey is an opaque bearer credential a user hands to a trading bot so
// it can push executed trades into the journal. Keys are never deleted,
// only revoked: RevokedAt is set once and stays set.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Key        string     `gorm:"uniqueIndex;size:100;not null" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}

// Revoked reports whether the key has been permanently revoked.
func (k *APIKey) Revoked() bool {
	return k.RevokedAt != nil
}
