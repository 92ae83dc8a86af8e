package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradejournal/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database behind the same
// GORM repositories the server uses. The pool is pinned to a single
// connection so every query sees the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Trade{},
		&models.Feedback{},
		&models.FeedbackVote{},
		&models.FeedbackComment{},
	))

	return db
}
