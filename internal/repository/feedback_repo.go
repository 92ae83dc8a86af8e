package repository

import (
	"errors"

	"github.com/tradejournal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrFeedbackNotFound = errors.New("feedback not found")
)

// FeedbackRepository handles feedback data access
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create creates a new feedback item
func (r *FeedbackRepository) Create(fb *models.Feedback) error {
	return r.db.Create(fb).Error
}

// GetByID retrieves a feedback item by ID
func (r *FeedbackRepository) GetByID(id uint) (*models.Feedback, error) {
	var fb models.Feedback
	result := r.db.First(&fb, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, result.Error
	}
	return &fb, nil
}

// ListAll retrieves all feedback items, newest first
func (r *FeedbackRepository) ListAll() ([]models.Feedback, error) {
	var items []models.Feedback
	result := r.db.Order("created_at DESC").Find(&items)
	return items, result.Error
}

// SetStatus updates the triage status of a feedback item
func (r *FeedbackRepository) SetStatus(id uint, status models.FeedbackStatus) error {
	result := r.db.Model(&models.Feedback{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}

// CountVotes counts votes on a feedback item
func (r *FeedbackRepository) CountVotes(feedbackID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.FeedbackVote{}).Where("feedback_id = ?", feedbackID).Count(&count).Error
	return count, err
}

// HasVoted checks whether a user has voted on a feedback item
func (r *FeedbackRepository) HasVoted(feedbackID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.FeedbackVote{}).
		Where("feedback_id = ? AND user_id = ?", feedbackID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddVote records a vote by a user
func (r *FeedbackRepository) AddVote(feedbackID, userID uint) error {
	return r.db.Create(&models.FeedbackVote{FeedbackID: feedbackID, UserID: userID}).Error
}

// RemoveVote removes a user's vote
func (r *FeedbackRepository) RemoveVote(feedbackID, userID uint) error {
	return r.db.Where("feedback_id = ? AND user_id = ?", feedbackID, userID).
		Delete(&models.FeedbackVote{}).Error
}

// AddComment adds a comment to a feedback item
func (r *FeedbackRepository) AddComment(comment *models.FeedbackComment) error {
	return r.db.Create(comment).Error
}

// ListComments retrieves comments for a feedback item, oldest first
func (r *FeedbackRepository) ListComments(feedbackID uint) ([]models.FeedbackComment, error) {
	var comments []models.FeedbackComment
	result := r.db.Where("feedback_id = ?", feedbackID).Order("created_at ASC").Find(&comments)
	return comments, result.Error
}
