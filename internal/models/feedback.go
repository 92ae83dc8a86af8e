package models

import (
	"time"

	"gorm.io/gorm"
)

// FeedbackStatus represents the triage state of a feedback item
type FeedbackStatus string

const (
	FeedbackStatusOpen    FeedbackStatus = "open"
	FeedbackStatusPlanned FeedbackStatus = "planned"
	FeedbackStatusDone    FeedbackStatus = "done"
)

// Feedback is a user-submitted feature request or bug report
type Feedback struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Status    FeedbackStatus `gorm:"size:20;not null;default:'open'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     User              `gorm:"foreignKey:UserID" json:"-"`
	Votes    []FeedbackVote    `gorm:"foreignKey:FeedbackID" json:"-"`
	Comments []FeedbackComment `gorm:"foreignKey:FeedbackID" json:"-"`
}

// TableName specifies the table name for Feedback model
func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackVote records one user's upvote on a feedback item.
// The (feedback_id, user_id) pair is unique: voting is a toggle.
type FeedbackVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FeedbackID uint      `gorm:"not null;uniqueIndex:idx_feedback_votes_once" json:"feedback_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_feedback_votes_once" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for FeedbackVote model
func (FeedbackVote) TableName() string {
	return "feedback_votes"
}

// FeedbackComment is a comment on a feedback item
type FeedbackComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FeedbackID uint      `gorm:"index;not null" json:"feedback_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for FeedbackComment model
func (FeedbackComment) TableName() string {
	return "feedback_comments"
}
