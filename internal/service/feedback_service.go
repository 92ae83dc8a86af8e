package service

import (
	"strings"

	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
)

// FeedbackService handles the feedback board: items, votes and comments
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo}
}

// CreateFeedbackRequest is the new-feedback form
type CreateFeedbackRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body"`
}

// FeedbackItem is the list view of a feedback item with its vote count
// and whether the requesting user has voted
type FeedbackItem struct {
	models.Feedback
	Votes    int64 `json:"votes"`
	HasVoted bool  `json:"has_voted"`
}

// Create creates a new feedback item
func (s *FeedbackService) Create(userID uint, req *CreateFeedbackRequest) (*models.Feedback, error) {
	fb := &models.Feedback{
		UserID: userID,
		Title:  strings.TrimSpace(req.Title),
		Body:   strings.TrimSpace(req.Body),
		Status: models.FeedbackStatusOpen,
	}
	if err := s.feedbackRepo.Create(fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// List returns all feedback items with vote counts, newest first
func (s *FeedbackService) List(userID uint) ([]FeedbackItem, error) {
	items, err := s.feedbackRepo.ListAll()
	if err != nil {
		return nil, err
	}

	result := make([]FeedbackItem, 0, len(items))
	for _, fb := range items {
		votes, err := s.feedbackRepo.CountVotes(fb.ID)
		if err != nil {
			return nil, err
		}
		voted, err := s.feedbackRepo.HasVoted(fb.ID, userID)
		if err != nil {
			return nil, err
		}
		result = append(result, FeedbackItem{Feedback: fb, Votes: votes, HasVoted: voted})
	}
	return result, nil
}

// ToggleVote flips the user's vote on a feedback item and returns
// whether the user has a vote after the call
func (s *FeedbackService) ToggleVote(userID, feedbackID uint) (bool, error) {
	if _, err := s.feedbackRepo.GetByID(feedbackID); err != nil {
		return false, err
	}

	voted, err := s.feedbackRepo.HasVoted(feedbackID, userID)
	if err != nil {
		return false, err
	}

	if voted {
		if err := s.feedbackRepo.RemoveVote(feedbackID, userID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.feedbackRepo.AddVote(feedbackID, userID); err != nil {
		return false, err
	}
	return true, nil
}

// AddCommentRequest is the new-comment form
type AddCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// AddComment adds a comment to a feedback item
func (s *FeedbackService) AddComment(userID, feedbackID uint, req *AddCommentRequest) (*models.FeedbackComment, error) {
	if _, err := s.feedbackRepo.GetByID(feedbackID); err != nil {
		return nil, err
	}

	comment := &models.FeedbackComment{
		FeedbackID: feedbackID,
		UserID:     userID,
		Body:       strings.TrimSpace(req.Body),
	}
	if err := s.feedbackRepo.AddComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the comments of a feedback item, oldest first
func (s *FeedbackService) ListComments(feedbackID uint) ([]models.FeedbackComment, error) {
	if _, err := s.feedbackRepo.GetByID(feedbackID); err != nil {
		return nil, err
	}
	return s.feedbackRepo.ListComments(feedbackID)
}

// SetStatus updates the triage status. Admin only; enforced at the route.
func (s *FeedbackService) SetStatus(feedbackID uint, status models.FeedbackStatus) error {
	return s.feedbackRepo.SetStatus(feedbackID, status)
}
