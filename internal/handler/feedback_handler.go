package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tradejournal/internal/middleware"
	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/service"
	"github.com/tradejournal/pkg/response"
)

// FeedbackHandler handles the feedback board API requests
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// List returns all feedback items with vote counts
// GET /api/v1/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.feedbackService.List(middleware.GetUserID(c))
	if err != nil {
		response.InternalError(c, "failed to load feedback")
		return
	}

	response.Success(c, items)
}

// Create creates a new feedback item
// POST /api/v1/feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req service.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fb, err := h.feedbackService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.InternalError(c, "failed to create feedback")
		return
	}

	response.Created(c, fb)
}

// ToggleVote flips the user's vote on a feedback item
// POST /api/v1/feedback/:id/votes
func (h *FeedbackHandler) ToggleVote(c *gin.Context) {
	feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	voted, err := h.feedbackService.ToggleVote(middleware.GetUserID(c), uint(feedbackID))
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			response.NotFound(c, "feedback not found")
			return
		}
		response.InternalError(c, "failed to update vote")
		return
	}

	response.Success(c, gin.H{"voted": voted})
}

// ListComments returns the comments on a feedback item
// GET /api/v1/feedback/:id/comments
func (h *FeedbackHandler) ListComments(c *gin.Context) {
	feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	comments, err := h.feedbackService.ListComments(uint(feedbackID))
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			response.NotFound(c, "feedback not found")
			return
		}
		response.InternalError(c, "failed to load comments")
		return
	}

	response.Success(c, comments)
}

// AddComment adds a comment to a feedback item
// POST /api/v1/feedback/:id/comments
func (h *FeedbackHandler) AddComment(c *gin.Context) {
	feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	var req service.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.feedbackService.AddComment(middleware.GetUserID(c), uint(feedbackID), &req)
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			response.NotFound(c, "feedback not found")
			return
		}
		response.InternalError(c, "failed to add comment")
		return
	}

	response.Created(c, comment)
}

// SetStatus updates the triage status of a feedback item. Admin only.
// PUT /api/v1/feedback/:id/status
func (h *FeedbackHandler) SetStatus(c *gin.Context) {
	feedbackID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid feedback id")
		return
	}

	var req struct {
		Status models.FeedbackStatus `json:"status" binding:"required,oneof=open planned done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.feedbackService.SetStatus(uint(feedbackID), req.Status); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			response.NotFound(c, "feedback not found")
			return
		}
		response.InternalError(c, "failed to update status")
		return
	}

	response.Success(c, gin.H{"id": feedbackID, "status": req.Status})
}

// RegisterRoutes registers feedback routes
func (h *FeedbackHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware, adminMiddleware gin.HandlerFunc) {
	fb := rg.Group("/feedback", authMiddleware)
	{
		fb.GET("", h.List)
		fb.POST("", h.Create)
		fb.POST("/:id/votes", h.ToggleVote)
		fb.GET("/:id/comments", h.ListComments)
		fb.POST("/:id/comments", h.AddComment)
		fb.PUT("/:id/status", adminMiddleware, h.SetStatus)
	}
}
